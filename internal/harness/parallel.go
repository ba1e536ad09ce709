package harness

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunAll executes scenarios with at most parallel running at once and
// returns their results in input order. A scenario that cannot execute
// yields a failed Result; the returned error is only set when ctx ends.
func RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Result, error) {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]*Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Run(gctx, sc)
			if err != nil {
				res = NewResult(sc.Name)
				res.AddError("execution failed: %v", err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run scenarios: %w", err)
	}
	return results, nil
}
