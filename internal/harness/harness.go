package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
	"github.com/roach88/pairsort/internal/store"
	"github.com/roach88/pairsort/internal/testutil"
)

// sessionID is the fixed id every scenario session is stored under.
const sessionID = "scenario"

var (
	errStepApplied = errors.New("scenario step applied")
	errReload      = errors.New("scenario reload requested")
)

// runner holds the state of one scenario execution.
type runner struct {
	sc     *Scenario
	st     *store.Store
	drv    *session.Driver
	oracle *testutil.Oracle
	logger *slog.Logger
	result *Result

	pending []Step
	answers int

	// asked holds pairs answered since the last undo or reset.
	asked map[string]bool
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Expectation failures are reported in Result.Errors; a non-nil error
// means the scenario could not be executed at all.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	r := &runner{
		sc:      scenario,
		st:      st,
		oracle:  testutil.NewOracle(scenario.Preference...),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
		result:  NewResult(scenario.Name),
		pending: slices.Clone(scenario.Steps),
		asked:   map[string]bool{},
	}

	items := testutil.Items(scenario.Items...)
	gen := session.NewFixedGenerator(sessionID)
	if _, err := session.Create(ctx, st, gen, scenario.Name, items); err != nil {
		return nil, err
	}
	if err := r.open(ctx, scenario.Order); err != nil {
		return nil, err
	}

	for {
		ranked, err := r.drv.Run(ctx, r.decide)
		if errors.Is(err, errReload) {
			if err := r.reload(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
		}
		r.complete(ranked)

		if len(r.pending) == 0 {
			break
		}
		// Steps past the last answer fire after completion.
		step := r.pending[0]
		r.pending = r.pending[1:]
		if step.Reload {
			if err := r.reload(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if err := r.apply(step); err != nil {
			r.result.AddError("step %s after %d: %v", step.action(), step.After, err)
		}
	}

	r.check()
	return r.result, nil
}

func (r *runner) sorterOptions(order []string) []sorter.Option {
	seed := r.sc.Seed
	if seed == 0 {
		seed = 1
	}
	opts := []sorter.Option{
		sorter.WithRand(rand.New(rand.NewPCG(seed, seed))),
		sorter.WithAnimation(1, 0),
	}
	if r.sc.HistoryCapacity > 0 {
		opts = append(opts, sorter.WithHistoryCapacity(r.sc.HistoryCapacity))
	}
	if len(order) > 0 {
		opts = append(opts, sorter.WithSavedOrder(order))
	}
	return opts
}

func (r *runner) open(ctx context.Context, order []string) error {
	drv, err := session.Open(ctx, r.st, sessionID,
		session.WithLogger(r.logger),
		session.WithSorterOptions(r.sorterOptions(order)...),
	)
	if err != nil {
		return fmt.Errorf("open scenario session: %w", err)
	}
	r.drv = drv
	return nil
}

func (r *runner) reload(ctx context.Context) error {
	if err := r.open(ctx, nil); err != nil {
		return err
	}
	r.result.addEvent(TraceEvent{
		Type:        EventReload,
		Comparisons: r.drv.Sorter().ComparisonCount(),
	})
	return nil
}

// decide answers from the oracle, applying at most one due step first.
func (r *runner) decide(ctx context.Context, a, b sorter.Item) (string, error) {
	if len(r.pending) > 0 && r.pending[0].After <= r.answers {
		step := r.pending[0]
		r.pending = r.pending[1:]
		if step.Reload {
			return "", errReload
		}
		if err := r.apply(step); err != nil {
			r.result.AddError("step %s after %d: %v", step.action(), step.After, err)
		} else {
			// The engine discards this answer and restarts.
			return "", errStepApplied
		}
	}

	key := sorter.PairKey(a.ID, b.ID)
	if r.sc.Expect.NeverReask && r.asked[key] {
		r.result.AddError("pair %s asked again without undo or reset", key)
	}
	r.asked[key] = true

	winner, err := r.oracle.Decide(ctx, a, b)
	if err != nil {
		return "", err
	}
	r.answers++
	r.result.addEvent(TraceEvent{Type: EventAsk, A: a.ID, B: b.ID, Winner: winner})
	return winner, nil
}

func (r *runner) apply(step Step) error {
	s := r.drv.Sorter()
	switch {
	case step.Undo:
		if err := r.drv.Undo(); err != nil {
			return err
		}
		r.syncAsked()
		r.result.addEvent(TraceEvent{Type: EventUndo, Comparisons: s.ComparisonCount()})
	case step.Remove != "":
		if err := r.drv.RemoveItem(step.Remove); err != nil {
			return err
		}
		r.result.addEvent(TraceEvent{
			Type:        EventRemove,
			Item:        step.Remove,
			SortedNo:    s.SortedNo(),
			Comparisons: s.ComparisonCount(),
		})
	case step.Reset:
		if err := r.drv.Reset(); err != nil {
			return err
		}
		r.syncAsked()
		r.result.addEvent(TraceEvent{Type: EventReset, Comparisons: s.ComparisonCount()})
	default:
		return fmt.Errorf("no action")
	}
	return nil
}

// syncAsked forgets answered pairs that are no longer cached.
func (r *runner) syncAsked() {
	choices := r.drv.Sorter().Choices()
	for key := range r.asked {
		if _, ok := choices[key]; !ok {
			delete(r.asked, key)
		}
	}
}

func (r *runner) complete(ranked []sorter.Item) {
	order := testutil.IDs(ranked)
	r.result.Order = order
	r.result.Comparisons = r.drv.Sorter().ComparisonCount()
	r.result.addEvent(TraceEvent{
		Type:        EventComplete,
		Comparisons: r.result.Comparisons,
		Order:       order,
	})
}

func (r *runner) check() {
	exp := r.sc.Expect
	res := r.result

	if len(exp.Order) > 0 && !slices.Equal(exp.Order, res.Order) {
		res.AddError("order: expected %v, got %v", exp.Order, res.Order)
	}
	if exp.Comparisons != nil && res.Comparisons != *exp.Comparisons {
		res.AddError("comparisons: expected %d, got %d", *exp.Comparisons, res.Comparisons)
	}
	if exp.MinComparisons != nil && res.Comparisons < *exp.MinComparisons {
		res.AddError("comparisons: expected at least %d, got %d", *exp.MinComparisons, res.Comparisons)
	}
	if exp.MaxComparisons != nil && res.Comparisons > *exp.MaxComparisons {
		res.AddError("comparisons: expected at most %d, got %d", *exp.MaxComparisons, res.Comparisons)
	}
	if exp.Removed != nil {
		want := slices.Sorted(slices.Values(exp.Removed))
		if got := r.drv.Sorter().Removed(); !slices.Equal(want, got) {
			res.AddError("removed: expected %v, got %v", want, got)
		}
	}
}
