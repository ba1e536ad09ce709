package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/pairsort/internal/items"
	"github.com/roach88/pairsort/internal/sorter"
	"github.com/roach88/pairsort/internal/store"
)

// Create validates items and stores a new session. Returns the session id.
func Create(ctx context.Context, st *store.Store, gen IDGenerator, name string, list []sorter.Item) (string, error) {
	if err := items.Validate(list); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	id := gen.Generate()
	if _, err := st.CreateSession(ctx, id, name, list); err != nil {
		return "", err
	}
	return id, nil
}

// Status summarizes a session for display.
type Status struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Items           int      `json:"items"`
	Remaining       int      `json:"remaining"`
	ComparisonCount int      `json:"comparison_count"`
	SortedNo        int      `json:"sorted_no"`
	TotalBattles    int      `json:"total_battles"`
	Percent         int      `json:"percent"`
	CanUndo         bool     `json:"can_undo"`
	Started         bool     `json:"started"`
	Completed       bool     `json:"completed"`
	Removed         []string `json:"removed"`
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger for the driver and its sorter.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithSorterOptions passes extra options to sorter.New, after the options
// restoring stored state.
func WithSorterOptions(opts ...sorter.Option) Option {
	return func(d *Driver) { d.sorterOpts = append(d.sorterOpts, opts...) }
}

// WithProgress registers fn for sorter progress events.
func WithProgress(fn sorter.ProgressFunc) Option {
	return func(d *Driver) { d.onProgress = fn }
}

// Driver runs one stored session.
type Driver struct {
	st     *store.Store
	rec    *store.Record
	sorter *sorter.Sorter

	// ctx is used by saves, which must not be cut short when a Run ctx ends.
	ctx        context.Context
	logger     *slog.Logger
	sorterOpts []sorter.Option
	onProgress sorter.ProgressFunc

	mu      sync.Mutex
	saveErr error
	saves   int
}

// Open loads session id from st and restores its sorter.
func Open(ctx context.Context, st *store.Store, id string, opts ...Option) (*Driver, error) {
	rec, err := st.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		st:     st,
		rec:    rec,
		ctx:    context.WithoutCancel(ctx),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("session_id", id)

	base := []sorter.Option{
		sorter.WithSession(rec.State),
		sorter.WithItems(rec.Items),
		sorter.WithLogger(d.logger),
	}
	d.sorter = sorter.New(append(base, d.sorterOpts...)...)
	d.sorter.SetSaveCallback(d.save)
	d.sorter.SetRestartCallback(func() {
		d.logger.Debug("sort restart requested")
	})
	if d.onProgress != nil {
		d.sorter.SetProgressCallback(d.onProgress)
	}

	d.logger.Debug("session opened",
		"items", len(rec.Items),
		"comparisons", rec.State.ComparisonCount,
		"started", rec.State.Started,
	)
	return d, nil
}

// save persists the current snapshot. Runs on the sorter callback path.
func (d *Driver) save() {
	err := d.st.SaveState(d.ctx, d.rec.ID, d.sorter.Snapshot())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.saves++
	if err != nil {
		d.logger.Error("save failed", "error", err)
		if d.saveErr == nil {
			d.saveErr = err
		}
	}
}

// Err returns the first save error, if any.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveErr
}

// Saves returns how many snapshots have been written.
func (d *Driver) Saves() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves
}

// Run sorts the session's items, asking decide for every comparison not
// already cached. Restarts triggered by Undo, RemoveItem or Reset
// (including from inside decide) re-drive the sort. On completion the
// ranking is stored.
func (d *Driver) Run(ctx context.Context, decide sorter.Decider) ([]sorter.Item, error) {
	for {
		result, err := d.sorter.Sort(ctx, d.rec.Items, decide)
		if sorter.IsRestart(err) {
			d.logger.Debug("re-driving sort")
			continue
		}
		if err != nil {
			return nil, errors.Join(err, d.Err())
		}
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("sort completed but state was not saved: %w", err)
		}

		ranking := make([]string, len(result))
		for i, it := range result {
			ranking[i] = it.ID
		}
		if err := d.st.SaveRanking(d.ctx, d.rec.ID, ranking); err != nil {
			return nil, err
		}
		d.rec.Ranking = ranking
		d.logger.Info("ranking saved", "items", len(ranking))
		return result, nil
	}
}

// Undo reverts the most recent decision or removal.
func (d *Driver) Undo() error {
	if err := d.sorter.Undo(); err != nil {
		return err
	}
	return d.Err()
}

// RemoveItem drops an item from the session.
func (d *Driver) RemoveItem(id string) error {
	if err := d.sorter.RemoveItem(id); err != nil {
		return err
	}
	d.sorter.Settle()
	return d.Err()
}

// Reset discards every decision made in the session.
func (d *Driver) Reset() error {
	d.sorter.Reset()
	return d.Err()
}

// Status reports the session's progress.
func (d *Driver) Status() Status {
	snap := d.sorter.Snapshot()
	remaining := 0
	for _, it := range d.rec.Items {
		if !slices.Contains(snap.Removed, it.ID) {
			remaining++
		}
	}
	return Status{
		ID:              d.rec.ID,
		Name:            d.rec.Name,
		Items:           len(d.rec.Items),
		Remaining:       remaining,
		ComparisonCount: snap.ComparisonCount,
		SortedNo:        snap.SortedNo,
		TotalBattles:    snap.TotalBattles,
		Percent:         d.sorter.Percent(),
		CanUndo:         len(snap.History) > 0,
		Started:         snap.Started,
		Completed:       snap.Completed,
		Removed:         snap.Removed,
	}
}

// Ranking returns the stored final ranking, or an empty slice if the sort
// has not completed.
func (d *Driver) Ranking() []sorter.Item {
	if !d.sorter.Completed() {
		return []sorter.Item{}
	}
	byID := make(map[string]sorter.Item, len(d.rec.Items))
	for _, it := range d.rec.Items {
		byID[it.ID] = it
	}
	out := make([]sorter.Item, 0, len(d.rec.Ranking))
	for _, id := range d.rec.Ranking {
		out = append(out, byID[id])
	}
	return out
}

// ID returns the session id.
func (d *Driver) ID() string { return d.rec.ID }

// Name returns the session name.
func (d *Driver) Name() string { return d.rec.Name }

// Items returns the session's item list as created, including removed items.
func (d *Driver) Items() []sorter.Item { return slices.Clone(d.rec.Items) }

// Sorter returns the underlying engine.
func (d *Driver) Sorter() *sorter.Sorter { return d.sorter }
