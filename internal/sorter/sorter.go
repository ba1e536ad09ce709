package sorter

import (
	"context"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// Item is a sortable entry. Identity is by ID only; Label and Attrs are
// display metadata the engine carries but never inspects.
type Item struct {
	ID    string            `json:"id" yaml:"id"`
	Label string            `json:"label,omitempty" yaml:"label,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Decider asks the user to pick between a and b and returns the winner's id.
// It blocks until the user answers or ctx is done.
type Decider func(ctx context.Context, a, b Item) (winnerID string, err error)

// ProgressFunc receives the animated placement count and the percentage.
// Replayed placements that do not advance SortedNo do not report.
type ProgressFunc func(completed, percent int)

// SaveFunc is called after each placement that advances SortedNo or
// follows a new decision, when Sort completes, and after Undo, Reset and
// RemoveItem. Placements replayed from the cache below the saved SortedNo
// do not trigger it.
// It carries no arguments: the callee pulls what it needs through the
// getters or Snapshot.
type SaveFunc func()

// RestartFunc is called when Sort must be re-invoked after Undo, Reset or
// RemoveItem.
type RestartFunc func()

// Session is the complete persistable state of a sort session.
type Session struct {
	Choices         map[string]string `json:"choices"`
	ComparisonCount int               `json:"comparison_count"`
	History         []State           `json:"history"`
	TotalBattles    int               `json:"total_battles"`
	SortedNo        int               `json:"sorted_no"`
	Order           []string          `json:"order"`
	Removed         []string          `json:"removed"`
	Started         bool              `json:"started"`
	Completed       bool              `json:"completed"`
}

// Default animation parameters for the progress catch-up after a removal.
const (
	DefaultAnimationSteps    = 20
	DefaultAnimationDuration = 800 * time.Millisecond
)

// Sorter is the interactive merge sort engine.
//
// Thread-safety model:
//   - Sort: at most one call in flight
//   - Undo, Reset, RemoveItem, getters: safe from any goroutine, including
//     from inside the Decider
//   - callbacks run without the engine lock held
type Sorter struct {
	mu sync.Mutex

	choices         map[string]string
	comparisonCount int
	history         *history
	savedHistory    []State
	totalBattles    int
	sortedNo        int
	animatedNo      int

	order     []string
	started   bool
	completed bool
	removed   map[string]bool

	// items is the working set from the most recent Sort call, in input order.
	items    []Item
	parked   map[string]Item // removed items kept for Undo
	gen      uint64

	onProgress ProgressFunc
	onSave     SaveFunc
	onRestart  RestartFunc

	animSteps    int
	animDuration time.Duration
	animating    bool
	animStop     chan struct{}
	animWG       sync.WaitGroup

	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithSavedChoices seeds the decision cache. A non-empty map marks the
// session as resumed, so Sort will not shuffle again.
func WithSavedChoices(choices map[string]string) Option {
	return func(s *Sorter) {
		if choices == nil {
			return
		}
		s.choices = maps.Clone(choices)
		if len(choices) > 0 {
			s.started = true
		}
	}
}

// WithSavedComparisonCount restores the number of decisions made.
func WithSavedComparisonCount(n int) Option {
	return func(s *Sorter) { s.comparisonCount = n }
}

// WithSavedHistory restores the undo history. Entries beyond the history
// capacity are dropped, oldest first.
func WithSavedHistory(states []State) Option {
	return func(s *Sorter) { s.savedHistory = states }
}

// WithSavedTotalBattles restores the battle estimate of the original
// item count. Without it the estimate is computed from the item count
// seen by the next Sort call.
func WithSavedTotalBattles(n int) Option {
	return func(s *Sorter) { s.totalBattles = n }
}

// WithSavedSortedNo restores the placement counter.
func WithSavedSortedNo(n int) Option {
	return func(s *Sorter) {
		s.sortedNo = n
		s.animatedNo = n
	}
}

// WithSavedOrder restores the shuffled order established by the first Sort.
func WithSavedOrder(order []string) Option {
	return func(s *Sorter) {
		if len(order) == 0 {
			return
		}
		s.order = append([]string(nil), order...)
		s.started = true
	}
}

// WithSavedRemoved restores the ids removed during the session.
func WithSavedRemoved(ids []string) Option {
	return func(s *Sorter) {
		for _, id := range ids {
			s.removed[id] = true
		}
	}
}

// WithItems sets the working set before the first Sort call, so
// RemoveItem can find an item in a freshly restored session. Removed ids
// are filtered out.
func WithItems(items []Item) Option {
	return func(s *Sorter) { s.items = append([]Item(nil), items...) }
}

// WithSession restores everything Snapshot produced. Only the Started
// flag and a saved order mark the session as resumed; a fresh session
// from the store carries an empty cache and is shuffled by the next Sort.
func WithSession(sess Session) Option {
	return func(s *Sorter) {
		if sess.Choices != nil {
			s.choices = maps.Clone(sess.Choices)
		}
		WithSavedComparisonCount(sess.ComparisonCount)(s)
		WithSavedHistory(sess.History)(s)
		WithSavedTotalBattles(sess.TotalBattles)(s)
		WithSavedSortedNo(sess.SortedNo)(s)
		WithSavedOrder(sess.Order)(s)
		WithSavedRemoved(sess.Removed)(s)
		s.started = sess.Started || len(sess.Order) > 0
		s.completed = sess.Completed
	}
}

// WithRand sets the random source used for the initial shuffle.
func WithRand(r *rand.Rand) Option {
	return func(s *Sorter) { s.rng = r }
}

// WithAnimation configures the progress catch-up after a removal.
// A zero duration applies all steps synchronously.
func WithAnimation(steps int, duration time.Duration) Option {
	return func(s *Sorter) {
		if steps < 1 {
			steps = 1
		}
		s.animSteps = steps
		s.animDuration = duration
	}
}

// WithHistoryCapacity sets how many undo snapshots are retained.
func WithHistoryCapacity(n int) Option {
	return func(s *Sorter) { s.history = newHistory(n) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sorter) { s.logger = l }
}

// New creates a Sorter. All saved-state options are optional; without
// them the Sorter starts a fresh session on the first Sort call.
func New(opts ...Option) *Sorter {
	s := &Sorter{
		choices:      map[string]string{},
		history:      newHistory(DefaultHistoryCapacity),
		removed:      map[string]bool{},
		parked:       map[string]Item{},
		animSteps:    DefaultAnimationSteps,
		animDuration: DefaultAnimationDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.items) > 0 {
		s.items = slices.DeleteFunc(s.items, func(it Item) bool {
			if s.removed[it.ID] {
				s.parked[it.ID] = it
				return true
			}
			return false
		})
	}
	if s.savedHistory != nil {
		s.history.load(s.savedHistory)
		s.savedHistory = nil
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SetProgressCallback registers fn for new placements, decisions and
// mutations. Replayed placements below the saved SortedNo are silent.
func (s *Sorter) SetProgressCallback(fn ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

// SetSaveCallback registers fn. See SaveFunc for when it fires.
func (s *Sorter) SetSaveCallback(fn SaveFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = fn
}

// SetRestartCallback registers fn, called when Sort must be re-invoked.
func (s *Sorter) SetRestartCallback(fn RestartFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRestart = fn
}

// ComparisonCount returns the number of decisions made by the user.
func (s *Sorter) ComparisonCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparisonCount
}

// Choices returns a copy of the decision cache.
func (s *Sorter) Choices() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.choices)
}

// History returns a copy of the undo history, oldest first.
func (s *Sorter) History() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.snapshot()
}

// Order returns the shuffled order, or nil before the first Sort.
func (s *Sorter) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// TotalBattles returns the fixed progress denominator.
func (s *Sorter) TotalBattles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalBattles
}

// SortedNo returns the authoritative placement count.
func (s *Sorter) SortedNo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedNo
}

// AnimatedSortedNo returns the smoothed placement count driving progress.
func (s *Sorter) AnimatedSortedNo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animatedNo
}

// Percent returns the current progress percentage.
func (s *Sorter) Percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percentLocked()
}

// Removed returns the ids removed during the session, sorted.
func (s *Sorter) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removedLocked()
}

// Items returns the working item set of the most recent Sort call.
func (s *Sorter) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Started reports whether the initial shuffle has happened.
func (s *Sorter) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Completed reports whether the last Sort ran to completion and nothing
// has been undone or removed since.
func (s *Sorter) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CanUndo reports whether the history holds a snapshot.
func (s *Sorter) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.len() > 0
}

// Snapshot returns the full persistable state.
func (s *Sorter) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := []string{}
	if s.order != nil {
		order = append(order, s.order...)
	}
	return Session{
		Choices:         maps.Clone(s.choices),
		ComparisonCount: s.comparisonCount,
		History:         s.history.snapshot(),
		TotalBattles:    s.totalBattles,
		SortedNo:        s.sortedNo,
		Order:           order,
		Removed:         s.removedLocked(),
		Started:         s.started,
		Completed:       s.completed,
	}
}

// Settle blocks until a running progress animation has finished.
func (s *Sorter) Settle() {
	s.animWG.Wait()
}
