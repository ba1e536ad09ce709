package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/pairsort/internal/sorter"
)

// ErrStopped is returned by a decider that has given all its answers.
var ErrStopped = errors.New("decider stopped")

// Oracle answers comparisons from a fixed ranking, best first. Ids not in
// the ranking lose to ranked ids and are ordered among themselves by id.
//
// Thread-safety: Oracle is safe for concurrent use via internal mutex.
type Oracle struct {
	mu    sync.Mutex
	rank  map[string]int
	asked []string
}

// NewOracle creates an oracle preferring ranking[0] over ranking[1] and so on.
func NewOracle(ranking ...string) *Oracle {
	rank := make(map[string]int, len(ranking))
	for i, id := range ranking {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	return &Oracle{rank: rank}
}

// Prefers reports whether the oracle ranks a above b.
func (o *Oracle) Prefers(a, b string) bool {
	ra, okA := o.rank[a]
	rb, okB := o.rank[b]
	switch {
	case okA && okB:
		return ra < rb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// Decide implements sorter.Decider.
func (o *Oracle) Decide(ctx context.Context, a, b sorter.Item) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	o.mu.Lock()
	o.asked = append(o.asked, sorter.PairKey(a.ID, b.ID))
	o.mu.Unlock()

	if o.Prefers(a.ID, b.ID) {
		return a.ID, nil
	}
	return b.ID, nil
}

// Asked returns the pair keys asked so far, in order.
func (o *Oracle) Asked() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.asked...)
}

// Reset forgets the recorded questions.
func (o *Oracle) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.asked = nil
}

// Scripted returns predetermined winner ids in order. It does not check
// the answer against the offered pair, so tests can feed invalid winners.
//
// Thread-safety: Scripted is safe for concurrent use via internal mutex.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	idx     int
}

// NewScripted creates a decider that answers with winners in order.
func NewScripted(winners ...string) *Scripted {
	return &Scripted{answers: winners}
}

// Decide implements sorter.Decider. Returns ErrStopped once the script is
// exhausted.
func (s *Scripted) Decide(_ context.Context, a, b sorter.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.answers) {
		return "", fmt.Errorf("%s vs %s: %w", a.ID, b.ID, ErrStopped)
	}
	w := s.answers[s.idx]
	s.idx++
	return w, nil
}

// Remaining returns the number of unused answers.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) - s.idx
}

// StopAfter wraps decide so it returns ErrStopped after n answers.
func StopAfter(decide sorter.Decider, n int) sorter.Decider {
	var mu sync.Mutex
	given := 0
	return func(ctx context.Context, a, b sorter.Item) (string, error) {
		mu.Lock()
		if given >= n {
			mu.Unlock()
			return "", ErrStopped
		}
		given++
		mu.Unlock()
		return decide(ctx, a, b)
	}
}

// Items builds items whose labels are derived from their ids.
func Items(ids ...string) []sorter.Item {
	items := make([]sorter.Item, len(ids))
	for i, id := range ids {
		items[i] = sorter.Item{ID: id, Label: "Item " + id}
	}
	return items
}

// IDs returns the ids of items in order.
func IDs(items []sorter.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
