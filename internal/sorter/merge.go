package sorter

import (
	"context"
	"fmt"
	"maps"
)

// sortRun carries the per-call state of one Sort pass.
type sortRun struct {
	ctx    context.Context
	decide Decider
	byID   map[string]Item
	gen    uint64

	// placed counts placements made by this pass. SortedNo only advances
	// once a replay pass overtakes it.
	placed int

	// dirty is set when a new decision has not been saved yet.
	dirty bool
}

// Sort ranks items, asking decide for every pair missing from the
// decision cache. It returns the items best first.
//
// Sort is re-entrant across sessions: the first call shuffles, later calls
// reuse the saved order and replay cached decisions. If Undo, Reset or
// RemoveItem runs while Sort waits for a decision, Sort returns an error
// for which IsRestart is true and the caller must call Sort again.
//
// A Decider error is returned wrapped; the decision cache is left exactly
// as it was before the failed decision.
func (s *Sorter) Sort(ctx context.Context, items []Item, decide Decider) ([]Item, error) {
	s.mu.Lock()
	run := &sortRun{
		ctx:    ctx,
		decide: decide,
		byID:   s.prepareLocked(items),
		gen:    s.gen,
	}
	order := append([]string(nil), s.order...)

	s.logger.Debug("sort pass starting",
		"items", len(order),
		"total_battles", s.totalBattles,
		"sorted_no", s.sortedNo,
		"cached", len(s.choices),
	)

	ids, err := s.mergeSortLocked(run, order)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.completed = true
	n := s.noticeLocked(true, true, false)
	s.logger.Info("sort completed",
		"items", len(ids),
		"comparisons", s.comparisonCount,
	)
	s.mu.Unlock()
	n.fire()

	result := make([]Item, len(ids))
	for i, id := range ids {
		result[i] = run.byID[id]
	}
	return result, nil
}

// prepareLocked establishes the working set and the shuffled order.
// Returns the working items keyed by id.
func (s *Sorter) prepareLocked(items []Item) map[string]Item {
	byID := make(map[string]Item, len(items))
	working := make([]Item, 0, len(items))
	for _, it := range items {
		if s.removed[it.ID] {
			continue
		}
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = it
		working = append(working, it)
	}
	s.items = working
	s.completed = false

	if !s.started {
		order := make([]string, len(working))
		for i, it := range working {
			order[i] = it.ID
		}
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		s.order = order
		s.started = true
	} else {
		s.order = reconcileOrder(s.order, working, byID)
	}

	if s.totalBattles == 0 {
		s.totalBattles = CountBattles(len(working))
	}
	return byID
}

// reconcileOrder keeps the saved order for ids still present and appends
// unseen ids in input order.
func reconcileOrder(saved []string, working []Item, byID map[string]Item) []string {
	seen := make(map[string]bool, len(saved))
	order := make([]string, 0, len(working))
	for _, id := range saved {
		if _, ok := byID[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, it := range working {
		if !seen[it.ID] {
			order = append(order, it.ID)
			seen[it.ID] = true
		}
	}
	return order
}

// mergeSortLocked sorts ids top-down. Called and returns with s.mu held.
func (s *Sorter) mergeSortLocked(run *sortRun, ids []string) ([]string, error) {
	if len(ids) <= 1 {
		return ids, nil
	}
	mid := (len(ids) + 1) / 2

	left, err := s.mergeSortLocked(run, ids[:mid])
	if err != nil {
		return nil, err
	}
	right, err := s.mergeSortLocked(run, ids[mid:])
	if err != nil {
		return nil, err
	}
	return s.mergeLocked(run, left, right)
}

// mergeLocked merges two ranked runs head to head.
func (s *Sorter) mergeLocked(run *sortRun, left, right []string) ([]string, error) {
	out := make([]string, 0, len(left)+len(right))
	i, j := 0, 0

	for i < len(left) && j < len(right) {
		winner, err := s.resolveLocked(run, left[i], right[j])
		if err != nil {
			return nil, err
		}
		if winner == left[i] {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
		if err := s.placeLocked(run); err != nil {
			return nil, err
		}
	}

	for ; i < len(left); i++ {
		out = append(out, left[i])
		if err := s.placeLocked(run); err != nil {
			return nil, err
		}
	}
	for ; j < len(right); j++ {
		out = append(out, right[j])
		if err := s.placeLocked(run); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveLocked returns the winner of (a, b) from the cache or the Decider.
// The lock is released while the Decider runs.
func (s *Sorter) resolveLocked(run *sortRun, a, b string) (string, error) {
	key := PairKey(a, b)
	if winner, ok := s.choices[key]; ok {
		return winner, nil
	}
	if err := run.ctx.Err(); err != nil {
		return "", err
	}

	itemA, itemB := run.byID[a], run.byID[b]
	s.mu.Unlock()
	winner, err := run.decide(run.ctx, itemA, itemB)
	s.mu.Lock()

	if s.gen != run.gen {
		return "", newRestartError()
	}
	if err != nil {
		return "", fmt.Errorf("decide %s: %w", key, err)
	}
	if winner != a && winner != b {
		return "", newInvalidWinnerError(winner, a, b)
	}

	s.history.push(s.stateLocked())
	s.comparisonCount++
	s.choices[key] = winner
	run.dirty = true

	s.logger.Debug("decision recorded",
		"pair_key", key,
		"winner", winner,
		"comparisons", s.comparisonCount,
	)
	return winner, nil
}

// placeLocked accounts for one element appended to a merge output.
func (s *Sorter) placeLocked(run *sortRun) error {
	run.placed++
	advanced := run.placed > s.sortedNo
	if advanced {
		s.sortedNo = run.placed
		if s.animatedNo < s.sortedNo {
			s.animatedNo = s.sortedNo
		}
	}
	if !advanced && !run.dirty {
		return nil
	}
	run.dirty = false

	n := s.noticeLocked(true, true, false)
	s.mu.Unlock()
	n.fire()
	s.mu.Lock()

	if s.gen != run.gen {
		return newRestartError()
	}
	return nil
}

func (s *Sorter) stateLocked() State {
	return State{
		Choices:         maps.Clone(s.choices),
		ComparisonCount: s.comparisonCount,
		SortedNo:        s.sortedNo,
	}
}
