package sorter

import (
	"maps"
	"slices"
)

// Undo restores the most recent snapshot and signals a restart.
//
// Only the last snapshot is kept by default, so two decisions followed by
// one Undo return to the state just before the second decision. Undoing
// a removal also reinstates the removed item.
func (s *Sorter) Undo() error {
	s.mu.Lock()
	prev, ok := s.history.pop()
	if !ok {
		s.mu.Unlock()
		return newNothingToUndoError()
	}
	s.stopAnimationLocked()

	s.choices = maps.Clone(prev.Choices)
	if s.choices == nil {
		s.choices = map[string]string{}
	}
	s.comparisonCount = prev.ComparisonCount
	s.sortedNo = prev.SortedNo
	s.animatedNo = prev.SortedNo

	if prev.Removal {
		s.restoreRemovalLocked(prev)
	}

	s.completed = false
	s.gen++
	s.logger.Info("undo applied",
		"comparisons", s.comparisonCount,
		"sorted_no", s.sortedNo,
		"removal", prev.Removal,
		"reinstated", prev.RemovedID,
	)
	n := s.noticeLocked(true, true, true)
	s.mu.Unlock()

	n.fire()
	return nil
}

// restoreRemovalLocked reinstates the order and removed set captured
// before a removal.
func (s *Sorter) restoreRemovalLocked(prev State) {
	if prev.Order != nil {
		s.order = append([]string(nil), prev.Order...)
	}
	s.removed = make(map[string]bool, len(prev.Removed))
	for _, id := range prev.Removed {
		s.removed[id] = true
	}
	for id, it := range s.parked {
		if s.removed[id] {
			continue
		}
		s.items = append(s.items, it)
		delete(s.parked, id)
	}
}

// Reset discards every decision and counter and signals a restart. The
// next Sort shuffles again and recomputes the battle estimate. Items
// removed earlier stay removed.
func (s *Sorter) Reset() {
	s.mu.Lock()
	s.stopAnimationLocked()

	s.choices = map[string]string{}
	s.comparisonCount = 0
	s.history.clear()
	s.totalBattles = 0
	s.sortedNo = 0
	s.animatedNo = 0
	s.order = nil
	s.started = false
	s.completed = false
	s.gen++

	s.logger.Info("sort reset")
	n := s.noticeLocked(true, true, true)
	s.mu.Unlock()

	n.fire()
}

// RemoveItem drops id from the sort. It deletes every cached decision
// involving id, advances progress by floor(deleted*1.5) placements (capped
// at TotalBattles) with an animated catch-up, and signals a restart.
// The removal itself is undoable.
func (s *Sorter) RemoveItem(id string) error {
	s.mu.Lock()
	if s.removed[id] || (!slices.Contains(s.order, id) && !s.hasItemLocked(id)) {
		s.mu.Unlock()
		return newUnknownItemError(id)
	}

	snap := s.stateLocked()
	snap.Removal = true
	snap.RemovedID = id
	snap.Order = append([]string{}, s.order...)
	snap.Removed = s.removedLocked()
	s.history.push(snap)

	s.items = slices.DeleteFunc(s.items, func(it Item) bool {
		if it.ID == id {
			s.parked[id] = it
			return true
		}
		return false
	})
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.removed[id] = true

	deleted := 0
	for key := range s.choices {
		if keyReferences(key, id) {
			delete(s.choices, key)
			deleted++
		}
	}
	s.comparisonCount = len(s.choices)

	target := max(s.sortedNo, min(s.sortedNo+deleted*3/2, s.totalBattles))
	from := s.animatedNo
	s.sortedNo = target
	s.completed = false
	s.gen++

	s.logger.Info("item removed",
		"item_id", id,
		"deleted_choices", deleted,
		"sorted_no", target,
	)
	save := s.noticeLocked(false, true, false)
	s.mu.Unlock()

	save.fire()
	s.animate(from, target)

	s.mu.Lock()
	restart := s.noticeLocked(false, false, true)
	s.mu.Unlock()
	restart.fire()
	return nil
}

func (s *Sorter) hasItemLocked(id string) bool {
	return slices.ContainsFunc(s.items, func(it Item) bool { return it.ID == id })
}
