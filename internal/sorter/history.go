package sorter

import "maps"

// DefaultHistoryCapacity is the number of undo snapshots retained.
// One level of undo matches the behavior users of the ranking UI expect.
const DefaultHistoryCapacity = 1

// State is a snapshot of the decision cache and counters. It is the unit
// stored in the undo history.
//
// Removal, RemovedID, Order and Removed are only set on snapshots taken
// before a removal. They let Undo reinstate the removed item at its old
// position. Removal is the marker; RemovedID may legitimately be empty.
type State struct {
	Choices         map[string]string `json:"choices"`
	ComparisonCount int               `json:"comparison_count"`
	SortedNo        int               `json:"sorted_no"`
	Removal         bool              `json:"removal,omitempty"`
	RemovedID       string            `json:"removed_id,omitempty"`
	Order           []string          `json:"order,omitempty"`
	Removed         []string          `json:"removed,omitempty"`
}

// clone returns a deep copy so history entries never alias live state.
func (s State) clone() State {
	out := State{
		Choices:         maps.Clone(s.Choices),
		ComparisonCount: s.ComparisonCount,
		SortedNo:        s.SortedNo,
		Removal:         s.Removal,
		RemovedID:       s.RemovedID,
	}
	if out.Choices == nil {
		out.Choices = map[string]string{}
	}
	if s.Order != nil {
		out.Order = append([]string(nil), s.Order...)
	}
	if s.Removed != nil {
		out.Removed = append([]string(nil), s.Removed...)
	}
	return out
}

// history is a fixed-capacity stack of snapshots. Pushing beyond capacity
// evicts the oldest entry.
type history struct {
	states   []State
	capacity int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &history{
		states:   make([]State, 0, capacity),
		capacity: capacity,
	}
}

func (h *history) push(s State) {
	if len(h.states) >= h.capacity {
		h.states = append(h.states[:0], h.states[len(h.states)-h.capacity+1:]...)
	}
	h.states = append(h.states, s.clone())
}

func (h *history) pop() (State, bool) {
	if len(h.states) == 0 {
		return State{}, false
	}
	last := h.states[len(h.states)-1]
	h.states = h.states[:len(h.states)-1]
	return last, true
}

func (h *history) len() int {
	return len(h.states)
}

func (h *history) clear() {
	h.states = h.states[:0]
}

// load replaces the contents with saved, keeping only the most recent
// entries that fit.
func (h *history) load(saved []State) {
	h.clear()
	if len(saved) > h.capacity {
		saved = saved[len(saved)-h.capacity:]
	}
	for _, s := range saved {
		h.states = append(h.states, s.clone())
	}
}

func (h *history) snapshot() []State {
	out := make([]State, len(h.states))
	for i, s := range h.states {
		out[i] = s.clone()
	}
	return out
}
