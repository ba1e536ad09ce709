package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_CapacityOneEvicts(t *testing.T) {
	h := newHistory(1)
	h.push(State{ComparisonCount: 1})
	h.push(State{ComparisonCount: 2})

	assert.Equal(t, 1, h.len())
	s, ok := h.pop()
	require.True(t, ok)
	assert.Equal(t, 2, s.ComparisonCount)

	_, ok = h.pop()
	assert.False(t, ok)
}

func TestHistory_LargerCapacity(t *testing.T) {
	h := newHistory(3)
	for i := 1; i <= 5; i++ {
		h.push(State{ComparisonCount: i})
	}
	require.Equal(t, 3, h.len())

	var got []int
	for {
		s, ok := h.pop()
		if !ok {
			break
		}
		got = append(got, s.ComparisonCount)
	}
	assert.Equal(t, []int{5, 4, 3}, got)
}

func TestHistory_PushClones(t *testing.T) {
	h := newHistory(1)
	choices := map[string]string{"a,b": "a"}
	h.push(State{Choices: choices})
	choices["a,b"] = "b"

	s, _ := h.pop()
	assert.Equal(t, "a", s.Choices["a,b"])
}

func TestHistory_LoadKeepsMostRecent(t *testing.T) {
	h := newHistory(1)
	h.load([]State{{SortedNo: 1}, {SortedNo: 2}})

	snap := h.snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].SortedNo)
	assert.NotNil(t, snap[0].Choices)
}

func TestHistory_InvalidCapacityDefaults(t *testing.T) {
	h := newHistory(0)
	assert.Equal(t, DefaultHistoryCapacity, h.capacity)
}
