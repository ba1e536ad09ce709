package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pairsort/internal/canon"
	"github.com/roach88/pairsort/internal/sorter"
)

// marshalIDs converts an id list to canonical JSON TEXT.
func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := canon.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshal ids: %w", err)
	}
	return string(data), nil
}

// marshalAttrs converts item attributes to canonical JSON TEXT.
func marshalAttrs(attrs map[string]string) (string, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	data, err := canon.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return string(data), nil
}

// marshalHistory converts undo snapshots to canonical JSON TEXT. Empty
// optional fields are omitted, matching the State json tags.
func marshalHistory(states []sorter.State) (string, error) {
	arr := make([]any, len(states))
	for i, st := range states {
		choices := st.Choices
		if choices == nil {
			choices = map[string]string{}
		}
		obj := map[string]any{
			"choices":          choices,
			"comparison_count": st.ComparisonCount,
			"sorted_no":        st.SortedNo,
		}
		if st.Removal {
			obj["removal"] = true
			if st.RemovedID != "" {
				obj["removed_id"] = st.RemovedID
			}
		}
		if len(st.Order) > 0 {
			obj["order"] = st.Order
		}
		if len(st.Removed) > 0 {
			obj["removed"] = st.Removed
		}
		arr[i] = obj
	}
	data, err := canon.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	return string(data), nil
}

func unmarshalIDs(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}

func unmarshalAttrs(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return attrs, nil
}

func unmarshalHistory(data string) ([]sorter.State, error) {
	states := []sorter.State{}
	if data == "" {
		return states, nil
	}
	if err := json.Unmarshal([]byte(data), &states); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	for i := range states {
		if states[i].Choices == nil {
			states[i].Choices = map[string]string{}
		}
	}
	return states, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
