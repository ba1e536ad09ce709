package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sort session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Items lists the ids to rank.
	Items []string `yaml:"items"`

	// Order fixes the initial order instead of shuffling.
	Order []string `yaml:"order,omitempty"`

	// Seed seeds the shuffle. Zero means 1.
	Seed uint64 `yaml:"seed,omitempty"`

	// Preference is the oracle ranking, best first.
	Preference []string `yaml:"preference"`

	// HistoryCapacity overrides the number of undo levels.
	HistoryCapacity int `yaml:"history_capacity,omitempty"`

	// Steps are applied as the answer count reaches them.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect holds the checks run once every step has been applied.
	Expect Expect `yaml:"expect"`
}

// Step is an action applied mid-sort. Exactly one action must be set.
type Step struct {
	After  int    `yaml:"after"`
	Undo   bool   `yaml:"undo,omitempty"`
	Remove string `yaml:"remove,omitempty"`
	Reset  bool   `yaml:"reset,omitempty"`
	Reload bool   `yaml:"reload,omitempty"`
}

func (s Step) action() string {
	switch {
	case s.Undo:
		return EventUndo
	case s.Remove != "":
		return EventRemove
	case s.Reset:
		return EventReset
	case s.Reload:
		return EventReload
	}
	return ""
}

// Expect holds the final checks of a scenario. Unset fields are skipped.
type Expect struct {
	Order          []string `yaml:"order,omitempty"`
	Comparisons    *int     `yaml:"comparisons,omitempty"`
	MinComparisons *int     `yaml:"min_comparisons,omitempty"`
	MaxComparisons *int     `yaml:"max_comparisons,omitempty"`
	Removed        []string `yaml:"removed,omitempty"`

	// NeverReask fails the scenario if a pair is asked again without an
	// undo or reset in between.
	NeverReask bool `yaml:"never_reask,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is invalid.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every .yaml and .yml scenario in dir, sorted by file name.
// If filter is non-empty, only files whose stem matches the glob are loaded.
func LoadDir(dir, filter string) ([]*Scenario, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read scenarios: %w", err)
	}

	var scenarios []*Scenario
	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		path := filepath.Join(dir, e.Name())
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		scenarios = append(scenarios, sc)
		paths = append(paths, path)
	}
	return scenarios, paths, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Items) < 2 {
		return fmt.Errorf("at least 2 items are required")
	}

	known := make(map[string]bool, len(s.Items))
	for _, id := range s.Items {
		if id == "" {
			return fmt.Errorf("item ids must be non-empty")
		}
		if known[id] {
			return fmt.Errorf("duplicate item %q", id)
		}
		known[id] = true
	}

	if len(s.Order) > 0 {
		seen := make(map[string]bool, len(s.Order))
		for _, id := range s.Order {
			if !known[id] {
				return fmt.Errorf("order references unknown item %q", id)
			}
			seen[id] = true
		}
		if len(s.Order) != len(s.Items) || len(seen) != len(s.Items) {
			return fmt.Errorf("order must list every item exactly once")
		}
	}

	if len(s.Preference) == 0 {
		return fmt.Errorf("preference is required")
	}

	last := 0
	for i, st := range s.Steps {
		n := 0
		for _, set := range []bool{st.Undo, st.Remove != "", st.Reset, st.Reload} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("steps[%d]: exactly one of undo, remove, reset, reload is required", i)
		}
		if st.After < last {
			return fmt.Errorf("steps[%d]: after must not decrease", i)
		}
		last = st.After
		if st.Remove != "" && !known[st.Remove] {
			return fmt.Errorf("steps[%d]: remove references unknown item %q", i, st.Remove)
		}
	}
	return nil
}
