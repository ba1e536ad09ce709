package harness

import "fmt"

// Trace event types.
const (
	EventAsk      = "ask"
	EventUndo     = "undo"
	EventRemove   = "remove"
	EventReset    = "reset"
	EventReload   = "reload"
	EventComplete = "complete"
)

// TraceEvent is one entry of a scenario trace.
type TraceEvent struct {
	Type string `json:"type"`
	Seq  int    `json:"seq"`

	// Ask events.
	A      string `json:"a,omitempty"`
	B      string `json:"b,omitempty"`
	Winner string `json:"winner,omitempty"`

	// Remove events.
	Item     string `json:"item,omitempty"`
	SortedNo int    `json:"sorted_no,omitempty"`

	// Every event except ask carries the comparison count after it.
	Comparisons int `json:"comparisons"`

	// Complete events.
	Order []string `json:"order,omitempty"`
}

func (e TraceEvent) canonical() map[string]any {
	m := map[string]any{
		"type": e.Type,
		"seq":  e.Seq,
	}
	switch e.Type {
	case EventAsk:
		m["a"] = e.A
		m["b"] = e.B
		m["winner"] = e.Winner
		return m
	case EventRemove:
		m["item"] = e.Item
		m["sorted_no"] = e.SortedNo
	case EventComplete:
		order := e.Order
		if order == nil {
			order = []string{}
		}
		m["order"] = order
	}
	m["comparisons"] = e.Comparisons
	return m
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Trace contains every question asked and every step applied, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Order is the final ranking.
	Order []string `json:"order"`

	// Comparisons is the final decision count.
	Comparisons int `json:"comparisons"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Order:  []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

func (r *Result) addEvent(e TraceEvent) {
	e.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, e)
}
