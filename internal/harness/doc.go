// Package harness runs scripted sort sessions against an oracle.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: undo_after_two
//	description: "Undo after two answers re-asks only the undone pair"
//	items: [a, b, c, d]
//	order: [a, b, c, d]      # fixed initial order; omit to shuffle with seed
//	seed: 7                  # shuffle seed, default 1
//	preference: [d, c, b, a] # oracle ranking, best first
//	steps:
//	  - after: 2             # once 2 answers have been given
//	    undo: true           # or remove: <id>, reset: true, reload: true
//	expect:
//	  order: [d, c, b, a]
//	  max_comparisons: 5
//	  never_reask: true
//
// A step fires when the oracle is about to give answer after+1. Steps not
// reached before the sort completes fire after completion, and the sort
// is driven again. A reload step closes the session and reopens it from
// the store, so resume goes through the real persistence path.
//
// # Deterministic Testing
//
// Each scenario runs against its own in-memory SQLite store with a fixed
// session id, a seeded shuffle and synchronous progress animation, so the
// same scenario always produces the same trace. Traces are serialized with
// canon.Marshal and compared against golden files with goldie.
package harness
