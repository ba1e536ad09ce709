// Package sorter implements the interactive merge sort engine.
//
// A Sorter ranks items with a top-down merge sort whose comparator is a
// human decision. Every answered comparison is memoized in a decision cache
// keyed by the unordered pair of item ids (see PairKey). The recursive call
// stack itself is never persisted. On resume, undo or removal the caller
// simply calls Sort again from the top, and the cache short-circuits every
// comparison that was already answered. Only the undone or invalidated
// decisions are asked again.
//
// ARCHITECTURE:
//
// Pure state vs. control flow:
// The state that must survive a reload is the decision cache, the counters,
// the shuffled order, the removed set and the undo history. Snapshot
// returns it as a Session and WithSession feeds it back in. Everything else
// is rebuilt by re-running Sort.
//
// Single pending decision:
// Only one Sort call may be in flight. Its only suspension point is the
// Decider, which runs with the engine lock released. Undo, RemoveItem and
// Reset may be called from inside the Decider (or from another goroutine
// while the Decider blocks). They bump a generation counter. The suspended
// Sort then returns a RESTARTED error instead of recording a stale answer.
//
// Progress:
// TotalBattles is a placement-count heuristic computed once from the
// original item count (see CountBattles). SortedNo counts placements and
// AnimatedSortedNo trails it during the smoothed catch-up after a removal.
// The emitted percentage is capped at 99 until Sort completes.
package sorter
