// Package store provides SQLite-backed persistence for sort sessions.
//
// A session is stored across four tables:
//   - sessions: counters, the shuffled order, removed ids and the undo
//     history (canonical JSON blobs)
//   - items: the item list the session was created with, in input order
//   - choices: the decision cache, one row per pair key
//   - rankings: the final order once a sort completes
//
// # Ordering
//
// Sessions are ordered by seq, a per-database creation counter, then by
// id. Queries never order by wall-clock time.
//
// # Saves
//
// SaveState rewrites a session's counters and decision cache in a single
// transaction, so a crash mid-save leaves the previous state intact.
// Sorter state is pulled through sorter.Sorter.Snapshot, which keeps the
// engine itself unaware of the store.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Deleting a session cascades to its rows
package store
