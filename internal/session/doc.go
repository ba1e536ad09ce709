// Package session binds a sorter.Sorter to a stored session.
//
// A Driver restores the sorter from the store, persists a snapshot on
// every save callback, and re-drives Sort whenever the engine signals a
// restart after Undo, RemoveItem or Reset. Completed sorts have their
// final ranking written back.
//
// Saves run on the engine's callback path. A failed save does not abort
// the sort in progress; the first save error is surfaced by the next Run
// or Err call.
package session
