package sorter

import (
	"errors"
	"fmt"
)

// Error represents a failure reported by the sort engine.
//
// Decider failures are not wrapped in Error. They propagate unchanged
// (wrapped with %w) so callers can match their own sentinel errors.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ItemID identifies the affected item, if any.
	ItemID string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeRestarted indicates the state changed (undo, reset or removal)
	// while Sort was suspended. The caller must call Sort again.
	ErrCodeRestarted ErrorCode = "RESTARTED"

	// ErrCodeInvalidWinner indicates the Decider returned an id that is
	// neither of the two offered items.
	ErrCodeInvalidWinner ErrorCode = "INVALID_WINNER"

	// ErrCodeUnknownItem indicates RemoveItem was given an id the engine
	// has never seen.
	ErrCodeUnknownItem ErrorCode = "UNKNOWN_ITEM"

	// ErrCodeNothingToUndo indicates Undo was called with an empty history.
	ErrCodeNothingToUndo ErrorCode = "NOTHING_TO_UNDO"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("%s: %s (item=%s)", e.Code, e.Message, e.ItemID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsRestart returns true if Sort was interrupted by a state change and
// must be re-invoked.
func IsRestart(err error) bool {
	return hasCode(err, ErrCodeRestarted)
}

// IsInvalidWinner returns true if a Decider answered with a foreign id.
func IsInvalidWinner(err error) bool {
	return hasCode(err, ErrCodeInvalidWinner)
}

// IsUnknownItem returns true if an operation referenced an unknown item.
func IsUnknownItem(err error) bool {
	return hasCode(err, ErrCodeUnknownItem)
}

// IsNothingToUndo returns true if Undo found an empty history.
func IsNothingToUndo(err error) bool {
	return hasCode(err, ErrCodeNothingToUndo)
}

func newRestartError() *Error {
	return &Error{
		Code:    ErrCodeRestarted,
		Message: "sort state changed while waiting for a decision",
	}
}

func newInvalidWinnerError(winner, a, b string) *Error {
	return &Error{
		Code:    ErrCodeInvalidWinner,
		Message: fmt.Sprintf("winner must be %q or %q", a, b),
		ItemID:  winner,
	}
}

func newUnknownItemError(id string) *Error {
	return &Error{
		Code:    ErrCodeUnknownItem,
		Message: "item is not part of this sort",
		ItemID:  id,
	}
}

func newNothingToUndoError() *Error {
	return &Error{
		Code:    ErrCodeNothingToUndo,
		Message: "undo history is empty",
	}
}
