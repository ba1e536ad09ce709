package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/store"
)

func TestStatusCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b", "c", "d")
	_, _, err := executeCommand(t, "1\nq\n", "sort", "s1", "--db", db)
	require.NoError(t, err)

	stdout, _, err := executeCommand(t, "", "status", "s1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Session:     test s1 (s1)")
	assert.Contains(t, stdout, "State:       in progress")
	assert.Contains(t, stdout, "Comparisons: 1")
	assert.Contains(t, stdout, "Items:       4 of 4")
	assert.Contains(t, stdout, "Can undo:    yes")

	stdout, _, err = executeCommand(t, "", "status", "s1", "--db", db, "--format", "json")
	require.NoError(t, err)
	var status session.Status
	decodeResponse(t, stdout, &status)
	assert.Equal(t, "s1", status.ID)
	assert.Equal(t, 1, status.ComparisonCount)
	assert.Equal(t, 8, status.TotalBattles)
	assert.Equal(t, 2, status.SortedNo)
	assert.True(t, status.CanUndo)
}

func TestStatusCommand_NotFound(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "status", "nope", "--db", testDB(t), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, stdout, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_NOT_FOUND", resp.Error.Code)
}

func TestUndoCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b", "c", "d")

	stdout, _, err := executeCommand(t, "", "undo", "s1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E_NOTHING_TO_UNDO]")

	_, _, err = executeCommand(t, "1\n1\nq\n", "sort", "s1", "--db", db)
	require.NoError(t, err)

	stdout, _, err = executeCommand(t, "", "undo", "s1", "--db", db, "--format", "json")
	require.NoError(t, err)
	var status session.Status
	decodeResponse(t, stdout, &status)
	assert.Equal(t, 1, status.ComparisonCount)
	assert.False(t, status.CanUndo)

	// Only one level is kept.
	_, _, err = executeCommand(t, "", "undo", "s1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRemoveCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b", "c", "d")

	stdout, _, err := executeCommand(t, "", "remove", "s1", "zzz", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, `no item "zzz" in this sort`)

	stdout, _, err = executeCommand(t, "", "remove", "s1", "d", "--db", db, "--format", "json")
	require.NoError(t, err)
	var status session.Status
	decodeResponse(t, stdout, &status)
	assert.Equal(t, []string{"d"}, status.Removed)
	assert.Equal(t, 3, status.Remaining)
	assert.True(t, status.CanUndo)

	// Removing twice fails; undo brings it back.
	_, _, err = executeCommand(t, "", "remove", "s1", "d", "--db", db)
	require.Error(t, err)

	stdout, _, err = executeCommand(t, "", "undo", "s1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Items:       4 of 4")
	assert.NotContains(t, stdout, "Removed:")
}

func TestRemoveCommand_MissingArg(t *testing.T) {
	_, _, err := executeCommand(t, "", "remove", "s1", "--db", testDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestResetCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b", "c", "d")
	_, _, err := executeCommand(t, "1\n1\nq\n", "sort", "s1", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "", "remove", "s1", "c", "--db", db)
	require.NoError(t, err)

	stdout, _, err := executeCommand(t, "", "reset", "s1", "--db", db, "--format", "json")
	require.NoError(t, err)
	var status session.Status
	decodeResponse(t, stdout, &status)
	assert.Equal(t, 0, status.ComparisonCount)
	assert.Equal(t, 0, status.SortedNo)
	assert.False(t, status.Started)
	assert.False(t, status.CanUndo)
	assert.Equal(t, []string{"c"}, status.Removed)
}

func TestResultCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b", "c")

	stdout, _, err := executeCommand(t, "", "result", "s1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E_INCOMPLETE]")

	_, _, err = executeCommand(t, "2\n2\n", "sort", "s1", "--db", db)
	require.NoError(t, err)

	stdout, _, err = executeCommand(t, "", "result", "s1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "  1. Item c\n  2. Item b\n  3. Item a\n")

	stdout, _, err = executeCommand(t, "", "result", "s1", "--db", db, "--format", "json")
	require.NoError(t, err)
	var result RankingResult
	decodeResponse(t, stdout, &result)
	assert.Equal(t, 2, result.Comparisons)
	require.Len(t, result.Ranking, 3)
	assert.Equal(t, "Item c", result.Ranking[0].Label)
}

func TestListCommand(t *testing.T) {
	db := testDB(t)

	stdout, _, err := executeCommand(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No sessions.")

	seedSession(t, db, "s1", "a", "b")
	seedSession(t, db, "s2", "x", "y", "z")
	_, _, err = executeCommand(t, "1\n", "sort", "s1", "--db", db)
	require.NoError(t, err)

	stdout, _, err = executeCommand(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "complete")
	assert.Contains(t, stdout, "0/5")

	stdout, _, err = executeCommand(t, "", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var sessions []store.Summary
	decodeResponse(t, stdout, &sessions)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.True(t, sessions[0].Completed)
	assert.Equal(t, "s2", sessions[1].ID)
	assert.Equal(t, 3, sessions[1].Items)
}

func TestDeleteCommand(t *testing.T) {
	db := testDB(t)
	seedSession(t, db, "s1", "a", "b")

	stdout, _, err := executeCommand(t, "", "delete", "s1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted session s1")

	_, _, err = executeCommand(t, "", "status", "s1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	stdout, _, err = executeCommand(t, "", "delete", "s1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "E_NOT_FOUND")
}
