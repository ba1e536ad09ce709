package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
	"github.com/roach88/pairsort/internal/store"
)

// sessionCommand builds a command taking a session id plus extra args.
func sessionCommand(rootOpts *RootOptions, use, short, long string, extraArgs int,
	run func(ctx context.Context, f *OutputFormatter, drv *session.Driver, args []string) error) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.ExactArgs(1 + extraArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(ctx context.Context, f *OutputFormatter, drv *session.Driver) error {
				return run(ctx, f, drv, args[1:])
			})
		},
	}
	opts.addDatabaseFlag(cmd)
	return cmd
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return sessionCommand(rootOpts, "status <session>", "Show session progress",
		`Show how far a session has progressed.

Example:
  pairsort status <session> --format json`, 0,
		func(_ context.Context, f *OutputFormatter, drv *session.Driver, _ []string) error {
			return emitStatus(f, drv.Status())
		})
}

func emitStatus(f *OutputFormatter, st session.Status) error {
	return f.Emit(st, func(w io.Writer) { printStatus(w, st) })
}

func printStatus(w io.Writer, st session.Status) {
	fmt.Fprintf(w, "Session:     %s (%s)\n", st.Name, st.ID)
	state := "not started"
	switch {
	case st.Completed:
		state = "complete"
	case st.Started:
		state = "in progress"
	}
	fmt.Fprintf(w, "State:       %s\n", state)
	fmt.Fprintf(w, "Progress:    %d%% (%d/%d)\n", st.Percent, st.SortedNo, st.TotalBattles)
	fmt.Fprintf(w, "Comparisons: %d\n", st.ComparisonCount)
	fmt.Fprintf(w, "Items:       %d of %d\n", st.Remaining, st.Items)
	if len(st.Removed) > 0 {
		fmt.Fprintf(w, "Removed:     %s\n", strings.Join(st.Removed, ", "))
	}
	undo := "no"
	if st.CanUndo {
		undo = "yes"
	}
	fmt.Fprintf(w, "Can undo:    %s\n", undo)
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return sessionCommand(rootOpts, "undo <session>", "Undo the last answer or removal",
		`Revert the most recent answer or item removal of a session.

Only the last step can be undone.`, 0,
		func(_ context.Context, f *OutputFormatter, drv *session.Driver, _ []string) error {
			if err := drv.Undo(); err != nil {
				if sorter.IsNothingToUndo(err) {
					return f.Fail(ExitFailure, "E_NOTHING_TO_UNDO", "nothing to undo", nil)
				}
				return WrapExitError(ExitCommandError, "undo failed", err)
			}
			return emitStatus(f, drv.Status())
		})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return sessionCommand(rootOpts, "remove <session> <item>", "Remove an item from a session",
		`Remove an item from a session. Answers involving the item are dropped
and progress moves ahead. The removal can be undone.

Example:
  pairsort remove <session> pretzel`, 1,
		func(_ context.Context, f *OutputFormatter, drv *session.Driver, args []string) error {
			if err := drv.RemoveItem(args[0]); err != nil {
				if sorter.IsUnknownItem(err) {
					return f.Fail(ExitFailure, "E_UNKNOWN_ITEM", fmt.Sprintf("no item %q in this sort", args[0]), nil)
				}
				return WrapExitError(ExitCommandError, "remove failed", err)
			}
			return emitStatus(f, drv.Status())
		})
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return sessionCommand(rootOpts, "reset <session>", "Discard every answer of a session",
		`Discard every answer of a session. The next sort starts from a new
shuffle. Removed items stay removed.`, 0,
		func(_ context.Context, f *OutputFormatter, drv *session.Driver, _ []string) error {
			if err := drv.Reset(); err != nil {
				return WrapExitError(ExitCommandError, "reset failed", err)
			}
			return emitStatus(f, drv.Status())
		})
}

// NewResultCommand creates the result command.
func NewResultCommand(rootOpts *RootOptions) *cobra.Command {
	return sessionCommand(rootOpts, "result <session>", "Show the final ranking",
		`Show the final ranking of a completed session.

Exit codes:
  0 - Ranking printed
  1 - Session not complete
  2 - Command error (unknown session, etc.)`, 0,
		func(_ context.Context, f *OutputFormatter, drv *session.Driver, _ []string) error {
			st := drv.Status()
			if !st.Completed {
				return f.Fail(ExitFailure, "E_INCOMPLETE",
					fmt.Sprintf("session %s is not complete (%d%%)", drv.ID(), st.Percent), nil)
			}
			result := RankingResult{
				ID:          drv.ID(),
				Name:        drv.Name(),
				Completed:   true,
				Comparisons: st.ComparisonCount,
				Ranking:     drv.Ranking(),
			}
			return f.Emit(result, func(w io.Writer) { printRanking(w, result) })
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "delete <session>",
		Short:         "Delete a session and its answers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, opts.RootOptions)
			logger := newLogger(f.GetErrWriter(), opts.Verbose)

			st, closeStore, err := openStore(opts.Database, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			id := args[0]
			if err := st.DeleteSession(ctx, id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return f.Fail(ExitCommandError, "E_NOT_FOUND", fmt.Sprintf("session not found: %s", id), nil)
				}
				return WrapExitError(ExitCommandError, "delete failed", err)
			}
			return f.Emit(map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted session %s\n", id)
			})
		},
	}
	opts.addDatabaseFlag(cmd)
	return cmd
}
