package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pairsort/internal/store"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}
	opts.addDatabaseFlag(cmd)
	return cmd
}

func runList(opts *SessionOptions, cmd *cobra.Command) error {
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
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	return f.Emit(sessions, func(w io.Writer) { printSessions(w, sessions) })
}

func printSessions(w io.Writer, sessions []store.Summary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions.")
		return
	}
	for _, s := range sessions {
		state := fmt.Sprintf("%d/%d", s.SortedNo, s.TotalBattles)
		if s.Completed {
			state = "complete"
		}
		fmt.Fprintf(w, "%-36s  %-24s  %3d items  %4d comparisons  %s\n",
			s.ID, s.Name, s.Items, s.ComparisonCount, state)
	}
}
