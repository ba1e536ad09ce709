package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pairsort/internal/items"
	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	SessionOptions
	Name string

	// IDGenerator allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator session.IDGenerator
}

// NewSessionResult is the payload of the new command.
type NewSessionResult struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Items        int    `json:"items"`
	TotalBattles int    `json:"total_battles"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "new <items-file>",
		Short: "Create a sort session from an item file",
		Long: `Create a sort session from a YAML, JSON or CUE item file.

Items are either plain strings or mappings with id, label and attrs:

  name: snacks
  items:
    - popcorn
    - id: pretzel
      label: Soft pretzel

Examples:
  pairsort new snacks.yaml
  pairsort new albums.cue --name "Albums of 1997"
  pairsort new cities.json --db ~/rankings.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args[0], cmd)
		},
	}

	opts.addDatabaseFlag(cmd)
	cmd.Flags().StringVar(&opts.Name, "name", "", "session name (default: list name or file name)")

	return cmd
}

func runNew(opts *NewOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	logger := newLogger(f.GetErrWriter(), opts.Verbose)

	list, err := items.Load(path)
	if err != nil {
		if items.IsValidationError(err) {
			return f.Fail(ExitFailure, "E_INVALID_ITEMS", err.Error(), err)
		}
		return f.Fail(ExitCommandError, "E_ITEM_FILE", fmt.Sprintf("failed to load %s", path), err)
	}
	name := list.Name
	if opts.Name != "" {
		name = opts.Name
	}

	st, closeStore, err := openStore(opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	gen := opts.IDGenerator
	if gen == nil {
		gen = session.UUIDv7Generator{}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := session.Create(ctx, st, gen, name, list.Items)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}
	logger.Debug("session created", "session_id", id, "items", len(list.Items))

	result := NewSessionResult{
		ID:           id,
		Name:         name,
		Items:        len(list.Items),
		TotalBattles: sorter.CountBattles(len(list.Items)),
	}
	return f.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "Created session %s (%s, %d items)\n", id, name, result.Items)
		fmt.Fprintf(w, "Start sorting with: pairsort sort %s\n", id)
	})
}
