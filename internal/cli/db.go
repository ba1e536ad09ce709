package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
	"github.com/roach88/pairsort/internal/store"
)

// DatabaseEnv names the environment variable that overrides the default
// database path.
const DatabaseEnv = "PAIRSORT_DB"

const defaultDatabase = "pairsort.db"

// SessionOptions holds flags for commands that work on stored sessions.
type SessionOptions struct {
	*RootOptions
	Database string
}

func (o *SessionOptions) addDatabaseFlag(cmd *cobra.Command) {
	path := os.Getenv(DatabaseEnv)
	if path == "" {
		path = defaultDatabase
	}
	cmd.Flags().StringVar(&o.Database, "db", path, "path to SQLite database (env "+DatabaseEnv+")")
}

// newLogger builds the CLI logger: text on w, Debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func openStore(path string, logger *slog.Logger) (*store.Store, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	closeFn := func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}
	return st, closeFn, nil
}

// openDriver opens a stored session, reporting unknown ids through f.
func openDriver(ctx context.Context, f *OutputFormatter, st *store.Store, id string, logger *slog.Logger, opts ...session.Option) (*session.Driver, error) {
	opts = append([]session.Option{session.WithLogger(logger)}, opts...)
	drv, err := session.Open(ctx, st, id, opts...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, f.Fail(ExitCommandError, "E_NOT_FOUND", fmt.Sprintf("session not found: %s", id), nil)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open session", err)
	}
	return drv, nil
}

// withSession opens the database and session id, then calls fn.
// Progress animation is skipped since no one watches it.
func withSession(cmd *cobra.Command, opts *SessionOptions, id string, fn func(ctx context.Context, f *OutputFormatter, drv *session.Driver) error) error {
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
	drv, err := openDriver(ctx, f, st, id, logger,
		session.WithSorterOptions(sorter.WithAnimation(1, 0)))
	if err != nil {
		return err
	}
	return fn(ctx, f, drv)
}
