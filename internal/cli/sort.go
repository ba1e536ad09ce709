package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
)

// SortOptions holds flags for the sort command.
type SortOptions struct {
	SessionOptions
	Seed uint64
}

// RankingResult is the payload of the sort and result commands.
type RankingResult struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Completed   bool          `json:"completed"`
	Comparisons int           `json:"comparisons"`
	Ranking     []sorter.Item `json:"ranking"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SortOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "sort <session>",
		Short: "Answer comparisons until the session is ranked",
		Long: `Ask the comparisons the session still needs, one at a time.

At each prompt:
  1, 2      pick the first or second item
  u         undo the last answer or removal
  x <id>    remove an item from the sort
  r         reset every answer and start over
  q         quit; progress is already saved

Every answer is saved as it is given. Running sort again resumes where
the session stopped without asking any question twice.

Examples:
  pairsort sort 01927c3e-7b8a-7000-8000-5f1c2d3e4a5b
  pairsort sort <session> --seed 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts, args[0], cmd)
		},
	}

	opts.addDatabaseFlag(cmd)
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed for a session not yet started (0 = random)")

	return cmd
}

func runSort(opts *SortOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	logger := newLogger(f.GetErrWriter(), opts.Verbose)

	st, closeStore, err := openStore(opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var sorterOpts []sorter.Option
	if opts.Seed != 0 {
		sorterOpts = append(sorterOpts, sorter.WithRand(rand.New(rand.NewPCG(opts.Seed, opts.Seed))))
	}
	drv, err := openDriver(ctx, f, st, id, logger, session.WithSorterOptions(sorterOpts...))
	if err != nil {
		return err
	}

	// Prompts go to stdout for humans and stay off it for JSON.
	promptOut := f.Writer
	if f.Format == "json" {
		promptOut = f.GetErrWriter()
	}
	p := newPrompter(drv, cmd.InOrStdin(), promptOut)
	defer p.close()

	status := drv.Status()
	if !status.Completed {
		fmt.Fprintf(promptOut, "Sorting %s: %d items. Type ? for help.\n", drv.Name(), status.Remaining)
	}

	ranked, err := drv.Run(ctx, p.decide)
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		status := drv.Status()
		fmt.Fprintf(promptOut, "\nProgress saved at %d%% (%d comparisons). Resume with: pairsort sort %s\n",
			status.Percent, status.ComparisonCount, id)
		return f.Emit(status, func(io.Writer) {})
	}
	if err != nil {
		return WrapExitError(ExitFailure, "sort failed", err)
	}

	result := RankingResult{
		ID:          id,
		Name:        drv.Name(),
		Completed:   true,
		Comparisons: drv.Sorter().ComparisonCount(),
		Ranking:     ranked,
	}
	return f.Emit(result, func(w io.Writer) { printRanking(w, result) })
}

func printRanking(w io.Writer, r RankingResult) {
	fmt.Fprintf(w, "\nFinal ranking for %s (%d comparisons):\n", r.Name, r.Comparisons)
	for i, it := range r.Ranking {
		fmt.Fprintf(w, "%3d. %s\n", i+1, it.Label)
	}
}

var (
	errQuit           = errors.New("sort stopped by user")
	errCommandApplied = errors.New("command applied")
)

// prompter is an interactive Decider reading answers line by line.
type prompter struct {
	drv   *session.Driver
	out   io.Writer
	lines chan string
	done  chan struct{}
}

func newPrompter(drv *session.Driver, in io.Reader, out io.Writer) *prompter {
	p := &prompter{
		drv:   drv,
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go p.scan(in)
	return p
}

func (p *prompter) scan(in io.Reader) {
	defer close(p.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case p.lines <- sc.Text():
		case <-p.done:
			return
		}
	}
}

func (p *prompter) close() { close(p.done) }

// decide asks until it gets an answer. Undo, remove and reset are applied
// on the spot; the sort then restarts and asks again.
func (p *prompter) decide(ctx context.Context, a, b sorter.Item) (string, error) {
	for {
		fmt.Fprintf(p.out, "\n[%d%%] Which do you prefer?\n  1) %s\n  2) %s\n> ",
			p.drv.Sorter().Percent(), a.Label, b.Label)

		var line string
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l, ok := <-p.lines:
			if !ok {
				return "", errQuit
			}
			line = strings.TrimSpace(l)
		}

		verb, arg, _ := strings.Cut(line, " ")
		switch strings.ToLower(verb) {
		case "1":
			return a.ID, nil
		case "2":
			return b.ID, nil
		case "q":
			return "", errQuit
		case "u":
			if err := p.drv.Undo(); err != nil {
				if sorter.IsNothingToUndo(err) {
					fmt.Fprintln(p.out, "Nothing to undo.")
					continue
				}
				return "", err
			}
			fmt.Fprintln(p.out, "Undone.")
			return "", errCommandApplied
		case "x":
			target := strings.TrimSpace(arg)
			if target == "" {
				fmt.Fprintln(p.out, "Usage: x <item-id>")
				continue
			}
			if err := p.drv.RemoveItem(target); err != nil {
				if sorter.IsUnknownItem(err) {
					fmt.Fprintf(p.out, "No item %q in this sort.\n", target)
					continue
				}
				return "", err
			}
			fmt.Fprintf(p.out, "Removed %s.\n", target)
			return "", errCommandApplied
		case "r":
			if err := p.drv.Reset(); err != nil {
				return "", err
			}
			fmt.Fprintln(p.out, "Reset. Starting over.")
			return "", errCommandApplied
		case "?", "h", "help":
			fmt.Fprintln(p.out, "1/2 pick, u undo, x <id> remove, r reset, q quit")
		default:
			fmt.Fprintf(p.out, "Unrecognized input %q. Type ? for help.\n", line)
		}
	}
}
