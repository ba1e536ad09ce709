// Command pairsort ranks a list of items through pairwise choices.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pairsort/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
