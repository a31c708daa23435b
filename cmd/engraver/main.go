// Command engraver lays out piano scores in klavarskribo notation.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/engraver/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "engraver:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
