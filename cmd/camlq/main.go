// Command camlq renders, validates, tests and catalogs CAML query
// definitions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/camlkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
