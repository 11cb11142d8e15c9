// Command beatline validates, inspects and plays rhythm charts.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/beatline/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
