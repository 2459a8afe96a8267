// Command symgrep is the command-line entry point: a cobra root command
// with one subcommand per core operation (search, index, index-info,
// serve, annotate, follow), sharing a common set of scope/output flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
