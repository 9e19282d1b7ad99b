// Command smile is the language tooling CLI: lexing, parsing, and
// bytecode disassembly for the Smile language, with its subcommands
// built on github.com/spf13/cobra.
package main

import (
	"fmt"
	"os"

	"smile/cmd/smile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
