// Package cmd implements the smile CLI's subcommands on top of cobra:
// one file per subcommand, a shared rootCmd carrying persistent flags,
// and Execute as the single entry point main.go calls.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"smile/internal/config"
)

var (
	// Version is overridden at build time via -ldflags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "smile",
	Short: "Smile language tooling",
	Long: `smile drives the core execution engine of the Smile language:
lexing, parsing to a cons-list AST, and disassembling compiled bytecode
segments. It has no bundled compiler -- the bytecode compiler is an
external collaborator whose output this tool can only disassemble, not
produce from source.`,
	Version: Version,
}

// Execute runs the root command; main.go's only job is calling this.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an interpreter-context YAML config file")
}

// loadContext resolves the InterpreterContext every subcommand builds its
// symbol table and regex cache from: config.Default() when --config was
// not given, or config.Load(configPath) otherwise -- a malformed file is
// a real error, a missing one is not (config.Load's own contract).
func loadContext() (*config.InterpreterContext, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
