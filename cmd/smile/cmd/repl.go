package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smile/internal/lexer"
	"smile/internal/parser"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively lex and parse Smile expressions",
	Long: `repl reads one line at a time, parses it, and prints its
s-expression AST. It stops at parsing: there is no bytecode compiler in
this repository to turn the result into something a VM could run.`,
	RunE: func(c *cobra.Command, args []string) error {
		return runRepl(c)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(c *cobra.Command) error {
	out := c.OutOrStdout()
	fmt.Fprintln(out, "smile repl | type 'exit' to quit")

	ctx, err := loadContext()
	if err != nil {
		return err
	}
	tbl, _ := ctx.NewSymbolTable()

	scanner := bufio.NewScanner(c.InOrStdin())
	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		toks := lexer.New(line).All()
		p := parser.New(toks, tbl)
		res := p.Parse()
		for _, r := range res {
			switch r.Kind {
			case parser.SuccessWithResult:
				fmt.Fprintln(out, parser.Render(tbl, r.Node.Value))
			case parser.ErroredButRecovered, parser.PartialParseWithError:
				fmt.Fprintf(os.Stderr, "parse error: %v\n", r.Err)
			}
		}
	}
	return nil
}
