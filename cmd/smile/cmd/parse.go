package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smile/internal/lexer"
	"smile/internal/parser"
)

var (
	parseExpr string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Lex and parse Smile source, printing its s-expression AST",
	Long: `parse reads Smile source from a file argument, an inline -e
expression, or stdin, runs it through the lexer and recursive-descent
parser, and prints the resulting cons-list AST as an s-expression per
statement. It does not compile or execute anything -- the bytecode
compiler is an external collaborator this repository does not include.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		src, err := readSource(c, args)
		if err != nil {
			return err
		}
		return runParse(c, src)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseExpr, "eval", "e", "", "parse an inline expression instead of a file")
	rootCmd.AddCommand(parseCmd)
}

// readSource resolves the source text for parse/repl-adjacent commands
// from, in priority order, an inline -e expression, a file argument, or
// stdin -- the same three-way precedence dwscript's cmd/parse.go gives
// its own CLI.
func readSource(c *cobra.Command, args []string) (string, error) {
	if parseExpr != "" {
		return parseExpr, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(c.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func runParse(c *cobra.Command, src string) error {
	ctx, err := loadContext()
	if err != nil {
		return err
	}
	tbl, _ := ctx.NewSymbolTable()

	toks := lexer.New(src).All()
	p := parser.New(toks, tbl)
	results := p.Parse()

	exitCode := 0
	for i, res := range results {
		switch res.Kind {
		case parser.SuccessWithResult:
			fmt.Fprintln(c.OutOrStdout(), parser.Render(tbl, res.Node.Value))
		case parser.SuccessWithNoResult:
			// a rule that matched but produced nothing to render
		case parser.PartialParseWithError:
			fmt.Fprintln(c.OutOrStdout(), parser.Render(tbl, res.Node.Value))
			fmt.Fprintf(c.ErrOrStderr(), "statement %d: %v\n", i+1, res.Err)
			exitCode = 1
		case parser.ErroredButRecovered:
			fmt.Fprintf(c.ErrOrStderr(), "statement %d: %v\n", i+1, res.Err)
			exitCode = 1
		case parser.NotMatchedAndNoTokensConsumed:
			// nothing left to parse
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
