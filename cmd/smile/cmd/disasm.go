package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smile/internal/bytecode"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Disassemble a serialized bytecode Program",
	Long: `disasm reads a Program written by internal/bytecode's Serialize
(magic number "SMIL", then build id, source reference, and a Segment
tree) and prints every Segment's instructions -- the root program
segment first, then each nested function prototype's segment in
declaration order. There is no compiler in this repository to produce
such a file from source; it is meant for artifacts produced by tests or
by an external compiler targeting this bytecode format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runDisasm(c, args[0])
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(c *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	prog, err := bytecode.Deserialize(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "build %s  source %q\n\n", prog.BuildID, prog.SourceRef)
	fmt.Fprint(out, bytecode.Disassemble("main", prog.Root))
	disasmFunctions(out, "main", prog.Root)
	return nil
}

func disasmFunctions(out io.Writer, owner string, seg *bytecode.Segment) {
	for i, fn := range seg.Functions {
		name := fn.Info.Name
		if name == "" {
			name = fmt.Sprintf("%s.fn%d", owner, i)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, bytecode.Disassemble(name, &bytecode.Segment{Code: fn.Code}))
	}
}
