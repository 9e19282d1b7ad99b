package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"smile/internal/bytecode"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// cobra/pflag reuse rootCmd's FlagSet across Execute calls, so a flag
	// set by one test (e.g. parse -e, --config) would otherwise leak into
	// the next; reset explicitly rather than constructing a fresh command
	// tree per test.
	parseExpr = ""
	configPath = ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseCommandPrintsRenderedAST(t *testing.T) {
	out, _, err := runCommand(t, "parse", "-e", "1 + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "((1 . +) 2)\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestParseCommandReadsFileArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.sm")
	if err := os.WriteFile(path, []byte("var x = 1"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _, err := runCommand(t, "parse", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "($var x 1)\n" {
		t.Fatalf("got %q", out)
	}
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	out, _, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("smile version")) {
		t.Fatalf("got %q", out)
	}
}

func TestDisasmCommandReadsSerializedProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.smbc")

	prog := bytecode.NewProgram("inline")
	idx := prog.Root.AddString("hi")
	prog.Root.Emit(bytecode.Instruction{Op: bytecode.LdStr, ConstIdx: idx})
	prog.Root.Emit(bytecode.Instruction{Op: bytecode.Ret})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := prog.Serialize(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Close()

	out, _, err := runCommand(t, "disasm", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("LdStr")) {
		t.Fatalf("expected disassembly to mention LdStr, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("inline")) {
		t.Fatalf("expected disassembly header to mention the source ref, got %q", out)
	}
}

func TestParseCommandHonorsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "smile.yaml")
	if err := os.WriteFile(cfgPath, []byte("symbolTableCapacity: 2048\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _, err := runCommand(t, "--config", cfgPath, "parse", "-e", "1 + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "((1 . +) 2)\n" {
		t.Fatalf("got %q", out)
	}
}

func TestParseCommandRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "smile.yaml")
	if err := os.WriteFile(cfgPath, []byte("not: [valid"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := runCommand(t, "--config", cfgPath, "parse", "-e", "1"); err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
}

func TestDisasmCommandRejectsNonBytecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-bytecode.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := runCommand(t, "disasm", path); err == nil {
		t.Fatal("expected an error disassembling a non-bytecode file")
	}
}
