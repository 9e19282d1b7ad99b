package bytecode

import (
	"strings"
	"testing"

	"smile/internal/closure"
	"smile/internal/value"
)

func TestOpCodeStringRoundTrip(t *testing.T) {
	cases := []OpCode{Nop, LdLoc0, LdArg7, Call3, MetN, TillEsc, Label}
	for _, op := range cases {
		if op.String() == "OpCode(?)" {
			t.Fatalf("opcode %d should have a name", op)
		}
	}
	if got := OpCode(250).String(); got != "OpCode(?)" {
		t.Fatalf("out-of-range opcode should render as unknown, got %q", got)
	}
}

func TestIsBlockMarker(t *testing.T) {
	for _, op := range []OpCode{Label, Block, EndBlock, Pseudo} {
		if !op.IsBlockMarker() {
			t.Fatalf("%s should be a block marker", op)
		}
	}
	if Nop.IsBlockMarker() {
		t.Fatalf("Nop should not be a block marker")
	}
}

func TestIsReservedCoversTailCallsAndTry(t *testing.T) {
	for _, op := range []OpCode{TCall0, TCallN, TMet0, TMetN, Try, EndTry} {
		if !op.IsReserved() {
			t.Fatalf("%s should be reserved", op)
		}
	}
	if Call0.IsReserved() {
		t.Fatalf("Call0 should not be reserved")
	}
}

func TestFusedLocalScope(t *testing.T) {
	scope, isArg, ok := LdLoc3.FusedLocalScope()
	if !ok || isArg || scope != 3 {
		t.Fatalf("LdLoc3 should report scope=3, isArg=false, got scope=%d isArg=%v ok=%v", scope, isArg, ok)
	}
	scope, isArg, ok = LdArg5.FusedLocalScope()
	if !ok || !isArg || scope != 5 {
		t.Fatalf("LdArg5 should report scope=5, isArg=true, got scope=%d isArg=%v ok=%v", scope, isArg, ok)
	}
	if _, _, ok := LdProp.FusedLocalScope(); ok {
		t.Fatalf("LdProp is not a fused local opcode")
	}
}

func TestSegmentConstantPoolIndices(t *testing.T) {
	seg := NewSegment()
	if idx := seg.AddString("hello"); idx != 0 {
		t.Fatalf("first string should get index 0, got %d", idx)
	}
	if idx := seg.AddString("world"); idx != 1 {
		t.Fatalf("second string should get index 1, got %d", idx)
	}
	if idx := seg.AddObject(value.Int64(42)); idx != 0 {
		t.Fatalf("object pool indexes independently of the string pool, got %d", idx)
	}
}

func TestSegmentEmitReturnsInstructionIndex(t *testing.T) {
	seg := NewSegment()
	i0 := seg.Emit(Instruction{Op: LdNull})
	i1 := seg.Emit(Instruction{Op: Ret})
	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected sequential indices 0,1, got %d,%d", i0, i1)
	}
}

func TestNewProgramHasBuildIDAndRoot(t *testing.T) {
	p := NewProgram("repl")
	if p.BuildID.String() == "" {
		t.Fatalf("program should have a non-empty build id")
	}
	if p.Root == nil {
		t.Fatalf("program should start with an empty root segment")
	}
}

func TestDisassembleRendersFusedAndIndexedOperands(t *testing.T) {
	seg := NewSegment()
	strIdx := seg.AddString("greeting")
	seg.Emit(Instruction{Op: LdStr, ConstIdx: strIdx})
	seg.Emit(Instruction{Op: LdLoc2, Index: 0})
	seg.Emit(Instruction{Op: LdLoc, Scope: 1, Index: 3})
	seg.Emit(Instruction{Op: Jmp, Imm: 5})
	seg.Emit(Instruction{Op: Ret})

	out := Disassemble("main", seg)
	if !strings.Contains(out, "LdStr") || !strings.Contains(out, "#0") {
		t.Fatalf("disassembly should show the string constant index: %s", out)
	}
	if !strings.Contains(out, "LdLoc2") || !strings.Contains(out, "[0]") {
		t.Fatalf("disassembly should show fused-scope operand: %s", out)
	}
	if !strings.Contains(out, "1[3]") {
		t.Fatalf("disassembly should show scope[index] for generic LdLoc: %s", out)
	}
	if !strings.Contains(out, "-> 5") {
		t.Fatalf("disassembly should show jump target: %s", out)
	}
	if !strings.Contains(out, "5 instructions") {
		t.Fatalf("disassembly should summarize instruction count: %s", out)
	}
}

func TestFunctionProtoHoldsClosureInfo(t *testing.T) {
	fn := &FunctionProto{
		Info: &closure.ClosureInfo{Name: "double", NumArgs: 1, NumLocals: 0, MaxStack: 2},
		Code: []Instruction{{Op: LdArg0, Index: 0}, {Op: Ret}},
	}
	seg := NewSegment()
	idx := seg.AddFunction(fn)
	if idx != 0 {
		t.Fatalf("first function should get index 0, got %d", idx)
	}
	if seg.Functions[0].Info.Name != "double" {
		t.Fatalf("function prototype should preserve its ClosureInfo")
	}
}
