package bytecode

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Disassemble renders seg's code as one line per instruction, in a
// "%04d  OPNAME  operand" listing style, with byte/constant counts
// humanized for the trailing summary line.
func Disassemble(name string, seg *Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for ip, instr := range seg.Code {
		fmt.Fprintf(&b, "%04d  %s", ip, instr.Op)
		if operand := formatOperand(instr); operand != "" {
			fmt.Fprintf(&b, "  %s", operand)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "-- %s instructions, %s strings, %s objects, %s functions\n",
		humanize.Comma(int64(len(seg.Code))),
		humanize.Comma(int64(len(seg.Strings))),
		humanize.Comma(int64(len(seg.Objects))),
		humanize.Comma(int64(len(seg.Functions))),
	)
	return b.String()
}

// formatOperand renders the payload fields relevant to instr.Op, since
// Instruction carries every possible shape but only one or two are live
// for any given opcode.
func formatOperand(instr Instruction) string {
	op := instr.Op
	switch {
	case op.IsBlockMarker():
		return ""
	}

	if _, _, ok := op.FusedLocalScope(); ok {
		return fmt.Sprintf("[%d]", instr.Index)
	}

	switch op {
	case LdLoc, StLoc, StpLoc, LdArg, StArg, StpArg:
		return fmt.Sprintf("%d[%d]", instr.Scope, instr.Index)
	case LdX, StX, StpX:
		return fmt.Sprintf("sym:%d", instr.Sym)
	case LdStr:
		return fmt.Sprintf("#%d", instr.ConstIdx)
	case LdObj:
		return fmt.Sprintf("#%d", instr.ConstIdx)
	case LdSym, LdProp, StProp, StpProp, LdMember, StMember, StpMember:
		return fmt.Sprintf("sym:%d", instr.Sym)
	case LdInclude:
		return fmt.Sprintf("#%d/%d", instr.ConstIdx, instr.ConstIdx2)
	case Ld8, Ld16, Ld32, Ld64:
		return fmt.Sprintf("%d", instr.Imm)
	case Ld128, LdR32, LdR64:
		return fmt.Sprintf("#%d", instr.ConstIdx)
	case LdF32, LdF64:
		return fmt.Sprintf("%g", instr.Real)
	case LdBool:
		return fmt.Sprintf("%v", instr.Bool)
	case LdChar, LdUni:
		return fmt.Sprintf("%q", instr.Char)
	case NewFn:
		return fmt.Sprintf("#%d", instr.ConstIdx)
	case Jmp, Bt, Bf:
		return fmt.Sprintf("-> %d", instr.Imm)
	case CallN, MetN, TCallN, TMetN:
		return fmt.Sprintf("argc=%d", instr.Imm)
	case NewTill:
		return fmt.Sprintf("#%d", instr.ConstIdx)
	case TillEsc:
		return fmt.Sprintf("branch=%d", instr.Imm)
	default:
		return ""
	}
}
