// Package bytecode defines the instruction set, constant pools, and
// segment/program containers the VM executes. Instructions are a typed
// Instruction struct rather than a raw byte stream, since payload shapes
// here (scope/index pairs, 128-bit numerics, symbol IDs) don't fit a
// single-byte opcode stream cleanly.
package bytecode

// OpCode identifies one VM instruction.
type OpCode byte

const (
	// --- Stack management ---
	Nop OpCode = iota
	Dup1
	Dup2
	DupN
	Pop1
	Pop2
	PopN
	Rep1
	Rep2
	RepN
	Brk

	// --- Literal loads ---
	LdNull
	LdBool
	LdStr
	LdSym
	LdObj
	LdChar
	LdUni
	Ld8
	Ld16
	Ld32
	Ld64
	Ld128
	LdR32
	LdR64
	LdF32
	LdF64

	// --- Variable access ---
	LdLoc
	StLoc
	StpLoc
	LdArg
	StArg
	StpArg
	LdX
	StX
	StpX
	NullLoc0
	NullArg0
	NullX

	// Fused encodings: scope fixed at 0..7, only the index travels in the
	// payload.
	LdLoc0
	LdLoc1
	LdLoc2
	LdLoc3
	LdLoc4
	LdLoc5
	LdLoc6
	LdLoc7
	LdArg0
	LdArg1
	LdArg2
	LdArg3
	LdArg4
	LdArg5
	LdArg6
	LdArg7

	// --- Property access ---
	LdProp
	StProp
	StpProp
	LdMember
	StMember
	StpMember
	LdInclude

	// --- Type/list operators ---
	Cons
	Car
	Cdr
	NewFn
	NewObj
	SuperEq
	SuperNe
	Not
	Is
	TypeOf

	// --- Calls ---
	Call0
	Call1
	Call2
	Call3
	Call4
	Call5
	Call6
	Call7
	CallN
	Met0
	Met1
	Met2
	Met3
	Met4
	Met5
	Met6
	Met7
	MetN

	// Tail-call variants: reserved, not yet dispatched by the VM.
	TCall0
	TCall1
	TCall2
	TCall3
	TCall4
	TCall5
	TCall6
	TCall7
	TCallN
	TMet0
	TMet1
	TMet2
	TMet3
	TMet4
	TMet5
	TMet6
	TMet7
	TMetN

	// --- Control flow ---
	Jmp
	Bt
	Bf
	Ret

	// --- Till/escape ---
	NewTill
	TillEsc
	EndTill

	// --- Exception (reserved) ---
	Try
	EndTry

	// --- Specialty ---
	StateMachStart
	StateMachBody
	LdA
	LdD
	LdStart
	LdEnd
	LdCount
	LdLength

	// --- Block markers (skipped at runtime; disassembler formatting only) ---
	Label
	Block
	EndBlock
	Pseudo

	opCodeCount
)

var opCodeNames = [opCodeCount]string{
	Nop: "Nop", Dup1: "Dup1", Dup2: "Dup2", DupN: "DupN",
	Pop1: "Pop1", Pop2: "Pop2", PopN: "PopN",
	Rep1: "Rep1", Rep2: "Rep2", RepN: "RepN", Brk: "Brk",

	LdNull: "LdNull", LdBool: "LdBool", LdStr: "LdStr", LdSym: "LdSym",
	LdObj: "LdObj", LdChar: "LdChar", LdUni: "LdUni",
	Ld8: "Ld8", Ld16: "Ld16", Ld32: "Ld32", Ld64: "Ld64", Ld128: "Ld128",
	LdR32: "LdR32", LdR64: "LdR64", LdF32: "LdF32", LdF64: "LdF64",

	LdLoc: "LdLoc", StLoc: "StLoc", StpLoc: "StpLoc",
	LdArg: "LdArg", StArg: "StArg", StpArg: "StpArg",
	LdX: "LdX", StX: "StX", StpX: "StpX",
	NullLoc0: "NullLoc0", NullArg0: "NullArg0", NullX: "NullX",

	LdLoc0: "LdLoc0", LdLoc1: "LdLoc1", LdLoc2: "LdLoc2", LdLoc3: "LdLoc3",
	LdLoc4: "LdLoc4", LdLoc5: "LdLoc5", LdLoc6: "LdLoc6", LdLoc7: "LdLoc7",
	LdArg0: "LdArg0", LdArg1: "LdArg1", LdArg2: "LdArg2", LdArg3: "LdArg3",
	LdArg4: "LdArg4", LdArg5: "LdArg5", LdArg6: "LdArg6", LdArg7: "LdArg7",

	LdProp: "LdProp", StProp: "StProp", StpProp: "StpProp",
	LdMember: "LdMember", StMember: "StMember", StpMember: "StpMember",
	LdInclude: "LdInclude",

	Cons: "Cons", Car: "Car", Cdr: "Cdr", NewFn: "NewFn", NewObj: "NewObj",
	SuperEq: "SuperEq", SuperNe: "SuperNe", Not: "Not", Is: "Is", TypeOf: "TypeOf",

	Call0: "Call0", Call1: "Call1", Call2: "Call2", Call3: "Call3",
	Call4: "Call4", Call5: "Call5", Call6: "Call6", Call7: "Call7", CallN: "CallN",
	Met0: "Met0", Met1: "Met1", Met2: "Met2", Met3: "Met3",
	Met4: "Met4", Met5: "Met5", Met6: "Met6", Met7: "Met7", MetN: "MetN",

	TCall0: "TCall0", TCall1: "TCall1", TCall2: "TCall2", TCall3: "TCall3",
	TCall4: "TCall4", TCall5: "TCall5", TCall6: "TCall6", TCall7: "TCall7", TCallN: "TCallN",
	TMet0: "TMet0", TMet1: "TMet1", TMet2: "TMet2", TMet3: "TMet3",
	TMet4: "TMet4", TMet5: "TMet5", TMet6: "TMet6", TMet7: "TMet7", TMetN: "TMetN",

	Jmp: "Jmp", Bt: "Bt", Bf: "Bf", Ret: "Ret",

	NewTill: "NewTill", TillEsc: "TillEsc", EndTill: "EndTill",

	Try: "Try", EndTry: "EndTry",

	StateMachStart: "StateMachStart", StateMachBody: "StateMachBody",
	LdA: "LdA", LdD: "LdD", LdStart: "LdStart", LdEnd: "LdEnd",
	LdCount: "LdCount", LdLength: "LdLength",

	Label: "Label", Block: "Block", EndBlock: "EndBlock", Pseudo: "Pseudo",
}

func (op OpCode) String() string {
	if int(op) < 0 || op >= opCodeCount {
		return "OpCode(?)"
	}
	if name := opCodeNames[op]; name != "" {
		return name
	}
	return "OpCode(?)"
}

// IsBlockMarker reports whether op is one of the Label/Block/EndBlock/
// Pseudo markers skipped by the dispatch loop (disassembler-only).
func (op OpCode) IsBlockMarker() bool {
	return op == Label || op == Block || op == EndBlock || op == Pseudo
}

// IsReserved reports whether op belongs to a group the VM accepts at
// encode time but does not yet dispatch (tail calls and structured
// exceptions).
func (op OpCode) IsReserved() bool {
	switch op {
	case TCall0, TCall1, TCall2, TCall3, TCall4, TCall5, TCall6, TCall7, TCallN,
		TMet0, TMet1, TMet2, TMet3, TMet4, TMet5, TMet6, TMet7, TMetN,
		Try, EndTry:
		return true
	default:
		return false
	}
}

// FusedLocalScope returns the implied scope (0..7) for a fused LdLoc0..7 /
// LdArg0..7 opcode, plus ok=true; ok is false for any other opcode.
func (op OpCode) FusedLocalScope() (scope int, isArg bool, ok bool) {
	switch {
	case op >= LdLoc0 && op <= LdLoc7:
		return int(op - LdLoc0), false, true
	case op >= LdArg0 && op <= LdArg7:
		return int(op - LdArg0), true, true
	default:
		return 0, false, false
	}
}
