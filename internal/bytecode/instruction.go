package bytecode

import (
	"smile/internal/symbol"
)

// Instruction is one decoded VM instruction: an opcode plus whichever of
// its payload fields apply (byte, int16/32/64, real32/64, float32/64,
// symbol ID, boolean, character, Unicode code point, constant-pool index,
// or a (scope,index) pair). A flat struct is used instead of a packed
// byte stream since most payload shapes need more than one machine word
// and the VM is not expected to be cache-line-sensitive at interpreter
// speed.
type Instruction struct {
	Op OpCode

	// (scope, index) operand pair -- LdLoc/StLoc/LdArg/StArg family, and
	// the fused LdLoc0..7/LdArg0..7 encodings (Index only; Scope implied
	// by the opcode itself).
	Scope int32
	Index int32

	// General constant-pool index -- LdStr/LdObj/Ld128/NewFn/LdInclude's
	// module index, till-metadata index, etc. Meaning depends on Op.
	ConstIdx int32

	// Second constant-pool index, used only by two-index opcodes
	// (LdInclude's varIdx).
	ConstIdx2 int32

	// Inline numeric/boolean/character immediates (Ld8/16/32/64, LdChar,
	// LdUni, LdBool, relative jump offsets, call/method arities).
	Imm  int64
	Bool bool
	Char rune

	// Inline binary-floating immediates (LdF32/64). LdR32/64 do not use
	// it: they read the Numerics pool via ConstIdx, as Ld128 does.
	Real float64

	// Symbol-ID immediates -- LdSym, LdX/StX/StpX, LdProp/StProp/StpProp,
	// Met(n,sym).
	Sym symbol.ID

	Loc SourceLoc
}

// SourceLoc is a source location record: filename, 1-based line/column,
// and byte offset. Attached to both parser AST nodes and bytecode
// instructions for diagnostics.
type SourceLoc struct {
	File   string
	Line   int
	Column int
	Offset int
}
