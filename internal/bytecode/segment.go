package bytecode

import (
	"math/big"

	"github.com/google/uuid"

	"smile/internal/closure"
	"smile/internal/value"
)

// TillMetadata records the loop-target bookkeeping a `till` form needs to
// resolve its named escape points at NewTill/TillEsc time. Targets maps
// each escape-name's symbol ID, via its
// position in the owning till's name list, to the instruction index the
// escape jumps to.
type TillMetadata struct {
	Names   []int32 // symbol IDs of the till's named escape points, in declaration order
	Targets []int   // parallel slice: instruction index each name escapes to
}

// FunctionProto is the constant-pool entry a NewFn opcode instantiates: a
// closure template plus the code that runs inside it. The running Closure
// is created per-call from Info; Code/Segment indices are resolved at load
// time by the VM.
type FunctionProto struct {
	Info *closure.ClosureInfo
	Code []Instruction

	// DefiningSegment is resolved lazily by the VM the first time NewFn or
	// LdInclude instantiates this prototype: the Segment whose constant
	// pools its Code's LdStr/LdObj/... instructions index into.
	DefiningSegment *Segment
}

// Segment is one compiled unit's instructions plus its constant pools. A
// Program has one root Segment; each user-defined function is a
// FunctionProto in that Segment's Functions pool whose Code indexes the
// same Segment's pools, not a nested Segment. Unlike a single flat constant
// pool, each pool here is independently indexed by kind (strings, objects,
// 128-bit numerics, function prototypes, till metadata, source locations),
// since bytecode instructions reference a pool-and-index pair rather than
// one shared heterogeneous array.
type Segment struct {
	Code []Instruction

	Strings   []string
	Objects   []value.Value
	Numerics  []*big.Float
	Functions []*FunctionProto
	Tills     []*TillMetadata
	Locations []SourceLoc
}

// NewSegment returns an empty Segment ready to be appended to.
func NewSegment() *Segment {
	return &Segment{}
}

func (s *Segment) AddString(str string) int32 {
	s.Strings = append(s.Strings, str)
	return int32(len(s.Strings) - 1)
}

func (s *Segment) AddObject(v value.Value) int32 {
	s.Objects = append(s.Objects, v)
	return int32(len(s.Objects) - 1)
}

func (s *Segment) AddNumeric(n *big.Float) int32 {
	s.Numerics = append(s.Numerics, n)
	return int32(len(s.Numerics) - 1)
}

func (s *Segment) AddFunction(fn *FunctionProto) int32 {
	s.Functions = append(s.Functions, fn)
	return int32(len(s.Functions) - 1)
}

func (s *Segment) AddTill(t *TillMetadata) int32 {
	s.Tills = append(s.Tills, t)
	return int32(len(s.Tills) - 1)
}

func (s *Segment) AddLocation(loc SourceLoc) int32 {
	s.Locations = append(s.Locations, loc)
	return int32(len(s.Locations) - 1)
}

func (s *Segment) Emit(instr Instruction) int {
	s.Code = append(s.Code, instr)
	return len(s.Code) - 1
}

// Program is a complete compiled unit: a root Segment plus a build
// identifier used to correlate disassembly/diagnostics/snapshot output
// against the source that produced it (a fresh random UUID is cheaper
// and less fragile than a content hash for that correlation purpose).
type Program struct {
	Root      *Segment
	BuildID   uuid.UUID
	SourceRef string // e.g. the top-level file path or REPL session tag
}

func NewProgram(sourceRef string) *Program {
	return &Program{
		Root:      NewSegment(),
		BuildID:   uuid.New(),
		SourceRef: sourceRef,
	}
}
