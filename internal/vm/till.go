package vm

import (
	"smile/internal/bytecode"
	"smile/internal/closure"
	"smile/internal/value"
)

// TillContinuation is the KTillContinuation heap payload NewTill pushes:
// the closure/segment/stack-depth active when the till form was entered,
// plus its resolvable branch targets.
// Single-shot: Valid flips false on first escape or normal EndTill, and a
// second TillEsc against the same object is an eval-error.
type TillContinuation struct {
	Closure  *closure.Closure
	Segment  *bytecode.Segment
	StackTop int
	Targets  []int
	Valid    bool
}

func newTillContinuation(cur *closure.Closure, seg *bytecode.Segment, meta *bytecode.TillMetadata) *TillContinuation {
	return &TillContinuation{
		Closure:  cur,
		Segment:  seg,
		StackTop: cur.Depth(),
		Targets:  meta.Targets,
		Valid:    true,
	}
}

func asTillContinuation(v value.Value) (*TillContinuation, bool) {
	if v.Kind != value.KTillContinuation {
		return nil, false
	}
	tc, ok := v.AsObj().(*TillContinuation)
	return tc, ok
}

// tillEscape is panicked by TillEsc and recovered by the execClosure
// invocation that owns the target TillContinuation -- the idiomatic Go
// stand-in for a non-local jump across however many native call frames
// separate the escape from the till it targets.
type tillEscape struct {
	target *TillContinuation
	branch int
}
