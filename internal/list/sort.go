package list

import (
	"sort"
	"strings"

	"github.com/maruel/natural"

	"smile/internal/value"
)

// SortMachine implements a stable, interruptible bottom-up merge sort
// driven by a user cmp(a, b) function returning a negative/zero/positive
// number. It never recurses, so the VM's native stack does not grow
// across a cmp invocation.
type SortMachine struct {
	elems       []value.Value
	buf         []value.Value
	cmpFn       value.Value
	width       int
	lo          int // start of the current pair of runs being merged
	i, iEnd     int // left run cursor/bound
	j, jEnd     int // right run cursor/bound
	k           int // output cursor within buf
	destructive bool
	original    value.Value
}

// NewSort builds a sort machine over lst using cmpFn (a 2-arg Smile
// function returning a signed comparison result). destructive selects
// `sort!`'s in-place-spine semantics vs `sort`'s fresh-list semantics.
func NewSort(lst, cmpFn value.Value, destructive bool) *SortMachine {
	elems := ToSlice(lst)
	n := len(elems)
	return &SortMachine{
		elems:       elems,
		buf:         make([]value.Value, n),
		cmpFn:       cmpFn,
		width:       1,
		// First run pair: elems[0:1] against elems[1:2].
		iEnd:        min(1, n),
		j:           min(1, n),
		jEnd:        min(2, n),
		destructive: destructive,
		original:    lst,
	}
}

func (m *SortMachine) Start(f Frame) int { return m.schedule(f) }

func (m *SortMachine) Body(f Frame) int {
	cmp := f.Pop().AsInt64()
	if cmp <= 0 {
		m.buf[m.k] = m.elems[m.i]
		m.i++
	} else {
		m.buf[m.k] = m.elems[m.j]
		m.j++
	}
	m.k++
	return m.schedule(f)
}

// schedule drains whichever run is exhausted without further comparisons,
// advances to the next run-pair or width once a merge completes, and
// either requests the next comparison or pushes the final sorted list.
func (m *SortMachine) schedule(f Frame) int {
	for {
		if len(m.elems) <= 1 {
			return m.finish(f)
		}
		if m.i < m.iEnd && m.j < m.jEnd {
			f.Push(m.cmpFn)
			f.Push(m.elems[m.i])
			f.Push(m.elems[m.j])
			return 2
		}
		for m.i < m.iEnd {
			m.buf[m.k] = m.elems[m.i]
			m.i++
			m.k++
		}
		for m.j < m.jEnd {
			m.buf[m.k] = m.elems[m.j]
			m.j++
			m.k++
		}
		// Current run pair merged; advance to the next pair at this width.
		m.lo += 2 * m.width
		if m.lo >= len(m.elems) {
			// Finished a full pass at this width: swap buffers, double width.
			m.elems, m.buf = m.buf, m.elems
			m.width *= 2
			m.lo = 0
			m.k = 0
			if m.width >= len(m.elems) {
				return m.finish(f)
			}
		}
		m.i = m.lo
		m.iEnd = min(m.lo+m.width, len(m.elems))
		m.j = m.iEnd
		m.jEnd = min(m.lo+2*m.width, len(m.elems))
		m.k = m.lo
	}
}

func (m *SortMachine) finish(f Frame) int {
	result := FromSlice(m.elems)
	if m.destructive && m.original.Kind == value.KList {
		// Splice the sorted values back into the original spine so
		// existing references to the head Cons observe the new order.
		cur := m.original.AsCons()
		for _, v := range m.elems {
			cur.A = v
			if cur.D.Kind == value.KList {
				cur = cur.D.AsCons()
			}
		}
		f.Push(m.original)
	} else {
		f.Push(result)
	}
	return Done
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DefaultSort implements the degenerate form: no cmp function was
// supplied, so sorting runs as a tight in-engine loop (no VM suspension)
// using a default total order -- numeric by value, string via natural
// (human) ordering, and falling back to Value.String() for anything
// else.
func DefaultSort(lst value.Value) value.Value {
	elems := ToSlice(lst)
	sort.SliceStable(elems, func(i, j int) bool {
		return defaultLess(elems[i], elems[j])
	})
	return FromSlice(elems)
}

func defaultLess(a, b value.Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return a.ToFloat64() < b.ToFloat64()
	}
	if a.Kind == value.KString && b.Kind == value.KString {
		return natural.Less(a.AsString(), b.AsString())
	}
	return strings.Compare(a.String(), b.String()) < 0
}

func isNumeric(v value.Value) bool {
	switch v.Kind {
	case value.KByte, value.KInt16, value.KInt32, value.KInt64, value.KFloat32, value.KFloat64, value.KReal32, value.KReal64:
		return true
	default:
		return false
	}
}
