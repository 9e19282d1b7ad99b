package list

import "smile/internal/value"

// EachMachine invokes userFn on every element for effect and yields the
// original list unchanged.
type EachMachine struct {
	baseMachine
	original value.Value
}

func NewEach(lst, userFn value.Value) *EachMachine {
	return &EachMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}, original: lst}
}

func (m *EachMachine) Start(f Frame) int { return m.step(f) }
func (m *EachMachine) Body(f Frame) int  { f.Pop(); return m.step(f) }

func (m *EachMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(m.original)
		return Done
	}
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}

// MapMachine invokes userFn on every element and collects the mapped
// results into a new list, preserving order.
type MapMachine struct {
	baseMachine
	results []value.Value
}

func NewMap(lst, userFn value.Value) *MapMachine {
	return &MapMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}}
}

func (m *MapMachine) Start(f Frame) int { return m.step(f) }

func (m *MapMachine) Body(f Frame) int {
	m.results = append(m.results, f.Pop())
	return m.step(f)
}

func (m *MapMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(FromSlice(m.results))
		return Done
	}
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}

// WhereMachine (filter) keeps elements for which userFn returns truthy.
type WhereMachine struct {
	baseMachine
	pending value.Value
	results []value.Value
}

func NewWhere(lst, userFn value.Value) *WhereMachine {
	return &WhereMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}}
}

func (m *WhereMachine) Start(f Frame) int { return m.step(f) }

func (m *WhereMachine) Body(f Frame) int {
	if f.Pop().ToBool() {
		m.results = append(m.results, m.pending)
	}
	return m.step(f)
}

func (m *WhereMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(FromSlice(m.results))
		return Done
	}
	m.pending = elem
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}

// quantifierMachine backs any?/all?, which differ only in their
// short-circuit truth value and the "complement" they push when the
// list is exhausted without short-circuiting.
type quantifierMachine struct {
	baseMachine
	shortCircuitOn bool // any?: short-circuits on true; all?: on false
	pending        bool // result to push when exhausted without short-circuit
}

func NewAny(lst, userFn value.Value) Machine {
	return &quantifierMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}, shortCircuitOn: true, pending: false}
}

func NewAll(lst, userFn value.Value) Machine {
	return &quantifierMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}, shortCircuitOn: false, pending: true}
}

func (m *quantifierMachine) Start(f Frame) int { return m.step(f) }

func (m *quantifierMachine) Body(f Frame) int {
	if f.Pop().ToBool() == m.shortCircuitOn {
		f.Push(value.Bool(m.shortCircuitOn))
		return Done
	}
	return m.step(f)
}

func (m *quantifierMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(value.Bool(m.pending))
		return Done
	}
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}

// ContainsMachine reports whether any element equals target under
// userFn(element, target) (or, in the degenerate case, the caller should
// use value.Equal directly rather than constructing a machine).
type ContainsMachine struct {
	baseMachine
	target value.Value
}

func NewContains(lst, userFn, target value.Value) *ContainsMachine {
	return &ContainsMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}, target: target}
}

func (m *ContainsMachine) Start(f Frame) int { return m.step(f) }

func (m *ContainsMachine) Body(f Frame) int {
	if f.Pop().ToBool() {
		f.Push(value.Bool(true))
		return Done
	}
	return m.step(f)
}

func (m *ContainsMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(value.Bool(false))
		return Done
	}
	f.Push(m.userFn)
	f.Push(elem)
	f.Push(m.target)
	return 2
}

// CountMachine counts elements for which userFn returns truthy.
type CountMachine struct {
	baseMachine
	n int
}

func NewCount(lst, userFn value.Value) *CountMachine {
	return &CountMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}}
}

func (m *CountMachine) Start(f Frame) int { return m.step(f) }

func (m *CountMachine) Body(f Frame) int {
	if f.Pop().ToBool() {
		m.n++
	}
	return m.step(f)
}

func (m *CountMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		f.Push(value.Int64(int64(m.n)))
		return Done
	}
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}

// FirstMachine returns the first element satisfying userFn, or Null.
// indexOf additionally tracks and returns the matching index instead.
type FirstMachine struct {
	baseMachine
	pending   value.Value
	indexMode bool
}

func NewFirst(lst, userFn value.Value) *FirstMachine {
	return &FirstMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}}
}

func NewIndexOf(lst, userFn value.Value) *FirstMachine {
	return &FirstMachine{baseMachine: baseMachine{cursor: lst, userFn: userFn}, indexMode: true}
}

func (m *FirstMachine) Start(f Frame) int { return m.step(f) }

func (m *FirstMachine) Body(f Frame) int {
	if f.Pop().ToBool() {
		if m.indexMode {
			f.Push(value.Int64(int64(m.index - 1)))
		} else {
			f.Push(m.pending)
		}
		return Done
	}
	return m.step(f)
}

func (m *FirstMachine) step(f Frame) int {
	elem, ok := m.advance()
	if !ok {
		if m.indexMode {
			f.Push(value.Int64(-1))
		} else {
			f.Push(value.Null)
		}
		return Done
	}
	m.pending = elem
	m.index++
	f.Push(m.userFn)
	f.Push(elem)
	return 1
}
