// Package list implements the cons-list engine: cycle-safe structural
// operations plus interruptible higher-order iteration driven by state
// machines so the VM never grows its native call stack across a user-
// function invocation.
package list

import (
	"smile/internal/errs"
	"smile/internal/value"
)

// HasCycle reports whether the list starting at v loops back on itself,
// using the tortoise/hare technique.
func HasCycle(v value.Value) bool {
	slow, fast := v, v
	for {
		if fast.Kind != value.KList {
			return false
		}
		fast = fast.AsCons().D
		if fast.Kind != value.KList {
			return false
		}
		fast = fast.AsCons().D
		slow = slow.AsCons().D
		if sameCons(slow, fast) {
			return true
		}
	}
}

func sameCons(a, b value.Value) bool {
	return a.Kind == value.KList && b.Kind == value.KList && a.AsCons() == b.AsCons()
}

// WellFormed reports whether v is a proper, finite, nil-terminated list.
func WellFormed(v value.Value) bool {
	return SafeLength(v) >= 0
}

// SafeLength returns the list's element count, or -1 if v is malformed
// (a non-list, non-Null tail) or cyclic. Always terminates, even on a
// cyclic list.
func SafeLength(v value.Value) int {
	slow, fast := v, v
	n := 0
	for {
		if fast.Kind == value.KNull {
			return n
		}
		if fast.Kind != value.KList {
			return -1 // malformed: tail is neither list nor Null
		}
		fast = fast.AsCons().D
		n++
		if fast.Kind == value.KNull {
			return n
		}
		if fast.Kind != value.KList {
			return -1
		}
		fast = fast.AsCons().D
		n++
		slow = slow.AsCons().D
		if sameCons(slow, fast) {
			return -1 // cyclic
		}
	}
}

// Length is the recursive, non-cycle-safe form: it loops forever on a
// cyclic input. Callers embedded in the VM must always prefer SafeLength.
func Length(v value.Value) int {
	n := 0
	for v.Kind == value.KList {
		n++
		v = v.AsCons().D
	}
	return n
}

// Clone performs a cycle-safe shallow-of-spine copy: every Cons cell is
// duplicated, but element values are shared.
func Clone(v value.Value) (value.Value, error) {
	if SafeLength(v) < 0 {
		return value.Null, errs.New(errs.NativeMethodError, "clone: malformed or cyclic list")
	}
	if v.Kind == value.KNull {
		return value.Null, nil
	}
	head := &value.Cons{}
	cur := head
	for v.Kind == value.KList {
		c := v.AsCons()
		cur.A = c.A
		v = c.D
		if v.Kind == value.KList {
			next := &value.Cons{}
			cur.D = value.Obj(value.KList, next)
			cur = next
		} else {
			cur.D = v
		}
	}
	return value.Obj(value.KList, head), nil
}

// Car returns the head of v, or Null if v is not a Cons: out-of-shape
// access returns Null rather than erroring.
func Car(v value.Value) value.Value {
	if v.Kind != value.KList {
		return value.Null
	}
	return v.AsCons().A
}

// Cdr returns the tail of v, or Null if v is not a Cons.
func Cdr(v value.Value) value.Value {
	if v.Kind != value.KList {
		return value.Null
	}
	return v.AsCons().D
}

// CxrPath applies a sequence of 'a'/'d' selectors (up to four, as in
// caar/cddr/caddr/etc.) right-to-left: CxrPath(v, "ad") == Car(Cdr(v)).
func CxrPath(v value.Value, path string) value.Value {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case 'a':
			v = Car(v)
		case 'd':
			v = Cdr(v)
		default:
			panic("list: CxrPath selector must be 'a' or 'd'")
		}
	}
	return v
}

// Append returns a new list that is a's elements followed by b, without
// mutating a (non-destructive tail-join). If a is Null, returns b as-is.
func Append(a, b value.Value) (value.Value, error) {
	if SafeLength(a) < 0 {
		return value.Null, errs.New(errs.NativeMethodError, "append: malformed or cyclic list")
	}
	if a.Kind == value.KNull {
		return b, nil
	}
	clone, err := Clone(a)
	if err != nil {
		return value.Null, err
	}
	cur := clone.AsCons()
	for cur.D.Kind == value.KList {
		cur = cur.D.AsCons()
	}
	cur.D = b
	return clone, nil
}

// AppendBang destructively joins b onto the end of a's spine, mutating
// a's final Cons cell's tail in place.
func AppendBang(a, b value.Value) error {
	if a.Kind != value.KList {
		return errs.New(errs.NativeMethodError, "append!: receiver must be a non-empty list")
	}
	if SafeLength(a) < 0 {
		return errs.New(errs.NativeMethodError, "append!: malformed or cyclic list")
	}
	cur := a.AsCons()
	for cur.D.Kind == value.KList {
		cur = cur.D.AsCons()
	}
	cur.D = b
	return nil
}

// AppendList flattens one level: each element of lists must itself be a
// list, and the result is their concatenation.
func AppendList(lists value.Value) (value.Value, error) {
	if SafeLength(lists) < 0 {
		return value.Null, errs.New(errs.NativeMethodError, "append-list: malformed or cyclic list")
	}
	result := value.Null
	var tail *value.Cons
	for lists.Kind == value.KList {
		item := lists.AsCons().A
		if SafeLength(item) < 0 {
			return value.Null, errs.New(errs.NativeMethodError, "append-list: element is not a well-formed list")
		}
		cloned, err := Clone(item)
		if err != nil {
			return value.Null, err
		}
		for cloned.Kind == value.KList {
			c := cloned.AsCons()
			nc := &value.Cons{A: c.A, D: value.Null}
			nv := value.Obj(value.KList, nc)
			if tail == nil {
				result = nv
			} else {
				tail.D = nv
			}
			tail = nc
			cloned = c.D
		}
		lists = lists.AsCons().D
	}
	return result, nil
}

// Combine concatenates a sequence of lists, sharing the same flattening
// rule as AppendList.
func Combine(lists value.Value) (value.Value, error) {
	return AppendList(lists)
}

// Nth returns the i'th element (0-based), or Null if out of range.
func Nth(v value.Value, i int) value.Value {
	for ; i > 0 && v.Kind == value.KList; i-- {
		v = v.AsCons().D
	}
	if i != 0 || v.Kind != value.KList {
		return value.Null
	}
	return v.AsCons().A
}

// NthCell returns the i'th Cons cell itself (not its head), or Null.
func NthCell(v value.Value, i int) value.Value {
	for ; i > 0 && v.Kind == value.KList; i-- {
		v = v.AsCons().D
	}
	if i != 0 || v.Kind != value.KList {
		return value.Null
	}
	return v
}

// NthReverse returns the element i'th from the end (0 = last element).
func NthReverse(v value.Value, i int) value.Value {
	n := SafeLength(v)
	if n < 0 || i < 0 || i >= n {
		return value.Null
	}
	return Nth(v, n-1-i)
}

// Skip returns the list with the first n elements removed.
func Skip(v value.Value, n int) value.Value {
	for ; n > 0 && v.Kind == value.KList; n-- {
		v = v.AsCons().D
	}
	return v
}

// Take returns a new list of the first n elements (or fewer, if v is
// shorter); non-destructive.
func Take(v value.Value, n int) value.Value {
	result := value.Null
	var tail *value.Cons
	for ; n > 0 && v.Kind == value.KList; n-- {
		c := v.AsCons()
		nc := &value.Cons{A: c.A, D: value.Null}
		nv := value.Obj(value.KList, nc)
		if tail == nil {
			result = nv
		} else {
			tail.D = nv
		}
		tail = nc
		v = c.D
	}
	return result
}

// Tail is an alias for Cdr.
func Tail(v value.Value) value.Value { return Cdr(v) }

// Reverse returns v, reversed, as a new list (non-destructive).
func Reverse(v value.Value) value.Value {
	result := value.Null
	for v.Kind == value.KList {
		c := v.AsCons()
		result = value.ConsOf(c.A, result)
		v = c.D
	}
	return result
}

// Join renders the list's elements separated by glue, using Value.String
// for each element's textual form.
func Join(v value.Value, glue string) string {
	out := ""
	first := true
	for v.Kind == value.KList {
		c := v.AsCons()
		if !first {
			out += glue
		}
		out += c.A.String()
		first = false
		v = c.D
	}
	return out
}

// FromSlice builds a proper list from a Go slice, preserving order.
func FromSlice(items []value.Value) value.Value {
	result := value.Null
	for i := len(items) - 1; i >= 0; i-- {
		result = value.ConsOf(items[i], result)
	}
	return result
}

// ToSlice flattens a well-formed list into a Go slice. Callers must have
// already verified WellFormed(v).
func ToSlice(v value.Value) []value.Value {
	out := make([]value.Value, 0, 8)
	for v.Kind == value.KList {
		c := v.AsCons()
		out = append(out, c.A)
		v = c.D
	}
	return out
}
