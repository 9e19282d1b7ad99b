package value

// Cons is the pair underlying every non-empty list: a head value and a
// tail, which is typically another List Value but may be any Value
// (making the list an improper/dotted pair rather than a proper list).
type Cons struct {
	A Value // head
	D Value // tail
}

// ConsOf constructs a new non-empty list cell.
func ConsOf(a, d Value) Value {
	return Value{Kind: KList, obj: &Cons{A: a, D: d}}
}

// IsList reports whether v is Null (the empty list) or a Cons cell.
func IsList(v Value) bool {
	return v.Kind == KNull || v.Kind == KList
}

// AsCons extracts the *Cons payload. Callers must check Kind == KList first.
func (v Value) AsCons() *Cons {
	return v.obj.(*Cons)
}

// Function is the common interface callable Values implement; the VM and
// closure packages supply the concrete type. Kept minimal and opaque here
// so internal/value never needs to import internal/closure.
type Function interface {
	FunctionName() string
}

// UserObject is a mapping from interned symbol to Value plus an optional
// prototype base, giving single-inheritance property/method lookup.
type UserObject struct {
	Kind_ string // the UserObject's type/kind name, e.g. "RegexMatch"
	Props map[int32]Value
	Base  *UserObject
}

func NewUserObject(kind string) *UserObject {
	return &UserObject{Kind_: kind, Props: make(map[int32]Value)}
}

func (u *UserObject) GetProperty(sym int32) (Value, bool) {
	for o := u; o != nil; o = o.Base {
		if v, ok := o.Props[sym]; ok {
			return v, true
		}
	}
	return Null, false
}

func (u *UserObject) SetProperty(sym int32, v Value) {
	u.Props[sym] = v
}

func (u *UserObject) HasProperty(sym int32) bool {
	_, ok := u.GetProperty(sym)
	return ok
}

func (u *UserObject) PropertyNames() []int32 {
	names := make([]int32, 0, len(u.Props))
	for k := range u.Props {
		names = append(names, k)
	}
	return names
}
