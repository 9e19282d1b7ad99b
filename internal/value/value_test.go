package value

import "testing"

func TestTruthiness(t *testing.T) {
	if Null.ToBool() {
		t.Fatalf("Null should be falsy")
	}
	if Bool(false).ToBool() {
		t.Fatalf("Bool(false) should be falsy")
	}
	if !Bool(true).ToBool() {
		t.Fatalf("Bool(true) should be truthy")
	}
	if !Int64(0).ToBool() {
		t.Fatalf("boxed zero Int64 should be truthy (only unboxed Bool short-circuits)")
	}
}

func TestConsShape(t *testing.T) {
	lst := ConsOf(Int64(1), ConsOf(Int64(2), Null))
	if lst.Kind != KList {
		t.Fatalf("ConsOf should produce KList")
	}
	c := lst.AsCons()
	if c.A.AsInt64() != 1 {
		t.Fatalf("head mismatch")
	}
	if c.D.AsCons().A.AsInt64() != 2 {
		t.Fatalf("second element mismatch")
	}
	if !c.D.AsCons().D.IsNull() {
		t.Fatalf("list should terminate in Null")
	}
}

func TestEqualLists(t *testing.T) {
	a := ConsOf(Int64(1), ConsOf(Int64(2), Null))
	b := ConsOf(Int64(1), ConsOf(Int64(2), Null))
	if !Equal(a, b) {
		t.Fatalf("structurally equal lists should compare equal")
	}
	c := ConsOf(Int64(1), ConsOf(Int64(3), Null))
	if Equal(a, c) {
		t.Fatalf("structurally different lists should not compare equal")
	}
}

func TestEqualNumericCrossKind(t *testing.T) {
	// Equal requires same Kind for numerics -- Int32(2) and Int64(2) are
	// distinct kinds with no cross-kind === promised.
	if Equal(Int32(2), Int64(2)) {
		t.Fatalf("=== should not hold across differing integer widths")
	}
}

func TestUserObjectInheritance(t *testing.T) {
	base := NewUserObject("Base")
	base.SetProperty(1, Str("from-base"))
	derived := NewUserObject("Derived")
	derived.Base = base

	v, ok := derived.GetProperty(1)
	if !ok || v.AsString() != "from-base" {
		t.Fatalf("derived object should inherit base property")
	}

	derived.SetProperty(1, Str("override"))
	v, _ = derived.GetProperty(1)
	if v.AsString() != "override" {
		t.Fatalf("own property should shadow base")
	}
}
