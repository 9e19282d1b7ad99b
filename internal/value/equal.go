package value

// Equal implements structural equality ("===" / SuperEq): same Kind and
// same payload, recursing into lists.
func Equal(a, b Value) bool {
	if a.Kind == KNull && b.Kind == KNull {
		return true
	}
	if isNumericKind(a.Kind) && isNumericKind(b.Kind) {
		return a.Kind == b.Kind && numericBitsEqual(a, b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KBool:
		return a.AsBool() == b.AsBool()
	case KChar, KUni:
		return a.i == b.i
	case KSymbol:
		return a.i == b.i
	case KString:
		return a.s == b.s
	case KList:
		return consEqual(a.AsCons(), b.AsCons())
	default:
		return a.obj == b.obj
	}
}

func isNumericKind(k Kind) bool {
	switch k {
	case KByte, KInt16, KInt32, KInt64, KFloat32, KFloat64, KReal32, KReal64:
		return true
	default:
		return false
	}
}

func numericBitsEqual(a, b Value) bool {
	switch a.Kind {
	case KByte, KInt16, KInt32, KInt64:
		return a.i == b.i
	case KFloat32, KFloat64:
		return a.f == b.f
	case KReal32, KReal64:
		if a.r == nil || b.r == nil {
			return a.r == b.r
		}
		return a.r.Cmp(b.r) == 0
	}
	return false
}

func consEqual(a, b *Cons) bool {
	for {
		if a == b {
			return true
		}
		if !Equal(a.A, b.A) {
			return false
		}
		if a.D.Kind == KList && b.D.Kind == KList {
			a, b = a.D.AsCons(), b.D.AsCons()
			continue
		}
		return Equal(a.D, b.D)
	}
}

// CompareEqual implements the degenerate ("value instead of function")
// short-circuit form list ops accept: reference/structural equality used
// by `where`/`any?`/`contains?` when the caller passes a plain value.
func CompareEqual(a, b Value) bool {
	return Equal(a, b)
}
