// Package value implements the tagged Value: every Smile runtime value is
// either an unboxed primitive carried inline or a reference to a heap
// object, discriminated by a one-byte Kind tag.
package value

import (
	"fmt"
	"math"
	"math/big"

	"smile/internal/symbol"
)

// Kind discriminates the payload a Value carries. Keeping it a single byte
// lets callers dispatch with a dense switch/jump table.
type Kind uint8

const (
	KNull Kind = iota
	KBool
	KByte
	KInt16
	KInt32
	KInt64
	KReal32 // decimal floating point
	KReal64
	KFloat32 // binary floating point
	KFloat64
	KChar
	KUni // Unicode code point
	KSymbol
	KString
	KList
	KFunction
	KUserObject
	KTillContinuation
)

func (k Kind) String() string {
	switch k {
	case KNull:
		return "Null"
	case KBool:
		return "Bool"
	case KByte:
		return "Byte"
	case KInt16:
		return "Integer16"
	case KInt32:
		return "Integer32"
	case KInt64:
		return "Integer64"
	case KReal32:
		return "Real32"
	case KReal64:
		return "Real64"
	case KFloat32:
		return "Float32"
	case KFloat64:
		return "Float64"
	case KChar:
		return "Char"
	case KUni:
		return "Uni"
	case KSymbol:
		return "Symbol"
	case KString:
		return "String"
	case KList:
		return "List"
	case KFunction:
		return "Function"
	case KUserObject:
		return "UserObject"
	case KTillContinuation:
		return "TillContinuation"
	default:
		return "Unknown"
	}
}

// IsUnboxed reports whether values of this kind are carried inline on the
// VM operand stack rather than requiring heap indirection. Int64 and the
// binary floats are inline on 64-bit targets; List/Function/UserObject/
// TillContinuation are always heap objects.
func (k Kind) IsUnboxed() bool {
	switch k {
	case KNull, KBool, KByte, KInt16, KInt32, KInt64, KChar, KUni, KSymbol, KFloat32, KFloat64:
		return true
	default:
		return false
	}
}

// Value is the tagged union: a Kind tag plus the inline-primitive-or-
// heap-object payload fields appropriate to that kind. Only the field(s)
// matching Kind are meaningful; callers must check Kind before reading.
type Value struct {
	Kind Kind
	i    int64      // Bool(0/1), Byte, Int16, Int32, Int64, Char(rune), Uni(rune), Symbol id
	f    float64    // Float32, Float64 (binary floating point)
	r    *big.Float // Real32, Real64 (decimal floating point)
	s    string     // String
	obj  any        // List(*Cons), Function, UserObject(*UserObject), TillContinuation
}

// Null is the shared empty/Null value; it also represents the empty list.
var Null = Value{Kind: KNull}

func Bool(b bool) Value {
	var i int64
	if b {
		i = 1
	}
	return Value{Kind: KBool, i: i}
}

func Byte(b byte) Value       { return Value{Kind: KByte, i: int64(b)} }
func Int16(i int16) Value     { return Value{Kind: KInt16, i: int64(i)} }
func Int32(i int32) Value     { return Value{Kind: KInt32, i: int64(i)} }
func Int64(i int64) Value     { return Value{Kind: KInt64, i: i} }
func Char(r rune) Value       { return Value{Kind: KChar, i: int64(r)} }
func Uni(r rune) Value         { return Value{Kind: KUni, i: int64(r)} }
func Symbol(id symbol.ID) Value { return Value{Kind: KSymbol, i: int64(id)} }
func Float32(f float32) Value { return Value{Kind: KFloat32, f: float64(f)} }
func Float64(f float64) Value { return Value{Kind: KFloat64, f: f} }
func Str(s string) Value      { return Value{Kind: KString, s: s} }

func Real32(r *big.Float) Value { return Value{Kind: KReal32, r: r} }
func Real64(r *big.Float) Value { return Value{Kind: KReal64, r: r} }

// Obj wraps an opaque heap payload (List, Function, UserObject,
// TillContinuation) under the given Kind. Callers own the concrete type.
func Obj(k Kind, payload any) Value { return Value{Kind: k, obj: payload} }

func (v Value) AsBool() bool         { return v.i != 0 }
func (v Value) AsByte() byte         { return byte(v.i) }
func (v Value) AsInt16() int16       { return int16(v.i) }
func (v Value) AsInt32() int32       { return int32(v.i) }
func (v Value) AsInt64() int64       { return v.i }
func (v Value) AsChar() rune         { return rune(v.i) }
func (v Value) AsUni() rune          { return rune(v.i) }
func (v Value) AsSymbol() symbol.ID  { return symbol.ID(v.i) }
func (v Value) AsFloat32() float32   { return float32(v.f) }
func (v Value) AsFloat64() float64   { return v.f }
func (v Value) AsReal() *big.Float   { return v.r }
func (v Value) AsString() string    { return v.s }
func (v Value) AsObj() any          { return v.obj }

// IsNull reports whether v is the Null/empty-list value.
func (v Value) IsNull() bool { return v.Kind == KNull }

// ToBool implements the VM's toBool dispatch for non-Bool values: Null is
// false, everything else is true. Numeric zero does not make a boxed
// numeric value false -- only an unboxed Bool does.
func (v Value) ToBool() bool {
	switch v.Kind {
	case KNull:
		return false
	case KBool:
		return v.AsBool()
	default:
		return true
	}
}

// ToFloat64 coerces any numeric kind to a binary float64 for arithmetic
// promotion. Panics if v is not numeric; callers must type-check first.
func (v Value) ToFloat64() float64 {
	switch v.Kind {
	case KByte:
		return float64(v.AsByte())
	case KInt16:
		return float64(v.AsInt16())
	case KInt32:
		return float64(v.AsInt32())
	case KInt64:
		return float64(v.AsInt64())
	case KFloat32, KFloat64:
		return v.f
	case KReal32, KReal64:
		f, _ := v.r.Float64()
		return f
	default:
		panic("value: ToFloat64 on non-numeric kind " + v.Kind.String())
	}
}

// String renders v for diagnostics/disassembly; it is not the Smile
// `toString` method (that belongs to the VM/stdlib layer).
func (v Value) String() string {
	switch v.Kind {
	case KNull:
		return "null"
	case KBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KByte, KInt16, KInt32, KInt64:
		return fmt.Sprintf("%d", v.i)
	case KFloat32:
		return formatFloat(float64(v.AsFloat32()), 32)
	case KFloat64:
		return formatFloat(v.f, 64)
	case KReal32, KReal64:
		if v.r == nil {
			return "0"
		}
		return v.r.Text('g', -1)
	case KChar, KUni:
		return string(rune(v.i))
	case KSymbol:
		return fmt.Sprintf("`%d", v.i)
	case KString:
		return v.s
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "+Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return fmt.Sprintf("%g", f)
}
