// Package jsonval implements the conversion layer between a Smile
// value.Value tree and JSON text, exposed to the VM as the native
// `Json.parse`/`Json.stringify` functions and backing the json-error
// taxonomy entry. It uses the tidwall gjson/sjson pair: gjson.Parse/
// ForEach walks JSON text without unmarshaling into a fixed Go struct
// (the right shape for a dynamically-typed source value), and
// sjson.SetRaw assembles JSON text incrementally by path rather than
// round-tripping through encoding/json's static struct tags.
package jsonval

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"smile/internal/errs"
	"smile/internal/symbol"
	"smile/internal/value"
)

// Stringify renders v as JSON text. User objects render as JSON objects
// keyed by property name (via tbl); lists render as JSON arrays; Function
// and TillContinuation values have no JSON representation and produce a
// json-error instead.
func Stringify(tbl *symbol.Table, v value.Value) (string, error) {
	switch v.Kind {
	case value.KNull:
		return "null", nil
	case value.KBool:
		return strconv.FormatBool(v.AsBool()), nil
	case value.KByte, value.KInt16, value.KInt32, value.KInt64:
		return strconv.FormatInt(intOf(v), 10), nil
	case value.KFloat32, value.KFloat64:
		return strconv.FormatFloat(floatOf(v), 'g', -1, 64), nil
	case value.KReal32, value.KReal64:
		return realOf(v).Text('g', -1), nil
	case value.KChar, value.KUni:
		return quoteString(string(runeOf(v))), nil
	case value.KString:
		return quoteString(v.AsString()), nil
	case value.KSymbol:
		name, _ := tbl.GetName(v.AsSymbol())
		return quoteString(name), nil
	case value.KList:
		return stringifyList(tbl, v)
	case value.KUserObject:
		return stringifyUserObject(tbl, v)
	default:
		return "", errs.New(errs.JSONError, fmt.Sprintf("cannot stringify a %s value", v.Kind))
	}
}

func stringifyList(tbl *symbol.Table, v value.Value) (string, error) {
	out := "[]"
	i := 0
	cur := v
	for cur.Kind == value.KList {
		elemJSON, err := Stringify(tbl, cur.AsCons().A)
		if err != nil {
			return "", err
		}
		var err2 error
		out, err2 = sjson.SetRaw(out, strconv.Itoa(i), elemJSON)
		if err2 != nil {
			return "", errs.Wrap(errs.JSONError, err2, "assembling array element")
		}
		i++
		cur = cur.AsCons().D
	}
	if !cur.IsNull() {
		return "", errs.New(errs.JSONError, "cannot stringify a malformed (improper) list")
	}
	return out, nil
}

func stringifyUserObject(tbl *symbol.Table, v value.Value) (string, error) {
	obj, ok := v.AsObj().(*value.UserObject)
	if !ok {
		return "", errs.New(errs.JSONError, "cannot stringify value: not a user object")
	}
	names := obj.PropertyNames()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	out := "{}"
	for _, sym := range names {
		propVal, _ := obj.GetProperty(sym)
		propJSON, err := Stringify(tbl, propVal)
		if err != nil {
			return "", err
		}
		propName, ok := tbl.GetName(symbol.ID(sym))
		if !ok {
			continue
		}
		var err2 error
		out, err2 = sjson.SetRaw(out, jsonPathEscape(propName), propJSON)
		if err2 != nil {
			return "", errs.Wrap(errs.JSONError, err2, "assembling object property "+propName)
		}
	}
	return out, nil
}

// Parse decodes JSON text into a Smile value.Value tree: objects become
// UserObjects of kind "JsonObject", arrays become lists, and scalars
// become the matching unboxed Value. A malformed document produces a
// json-error.
func Parse(tbl *symbol.Table, jsonText string) (value.Value, error) {
	if !gjson.Valid(jsonText) {
		return value.Null, errs.New(errs.JSONError, "invalid JSON document")
	}
	return fromResult(tbl, gjson.Parse(jsonText)), nil
}

func fromResult(tbl *symbol.Table, r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null
	case gjson.True:
		return value.Bool(true)
	case gjson.False:
		return value.Bool(false)
	case gjson.Number:
		return numberValue(r)
	case gjson.String:
		return value.Str(r.String())
	case gjson.JSON:
		if r.IsArray() {
			return arrayValue(tbl, r)
		}
		return objectValue(tbl, r)
	default:
		return value.Null
	}
}

// numberValue prefers an exact Int64 when the literal has no fractional
// part or exponent, falling back to Float64 otherwise. This differs from
// the parser, which reads an unsuffixed fractional literal as Real64.
func numberValue(r gjson.Result) value.Value {
	raw := r.Raw
	for _, c := range raw {
		if c == '.' || c == 'e' || c == 'E' {
			return value.Float64(r.Float())
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.Int64(n)
	}
	return value.Float64(r.Float())
}

func arrayValue(tbl *symbol.Table, r gjson.Result) value.Value {
	elems := r.Array()
	out := value.Null
	for i := len(elems) - 1; i >= 0; i-- {
		out = value.ConsOf(fromResult(tbl, elems[i]), out)
	}
	return out
}

func objectValue(tbl *symbol.Table, r gjson.Result) value.Value {
	obj := value.NewUserObject("JsonObject")
	r.ForEach(func(key, val gjson.Result) bool {
		sym := tbl.Add(key.String())
		obj.SetProperty(int32(sym), fromResult(tbl, val))
		return true
	})
	return value.Obj(value.KUserObject, obj)
}

func intOf(v value.Value) int64 {
	switch v.Kind {
	case value.KByte:
		return int64(v.AsByte())
	case value.KInt16:
		return int64(v.AsInt16())
	case value.KInt32:
		return int64(v.AsInt32())
	default:
		return v.AsInt64()
	}
}

func floatOf(v value.Value) float64 {
	if v.Kind == value.KFloat32 {
		return float64(v.AsFloat32())
	}
	return v.AsFloat64()
}

func realOf(v value.Value) *big.Float {
	return v.AsReal()
}

func runeOf(v value.Value) rune {
	if v.Kind == value.KChar {
		return v.AsChar()
	}
	return v.AsUni()
}

func quoteString(s string) string {
	out, err := sjson.Set("{}", "v", s)
	if err != nil {
		return strconv.Quote(s)
	}
	return gjson.Get(out, "v").Raw
}

// jsonPathEscape guards sjson's path syntax (`.`, `*`, `?`, `#`, `|`) from
// a property name that happens to collide with it, by putting a backslash
// before each such character (and before a literal backslash).
func jsonPathEscape(name string) string {
	special := ".*?#|\\"
	needsEscape := false
	for _, c := range name {
		for _, s := range special {
			if c == s {
				needsEscape = true
			}
		}
	}
	if !needsEscape {
		return name
	}
	out := make([]byte, 0, len(name)*2)
	for i := 0; i < len(name); i++ {
		for _, s := range special {
			if name[i] == byte(s) {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, name[i])
	}
	return string(out)
}
