package parser

import (
	"fmt"
	"strings"

	"smile/internal/symbol"
	"smile/internal/value"
)

// Render turns a parsed Smile value into a deterministic, human-readable
// s-expression string: symbols print by name (via tbl) instead of their
// raw interned IDs, so `smile parse`'s output and the parser's own golden
// snapshots both stay legible and stable across unrelated symbol-table
// growth.
func Render(tbl *symbol.Table, v value.Value) string {
	switch v.Kind {
	case value.KSymbol:
		name, ok := tbl.GetName(v.AsSymbol())
		if !ok {
			return fmt.Sprintf("<unknown-sym:%d>", v.AsSymbol())
		}
		return name
	case value.KList:
		var b strings.Builder
		b.WriteString("(")
		first := true
		cur := v
		for cur.Kind == value.KList {
			if !first {
				b.WriteString(" ")
			}
			first = false
			b.WriteString(Render(tbl, cur.AsCons().A))
			cur = cur.AsCons().D
		}
		if cur.Kind != value.KNull {
			b.WriteString(" . ")
			b.WriteString(Render(tbl, cur))
		}
		b.WriteString(")")
		return b.String()
	case value.KString:
		return fmt.Sprintf("%q", v.AsString())
	default:
		return v.String()
	}
}
