package parser

import (
	"math/big"
	"strconv"

	"smile/internal/lexer"
	"smile/internal/value"
)

// numberLiteral turns a scanned Number token's digits + suffix into a
// value.Value of the matching Kind. An unsuffixed integer digit string
// defaults to Int64; an unsuffixed
// fractional/exponent digit string was already tagged SuffixReal by the
// lexer. There is no Int128 Kind in internal/value (see DESIGN.md): a
// `x`-suffixed 128-bit literal is built the same way as an `r`-suffixed
// one, through the arbitrary-precision Real64 pool, rather than losing
// precision by truncating into an int64.
func numberLiteral(tok lexer.Token) value.Value {
	digits := tok.Literal

	switch tok.Suffix {
	case lexer.SuffixByte:
		n, _ := strconv.ParseInt(digits, 10, 64)
		return value.Byte(byte(n))
	case lexer.SuffixI16:
		n, _ := strconv.ParseInt(digits, 10, 64)
		return value.Int16(int16(n))
	case lexer.SuffixI32:
		n, _ := strconv.ParseInt(digits, 10, 64)
		return value.Int32(int32(n))
	case lexer.SuffixI64:
		n, _ := strconv.ParseInt(digits, 10, 64)
		return value.Int64(n)
	case lexer.Suffix128, lexer.SuffixReal:
		r := new(big.Float).SetPrec(256)
		r.Parse(digits, 10)
		return value.Real64(r)
	case lexer.SuffixFloat:
		f, _ := strconv.ParseFloat(digits, 64)
		return value.Float64(f)
	default:
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			f, _ := strconv.ParseFloat(digits, 64)
			return value.Float64(f)
		}
		return value.Int64(n)
	}
}
