// Package parser implements a recursive-descent, precedence-climbing
// parser: it consumes a lexer.Token stream and produces a Smile object —
// a cons-list whose head is a reserved `$`-prefixed special symbol
// (`$if`, `$while`, `$fn`, ...). Each grammar rule is its own method
// (match/check/consume/advance/peek, panic-to-synchronize on error), and
// what each level builds is always a cons list, never a typed struct.
package parser

import (
	"smile/internal/lexer"
	"smile/internal/symbol"
	"smile/internal/value"
)

// Node pairs a parsed Smile object with the source position of the token
// that introduced it. internal/value.Cons has no metadata field of its own,
// so instead of changing that shape, the parser tracks each list cell's
// position in a side table (Parser.positions) keyed by the cons cell's
// identity.
type Node struct {
	Value value.Value
	Pos   lexer.Position
}

// specialSymbols interns the `$`-prefixed reserved symbols that make up
// the compiler's input vocabulary ($if $while $fn $quote $set $scope
// $progn $catch $return $typeof $is $not $and $or $eq $ne ...). These are
// never preloaded by symbol.Preload (they are parser output, not source
// vocabulary), so the parser interns them itself against the shared table.
type specialSymbols struct {
	If, Unless, While, Till, Fn, Quote, Scope, Prog1, Progn symbol.ID
	Catch, Try, Return, TypeOf, Is, Not, And, Or             symbol.ID
	Eq, Ne, Set, Var, Const, Auto, New                       symbol.ID
	Call, Index, Prop, Method, Lambda, Pair, List, Keyword    symbol.ID
}

func newSpecialSymbols(tbl *symbol.Table) specialSymbols {
	return specialSymbols{
		If: tbl.Add("$if"), Unless: tbl.Add("$unless"), While: tbl.Add("$while"),
		Till: tbl.Add("$till"), Fn: tbl.Add("$fn"), Quote: tbl.Add("$quote"),
		Scope: tbl.Add("$scope"), Prog1: tbl.Add("$prog1"), Progn: tbl.Add("$progn"),
		Catch: tbl.Add("$catch"), Try: tbl.Add("$try"), Return: tbl.Add("$return"),
		TypeOf: tbl.Add("$typeof"), Is: tbl.Add("$is"), Not: tbl.Add("$not"),
		And: tbl.Add("$and"), Or: tbl.Add("$or"), Eq: tbl.Add("$eq"), Ne: tbl.Add("$ne"),
		Set: tbl.Add("$set"), Var: tbl.Add("$var"), Const: tbl.Add("$const"),
		Auto: tbl.Add("$auto"), New: tbl.Add("$new"), Call: tbl.Add("$call"),
		Index: tbl.Add("$index"), Prop: tbl.Add("$prop"), Method: tbl.Add("$method"),
		Lambda: tbl.Add("$lambda"), Pair: tbl.Add("$pair"), List: tbl.Add("$list"),
		Keyword: tbl.Add("$keyword"),
	}
}

// list builds a `[head args...]` cons list, left-to-right, so head ends up
// as the car of the outermost cell and args follow as nested cdrs.
func list(head value.Value, args ...value.Value) value.Value {
	result := value.Null
	for i := len(args) - 1; i >= 0; i-- {
		result = value.ConsOf(args[i], result)
	}
	return value.ConsOf(head, result)
}

func sym(id symbol.ID) value.Value { return value.Symbol(id) }

// pair builds a dotted two-cell `(a . d)`: an operator reference like
// `(lhs.op)` is a cons cell whose cdr is the operator symbol itself
// rather than a further list, so Render prints it with an explicit dot
// instead of as a flat application.
func (p *Parser) pair(pos lexer.Position, a, d value.Value) value.Value {
	v := value.ConsOf(a, d)
	p.positions[v.AsCons()] = pos
	return v
}
