// Package lexer implements the tokenizer the parser consumes: a
// single-pass, start/current-index scanner that slices lexemes directly
// out of the source string, covering the language's S-expression-with-
// infix-sugar syntax (suffixed numeric literals, backtick symbols,
// `[...]` lists, `#/pattern/flags` regex literals).
package lexer

import "fmt"

// Kind names a lexical token category.
type Kind uint8

const (
	EOF Kind = iota
	Error

	Ident
	Symbol // `foo
	String
	Regex // #/pattern/flags
	Number

	// Keywords (the known-symbol keyword list)
	KwIf
	KwUnless
	KwWhile
	KwUntil
	KwTill
	KwDo
	KwVar
	KwConst
	KwAuto
	KwTry
	KwCatch
	KwFn
	KwQuote
	KwScope
	KwProg1
	KwProgn
	KwReturn
	KwNot
	KwOr
	KwAnd
	KwNew
	KwIs
	KwTypeOf
	KwElse
	KwThen
	KwTrue
	KwFalse
	KwNull

	// Punctuation / operators
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Pipe // |args| lambda delimiter
	Comma
	Dot
	Colon
	Semicolon
	Backtick

	Equals    // =
	EqEq      // ==
	EqEqEq    // ===
	NotEq     // !=
	NotEqEq   // !==
	Lt        // <
	Gt        // >
	Le        // <=
	Ge        // >=
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Caret     // ^
	ShiftLeft // <<
	ShiftRight
	RotLeft // <<<
	RotRight
	FatArrow // =>
)

var kindNames = map[Kind]string{
	EOF: "EOF", Error: "ERROR",
	Ident: "IDENT", Symbol: "SYMBOL", String: "STRING", Regex: "REGEX", Number: "NUMBER",
	KwIf: "if", KwUnless: "unless", KwWhile: "while", KwUntil: "until", KwTill: "till",
	KwDo: "do", KwVar: "var", KwConst: "const", KwAuto: "auto", KwTry: "try",
	KwCatch: "catch", KwFn: "fn", KwQuote: "quote", KwScope: "scope", KwProg1: "prog1",
	KwProgn: "progn", KwReturn: "return", KwNot: "not", KwOr: "or", KwAnd: "and",
	KwNew: "new", KwIs: "is", KwTypeOf: "typeof", KwElse: "else", KwThen: "then",
	KwTrue: "true", KwFalse: "false", KwNull: "null",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Pipe: "|", Comma: ",", Dot: ".", Colon: ":", Semicolon: ";", Backtick: "`",
	Equals: "=", EqEq: "==", EqEqEq: "===", NotEq: "!=", NotEqEq: "!==",
	Lt: "<", Gt: ">", Le: "<=", Ge: ">=",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Caret: "^",
	ShiftLeft: "<<", ShiftRight: ">>", RotLeft: "<<<", RotRight: ">>>",
	FatArrow: "=>",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// keywords maps a bare identifier's text to its keyword Kind. Identifiers
// not found here stay Ident.
var keywords = map[string]Kind{
	"if": KwIf, "unless": KwUnless, "while": KwWhile, "until": KwUntil, "till": KwTill,
	"do": KwDo, "var": KwVar, "const": KwConst, "auto": KwAuto, "try": KwTry,
	"catch": KwCatch, "fn": KwFn, "quote": KwQuote, "scope": KwScope, "prog1": KwProg1,
	"progn": KwProgn, "return": KwReturn, "not": KwNot, "or": KwOr, "and": KwAnd,
	"new": KwNew, "is": KwIs, "typeof": KwTypeOf, "else": KwElse, "then": KwThen,
	"true": KwTrue, "false": KwFalse, "null": KwNull,
}

// Position is a 1-based line/column plus a 0-based byte offset into the
// source, mirroring the shape bytecode.SourceLoc expects so the parser can
// build one directly from a Token without this package depending on
// internal/bytecode.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// NumberSuffix records which width/representation suffix (if any) followed
// a numeric literal's digits: b/h/t/l/x for byte/16/32/64/128-bit integer;
// f/r suffixes for binary/decimal floating point.
type NumberSuffix byte

const (
	SuffixNone NumberSuffix = 0
	SuffixByte NumberSuffix = 'b'
	SuffixI16  NumberSuffix = 'h'
	SuffixI32  NumberSuffix = 't'
	SuffixI64  NumberSuffix = 'l'
	Suffix128  NumberSuffix = 'x'
	SuffixFloat NumberSuffix = 'f'
	SuffixReal  NumberSuffix = 'r'
)

// Token is one lexical unit: its Kind, the exact source slice (Lexeme), a
// decoded literal payload where applicable (String/Regex bodies with
// escapes resolved, number text split from its suffix), and its starting
// Position.
type Token struct {
	Kind     Kind
	Lexeme   string
	Literal  string // decoded string/regex-pattern body, or the digits of a Number
	Suffix   NumberSuffix
	RegexFlags string
	Pos      Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Pos)
}
