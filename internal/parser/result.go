package parser

import "smile/internal/lexer"

// ResultKind tags a ParseResult: every parse attempt resolves to exactly
// one of these five outcomes.
type ResultKind int

const (
	// SuccessWithResult means a value was parsed: Node is populated.
	SuccessWithResult ResultKind = iota
	// SuccessWithNoResult means the rule matched but produces nothing. No
	// built-in rule returns it; a bare `var x` yields `[$var x null]` as a
	// SuccessWithResult.
	SuccessWithNoResult
	// ErroredButRecovered means a diagnostic was raised, the parser
	// resynchronized at a recovery point, and parsing may continue.
	ErroredButRecovered
	// PartialParseWithError means a prefix was parsed before the error and
	// Node holds that best-effort partial result.
	PartialParseWithError
	// NotMatchedAndNoTokensConsumed means this rule doesn't apply at all;
	// the caller must not have advanced past where it started.
	NotMatchedAndNoTokensConsumed
)

func (k ResultKind) String() string {
	switch k {
	case SuccessWithResult:
		return "SuccessWithResult"
	case SuccessWithNoResult:
		return "SuccessWithNoResult"
	case ErroredButRecovered:
		return "ErroredButRecovered"
	case PartialParseWithError:
		return "PartialParseWithError"
	case NotMatchedAndNoTokensConsumed:
		return "NotMatchedAndNoTokensConsumed"
	default:
		return "Unknown"
	}
}

// ParseResult is the tagged result every grammar rule returns.
type ParseResult struct {
	Kind ResultKind
	Node Node
	Err  error
}

func success(n Node) ParseResult { return ParseResult{Kind: SuccessWithResult, Node: n} }
func noResult(pos lexer.Position) ParseResult {
	return ParseResult{Kind: SuccessWithNoResult, Node: Node{Pos: pos}}
}
func recovered(err error) ParseResult       { return ParseResult{Kind: ErroredButRecovered, Err: err} }
func partial(n Node, err error) ParseResult { return ParseResult{Kind: PartialParseWithError, Node: n, Err: err} }
func notMatched() ParseResult               { return ParseResult{Kind: NotMatchedAndNoTokensConsumed} }
