package parser

import (
	"smile/internal/lexer"
	"smile/internal/value"
)

// This file implements the precedence ladder as a chain of recursive-
// descent methods, one per rung, from loosest (statement) to tightest
// (term):
//
//	statement -> expr -> orExpr -> andExpr -> notExpr -> cmpExpr ->
//	addExpr -> mulExpr -> binaryExpr -> colonExpr -> rangeExpr ->
//	prefixExpr -> postfixExpr -> consExpr -> dotExpr -> term
//
// Every level first asks p.Custom whether a rule is registered for its
// Nonterminal and the next token (the custom-syntax dispatch hook); only
// on a miss does it fall through to the level's built-in grammar. `cons`
// and `range` have no infix token in this lexer's token set (the
// language's list-cons and range-literal sugar is entirely custom-syntax
// territory), so those two levels are pure pass-throughs unless a rule is
// registered.

// statement parses one top-level or block-level statement, producing the
// declaration/control forms recognized at this level: var/const/auto,
// if/unless, do-while/until, while/until-do, return, till, try/catch, and
// a bare block `{ ... }` as an implicit `$progn`. Anything else falls
// through to expr.
func (p *Parser) statement() ParseResult {
	if rule, ok := p.Custom.lookup(NTStmt, p.peek().Kind); ok {
		return rule.Handler(p, Node{})
	}

	switch p.peek().Kind {
	case lexer.KwVar, lexer.KwConst, lexer.KwAuto:
		return p.declStatement()
	case lexer.KwIf, lexer.KwUnless:
		return p.ifStatement()
	case lexer.KwWhile, lexer.KwUntil:
		return p.whileStatement()
	case lexer.KwDo:
		return p.doStatement()
	case lexer.KwReturn:
		return p.returnStatement()
	case lexer.KwTill:
		return p.tillStatement()
	case lexer.KwTry:
		return p.tryStatement()
	case lexer.LBrace:
		return p.blockStatement()
	default:
		return p.expr()
	}
}

// declStatement handles `var name [= expr]`, `const name = expr`, and
// `auto name = expr`, producing `[$var name init]` / `[$const name init]`
// / `[$auto name init]`. var's initializer is optional; const/auto
// require one.
func (p *Parser) declStatement() ParseResult {
	pos := p.peek().Pos
	kwTok := p.advance()

	nameTok := p.expect(lexer.Ident, "identifier")
	nameSym := sym(p.tbl.Add(nameTok.Lexeme))

	var head value.Value
	switch kwTok.Kind {
	case lexer.KwVar:
		head = sym(p.special.Var)
	case lexer.KwConst:
		head = sym(p.special.Const)
	default:
		head = sym(p.special.Auto)
	}

	if !p.match(lexer.Equals) {
		if kwTok.Kind == lexer.KwVar {
			return success(Node{Value: p.cons(pos, head, nameSym, value.Null), Pos: pos})
		}
		p.fail(p.peek().Pos, "%s requires an initializer", kwTok.Lexeme)
	}
	initRes := p.expr()
	init := resultValue(initRes)
	return success(Node{Value: p.cons(pos, head, nameSym, init), Pos: pos})
}

// ifStatement handles `if cond then a else b` and `unless cond then a
// else b`, folding unless's negation in at parse time: `[$if [$not cond]
// then else]`. else is optional; a missing else becomes Null.
func (p *Parser) ifStatement() ParseResult {
	pos := p.peek().Pos
	negate := p.advance().Kind == lexer.KwUnless

	condRes := p.expr()
	cond := resultValue(condRes)
	if negate {
		cond = p.cons(pos, sym(p.special.Not), cond)
	}

	p.match(lexer.KwThen)
	thenRes := p.statement()
	thenVal := resultValue(thenRes)

	elseVal := value.Null
	if p.match(lexer.KwElse) {
		elseRes := p.statement()
		elseVal = resultValue(elseRes)
	}

	return success(Node{Value: p.cons(pos, sym(p.special.If), cond, thenVal, elseVal), Pos: pos})
}

// whileStatement handles the pre-test loop shapes `while cond do body` and
// `until cond do body`, the latter folding its negation in at parse time
// the same way unless does: `[$while cond body]`.
func (p *Parser) whileStatement() ParseResult {
	pos := p.peek().Pos
	negate := p.advance().Kind == lexer.KwUntil

	condRes := p.expr()
	cond := resultValue(condRes)
	if negate {
		cond = p.cons(pos, sym(p.special.Not), cond)
	}

	p.match(lexer.KwDo)
	bodyRes := p.statement()
	body := resultValue(bodyRes)

	return success(Node{Value: p.cons(pos, sym(p.special.While), cond, body), Pos: pos})
}

// doStatement handles the post-test loop shapes `do body while cond` and
// `do body until cond`. Unlike the pre-test `[$while cond body]` two-arg
// form whileStatement builds, a post-test loop is the three-arg `[$while
// body cond null]` shape: the trailing Null marks "body runs once
// unconditionally before the first test" for whatever consumes this form
// downstream, rather than re-emitting body twice in the tree.
func (p *Parser) doStatement() ParseResult {
	pos := p.peek().Pos
	p.advance() // `do`

	bodyRes := p.statement()
	body := resultValue(bodyRes)

	negate := false
	switch p.peek().Kind {
	case lexer.KwWhile:
		p.advance()
	case lexer.KwUntil:
		p.advance()
		negate = true
	default:
		p.fail(p.peek().Pos, "expected while/until after do-block")
	}

	condRes := p.expr()
	cond := resultValue(condRes)
	if negate {
		cond = p.cons(pos, sym(p.special.Not), cond)
	}

	return success(Node{Value: p.cons(pos, sym(p.special.While), body, cond, value.Null), Pos: pos})
}

// returnStatement handles `return [expr]`, producing `[$return val]` with
// val defaulting to Null for a bare return.
func (p *Parser) returnStatement() ParseResult {
	pos := p.advance().Pos // `return`
	if p.atStatementEnd() {
		return success(Node{Value: p.cons(pos, sym(p.special.Return), value.Null), Pos: pos})
	}
	valRes := p.expr()
	val := resultValue(valRes)
	return success(Node{Value: p.cons(pos, sym(p.special.Return), val), Pos: pos})
}

// tillStatement handles `till name1, name2 { body }`, producing
// `[$till [names...] body]` — the escape-continuation form implemented
// at the VM level as NewTill/TillEsc/EndTill.
func (p *Parser) tillStatement() ParseResult {
	pos := p.advance().Pos // `till`

	var names []value.Value
	for {
		nameTok := p.expect(lexer.Ident, "till target name")
		names = append(names, sym(p.tbl.Add(nameTok.Lexeme)))
		if !p.match(lexer.Comma) {
			break
		}
	}
	nameList := list(sym(p.special.List), names...)

	bodyRes := p.blockStatement()
	body := resultValue(bodyRes)

	return success(Node{Value: p.cons(pos, sym(p.special.Till), nameList, body), Pos: pos})
}

// tryStatement handles `try body catch handler`, where handler must be a
// function literal (either `|args| body` or a named `fn` form; anything
// else is a syntax error), producing `[$try body handler]` — the native
// catch/throw builtin pair's argument shape (internal/vm/builtins.go).
func (p *Parser) tryStatement() ParseResult {
	pos := p.advance().Pos // `try`

	bodyRes := p.statement()
	body := resultValue(bodyRes)

	p.expect(lexer.KwCatch, "catch")
	handlerPos := p.peek().Pos
	handlerRes := p.statement()
	handler := resultValue(handlerRes)

	// A named `fn` is `[$var name [$lambda ...]]`: check the lambda it binds.
	headIs := func(v, head value.Value) bool {
		return v.Kind == value.KList && value.Equal(v.AsCons().A, head)
	}
	fnForm := handler
	if headIs(fnForm, sym(p.special.Var)) {
		fnForm = fnForm.AsCons().D.AsCons().D.AsCons().A
	}
	if !headIs(fnForm, sym(p.special.Lambda)) {
		p.fail(handlerPos, "catch handler must be a function literal")
	}

	return success(Node{Value: p.cons(pos, sym(p.special.Try), body, handler), Pos: pos})
}

// blockStatements parses `{ stmt; stmt; ... }` and returns the raw
// statement values plus the block's opening position, for callers that
// need to wrap them in something other than $progn (see the `prog1` term
// below).
func (p *Parser) blockStatements() ([]value.Value, lexer.Position) {
	pos := p.expect(lexer.LBrace, "{").Pos
	var stmts []value.Value
	for !p.check(lexer.RBrace) && !p.isAtEnd() {
		res := p.statement()
		switch res.Kind {
		case SuccessWithResult, PartialParseWithError:
			stmts = append(stmts, res.Node.Value)
		}
		p.match(lexer.Semicolon)
	}
	p.expect(lexer.RBrace, "}")
	return stmts, pos
}

// blockStatement handles `{ stmt; stmt; ... }`, producing `[$progn
// stmt...]`. An empty block becomes `[$progn]`.
func (p *Parser) blockStatement() ParseResult {
	stmts, pos := p.blockStatements()
	return success(Node{Value: p.cons(pos, sym(p.special.Progn), stmts...), Pos: pos})
}

func (p *Parser) atStatementEnd() bool {
	switch p.peek().Kind {
	case lexer.Semicolon, lexer.RBrace, lexer.EOF, lexer.KwElse:
		return true
	default:
		return false
	}
}

// resultValue extracts a usable value.Value from any ParseResult kind,
// falling back to Null for the no-result/error kinds so a caller that
// just wants "the value, if any" never has to type-switch.
func resultValue(r ParseResult) value.Value {
	switch r.Kind {
	case SuccessWithResult, PartialParseWithError:
		return r.Node.Value
	default:
		return value.Null
	}
}

// expr is the top of the expression ladder, its own rung so custom syntax
// can hook the whole-expression level distinctly from or/and, but its
// built-in grammar is simply "defer to or".
func (p *Parser) expr() ParseResult {
	if rule, ok := p.Custom.lookup(NTExpr, p.peek().Kind); ok {
		return rule.Handler(p, Node{})
	}
	return p.orExpr()
}

// orExpr: left-associative `or`, folding runs of `a or b or c` into a
// single flat `[$or a b c]` rather than right-nesting, so the compiler
// can short-circuit the whole chain in one pass.
func (p *Parser) orExpr() ParseResult {
	lhs := p.andExpr()
	pos := p.peek().Pos
	args := []value.Value{resultValue(lhs)}
	matched := false
	for {
		if rule, ok := p.Custom.lookup(NTOr, p.peek().Kind); ok {
			matched = true
			res := rule.Handler(p, Node{Value: list(sym(p.special.Or), args...), Pos: pos})
			args = []value.Value{resultValue(res)}
			continue
		}
		if !p.match(lexer.KwOr) {
			break
		}
		matched = true
		args = append(args, resultValue(p.andExpr()))
	}
	if !matched {
		return lhs
	}
	return success(Node{Value: p.cons(pos, sym(p.special.Or), args...), Pos: pos})
}

// andExpr mirrors orExpr one rung tighter, for `and`.
func (p *Parser) andExpr() ParseResult {
	lhs := p.notExpr()
	pos := p.peek().Pos
	args := []value.Value{resultValue(lhs)}
	matched := false
	for {
		if rule, ok := p.Custom.lookup(NTAnd, p.peek().Kind); ok {
			matched = true
			res := rule.Handler(p, Node{Value: list(sym(p.special.And), args...), Pos: pos})
			args = []value.Value{resultValue(res)}
			continue
		}
		if !p.match(lexer.KwAnd) {
			break
		}
		matched = true
		args = append(args, resultValue(p.notExpr()))
	}
	if !matched {
		return lhs
	}
	return success(Node{Value: p.cons(pos, sym(p.special.And), args...), Pos: pos})
}

// notExpr is prefix `not`, collected greedily so `not not x` builds
// `[$not [$not x]]` — prefix operators nest outermost to innermost in
// source order.
func (p *Parser) notExpr() ParseResult {
	if rule, ok := p.Custom.lookup(NTNot, p.peek().Kind); ok {
		return rule.Handler(p, Node{})
	}
	if p.check(lexer.KwNot) {
		pos := p.advance().Pos
		inner := p.notExpr()
		return success(Node{Value: p.cons(pos, sym(p.special.Not), resultValue(inner)), Pos: pos})
	}
	return p.cmpExpr()
}

// cmpExpr handles the non-associative comparison operators. `==`/`!=`/
// `<`/`>`/`<=`/`>=` build `[(lhs.op) rhs]`: a dotted pair of the left
// operand and the operator symbol, applied to rhs, so the receiver's own
// method resolves the comparison. `===`/`!==`/`is` build the identity
// forms `[$eq lhs rhs]`/`[$ne lhs rhs]`/`[$is lhs rhs]` instead, since
// those three compare by identity/type rather than dispatching to a
// user-overridable method.
func (p *Parser) cmpExpr() ParseResult {
	lhs := p.addExpr()
	if rule, ok := p.Custom.lookup(NTCmp, p.peek().Kind); ok {
		return rule.Handler(p, lhs.Node)
	}

	pos := p.peek().Pos
	switch p.peek().Kind {
	case lexer.EqEqEq:
		p.advance()
		rhs := p.addExpr()
		return success(Node{Value: p.cons(pos, sym(p.special.Eq), resultValue(lhs), resultValue(rhs)), Pos: pos})
	case lexer.NotEqEq:
		p.advance()
		rhs := p.addExpr()
		return success(Node{Value: p.cons(pos, sym(p.special.Ne), resultValue(lhs), resultValue(rhs)), Pos: pos})
	case lexer.KwIs:
		p.advance()
		rhs := p.addExpr()
		return success(Node{Value: p.cons(pos, sym(p.special.Is), resultValue(lhs), resultValue(rhs)), Pos: pos})
	case lexer.EqEq, lexer.NotEq, lexer.Lt, lexer.Gt, lexer.Le, lexer.Ge:
		opSym := p.tbl.Add(p.peek().Lexeme)
		p.advance()
		rhs := p.addExpr()
		opRef := p.pair(pos, resultValue(lhs), sym(opSym))
		return success(Node{Value: p.cons(pos, opRef, resultValue(rhs)), Pos: pos})
	default:
		return lhs
	}
}

// addExpr: left-associative `+`/`-`, each step building `[(lhs.op) rhs]`
// so arithmetic dispatches through the receiver's own method exactly like
// the comparison operators above.
func (p *Parser) addExpr() ParseResult {
	lhs := p.mulExpr()
	for {
		if rule, ok := p.Custom.lookup(NTAdd, p.peek().Kind); ok {
			lhs = rule.Handler(p, lhs.Node)
			continue
		}
		if p.peek().Kind != lexer.Plus && p.peek().Kind != lexer.Minus {
			break
		}
		pos := p.peek().Pos
		opSym := p.tbl.Add(p.peek().Lexeme)
		p.advance()
		rhs := p.mulExpr()
		opRef := p.pair(pos, resultValue(lhs), sym(opSym))
		lhs = success(Node{Value: p.cons(pos, opRef, resultValue(rhs)), Pos: pos})
	}
	return lhs
}

// mulExpr: left-associative `*`/`/`, one rung tighter than add.
func (p *Parser) mulExpr() ParseResult {
	lhs := p.binaryExpr()
	for {
		if rule, ok := p.Custom.lookup(NTMul, p.peek().Kind); ok {
			lhs = rule.Handler(p, lhs.Node)
			continue
		}
		if p.peek().Kind != lexer.Star && p.peek().Kind != lexer.Slash {
			break
		}
		pos := p.peek().Pos
		opSym := p.tbl.Add(p.peek().Lexeme)
		p.advance()
		rhs := p.binaryExpr()
		opRef := p.pair(pos, resultValue(lhs), sym(opSym))
		lhs = success(Node{Value: p.cons(pos, opRef, resultValue(rhs)), Pos: pos})
	}
	return lhs
}

// binaryExpr is the slot for arbitrary user-named infix operators
// (`x \foo y`-style custom operators). This lexer's token set has no
// dedicated token for "arbitrary operator name" — that vocabulary only
// exists through registered custom syntax — so this level is a pure
// dispatch to p.Custom with no built-in fallback grammar beyond deferring
// to the next rung.
func (p *Parser) binaryExpr() ParseResult {
	lhs := p.colonExpr()
	for {
		rule, ok := p.Custom.lookup(NTBinary, p.peek().Kind)
		if !ok {
			return lhs
		}
		lhs = rule.Handler(p, lhs.Node)
	}
}

// colonExpr handles the `lhs : rhs` pair-literal sugar, producing `[$pair
// lhs rhs]` — used by map-literal entries and keyword-argument sugar.
func (p *Parser) colonExpr() ParseResult {
	lhs := p.rangeExpr()
	if rule, ok := p.Custom.lookup(NTColon, p.peek().Kind); ok {
		return rule.Handler(p, lhs.Node)
	}
	if !p.check(lexer.Colon) {
		return lhs
	}
	pos := p.advance().Pos
	rhs := p.rangeExpr()
	return success(Node{Value: p.cons(pos, sym(p.special.Pair), resultValue(lhs), resultValue(rhs)), Pos: pos})
}

// rangeExpr is the slot for a `lhs .. rhs`-style range literal. No
// dedicated range token exists in this lexer (and there is no built-in
// range syntax of any other form), so like binaryExpr this
// level is a pure custom-syntax dispatch with no built-in fallback
// grammar of its own.
func (p *Parser) rangeExpr() ParseResult {
	lhs := p.prefixExpr()
	for {
		rule, ok := p.Custom.lookup(NTRange, p.peek().Kind)
		if !ok {
			return lhs
		}
		lhs = rule.Handler(p, lhs.Node)
	}
}

// prefixExpr collects unary `-` and `typeof` greedily, applying
// outermost-to-innermost in source order: `typeof -x` parses the `-`
// first (tighter) then wraps it in `$typeof`, while unary `-x` builds
// the single-element `[(x.neg)]` form: a dotted operand/operator pair
// with no rhs to apply it to.
func (p *Parser) prefixExpr() ParseResult {
	if rule, ok := p.Custom.lookup(NTPrefix, p.peek().Kind); ok {
		return rule.Handler(p, Node{})
	}
	pos := p.peek().Pos
	switch p.peek().Kind {
	case lexer.KwTypeOf:
		p.advance()
		inner := p.prefixExpr()
		return success(Node{Value: p.cons(pos, sym(p.special.TypeOf), resultValue(inner)), Pos: pos})
	case lexer.Minus:
		p.advance()
		inner := p.prefixExpr()
		opRef := p.pair(pos, resultValue(inner), sym(p.tbl.Add("neg")))
		return success(Node{Value: p.cons(pos, opRef), Pos: pos})
	default:
		return p.postfixExpr()
	}
}

// postfixExpr is the slot for postfix operators (e.g. a future `x++`-style
// form). None exist in this lexer's token set, so this level dispatches
// to custom syntax only and otherwise defers straight through.
func (p *Parser) postfixExpr() ParseResult {
	lhs := p.consExpr()
	for {
		rule, ok := p.Custom.lookup(NTPostfix, p.peek().Kind)
		if !ok {
			return lhs
		}
		lhs = rule.Handler(p, lhs.Node)
	}
}

// consExpr is the slot for a `head :: tail`-style list-cons infix
// operator. No dedicated token exists for it in this lexer (list
// construction goes through the `[...]` literal or the `Cons` opcode
// instead), so this level is a pure custom-syntax dispatch.
func (p *Parser) consExpr() ParseResult {
	lhs := p.dotExpr()
	for {
		rule, ok := p.Custom.lookup(NTCons, p.peek().Kind)
		if !ok {
			return lhs
		}
		lhs = rule.Handler(p, lhs.Node)
	}
}

// dotExpr handles property/method access and call/index application,
// chained left-to-right: `a.b.c(x)[i]` builds up through nested `$prop`/
// `$method`/`$call`/`$index` forms one token at a time.
func (p *Parser) dotExpr() ParseResult {
	lhs := p.term()
	for {
		if rule, ok := p.Custom.lookup(NTDot, p.peek().Kind); ok {
			lhs = rule.Handler(p, lhs.Node)
			continue
		}
		pos := p.peek().Pos
		switch p.peek().Kind {
		case lexer.Dot:
			p.advance()
			nameTok := p.expect(lexer.Ident, "member name")
			nameSym := sym(p.tbl.Add(nameTok.Lexeme))
			if p.check(lexer.LParen) {
				callArgs := p.argList()
				method := p.cons(pos, sym(p.special.Method), resultValue(lhs), nameSym)
				lhs = success(Node{Value: p.cons(pos, method, callArgs...), Pos: pos})
			} else {
				lhs = success(Node{Value: p.cons(pos, sym(p.special.Prop), resultValue(lhs), nameSym), Pos: pos})
			}
		case lexer.LParen:
			callArgs := p.argList()
			lhs = success(Node{Value: p.cons(pos, sym(p.special.Call), append([]value.Value{resultValue(lhs)}, callArgs...)...), Pos: pos})
		case lexer.LBracket:
			p.advance()
			idxRes := p.expr()
			p.expect(lexer.RBracket, "]")
			lhs = success(Node{Value: p.cons(pos, sym(p.special.Index), resultValue(lhs), resultValue(idxRes)), Pos: pos})
		default:
			return lhs
		}
	}
}

// argList parses a parenthesized, comma-separated argument list and
// returns the parsed values (not wrapped in any head symbol — callers
// build their own `[$call ...]`/`[$method ...]` shape around them).
func (p *Parser) argList() []value.Value {
	p.expect(lexer.LParen, "(")
	var args []value.Value
	for !p.check(lexer.RParen) && !p.isAtEnd() {
		args = append(args, resultValue(p.expr()))
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, ")")
	return args
}

// term is the ladder's base case: literals, identifiers, parenthesized
// groups, list literals, lambda literals, and the `new`/`quote`/`scope`/
// `prog1`/`progn`/`fn` keyword forms.
func (p *Parser) term() ParseResult {
	if rule, ok := p.Custom.lookup(NTTerm, p.peek().Kind); ok {
		return rule.Handler(p, Node{})
	}

	tok := p.peek()
	pos := tok.Pos
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return success(Node{Value: numberLiteral(tok), Pos: pos})
	case lexer.String:
		p.advance()
		return success(Node{Value: value.Str(tok.Literal), Pos: pos})
	case lexer.Symbol:
		p.advance()
		return success(Node{Value: sym(p.tbl.Add(tok.Literal)), Pos: pos})
	case lexer.Regex:
		p.advance()
		return success(Node{Value: p.cons(pos, sym(p.tbl.Add("$regex")), value.Str(tok.Literal), value.Str(tok.RegexFlags)), Pos: pos})
	case lexer.KwTrue:
		p.advance()
		return success(Node{Value: value.Bool(true), Pos: pos})
	case lexer.KwFalse:
		p.advance()
		return success(Node{Value: value.Bool(false), Pos: pos})
	case lexer.KwNull:
		p.advance()
		return success(Node{Value: value.Null, Pos: pos})
	case lexer.Ident:
		p.advance()
		return success(Node{Value: sym(p.tbl.Add(tok.Lexeme)), Pos: pos})
	case lexer.LParen:
		p.advance()
		inner := p.expr()
		p.expect(lexer.RParen, ")")
		return success(Node{Value: resultValue(inner), Pos: pos})
	case lexer.LBracket:
		return p.listLiteral()
	case lexer.Pipe:
		return p.lambdaLiteral()
	case lexer.KwFn:
		return p.fnLiteral()
	case lexer.KwQuote:
		p.advance()
		inner := p.term()
		return success(Node{Value: p.cons(pos, sym(p.special.Quote), resultValue(inner)), Pos: pos})
	case lexer.KwScope:
		p.advance()
		body := p.blockStatement()
		return success(Node{Value: p.cons(pos, sym(p.special.Scope), resultValue(body)), Pos: pos})
	case lexer.KwProg1:
		p.advance()
		stmts, blockPos := p.blockStatements()
		return success(Node{Value: p.cons(blockPos, sym(p.special.Prog1), stmts...), Pos: pos})
	case lexer.KwProgn:
		p.advance()
		return p.blockStatement()
	case lexer.KwNew:
		p.advance()
		typeTok := p.expect(lexer.Ident, "type name")
		typeSym := sym(p.tbl.Add(typeTok.Lexeme))
		args := p.argList()
		return success(Node{Value: p.cons(pos, sym(p.special.New), append([]value.Value{typeSym}, args...)...), Pos: pos})
	case lexer.LBrace:
		return p.blockStatement()
	default:
		p.fail(pos, "unexpected token %q", tok.Lexeme)
		panic("unreachable")
	}
}

// listLiteral parses `[e1, e2, ...]`, producing `[$list e1 e2 ...]`.
func (p *Parser) listLiteral() ParseResult {
	pos := p.expect(lexer.LBracket, "[").Pos
	var elems []value.Value
	for !p.check(lexer.RBracket) && !p.isAtEnd() {
		elems = append(elems, resultValue(p.expr()))
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RBracket, "]")
	return success(Node{Value: p.cons(pos, sym(p.special.List), elems...), Pos: pos})
}

// lambdaLiteral parses `|a, b| body`, producing `[$lambda [a b] body]`.
func (p *Parser) lambdaLiteral() ParseResult {
	pos := p.expect(lexer.Pipe, "|").Pos
	var params []value.Value
	for !p.check(lexer.Pipe) && !p.isAtEnd() {
		nameTok := p.expect(lexer.Ident, "parameter name")
		params = append(params, sym(p.tbl.Add(nameTok.Lexeme)))
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.Pipe, "|")
	paramList := list(sym(p.special.List), params...)
	bodyRes := p.statement()
	return success(Node{Value: p.cons(pos, sym(p.special.Lambda), paramList, resultValue(bodyRes)), Pos: pos})
}

// fnLiteral parses `fn name(a, b) { body }` (a named function, which
// desugars to a var binding of a lambda) and the anonymous `fn(a, b) {
// body }` form (a bare lambda).
func (p *Parser) fnLiteral() ParseResult {
	pos := p.advance().Pos // `fn`

	var nameSym value.Value
	hasName := false
	if p.check(lexer.Ident) {
		hasName = true
		nameTok := p.advance()
		nameSym = sym(p.tbl.Add(nameTok.Lexeme))
	}

	p.expect(lexer.LParen, "(")
	var params []value.Value
	for !p.check(lexer.RParen) && !p.isAtEnd() {
		paramTok := p.expect(lexer.Ident, "parameter name")
		params = append(params, sym(p.tbl.Add(paramTok.Lexeme)))
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, ")")
	paramList := list(sym(p.special.List), params...)

	bodyRes := p.blockStatement()
	lambda := p.cons(pos, sym(p.special.Lambda), paramList, resultValue(bodyRes))

	if !hasName {
		return success(Node{Value: lambda, Pos: pos})
	}
	return success(Node{Value: p.cons(pos, sym(p.special.Var), nameSym, lambda), Pos: pos})
}
