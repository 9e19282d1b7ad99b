package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"smile/internal/lexer"
	"smile/internal/symbol"
	"smile/internal/value"
)

// render is a local alias for the package's exported Render, kept short
// since every test in this file calls it.
func render(tbl *symbol.Table, v value.Value) string { return Render(tbl, v) }

func parseOne(t *testing.T, src string) (ParseResult, *Parser) {
	t.Helper()
	tbl := symbol.New()
	tbl.Preload()
	toks := lexer.New(src).All()
	p := New(toks, tbl)
	res := p.statement()
	return res, p
}

func TestDeclStatements(t *testing.T) {
	cases := map[string]string{
		"var_no_init":  "var x",
		"var_with_init": "var x = 1",
		"const_decl":   "const y = 2",
		"auto_decl":    "auto z = 3",
	}
	for name, src := range cases {
		src := src
		t.Run(name, func(t *testing.T) {
			res, p := parseOne(t, src)
			if res.Kind != SuccessWithResult {
				t.Fatalf("expected SuccessWithResult, got %v (%v)", res.Kind, res.Err)
			}
			snaps.MatchSnapshot(t, render(p.tbl, res.Node.Value))
		})
	}
}

func TestIfUnlessStatement(t *testing.T) {
	res, p := parseOne(t, "if x then 1 else 2")
	if res.Kind != SuccessWithResult {
		t.Fatalf("unexpected result kind %v: %v", res.Kind, res.Err)
	}
	got := render(p.tbl, res.Node.Value)
	want := "($if x 1 2)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	res2, p2 := parseOne(t, "unless x then 1")
	got2 := render(p2.tbl, res2.Node.Value)
	want2 := "($if ($not x) 1 null)"
	if got2 != want2 {
		t.Fatalf("got %s, want %s", got2, want2)
	}
}

func TestWhileUntilDesugar(t *testing.T) {
	res, p := parseOne(t, "while x do y")
	got := render(p.tbl, res.Node.Value)
	if got != "($while x y)" {
		t.Fatalf("got %s", got)
	}

	res2, p2 := parseOne(t, "until x do y")
	got2 := render(p2.tbl, res2.Node.Value)
	if got2 != "($while ($not x) y)" {
		t.Fatalf("got %s", got2)
	}
}

func TestDoWhileDesugar(t *testing.T) {
	res, p := parseOne(t, "do y while x")
	got := render(p.tbl, res.Node.Value)
	if got != "($while y x null)" {
		t.Fatalf("got %s", got)
	}
}

func TestDoUntilNegatesCondition(t *testing.T) {
	res, p := parseOne(t, "do y until x == 10")
	got := render(p.tbl, res.Node.Value)
	want := "($while y ($not ((x . ==) 10)) null)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestReturnStatement(t *testing.T) {
	res, p := parseOne(t, "return 5")
	if got := render(p.tbl, res.Node.Value); got != "($return 5)" {
		t.Fatalf("got %s", got)
	}

	res2, p2 := parseOne(t, "return")
	if got := render(p2.tbl, res2.Node.Value); got != "($return null)" {
		t.Fatalf("got %s", got)
	}
}

func TestTillStatement(t *testing.T) {
	res, p := parseOne(t, "till done { 1 }")
	got := render(p.tbl, res.Node.Value)
	if got != "($till ($list done) ($progn 1))" {
		t.Fatalf("got %s", got)
	}
}

func TestTryCatchStatement(t *testing.T) {
	res, p := parseOne(t, "try { 1 } catch |e| { 2 }")
	got := render(p.tbl, res.Node.Value)
	want := "($try ($progn 1) ($lambda ($list e) ($progn 2)))"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIfElseMatchesWorkedExample(t *testing.T) {
	res, p := parseOne(t, "if 1 < 2 then 10 else 20")
	got := render(p.tbl, res.Node.Value)
	want := "($if ((1 . <) 2) 10 20)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestComparisonOperatorsBuildDottedOperatorRefs(t *testing.T) {
	res, p := parseOne(t, "a < b")
	got := render(p.tbl, res.Node.Value)
	if got != "((a . <) b)" {
		t.Fatalf("got %s", got)
	}
}

func TestIdentityOperatorsBuildSpecialForms(t *testing.T) {
	res, p := parseOne(t, "a === b")
	if got := render(p.tbl, res.Node.Value); got != "($eq a b)" {
		t.Fatalf("got %s", got)
	}
	res2, p2 := parseOne(t, "a is b")
	if got := render(p2.tbl, res2.Node.Value); got != "($is a b)" {
		t.Fatalf("got %s", got)
	}
}

func TestOrAndFlatten(t *testing.T) {
	res, p := parseOne(t, "a or b or c")
	if got := render(p.tbl, res.Node.Value); got != "($or a b c)" {
		t.Fatalf("got %s", got)
	}
	res2, p2 := parseOne(t, "a and b and c")
	if got := render(p2.tbl, res2.Node.Value); got != "($and a b c)" {
		t.Fatalf("got %s", got)
	}
}

func TestNotNesting(t *testing.T) {
	res, p := parseOne(t, "not not x")
	if got := render(p.tbl, res.Node.Value); got != "($not ($not x))" {
		t.Fatalf("got %s", got)
	}
}

func TestArithmeticLeftAssociative(t *testing.T) {
	res, p := parseOne(t, "a + b - c")
	got := render(p.tbl, res.Node.Value)
	want := "((((a . +) b) . -) c)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDotAndCallChain(t *testing.T) {
	res, p := parseOne(t, "a.b(1).c")
	got := render(p.tbl, res.Node.Value)
	want := "($prop (($method a b) 1) c)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIndexAndCall(t *testing.T) {
	res, p := parseOne(t, "a[0]")
	if got := render(p.tbl, res.Node.Value); got != "($index a 0)" {
		t.Fatalf("got %s", got)
	}
	res2, p2 := parseOne(t, "f(1, 2)")
	if got := render(p2.tbl, res2.Node.Value); got != "($call f 1 2)" {
		t.Fatalf("got %s", got)
	}
}

func TestListLiteral(t *testing.T) {
	res, p := parseOne(t, "[1, 2, 3]")
	if got := render(p.tbl, res.Node.Value); got != "($list 1 2 3)" {
		t.Fatalf("got %s", got)
	}
}

func TestLambdaLiteral(t *testing.T) {
	res, p := parseOne(t, "|a, b| a")
	if got := render(p.tbl, res.Node.Value); got != "($lambda ($list a b) a)" {
		t.Fatalf("got %s", got)
	}
}

func TestNamedFnDesugarsToVarBinding(t *testing.T) {
	res, p := parseOne(t, "fn add(a, b) { a }")
	got := render(p.tbl, res.Node.Value)
	if got != "($var add ($lambda ($list a b) ($progn a)))" {
		t.Fatalf("got %s", got)
	}
}

func TestColonPairLiteral(t *testing.T) {
	res, p := parseOne(t, "a : b")
	if got := render(p.tbl, res.Node.Value); got != "($pair a b)" {
		t.Fatalf("got %s", got)
	}
}

func TestQuoteAndScope(t *testing.T) {
	res, p := parseOne(t, "quote x")
	if got := render(p.tbl, res.Node.Value); got != "($quote x)" {
		t.Fatalf("got %s", got)
	}
	res2, p2 := parseOne(t, "scope { 1 }")
	if got := render(p2.tbl, res2.Node.Value); got != "($scope ($progn 1))" {
		t.Fatalf("got %s", got)
	}
}

func TestNewExpression(t *testing.T) {
	res, p := parseOne(t, "new Widget(1, 2)")
	if got := render(p.tbl, res.Node.Value); got != "($new Widget 1 2)" {
		t.Fatalf("got %s", got)
	}
}

func TestNumberSuffixesParseToMatchingKind(t *testing.T) {
	cases := []struct {
		src  string
		kind value.Kind
	}{
		{"5", value.KInt64},
		{"5b", value.KByte},
		{"5h", value.KInt16},
		{"5t", value.KInt32},
		{"5l", value.KInt64},
		{"5x", value.KReal64},
		{"5f", value.KFloat64},
		{"5r", value.KReal64},
		{"5.5", value.KReal64},
	}
	for _, c := range cases {
		res, _ := parseOne(t, c.src)
		if res.Node.Value.Kind != c.kind {
			t.Fatalf("%s: got kind %v, want %v", c.src, res.Node.Value.Kind, c.kind)
		}
	}
}

func TestUnrecoverableSyntaxErrorRecovers(t *testing.T) {
	tbl := symbol.New()
	tbl.Preload()
	toks := lexer.New("var ) if x then 1").All()
	p := New(toks, tbl)
	results := p.Parse()
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	foundRecovered := false
	for _, r := range results {
		if r.Kind == ErroredButRecovered {
			foundRecovered = true
		}
	}
	if !foundRecovered {
		t.Fatalf("expected at least one ErroredButRecovered result, got %+v", results)
	}
}

func TestPositionsAreTracked(t *testing.T) {
	res, p := parseOne(t, "if x then 1 else 2")
	if res.Kind != SuccessWithResult {
		t.Fatalf("unexpected result: %v", res.Err)
	}
	pos, ok := p.PositionOf(res.Node.Value.AsCons())
	if !ok {
		t.Fatal("expected a tracked position for the top-level $if cell")
	}
	if pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("got %+v, want line 1 column 1", pos)
	}
}
