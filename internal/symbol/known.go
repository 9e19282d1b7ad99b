package symbol

// KnownSymbols holds the reserved IDs assigned during Preload. Field values
// are stable across process invocations because Preload always interns the
// same names in the same order. Code elsewhere may treat these as
// compile-time constants once a Preload has run.
type KnownSymbols struct {
	// Keywords
	If, Unless, While, Until, Till, Do ID
	Var, Const, Auto                   ID
	Try, Catch                         ID
	Fn, Quote, Scope, Prog1, Progn     ID
	Return, Not, Or, And, New, Is, TypeOf ID

	// Operators
	Equals, EqEq, NotEq, Lt, Gt, Le, Ge     ID
	SuperEq, SuperNe                       ID
	Plus, Minus, Star, Slash, Caret        ID
	ShiftLeft, ShiftRight, RotLeft, RotRight ID
	LBracket, RBracket, LBrace, RBrace     ID
	LParen, RParen, FatArrow               ID

	// Type names
	TByte, TInt16, TInt32, TInt64           ID
	TReal32, TReal64, TFloat32, TFloat64    ID
	TChar, TUni, TBool, TSymbol, TString    ID
	TList, TMap, TFunction, TNull           ID

	// Method / property names
	Abs, Sqrt, Each, Map, Where, First, Count ID
	Hash, Compare, Start, End, Length         ID
	A, D, IndexOf, AnyQ, AllQ, ContainsQ      ID
	Sort, SortBang                            ID

	// Error kinds
	CompileError, ConfigurationError, EvalError ID
	ExecError, JSONError, LexerError, LoadError ID
	NativeMethodError, ObjectSecurityError      ID
	PostConditionAssertion, PreConditionAssertion ID
	PropertyError, SyntaxError, SystemException ID
	TypeAssertion, UserException                ID
}

type knownGroup struct {
	names  []string
	assign func(ks *KnownSymbols, id ID, name string)
}

// knownSymbolGroups defines the deterministic preload order: keywords,
// then operators, then type names, then method/property names, then
// error kinds.
var knownSymbolGroups = []knownGroup{
	{
		names: []string{
			"if", "unless", "while", "until", "till", "do",
			"var", "const", "auto",
			"try", "catch",
			"fn", "quote", "scope", "prog1", "progn",
			"return", "not", "or", "and", "new", "is", "typeof",
		},
		assign: assignKeyword,
	},
	{
		names: []string{
			"=", "==", "!=", "<", ">", "<=", ">=", "===", "!==",
			"+", "-", "*", "/", "^",
			"<<", ">>", "<<<", ">>>",
			"[", "]", "{", "}", "(", ")", "=>",
		},
		assign: assignOperator,
	},
	{
		names: []string{
			"Byte", "Integer16", "Integer32", "Integer64",
			"Real32", "Real64", "Float32", "Float64",
			"Char", "Uni", "Bool", "Symbol", "String",
			"List", "Map", "Function", "Null",
		},
		assign: assignType,
	},
	{
		names: []string{
			"abs", "sqrt", "each", "map", "where", "first", "count",
			"hash", "compare", "start", "end", "length",
			"a", "d", "index-of", "any?", "all?", "contains?",
			"sort", "sort!",
		},
		assign: assignMethod,
	},
	{
		names: []string{
			"compile-error", "configuration-error", "eval-error",
			"exec-error", "json-error", "lexer-error", "load-error",
			"native-method-error", "object-security-error",
			"post-condition-assertion", "pre-condition-assertion",
			"property-error", "syntax-error", "system-exception",
			"type-assertion", "user-exception",
		},
		assign: assignErrorKind,
	},
}

func assignKeyword(ks *KnownSymbols, id ID, name string) {
	switch name {
	case "if":
		ks.If = id
	case "unless":
		ks.Unless = id
	case "while":
		ks.While = id
	case "until":
		ks.Until = id
	case "till":
		ks.Till = id
	case "do":
		ks.Do = id
	case "var":
		ks.Var = id
	case "const":
		ks.Const = id
	case "auto":
		ks.Auto = id
	case "try":
		ks.Try = id
	case "catch":
		ks.Catch = id
	case "fn":
		ks.Fn = id
	case "quote":
		ks.Quote = id
	case "scope":
		ks.Scope = id
	case "prog1":
		ks.Prog1 = id
	case "progn":
		ks.Progn = id
	case "return":
		ks.Return = id
	case "not":
		ks.Not = id
	case "or":
		ks.Or = id
	case "and":
		ks.And = id
	case "new":
		ks.New = id
	case "is":
		ks.Is = id
	case "typeof":
		ks.TypeOf = id
	}
}

func assignOperator(ks *KnownSymbols, id ID, name string) {
	switch name {
	case "=":
		ks.Equals = id
	case "==":
		ks.EqEq = id
	case "!=":
		ks.NotEq = id
	case "<":
		ks.Lt = id
	case ">":
		ks.Gt = id
	case "<=":
		ks.Le = id
	case ">=":
		ks.Ge = id
	case "===":
		ks.SuperEq = id
	case "!==":
		ks.SuperNe = id
	case "+":
		ks.Plus = id
	case "-":
		ks.Minus = id
	case "*":
		ks.Star = id
	case "/":
		ks.Slash = id
	case "^":
		ks.Caret = id
	case "<<":
		ks.ShiftLeft = id
	case ">>":
		ks.ShiftRight = id
	case "<<<":
		ks.RotLeft = id
	case ">>>":
		ks.RotRight = id
	case "[":
		ks.LBracket = id
	case "]":
		ks.RBracket = id
	case "{":
		ks.LBrace = id
	case "}":
		ks.RBrace = id
	case "(":
		ks.LParen = id
	case ")":
		ks.RParen = id
	case "=>":
		ks.FatArrow = id
	}
}

func assignType(ks *KnownSymbols, id ID, name string) {
	switch name {
	case "Byte":
		ks.TByte = id
	case "Integer16":
		ks.TInt16 = id
	case "Integer32":
		ks.TInt32 = id
	case "Integer64":
		ks.TInt64 = id
	case "Real32":
		ks.TReal32 = id
	case "Real64":
		ks.TReal64 = id
	case "Float32":
		ks.TFloat32 = id
	case "Float64":
		ks.TFloat64 = id
	case "Char":
		ks.TChar = id
	case "Uni":
		ks.TUni = id
	case "Bool":
		ks.TBool = id
	case "Symbol":
		ks.TSymbol = id
	case "String":
		ks.TString = id
	case "List":
		ks.TList = id
	case "Map":
		ks.TMap = id
	case "Function":
		ks.TFunction = id
	case "Null":
		ks.TNull = id
	}
}

func assignMethod(ks *KnownSymbols, id ID, name string) {
	switch name {
	case "abs":
		ks.Abs = id
	case "sqrt":
		ks.Sqrt = id
	case "each":
		ks.Each = id
	case "map":
		ks.Map = id
	case "where":
		ks.Where = id
	case "first":
		ks.First = id
	case "count":
		ks.Count = id
	case "hash":
		ks.Hash = id
	case "compare":
		ks.Compare = id
	case "start":
		ks.Start = id
	case "end":
		ks.End = id
	case "length":
		ks.Length = id
	case "a":
		ks.A = id
	case "d":
		ks.D = id
	case "index-of":
		ks.IndexOf = id
	case "any?":
		ks.AnyQ = id
	case "all?":
		ks.AllQ = id
	case "contains?":
		ks.ContainsQ = id
	case "sort":
		ks.Sort = id
	case "sort!":
		ks.SortBang = id
	}
}

func assignErrorKind(ks *KnownSymbols, id ID, name string) {
	switch name {
	case "compile-error":
		ks.CompileError = id
	case "configuration-error":
		ks.ConfigurationError = id
	case "eval-error":
		ks.EvalError = id
	case "exec-error":
		ks.ExecError = id
	case "json-error":
		ks.JSONError = id
	case "lexer-error":
		ks.LexerError = id
	case "load-error":
		ks.LoadError = id
	case "native-method-error":
		ks.NativeMethodError = id
	case "object-security-error":
		ks.ObjectSecurityError = id
	case "post-condition-assertion":
		ks.PostConditionAssertion = id
	case "pre-condition-assertion":
		ks.PreConditionAssertion = id
	case "property-error":
		ks.PropertyError = id
	case "syntax-error":
		ks.SyntaxError = id
	case "system-exception":
		ks.SystemException = id
	case "type-assertion":
		ks.TypeAssertion = id
	case "user-exception":
		ks.UserException = id
	}
}
