package sema

import (
	"strings"
	"testing"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// fProgram declares "to f(x int, y int = 5)" and appends the given calls.
func fProgram(b *ast.Builder, calls ...ast.NodeID) {
	formals := b.Formals(
		b.Var("x", b.Type("int"), ast.NoNodeID),
		b.Var("y", b.Type("int"), b.Int(5)),
	)
	stmts := append([]ast.NodeID{b.Func(ast.FnTo, "f", formals, ast.NoNodeID, b.Block())}, calls...)
	b.Program(b.Module("m", stmts...))
}

func argValues(b *ast.Builder, call ast.NodeID) []int64 {
	var out []int64
	for _, a := range b.T.Children(b.T.Child(call, 1)) {
		out = append(out, b.T.Get(a).Lit.Int)
	}
	return out
}

func TestNamedArgumentsReorderedAndDefaultsFilled(t *testing.T) {
	b := ast.NewBuilder("")
	reordered := b.Call(b.Name("f"), b.KeyVal("y", b.Int(2)), b.KeyVal("x", b.Int(1)))
	defaulted := b.Call(b.Name("f"), b.KeyVal("x", b.Int(1)))
	fProgram(b, reordered, defaulted)
	mustCheck(t, b)

	for _, tc := range []struct {
		call ast.NodeID
		want []int64
	}{{reordered, []int64{1, 2}}, {defaulted, []int64{1, 5}}} {
		got := argValues(b, tc.call)
		if len(got) != len(tc.want) || got[0] != tc.want[0] || got[1] != tc.want[1] {
			t.Fatalf("arguments %v, want %v", got, tc.want)
		}
	}
}

func TestArgumentMatchingErrors(t *testing.T) {
	cases := []struct {
		name string
		args func(b *ast.Builder) []ast.NodeID
		code diag.Code
	}{
		{"unknown", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.KeyVal("z", b.Int(1))}
		}, diag.StrUnknownNamed},
		{"duplicate", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.KeyVal("x", b.Int(1)), b.KeyVal("x", b.Int(2))}
		}, diag.StrDuplicateNamed},
		{"positional after named", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.KeyVal("x", b.Int(1)), b.Int(2)}
		}, diag.StrPositionalAfterNamed},
		{"missing", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.KeyVal("y", b.Int(2))}
		}, diag.StrMissingArg},
		{"too many", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.Int(1), b.Int(2), b.Int(3)}
		}, diag.StrTooManyValues},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ast.NewBuilder("")
			fProgram(b, b.Call(b.Name("f"), tc.args(b)...))
			_, err := checkTree(t, b)
			wantCode(t, err, tc.code)
		})
	}
}

func refProgram(b *ast.Builder, body ...ast.NodeID) {
	a := b.With(b.Var("a", b.Type("int"), ast.NoNodeID), func(at *ast.Attrs) { at.Ref = true })
	b.Program(b.Module("m",
		b.Var("global", b.Type("int"), ast.NoNodeID),
		b.Func(ast.FnTo, "f", b.Formals(a), ast.NoNodeID, b.Block()),
		b.Func(ast.FnTo, "g", ast.NoNodeID, ast.NoNodeID, b.Block(body...)),
	))
}

func TestRefArgumentsMustBeLocal(t *testing.T) {
	b := ast.NewBuilder("")
	refProgram(b, b.Var("local", b.Type("int"), b.Int(1)), b.Call(b.Name("f"), b.Name("local")))
	mustCheck(t, b)

	for name, arg := range map[string]func(b *ast.Builder) ast.NodeID{
		"literal": func(b *ast.Builder) ast.NodeID { return b.Op(ast.KindPlus, b.Int(1), b.Int(2)) },
		"global":  func(b *ast.Builder) ast.NodeID { return b.Name("global") },
	} {
		b := ast.NewBuilder("")
		refProgram(b, b.Call(b.Name("f"), arg(b)))
		_, err := checkTree(t, b)
		if err == nil {
			t.Fatalf("%s: by-reference argument accepted", name)
		}
		wantCode(t, err, diag.StrRefArg)
	}
}

func TestStringConcatenationIsFlattened(t *testing.T) {
	b := ast.NewBuilder("")
	s := b.Var("s", b.Type("string"),
		b.Op(ast.KindPlus, b.Op(ast.KindPlus, b.Str("n="), b.Name("n")), b.Name("t")))
	b.Program(b.Module("m",
		b.Var("n", b.Type("int"), ast.NoNodeID),
		b.Var("t", b.Type("string"), ast.NoNodeID),
		s,
	))
	mustCheck(t, b)

	cat := b.T.Child(s, 1)
	parts := b.T.Children(cat)
	if b.T.Kind(cat) != ast.KindStringCat || len(parts) != 3 {
		t.Fatalf("expected a 3-part concatenation, got %s with %d parts", b.T.Kind(cat), len(parts))
	}
	if n := b.T.Get(parts[1]); n.Kind != ast.KindCast || n.Cast != ast.CastNumToString {
		t.Fatalf("number not converted: %s", n.Kind)
	}
}

func TestArithmeticWidens(t *testing.T) {
	b := ast.NewBuilder("")
	sum := b.Op(ast.KindPlus, b.Name("i"), b.Name("d"))
	b.Program(b.Module("m",
		b.Var("i", b.Type("int"), ast.NoNodeID),
		b.Var("d", b.Type("double"), ast.NoNodeID),
		b.Var("r", ast.NoNodeID, sum),
		b.Var("lt", ast.NoNodeID, b.Op(ast.KindLess, b.Name("i"), b.Name("d"))),
	))
	tab := mustCheck(t, b)

	bi := tab.Universe.Builtins()
	if tab.TypeOf(sum).Base != bi.Double {
		t.Fatalf("int + double typed %s", tab.Format(tab.TypeOf(sum)))
	}
	if n := b.T.Get(b.T.Child(sum, 0)); n.Kind != ast.KindCast || n.Cast != ast.CastNumeric {
		t.Fatalf("int operand not widened")
	}
	lt, _ := tab.FindVar(tab.Modules["m"], "lt")
	if tab.Var(lt).Type.Base != bi.Bit {
		t.Fatalf("comparison typed %s", tab.Format(tab.Var(lt).Type))
	}
}

func TestVarOperandIsAmbiguous(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Var("v", b.Type("var"), ast.NoNodeID),
		b.Var("x", b.Type("int"), b.Op(ast.KindPlus, b.Name("v"), b.Int(1))),
	))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.TypAmbiguousVar)
}

func TestAssignmentTargets(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *ast.Builder)
		msg   string
	}{
		{"constant", func(b *ast.Builder) {
			k := b.With(b.Var("k", b.Type("int"), b.Int(1)), func(a *ast.Attrs) { a.Const = true })
			b.Program(b.Module("m", k, b.Assign(b.Name("k"), b.Int(2))))
		}, "k is constant"},
		{"string character", func(b *ast.Builder) {
			b.Program(b.Module("m",
				b.Var("s", b.Type("string"), b.Str("ab")),
				b.Assign(b.Index(b.Name("s"), b.Int(0)), b.Char('x')),
			))
		}, "string characters are not writable"},
		{"foreign readable", func(b *ast.Builder) {
			r := b.With(b.Var("r", b.Type("int"), ast.NoNodeID), func(a *ast.Attrs) { a.Access = ast.AccessReadable })
			b.Program(
				b.Module("lib", r),
				b.Module("app", b.Assign(b.Dot(b.Name("lib"), "r"), b.Int(1))),
			)
		}, "not writable from module app"},
		{"function", func(b *ast.Builder) {
			b.Program(b.Module("m",
				b.Func(ast.FnTo, "f", ast.NoNodeID, ast.NoNodeID, b.Block()),
				b.Assign(b.Name("f"), b.Nil()),
			))
		}, "f is not writable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ast.NewBuilder("")
			tc.build(b)
			_, err := checkTree(t, b)
			if de := wantCode(t, err, diag.StrNotWritable); !strings.Contains(de.Msg, tc.msg) {
				t.Fatalf("message %q, want %q", de.Msg, tc.msg)
			}
		})
	}

	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Var("a", b.Type("int"), ast.NoNodeID),
		b.Var("c", b.Type("int"), ast.NoNodeID),
		b.Assign(b.Tuple(b.Name("a"), b.Name("c")), b.Tuple(b.Int(1), b.Int(2))),
	))
	mustCheck(t, b)
}

func TestRepuntOnlyInsideCatch(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m", b.Try(
		b.Block(b.Call(b.Name("punt"), b.Str("boom"))),
		b.Var("e", ast.NoNodeID, ast.NoNodeID),
		b.Block(b.Call(b.Name("repunt"))),
	)))
	mustCheck(t, b)

	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Call(b.Name("repunt"))))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.StrMisplaced)
}

func TestMisplacedJumps(t *testing.T) {
	for _, jump := range []func(b *ast.Builder) ast.NodeID{
		(*ast.Builder).Break, (*ast.Builder).Continue, (*ast.Builder).Return,
	} {
		b := ast.NewBuilder("")
		b.Program(b.Module("m", jump(b)))
		_, err := checkTree(t, b)
		wantCode(t, err, diag.StrMisplaced)
	}
}

func TestAppendCoercesElement(t *testing.T) {
	b := ast.NewBuilder("")
	app := b.Call(b.Name("append"), b.Name("xs"), b.Int(3))
	b.Program(b.Module("m", b.Var("xs", b.Of("array", "long"), ast.NoNodeID), app))
	tab := mustCheck(t, b)

	el := b.T.Child(b.T.Child(app, 1), 1)
	if tab.TypeOf(el).Base != tab.Universe.Builtins().Long {
		t.Fatalf("element typed %s", tab.Format(tab.TypeOf(el)))
	}

	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("xs", b.Of("array", "long"), ast.NoNodeID), b.Call(b.Name("append"), b.Name("xs"))))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.StrArity)
}

func TestDirElementsMustBeKeyed(t *testing.T) {
	b := ast.NewBuilder("")
	d := b.Var("d", b.Of("dir", "int"), b.Tuple(b.KeyVal("a", b.Int(1)), b.KeyVal("b", b.Int(2))))
	b.Program(b.Module("m", d))
	mustCheck(t, b)

	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("d", b.Of("dir", "int"), b.Tuple(b.Int(1), b.Int(2)))))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.StrBadShape)
}

func TestFixedArrayCannotBeInitialized(t *testing.T) {
	sized := func(b *ast.Builder) ast.NodeID {
		return b.Node(ast.KindTypeOf, "of", b.Type("array", b.Int(10)), b.Type("int"))
	}
	b := ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("a", sized(b), ast.NoNodeID)))
	mustCheck(t, b)

	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("a", sized(b), b.Tuple(b.Int(1), b.Int(2)))))
	_, err := checkTree(t, b)
	if de := wantCode(t, err, diag.StrFixedArrayInit); !strings.Contains(de.Msg, "a") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestConstInitializerMustBeConstant(t *testing.T) {
	b := ast.NewBuilder("")
	c := b.With(b.Var("c", b.Type("int"), b.Op(ast.KindPlus, b.Name("x"), b.Int(1))), func(a *ast.Attrs) { a.Const = true })
	b.Program(b.Module("m", b.Var("x", b.Type("int"), ast.NoNodeID), c))
	_, err := checkTree(t, b)
	if de := wantCode(t, err, diag.StrNotConst); !strings.Contains(de.Msg, "non-constant x") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestParaResultTypes(t *testing.T) {
	b := ast.NewBuilder("")
	get := b.Para(ast.ParaGet, b.Var("el", ast.NoNodeID, ast.NoNodeID), b.Name("xs"),
		b.Op(ast.KindMul, b.Name("el"), b.Int(2)))
	filter := b.Para(ast.ParaFilter, b.Var("e", ast.NoNodeID, ast.NoNodeID), b.Name("xs"),
		b.Op(ast.KindGreater, b.Name("e"), b.Int(0)))
	sum := b.Para(ast.ParaAdd, b.Var("e", ast.NoNodeID, ast.NoNodeID), b.Name("xs"), b.Name("e"))
	b.Program(b.Module("m",
		b.Var("xs", b.Of("array", "int"), ast.NoNodeID),
		b.Var("doubled", ast.NoNodeID, get),
		b.Var("positive", ast.NoNodeID, filter),
		b.Var("total", ast.NoNodeID, sum),
	))
	tab := mustCheck(t, b)

	for _, tc := range []struct {
		node ast.NodeID
		want string
	}{{get, "array of int"}, {filter, "array of int"}, {sum, "int"}} {
		if got := tab.Format(tab.TypeOf(tc.node)); got != tc.want {
			t.Fatalf("para typed %s, want %s", got, tc.want)
		}
	}

	b = ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Var("xs", b.Of("array", "string"), ast.NoNodeID),
		b.Var("top", ast.NoNodeID, b.Para(ast.ParaMax, b.Var("e", ast.NoNodeID, ast.NoNodeID), b.Name("xs"), b.Name("e"))),
	))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.TypBadOperand)
}

func TestIndexing(t *testing.T) {
	collections := func(b *ast.Builder) []ast.NodeID {
		return []ast.NodeID{
			b.Var("s", b.Type("string"), b.Str("abc")),
			b.Var("d", b.Of("dir", "int"), ast.NoNodeID),
			b.Var("a", b.Of("array", "int"), ast.NoNodeID),
			b.Var("small", b.Type("byte"), b.Int(1)),
			b.Var("n", b.Type("int"), b.Int(1)),
		}
	}
	for _, tc := range []struct {
		name     string
		typ      string
		index    func(b *ast.Builder) ast.NodeID
		wantElem types.BaseKind
		wantCast ast.CastKind
	}{
		{"string yields char", "char", func(b *ast.Builder) ast.NodeID { return b.Index(b.Name("s"), b.Int(0)) }, types.BaseChar, ast.CastNone},
		{"dir key is a string", "int", func(b *ast.Builder) ast.NodeID { return b.Index(b.Name("d"), b.Char('k')) }, types.BaseInt, ast.CastCharToString},
		{"array index is an int", "int", func(b *ast.Builder) ast.NodeID { return b.Index(b.Name("a"), b.Name("small")) }, types.BaseInt, ast.CastNumeric},
	} {
		b := ast.NewBuilder("")
		v := b.Var("v", b.Type(tc.typ), tc.index(b))
		b.Program(b.Module("m", append(collections(b), v)...))
		tab := mustCheck(t, b)

		idx := b.T.Child(v, 1)
		if b.T.Kind(idx) != ast.KindIndex {
			t.Fatalf("%s: init is %s", tc.name, b.T.Kind(idx))
		}
		if k := tab.Universe.Kind(tab.TypeOf(idx).Base); k != tc.wantElem {
			t.Fatalf("%s: element kind %s, want %s", tc.name, k, tc.wantElem)
		}
		key := b.T.Get(b.T.Child(idx, 1))
		switch {
		case tc.wantCast == ast.CastNone && key.Kind == ast.KindCast:
			t.Fatalf("%s: unexpected %s cast on the key", tc.name, key.Cast)
		case tc.wantCast != ast.CastNone && (key.Kind != ast.KindCast || key.Cast != tc.wantCast):
			t.Fatalf("%s: key is %s/%s, want cast %s", tc.name, key.Kind, key.Cast, tc.wantCast)
		}
	}

	b := ast.NewBuilder("")
	b.Program(b.Module("m", append(collections(b), b.Var("v", b.Type("int"), b.Index(b.Name("n"), b.Int(0))))...))
	_, err := checkTree(t, b)
	if de := wantCode(t, err, diag.TypNotIndexable); !strings.Contains(de.Msg, "int") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestConditionsBecomeBits(t *testing.T) {
	for _, tc := range []struct {
		cond string
		want ast.CastKind
	}{
		{"origin", ast.CastRefToBit},
		{"xs", ast.CastRefToBit},
		{"s", ast.CastStringToBit},
	} {
		b := ast.NewBuilder("")
		cond := b.If(b.Name(tc.cond), b.Block(), ast.NoNodeID)
		b.Program(b.Module("m",
			pointClass(b),
			b.Var("origin", b.Type("Point"), ast.NoNodeID),
			b.Var("xs", b.Of("array", "int"), ast.NoNodeID),
			b.Var("s", b.Type("string"), b.Str("")),
			cond,
		))
		mustCheck(t, b)
		n := b.T.Get(b.T.Child(cond, 0))
		if n.Kind != ast.KindCast || n.Cast != tc.want {
			t.Fatalf("if %s: condition is %s/%s, want cast %s", tc.cond, n.Kind, n.Cast, tc.want)
		}
	}
}

func TestComparingRelatedClasses(t *testing.T) {
	build := func(b *ast.Builder, cmp ast.NodeID) {
		b.Program(b.Module("m",
			b.Class("Base", ast.NoNodeID, b.Var("x", b.Type("int"), ast.NoNodeID)),
			b.Class("Derived", b.Type("Base"), b.Var("y", b.Type("int"), ast.NoNodeID)),
			b.Class("Other", ast.NoNodeID, b.Var("z", b.Type("int"), ast.NoNodeID)),
			b.Var("d", b.Type("Derived"), ast.NoNodeID),
			b.Var("base", b.Type("Base"), ast.NoNodeID),
			b.Var("o", b.Type("Other"), ast.NoNodeID),
			b.Var("same", b.Type("bit"), cmp),
		))
	}
	for _, op := range []ast.Kind{ast.KindSame, ast.KindNotSame} {
		b := ast.NewBuilder("")
		cmp := b.Op(op, b.Name("d"), b.Name("base"))
		build(b, cmp)
		tab := mustCheck(t, b)
		if tab.Universe.Kind(tab.TypeOf(cmp).Base) != types.BaseBit {
			t.Fatalf("%s: comparison is %s", op, tab.Format(tab.TypeOf(cmp)))
		}

		b = ast.NewBuilder("")
		cmp = b.Op(op, b.Name("base"), b.Name("d"))
		build(b, cmp)
		mustCheck(t, b)
	}

	b := ast.NewBuilder("")
	build(b, b.Op(ast.KindSame, b.Name("d"), b.Name("o")))
	_, err := checkTree(t, b)
	wantCode(t, err, diag.TypMismatch)
}
