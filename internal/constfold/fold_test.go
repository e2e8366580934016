package constfold

import (
	"testing"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
)

func bindAndFold(t *testing.T, b *ast.Builder) (*symbols.Table, int, error) {
	t.Helper()
	tab := symbols.NewTable(symbols.Hints{}, nil)
	symbols.AssignScopes(b.T, tab)
	if err := symbols.Bind(b.T, tab); err != nil {
		t.Fatalf("bind: %v", err)
	}
	n, err := Fold(b.T, tab)
	return tab, n, err
}

func newConstDecl(b *ast.Builder, name string, init ast.NodeID) ast.NodeID {
	return b.With(b.Var(name, ast.NoNodeID, init), func(a *ast.Attrs) { a.Const = true })
}

func TestFoldArithmetic(t *testing.T) {
	b := ast.NewBuilder("")
	v := b.Var("x", b.Type("byte"), b.Op(ast.KindMul, b.Int(20), b.Op(ast.KindPlus, b.Int(3), b.Int(2))))
	b.Program(b.Module("m", v))
	_, n, err := bindAndFold(t, b)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	init := b.T.Get(b.T.Child(v, 1))
	if init.Kind != ast.KindLit || init.Lit.Int != 100 {
		t.Fatalf("init = %s %v", init.Kind, init.Lit)
	}
	if n != 2 {
		t.Fatalf("folded %d nodes, want 2", n)
	}
}

func TestFoldNamedConstantsInDependencyOrder(t *testing.T) {
	b := ast.NewBuilder("")
	use := b.Name("big")
	big := newConstDecl(b, "big", b.Op(ast.KindMul, b.Name("small"), b.Int(10)))
	small := newConstDecl(b, "small", b.Int(20))
	v := b.Var("y", b.Type("byte"), use)
	b.Program(b.Module("m", big, small, v))
	tab, _, err := bindAndFold(t, b)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if !tab.Var(tab.VarOf(big)).ConstFolded || !tab.Var(tab.VarOf(small)).ConstFolded {
		t.Fatalf("constants not marked folded")
	}
	init := b.T.Get(b.T.Child(v, 1))
	if init.Kind != ast.KindLit || init.Lit.Int != 200 {
		t.Fatalf("use of big not replaced: %s %v", init.Kind, init.Lit)
	}
}

func TestCircularConstants(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		newConstDecl(b, "a", b.Op(ast.KindPlus, b.Name("b"), b.Int(1))),
		newConstDecl(b, "b", b.Op(ast.KindPlus, b.Name("a"), b.Int(1))),
	))
	_, _, err := bindAndFold(t, b)
	if diag.CodeOf(err) != diag.StrNotConst {
		t.Fatalf("expected circular constant error, got %v", err)
	}
}

func TestFoldLeavesNonConstantAlone(t *testing.T) {
	b := ast.NewBuilder("")
	sum := b.Op(ast.KindPlus, b.Name("x"), b.Int(1))
	b.Program(b.Module("m",
		b.Var("x", b.Type("int"), ast.NoNodeID),
		b.Var("y", b.Type("int"), sum),
		b.Var("z", b.Type("int"), b.Op(ast.KindDiv, b.Int(1), b.Int(0))),
	))
	_, n, err := bindAndFold(t, b)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if n != 0 || b.T.Kind(sum) != ast.KindPlus {
		t.Fatalf("non-constant expression folded")
	}
}

func TestFoldStringsAndComparisons(t *testing.T) {
	cases := []struct {
		op   ast.Kind
		a, b ast.Literal
		want ast.Literal
	}{
		{ast.KindPlus, ast.Literal{Kind: ast.LitString, Str: "ab"}, ast.Literal{Kind: ast.LitString, Str: "c"}, ast.Literal{Kind: ast.LitString, Str: "abc"}},
		{ast.KindLess, ast.Literal{Kind: ast.LitString, Str: "a"}, ast.Literal{Kind: ast.LitString, Str: "b"}, ast.Literal{Kind: ast.LitBit, Int: 1}},
		{ast.KindPlus, ast.Literal{Kind: ast.LitInt, Int: 1}, ast.Literal{Kind: ast.LitFloat, Float: 0.5}, ast.Literal{Kind: ast.LitFloat, Float: 1.5}},
		{ast.KindShiftLeft, ast.Literal{Kind: ast.LitInt, Int: 1}, ast.Literal{Kind: ast.LitInt, Int: 4}, ast.Literal{Kind: ast.LitInt, Int: 16}},
		{ast.KindLogAnd, ast.Literal{Kind: ast.LitBit, Int: 1}, ast.Literal{Kind: ast.LitBit}, ast.Literal{Kind: ast.LitBit}},
	}
	for _, tc := range cases {
		got, ok := foldBinary(tc.op, tc.a, tc.b)
		if !ok || got != tc.want {
			t.Fatalf("%s(%v, %v) = %v, %v; want %v", tc.op, tc.a, tc.b, got, ok, tc.want)
		}
	}
}
