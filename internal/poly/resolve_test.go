package poly

import (
	"testing"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/sema"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

func resolveTree(t *testing.T, b *ast.Builder) (*symbols.Table, error) {
	t.Helper()
	tab := symbols.NewTable(symbols.Hints{}, nil)
	symbols.AssignScopes(b.T, tab)
	if err := symbols.Bind(b.T, tab); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := sema.Check(b.T, tab); err != nil {
		t.Fatalf("check: %v", err)
	}
	return tab, Resolve(b.T, tab)
}

func method(b *ast.Builder, name string, poly bool, in ...ast.NodeID) ast.NodeID {
	formals := ast.NoNodeID
	if len(in) > 0 {
		formals = b.Formals(in...)
	}
	fn := b.Func(ast.FnTo, name, formals, ast.NoNodeID, b.Block())
	return b.With(fn, func(a *ast.Attrs) { a.Polymorphic = poly })
}

func arg(b *ast.Builder, name, typ string) ast.NodeID {
	return b.Var(name, b.Type(typ), ast.NoNodeID)
}

func wantCode(t *testing.T, err error, code diag.Code) {
	t.Helper()
	de, ok := diag.AsError(err)
	if !ok || de.Code != code {
		t.Fatalf("expected %s, got %v", code.ID(), err)
	}
}

func TestDispatchSlots(t *testing.T) {
	b := ast.NewBuilder("")
	a := b.Class("A", ast.NoNodeID,
		method(b, "draw", true),
		method(b, "size", true, arg(b, "scale", "int")),
		method(b, "helper", false),
	)
	bc := b.Class("B", b.Type("A"),
		method(b, "draw", true),
		method(b, "area", true),
	)
	c := b.Class("C", b.Type("B"),
		method(b, "size", true, arg(b, "scale", "int")),
	)
	b.Program(b.Module("m", a, bc, c))
	tab, err := resolveTree(t, b)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	ids := map[string]types.BaseID{"A": tab.BaseOf(a), "B": tab.BaseOf(bc), "C": tab.BaseOf(c)}
	type slot struct {
		name string
		impl string
	}
	want := map[string][]slot{
		"A": {{"draw", "A"}, {"size", "A"}},
		"B": {{"draw", "B"}, {"size", "A"}, {"area", "B"}},
		"C": {{"draw", "B"}, {"size", "C"}, {"area", "B"}},
	}
	for class, slots := range want {
		got := tab.Universe.Get(ids[class]).Poly
		if len(got) != len(slots) {
			t.Fatalf("%s has %d slots, want %d", class, len(got), len(slots))
		}
		for i, s := range slots {
			if got[i].Name != s.name || got[i].Slot != i || got[i].Impl != ids[s.impl] {
				t.Fatalf("%s slot %d = %+v, want %s from %s", class, i, got[i], s.name, s.impl)
			}
		}
	}
	if tab.Universe.Get(ids["C"]).Slot("helper") != -1 {
		t.Fatalf("non-polymorphic method got a slot")
	}
}

func TestOverrideErrors(t *testing.T) {
	cases := []struct {
		name       string
		base, over func(b *ast.Builder) ast.NodeID
		code       diag.Code
	}{
		{
			"plain redeclared",
			func(b *ast.Builder) ast.NodeID { return method(b, "f", false) },
			func(b *ast.Builder) ast.NodeID { return method(b, "f", false) },
			diag.StrOverride,
		},
		{
			"polymorphic over plain",
			func(b *ast.Builder) ast.NodeID { return method(b, "f", false) },
			func(b *ast.Builder) ast.NodeID { return method(b, "f", true) },
			diag.StrOverride,
		},
		{
			"different signature",
			func(b *ast.Builder) ast.NodeID { return method(b, "f", true, arg(b, "x", "int")) },
			func(b *ast.Builder) ast.NodeID { return method(b, "f", true, arg(b, "x", "string")) },
			diag.StrPolySignature,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ast.NewBuilder("")
			b.Program(b.Module("m",
				b.Class("Base", ast.NoNodeID, tc.base(b)),
				b.Class("Mid", b.Type("Base")),
				b.Class("Leaf", b.Type("Mid"), tc.over(b)),
			))
			_, err := resolveTree(t, b)
			wantCode(t, err, tc.code)
		})
	}
}

func TestInitializerMayBeRedeclared(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Class("Base", ast.NoNodeID, method(b, symbols.InitName, false)),
		b.Class("Derived", b.Type("Base"), method(b, symbols.InitName, false, arg(b, "x", "int"))),
	))
	if _, err := resolveTree(t, b); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}
