package locality

import (
	"strings"
	"testing"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/sema"
	"paraflow/internal/symbols"
)

func checkTree(t *testing.T, b *ast.Builder) error {
	t.Helper()
	tab := symbols.NewTable(symbols.Hints{}, nil)
	symbols.AssignScopes(b.T, tab)
	if err := symbols.Bind(b.T, tab); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := sema.Check(b.T, tab); err != nil {
		t.Fatalf("check: %v", err)
	}
	return Check(b.T, tab)
}

func wantCode(t *testing.T, err error, code diag.Code) *diag.Error {
	t.Helper()
	de, ok := diag.AsError(err)
	if !ok || de.Code != code {
		t.Fatalf("expected %s, got %v", code.ID(), err)
	}
	return de
}

// world declares a Point class and module-level state, then the given statements.
func world(b *ast.Builder, stmts ...ast.NodeID) {
	decls := []ast.NodeID{
		b.Class("Point", ast.NoNodeID,
			b.Var("x", b.Type("int"), ast.NoNodeID),
			b.Var("y", b.Type("int"), ast.NoNodeID),
		),
		b.Var("total", b.Type("int"), ast.NoNodeID),
		b.Var("hist", b.Of("array", "int"), ast.NoNodeID),
		b.Var("pts", b.Of("array", "Point"), ast.NoNodeID),
		b.Var("origin", b.Type("Point"), ast.NoNodeID),
	}
	b.Program(b.Module("m", append(decls, stmts...)...))
}

func paraDo(b *ast.Builder, body ...ast.NodeID) ast.NodeID {
	return b.Para(ast.ParaDo, b.Var("p", ast.NoNodeID, ast.NoNodeID), b.Name("pts"), b.Block(body...))
}

func TestParaWrites(t *testing.T) {
	b := ast.NewBuilder("")
	world(b, paraDo(b,
		b.Var("n", b.Type("int"), b.Int(1)),
		b.Assign(b.Name("n"), b.Int(2)),
		b.Assign(b.Dot(b.Name("p"), "x"), b.Name("n")),
	))
	if err := checkTree(t, b); err != nil {
		t.Fatalf("local and element writes rejected: %v", err)
	}

	b = ast.NewBuilder("")
	world(b, paraDo(b, b.Assign(b.Name("total"), b.Int(1))))
	de := wantCode(t, checkTree(t, b), diag.LocalityNonLocalWrite)
	if !strings.Contains(de.Msg, "total") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestTaintedLocalCannotBeWritten(t *testing.T) {
	b := ast.NewBuilder("")
	world(b, paraDo(b,
		b.Var("q", b.Type("Point"), ast.NoNodeID),
		b.Assign(b.Name("q"), b.Name("origin")),
		b.Assign(b.Dot(b.Name("q"), "x"), b.Int(1)),
	))
	if de := wantCode(t, checkTree(t, b), diag.LocalityTaintedWrite); !strings.Contains(de.Msg, "q") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestTaintSpreadsThroughLocals(t *testing.T) {
	b := ast.NewBuilder("")
	world(b, paraDo(b,
		b.Var("a", b.Type("Point"), b.Name("origin")),
		b.Var("c", b.Type("Point"), ast.NoNodeID),
		b.Assign(b.Name("c"), b.Name("a")),
		b.Assign(b.Dot(b.Name("c"), "y"), b.Int(1)),
	))
	if de := wantCode(t, checkTree(t, b), diag.LocalityTaintedWrite); !strings.Contains(de.Msg, "c may refer") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestAppendWritesItsCollection(t *testing.T) {
	b := ast.NewBuilder("")
	world(b, paraDo(b,
		b.Var("xs", b.Of("array", "int"), ast.NoNodeID),
		b.Call(b.Name("append"), b.Name("xs"), b.Int(1)),
	))
	if err := checkTree(t, b); err != nil {
		t.Fatalf("append to a local rejected: %v", err)
	}

	b = ast.NewBuilder("")
	world(b, paraDo(b, b.Call(b.Name("append"), b.Name("hist"), b.Int(1))))
	wantCode(t, checkTree(t, b), diag.LocalityNonLocalWrite)
}

func intFormals(b *ast.Builder, names ...string) ast.NodeID {
	var vars []ast.NodeID
	for _, n := range names {
		vars = append(vars, b.Var(n, b.Type("int"), ast.NoNodeID))
	}
	return b.Formals(vars...)
}

func TestFlowCalls(t *testing.T) {
	build := func(helper ast.FnKind) *ast.Builder {
		b := ast.NewBuilder("")
		b.Program(b.Module("m",
			b.Func(helper, "double", intFormals(b, "x"), intFormals(b, "r"), b.Block(
				b.Assign(b.Name("r"), b.Op(ast.KindMul, b.Name("x"), b.Int(2))),
			)),
			b.Func(ast.FnFlow, "quad", intFormals(b, "x"), intFormals(b, "r"), b.Block(
				b.Assign(b.Name("r"), b.Call(b.Name("double"), b.Call(b.Name("double"), b.Name("x")))),
			)),
		))
		return b
	}
	if err := checkTree(t, build(ast.FnFlow)); err != nil {
		t.Fatalf("flow calling flow rejected: %v", err)
	}
	de := wantCode(t, checkTree(t, build(ast.FnTo)), diag.LocalityEffectfulCall)
	if !strings.Contains(de.Msg, "flow quad") || !strings.Contains(de.Msg, "double") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestParaGetCallsMustBeFlows(t *testing.T) {
	build := func(fn ast.FnKind) *ast.Builder {
		b := ast.NewBuilder("")
		in := b.Formals(b.Var("pt", b.Type("Point"), ast.NoNodeID))
		world(b,
			b.Func(fn, "score", in, intFormals(b, "s"), b.Block()),
			b.Var("scores", ast.NoNodeID, b.Para(ast.ParaGet, b.Var("p", ast.NoNodeID, ast.NoNodeID), b.Name("pts"),
				b.Call(b.Name("score"), b.Name("p")))),
		)
		return b
	}
	if err := checkTree(t, build(ast.FnFlow)); err != nil {
		t.Fatalf("para get over a flow rejected: %v", err)
	}
	wantCode(t, checkTree(t, build(ast.FnTo)), diag.LocalityEffectfulCall)
}

func TestOutputCannotAliasOutsideState(t *testing.T) {
	out := func(b *ast.Builder) ast.NodeID {
		return b.Formals(b.Var("res", b.Type("Point"), ast.NoNodeID))
	}
	b := ast.NewBuilder("")
	world(b, b.Func(ast.FnFlow, "fresh", ast.NoNodeID, out(b), b.Block(
		b.Assign(b.Name("res"), b.Tuple(b.Int(1), b.Int(2))),
	)))
	if err := checkTree(t, b); err != nil {
		t.Fatalf("fresh output rejected: %v", err)
	}

	b = ast.NewBuilder("")
	world(b, b.Func(ast.FnFlow, "pick", ast.NoNodeID, out(b), b.Block(
		b.Assign(b.Name("res"), b.Name("origin")),
	)))
	if de := wantCode(t, checkTree(t, b), diag.LocalityOutputAlias); !strings.Contains(de.Msg, "res") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestFlowInputs(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Func(ast.FnFlow, "inc", intFormals(b, "n"), intFormals(b, "r"), b.Block(
			b.Assign(b.Name("n"), b.Op(ast.KindPlus, b.Name("n"), b.Int(1))),
			b.Assign(b.Name("r"), b.Name("n")),
		)),
	))
	if err := checkTree(t, b); err != nil {
		t.Fatalf("writing a value input rejected: %v", err)
	}

	b = ast.NewBuilder("")
	world(b, b.Func(ast.FnFlow, "touch", b.Formals(b.Var("pt", b.Type("Point"), ast.NoNodeID)), ast.NoNodeID, b.Block(
		b.Assign(b.Dot(b.Name("pt"), "x"), b.Int(1)),
	)))
	wantCode(t, checkTree(t, b), diag.LocalityTaintedWrite)
}

func TestFlowMethodCannotWriteFields(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Class("Counter", ast.NoNodeID,
			b.Var("n", b.Type("int"), ast.NoNodeID),
			b.Func(ast.FnFlow, "bump", ast.NoNodeID, ast.NoNodeID, b.Block(
				b.Assign(b.Name("n"), b.Op(ast.KindPlus, b.Name("n"), b.Int(1))),
			)),
		),
	))
	wantCode(t, checkTree(t, b), diag.LocalityNonLocalWrite)
}

func TestRefArgumentWritesActual(t *testing.T) {
	b := ast.NewBuilder("")
	n := b.With(b.Var("n", b.Type("int"), ast.NoNodeID), func(a *ast.Attrs) { a.Ref = true })
	world(b,
		b.Func(ast.FnFlow, "bump", b.Formals(n), ast.NoNodeID, b.Block(
			b.Assign(b.Name("n"), b.Op(ast.KindPlus, b.Name("n"), b.Int(1))),
		)),
		b.Func(ast.FnTo, "run", ast.NoNodeID, ast.NoNodeID, b.Block(
			b.Var("count", b.Type("int"), b.Int(0)),
			paraDo(b, b.Call(b.Name("bump"), b.Name("count"))),
		)),
	)
	if de := wantCode(t, checkTree(t, b), diag.LocalityNonLocalWrite); !strings.Contains(de.Msg, "count") {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestNestedParaCollectionBelongsToEnclosingFlow(t *testing.T) {
	build := func(loader ast.FnKind) *ast.Builder {
		b := ast.NewBuilder("")
		xs := b.Formals(b.Var("xs", b.Of("array", "int"), ast.NoNodeID))
		b.Program(b.Module("m",
			b.Func(loader, "load", ast.NoNodeID, xs, b.Block()),
			b.Func(ast.FnFlow, "sum", ast.NoNodeID, intFormals(b, "s"), b.Block(
				b.Assign(b.Name("s"), b.Para(ast.ParaAdd, b.Var("e", ast.NoNodeID, ast.NoNodeID),
					b.Call(b.Name("load")), b.Name("e"))),
			)),
		))
		return b
	}
	if err := checkTree(t, build(ast.FnFlow)); err != nil {
		t.Fatalf("para over a flow result rejected: %v", err)
	}
	de := wantCode(t, checkTree(t, build(ast.FnTo)), diag.LocalityEffectfulCall)
	if !strings.Contains(de.Msg, "flow sum") || !strings.Contains(de.Msg, "load") {
		t.Fatalf("message %q", de.Msg)
	}
}
