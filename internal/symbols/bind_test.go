package symbols

import (
	"testing"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

func bindTree(b *ast.Builder) (*Table, error) {
	tab := NewTable(Hints{}, nil)
	AssignScopes(b.T, tab)
	return tab, Bind(b.T, tab)
}

func wantCode(t *testing.T, err error, code diag.Code) *diag.Error {
	t.Helper()
	de, ok := diag.AsError(err)
	if !ok {
		t.Fatalf("expected %s, got %v", code.ID(), err)
	}
	if de.Code != code {
		t.Fatalf("expected %s, got %s: %s", code.ID(), de.Code.ID(), de.Msg)
	}
	return de
}

func TestRedefinitionInSameScope(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Var("x", b.Type("int"), ast.NoNodeID),
		b.Var("x", b.Type("int"), ast.NoNodeID),
	))
	_, err := bindTree(b)
	de := wantCode(t, err, diag.StrRedefined)
	if de.Msg != "x redefined" {
		t.Fatalf("message %q", de.Msg)
	}
}

func TestShadowingAcrossScopesIsLegal(t *testing.T) {
	b := ast.NewBuilder("")
	inner := b.Var("x", b.Type("string"), ast.NoNodeID)
	use := b.Name("x")
	b.Program(b.Module("m",
		b.Var("x", b.Type("int"), ast.NoNodeID),
		b.Block(inner, b.Assign(use, b.Str("hi"))),
	))
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if tab.VarOf(use) != tab.VarOf(inner) {
		t.Fatalf("use must bind to the innermost x")
	}
}

func TestUndefinedNameAndType(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m", b.Assign(b.Name("nope"), b.Int(1))))
	_, err := bindTree(b)
	de := wantCode(t, err, diag.LkpUndefined)
	if de.Msg != "undefined nope" || de.Tok.Pos.Line == 0 {
		t.Fatalf("unexpected error %v", de)
	}

	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("p", b.Type("Point"), ast.NoNodeID)))
	_, err = bindTree(b)
	if wantCode(t, err, diag.LkpUndefinedType).Msg != "undefined type Point" {
		t.Fatalf("unexpected message")
	}
}

func TestTypeSyntaxEvaluation(t *testing.T) {
	b := ast.NewBuilder("")
	v := b.Var("table", b.Of("array", "dir", "string"), ast.NoNodeID)
	b.Program(b.Module("m", v))
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	got := tab.Format(tab.Var(tab.VarOf(v)).Type)
	if got != "array of dir of string" {
		t.Fatalf("type = %q", got)
	}
	b = ast.NewBuilder("")
	b.Program(b.Module("m", b.Var("bad", b.Of("int", "string"), ast.NoNodeID)))
	_, err = bindTree(b)
	wantCode(t, err, diag.TypNotCollection)
}

func TestFunctionPointerType(t *testing.T) {
	b := ast.NewBuilder("")
	fp := b.FuncType(ast.FnFlow, b.Formals(b.Var("a", b.Type("int"), ast.NoNodeID)), b.Formals(b.Var("r", b.Type("int"), ast.NoNodeID)))
	v := b.Var("f", fp, ast.NoNodeID)
	b.Program(b.Module("m", v))
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	typ := tab.Var(tab.VarOf(v)).Type
	if typ.Base != tab.Universe.Builtins().FlowPtr {
		t.Fatalf("base = %s", tab.Universe.Name(typ.Base))
	}
	if _, declared := tab.Scope(tab.Modules["m"]).Vars["a"]; declared {
		t.Fatalf("function-pointer formals must not be declared")
	}
}

func TestInheritanceCycleRejectedBeforeFields(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Class("B", b.Type("A"), b.Var("fb", b.Type("int"), ast.NoNodeID)),
		b.Class("A", b.Type("B"), b.Var("fa", b.Type("int"), ast.NoNodeID)),
	))
	tab, err := bindTree(b)
	de := wantCode(t, err, diag.StrInheritCycle)
	if de.Msg != "class A inherits from itself" {
		t.Fatalf("message %q", de.Msg)
	}
	for _, sc := range tab.Scopes.Data() {
		if sc.Kind == ScopeClass && len(sc.Vars) != 0 {
			t.Fatalf("fields were added before the cycle check")
		}
	}
}

func TestTransitiveInheritanceCycle(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Class("A", b.Type("C")),
		b.Class("B", b.Type("A")),
		b.Class("C", b.Type("B")),
	))
	_, err := bindTree(b)
	wantCode(t, err, diag.StrInheritCycle)
}

func TestMethodSelfParentAndClassFallback(t *testing.T) {
	b := ast.NewBuilder("")
	inherited := b.Name("base")
	self := b.Name("self")
	parent := b.Name("parent")
	body := b.Block(
		b.Assign(inherited, b.Int(1)),
		b.Assign(b.Dot(self, "own"), b.Int(2)),
		b.Assign(b.Dot(parent, "base"), b.Int(3)),
	)
	method := b.Func(ast.FnTo, "init", ast.NoNodeID, ast.NoNodeID, body)
	b.Program(b.Module("m",
		b.Class("A", ast.NoNodeID, b.Var("base", b.Type("int"), ast.NoNodeID)),
		b.Class("B", b.Type("A"), b.Var("own", b.Type("int"), ast.NoNodeID), method),
	))
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if v := tab.Var(tab.VarOf(inherited)); v.Kind != VarField || v.Name != "base" {
		t.Fatalf("inherited field not found through class fallback")
	}
	if tab.Var(tab.VarOf(self)).Kind != VarSelf || tab.Var(tab.VarOf(parent)).Kind != VarParent {
		t.Fatalf("self/parent not synthesized")
	}
	fnScope := tab.Scope(b.T.Get(method).Scope)
	if tab.Scope(fnScope.Parent).Kind != ScopeSelf {
		t.Fatalf("method scope must hang under the self scope")
	}
	bt := tab.Universe.Get(tab.Var(tab.VarOf(self)).Type.Base)
	if !bt.HasInit || len(bt.Methods) != 1 {
		t.Fatalf("init method not recorded")
	}
}

func TestIncludeCopiesExportedSymbolsOnly(t *testing.T) {
	b := ast.NewBuilder("")
	pub := b.With(b.Var("shared", b.Type("int"), ast.NoNodeID), func(a *ast.Attrs) { a.Access = ast.AccessReadable })
	priv := b.Var("secret", b.Type("int"), ast.NoNodeID)
	use := b.Name("shared")
	b.Program(
		b.Module("lib", pub, priv),
		b.Module("app", b.Include("lib"), b.Var("y", b.Type("int"), use)),
	)
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if tab.VarOf(use) != tab.VarOf(pub) {
		t.Fatalf("imported var not bound")
	}
	if _, ok := tab.Scope(tab.Modules["app"]).Vars["secret"]; ok {
		t.Fatalf("private var was imported")
	}
}

func TestPrivateAcrossModules(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(
		b.Module("lib", b.Var("secret", b.Type("int"), ast.NoNodeID)),
		b.Module("app", b.Var("y", b.Type("int"), b.Dot(b.Name("lib"), "secret"))),
	)
	_, err := bindTree(b)
	if wantCode(t, err, diag.LkpPrivate).Msg != "secret is private to module lib" {
		t.Fatalf("unexpected message")
	}

	b = ast.NewBuilder("")
	b.Program(
		b.Module("lib", b.Class("Hidden", ast.NoNodeID)),
		b.Module("app", b.Var("h", b.TypeDot("lib", "Hidden"), ast.NoNodeID)),
	)
	_, err = bindTree(b)
	wantCode(t, err, diag.LkpPrivate)
}

func TestReadableIsVisibleAbroad(t *testing.T) {
	b := ast.NewBuilder("")
	r := b.With(b.Var("limit", b.Type("int"), ast.NoNodeID), func(a *ast.Attrs) { a.Access = ast.AccessReadable })
	dot := b.Dot(b.Name("lib"), "limit")
	b.Program(
		b.Module("lib", r),
		b.Module("app", b.Var("y", b.Type("int"), dot)),
	)
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if tab.VarOf(dot) != tab.VarOf(r) {
		t.Fatalf("readable member not bound")
	}
}

func TestModuleQualifiedMember(t *testing.T) {
	b := ast.NewBuilder("")
	shared := b.With(b.Var("count", b.Type("int"), ast.NoNodeID), func(a *ast.Attrs) { a.Access = ast.AccessWritable })
	dot := b.Dot(b.Name("lib"), "count")
	b.Program(
		b.Module("lib", shared),
		b.Module("app", b.Assign(dot, b.Int(1))),
	)
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if tab.VarOf(dot) != tab.VarOf(shared) {
		t.Fatalf("module member not bound")
	}
}

func TestUnknownInclude(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("app", b.Include("ghost")))
	_, err := bindTree(b)
	wantCode(t, err, diag.LkpUnknownModule)
}

func TestScopeListCoversAllScopedNodes(t *testing.T) {
	b := ast.NewBuilder("")
	b.Program(b.Module("m",
		b.Func(ast.FnFlow, "f", ast.NoNodeID, ast.NoNodeID, b.Block(
			b.Para(ast.ParaDo, b.Var("el", ast.NoNodeID, ast.NoNodeID), b.Name("f"), b.Block()),
		)),
	))
	tab, err := bindTree(b)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	kinds := map[ScopeKind]int{}
	for _, sc := range tab.Scopes.Data() {
		kinds[sc.Kind]++
	}
	if kinds[ScopeRoot] != 1 || kinds[ScopeModule] != 1 || kinds[ScopeFunction] != 1 || kinds[ScopePara] != 1 || kinds[ScopeBlock] != 2 {
		t.Fatalf("unexpected scope census %v", kinds)
	}
}

func TestTaintIsOneWay(t *testing.T) {
	v := &Var{Name: "x", Type: types.New(1)}
	if v.Taint() != Clean {
		t.Fatalf("new vars start clean")
	}
	if !v.MarkTainted() || v.MarkTainted() {
		t.Fatalf("taint transition must happen exactly once")
	}
	if v.Taint() != Tainted {
		t.Fatalf("taint lost")
	}
}
