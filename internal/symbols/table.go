package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/types"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Vars uint }

// Builtin operator names registered in the root scope.
const (
	OpAppend = "append"
	OpPunt   = "punt"
	OpRepunt = "repunt"
)

// Table aggregates the scope and variable arenas of one compilation together
// with the per-node annotations filled by binding and type checking.
type Table struct {
	Scopes   *Scopes
	Vars     *Vars
	Universe *types.Universe
	Root     ast.ScopeID
	// Modules maps a module name to its scope.
	Modules map[string]ast.ScopeID

	nodeType map[ast.NodeID]*types.Type
	nodeVar  map[ast.NodeID]ast.VarID
	nodeBase map[ast.NodeID]types.BaseID
}

// NewTable builds a fresh table whose root scope holds the nameable builtin
// types and the builtin operators.
func NewTable(h Hints, u *types.Universe) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	varCap, err := safecast.Conv[uint32](h.Vars)
	if err != nil {
		panic(fmt.Errorf("var capacity overflow: %w", err))
	}
	if u == nil {
		u = types.NewUniverse()
	}
	t := &Table{
		Scopes:   NewScopes(scopeCap),
		Vars:     NewVars(varCap),
		Universe: u,
		Modules:  make(map[string]ast.ScopeID),
		nodeType: make(map[ast.NodeID]*types.Type),
		nodeVar:  make(map[ast.NodeID]ast.VarID),
		nodeBase: make(map[ast.NodeID]types.BaseID),
	}
	t.Root = t.Scopes.New(ScopeRoot, ast.NoScopeID, ast.NoNodeID)
	root := t.Scopes.Get(t.Root)
	for _, id := range u.Nameable() {
		root.Types[u.Name(id)] = id
	}
	b := u.Builtins()
	for _, op := range []string{OpAppend, OpPunt, OpRepunt} {
		v := t.Vars.New(Var{
			Name:   op,
			Tok:    source.Token{Text: op},
			Scope:  t.Root,
			Type:   types.New(b.Operator),
			Kind:   VarFunction,
			Access: ast.AccessGlobal,
			Const:  true,
		})
		root.Vars[op] = v
		root.Order = append(root.Order, v)
	}
	return t
}

// NewScope registers a scope in the whole-program list.
func (t *Table) NewScope(parent ast.ScopeID, kind ScopeKind, node ast.NodeID) ast.ScopeID {
	if !parent.IsValid() && kind != ScopeRoot {
		parent = t.Root
	}
	return t.Scopes.New(kind, parent, node)
}

func (t *Table) Scope(id ast.ScopeID) *Scope { return t.Scopes.Get(id) }

func (t *Table) Var(id ast.VarID) *Var { return t.Vars.Get(id) }

// AddType creates a new nominal type named name in scope. Shadowing an
// outer or earlier type of the same name is legal.
func (t *Table) AddType(scope ast.ScopeID, name string) types.BaseID {
	sc := t.Scopes.Get(scope)
	id := t.Universe.Add(types.BaseType{Name: name, Module: sc.Module})
	sc.Types[name] = id
	return id
}

// AddVar declares tok.Text in scope. A name already present in that exact
// scope is a redefinition.
func (t *Table) AddVar(scope ast.ScopeID, tok source.Token, typ *types.Type) (ast.VarID, error) {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return ast.NoVarID, diag.Errorf(diag.StrBadShape, tok, "no scope for %s", tok.Text)
	}
	if _, dup := sc.Vars[tok.Text]; dup {
		return ast.NoVarID, diag.Errorf(diag.StrRedefined, tok, "%s redefined", tok.Text)
	}
	id := t.Vars.New(Var{
		Name:   tok.Text,
		Tok:    tok,
		Scope:  scope,
		Type:   typ,
		Module: sc.Module,
	})
	sc = t.Scopes.Get(scope)
	sc.Vars[tok.Text] = id
	sc.Order = append(sc.Order, id)
	return id, nil
}

// FindVar walks outward from scope. At a class scope the fields and methods
// of ancestor classes are searched before moving on.
func (t *Table) FindVar(scope ast.ScopeID, name string) (ast.VarID, bool) {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		if v, ok := sc.Vars[name]; ok {
			return v, true
		}
		if sc.Kind == ScopeClass && sc.Class.IsValid() {
			if v, ok := t.FindMember(t.Universe.Get(sc.Class).Parent, name); ok {
				return v, true
			}
		}
		id = sc.Parent
	}
	return ast.NoVarID, false
}

// FindMember searches a class and its ancestors for a field or method.
func (t *Table) FindMember(class types.BaseID, name string) (ast.VarID, bool) {
	for _, anc := range t.Universe.Ancestors(class) {
		sc := t.Scopes.Get(t.Universe.Get(anc).Scope)
		if sc == nil {
			continue
		}
		if v, ok := sc.Vars[name]; ok {
			return v, true
		}
	}
	return ast.NoVarID, false
}

// FindType walks outward from scope without class fallback.
func (t *Table) FindType(scope ast.ScopeID, name string) (types.BaseID, bool) {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		if b, ok := sc.Types[name]; ok {
			return b, true
		}
		id = sc.Parent
	}
	return types.NoBaseID, false
}

// IsWithin reports whether scope is outer or nested inside it.
func (t *Table) IsWithin(scope, outer ast.ScopeID) bool {
	for id := scope; id.IsValid(); {
		if id == outer {
			return true
		}
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		id = sc.Parent
	}
	return false
}

// ModuleOf returns the module a scope belongs to.
func (t *Table) ModuleOf(scope ast.ScopeID) string {
	if sc := t.Scopes.Get(scope); sc != nil {
		return sc.Module
	}
	return ""
}

// ClassOf returns the nearest enclosing class of scope.
func (t *Table) ClassOf(scope ast.ScopeID) types.BaseID {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		if sc.Kind == ScopeClass {
			return sc.Class
		}
		id = sc.Parent
	}
	return types.NoBaseID
}

// reparent moves scope under a new parent, fixing both child lists.
func (t *Table) reparent(scope, parent ast.ScopeID) {
	sc := t.Scopes.Get(scope)
	if old := t.Scopes.Get(sc.Parent); old != nil {
		for i, c := range old.Children {
			if c == scope {
				old.Children = append(old.Children[:i], old.Children[i+1:]...)
				break
			}
		}
	}
	sc.Parent = parent
	p := t.Scopes.Get(parent)
	p.Children = append(p.Children, scope)
}

// TypeOf returns the type annotated on node, or nil.
func (t *Table) TypeOf(node ast.NodeID) *types.Type { return t.nodeType[node] }

func (t *Table) SetType(node ast.NodeID, typ *types.Type) {
	if typ == nil {
		delete(t.nodeType, node)
		return
	}
	t.nodeType[node] = typ
}

// VarOf returns the variable a declaration or name use is bound to.
func (t *Table) VarOf(node ast.NodeID) ast.VarID { return t.nodeVar[node] }

func (t *Table) SetVar(node ast.NodeID, v ast.VarID) { t.nodeVar[node] = v }

// BaseOf returns the nominal type declared by a class node.
func (t *Table) BaseOf(node ast.NodeID) types.BaseID { return t.nodeBase[node] }

func (t *Table) setBase(node ast.NodeID, b types.BaseID) { t.nodeBase[node] = b }

// Format renders a type for diagnostics.
func (t *Table) Format(typ *types.Type) string { return t.Universe.Format(typ) }
