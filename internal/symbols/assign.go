package symbols

import (
	"paraflow/internal/ast"
)

// AssignScopes allocates a scope for every scoped node, the way the parser
// does it: one per module, compound, function, class, loop, para and try.
// Each node's Scope field is filled in.
func AssignScopes(tree *ast.Tree, t *Table) {
	var walk func(id ast.NodeID, cur ast.ScopeID)
	walk = func(id ast.NodeID, cur ast.ScopeID) {
		n := tree.Get(id)
		if n == nil {
			return
		}
		if n.Kind.IsScoped() && !n.Scope.IsValid() {
			kind, name := scopeKindOf(n.Kind), n.Tok.Text
			sc := t.NewScope(cur, kind, id)
			if kind == ScopeModule {
				t.Scope(sc).Module = name
				t.Modules[name] = sc
			}
			tree.Get(id).Scope = sc
			cur = sc
		} else if n.Scope.IsValid() {
			cur = n.Scope
		}
		for i := 0; i < len(tree.Children(id)); i++ {
			walk(tree.Child(id, i), cur)
		}
	}
	walk(tree.Root, t.Root)
}

func scopeKindOf(k ast.Kind) ScopeKind {
	switch k {
	case ast.KindModule:
		return ScopeModule
	case ast.KindFuncDec:
		return ScopeFunction
	case ast.KindClass:
		return ScopeClass
	case ast.KindPara:
		return ScopePara
	default:
		return ScopeBlock
	}
}
