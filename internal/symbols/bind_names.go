package symbols

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
)

func (b *binder) resolveNames() error {
	return b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		switch n.Kind {
		case ast.KindTypeDot, ast.KindTypeFunc:
			return false, nil
		case ast.KindDot:
			handled, err := b.resolveModuleMember(id, n)
			return !handled, err
		case ast.KindNameUse:
			return false, b.resolveName(id, n)
		}
		return true, nil
	})
}

func (b *binder) resolveName(id ast.NodeID, n *ast.Node) error {
	scope := b.scopeOf(id)
	v, ok := b.t.FindVar(scope, n.Tok.Text)
	if !ok {
		return diag.Errorf(diag.LkpUndefined, n.Tok, "undefined %s", n.Tok.Text)
	}
	if err := b.checkVisible(v, n, scope); err != nil {
		return err
	}
	b.t.SetVar(id, v)
	return nil
}

// resolveModuleMember binds "module.name". It reports false when the object
// is not a module, leaving the dot as a field access for type checking.
func (b *binder) resolveModuleMember(id ast.NodeID, n *ast.Node) (bool, error) {
	obj := b.tree.Child(id, 0)
	on := b.tree.Get(obj)
	if on == nil || on.Kind != ast.KindNameUse {
		return false, nil
	}
	scope := b.scopeOf(id)
	mv, ok := b.t.FindVar(scope, on.Tok.Text)
	if !ok || b.t.Var(mv).Kind != VarModule {
		return false, nil
	}
	modName := b.t.Var(mv).Module
	member, ok := b.t.Scope(b.t.Modules[modName]).Vars[n.Tok.Text]
	if !ok {
		return true, diag.Errorf(diag.LkpUndefined, n.Tok, "undefined %s.%s", modName, n.Tok.Text)
	}
	if err := b.checkVisible(member, n, scope); err != nil {
		return true, err
	}
	b.t.SetVar(obj, mv)
	b.t.SetVar(id, member)
	return true, nil
}

// checkVisible rejects module-private symbols reached from another module.
func (b *binder) checkVisible(v ast.VarID, n *ast.Node, from ast.ScopeID) error {
	vr := b.t.Var(v)
	if vr.Module == "" || vr.Access.Exported() {
		return nil
	}
	if vr.Module != b.t.ModuleOf(from) {
		return diag.Errorf(diag.LkpPrivate, n.Tok, "%s is private to module %s", vr.Name, vr.Module)
	}
	return nil
}
