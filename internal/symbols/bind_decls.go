package symbols

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// InitName is the reserved name of a class initializer.
const InitName = "init"

func (b *binder) declareVars() error {
	return b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		switch n.Kind {
		case ast.KindTypeFunc:
			// formals of a function-pointer type declare nothing
			return false, nil
		case ast.KindModule:
			return true, b.declareModule(id, n)
		case ast.KindVarDec:
			return true, b.declareVar(id, n)
		case ast.KindFuncDec:
			return true, b.declareFunc(id, n)
		}
		return true, nil
	})
}

func (b *binder) declareModule(id ast.NodeID, n *ast.Node) error {
	v, err := b.t.AddVar(b.t.Root, n.Tok, types.New(b.t.Universe.Builtins().Module))
	if err != nil {
		return err
	}
	mv := b.t.Var(v)
	mv.Kind = VarModule
	mv.Module = n.Tok.Text
	mv.Access = ast.AccessGlobal
	mv.Const = true
	mv.Decl = id
	b.t.SetVar(id, v)
	return nil
}

func (b *binder) declareVar(id ast.NodeID, n *ast.Node) error {
	scope := b.scopeOf(id)
	typ := b.t.TypeOf(id)
	if typ == nil {
		if tyNode := b.tree.Child(id, 0); b.tree.Kind(tyNode) != ast.KindNop {
			typ = b.t.TypeOf(tyNode).Clone()
			b.t.SetType(id, typ)
		}
	}
	v, err := b.t.AddVar(scope, n.Tok, typ)
	if err != nil {
		return err
	}
	vr := b.t.Var(v)
	vr.Access = n.Attrs.Access
	vr.Const = n.Attrs.Const
	vr.Decl = id
	if b.t.Scope(scope).Kind == ScopeClass {
		vr.Kind = VarField
	}
	b.t.SetVar(id, v)
	return nil
}

func (b *binder) declareFunc(id ast.NodeID, n *ast.Node) error {
	u := b.t.Universe
	bi := u.Builtins()
	outer := b.outerScope(id)
	class := types.NoBaseID
	if sc := b.t.Scope(outer); sc.Kind == ScopeClass {
		class = sc.Class
	}

	base := bi.To
	switch {
	case class.IsValid() && n.Attrs.Polymorphic:
		base = bi.Method
	case n.Attrs.Fn == ast.FnFlow:
		base = bi.Flow
	}
	in := b.t.TypeOf(b.tree.Child(id, 0))
	out := b.t.TypeOf(b.tree.Child(id, 1))
	if in == nil || out == nil {
		return diag.Errorf(diag.StrBadShape, n.Tok, "function %s has malformed formals", n.Tok.Text)
	}
	fnType := types.New(base, in.Clone(), out.Clone())
	fnType.Access = n.Attrs.Access
	b.t.SetType(id, fnType)

	v, err := b.t.AddVar(outer, n.Tok, fnType.Clone())
	if err != nil {
		return err
	}
	fv := b.t.Var(v)
	fv.Kind = VarFunction
	fv.Access = n.Attrs.Access
	fv.Const = true
	fv.Decl = id
	b.t.SetVar(id, v)
	if !class.IsValid() {
		return nil
	}

	fv.Kind = VarMethod
	bt := u.Get(class)
	bt.Methods = append(bt.Methods, types.Method{
		Name:        n.Tok.Text,
		Type:        fnType.Clone(),
		Polymorphic: n.Attrs.Polymorphic,
		Decl:        id,
	})
	if n.Tok.Text == InitName {
		bt.HasInit = true
	}
	return b.addSelfScope(id, n, outer, class)
}

// addSelfScope puts a scope holding self (and parent, for derived classes)
// between the class scope and the method scope.
func (b *binder) addSelfScope(id ast.NodeID, n *ast.Node, classScope ast.ScopeID, class types.BaseID) error {
	selfScope := b.t.NewScope(classScope, ScopeSelf, id)
	v, err := b.t.AddVar(selfScope, n.Tok.Synth("self"), types.New(class))
	if err != nil {
		return err
	}
	sv := b.t.Var(v)
	sv.Kind = VarSelf
	sv.Const = true
	sv.Decl = id
	if parent := b.t.Universe.Get(class).Parent; parent.IsValid() {
		v, err := b.t.AddVar(selfScope, n.Tok.Synth("parent"), types.New(parent))
		if err != nil {
			return err
		}
		pv := b.t.Var(v)
		pv.Kind = VarParent
		pv.Const = true
		pv.Decl = id
	}
	b.t.reparent(n.Scope, selfScope)
	return nil
}
