package symbols

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

func (b *binder) evalTypes() error {
	return b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		if !n.Kind.IsTypeSyntax() {
			return true, nil
		}
		_, err := b.evalType(id, false)
		return false, err
	})
}

// evalType converts type syntax rooted at id into a Type and annotates every
// node of it. outer is true for the collection half of "X of Y".
func (b *binder) evalType(id ast.NodeID, outer bool) (*types.Type, error) {
	n := b.tree.Get(id)
	u := b.t.Universe
	var typ *types.Type
	switch n.Kind {
	case ast.KindTypeName:
		base, ok := b.t.FindType(b.scopeOf(id), n.Tok.Text)
		if !ok {
			return nil, diag.Errorf(diag.LkpUndefinedType, n.Tok, "undefined type %s", n.Tok.Text)
		}
		if u.Get(base).IsCollection && !outer {
			return nil, diag.Errorf(diag.StrBadShape, n.Tok, "%s needs an element type", n.Tok.Text)
		}
		typ = types.New(base)
		if dim := b.tree.Child(id, 0); dim.IsValid() {
			typ.Dim = dim
		}

	case ast.KindTypeOf:
		outerTyp, err := b.evalType(b.tree.Child(id, 0), true)
		if err != nil {
			return nil, err
		}
		if !u.Get(outerTyp.Base).IsCollection {
			tok := b.tree.Get(b.tree.Child(id, 0)).Tok
			return nil, diag.Errorf(diag.TypNotCollection, tok, "%s is not a collection", u.Name(outerTyp.Base))
		}
		inner, err := b.evalType(b.tree.Child(id, 1), false)
		if err != nil {
			return nil, err
		}
		typ = types.New(outerTyp.Base, inner.Clone())
		typ.Dim = outerTyp.Dim

	case ast.KindTypeDot:
		modTok := b.tree.Get(b.tree.Child(id, 0)).Tok
		nameID := b.tree.Child(id, 1)
		nameTok := b.tree.Get(nameID).Tok
		modScope, ok := b.t.Modules[modTok.Text]
		if !ok {
			return nil, diag.Errorf(diag.LkpUnknownModule, modTok, "undefined module %s", modTok.Text)
		}
		base, ok := b.t.Scope(modScope).Types[nameTok.Text]
		if !ok || u.Get(base).Module != modTok.Text {
			return nil, diag.Errorf(diag.LkpUndefinedType, nameTok, "undefined type %s.%s", modTok.Text, nameTok.Text)
		}
		bt := u.Get(base)
		if bt.Module != b.t.ModuleOf(b.scopeOf(id)) && !bt.Access.Exported() {
			return nil, diag.Errorf(diag.LkpPrivate, nameTok, "%s is private to module %s", nameTok.Text, modTok.Text)
		}
		if bt.IsCollection && !outer {
			return nil, diag.Errorf(diag.StrBadShape, nameTok, "%s needs an element type", nameTok.Text)
		}
		typ = types.New(base)
		b.t.SetType(nameID, typ.Clone())

	case ast.KindTypeTuple:
		typ = types.New(u.Builtins().Tuple)
		for _, f := range b.tree.Children(id) {
			formal, err := b.evalFormal(f)
			if err != nil {
				return nil, err
			}
			typ.Children = append(typ.Children, formal)
		}

	case ast.KindTypeFunc:
		in, err := b.evalType(b.tree.Child(id, 0), false)
		if err != nil {
			return nil, err
		}
		out, err := b.evalType(b.tree.Child(id, 1), false)
		if err != nil {
			return nil, err
		}
		base := u.Builtins().ToPtr
		if n.Attrs.Fn == ast.FnFlow {
			base = u.Builtins().FlowPtr
		}
		typ = types.New(base, in, out)

	default:
		return nil, diag.Errorf(diag.StrBadShape, n.Tok, "%s is not a type", n.Kind)
	}
	b.t.SetType(id, typ)
	return typ, nil
}

// evalFormal types one VarDec of a formal list.
func (b *binder) evalFormal(id ast.NodeID) (*types.Type, error) {
	n := b.tree.Get(id)
	if n.Kind != ast.KindVarDec {
		return nil, diag.Errorf(diag.StrBadShape, n.Tok, "expecting a formal parameter, got %s", n.Kind)
	}
	tyNode := b.tree.Child(id, 0)
	if b.tree.Kind(tyNode) == ast.KindNop {
		return nil, diag.Errorf(diag.StrBadShape, n.Tok, "formal %s needs a type", n.Tok.Text)
	}
	declared, err := b.evalType(tyNode, false)
	if err != nil {
		return nil, err
	}
	formal := declared.Named(n.Tok.Text)
	formal.Access = n.Attrs.Access
	formal.Const = n.Attrs.Const
	formal.Ref = n.Attrs.Ref
	formal.Default = b.tree.Child(id, 1)
	b.t.SetType(id, formal.Clone())
	return formal, nil
}
