package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// coerceCollection coerces each element of a tuple to the collection's
// element type. Dir elements must be "key: value" pairs.
func (tc *typeChecker) coerceCollection(id ast.NodeID, dest *types.Type) (ast.NodeID, error) {
	elem := dest.Elem()
	if elem == nil {
		return id, diag.Errorf(diag.StrBadShape, tc.node(id).Tok, "%s has no element type", tc.format(dest))
	}
	isDir := tc.kind(dest) == types.BaseDir
	for i := 0; i < len(tc.tree.Children(id)); i++ {
		el := tc.tree.Child(id, i)
		en := tc.node(el)
		switch {
		case en.Kind == ast.KindKeyVal && isDir:
			en.Lit = ast.Literal{Kind: ast.LitString, Str: en.Tok.Text}
			if _, err := tc.coerce(tc.tree.Child(el, 0), elem); err != nil {
				return id, err
			}
			tc.setType(el, elem.Named(en.Tok.Text))
		case en.Kind == ast.KindKeyVal:
			return id, diag.Errorf(diag.StrBadShape, en.Tok, "%s elements can't be named", tc.format(dest))
		case isDir:
			return id, diag.Errorf(diag.StrBadShape, en.Tok, "dir elements must be key: value pairs")
		default:
			if _, err := tc.coerce(el, elem); err != nil {
				return id, err
			}
		}
	}
	tc.setType(id, bare(dest))
	return id, nil
}

// construct builds a class value from a tuple. Without an initializer the
// tuple fills the fields; with one, the allocation carries a zero tuple for
// every field and the coerced initializer arguments.
func (tc *typeChecker) construct(id ast.NodeID, dest *types.Type) (ast.NodeID, error) {
	tok := tc.node(id).Tok
	if err := tc.bless(dest.Base); err != nil {
		return id, err
	}
	bt := tc.u.Get(dest.Base)
	if bt.IsInterface {
		return id, diag.Errorf(diag.StrBadShape, tok, "can't construct interface %s", tc.format(dest))
	}
	fields := types.New(tc.bi.Tuple)
	for _, f := range bt.Fields {
		fields.Children = append(fields.Children, f.Clone())
	}

	if !bt.HasInit {
		if _, err := tc.coerceTuple(id, fields); err != nil {
			return id, err
		}
		alloc := tc.tree.Wrap(id, ast.KindClassAlloc, tok)
		tc.setType(alloc, bare(dest))
		tc.coerced++
		return alloc, nil
	}

	ctor, ok := tc.tab.FindMember(dest.Base, symbols.InitName)
	if !ok {
		return id, diag.Errorf(diag.StrBadShape, tok, "%s has no initializer", tc.format(dest))
	}
	if _, err := tc.coerceTuple(id, tc.tab.Var(ctor).Type.Inputs()); err != nil {
		return id, err
	}
	alloc := tc.tree.Wrap(id, ast.KindClassAlloc, tok)
	zero, err := tc.zeroTuple(tok, fields)
	if err != nil {
		return id, err
	}
	tc.tree.SetChildren(alloc, []ast.NodeID{zero, id})
	tc.setType(alloc, bare(dest))
	tc.coerced++
	return alloc, nil
}

// zeroTuple holds the starting value of every field: its default when one
// is declared, a zero literal otherwise.
func (tc *typeChecker) zeroTuple(tok source.Token, fields *types.Type) (ast.NodeID, error) {
	zero := tc.tree.New(ast.KindTuple, tok)
	for _, f := range fields.Children {
		var val ast.NodeID
		if f.Default.IsValid() {
			def, err := tc.copyDefault(f.Default)
			if err != nil {
				return zero, err
			}
			val = def
		} else {
			val = tc.zeroLit(tok, f)
		}
		tc.tree.AppendChild(zero, val)
		if _, err := tc.coerce(val, f); err != nil {
			return zero, err
		}
	}
	tc.setType(zero, fields.Clone())
	return zero, nil
}

func (tc *typeChecker) zeroLit(tok source.Token, f *types.Type) ast.NodeID {
	var l ast.Literal
	switch k := tc.kind(f); {
	case k == types.BaseBit:
		l = ast.Literal{Kind: ast.LitBit}
	case k == types.BaseChar:
		l = ast.Literal{Kind: ast.LitChar}
	case types.IsFloat(k):
		l = ast.Literal{Kind: ast.LitFloat}
	case types.IsInteger(k):
		l = ast.Literal{Kind: ast.LitInt}
	case k == types.BaseString:
		l = ast.Literal{Kind: ast.LitString}
	default:
		l = ast.Literal{Kind: ast.LitNil}
	}
	lit := tc.tree.New(ast.KindLit, tok.Synth(l.String()))
	tc.node(lit).Lit = l
	tc.setType(lit, bare(f))
	return lit
}
