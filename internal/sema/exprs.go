package sema

import (
	"fortio.org/safecast"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// checkExpr types the expression at id. Some expressions are rebuilt
// (new, string concatenation), so the node now occupying id's slot is
// returned together with its type.
func (tc *typeChecker) checkExpr(id ast.NodeID) (ast.NodeID, *types.Type, error) {
	n := tc.node(id)
	if n == nil {
		return id, nil, diag.Errorf(diag.StrBadShape, tc.node(tc.tree.Root).Tok, "missing expression")
	}
	var (
		t   *types.Type
		err error
	)
	switch k := n.Kind; {
	case k == ast.KindLit:
		t = tc.litType(n.Lit)
	case k == ast.KindNameUse:
		t, err = tc.checkName(id)
	case k == ast.KindTuple:
		t, err = tc.checkTuple(id)
	case k == ast.KindKeyVal:
		var val ast.NodeID
		val, t, err = tc.checkExpr(tc.tree.Child(id, 0))
		if err == nil {
			t = tc.typeOf(val).Named(n.Tok.Text)
		}
	case k == ast.KindDot:
		t, err = tc.checkDot(id)
	case k == ast.KindIndex:
		t, err = tc.checkIndex(id)
	case k == ast.KindCall:
		return tc.checkCall(id)
	case k == ast.KindNew:
		return tc.checkNew(id)
	case k == ast.KindPara:
		t, err = tc.checkPara(id)
	case k.IsAssign():
		t, err = tc.checkAssign(id)
	case k.IsBinary():
		return tc.checkBinary(id)
	case k.IsUnary():
		t, err = tc.checkUnary(id)
	case k == ast.KindCast, k == ast.KindStringCat, k == ast.KindClassAlloc:
		t = tc.typeOf(id)
		if t == nil {
			err = diag.Errorf(diag.StrBadShape, n.Tok, "%s node without a type", k)
		}
	default:
		err = diag.Errorf(diag.StrBadShape, n.Tok, "%s is not an expression", k)
	}
	if err != nil {
		return id, nil, err
	}
	tc.setType(id, t)
	return id, t, nil
}

// bare strips slot metadata so a value type does not carry a formal's name.
func bare(t *types.Type) *types.Type {
	c := t.Clone()
	if c == nil {
		return nil
	}
	c.Name = ""
	c.Ref = false
	c.Default = ast.NoNodeID
	c.Dim = ast.NoNodeID
	return c
}

// litType picks the default type of a literal: int unless the value needs a
// long, double for every float.
func (tc *typeChecker) litType(l ast.Literal) *types.Type {
	switch l.Kind {
	case ast.LitInt:
		if _, err := safecast.Conv[int32](l.Int); err != nil {
			return types.New(tc.bi.Long)
		}
		return types.New(tc.bi.Int)
	case ast.LitFloat:
		return types.New(tc.bi.Double)
	case ast.LitString:
		return types.New(tc.bi.String)
	case ast.LitChar:
		return types.New(tc.bi.Char)
	case ast.LitBit:
		return types.New(tc.bi.Bit)
	default:
		return types.New(tc.bi.Nil)
	}
}

func (tc *typeChecker) checkName(id ast.NodeID) (*types.Type, error) {
	n := tc.node(id)
	v := tc.varOf(id)
	if v == nil {
		return nil, diag.Errorf(diag.LkpUndefined, n.Tok, "undefined %s", n.Tok.Text)
	}
	if v.Type == nil {
		return nil, diag.Errorf(diag.StrMisplaced, n.Tok, "%s is used before its type is known", n.Tok.Text)
	}
	return bare(v.Type), nil
}

func (tc *typeChecker) checkTuple(id ast.NodeID) (*types.Type, error) {
	t := types.New(tc.bi.Tuple)
	for i := 0; i < len(tc.tree.Children(id)); i++ {
		_, ct, err := tc.checkExpr(tc.tree.Child(id, i))
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, ct.Clone())
	}
	return t, nil
}

// checkDot types a member access. Module members were bound by the binder;
// everything else must be a field or method of a class or interface.
func (tc *typeChecker) checkDot(id ast.NodeID) (*types.Type, error) {
	n := tc.node(id)
	obj := tc.tree.Child(id, 0)
	if v := tc.varOf(id); v != nil {
		if mv := tc.varOf(obj); mv != nil {
			tc.setType(obj, bare(mv.Type))
		}
		if v.Type == nil {
			return nil, diag.Errorf(diag.StrMisplaced, n.Tok, "%s is used before its type is known", n.Tok.Text)
		}
		return bare(v.Type), nil
	}
	_, ot, err := tc.checkExpr(obj)
	if err != nil {
		return nil, err
	}
	bt := tc.u.Get(ot.Base)
	if bt == nil || !(bt.IsClass || bt.IsInterface) {
		return nil, diag.Errorf(diag.LkpUnknownMember, n.Tok, "%s has no member %s", tc.format(ot), n.Tok.Text)
	}
	member, ok := tc.tab.FindMember(ot.Base, n.Tok.Text)
	if !ok {
		return nil, diag.Errorf(diag.LkpUnknownMember, n.Tok, "%s has no member %s", tc.format(ot), n.Tok.Text)
	}
	tc.tab.SetVar(id, member)
	mt := tc.tab.Var(member).Type
	if mt == nil {
		return nil, diag.Errorf(diag.StrMisplaced, n.Tok, "%s is used before its type is known", n.Tok.Text)
	}
	return bare(mt), nil
}

// checkIndex coerces the index to the collection's key type and yields the
// element type (char for strings).
func (tc *typeChecker) checkIndex(id ast.NodeID) (*types.Type, error) {
	_, ct, err := tc.checkExpr(tc.tree.Child(id, 0))
	if err != nil {
		return nil, err
	}
	idx, _, err := tc.checkExpr(tc.tree.Child(id, 1))
	if err != nil {
		return nil, err
	}
	bt := tc.u.Get(ct.Base)
	elem := tc.elemOf(ct)
	if bt == nil || !bt.KeyBase.IsValid() || elem == nil {
		return nil, diag.Errorf(diag.TypNotIndexable, tc.node(id).Tok, "%s is not indexable", tc.format(ct))
	}
	if _, err := tc.coerce(idx, types.New(bt.KeyBase)); err != nil {
		return nil, err
	}
	return bare(elem), nil
}

// checkNew builds the value described by "new T(args)" and puts the result
// in the new expression's place.
func (tc *typeChecker) checkNew(id ast.NodeID) (ast.NodeID, *types.Type, error) {
	typ := tc.typeOf(tc.tree.Child(id, 0))
	if typ == nil {
		return id, nil, diag.Errorf(diag.StrBadShape, tc.node(id).Tok, "new without a type")
	}
	args, _, err := tc.checkExpr(tc.tree.Child(id, 1))
	if err != nil {
		return id, nil, err
	}
	built, err := tc.coerce(args, typ)
	if err != nil {
		return id, nil, err
	}
	tc.tree.Replace(id, built)
	tc.coerced++
	return built, tc.typeOf(built), nil
}

func (tc *typeChecker) checkUnary(id ast.NodeID) (*types.Type, error) {
	n := tc.node(id)
	op, tok := n.Kind, n.Tok
	operand, ot, err := tc.checkExpr(tc.tree.Child(id, 0))
	if err != nil {
		return nil, err
	}
	k := tc.kind(ot)
	switch op {
	case ast.KindNot:
		bit := types.New(tc.bi.Bit)
		if _, err := tc.coerce(operand, bit); err != nil {
			return nil, err
		}
		return bit, nil
	case ast.KindNegate:
		if !types.IsNumeric(k) || k == types.BaseBit {
			return nil, diag.Errorf(diag.TypBadOperand, tok, "can't negate %s", tc.format(ot))
		}
	case ast.KindFlipBits:
		if !types.IsInteger(k) {
			return nil, diag.Errorf(diag.TypBadOperand, tok, "can't flip bits of %s", tc.format(ot))
		}
	}
	return bare(ot), nil
}
