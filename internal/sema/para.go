package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// checkPara types a para construct by its action:
//
//	do        statement body, no value
//	get       array of the body's values
//	filter    the collection's own type, body is a bit
//	+ * min max  reduction to the body's type
func (tc *typeChecker) checkPara(id ast.NodeID) (*types.Type, error) {
	if err := tc.bindElement(id); err != nil {
		return nil, err
	}
	n := tc.node(id)
	action, tok := n.Attrs.Para, n.Tok
	body := tc.tree.Child(id, 2)
	if action == ast.ParaDo {
		if err := tc.checkStmt(body); err != nil {
			return nil, err
		}
		t := tc.void()
		tc.setType(id, t)
		return t, nil
	}

	body, bt, err := tc.checkExpr(body)
	if err != nil {
		return nil, err
	}
	k := tc.kind(bt)
	if k == types.BaseVoid || k == types.BaseTuple {
		return nil, diag.Errorf(diag.TypExpectSingle, tok, "para %s needs a single value per element, got %s", action, tc.format(bt))
	}
	var t *types.Type
	switch action {
	case ast.ParaGet:
		t = types.New(tc.bi.Array, bare(bt))
	case ast.ParaFilter:
		if _, err := tc.coerce(body, types.New(tc.bi.Bit)); err != nil {
			return nil, err
		}
		t = bare(tc.typeOf(tc.tree.Child(id, 1)))
	case ast.ParaAdd:
		if !types.IsNumeric(k) && !k.IsString() {
			return nil, diag.Errorf(diag.TypBadOperand, tok, "can't reduce %s with +", tc.format(bt))
		}
		t = bare(bt)
	default:
		if !types.IsNumeric(k) {
			return nil, diag.Errorf(diag.TypBadOperand, tok, "can't reduce %s with %s", tc.format(bt), action)
		}
		t = bare(bt)
	}
	tc.setType(id, t)
	return t, nil
}
