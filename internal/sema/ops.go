package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/types"
)

// checkBinary types an operator node. Mismatched operands are widened to
// the larger kind; comparisons yield bit; "+" over strings becomes a
// flattened concatenation.
func (tc *typeChecker) checkBinary(id ast.NodeID) (ast.NodeID, *types.Type, error) {
	n := tc.node(id)
	op, tok := n.Kind, n.Tok
	left, lt, err := tc.checkExpr(tc.tree.Child(id, 0))
	if err != nil {
		return id, nil, err
	}
	right, rt, err := tc.checkExpr(tc.tree.Child(id, 1))
	if err != nil {
		return id, nil, err
	}

	bit := types.New(tc.bi.Bit)
	if op.IsLogical() {
		if _, err := tc.coerce(left, bit); err != nil {
			return id, nil, err
		}
		if _, err := tc.coerce(right, bit); err != nil {
			return id, nil, err
		}
		tc.setType(id, bit)
		return id, bit, nil
	}

	common, err := tc.unify(tok, op, left, right, lt, rt)
	if err != nil {
		return id, nil, err
	}
	if !tc.operandOK(op, tc.kind(common)) {
		return id, nil, diag.Errorf(diag.TypBadOperand, tok, "can't apply %s to %s", op, tc.format(common))
	}
	result := common
	if op.IsComparison() {
		result = bit
	}
	tc.setType(id, result)
	if op == ast.KindPlus && tc.kind(common).IsString() {
		cat := tc.flattenCat(id, result)
		return cat, result, nil
	}
	return id, result, nil
}

// unify coerces both operands to one type and returns it.
func (tc *typeChecker) unify(tok source.Token, op ast.Kind, left, right ast.NodeID, lt, rt *types.Type) (*types.Type, error) {
	lk, rk := tc.kind(lt), tc.kind(rt)
	switch {
	case types.Equal(lt, rt):
		return bare(lt), nil
	case lk == types.BaseNil:
		_, err := tc.coerce(left, rt)
		return bare(rt), err
	case rk == types.BaseNil:
		_, err := tc.coerce(right, lt)
		return bare(lt), err
	case lk == types.BaseVar || rk == types.BaseVar:
		return nil, diag.Errorf(diag.TypAmbiguousVar, tok, "ambiguous var operand: %s %s %s", tc.format(lt), op, tc.format(rt))
	case (op == ast.KindSame || op == ast.KindNotSame) && lk == types.BaseClass && rk == types.BaseClass:
		return tc.unifyClasses(tok, left, right, lt, rt)
	}
	lr, rr := opRank(lk), opRank(rk)
	if lr < 0 || rr < 0 {
		return nil, diag.Errorf(diag.TypBadOperand, tok, "can't apply %s to %s and %s", op, tc.format(lt), tc.format(rt))
	}
	wider := lt
	if rr > lr {
		wider = rt
	}
	license := op == ast.KindPlus && tc.kind(wider).IsString()
	if _, err := tc.coerceOne(left, wider, license); err != nil {
		return nil, err
	}
	if _, err := tc.coerceOne(right, wider, license); err != nil {
		return nil, err
	}
	return bare(wider), nil
}

// unifyClasses compares two class values through their nearest common
// type: the operand whose class is an ancestor of the other's.
func (tc *typeChecker) unifyClasses(tok source.Token, left, right ast.NodeID, lt, rt *types.Type) (*types.Type, error) {
	switch {
	case tc.u.IsAncestor(lt.Base, rt.Base):
		_, err := tc.coerce(left, rt)
		return bare(rt), err
	case tc.u.IsAncestor(rt.Base, lt.Base):
		_, err := tc.coerce(right, lt)
		return bare(lt), err
	}
	return nil, tc.mismatch(tok, lt, rt)
}

// opRank is Rank with dynamic strings ranked as strings.
func opRank(k types.BaseKind) int {
	if k == types.BaseDynString {
		return types.Rank(types.BaseString)
	}
	return types.Rank(k)
}

// operandOK reports whether op applies to operands of kind k.
func (tc *typeChecker) operandOK(op ast.Kind, k types.BaseKind) bool {
	switch op {
	case ast.KindSame, ast.KindNotSame:
		return true
	case ast.KindPlus, ast.KindLess, ast.KindLessEq, ast.KindGreater, ast.KindGreaterEq:
		return types.IsNumeric(k) || k.IsString()
	case ast.KindMinus, ast.KindMul, ast.KindDiv:
		return types.IsNumeric(k)
	case ast.KindMod, ast.KindShiftLeft, ast.KindShiftRight, ast.KindBitAnd, ast.KindBitOr, ast.KindBitXor:
		return types.IsInteger(k)
	}
	return false
}

// flattenCat replaces a string "+" with one n-ary concatenation, merging
// operands that are concatenations themselves.
func (tc *typeChecker) flattenCat(id ast.NodeID, t *types.Type) ast.NodeID {
	var parts []ast.NodeID
	for _, c := range tc.tree.Children(id) {
		if tc.tree.Kind(c) == ast.KindStringCat {
			parts = append(parts, tc.tree.Children(c)...)
			continue
		}
		parts = append(parts, c)
	}
	cat := tc.tree.New(ast.KindStringCat, tc.node(id).Tok, parts...)
	tc.tree.Replace(id, cat)
	tc.setType(cat, t)
	tc.coerced++
	return cat
}
