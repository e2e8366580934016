package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// checkAssign handles "=" and the compound assignments.
func (tc *typeChecker) checkAssign(id ast.NodeID) (*types.Type, error) {
	n := tc.node(id)
	op, tok := n.Kind, n.Tok
	lval, lt, err := tc.checkExpr(tc.tree.Child(id, 0))
	if err != nil {
		return nil, err
	}
	if err := tc.writable(lval); err != nil {
		return nil, err
	}
	rval, _, err := tc.checkExpr(tc.tree.Child(id, 1))
	if err != nil {
		return nil, err
	}
	if op == ast.KindAssign {
		if _, err := tc.coerce(rval, lt); err != nil {
			return nil, err
		}
		return tc.void(), nil
	}
	bin := op.BinaryOf()
	lk := tc.kind(lt)
	if !tc.operandOK(bin, lk) {
		return nil, diag.Errorf(diag.TypBadOperand, tok, "can't apply %s to %s", op, tc.format(lt))
	}
	license := bin == ast.KindPlus && lk.IsString()
	if _, err := tc.coerceOne(rval, lt, license); err != nil {
		return nil, err
	}
	return tc.void(), nil
}

// writable checks that an already typed expression may be assigned to.
func (tc *typeChecker) writable(id ast.NodeID) error {
	n := tc.node(id)
	switch n.Kind {
	case ast.KindNameUse:
		return tc.writableVar(id, tc.varOf(id))
	case ast.KindDot:
		if v := tc.varOf(id); v != nil {
			return tc.writableVar(id, v)
		}
	case ast.KindIndex:
		coll := tc.tree.Child(id, 0)
		if tc.kind(tc.typeOf(coll)).IsString() {
			return diag.Errorf(diag.StrNotWritable, n.Tok, "string characters are not writable")
		}
		return tc.writable(coll)
	case ast.KindTuple:
		for _, c := range tc.tree.Children(id) {
			if tc.tree.Kind(c) == ast.KindKeyVal {
				c = tc.tree.Child(c, 0)
			}
			if err := tc.writable(c); err != nil {
				return err
			}
		}
		return nil
	}
	return diag.Errorf(diag.StrNotWritable, n.Tok, "%s is not writable", n.Kind)
}

func (tc *typeChecker) writableVar(id ast.NodeID, v *symbols.Var) error {
	tok := tc.node(id).Tok
	if v == nil {
		return diag.Errorf(diag.StrNotWritable, tok, "%s is not writable", tok.Text)
	}
	switch v.Kind {
	case symbols.VarFunction, symbols.VarMethod, symbols.VarModule, symbols.VarSelf, symbols.VarParent:
		return diag.Errorf(diag.StrNotWritable, tok, "%s is not writable", v.Name)
	}
	if v.Const {
		return diag.Errorf(diag.StrNotWritable, tok, "%s is constant", v.Name)
	}
	if here := tc.moduleOf(id); v.Module != "" && v.Module != here && !v.Access.WritableAbroad() {
		return diag.Errorf(diag.StrNotWritable, tok, "%s is not writable from module %s", v.Name, here)
	}
	return nil
}
