package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// checkVarDec coerces the initializer to the declared type, or infers the
// type from the initializer when none is declared.
func (tc *typeChecker) checkVarDec(id ast.NodeID) error {
	if tc.done[id] {
		return nil
	}
	tc.done[id] = true
	n := tc.node(id)
	name, tok, isConst := n.Tok.Text, n.Tok, n.Attrs.Const
	v := tc.varOf(id)
	if v == nil {
		return diag.Errorf(diag.StrBadShape, tok, "%s is not declared", name)
	}
	declared := v.Type
	if declared != nil && declared.Dim.IsValid() {
		if err := tc.checkDim(declared.Dim); err != nil {
			return err
		}
	}
	init := tc.tree.Child(id, 1)
	if !init.IsValid() {
		if declared == nil {
			return diag.Errorf(diag.StrBadShape, tok, "%s needs a type or an initializer", name)
		}
		tc.setType(id, declared.Clone())
		return nil
	}
	if declared != nil && declared.Dim.IsValid() {
		return diag.Errorf(diag.StrFixedArrayInit, tok, "can't initialize fixed size array %s", name)
	}

	init, it, err := tc.checkExpr(init)
	if err != nil {
		return err
	}
	if declared == nil {
		switch tc.kind(it) {
		case types.BaseNil, types.BaseVoid:
			return diag.Errorf(diag.TypMismatch, tok, "can't infer the type of %s from %s", name, tc.format(it))
		}
		v.Type = bare(it)
		declared = v.Type
	} else if init, err = tc.coerce(init, declared); err != nil {
		return err
	}
	if isConst {
		if err := tc.requireConst(init, name); err != nil {
			return err
		}
	}
	tc.setType(id, declared.Clone())
	return nil
}

// checkDim types the dimension of a fixed-size array as int.
func (tc *typeChecker) checkDim(dim ast.NodeID) error {
	dim, _, err := tc.checkExpr(dim)
	if err != nil {
		return err
	}
	_, err = tc.coerce(dim, types.New(tc.bi.Int))
	return err
}

// requireConst rejects constant initializers that read anything but
// literals and other constants.
func (tc *typeChecker) requireConst(id ast.NodeID, name string) error {
	bad := ast.NoNodeID
	tc.tree.Inspect(id, func(c ast.NodeID) bool {
		if bad.IsValid() {
			return false
		}
		switch k := tc.tree.Kind(c); {
		case k == ast.KindLit, k == ast.KindTuple, k == ast.KindKeyVal, k == ast.KindCast,
			k == ast.KindStringCat, k == ast.KindClassAlloc, k.IsBinary(), k.IsUnary():
			return true
		case k == ast.KindNameUse, k == ast.KindDot:
			if !tc.isConstVar(tc.varOf(c)) {
				bad = c
			}
			return false
		default:
			bad = c
			return false
		}
	})
	if bad.IsValid() {
		bn := tc.node(bad)
		what := bn.Tok.Text
		if what == "" {
			what = bn.Kind.String()
		}
		return diag.Errorf(diag.StrNotConst, bn.Tok, "%s is initialized with non-constant %s", name, what)
	}
	return nil
}

func (tc *typeChecker) isConstVar(v *symbols.Var) bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case symbols.VarSelf, symbols.VarParent, symbols.VarModule:
		return false
	}
	return v.Const || v.ConstFolded
}
