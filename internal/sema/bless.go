package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// blessAll finalizes the field list of every class before any expression is
// typed, so construction always sees complete classes.
func (tc *typeChecker) blessAll() error {
	var classes []types.BaseID
	tc.tree.Inspect(tc.tree.Root, func(id ast.NodeID) bool {
		if tc.tree.Kind(id) == ast.KindClass {
			if b := tc.tab.BaseOf(id); b.IsValid() {
				classes = append(classes, b)
			}
		}
		return true
	})
	for _, b := range classes {
		if err := tc.bless(b); err != nil {
			return err
		}
	}
	return nil
}

// bless lays out the fields of a class: the parent's fields first, then the
// class's own in declaration order. Fields declared without a type take
// the type of their initializer.
func (tc *typeChecker) bless(base types.BaseID) error {
	bt := tc.u.Get(base)
	if bt == nil || bt.Blessed || !(bt.IsClass || bt.IsInterface) {
		return nil
	}
	var fields []*types.Type
	if bt.Parent.IsValid() {
		if err := tc.bless(bt.Parent); err != nil {
			return err
		}
		for _, f := range tc.u.Get(bt.Parent).Fields {
			fields = append(fields, f.Clone())
		}
	}
	sc := tc.tab.Scope(bt.Scope)
	if sc != nil {
		for _, vid := range sc.Order {
			v := tc.tab.Var(vid)
			if v.Kind != symbols.VarField {
				continue
			}
			if v.Type == nil {
				if err := tc.checkVarDec(v.Decl); err != nil {
					return err
				}
				if v.Type == nil {
					return diag.Errorf(diag.StrBadShape, v.Tok, "type of field %s depends on itself", v.Name)
				}
			}
			f := v.Type.Named(v.Name)
			f.Access = v.Access
			f.Const = v.Const
			f.Default = tc.tree.Child(v.Decl, 1)
			fields = append(fields, f)
		}
	}
	bt = tc.u.Get(base)
	bt.Fields = fields
	bt.Blessed = true
	return nil
}
