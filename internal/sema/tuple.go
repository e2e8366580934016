package sema

import (
	"fmt"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// coerceTuple matches the actual values of a tuple node against a formal
// list, re-emits them in formal order and coerces each slot.
func (tc *typeChecker) coerceTuple(id ast.NodeID, formals *types.Type) (ast.NodeID, error) {
	vals, err := tc.matchActuals(id, formals.Children)
	if err != nil {
		return id, err
	}
	tc.tree.SetChildren(id, vals)
	for i, f := range formals.Children {
		if _, err := tc.coerce(tc.tree.Child(id, i), f); err != nil {
			return id, err
		}
	}
	tc.setType(id, formals.Clone())
	return id, nil
}

// matchActuals pairs actuals with formals, positionally first and then by
// name. Formals left without a value take a copy of their default.
func (tc *typeChecker) matchActuals(id ast.NodeID, formals []*types.Type) ([]ast.NodeID, error) {
	tok := tc.node(id).Tok
	actuals := append([]ast.NodeID(nil), tc.tree.Children(id)...)
	vals := make([]ast.NodeID, len(formals))
	named := false
	for i, a := range actuals {
		an := tc.node(a)
		if an.Kind != ast.KindKeyVal {
			if named {
				return nil, diag.Errorf(diag.StrPositionalAfterNamed, an.Tok, "positional value after named ones")
			}
			if i >= len(formals) {
				return nil, diag.Errorf(diag.StrTooManyValues, an.Tok, "too many values: expecting %d, got %d", len(formals), len(actuals))
			}
			vals[i] = a
			continue
		}
		named = true
		slot := formalIndex(formals, an.Tok.Text)
		if slot < 0 {
			return nil, diag.Errorf(diag.StrUnknownNamed, an.Tok, "unknown name %s", an.Tok.Text)
		}
		if vals[slot].IsValid() {
			return nil, diag.Errorf(diag.StrDuplicateNamed, an.Tok, "%s given more than once", an.Tok.Text)
		}
		vals[slot] = tc.tree.Child(a, 0)
	}
	for i, f := range formals {
		if vals[i].IsValid() {
			continue
		}
		if !f.Default.IsValid() {
			return nil, diag.Errorf(diag.StrMissingArg, tok, "missing value for %s", formalName(f, i))
		}
		def, err := tc.copyDefault(f.Default)
		if err != nil {
			return nil, err
		}
		vals[i] = def
	}
	return vals, nil
}

func formalIndex(formals []*types.Type, name string) int {
	for i, f := range formals {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func formalName(f *types.Type, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("value #%d", i+1)
}

// copyDefault clones a default-value expression and types the copy. The
// declaration keeps its own node.
func (tc *typeChecker) copyDefault(def ast.NodeID) (ast.NodeID, error) {
	c, _, err := tc.checkExpr(tc.clone(def))
	return c, err
}

// clone deep-copies a subtree with its bindings.
func (tc *typeChecker) clone(id ast.NodeID) ast.NodeID {
	n := *tc.node(id)
	kids := make([]ast.NodeID, len(n.Children))
	for i, c := range n.Children {
		kids[i] = tc.clone(c)
	}
	c := tc.tree.New(n.Kind, n.Tok, kids...)
	cn := tc.node(c)
	cn.Attrs = n.Attrs
	cn.Lit = n.Lit
	cn.Cast = n.Cast
	if v := tc.tab.VarOf(id); v.IsValid() {
		tc.tab.SetVar(c, v)
	}
	if t := tc.typeOf(id); t != nil {
		tc.setType(c, t.Clone())
	}
	return c
}
