// Package poly validates method overrides across class hierarchies and
// assigns virtual dispatch slots.
package poly

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

type resolver struct {
	tree *ast.Tree
	u    *types.Universe
	done map[types.BaseID]bool
}

// Resolve checks every class and interface, then fills BaseType.Poly.
// Sema must have run: method types are compared structurally.
func Resolve(tree *ast.Tree, tab *symbols.Table) error {
	r := &resolver{tree: tree, u: tab.Universe, done: make(map[types.BaseID]bool)}
	for id := types.BaseID(1); int(id) <= r.u.Len(); id++ {
		bt := r.u.Get(id)
		if bt == nil || !(bt.IsClass || bt.IsInterface) {
			continue
		}
		if err := r.resolve(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolve(id types.BaseID) error {
	if r.done[id] {
		return nil
	}
	r.done[id] = true
	bt := r.u.Get(id)
	if bt.Parent.IsValid() {
		if err := r.resolve(bt.Parent); err != nil {
			return err
		}
	}
	for i := range bt.Methods {
		if err := r.checkOverride(id, &bt.Methods[i]); err != nil {
			return err
		}
	}
	r.assignSlots(id)
	return nil
}

// checkOverride compares a locally declared method with every ancestor
// that declares the same name.
func (r *resolver) checkOverride(id types.BaseID, m *types.Method) error {
	tok := r.tree.Get(m.Decl).Tok
	for _, anc := range r.u.Ancestors(id)[1:] {
		am := r.u.Get(anc).LocalMethod(m.Name)
		if am == nil {
			continue
		}
		switch {
		case !m.Polymorphic && m.Name == symbols.InitName:
			return nil
		case !m.Polymorphic:
			return diag.Errorf(diag.StrOverride, tok, "%s is already defined in %s; only polymorphic methods can be overridden",
				m.Name, r.u.Name(anc))
		case !am.Polymorphic:
			return diag.Errorf(diag.StrOverride, tok, "%s overrides non-polymorphic %s.%s",
				m.Name, r.u.Name(anc), m.Name)
		case !types.SameSignature(m.Type, am.Type):
			return diag.Errorf(diag.StrPolySignature, tok, "%s defined differently in %s and %s: %s vs %s",
				m.Name, r.u.Name(id), r.u.Name(anc), r.u.Format(m.Type), r.u.Format(am.Type))
		}
	}
	return nil
}

// assignSlots copies the parent's table, then gives every newly introduced
// polymorphic method the next free slot. Overrides keep the inherited slot
// and take over the implementation.
func (r *resolver) assignSlots(id types.BaseID) {
	bt := r.u.Get(id)
	var table []types.PolyFunRef
	if bt.Parent.IsValid() {
		table = append(table, r.u.Get(bt.Parent).Poly...)
	}
	for _, m := range bt.Methods {
		if !m.Polymorphic {
			continue
		}
		slot := -1
		for i := range table {
			if table[i].Name == m.Name {
				slot = i
				break
			}
		}
		if slot < 0 {
			table = append(table, types.PolyFunRef{Name: m.Name, Slot: len(table), Impl: id})
			continue
		}
		table[slot].Impl = id
	}
	bt.Poly = table
}
