// Package locality proves that flow bodies and para blocks do not touch
// shared state.
//
// Every flow function and every para construct is a boundary: the scope it
// opens plus a set of designated outputs. Inside a boundary
//
//   - calls must target flow functions,
//   - writes must target variables declared inside the boundary or outputs,
//   - a reference-kind local assigned from outside state becomes tainted and
//     can't be written again,
//   - a reference-kind output can't be assigned from outside state at all.
//
// The walk is syntactic and runs in source order over the typed tree.
package locality

import (
	"fmt"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// boundary is one flow body or para block under check.
type boundary struct {
	node    ast.NodeID
	scope   ast.ScopeID
	outputs map[ast.VarID]bool
	what    string
}

type checker struct {
	tree *ast.Tree
	tab  *symbols.Table
	u    *types.Universe
	b    *boundary
}

// Check runs the locality rules over every flow function and para construct.
// The tree must be typed.
func Check(tree *ast.Tree, tab *symbols.Table) error {
	c := &checker{tree: tree, tab: tab, u: tab.Universe}
	var bounds []ast.NodeID
	tree.Inspect(tree.Root, func(id ast.NodeID) bool {
		n := tree.Get(id)
		switch {
		case n.Kind == ast.KindPara:
			bounds = append(bounds, id)
		case n.Kind == ast.KindFuncDec && n.Attrs.Fn == ast.FnFlow && tree.Kind(tree.Child(id, 2)) != ast.KindNop:
			bounds = append(bounds, id)
		}
		return true
	})
	for _, id := range bounds {
		if err := c.checkBoundary(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkBoundary(id ast.NodeID) error {
	n := c.tree.Get(id)
	c.b = &boundary{
		node:    id,
		scope:   n.Scope,
		outputs: make(map[ast.VarID]bool),
	}
	if n.Kind == ast.KindPara {
		c.b.what = fmt.Sprintf("para %s", n.Attrs.Para)
		if n.Attrs.Para == ast.ParaDo {
			c.b.outputs[c.tab.VarOf(c.tree.Child(id, 0))] = true
		}
		// the collection is evaluated outside the block
		return c.walk(c.tree.Child(id, 2))
	}

	c.b.what = fmt.Sprintf("flow %s", n.Tok.Text)
	for _, in := range c.tree.Children(c.tree.Child(id, 0)) {
		if v := c.tab.Var(c.tab.VarOf(in)); v != nil && c.isReference(v.Type) {
			v.MarkTainted()
		}
	}
	for _, out := range c.tree.Children(c.tree.Child(id, 1)) {
		c.b.outputs[c.tab.VarOf(out)] = true
	}
	return c.walk(c.tree.Child(id, 2))
}

// walk visits the statements of the current boundary. Nested para blocks
// and function declarations are boundaries of their own; a nested para's
// collection is still evaluated here.
func (c *checker) walk(root ast.NodeID) error {
	var err error
	c.tree.Inspect(root, func(id ast.NodeID) bool {
		if err != nil {
			return false
		}
		n := c.tree.Get(id)
		switch k := n.Kind; {
		case k == ast.KindPara:
			err = c.walk(c.tree.Child(id, 1))
			return false
		case k == ast.KindFuncDec, k == ast.KindClass:
			return id == root
		case k == ast.KindVarDec:
			c.checkDecl(id)
		case k.IsAssign():
			err = c.checkWrite(c.tree.Child(id, 0), c.tree.Child(id, 1))
		case k == ast.KindCall:
			err = c.checkCall(id)
		case k == ast.KindClassAlloc:
			err = c.checkAlloc(id)
		}
		return err == nil
	})
	return err
}

// checkDecl taints a reference-kind local initialized from outside state.
// Declaring is not a write.
func (c *checker) checkDecl(id ast.NodeID) {
	init := c.tree.Child(id, 1)
	if !init.IsValid() {
		return
	}
	v := c.tab.Var(c.tab.VarOf(id))
	if v != nil && c.isReference(v.Type) && c.readsOutside(init) {
		v.MarkTainted()
	}
}

// checkWrite validates one assignment target. A tuple target is checked
// element by element against the whole right side.
func (c *checker) checkWrite(lval, rval ast.NodeID) error {
	if c.tree.Kind(lval) == ast.KindTuple {
		for _, el := range c.tree.Children(lval) {
			if c.tree.Kind(el) == ast.KindKeyVal {
				el = c.tree.Child(el, 0)
			}
			if err := c.checkWrite(el, rval); err != nil {
				return err
			}
		}
		return nil
	}
	vid := c.target(lval)
	v := c.tab.Var(vid)
	if v == nil {
		return nil
	}
	tok := c.tree.Get(lval).Tok
	outside := rval.IsValid() && c.readsOutside(rval)
	switch {
	case c.b.outputs[vid]:
		if outside && c.isReference(v.Type) {
			return c.outputAlias(lval, v)
		}
		return nil
	case !c.inside(v):
		return diag.Errorf(diag.LocalityNonLocalWrite, tok,
			"%s is declared outside of %s and can't be written there", v.Name, c.b.what)
	case v.Taint() == symbols.Tainted:
		return diag.Errorf(diag.LocalityTaintedWrite, tok,
			"%s may refer to state outside of %s and can't be written", v.Name, c.b.what)
	}
	if outside && c.isReference(v.Type) {
		v.MarkTainted()
	}
	return nil
}

func (c *checker) outputAlias(at ast.NodeID, v *symbols.Var) error {
	return diag.Errorf(diag.LocalityOutputAlias, c.tree.Get(at).Tok,
		"output %s of %s can't refer to state outside of it", v.Name, c.b.what)
}
