// Package sema is the type and coercion engine. It blesses classes, types
// every node of a bound tree and rewrites the tree so that every implicit
// conversion becomes an explicit node.
package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

type typeChecker struct {
	tree *ast.Tree
	tab  *symbols.Table
	u    *types.Universe
	bi   types.Builtins
	// coerced counts inserted or rebuilt nodes; tests use it to observe no-op coercions.
	coerced int
	// done holds declarations already checked (blessing checks some early).
	done map[ast.NodeID]bool
	// promoting holds destinations a single value is being promoted into;
	// meeting one again means the promotion would never end.
	promoting map[string]bool
}

// Check types the whole tree. Binding and constant folding must have run.
// The first error aborts the pass.
func Check(tree *ast.Tree, tab *symbols.Table) error {
	tc := newChecker(tree, tab)
	if err := tc.blessAll(); err != nil {
		return err
	}
	if err := tc.checkStmt(tree.Root); err != nil {
		return err
	}
	tc.fillVoid()
	return nil
}

func newChecker(tree *ast.Tree, tab *symbols.Table) *typeChecker {
	return &typeChecker{
		tree: tree,
		tab:  tab,
		u:    tab.Universe,
		bi:   tab.Universe.Builtins(),
		done:      make(map[ast.NodeID]bool),
		promoting: make(map[string]bool),
	}
}

func (tc *typeChecker) typeOf(id ast.NodeID) *types.Type { return tc.tab.TypeOf(id) }

func (tc *typeChecker) setType(id ast.NodeID, t *types.Type) { tc.tab.SetType(id, t) }

func (tc *typeChecker) void() *types.Type { return types.New(tc.bi.Void) }

func (tc *typeChecker) kind(t *types.Type) types.BaseKind {
	if t == nil {
		return types.BaseInvalid
	}
	return tc.u.Kind(t.Base)
}

func (tc *typeChecker) node(id ast.NodeID) *ast.Node { return tc.tree.Get(id) }

func (tc *typeChecker) varOf(id ast.NodeID) *symbols.Var { return tc.tab.Var(tc.tab.VarOf(id)) }

func (tc *typeChecker) format(t *types.Type) string { return tc.u.Format(t) }

// moduleOf returns the module the node is written in.
func (tc *typeChecker) moduleOf(id ast.NodeID) string {
	return tc.tab.ModuleOf(tc.tree.ScopeOf(id))
}

// checkStmt types a statement-level node and everything below it.
func (tc *typeChecker) checkStmt(id ast.NodeID) error {
	n := tc.node(id)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindProgram, ast.KindModule, ast.KindCompound:
		if err := tc.checkList(id); err != nil {
			return err
		}
	case ast.KindInclude, ast.KindNop:
	case ast.KindVarDec:
		return tc.checkVarDec(id)
	case ast.KindFuncDec:
		if err := tc.checkFunc(id); err != nil {
			return err
		}
	case ast.KindClass:
		if err := tc.checkList(id); err != nil {
			return err
		}
	case ast.KindIf:
		if err := tc.checkCond(tc.tree.Child(id, 0)); err != nil {
			return err
		}
		for _, c := range tc.tree.Children(id)[1:] {
			if err := tc.checkStmt(c); err != nil {
				return err
			}
		}
	case ast.KindWhile:
		if err := tc.checkCond(tc.tree.Child(id, 0)); err != nil {
			return err
		}
		if err := tc.checkStmt(tc.tree.Child(id, 1)); err != nil {
			return err
		}
	case ast.KindFor:
		if err := tc.checkFor(id); err != nil {
			return err
		}
	case ast.KindForeach:
		if err := tc.checkForeach(id); err != nil {
			return err
		}
	case ast.KindPara:
		_, err := tc.checkPara(id)
		return err
	case ast.KindTry:
		if err := tc.checkTry(id); err != nil {
			return err
		}
	case ast.KindBreak, ast.KindContinue:
		if !tc.tree.Enclosing(id, ast.KindWhile, ast.KindFor, ast.KindForeach).IsValid() {
			return diag.Errorf(diag.StrMisplaced, n.Tok, "%s outside of a loop", n.Kind)
		}
	case ast.KindReturn:
		if !tc.tree.Enclosing(id, ast.KindFuncDec).IsValid() {
			return diag.Errorf(diag.StrMisplaced, n.Tok, "return outside of a function")
		}
	default:
		if n.Kind.IsTypeSyntax() {
			return nil
		}
		// expression statement
		_, _, err := tc.checkExpr(id)
		return err
	}
	tc.setType(id, tc.void())
	return nil
}

func (tc *typeChecker) checkList(id ast.NodeID) error {
	for i := 0; i < len(tc.tree.Children(id)); i++ {
		c := tc.tree.Child(id, i)
		if tc.tree.Kind(c).IsTypeSyntax() {
			continue
		}
		if err := tc.checkStmt(c); err != nil {
			return err
		}
	}
	return nil
}

// checkCond types a condition and coerces it to bit. A Nop condition (an
// empty "for" slot) stays as it is.
func (tc *typeChecker) checkCond(id ast.NodeID) error {
	if tc.tree.Kind(id) == ast.KindNop {
		tc.setType(id, tc.void())
		return nil
	}
	id, _, err := tc.checkExpr(id)
	if err != nil {
		return err
	}
	_, err = tc.coerce(id, types.New(tc.bi.Bit))
	return err
}

func (tc *typeChecker) checkFunc(id ast.NodeID) error {
	if len(tc.tree.Children(id)) != 3 {
		return diag.Errorf(diag.StrBadShape, tc.node(id).Tok, "function %s must have inputs, outputs and a body", tc.node(id).Tok.Text)
	}
	for _, formals := range tc.tree.Children(id)[:2] {
		for _, f := range tc.tree.Children(formals) {
			if err := tc.checkFormalDefault(f); err != nil {
				return err
			}
		}
	}
	return tc.checkStmt(tc.tree.Child(id, 2))
}

// checkFormalDefault coerces a formal's default value to the formal's type.
func (tc *typeChecker) checkFormalDefault(id ast.NodeID) error {
	init := tc.tree.Child(id, 1)
	if !init.IsValid() {
		return nil
	}
	init, _, err := tc.checkExpr(init)
	if err != nil {
		return err
	}
	_, err = tc.coerce(init, tc.varOf(id).Type)
	return err
}

func (tc *typeChecker) checkFor(id ast.NodeID) error {
	if err := tc.checkStmt(tc.tree.Child(id, 0)); err != nil {
		return err
	}
	if err := tc.checkCond(tc.tree.Child(id, 1)); err != nil {
		return err
	}
	if err := tc.checkStmt(tc.tree.Child(id, 2)); err != nil {
		return err
	}
	return tc.checkStmt(tc.tree.Child(id, 3))
}

func (tc *typeChecker) checkForeach(id ast.NodeID) error {
	if err := tc.bindElement(id); err != nil {
		return err
	}
	return tc.checkStmt(tc.tree.Child(id, 2))
}

// bindElement types the collection of a foreach/para and gives the element
// variable the collection's element type.
func (tc *typeChecker) bindElement(id ast.NodeID) error {
	el, coll := tc.tree.Child(id, 0), tc.tree.Child(id, 1)
	_, ct, err := tc.checkExpr(coll)
	if err != nil {
		return err
	}
	elem := tc.elemOf(ct)
	if elem == nil {
		return diag.Errorf(diag.TypNotCollection, tc.node(coll).Tok, "can't iterate over %s", tc.format(ct))
	}
	v := tc.varOf(el)
	if v == nil {
		return diag.Errorf(diag.StrBadShape, tc.node(el).Tok, "element variable is not declared")
	}
	if v.Type == nil {
		v.Type = elem.Clone()
	} else if !types.Equal(v.Type, elem) {
		return diag.Errorf(diag.TypMismatch, tc.node(el).Tok, "type mismatch: %s elements are %s, not %s",
			tc.format(ct), tc.format(elem), tc.format(v.Type))
	}
	tc.setType(el, v.Type.Clone())
	return nil
}

// elemOf returns the element type of an iterable or indexable type.
func (tc *typeChecker) elemOf(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch k := tc.kind(t); {
	case k.IsString():
		return types.New(tc.bi.Char)
	case k == types.BaseArray || k == types.BaseDir:
		return t.Elem()
	}
	if bt := tc.u.Get(t.Base); bt != nil && bt.IsCollection {
		return t.Elem()
	}
	return nil
}

func (tc *typeChecker) checkTry(id ast.NodeID) error {
	if err := tc.checkStmt(tc.tree.Child(id, 0)); err != nil {
		return err
	}
	catchVar := tc.tree.Child(id, 1)
	if tc.tree.Kind(catchVar) == ast.KindVarDec {
		v := tc.varOf(catchVar)
		str := types.New(tc.bi.String)
		switch {
		case v == nil:
			return diag.Errorf(diag.StrBadShape, tc.node(catchVar).Tok, "catch variable is not declared")
		case v.Type == nil:
			v.Type = str
		case !tc.kind(v.Type).IsString():
			return diag.Errorf(diag.TypMismatch, tc.node(catchVar).Tok, "type mismatch: caught values are string, not %s", tc.format(v.Type))
		}
		tc.setType(catchVar, v.Type.Clone())
	} else if err := tc.checkStmt(catchVar); err != nil {
		return err
	}
	return tc.checkStmt(tc.tree.Child(id, 2))
}

// inCatch reports whether id sits inside the catch body of a try.
func (tc *typeChecker) inCatch(id ast.NodeID) bool {
	for cur := id; cur.IsValid(); {
		try := tc.tree.Enclosing(cur, ast.KindTry)
		if !try.IsValid() {
			return false
		}
		body := tc.tree.Child(try, 2)
		for p := cur; p.IsValid() && p != try; p = tc.tree.Parent(p) {
			if p == body {
				return true
			}
		}
		cur = try
	}
	return false
}

// fillVoid gives the void type to every reachable node still untyped:
// type syntax leaves without a meaning of their own and empty slots.
func (tc *typeChecker) fillVoid() {
	tc.tree.Inspect(tc.tree.Root, func(id ast.NodeID) bool {
		if tc.typeOf(id) == nil {
			tc.setType(id, tc.void())
		}
		return true
	})
}
