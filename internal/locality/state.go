package locality

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// target returns the variable an assignment writes. Field and index chains
// collapse to the object they start from.
func (c *checker) target(id ast.NodeID) ast.VarID {
	switch c.tree.Kind(id) {
	case ast.KindNameUse:
		return c.tab.VarOf(id)
	case ast.KindDot:
		obj := c.tree.Child(id, 0)
		if c.isModule(obj) {
			return c.tab.VarOf(id)
		}
		return c.target(obj)
	case ast.KindIndex, ast.KindCast:
		return c.target(c.tree.Child(id, 0))
	}
	return ast.NoVarID
}

// readsOutside reports whether evaluating id reads state the boundary
// doesn't own.
func (c *checker) readsOutside(id ast.NodeID) bool {
	switch c.tree.Kind(id) {
	case ast.KindNameUse:
		return c.outsideState(c.tab.Var(c.tab.VarOf(id)))
	case ast.KindDot:
		obj := c.tree.Child(id, 0)
		if c.isModule(obj) {
			return c.outsideState(c.tab.Var(c.tab.VarOf(id)))
		}
		return c.readsOutside(obj)
	}
	for _, ch := range c.tree.Children(id) {
		if c.readsOutside(ch) {
			return true
		}
	}
	return false
}

// outsideState: variables of enclosing scopes and tainted locals. Functions,
// modules and constants hold no mutable state.
func (c *checker) outsideState(v *symbols.Var) bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case symbols.VarFunction, symbols.VarMethod, symbols.VarModule:
		return false
	}
	if v.Const || v.ConstFolded {
		return false
	}
	return !c.inside(v) || v.Taint() == symbols.Tainted
}

func (c *checker) inside(v *symbols.Var) bool {
	for s := v.Scope; s.IsValid(); {
		if s == c.b.scope {
			return true
		}
		sc := c.tab.Scope(s)
		if sc == nil {
			return false
		}
		s = sc.Parent
	}
	return false
}

// isReference: strings are immutable and never alias anything writable.
func (c *checker) isReference(t *types.Type) bool {
	if t == nil {
		return false
	}
	return c.u.Kind(t.Base) != types.BaseString && c.u.IsReference(t.Base)
}

func (c *checker) isModule(id ast.NodeID) bool {
	v := c.tab.Var(c.tab.VarOf(id))
	return c.tree.Kind(id) == ast.KindNameUse && v != nil && v.Kind == symbols.VarModule
}

// checkCall accepts flow targets only. append writes its first value and
// by-reference formals write their actuals.
func (c *checker) checkCall(id ast.NodeID) error {
	callee, args := c.tree.Child(id, 0), c.tree.Child(id, 1)
	ct := c.tab.TypeOf(callee)
	if ct == nil {
		return nil
	}
	actuals := c.tree.Children(args)
	switch c.u.Kind(ct.Base) {
	case types.BaseOperator:
		v := c.tab.Var(c.tab.VarOf(callee))
		if v != nil && v.Name == symbols.OpAppend && len(actuals) == 2 {
			return c.checkWrite(actuals[0], actuals[1])
		}
		return nil
	case types.BaseFlow, types.BaseFlowPtr:
	case types.BaseMethod:
		v := c.tab.Var(c.tab.VarOf(callee))
		if v == nil || c.tree.Get(v.Decl).Attrs.Fn != ast.FnFlow {
			return c.effectful(id, callee)
		}
	default:
		return c.effectful(id, callee)
	}

	in := ct.Inputs()
	if in == nil {
		return nil
	}
	for i, f := range in.Children {
		if f.Ref && i < len(actuals) {
			if err := c.checkWrite(actuals[i], ast.NoNodeID); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkAlloc treats an initializer run by a construction as a call.
func (c *checker) checkAlloc(id ast.NodeID) error {
	if len(c.tree.Children(id)) < 2 {
		return nil
	}
	t := c.tab.TypeOf(id)
	if t == nil {
		return nil
	}
	ctor, ok := c.tab.FindMember(t.Base, symbols.InitName)
	if !ok {
		return nil
	}
	if v := c.tab.Var(ctor); v != nil && c.tree.Get(v.Decl).Attrs.Fn == ast.FnFlow {
		return nil
	}
	return diag.Errorf(diag.LocalityEffectfulCall, c.tree.Get(id).Tok,
		"%s can't construct %s: its init is not a flow", c.b.what, c.u.Name(t.Base))
}

func (c *checker) effectful(call, callee ast.NodeID) error {
	name := c.tree.Get(callee).Tok.Text
	if v := c.tab.Var(c.tab.VarOf(callee)); v != nil {
		name = v.Name
	}
	return diag.Errorf(diag.LocalityEffectfulCall, c.tree.Get(call).Tok,
		"%s can't call %s: it is not a flow", c.b.what, name)
}
