package sema

import (
	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// operatorArity lists the builtin operators and how many values each takes.
var operatorArity = map[string]int{
	symbols.OpAppend: 2,
	symbols.OpPunt:   1,
	symbols.OpRepunt: 0,
}

// checkCall resolves the callee kind and checks the arguments against it.
func (tc *typeChecker) checkCall(id ast.NodeID) (ast.NodeID, *types.Type, error) {
	callee, ct, err := tc.checkExpr(tc.tree.Child(id, 0))
	if err != nil {
		return id, nil, err
	}
	args := tc.tree.Child(id, 1)
	if tc.tree.Kind(args) != ast.KindTuple {
		return id, nil, diag.Errorf(diag.StrBadShape, tc.node(id).Tok, "call arguments must be a tuple")
	}
	var t *types.Type
	switch k := tc.kind(ct); {
	case k == types.BaseOperator:
		t, err = tc.checkOperator(id, callee, args)
	case k.IsFunction():
		t, err = tc.checkArgs(args, ct)
	default:
		cn := tc.node(callee)
		err = diag.Errorf(diag.TypNotCallable, cn.Tok, "%s is not callable (%s)", cn.Tok.Text, tc.format(ct))
	}
	if err != nil {
		return id, nil, err
	}
	tc.setType(id, t)
	return id, t, nil
}

// checkArgs coerces the argument tuple to the inputs of fn and returns the
// call's result: the single output, or the output tuple.
func (tc *typeChecker) checkArgs(args ast.NodeID, fn *types.Type) (*types.Type, error) {
	in, out := fn.Inputs(), fn.Outputs()
	if in == nil || out == nil {
		return nil, diag.Errorf(diag.StrBadShape, tc.node(args).Tok, "malformed function type %s", tc.format(fn))
	}
	if _, _, err := tc.checkExpr(args); err != nil {
		return nil, err
	}
	if _, err := tc.coerceTuple(args, in); err != nil {
		return nil, err
	}
	if err := tc.checkRefArgs(args, in); err != nil {
		return nil, err
	}
	if len(out.Children) == 1 {
		return bare(out.Children[0]), nil
	}
	return out.Clone(), nil
}

// checkRefArgs requires a bare local variable for every by-reference formal.
func (tc *typeChecker) checkRefArgs(args ast.NodeID, in *types.Type) error {
	for i, f := range in.Children {
		if !f.Ref {
			continue
		}
		a := tc.tree.Child(args, i)
		an := tc.node(a)
		if v := tc.varOf(a); an.Kind == ast.KindNameUse && v != nil && v.Kind == symbols.VarVariable {
			if sc := tc.tab.Scope(v.Scope); sc != nil && sc.IsLocal {
				continue
			}
		}
		return diag.Errorf(diag.StrRefArg, an.Tok, "%s is passed by reference and needs a local variable", formalName(f, i))
	}
	return nil
}

// checkOperator checks the builtin operators one by one.
func (tc *typeChecker) checkOperator(id, callee, args ast.NodeID) (*types.Type, error) {
	tok := tc.node(id).Tok
	op := tc.varOf(callee)
	if op == nil {
		return nil, diag.Errorf(diag.StrBadShape, tok, "operator call without a resolved operator")
	}
	name := op.Name
	if _, _, err := tc.checkExpr(args); err != nil {
		return nil, err
	}
	kids := tc.tree.Children(args)
	for _, k := range kids {
		if tc.tree.Kind(k) == ast.KindKeyVal {
			return nil, diag.Errorf(diag.StrBadShape, tc.node(k).Tok, "%s takes positional values only", name)
		}
	}
	if want := operatorArity[name]; len(kids) != want {
		return nil, diag.Errorf(diag.StrArity, tok, "%s expects %d values, got %d", name, want, len(kids))
	}

	switch name {
	case symbols.OpAppend:
		coll := kids[0]
		ct := tc.typeOf(coll)
		var elem *types.Type
		switch tc.kind(ct) {
		case types.BaseArray:
			elem = ct.Elem()
		case types.BaseDynString:
			elem = types.New(tc.bi.String)
		default:
			return nil, diag.Errorf(diag.TypBadOperand, tc.node(coll).Tok, "can't append to %s", tc.format(ct))
		}
		if err := tc.writable(coll); err != nil {
			return nil, err
		}
		if _, err := tc.coerce(tc.tree.Child(args, 1), elem); err != nil {
			return nil, err
		}
	case symbols.OpPunt:
		if _, err := tc.coerce(kids[0], types.New(tc.bi.String)); err != nil {
			return nil, err
		}
	case symbols.OpRepunt:
		if !tc.inCatch(id) {
			return nil, diag.Errorf(diag.StrMisplaced, tok, "repunt outside of a catch block")
		}
	}

	argT := types.New(tc.bi.Tuple)
	for _, k := range tc.tree.Children(args) {
		argT.Children = append(argT.Children, bare(tc.typeOf(k)))
	}
	tc.setType(args, argT)
	return tc.void(), nil
}
