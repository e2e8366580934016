package sema

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/symbols"
	"paraflow/internal/types"
)

// coerce makes the value at id acceptable where dest is expected and returns
// the node now in id's slot.
func (tc *typeChecker) coerce(id ast.NodeID, dest *types.Type) (ast.NodeID, error) {
	return tc.coerceOne(id, dest, false)
}

// coerceOne applies the first matching conversion rule. numToString licenses
// the number-to-string conversion, which only "+" on strings may use.
func (tc *typeChecker) coerceOne(id ast.NodeID, dest *types.Type, numToString bool) (ast.NodeID, error) {
	n := tc.node(id)
	src := tc.typeOf(id)
	if src == nil || dest == nil {
		return id, diag.Errorf(diag.StrBadShape, n.Tok, "%s node without a type", n.Kind)
	}
	sk, dk := tc.kind(src), tc.kind(dest)
	isTuple := n.Kind == ast.KindTuple

	// named values must be reordered even when the member types line up
	if isTuple && dk == types.BaseTuple && tc.hasNamed(id) {
		return tc.coerceTuple(id, dest)
	}
	if types.Equal(src, dest) {
		return id, nil
	}

	switch {
	case sk == types.BaseNil:
		tc.setType(id, bare(dest))
		return id, nil

	case sk == types.BaseTuple && !tc.takesTuple(dest):
		return tc.unwrapSingle(id, src, dest, numToString)

	case sk.IsString() && dk.IsString():
		return tc.cast(id, ast.CastStringDup, dest), nil

	case sk == types.BaseString && dk == types.BaseChar && n.Kind == ast.KindLit:
		return tc.charLiteral(id, dest)

	case sk == types.BaseChar && dk.IsString():
		return tc.cast(id, ast.CastCharToString, dest), nil

	case dk == types.BaseBit && tc.u.IsReference(src.Base) && !sk.IsString():
		return tc.cast(id, ast.CastRefToBit, dest), nil

	case dk == types.BaseBit && sk.IsString():
		return tc.cast(id, ast.CastStringToBit, dest), nil

	case numToString && types.IsNumeric(sk) && dk.IsString():
		return tc.cast(id, ast.CastNumToString, dest), nil

	case dk == types.BaseVar:
		return tc.cast(id, ast.CastBox, dest), nil

	case sk == types.BaseVar:
		return tc.cast(id, ast.CastUnbox, dest), nil

	case dk.IsFuncPtr() && (sk == types.BaseTo || sk == types.BaseFlow):
		return tc.funcToPtr(id, src, dest)

	case sk != types.BaseTuple && tc.takesTuple(dest) && !(tc.isObject(sk) && dk == types.BaseClass):
		if dk == types.BaseClass && tc.firstFieldIsClass(dest) {
			return id, tc.mismatch(n.Tok, dest, src)
		}
		leave, ok := tc.enterPromotion(dest)
		if !ok {
			return id, tc.mismatch(n.Tok, dest, src)
		}
		defer leave()
		return tc.coerceOne(tc.wrapTuple(id, src), dest, numToString)

	case sk == types.BaseTuple && isTuple && dk == types.BaseTuple:
		return tc.coerceTuple(id, dest)

	case sk == types.BaseTuple && isTuple && tc.isCollection(dest):
		return tc.coerceCollection(id, dest)

	case sk == types.BaseTuple && isTuple && dk == types.BaseClass:
		return tc.construct(id, dest)

	case tc.isObject(sk) && dk == types.BaseClass:
		if sk == types.BaseClass && tc.u.IsAncestor(src.Base, dest.Base) {
			return id, nil
		}
		if tc.firstFieldIsClass(dest) {
			return id, tc.mismatch(n.Tok, dest, src)
		}
		leave, ok := tc.enterPromotion(dest)
		if !ok {
			return id, tc.mismatch(n.Tok, dest, src)
		}
		defer leave()
		built, err := tc.construct(tc.wrapTuple(id, src), dest)
		if diag.CodeOf(err) == diag.TypMismatch {
			return id, tc.mismatch(n.Tok, dest, src)
		}
		return built, err

	case tc.isObject(sk) && dk == types.BaseInterface:
		return tc.toInterface(id, src, dest)

	case types.IsNumeric(sk) && types.IsNumeric(dk):
		return tc.castNumeric(id, dest)
	}
	return id, tc.mismatch(n.Tok, dest, src)
}

func (tc *typeChecker) mismatch(tok source.Token, dest, src *types.Type) error {
	return diag.Errorf(diag.TypMismatch, tok, "type mismatch: expecting %s, got %s", tc.format(dest), tc.format(src))
}

func (tc *typeChecker) isObject(k types.BaseKind) bool {
	return k == types.BaseClass || k == types.BaseInterface
}

func (tc *typeChecker) isCollection(t *types.Type) bool {
	bt := tc.u.Get(t.Base)
	return bt != nil && bt.IsCollection
}

// takesTuple reports destinations built from a parenthesized group.
func (tc *typeChecker) takesTuple(dest *types.Type) bool {
	k := tc.kind(dest)
	return k == types.BaseTuple || k == types.BaseClass || tc.isCollection(dest)
}

// firstFieldIsClass stops "x -> (x) -> class" promotion from recursing
// through a chain of classes.
func (tc *typeChecker) firstFieldIsClass(dest *types.Type) bool {
	bt := tc.u.Get(dest.Base)
	if bt == nil || len(bt.Fields) == 0 {
		return false
	}
	return tc.isObject(tc.kind(bt.Fields[0]))
}

// enterPromotion marks dest as being built from a single value. It fails
// when an enclosing promotion already targets the same type, as in
// class Node { kids: array of Node } built from a number.
func (tc *typeChecker) enterPromotion(dest *types.Type) (func(), bool) {
	key := tc.format(dest)
	if tc.promoting[key] {
		return nil, false
	}
	tc.promoting[key] = true
	return func() { delete(tc.promoting, key) }, true
}

func (tc *typeChecker) hasNamed(id ast.NodeID) bool {
	for _, c := range tc.tree.Children(id) {
		if tc.tree.Kind(c) == ast.KindKeyVal {
			return true
		}
	}
	return false
}

// cast wraps id in a conversion node typed dest.
func (tc *typeChecker) cast(id ast.NodeID, kind ast.CastKind, dest *types.Type) ast.NodeID {
	tok := tc.node(id).Tok
	w := tc.tree.Wrap(id, ast.KindCast, tok)
	tc.node(w).Cast = kind
	tc.setType(w, bare(dest))
	tc.coerced++
	return w
}

// wrapTuple turns a single value into a one-element tuple in place.
func (tc *typeChecker) wrapTuple(id ast.NodeID, src *types.Type) ast.NodeID {
	tok := tc.node(id).Tok
	w := tc.tree.Wrap(id, ast.KindTuple, tok)
	tc.setType(w, types.New(tc.bi.Tuple, bare(src)))
	tc.coerced++
	return w
}

// unwrapSingle accepts a one-element tuple where a single value is expected.
func (tc *typeChecker) unwrapSingle(id ast.NodeID, src, dest *types.Type, numToString bool) (ast.NodeID, error) {
	n := tc.node(id)
	if n.Kind != ast.KindTuple || len(src.Children) != 1 {
		return id, diag.Errorf(diag.TypExpectSingle, n.Tok, "expecting single value, got %d values", len(src.Children))
	}
	val := n.Children[0]
	if tc.tree.Kind(val) == ast.KindKeyVal {
		val = tc.tree.Child(val, 0)
	}
	tc.tree.Replace(id, val)
	tc.coerced++
	return tc.coerceOne(val, dest, numToString)
}

// charLiteral turns a one-character string literal into a char literal.
func (tc *typeChecker) charLiteral(id ast.NodeID, dest *types.Type) (ast.NodeID, error) {
	n := tc.node(id)
	s := norm.NFC.String(n.Lit.Str)
	if utf8.RuneCountInString(s) != 1 {
		return id, diag.Errorf(diag.RngCharLength, n.Tok, "char literal %q must hold exactly one character", n.Lit.Str)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r > 0xff {
		return id, diag.Errorf(diag.RngOverflow, n.Tok, "%q out of range for char", s)
	}
	return tc.replaceLit(id, ast.Literal{Kind: ast.LitChar, Int: int64(r)}, dest), nil
}

// replaceLit puts a new literal typed dest in id's place.
func (tc *typeChecker) replaceLit(id ast.NodeID, l ast.Literal, dest *types.Type) ast.NodeID {
	tok := tc.node(id).Tok.Synth(l.String())
	lit := tc.tree.New(ast.KindLit, tok)
	tc.node(lit).Lit = l
	tc.tree.Replace(id, lit)
	tc.setType(lit, bare(dest))
	tc.coerced++
	return lit
}

// funcToPtr converts a function to a pointer with exactly its signature.
// A flow function may become a to-pointer; a to function never becomes a
// flow-pointer.
func (tc *typeChecker) funcToPtr(id ast.NodeID, src, dest *types.Type) (ast.NodeID, error) {
	tok := tc.node(id).Tok
	if !types.SameSignature(src, dest) {
		return id, tc.mismatch(tok, dest, src)
	}
	if tc.kind(src) == types.BaseTo && tc.kind(dest) == types.BaseFlowPtr {
		return id, tc.mismatch(tok, dest, src)
	}
	return tc.cast(id, ast.CastFuncToPtr, dest), nil
}

// toInterface checks that every method of the interface, inherited ones
// included, is implemented with an identical signature.
func (tc *typeChecker) toInterface(id ast.NodeID, src, dest *types.Type) (ast.NodeID, error) {
	tok := tc.node(id).Tok
	if tc.kind(src) == types.BaseInterface {
		if tc.u.IsAncestor(src.Base, dest.Base) {
			return id, nil
		}
		return id, tc.mismatch(tok, dest, src)
	}
	for _, anc := range tc.u.Ancestors(dest.Base) {
		for _, m := range tc.u.Get(anc).Methods {
			mv, ok := tc.tab.FindMember(src.Base, m.Name)
			if !ok || tc.tab.Var(mv).Kind != symbols.VarMethod {
				return id, diag.Errorf(diag.TypInterfaceMethod, tok, "%s does not implement %s: missing method %s",
					tc.format(src), tc.format(dest), m.Name)
			}
			if !types.SameSignature(tc.tab.Var(mv).Type, m.Type) {
				return id, diag.Errorf(diag.TypInterfaceMethod, tok, "%s does not implement %s: method %s is defined differently",
					tc.format(src), tc.format(dest), m.Name)
			}
		}
	}
	return tc.cast(id, ast.CastToInterface, dest), nil
}
