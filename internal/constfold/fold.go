// Package constfold collapses operators over literals, and uses of named
// constants, into plain literals. It runs after binding and before type
// checking so that every range-checked narrowing sees folded values.
package constfold

import (
	"strings"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/symbols"
)

type folder struct {
	tree   *ast.Tree
	tab    *symbols.Table
	folded int
}

// Fold rewrites the whole tree and reports how many nodes were replaced.
func Fold(tree *ast.Tree, tab *symbols.Table) (int, error) {
	f := &folder{tree: tree, tab: tab}
	if err := f.foldConstants(); err != nil {
		return f.folded, err
	}
	f.fold(tree.Root)
	return f.folded, nil
}

// constDecl is a const declaration whose initializer still waits for folding.
type constDecl struct {
	decl ast.NodeID
	v    ast.VarID
}

// foldConstants resolves named constants in dependency order. A round that
// makes no progress means the remaining constants refer to each other.
func (f *folder) foldConstants() error {
	var pending []constDecl
	waiting := make(map[ast.VarID]bool)
	f.tree.Inspect(f.tree.Root, func(id ast.NodeID) bool {
		n := f.tree.Get(id)
		if n.Kind == ast.KindVarDec && n.Attrs.Const && len(n.Children) > 1 {
			if v := f.tab.VarOf(id); v.IsValid() {
				pending = append(pending, constDecl{decl: id, v: v})
				waiting[v] = true
			}
		}
		return n.Kind != ast.KindTypeFunc
	})

	for len(pending) > 0 {
		var next []constDecl
		for _, c := range pending {
			init := f.tree.Child(c.decl, 1)
			if f.usesWaiting(init, waiting) {
				next = append(next, c)
				continue
			}
			f.fold(init)
			if f.tree.Kind(f.tree.Child(c.decl, 1)) == ast.KindLit {
				f.tab.Var(c.v).ConstFolded = true
			}
			delete(waiting, c.v)
		}
		if len(next) == len(pending) {
			v := f.tab.Var(next[0].v)
			return diag.Errorf(diag.StrNotConst, v.Tok, "circular definition of constant %s", v.Name)
		}
		pending = next
	}
	return nil
}

// usesWaiting reports uses of constants whose initializer is not settled yet.
func (f *folder) usesWaiting(id ast.NodeID, waiting map[ast.VarID]bool) bool {
	uses := false
	f.tree.Inspect(id, func(c ast.NodeID) bool {
		if f.tree.Kind(c) == ast.KindNameUse && waiting[f.tab.VarOf(c)] {
			uses = true
		}
		return !uses
	})
	return uses
}

// fold works bottom-up and returns the node now occupying id's slot.
func (f *folder) fold(id ast.NodeID) ast.NodeID {
	n := f.tree.Get(id)
	if n == nil || n.Kind == ast.KindTypeFunc || n.Kind.IsTypeSyntax() {
		return id
	}
	for i := 0; i < len(f.tree.Children(id)); i++ {
		f.fold(f.tree.Child(id, i))
	}
	n = f.tree.Get(id)
	switch {
	case n.Kind == ast.KindNameUse:
		v := f.tab.Var(f.tab.VarOf(id))
		if v == nil || !v.ConstFolded {
			return id
		}
		lit := f.tree.Get(f.tree.Child(v.Decl, 1))
		return f.replace(id, lit.Lit)
	case n.Kind.IsUnary():
		operand := f.tree.Get(n.Children[0])
		if operand.Kind != ast.KindLit {
			return id
		}
		if l, ok := foldUnary(n.Kind, operand.Lit); ok {
			return f.replace(id, l)
		}
	case n.Kind.IsBinary():
		left, right := f.tree.Get(n.Children[0]), f.tree.Get(n.Children[1])
		if left.Kind != ast.KindLit || right.Kind != ast.KindLit {
			return id
		}
		if l, ok := foldBinary(n.Kind, left.Lit, right.Lit); ok {
			return f.replace(id, l)
		}
	}
	return id
}

func (f *folder) replace(id ast.NodeID, l ast.Literal) ast.NodeID {
	tok := f.tree.Get(id).Tok.Synth(l.String())
	lit := f.tree.New(ast.KindLit, tok)
	f.tree.Get(lit).Lit = l
	f.tree.Replace(id, lit)
	f.folded++
	return lit
}

func foldUnary(op ast.Kind, v ast.Literal) (ast.Literal, bool) {
	switch op {
	case ast.KindNegate:
		switch v.Kind {
		case ast.LitInt:
			return ast.Literal{Kind: ast.LitInt, Int: -v.Int}, true
		case ast.LitFloat:
			return ast.Literal{Kind: ast.LitFloat, Float: -v.Float}, true
		}
	case ast.KindNot:
		switch v.Kind {
		case ast.LitBit, ast.LitInt:
			return bit(v.Int == 0), true
		case ast.LitNil:
			return bit(true), true
		}
	case ast.KindFlipBits:
		if v.Kind == ast.LitInt {
			return ast.Literal{Kind: ast.LitInt, Int: ^v.Int}, true
		}
	}
	return ast.Literal{}, false
}

func bit(b bool) ast.Literal {
	if b {
		return ast.Literal{Kind: ast.LitBit, Int: 1}
	}
	return ast.Literal{Kind: ast.LitBit}
}

func foldBinary(op ast.Kind, a, b ast.Literal) (ast.Literal, bool) {
	switch {
	case a.Kind == ast.LitString && b.Kind == ast.LitString:
		return foldStrings(op, a.Str, b.Str)
	case a.Kind == ast.LitBit && b.Kind == ast.LitBit:
		return foldBits(op, a.Int != 0, b.Int != 0)
	case a.Kind == ast.LitInt && b.Kind == ast.LitInt:
		return foldInts(op, a.Int, b.Int)
	case isNumber(a) && isNumber(b):
		return foldFloats(op, asFloat(a), asFloat(b))
	}
	return ast.Literal{}, false
}

func isNumber(l ast.Literal) bool { return l.Kind == ast.LitInt || l.Kind == ast.LitFloat }

func asFloat(l ast.Literal) float64 {
	if l.Kind == ast.LitFloat {
		return l.Float
	}
	return float64(l.Int)
}

func foldInts(op ast.Kind, a, b int64) (ast.Literal, bool) {
	num := func(v int64) (ast.Literal, bool) { return ast.Literal{Kind: ast.LitInt, Int: v}, true }
	switch op {
	case ast.KindPlus:
		return num(a + b)
	case ast.KindMinus:
		return num(a - b)
	case ast.KindMul:
		return num(a * b)
	case ast.KindDiv:
		if b == 0 {
			return ast.Literal{}, false
		}
		return num(a / b)
	case ast.KindMod:
		if b == 0 {
			return ast.Literal{}, false
		}
		return num(a % b)
	case ast.KindShiftLeft:
		if b < 0 || b > 63 {
			return ast.Literal{}, false
		}
		return num(a << uint(b))
	case ast.KindShiftRight:
		if b < 0 || b > 63 {
			return ast.Literal{}, false
		}
		return num(a >> uint(b))
	case ast.KindBitAnd:
		return num(a & b)
	case ast.KindBitOr:
		return num(a | b)
	case ast.KindBitXor:
		return num(a ^ b)
	case ast.KindSame:
		return bit(a == b), true
	case ast.KindNotSame:
		return bit(a != b), true
	case ast.KindLess:
		return bit(a < b), true
	case ast.KindLessEq:
		return bit(a <= b), true
	case ast.KindGreater:
		return bit(a > b), true
	case ast.KindGreaterEq:
		return bit(a >= b), true
	}
	return ast.Literal{}, false
}

func foldFloats(op ast.Kind, a, b float64) (ast.Literal, bool) {
	num := func(v float64) (ast.Literal, bool) { return ast.Literal{Kind: ast.LitFloat, Float: v}, true }
	switch op {
	case ast.KindPlus:
		return num(a + b)
	case ast.KindMinus:
		return num(a - b)
	case ast.KindMul:
		return num(a * b)
	case ast.KindDiv:
		if b == 0 {
			return ast.Literal{}, false
		}
		return num(a / b)
	case ast.KindSame:
		return bit(a == b), true
	case ast.KindNotSame:
		return bit(a != b), true
	case ast.KindLess:
		return bit(a < b), true
	case ast.KindLessEq:
		return bit(a <= b), true
	case ast.KindGreater:
		return bit(a > b), true
	case ast.KindGreaterEq:
		return bit(a >= b), true
	}
	return ast.Literal{}, false
}

func foldBits(op ast.Kind, a, b bool) (ast.Literal, bool) {
	switch op {
	case ast.KindLogAnd, ast.KindBitAnd:
		return bit(a && b), true
	case ast.KindLogOr, ast.KindBitOr:
		return bit(a || b), true
	case ast.KindBitXor, ast.KindNotSame:
		return bit(a != b), true
	case ast.KindSame:
		return bit(a == b), true
	}
	return ast.Literal{}, false
}

func foldStrings(op ast.Kind, a, b string) (ast.Literal, bool) {
	switch op {
	case ast.KindPlus:
		return ast.Literal{Kind: ast.LitString, Str: a + b}, true
	}
	if !op.IsComparison() {
		return ast.Literal{}, false
	}
	c := strings.Compare(a, b)
	switch op {
	case ast.KindSame:
		return bit(c == 0), true
	case ast.KindNotSame:
		return bit(c != 0), true
	case ast.KindLess:
		return bit(c < 0), true
	case ast.KindLessEq:
		return bit(c <= 0), true
	case ast.KindGreater:
		return bit(c > 0), true
	default:
		return bit(c >= 0), true
	}
}
