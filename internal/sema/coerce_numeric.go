package sema

import (
	"fortio.org/safecast"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

// castNumeric converts between numeric widths. Integer literals are
// converted at compile time: the value is range-checked against the
// destination and a new literal replaces the old one.
func (tc *typeChecker) castNumeric(id ast.NodeID, dest *types.Type) (ast.NodeID, error) {
	n := tc.node(id)
	if n.Kind != ast.KindLit {
		return tc.cast(id, ast.CastNumeric, dest), nil
	}
	dk := tc.kind(dest)
	l := n.Lit
	if types.IsFloat(dk) {
		switch l.Kind {
		case ast.LitInt, ast.LitChar, ast.LitBit:
			return tc.replaceLit(id, ast.Literal{Kind: ast.LitFloat, Float: float64(l.Int)}, dest), nil
		case ast.LitFloat:
			return tc.replaceLit(id, l, dest), nil
		}
	}
	if l.Kind == ast.LitFloat {
		// float to integer truncates at run time
		return tc.cast(id, ast.CastNumeric, dest), nil
	}
	if !fitsKind(l.Int, dk) {
		return id, diag.Errorf(diag.RngOverflow, n.Tok, "%s out of range for %s", n.Tok.Text, tc.format(dest))
	}
	out := ast.Literal{Kind: ast.LitInt, Int: l.Int}
	switch dk {
	case types.BaseBit:
		out.Kind = ast.LitBit
	case types.BaseChar:
		out.Kind = ast.LitChar
	}
	return tc.replaceLit(id, out, dest), nil
}

// fitsKind reports whether v is representable in the integer kind k.
func fitsKind(v int64, k types.BaseKind) bool {
	var err error
	switch k {
	case types.BaseBit:
		return v == 0 || v == 1
	case types.BaseByte:
		_, err = safecast.Conv[int8](v)
	case types.BaseChar:
		_, err = safecast.Conv[uint8](v)
	case types.BaseShort:
		_, err = safecast.Conv[int16](v)
	case types.BaseInt:
		_, err = safecast.Conv[int32](v)
	}
	return err == nil
}
