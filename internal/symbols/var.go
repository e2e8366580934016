package symbols

import (
	"paraflow/internal/ast"
	"paraflow/internal/source"
	"paraflow/internal/types"
)

// VarKind classifies what a variable names.
type VarKind uint8

const (
	VarVariable VarKind = iota
	VarFunction
	VarField
	VarMethod
	VarSelf
	VarParent
	VarModule
)

func (k VarKind) String() string {
	switch k {
	case VarFunction:
		return "function"
	case VarField:
		return "field"
	case VarMethod:
		return "method"
	case VarSelf:
		return "self"
	case VarParent:
		return "parent"
	case VarModule:
		return "module"
	default:
		return "variable"
	}
}

// Taint is the locality state of a variable. The only legal transition is
// Clean -> Tainted.
type Taint uint8

const (
	Clean Taint = iota
	Tainted
)

func (t Taint) String() string {
	if t == Tainted {
		return "tainted"
	}
	return "clean"
}

type Var struct {
	Name   string
	Tok    source.Token
	Scope  ast.ScopeID
	Type   *types.Type
	Decl   ast.NodeID
	Access ast.Access
	Const  bool
	Kind   VarKind
	Module string
	// ConstFolded is set when the initializer of a const folded to a literal.
	ConstFolded bool

	taint Taint
}

func (v *Var) Taint() Taint { return v.taint }

// MarkTainted moves the variable to Tainted. It reports whether the state changed.
func (v *Var) MarkTainted() bool {
	if v.taint == Tainted {
		return false
	}
	v.taint = Tainted
	return true
}

// IsCallable reports function-like variables.
func (v *Var) IsCallable() bool {
	return v.Kind == VarFunction || v.Kind == VarMethod
}
