package symbols

import (
	"paraflow/internal/ast"
	"paraflow/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeRoot               // builtins and module names
	ScopeModule             // module-level declarations
	ScopeFunction           // formals of a function
	ScopeBlock              // compound, for, foreach, try
	ScopeClass              // fields and methods
	ScopePara               // element variable of a para construct
	ScopeSelf               // synthesized self/parent of a method
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeClass:
		return "class"
	case ScopePara:
		return "para"
	case ScopeSelf:
		return "self"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind     ScopeKind
	Parent   ast.ScopeID
	Children []ast.ScopeID
	Types    map[string]types.BaseID
	Vars     map[string]ast.VarID
	// Order lists vars in declaration order.
	Order []ast.VarID
	// Class is set on class scopes.
	Class  types.BaseID
	Module string
	// IsLocal is true for scopes inside a function or para body.
	IsLocal bool
	Node    ast.NodeID
}
