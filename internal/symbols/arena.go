package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"paraflow/internal/ast"
	"paraflow/internal/types"
)

// Scopes stores all allocated scopes in a compact slice-based arena. It is
// the whole-program scope list: append-only, iterated by later passes.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID. Module and locality are
// inherited from the parent.
func (s *Scopes) New(kind ScopeKind, parent ast.ScopeID, node ast.NodeID) ast.ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ast.ScopeID(value)
	sc := Scope{
		Kind:   kind,
		Parent: parent,
		Types:  make(map[string]types.BaseID),
		Vars:   make(map[string]ast.VarID),
		Node:   node,
	}
	if p := s.Get(parent); p != nil {
		sc.Module = p.Module
		sc.IsLocal = p.IsLocal
	}
	switch kind {
	case ScopeFunction, ScopePara:
		sc.IsLocal = true
	case ScopeClass, ScopeModule, ScopeRoot:
		sc.IsLocal = false
	}
	s.data = append(s.data, sc)
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ast.ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Data exposes the underlying slice without the sentinel.
func (s *Scopes) Data() []Scope {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}

// Vars stores declared variables in a compact arena.
type Vars struct {
	data []Var
}

func NewVars(capacity uint32) *Vars {
	if capacity == 0 {
		capacity = 64
	}
	return &Vars{
		data: make([]Var, 1, capacity+1), // index 0 reserved for NoVarID
	}
}

func (s *Vars) New(v Var) ast.VarID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("vars arena overflow: %w", err))
	}
	s.data = append(s.data, v)
	return ast.VarID(value)
}

// Get returns a var pointer or nil for invalid ID.
func (s *Vars) Get(id ast.VarID) *Var {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Vars) Len() int { return len(s.data) - 1 }
