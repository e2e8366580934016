package ast

type (
	// NodeID addresses a node in a Tree arena.
	NodeID uint32
	// ScopeID addresses a scope in the compilation-wide scope arena.
	ScopeID uint32
	// VarID addresses a variable in the compilation-wide var arena.
	VarID uint32
)

const (
	NoNodeID  NodeID  = 0
	NoScopeID ScopeID = 0
	NoVarID   VarID   = 0
)

func (id NodeID) IsValid() bool  { return id != NoNodeID }
func (id ScopeID) IsValid() bool { return id != NoScopeID }
func (id VarID) IsValid() bool   { return id != NoVarID }
