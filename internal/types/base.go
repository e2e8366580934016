package types

import (
	"fmt"

	"paraflow/internal/ast"
)

// BaseID uniquely identifies a nominal type inside the Universe.
type BaseID uint32

// NoBaseID marks the absence of a base type.
const NoBaseID BaseID = 0

func (id BaseID) IsValid() bool { return id != NoBaseID }

// BaseKind enumerates the nominal families.
type BaseKind uint8

const (
	BaseInvalid BaseKind = iota
	BaseBit
	BaseByte
	BaseShort
	BaseInt
	BaseLong
	BaseFloat
	BaseDouble
	BaseChar
	BaseString
	BaseDynString
	BaseArray
	BaseDir
	BaseVar
	BaseNil
	BaseVoid
	BaseTo
	BaseFlow
	BaseMethod
	BaseOperator
	BaseToPtr
	BaseFlowPtr
	BaseTuple
	BaseModule
	BaseClass
	BaseInterface
)

func (k BaseKind) String() string {
	switch k {
	case BaseBit:
		return "bit"
	case BaseByte:
		return "byte"
	case BaseShort:
		return "short"
	case BaseInt:
		return "int"
	case BaseLong:
		return "long"
	case BaseFloat:
		return "float"
	case BaseDouble:
		return "double"
	case BaseChar:
		return "char"
	case BaseString:
		return "string"
	case BaseDynString:
		return "dyString"
	case BaseArray:
		return "array"
	case BaseDir:
		return "dir"
	case BaseVar:
		return "var"
	case BaseNil:
		return "nil"
	case BaseVoid:
		return "void"
	case BaseTo:
		return "to"
	case BaseFlow:
		return "flow"
	case BaseMethod:
		return "method"
	case BaseOperator:
		return "operator"
	case BaseToPtr:
		return "toPt"
	case BaseFlowPtr:
		return "flowPt"
	case BaseTuple:
		return "tuple"
	case BaseModule:
		return "module"
	case BaseClass:
		return "class"
	case BaseInterface:
		return "interface"
	default:
		return fmt.Sprintf("BaseKind(%d)", k)
	}
}

// Method is a function declared inside a class body.
type Method struct {
	Name        string
	Type        *Type
	Polymorphic bool
	Decl        ast.NodeID
}

// PolyFunRef maps a polymorphic method to its dispatch slot. Impl is the
// class whose body supplies the implementation used by the owning class.
type PolyFunRef struct {
	Name string
	Slot int
	Impl BaseID
}

// BaseType is the nominal identity shared by every Type built on it.
type BaseType struct {
	Name   string
	Module string
	Kind   BaseKind
	// Parent is the single superclass, or NoBaseID.
	Parent BaseID

	IsCollection bool
	IsClass      bool
	IsInterface  bool
	// NeedsCleanup is false for value kinds and plain strings.
	NeedsCleanup bool

	// Fields is finalized by blessing: ancestors' fields first.
	Fields  []*Type
	Methods []Method
	Access  ast.Access
	Scope   ast.ScopeID
	Decl    ast.NodeID

	// KeyBase is the implicit index type of a collection.
	KeyBase BaseID

	Poly    []PolyFunRef
	HasInit bool
	Blessed bool
}

// Field returns the index of the named field in the finalized field list.
func (b *BaseType) Field(name string) (int, *Type) {
	for i, f := range b.Fields {
		if f.Name == name {
			return i, f
		}
	}
	return -1, nil
}

// LocalMethod looks up a method declared in this class body only.
func (b *BaseType) LocalMethod(name string) *Method {
	for i := range b.Methods {
		if b.Methods[i].Name == name {
			return &b.Methods[i]
		}
	}
	return nil
}

// Slot returns the dispatch slot assigned to name, or -1.
func (b *BaseType) Slot(name string) int {
	for _, p := range b.Poly {
		if p.Name == name {
			return p.Slot
		}
	}
	return -1
}

// IsFunction reports kinds whose Type layout is [inputs, outputs].
func (k BaseKind) IsFunction() bool {
	return k >= BaseTo && k <= BaseFlowPtr
}

func (k BaseKind) IsFuncPtr() bool { return k == BaseToPtr || k == BaseFlowPtr }

func (k BaseKind) IsString() bool { return k == BaseString || k == BaseDynString }
