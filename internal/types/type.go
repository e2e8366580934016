package types

import (
	"strings"

	"paraflow/internal/ast"
)

// Type is a structural type expression: a base plus ordered children.
//
//	collection  [elem]
//	function    [inputs tuple, outputs tuple]
//	tuple       members
//
// Name, Access, Const, Ref and Default describe the slot the type sits in
// when it is a formal or a field.
type Type struct {
	Base     BaseID
	Children []*Type

	Name    string
	Access  ast.Access
	Const   bool
	Ref     bool
	Default ast.NodeID
	// Dim is the fixed dimension expression of a sized array.
	Dim ast.NodeID
}

func New(base BaseID, children ...*Type) *Type {
	return &Type{Base: base, Children: children}
}

// Clone copies the whole type tree; types are never shared between owners.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	if len(t.Children) > 0 {
		c.Children = make([]*Type, len(t.Children))
		for i, ch := range t.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Named returns a clone carrying a slot name.
func (t *Type) Named(name string) *Type {
	c := t.Clone()
	c.Name = name
	return c
}

// Equal compares bases and children pairwise; slot metadata is ignored.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Base != b.Base || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Elem returns the element type of a collection.
func (t *Type) Elem() *Type {
	if t == nil || len(t.Children) == 0 {
		return nil
	}
	return t.Children[0]
}

// Inputs returns the input tuple of a function type.
func (t *Type) Inputs() *Type {
	if t == nil || len(t.Children) < 1 {
		return nil
	}
	return t.Children[0]
}

// Outputs returns the output tuple of a function type.
func (t *Type) Outputs() *Type {
	if t == nil || len(t.Children) < 2 {
		return nil
	}
	return t.Children[1]
}

// SameSignature reports equal input and output tuples.
func SameSignature(a, b *Type) bool {
	return Equal(a.Inputs(), b.Inputs()) && Equal(a.Outputs(), b.Outputs())
}

// Format renders a type the way diagnostics print it.
func (u *Universe) Format(t *Type) string {
	if t == nil {
		return "<untyped>"
	}
	var sb strings.Builder
	u.format(&sb, t)
	return sb.String()
}

func (u *Universe) format(sb *strings.Builder, t *Type) {
	kind := u.Kind(t.Base)
	switch {
	case kind == BaseTuple:
		sb.WriteByte('(')
		for i, ch := range t.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			if ch.Name != "" {
				sb.WriteString(ch.Name)
				sb.WriteByte(':')
			}
			u.format(sb, ch)
		}
		sb.WriteByte(')')
	case kind.IsFunction() && len(t.Children) == 2:
		sb.WriteString(u.Name(t.Base))
		sb.WriteByte(' ')
		u.format(sb, t.Children[0])
		sb.WriteString(" into ")
		u.format(sb, t.Children[1])
	case len(t.Children) == 1 && u.Get(t.Base) != nil && u.Get(t.Base).IsCollection:
		sb.WriteString(u.Name(t.Base))
		sb.WriteString(" of ")
		u.format(sb, t.Children[0])
	default:
		if b := u.Get(t.Base); b != nil && b.Module != "" && (b.IsClass || b.IsInterface) {
			sb.WriteString(b.Module)
			sb.WriteByte('.')
		}
		sb.WriteString(u.Name(t.Base))
	}
}
