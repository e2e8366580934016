package ast

import (
	"fmt"

	"paraflow/internal/source"
)

// Tree owns every node of one compilation. Nodes are never freed; rewrites
// allocate a replacement and rebind the parent's child slot.
type Tree struct {
	nodes *Arena[Node]
	Root  NodeID
}

func NewTree(capHint uint) *Tree {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Tree{nodes: NewArena[Node](capHint)}
}

// New allocates a node and adopts children.
func (t *Tree) New(kind Kind, tok source.Token, children ...NodeID) NodeID {
	kids := make([]NodeID, len(children))
	copy(kids, children)
	id := NodeID(t.nodes.Allocate(Node{Kind: kind, Tok: tok, Children: kids}))
	for _, c := range kids {
		if n := t.nodes.Get(uint32(c)); n != nil {
			n.Parent = id
		}
	}
	return id
}

// Get returns the node or nil. The pointer is invalidated by the next New.
func (t *Tree) Get(id NodeID) *Node {
	return t.nodes.Get(uint32(id))
}

func (t *Tree) Len() uint32 { return t.nodes.Len() }

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Get(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Get(id); n != nil {
		return n.Children
	}
	return nil
}

// Child returns the i-th child or NoNodeID.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.Get(id)
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Get(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

func (t *Tree) SetChild(parent NodeID, i int, child NodeID) {
	p := t.Get(parent)
	if p == nil || i < 0 || i >= len(p.Children) {
		panic(fmt.Sprintf("ast: child slot %d of node %d out of range", i, parent))
	}
	p.Children[i] = child
	if c := t.Get(child); c != nil {
		c.Parent = parent
	}
}

func (t *Tree) AppendChild(parent, child NodeID) {
	p := t.Get(parent)
	if p == nil {
		panic(fmt.Sprintf("ast: append to missing node %d", parent))
	}
	p.Children = append(p.Children, child)
	if c := t.Get(child); c != nil {
		c.Parent = parent
	}
}

// SetChildren replaces the whole child list and adopts the new children.
func (t *Tree) SetChildren(parent NodeID, children []NodeID) {
	p := t.Get(parent)
	if p == nil {
		panic(fmt.Sprintf("ast: missing node %d", parent))
	}
	p.Children = children
	for _, c := range children {
		if n := t.Get(c); n != nil {
			n.Parent = parent
		}
	}
}

// Replace puts repl into the child slot old occupies. old is detached and
// keeps no parent; repl takes over old's parent (and the root, if old was it).
func (t *Tree) Replace(old, repl NodeID) {
	if old == repl {
		return
	}
	o := t.Get(old)
	if o == nil {
		return
	}
	parent := o.Parent
	o.Parent = NoNodeID
	if t.Root == old {
		t.Root = repl
	}
	if p := t.Get(parent); p != nil {
		for i, c := range p.Children {
			if c == old {
				p.Children[i] = repl
				break
			}
		}
	}
	if r := t.Get(repl); r != nil {
		r.Parent = parent
	}
}

// Wrap allocates kind(child) in child's place and returns the wrapper.
func (t *Tree) Wrap(child NodeID, kind Kind, tok source.Token) NodeID {
	parent := t.Parent(child)
	w := t.nodes.Allocate(Node{Kind: kind, Tok: tok, Parent: parent})
	id := NodeID(w)
	if t.Root == child {
		t.Root = id
	}
	if p := t.Get(parent); p != nil {
		for i, c := range p.Children {
			if c == child {
				p.Children[i] = id
				break
			}
		}
	}
	t.Get(id).Children = []NodeID{child}
	t.Get(child).Parent = id
	return id
}

// ScopeOf returns the innermost scope enclosing id, id itself included.
func (t *Tree) ScopeOf(id NodeID) ScopeID {
	for id.IsValid() {
		n := t.Get(id)
		if n == nil {
			break
		}
		if n.Scope.IsValid() {
			return n.Scope
		}
		id = n.Parent
	}
	return NoScopeID
}

// Enclosing returns the nearest proper ancestor of id with the given kind.
func (t *Tree) Enclosing(id NodeID, kinds ...Kind) NodeID {
	for id = t.Parent(id); id.IsValid(); id = t.Parent(id) {
		k := t.Kind(id)
		for _, want := range kinds {
			if k == want {
				return id
			}
		}
	}
	return NoNodeID
}

// Inspect walks the subtree in pre-order. Returning false from fn skips the
// node's children. The child list is re-read after fn returns so that fn may
// rewrite the node's children.
func (t *Tree) Inspect(root NodeID, fn func(NodeID) bool) {
	if !root.IsValid() {
		return
	}
	if !fn(root) {
		return
	}
	for i := 0; i < len(t.Children(root)); i++ {
		t.Inspect(t.Child(root, i), fn)
	}
}
