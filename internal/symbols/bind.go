package symbols

import (
	"sort"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/types"
)

type binder struct {
	tree *ast.Tree
	t    *Table
}

// Bind resolves a tree whose scopes were assigned by AssignScopes. Steps run
// over the whole tree in order and the first error aborts:
//
//   - class names are declared so type syntax can refer to them
//   - included modules export their public types
//   - type syntax is evaluated into types attached to the nodes
//   - superclasses are linked with a cycle check, before any field exists
//   - variables, functions, methods (with self/parent scopes) are declared
//   - included modules export their public variables
//   - every name use is bound to its variable
func Bind(tree *ast.Tree, t *Table) error {
	b := &binder{tree: tree, t: t}
	steps := []func() error{
		b.declareClasses,
		b.importTypes,
		b.evalTypes,
		b.linkParents,
		b.declareVars,
		b.importVars,
		b.resolveNames,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// visit walks the tree in pre-order until fn fails. descend=false skips children.
func (b *binder) visit(fn func(id ast.NodeID, n *ast.Node) (descend bool, err error)) error {
	var walk func(id ast.NodeID) error
	walk = func(id ast.NodeID) error {
		n := b.tree.Get(id)
		if n == nil {
			return nil
		}
		descend, err := fn(id, n)
		if err != nil || !descend {
			return err
		}
		for i := 0; i < len(b.tree.Children(id)); i++ {
			if err := walk(b.tree.Child(id, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(b.tree.Root)
}

func (b *binder) scopeOf(id ast.NodeID) ast.ScopeID {
	if sc := b.tree.ScopeOf(id); sc.IsValid() {
		return sc
	}
	return b.t.Root
}

// outerScope is the scope a scoped declaration is registered in.
func (b *binder) outerScope(id ast.NodeID) ast.ScopeID {
	return b.scopeOf(b.tree.Parent(id))
}

func (b *binder) declareClasses() error {
	u := b.t.Universe
	return b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		if n.Kind != ast.KindClass {
			return true, nil
		}
		base := b.t.AddType(b.outerScope(id), n.Tok.Text)
		bt := u.Get(base)
		bt.Kind = types.BaseClass
		bt.IsClass = !n.Attrs.Interface
		if n.Attrs.Interface {
			bt.Kind = types.BaseInterface
			bt.IsInterface = true
		}
		bt.NeedsCleanup = true
		bt.Access = n.Attrs.Access
		bt.Scope = n.Scope
		bt.Decl = id
		if sc := b.t.Scope(n.Scope); sc != nil {
			sc.Class = base
		}
		b.t.setBase(id, base)
		return true, nil
	})
}

// includes lists every include node, failing on unknown modules.
func (b *binder) includes() ([]ast.NodeID, error) {
	var out []ast.NodeID
	err := b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		if n.Kind != ast.KindInclude {
			return true, nil
		}
		if _, ok := b.t.Modules[n.Tok.Text]; !ok {
			return false, diag.Errorf(diag.LkpUnknownModule, n.Tok, "undefined module %s", n.Tok.Text)
		}
		out = append(out, id)
		return false, nil
	})
	return out, err
}

func (b *binder) importTypes() error {
	incs, err := b.includes()
	if err != nil {
		return err
	}
	u := b.t.Universe
	for _, inc := range incs {
		from := b.t.Scope(b.t.Modules[b.tree.Get(inc).Tok.Text])
		into := b.t.Scope(b.scopeOf(inc))
		if from == into {
			continue
		}
		for _, name := range sortedKeys(from.Types) {
			base := from.Types[name]
			if !u.Get(base).Access.Exported() {
				continue
			}
			if _, local := into.Types[name]; !local {
				into.Types[name] = base
			}
		}
	}
	return nil
}

func (b *binder) importVars() error {
	incs, err := b.includes()
	if err != nil {
		return err
	}
	for _, inc := range incs {
		from := b.t.Scope(b.t.Modules[b.tree.Get(inc).Tok.Text])
		into := b.t.Scope(b.scopeOf(inc))
		if from == into {
			continue
		}
		for _, name := range sortedKeys(from.Vars) {
			v := b.t.Var(from.Vars[name])
			if v.Module != from.Module || !v.Access.Exported() {
				continue
			}
			if _, local := into.Vars[name]; !local {
				into.Vars[name] = from.Vars[name]
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *binder) linkParents() error {
	u := b.t.Universe
	return b.visit(func(id ast.NodeID, n *ast.Node) (bool, error) {
		if n.Kind != ast.KindClass {
			return true, nil
		}
		slot := b.tree.Child(id, 0)
		if b.tree.Kind(slot) == ast.KindNop || !slot.IsValid() {
			return true, nil
		}
		base := b.t.BaseOf(id)
		parent := b.t.TypeOf(slot).Base
		pb := u.Get(parent)
		if pb == nil || !(pb.IsClass || pb.IsInterface) {
			return false, diag.Errorf(diag.StrBadShape, n.Tok, "%s cannot extend %s", n.Tok.Text, u.Name(parent))
		}
		if pb.IsInterface != n.Attrs.Interface {
			return false, diag.Errorf(diag.StrBadShape, n.Tok, "%s and %s must both be classes or both interfaces", n.Tok.Text, pb.Name)
		}
		if u.WouldCycle(base, parent) {
			return false, diag.Errorf(diag.StrInheritCycle, n.Tok, "class %s inherits from itself", n.Tok.Text)
		}
		u.Get(base).Parent = parent
		return true, nil
	})
}
