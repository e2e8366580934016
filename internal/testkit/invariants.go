package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"paraflow/internal/ast"
	"paraflow/internal/symbols"
)

// CheckTreeInvariants runs a minimal set of structural checks on a tree that
// went through the whole pipeline:
// 1) every reachable node is reached once and points back at its parent
// 2) scoped kinds carry a scope after AssignScopes
// 3) every cast has exactly one operand and a recorded target type
func CheckTreeInvariants(tree *ast.Tree, tab *symbols.Table) error {
	if tree == nil || tab == nil {
		return fmt.Errorf("nil tree or table")
	}
	if p := tree.Parent(tree.Root); p.IsValid() {
		return fmt.Errorf("root %d has parent %d", tree.Root, p)
	}

	seen := make(map[ast.NodeID]struct{}, tree.Len())
	var walkErr error
	tree.Inspect(tree.Root, func(id ast.NodeID) bool {
		if walkErr != nil {
			return false
		}
		if _, dup := seen[id]; dup {
			walkErr = fmt.Errorf("node %d is reachable twice", id)
			return false
		}
		seen[id] = struct{}{}
		n := tree.Get(id)
		if n == nil {
			walkErr = fmt.Errorf("dangling node id %d", id)
			return false
		}
		for _, c := range n.Children {
			if got := tree.Parent(c); got != id {
				walkErr = fmt.Errorf("%s %d: child %d points at parent %d", n.Kind, id, c, got)
				return false
			}
		}
		if n.Kind.IsScoped() && !n.Scope.IsValid() {
			walkErr = fmt.Errorf("%s %d has no scope", n.Kind, id)
			return false
		}
		if n.Kind == ast.KindCast {
			if len(n.Children) != 1 {
				walkErr = fmt.Errorf("cast %d has %d operands", id, len(n.Children))
				return false
			}
			if tab.TypeOf(id) == nil {
				walkErr = fmt.Errorf("cast %d has no target type", id)
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	// 4) the walk stays inside the arena
	reached, err := safecast.Conv[uint32](len(seen))
	if err != nil {
		return fmt.Errorf("node count overflow: %w", err)
	}
	if reached > tree.Len() {
		return fmt.Errorf("reached %d nodes, arena holds %d", reached, tree.Len())
	}
	return nil
}
