package driver

import (
	"fmt"
	"io"
	"strings"

	"paraflow/internal/ast"
	"paraflow/internal/types"
)

// DumpTree prints the checked tree with the resolved type and bound
// variable of every node.
func DumpTree(w io.Writer, res *Result) error {
	if res.Tree == nil || res.Table == nil {
		return fmt.Errorf("%s: no tree to dump", res.Path)
	}
	tab := res.Table
	note := func(id ast.NodeID) string {
		var parts []string
		if t := tab.TypeOf(id); t != nil {
			parts = append(parts, tab.Format(t))
		}
		if v := tab.VarOf(id); v.IsValid() {
			if vr := tab.Var(v); vr != nil {
				parts = append(parts, "var "+vr.Name)
			}
		}
		return strings.Join(parts, ", ")
	}
	return res.Tree.Dump(w, res.Tree.Root, note)
}

// DumpClasses prints finalized field lists and dispatch tables of every
// class and interface.
func DumpClasses(w io.Writer, res *Result) error {
	if res.Table == nil {
		return fmt.Errorf("%s: no symbols to dump", res.Path)
	}
	u := res.Table.Universe
	for id := types.BaseID(1); int(id) <= u.Len(); id++ {
		bt := u.Get(id)
		if bt == nil || (!bt.IsClass && !bt.IsInterface) {
			continue
		}
		kind := "class"
		if bt.IsInterface {
			kind = "interface"
		}
		header := fmt.Sprintf("%s %s.%s", kind, bt.Module, bt.Name)
		if bt.Parent.IsValid() {
			header += " : " + u.Name(bt.Parent)
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		for _, f := range bt.Fields {
			if _, err := fmt.Fprintf(w, "  field %s %s\n", f.Name, u.Format(f)); err != nil {
				return err
			}
		}
		for _, p := range bt.Poly {
			if _, err := fmt.Fprintf(w, "  slot %d %s <- %s\n", p.Slot, p.Name, u.Name(p.Impl)); err != nil {
				return err
			}
		}
	}
	return nil
}
