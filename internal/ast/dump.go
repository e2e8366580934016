package ast

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented listing of the subtree. note, when non-nil, adds
// per-node annotations (resolved type, bound variable) after the node text.
func (t *Tree) Dump(w io.Writer, root NodeID, note func(NodeID) string) error {
	bw := bufio.NewWriter(w)
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := t.Get(id)
		if n == nil {
			return
		}
		bw.WriteString(strings.Repeat("  ", depth))
		bw.WriteString(n.Kind.String())
		switch {
		case n.Kind == KindLit:
			fmt.Fprintf(bw, " %s", n.Lit)
		case n.Kind == KindCast:
			fmt.Fprintf(bw, " %s", n.Cast)
		case n.Tok.Text != "" && n.Tok.Text != n.Kind.String():
			fmt.Fprintf(bw, " %q", n.Tok.Text)
		}
		if n.Attrs.Fn != FnNone {
			fmt.Fprintf(bw, " fn=%s", n.Attrs.Fn)
		}
		if n.Kind == KindPara {
			fmt.Fprintf(bw, " action=%s", n.Attrs.Para)
		}
		if n.Attrs.Access != AccessModule {
			fmt.Fprintf(bw, " %s", n.Attrs.Access)
		}
		if n.Attrs.Const {
			bw.WriteString(" const")
		}
		if n.Attrs.Polymorphic {
			bw.WriteString(" polymorphic")
		}
		if n.Attrs.Ref {
			bw.WriteString(" ref")
		}
		if note != nil {
			if s := note(id); s != "" {
				bw.WriteString(" : ")
				bw.WriteString(s)
			}
		}
		bw.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return bw.Flush()
}
