package treeio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"paraflow/internal/ast"
)

// Encode writes a parser-shaped tree as a dump. Trees already rewritten by
// the checker can't be encoded.
func Encode(tree *ast.Tree, format Format) ([]byte, error) {
	root, err := Export(tree, tree.Root)
	if err != nil {
		return nil, err
	}
	doc := Document{Version: Version, Root: root}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(&doc)
		if err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown dump format %s", format)
}

// Export converts the subtree at id back to interchange nodes.
func Export(tree *ast.Tree, id ast.NodeID) (*Node, error) {
	n := tree.Get(id)
	if n == nil {
		return nil, fmt.Errorf("node %d does not exist", id)
	}
	switch n.Kind {
	case ast.KindCast, ast.KindStringCat, ast.KindClassAlloc:
		return nil, fmt.Errorf("%s at %s: checked trees can't be exported", n.Kind, n.Tok.Pos)
	}
	out := &Node{
		Kind:  n.Kind.String(),
		Text:  n.Tok.Text,
		Line:  n.Tok.Pos.Line,
		Col:   n.Tok.Pos.Col,
		Const: n.Attrs.Const,
		Poly:  n.Attrs.Polymorphic,
		Ref:   n.Attrs.Ref,
		Iface: n.Attrs.Interface,
	}
	if n.Attrs.Access != ast.AccessModule {
		out.Access = n.Attrs.Access.String()
	}
	if n.Attrs.Fn != ast.FnNone {
		out.Fn = n.Attrs.Fn.String()
	}
	if n.Kind == ast.KindPara {
		out.Para = n.Attrs.Para.String()
	}
	if n.Kind == ast.KindLit {
		out.Lit = n.Lit.Kind.String()
		out.Text = literalText(n.Lit)
	}
	for _, c := range n.Children {
		child, err := Export(tree, c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

func literalText(l ast.Literal) string {
	switch l.Kind {
	case ast.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case ast.LitString:
		return l.Str
	case ast.LitChar:
		return string(rune(l.Int))
	case ast.LitBit:
		return strconv.FormatBool(l.Int != 0)
	}
	return "nil"
}
