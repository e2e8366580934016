package treeio

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"paraflow/internal/ast"
	"paraflow/internal/diag"
	"paraflow/internal/source"
)

// Decode parses a dump and builds the tree. file names the dump in
// diagnostics.
func Decode(data []byte, format Format, file string) (*ast.Tree, error) {
	var doc Document
	at := source.Token{Pos: source.Pos{File: file}}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, diag.Errorf(diag.IODecodeFailed, at, "can't decode yaml: %v", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &doc); err != nil {
			return nil, diag.Errorf(diag.IODecodeFailed, at, "can't decode msgpack: %v", err)
		}
	default:
		return nil, diag.Errorf(diag.IODecodeFailed, at, "unknown dump format")
	}
	if doc.Version != Version {
		return nil, diag.Errorf(diag.IODecodeFailed, at, "unsupported dump version %d (want %d)", doc.Version, Version)
	}
	if doc.Root == nil {
		return nil, diag.Errorf(diag.IODecodeFailed, at, "dump has no root")
	}
	return Build(doc.Root, file)
}

// Load decodes a file already held by the file set.
func Load(fs *source.FileSet, id source.FileID) (*ast.Tree, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, diag.Errorf(diag.IOReadFailed, source.Token{}, "file %d is not loaded", id)
	}
	return Decode(f.Content, FormatOf(f.Path), f.Path)
}

// Build turns a decoded node tree into an ast.Tree rooted at a program.
func Build(root *Node, file string) (*ast.Tree, error) {
	b := &builder{tree: ast.NewTree(0), file: file}
	id, err := b.node(root)
	if err != nil {
		return nil, err
	}
	if k := b.tree.Kind(id); k != ast.KindProgram {
		return nil, diag.Errorf(diag.StrBadShape, b.tree.Get(id).Tok, "tree root must be a program, got %s", k)
	}
	b.tree.Root = id
	return b.tree, nil
}

type builder struct {
	tree *ast.Tree
	file string
}

func (b *builder) node(n *Node) (ast.NodeID, error) {
	if n == nil {
		return ast.NoNodeID, diag.Errorf(diag.StrBadShape, source.Token{Pos: source.Pos{File: b.file}}, "empty node")
	}
	tok := source.Token{Pos: source.Pos{File: b.file, Line: n.Line, Col: n.Col}, Text: n.Text}
	kind, ok := ast.ParseKind(n.Kind)
	if !ok {
		return ast.NoNodeID, diag.Errorf(diag.StrUnknownKind, tok, "unknown node kind %q", n.Kind)
	}
	switch kind {
	case ast.KindCast, ast.KindStringCat, ast.KindClassAlloc:
		return ast.NoNodeID, diag.Errorf(diag.StrUnknownKind, tok, "%s nodes are produced by the checker, not the parser", kind)
	}

	kids := make([]ast.NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		id, err := b.node(c)
		if err != nil {
			return ast.NoNodeID, err
		}
		kids = append(kids, id)
	}
	id := b.tree.New(kind, tok, kids...)
	nd := b.tree.Get(id)
	if err := attrs(&nd.Attrs, n); err != nil {
		return ast.NoNodeID, diag.Errorf(diag.StrBadShape, tok, "%v", err)
	}
	if kind == ast.KindLit {
		lit, err := literal(n)
		if err != nil {
			return ast.NoNodeID, diag.Errorf(diag.StrBadShape, tok, "%v", err)
		}
		nd.Lit = lit
	}
	return id, nil
}

func attrs(a *ast.Attrs, n *Node) error {
	var err error
	if a.Access, err = ast.ParseAccess(n.Access); err != nil {
		return err
	}
	if a.Fn, err = ast.ParseFnKind(n.Fn); err != nil {
		return err
	}
	if a.Para, err = ast.ParseParaAction(n.Para); err != nil {
		return err
	}
	a.Const = n.Const
	a.Polymorphic = n.Poly
	a.Ref = n.Ref
	a.Interface = n.Iface
	return nil
}

// literal parses the value in Text according to the literal kind.
func literal(n *Node) (ast.Literal, error) {
	kind, err := ast.ParseLitKind(n.Lit)
	if err != nil || kind == ast.LitNone {
		return ast.Literal{}, errors.New("lit node needs a literal kind")
	}
	l := ast.Literal{Kind: kind}
	switch kind {
	case ast.LitInt:
		l.Int, err = strconv.ParseInt(n.Text, 0, 64)
	case ast.LitFloat:
		l.Float, err = strconv.ParseFloat(n.Text, 64)
	case ast.LitString:
		l.Str = n.Text
	case ast.LitChar:
		r, size := utf8.DecodeRuneInString(n.Text)
		if r == utf8.RuneError || size != len(n.Text) {
			return l, errors.New("char literal must be exactly one character")
		}
		l.Int = int64(r)
	case ast.LitBit:
		var v bool
		v, err = strconv.ParseBool(n.Text)
		if v {
			l.Int = 1
		}
	}
	if err != nil {
		return l, errors.New("bad " + kind.String() + " literal " + strconv.Quote(n.Text))
	}
	return l, nil
}
