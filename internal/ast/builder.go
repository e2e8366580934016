package ast

import (
	"paraflow/internal/source"
)

// Builder assembles trees programmatically. Every node gets its own line so
// diagnostics in tests point at a distinct position.
type Builder struct {
	T    *Tree
	File string
	line uint32
}

func NewBuilder(file string) *Builder {
	if file == "" {
		file = "test.pf"
	}
	return &Builder{T: NewTree(0), File: file}
}

func (b *Builder) tok(text string) source.Token {
	b.line++
	return source.Token{Pos: source.Pos{File: b.File, Line: b.line, Col: 1}, Text: text}
}

// Line reports the line the last allocated node was placed on.
func (b *Builder) Line() uint32 { return b.line }

func (b *Builder) Node(kind Kind, text string, children ...NodeID) NodeID {
	return b.T.New(kind, b.tok(text), children...)
}

// With edits the attributes of n in place and returns n.
func (b *Builder) With(n NodeID, edit func(*Attrs)) NodeID {
	edit(&b.T.Get(n).Attrs)
	return n
}

func (b *Builder) Program(modules ...NodeID) NodeID {
	id := b.Node(KindProgram, "", modules...)
	b.T.Root = id
	return id
}

func (b *Builder) Module(name string, stmts ...NodeID) NodeID {
	return b.Node(KindModule, name, stmts...)
}

func (b *Builder) Include(name string) NodeID { return b.Node(KindInclude, name) }

func (b *Builder) Block(stmts ...NodeID) NodeID { return b.Node(KindCompound, "", stmts...) }

func (b *Builder) Nop() NodeID { return b.Node(KindNop, "") }

func (b *Builder) orNop(id NodeID) NodeID {
	if id.IsValid() {
		return id
	}
	return b.Nop()
}

// Type builds a type name, optionally dimensioned (array[10] of ...).
func (b *Builder) Type(name string, dim ...NodeID) NodeID {
	return b.Node(KindTypeName, name, dim...)
}

// Of builds "outer of inner of ...", e.g. Of("array", "dir", "string").
func (b *Builder) Of(names ...string) NodeID {
	if len(names) == 1 {
		return b.Type(names[0])
	}
	inner := b.Of(names[1:]...)
	return b.Node(KindTypeOf, "of", b.Type(names[0]), inner)
}

func (b *Builder) TypeDot(module, name string) NodeID {
	return b.Node(KindTypeDot, ".", b.Name(module), b.Type(name))
}

func (b *Builder) Formals(vars ...NodeID) NodeID {
	return b.Node(KindTypeTuple, "", vars...)
}

func (b *Builder) FuncType(fn FnKind, in, out NodeID) NodeID {
	id := b.Node(KindTypeFunc, fn.String(), b.orFormals(in), b.orFormals(out))
	b.T.Get(id).Attrs.Fn = fn
	return id
}

func (b *Builder) orFormals(id NodeID) NodeID {
	if id.IsValid() {
		return id
	}
	return b.Formals()
}

// Var declares name; typ and init may be NoNodeID.
func (b *Builder) Var(name string, typ, init NodeID) NodeID {
	id := b.Node(KindVarDec, name, b.orNop(typ))
	if init.IsValid() {
		b.T.AppendChild(id, init)
	}
	return id
}

// Func declares a to/flow function. in/out default to empty formals; a
// missing body makes a prototype.
func (b *Builder) Func(fn FnKind, name string, in, out, body NodeID) NodeID {
	id := b.Node(KindFuncDec, name, b.orFormals(in), b.orFormals(out), b.orNop(body))
	b.T.Get(id).Attrs.Fn = fn
	return id
}

func (b *Builder) Class(name string, parent NodeID, members ...NodeID) NodeID {
	kids := append([]NodeID{b.orNop(parent)}, members...)
	return b.Node(KindClass, name, kids...)
}

func (b *Builder) Interface(name string, parent NodeID, members ...NodeID) NodeID {
	id := b.Class(name, parent, members...)
	b.T.Get(id).Attrs.Interface = true
	return id
}

func (b *Builder) Name(name string) NodeID { return b.Node(KindNameUse, name) }

func (b *Builder) lit(l Literal, text string) NodeID {
	id := b.Node(KindLit, text)
	b.T.Get(id).Lit = l
	return id
}

func (b *Builder) Int(v int64) NodeID {
	l := Literal{Kind: LitInt, Int: v}
	return b.lit(l, l.String())
}

func (b *Builder) Float(v float64) NodeID {
	l := Literal{Kind: LitFloat, Float: v}
	return b.lit(l, l.String())
}

func (b *Builder) Str(s string) NodeID {
	l := Literal{Kind: LitString, Str: s}
	return b.lit(l, l.String())
}

func (b *Builder) Char(r rune) NodeID {
	l := Literal{Kind: LitChar, Int: int64(r)}
	return b.lit(l, l.String())
}

func (b *Builder) Bit(v bool) NodeID {
	l := Literal{Kind: LitBit}
	if v {
		l.Int = 1
	}
	return b.lit(l, l.String())
}

func (b *Builder) Nil() NodeID { return b.lit(Literal{Kind: LitNil}, "nil") }

func (b *Builder) Tuple(els ...NodeID) NodeID { return b.Node(KindTuple, "", els...) }

func (b *Builder) KeyVal(key string, val NodeID) NodeID {
	return b.Node(KindKeyVal, key, val)
}

func (b *Builder) Dot(obj NodeID, member string) NodeID {
	return b.Node(KindDot, member, obj)
}

func (b *Builder) Index(coll, idx NodeID) NodeID { return b.Node(KindIndex, "[", coll, idx) }

func (b *Builder) Call(callee NodeID, args ...NodeID) NodeID {
	return b.Node(KindCall, "(", callee, b.Tuple(args...))
}

func (b *Builder) New(typ NodeID, args ...NodeID) NodeID {
	return b.Node(KindNew, "new", typ, b.Tuple(args...))
}

func (b *Builder) Assign(lval, rval NodeID) NodeID {
	return b.Node(KindAssign, "=", lval, rval)
}

func (b *Builder) Op(kind Kind, operands ...NodeID) NodeID {
	return b.Node(kind, kind.String(), operands...)
}

func (b *Builder) If(cond, then, els NodeID) NodeID {
	id := b.Node(KindIf, "if", cond, then)
	if els.IsValid() {
		b.T.AppendChild(id, els)
	}
	return id
}

func (b *Builder) While(cond, body NodeID) NodeID { return b.Node(KindWhile, "while", cond, body) }

func (b *Builder) For(init, cond, next, body NodeID) NodeID {
	return b.Node(KindFor, "for", b.orNop(init), b.orNop(cond), b.orNop(next), body)
}

func (b *Builder) Foreach(el, coll, body NodeID) NodeID {
	return b.Node(KindForeach, "foreach", el, coll, body)
}

func (b *Builder) Para(action ParaAction, el, coll, body NodeID) NodeID {
	id := b.Node(KindPara, "para", el, coll, body)
	b.T.Get(id).Attrs.Para = action
	return id
}

func (b *Builder) Try(body, catchVar, catchBody NodeID) NodeID {
	return b.Node(KindTry, "try", body, catchVar, catchBody)
}

func (b *Builder) Return() NodeID   { return b.Node(KindReturn, "return") }
func (b *Builder) Break() NodeID    { return b.Node(KindBreak, "break") }
func (b *Builder) Continue() NodeID { return b.Node(KindContinue, "continue") }
