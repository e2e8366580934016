package ast

import (
	"strings"
	"testing"
)

func TestWrapRebindsParentSlot(t *testing.T) {
	b := NewBuilder("")
	lit := b.Int(7)
	v := b.Var("x", b.Type("long"), lit)
	b.Program(b.Module("m", v))

	cast := b.T.Wrap(lit, KindCast, b.T.Get(lit).Tok)
	if got := b.T.Child(v, 1); got != cast {
		t.Fatalf("init slot holds %d, want cast %d", got, cast)
	}
	if b.T.Parent(cast) != v {
		t.Fatalf("cast parent = %d, want %d", b.T.Parent(cast), v)
	}
	if b.T.Parent(lit) != cast || b.T.Child(cast, 0) != lit {
		t.Fatalf("literal not adopted by cast")
	}
}

func TestReplaceDetachesOldNode(t *testing.T) {
	b := NewBuilder("")
	old := b.Int(1)
	tup := b.Tuple(old, b.Int(2))
	repl := b.Int(3)

	b.T.Replace(old, repl)
	if b.T.Child(tup, 0) != repl {
		t.Fatalf("slot not rebound")
	}
	if b.T.Parent(old).IsValid() {
		t.Fatalf("old node still has a parent")
	}
	for _, c := range b.T.Children(tup) {
		if c == old {
			t.Fatalf("old node still reachable from tuple")
		}
	}
}

func TestWrapRoot(t *testing.T) {
	b := NewBuilder("")
	root := b.Program()
	w := b.T.Wrap(root, KindCompound, b.T.Get(root).Tok)
	if b.T.Root != w {
		t.Fatalf("root = %d, want %d", b.T.Root, w)
	}
}

func TestScopeOfClimbsToNearestScopedNode(t *testing.T) {
	b := NewBuilder("")
	use := b.Name("y")
	blk := b.Block(b.Assign(use, b.Int(1)))
	mod := b.Module("m", blk)
	b.T.Get(mod).Scope = 1
	if got := b.T.ScopeOf(use); got != 1 {
		t.Fatalf("ScopeOf = %d, want 1", got)
	}
	b.T.Get(blk).Scope = 2
	if got := b.T.ScopeOf(use); got != 2 {
		t.Fatalf("ScopeOf = %d, want 2", got)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	b := NewBuilder("")
	inner := b.Block(b.Name("a"))
	root := b.Block(inner, b.Name("b"))

	var names []string
	b.T.Inspect(root, func(id NodeID) bool {
		if b.T.Kind(id) == KindNameUse {
			names = append(names, b.T.Get(id).Tok.Text)
		}
		return id != inner
	})
	if len(names) != 1 || names[0] != "b" {
		t.Fatalf("visited %v, want [b]", names)
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for k := KindProgram; k < kindCount; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("invalid"); ok {
		t.Fatalf("invalid must not parse")
	}
}

func TestDumpShowsAttrsAndNotes(t *testing.T) {
	b := NewBuilder("")
	fn := b.Func(FnFlow, "f", NoNodeID, NoNodeID, b.Block())
	b.With(fn, func(a *Attrs) { a.Polymorphic = true })

	var sb strings.Builder
	if err := b.T.Dump(&sb, fn, func(id NodeID) string {
		if id == fn {
			return "flow"
		}
		return ""
	}); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(sb.String(), "\n", 2)[0]
	if first != `func "f" fn=flow polymorphic : flow` {
		t.Fatalf("unexpected dump line %q", first)
	}
}
