package diag

import (
	"errors"
	"fmt"
	"testing"

	"paraflow/internal/source"
)

func TestErrorFormat(t *testing.T) {
	tok := source.Token{Pos: source.Pos{File: "a.pf", Line: 3, Col: 7}, Text: "foo"}
	err := Errorf(LkpUndefined, tok, "undefined %s", "foo")
	want := "a.pf:3:7: error[LKP1001]: undefined foo (near 'foo')"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	if err.Category() != LookupError {
		t.Fatalf("category = %s", err.Category())
	}
}

func TestAsErrorThroughWrap(t *testing.T) {
	inner := Errorf(LocalityTaintedWrite, source.Token{}, "x is tainted")
	wrapped := fmt.Errorf("check m.pf: %w", inner)
	de, ok := AsError(wrapped)
	if !ok || de != inner {
		t.Fatalf("AsError did not find wrapped error")
	}
	if CodeOf(errors.New("plain")) != UnknownCode {
		t.Fatalf("plain errors have no code")
	}
}

func TestCategoriesAreDistinct(t *testing.T) {
	cases := map[Code]Category{
		LkpPrivate:            LookupError,
		TypExpectSingle:       TypeMismatchError,
		RngOverflow:           CoercionRangeError,
		StrInheritCycle:       StructureError,
		LocalityEffectfulCall: LocalityViolation,
	}
	for code, want := range cases {
		if got := code.Category(); got != want {
			t.Fatalf("%s: category %s, want %s", code.ID(), got, want)
		}
	}
	locality := []Code{LocalityNonLocalWrite, LocalityTaintedWrite, LocalityEffectfulCall, LocalityOutputAlias}
	seen := map[string]bool{}
	for _, c := range locality {
		if seen[c.Title()] {
			t.Fatalf("duplicate locality title %q", c.Title())
		}
		seen[c.Title()] = true
	}
}

func TestBagSortAndShortFormat(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Severity: SevError, Code: TypMismatch, Message: "second", Pos: source.Pos{File: "b.pf", Line: 1, Col: 1}})
	b.Add(Diagnostic{Severity: SevError, Code: LkpUndefined, Message: "first\nline", Pos: source.Pos{File: "a.pf", Line: 2, Col: 4}})
	b.Add(Diagnostic{Severity: SevError, Code: LkpUndefined, Message: "dup", Pos: source.Pos{File: "a.pf", Line: 2, Col: 4}})
	b.Dedup()
	b.Sort()
	if b.Len() != 2 {
		t.Fatalf("len = %d after dedup", b.Len())
	}
	want := "error LKP1001 a.pf:2:4 first line\nerror TYP2001 b.pf:1:1 second"
	if got := FormatShortDiagnostics(b.Items()); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{}) || b.Add(Diagnostic{}) {
		t.Fatalf("limit of one not enforced")
	}
	if b.AddError("x.pf", errors.New("boom")) {
		t.Fatalf("AddError must respect the limit")
	}
	if b.HasErrors() {
		t.Fatalf("notes are not errors")
	}
}
