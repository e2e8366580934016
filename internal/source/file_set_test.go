package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("tree.yaml", []byte("kind: program"), 0)
	if id1 != 0 {
		t.Fatalf("expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("tree.yaml", []byte("kind: program\n"), 0)
	if id2 != 1 {
		t.Fatalf("expected second FileID to be 1, got %d", id2)
	}
	latest, ok := fs.GetLatest("./tree.yaml")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	// Старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "kind: program" {
		t.Fatalf("unexpected content of first version: %q", got)
	}
	if fs.Get(id1).Hash == fs.Get(id2).Hash {
		t.Fatalf("different contents must hash differently")
	}
}

func TestLoadNormalizesText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.yaml")
	content := []byte("\xEF\xBB\xBFkind: program\r\nchildren: []\r\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if string(f.Content) != "kind: program\nchildren: []\n" {
		t.Fatalf("unexpected normalized content %q", f.Content)
	}
}

func TestLoadKeepsBinaryDumps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.pft")
	content := []byte{0x82, 0x00, '\r', '\n'}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.LoadRaw(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := fs.Get(id).Content; len(got) != len(content) {
		t.Fatalf("binary content must not be normalized, got %v", got)
	}
}

func TestPosString(t *testing.T) {
	p := Pos{File: "a.pf", Line: 3, Col: 7}
	if p.String() != "a.pf:3:7" {
		t.Fatalf("unexpected pos string %q", p.String())
	}
	if (Pos{}).String() != "<unknown>" {
		t.Fatalf("unexpected empty pos string %q", Pos{}.String())
	}
}
