package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	root := Begin(tr, ScopeDriver, "check", 0)
	Begin(tr, ScopePass, "bind", root.ID()).WithExtra("vars", "3").End("")
	Begin(tr, ScopeFile, "prog.yaml", root.ID()).End("")
	root.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events (file scope filtered), got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Name != "bind" || ev.Kind != "end" || ev.ParentID != root.ID() || ev.Extra["vars"] != "3" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestErrorLevelKeepsRingOnly(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopePass, "check", 0).End("failed")
	if buf.Len() != 0 {
		t.Fatalf("error level must not stream")
	}
	ring := Ring(tr)
	if ring == nil || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring must hold the span")
	}
	var dump bytes.Buffer
	if err := ring.Dump(&dump, FormatText); err != nil || !strings.Contains(dump.String(), "check (failed)") {
		t.Fatalf("dump %q, err %v", dump.String(), err)
	}
}

func TestRingWrapsOldestFirst(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Emit(&Event{Scope: ScopePass, Name: name})
	}
	got := r.Snapshot()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("snapshot %v", got)
	}
}

func TestContextCarriesTracerAndParent(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must be Nop")
	}
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	span := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if FromContext(ctx) != Tracer(r) || ParentOf(ctx) != span.ID() {
		t.Fatalf("context lost tracer or span")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "PHASE": LevelPhase, "debug": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
