package ui

import (
	"strings"
	"testing"

	"paraflow/internal/driver"
)

func TestProgressModelTracksStatuses(t *testing.T) {
	files := []string{"trees/a.yaml", "trees/b.yaml"}
	m := NewProgressModel("paraflow check", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "trees/a.yaml", Stage: driver.StageCheck, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "trees/b.yaml", Stage: driver.StageBind, Status: driver.StatusError})
	// a later final event must not hide the failing pass
	m.applyEvent(driver.Event{File: "trees/b.yaml", Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "trees/unknown.yaml", Status: driver.StatusDone})

	if m.items[0].status != "check" || m.items[0].stage != driver.StageCheck {
		t.Fatalf("a: %+v", m.items[0])
	}
	if m.items[1].status != "error" || m.items[1].stage != driver.StageBind {
		t.Fatalf("b: %+v", m.items[1])
	}
	view := m.View()
	for _, want := range []string{"paraflow check", "trees/a.yaml", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressFromStage(t *testing.T) {
	if progressFromStage(driver.StageLoad) != 0 {
		t.Fatalf("load should start at zero")
	}
	if p := progressFromStage(driver.StageLocality); p <= progressFromStage(driver.StageCheck) || p >= 1 {
		t.Fatalf("locality progress %v", p)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a/very/long/path.yaml", 10); got != "a/ve..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("日本語のパス", 9); got != "日..." {
		t.Fatalf("got %q", got)
	}
}
