// Package observ collects per-pass timings for --timings output.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Pass is one timed pass over a tree.
type Pass struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer is not safe for concurrent use; the driver keeps one per file.
type Timer struct {
	passes []Pass
}

func NewTimer() *Timer { return &Timer{passes: make([]Pass, 0, 8)} }

// Begin starts a pass and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.passes = append(t.passes, Pass{Name: name, Start: time.Now()})
	return len(t.passes) - 1
}

func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.passes) {
		return
	}
	p := &t.passes[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string { return t.Report().Summary() }

func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Passes {
		fmt.Fprintf(&sb, "  %-12s %8.3f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.3f ms\n", "total", r.TotalMS)
	return sb.String()
}

// PassReport: сериализуемое описание одного прохода.
type PassReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64      `json:"total_ms"`
	Passes  []PassReport `json:"passes"`
}

func (t *Timer) Report() Report {
	if len(t.passes) == 0 {
		return Report{}
	}
	r := Report{Passes: make([]PassReport, len(t.passes))}
	var total time.Duration
	for i, p := range t.passes {
		total += p.Dur
		r.Passes[i] = PassReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
