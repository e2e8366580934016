package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation used by golden tests and the CLI short output.
func FormatShortDiagnostics(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]Diagnostic, len(diags))
	copy(rendered, diags)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Pos.File != dj.Pos.File {
			return di.Pos.File < dj.Pos.File
		}
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Col != dj.Pos.Col {
			return di.Pos.Col < dj.Pos.Col
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity.Label(), d.Code.ID(),
			normalizePath(d.Pos.File), d.Pos.Line, d.Pos.Col, sanitizeMessage(d.Message))
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
