package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"paraflow/internal/diag"
)

type palette struct {
	path, err, warn, info, code, near, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path: color.New(color.Bold),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.FgMagenta),
		near: color.New(color.FgHiBlack),
		note: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.path, p.err, p.warn, p.info, p.code, p.near, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints every diagnostic in the bag as
//
//	<path>:<line>:<col>: error[CODE]: <message> (near '<text>')
//
// in bag order; call bag.Sort() first for stable output.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		pos := fmt.Sprintf("%s:%d:%d", formatPath(d.Pos.File, opts.PathMode, opts.BaseDir), d.Pos.Line, d.Pos.Col)
		if _, err := fmt.Fprintf(w, "%s: %s%s: %s",
			p.path.Sprint(pos),
			p.severity(d.Severity).Sprint(d.Severity.Label()),
			p.code.Sprintf("[%s]", d.Code.ID()),
			d.Message,
		); err != nil {
			return err
		}
		if d.Near != "" {
			if _, err := fmt.Fprint(w, p.near.Sprintf(" (near '%s')", d.Near)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if opts.ShowCategory {
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("="), d.Code.Category(), d.Code.Title()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Short prints one line per diagnostic in the golden-file format.
func Short(w io.Writer, bag *diag.Bag) error {
	out := diag.FormatShortDiagnostics(bag.Items())
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
