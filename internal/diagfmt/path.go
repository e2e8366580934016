package diagfmt

import (
	"os"
	"path/filepath"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base == "" {
			base, _ = os.Getwd()
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			break
		}
		if rel, err := filepath.Rel(base, abs); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return filepath.ToSlash(path)
}
