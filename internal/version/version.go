// Package version holds the build fingerprint of the paraflow CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric part in its own color. With
// enabled false the plain string comes back.
func Colored(enabled bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if !enabled || len(parts) != 3 {
		return Version
	}
	out := ""
	for i, c := range []*color.Color{majorColor, minorColor, patchColor} {
		c.EnableColor()
		if i > 0 {
			out += "."
		}
		out += c.Sprint(parts[i])
	}
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
