package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"paraflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "paraflow",
	Short: "ParaFlow semantic checker",
	Long: `paraflow type-checks ParaFlow tree dumps produced by the parser:
name binding, coercions, polymorphism and parallel-safety.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepareSession,
}

// errChecksFailed ends the process with status 1 without another message;
// the diagnostics are already printed.
var errChecksFailed = errors.New("checks failed")

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show per-pass timings")
	pf.String("config", "", "path to paraflow.toml (default: search upward from the working directory)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.String("cpu-profile", "", "write a CPU profile to the file")
	pf.String("mem-profile", "", "write a heap profile to the file")
	pf.String("runtime-trace", "", "write a Go runtime trace to the file")

	err := rootCmd.Execute()
	closeSession(rootCmd)
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			rootCmd.PrintErrln("error:", err)
		}
		os.Exit(1)
	}
}
