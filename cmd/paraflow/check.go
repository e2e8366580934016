package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"paraflow/internal/diagfmt"
	"paraflow/internal/driver"
	"paraflow/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [tree.yaml|tree.pft|directory]...",
	Short: "Type-check ParaFlow tree dumps",
	Long: `Run binding, type checking, polymorphism resolution and the
parallel-safety checker over every tree dump. With no arguments the
[check].inputs of paraflow.toml are used.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostic format (pretty|short|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel compilations (0=auto)")
	checkCmd.Flags().Bool("disk-cache", false, "reuse verdicts of unchanged trees across runs")
	checkCmd.Flags().Bool("clear-cache", false, "drop the verdict cache before checking")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("categories", false, "print the error category under each diagnostic")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	conf := sess.manifest.Config.Check

	format := strings.ToLower(flagString(cmd, "format", conf.Format))
	switch format {
	case project.FormatPretty, project.FormatShort, project.FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (expected pretty|short|json)", format)
	}
	jobs, err := flagInt(cmd, "jobs", conf.Jobs)
	if err != nil {
		return err
	}
	useCache, err := flagBool(cmd, "disk-cache", conf.DiskCache)
	if err != nil {
		return err
	}
	clearCache, _ := cmd.Flags().GetBool("clear-cache")
	fullPath, _ := cmd.Flags().GetBool("fullpath")
	categories, _ := cmd.Flags().GetBool("categories")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	uiMode, err := readUIMode(flagString(cmd, "ui", "off"))
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = conf.Inputs
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs: pass tree dumps or set [check].inputs in %s", project.ManifestName)
	}
	files, err := driver.ExpandInputs(inputs)
	if err != nil {
		return err
	}

	opts := driver.CheckOptions{Jobs: jobs, Timings: timings}
	if useCache || clearCache {
		cache, err := driver.OpenDiskCache("paraflow")
		if err != nil {
			return fmt.Errorf("disk cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("disk cache: %w", err)
			}
		}
		if useCache {
			opts.Cache = cache
		}
	}

	var report *driver.Report
	if format != project.FormatJSON && shouldUseTUI(uiMode) {
		report, err = runCheckWithUI(cmd.Context(), "paraflow check", files, opts)
	} else {
		report, err = driver.Check(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch format {
	case project.FormatJSON:
		err = diagfmt.JSON(out, report.Bag, len(report.Results), diagfmt.JSONOpts{PathMode: pathMode})
	case project.FormatShort:
		err = diagfmt.Short(out, report.Bag)
	default:
		err = diagfmt.Pretty(out, report.Bag, diagfmt.PrettyOpts{Color: sess.color, PathMode: pathMode, ShowCategory: categories})
		if err == nil {
			err = printSummary(out, report)
		}
	}
	if err != nil {
		return err
	}
	if timings {
		printTimings(cmd.ErrOrStderr(), report)
	}

	if report.Failed() > 0 {
		dumpTraceRing(cmd.ErrOrStderr(), sess.tracer)
		return errChecksFailed
	}
	return nil
}

func printSummary(w io.Writer, report *driver.Report) error {
	cached := 0
	for _, res := range report.Results {
		if res.Cached {
			cached++
		}
	}
	failed := report.Failed()
	msg := fmt.Sprintf("checked %d tree(s): %d ok, %d failed", len(report.Results), len(report.Results)-failed, failed)
	if cached > 0 {
		msg += fmt.Sprintf(" (%d from cache)", cached)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func printTimings(w io.Writer, report *driver.Report) {
	for _, res := range report.Results {
		if res.Timing != nil {
			fmt.Fprintf(w, "%s\n%s", res.Path, res.Timing.Summary())
		}
	}
}
