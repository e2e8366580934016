package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paraflow/internal/diag"
	"paraflow/internal/diagfmt"
	"paraflow/internal/driver"
	"paraflow/internal/source"
	"paraflow/internal/treeio"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <tree.yaml|tree.pft>",
	Short: "Print the checked tree with resolved types",
	Long: `Compile one tree dump and print every node with its resolved type,
bound variable and inserted casts. --to converts the dump between YAML and
msgpack without checking it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("through", "", "stop after a pass (load|bind|fold|check|poly|locality)")
	dumpCmd.Flags().Bool("classes", false, "also print class layouts and dispatch tables")
	dumpCmd.Flags().String("to", "", "write the unchecked tree to this .yaml or .pft file instead")
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	through := driver.Stage(strings.ToLower(flagString(cmd, "through", "")))
	if through != "" && !validStage(through) {
		return fmt.Errorf("unknown pass %q", through)
	}
	classes, _ := cmd.Flags().GetBool("classes")
	target := flagString(cmd, "to", "")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	fileSet := source.NewFileSet()
	files, err := driver.ExpandInputs([]string{path})
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("%s: dump takes exactly one tree", path)
	}
	var id source.FileID
	if treeio.FormatOf(files[0]) == treeio.FormatMsgpack {
		id, err = fileSet.LoadRaw(files[0])
	} else {
		id, err = fileSet.Load(files[0])
	}
	if err != nil {
		return err
	}

	if target != "" {
		return convertDump(fileSet, id, target)
	}

	res := driver.Compile(cmd.Context(), fileSet, id, driver.CompileOptions{Timings: timings, Through: through})
	if res.Err != nil {
		bag := diag.NewBag(1)
		bag.AddError(res.Path, res.Err)
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{Color: sess.color}); err != nil {
			return err
		}
		dumpTraceRing(cmd.ErrOrStderr(), sess.tracer)
		return errChecksFailed
	}
	out := cmd.OutOrStdout()
	if err := driver.DumpTree(out, res); err != nil {
		return err
	}
	if classes {
		if err := driver.DumpClasses(out, res); err != nil {
			return err
		}
	}
	if res.Timing != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.Summary())
	}
	return nil
}

func convertDump(fileSet *source.FileSet, id source.FileID, target string) error {
	format := treeio.FormatOf(target)
	if format == treeio.FormatUnknown {
		return fmt.Errorf("%s: unknown dump extension (want .yaml, .yml or .pft)", target)
	}
	tree, err := treeio.Load(fileSet, id)
	if err != nil {
		return err
	}
	data, err := treeio.Encode(tree, format)
	if err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o600)
}

func validStage(s driver.Stage) bool {
	for _, st := range driver.Stages {
		if st == s {
			return true
		}
	}
	return false
}
