package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"paraflow/internal/prof"
	"paraflow/internal/project"
	"paraflow/internal/trace"
)

// session is the per-invocation state shared by subcommands.
type session struct {
	manifest *project.Manifest
	tracer   trace.Tracer
	profiler *prof.Session
	color    bool
}

var sess *session

func prepareSession(cmd *cobra.Command, _ []string) error {
	s := &session{tracer: trace.Nop}
	sess = s

	var err error
	if path := flagString(cmd, "config", ""); path != "" {
		cfg, loadErr := project.LoadConfig(path)
		if loadErr != nil {
			return loadErr
		}
		s.manifest = &project.Manifest{Path: path, Config: cfg}
	} else if s.manifest, _, err = project.Load("."); err != nil {
		return err
	}

	mode, err := readColorMode(flagString(cmd, "color", "auto"))
	if err != nil {
		return err
	}
	s.color = useColor(mode, os.Stdout)
	color.NoColor = !s.color

	if err := setupTracing(cmd, s); err != nil {
		return err
	}

	s.profiler, err = prof.Start(prof.Config{
		CPU:   flagString(cmd, "cpu-profile", ""),
		Mem:   flagString(cmd, "mem-profile", ""),
		Trace: flagString(cmd, "runtime-trace", ""),
	})
	return err
}

func closeSession(cmd *cobra.Command) {
	if sess == nil {
		return
	}
	if err := sess.tracer.Flush(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
	}
	if err := sess.tracer.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
	if err := sess.profiler.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
	}
}

// flagString returns the flag value when the user set it, fallback otherwise.
func flagString(cmd *cobra.Command, name, fallback string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.Root().PersistentFlags().Lookup(name)
	}
	if f == nil || !f.Changed {
		return fallback
	}
	return strings.TrimSpace(f.Value.String())
}

func flagInt(cmd *cobra.Command, name string, fallback int) (int, error) {
	if f := cmd.Flags().Lookup(name); f == nil || !f.Changed {
		return fallback, nil
	}
	return cmd.Flags().GetInt(name)
}

func flagBool(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if f := cmd.Flags().Lookup(name); f == nil || !f.Changed {
		return fallback, nil
	}
	return cmd.Flags().GetBool(name)
}
