package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"paraflow/internal/trace"
)

// setupTracing builds the tracer from [trace] in paraflow.toml and the
// --trace* flags, and attaches it to the command context.
func setupTracing(cmd *cobra.Command, s *session) error {
	conf := s.manifest.Config.Trace

	output := flagString(cmd, "trace", conf.Output)
	levelStr := flagString(cmd, "trace-level", conf.Level)
	// --trace без явного уровня означает phase
	if output != "" && (levelStr == "" || levelStr == "off") && flagString(cmd, "trace-level", "") == "" {
		levelStr = "phase"
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mode, err := trace.ParseMode(flagString(cmd, "trace-mode", conf.Mode))
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(flagString(cmd, "trace-format", "auto"))
	if err != nil {
		return err
	}
	ringSize, err := cmd.Root().PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	s.tracer = tracer
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	return nil
}

// dumpTraceRing prints the last recorded events after a failed run.
func dumpTraceRing(w io.Writer, t trace.Tracer) {
	ring := trace.Ring(t)
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "--- last trace events ---")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
