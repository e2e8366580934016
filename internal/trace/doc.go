// Package trace records what the analyzer is doing: one span per driver
// run, per input file and per pass.
//
// Enable it from the command line or paraflow.toml:
//
//	paraflow check --trace=- --trace-level=phase prog.yaml
//
// Tracers:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last events in memory and dumps them on failure
//   - MultiTracer: stream and ring together
//
// Levels, coarse to fine: off, error, phase, detail, debug. Scopes:
// driver, pass, file, node.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "bind", trace.ParentOf(ctx))
//	defer span.End("")
package trace
