// Package trace records what the downlevel driver is doing while it runs.
//
// Spans mark the run, each input file and the passes applied to it
// (decode, lower, print). They help find slow files and hangs.
//
// # Usage
//
//	downlevel lower --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events for a dump after a defect
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// ScopeDriver events appear from LevelPhase up, ScopeFile from LevelPhase,
// ScopePass from LevelDetail and ScopeNode only at LevelDebug.
//
// # Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, parent)
//	defer span.End("")
package trace
