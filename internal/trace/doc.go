// Package trace provides a tracing subsystem for the vigil analyzer.
//
// The trace package enables tracking of analysis passes, per-file processing,
// and other operations to help diagnose performance issues and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	vigil analyze --trace=- --trace-level=phase myfile.c
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and fixpoint-cycle boundaries
//   - LevelDetail: Per-pass events
//   - LevelDebug: Everything including bailout locations
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopeModule: Individual analysis passes
//   - ScopePass: Pipeline phases (lex, parse, fixpoint cycles)
//   - ScopeNode: Expression-node level (bailouts)
//
// # Context Propagation
//
// Tracers are propagated through the analysis pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "parse", parentID)
//	defer span.End("")
package trace
