// Package trace is the logging layer of the vela tools.
//
// Events are leveled and scoped: a command is a ScopeDriver span, each phase
// (load, lex, cache, render) a ScopePass span and each scanned file a
// ScopeFile span. Lexical errors are KindError points and pass every level
// except off.
//
//	vela tokenize --trace=- --trace-level=detail src/
//
// Two sinks exist: StreamTracer writes every event as text or NDJSON, and
// RingTracer keeps the last events in memory for a dump on failure. Tracers
// travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "lex")
//	defer span.End("")
package trace
