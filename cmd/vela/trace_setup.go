package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vela/internal/trace"
)

// activeTracer is the tracer installed by setupTracing; finishTracing
// flushes it after Execute returns, since PersistentPostRun is skipped on
// error.
var activeTracer trace.Tracer = trace.Nop

// setupTracing inspects trace-related flags, initializes the tracer and
// attaches it to the command context.
func setupTracing(cmd *cobra.Command) error {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня подразумевает phase
	if level == trace.LevelOff && traceOutput != "" && !root.PersistentFlags().Changed("trace-level") {
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer

	ctx := trace.WithTracer(cmd.Context(), tracer)
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, cmd.CommandPath())
	driverSpan = span
	cmd.SetContext(ctx)
	return nil
}

var driverSpan *trace.Span

// finishTracing closes the command span, dumps the ring buffer when the
// command failed, and releases the tracer.
func finishTracing(cmdErr error) {
	detail := ""
	if cmdErr != nil {
		detail = "failed"
	}
	driverSpan.End(detail)

	if ring, ok := activeTracer.(*trace.RingTracer); ok && cmdErr != nil {
		fmt.Fprintf(os.Stderr, "trace: last %d events\n", len(ring.Snapshot()))
		if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
	if err := activeTracer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
	}
	if err := activeTracer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
	}
}
