// Package diag defines the diagnostic model shared by the lexer, the driver and
// the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form (LEX1001).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional structured edits.
//
// # Emitting diagnostics
//
// Producers use a Reporter so emission stays decoupled from storage. The lexer
// reports every LexicalError through Options.Reporter; BagReporter collects them
// into a Bag which supports limits, sorting and deduplication.
//
// Package diag does no IO and no formatting beyond the short single-line form in
// golden.go. Rendering lives in internal/diagfmt.
package diag
