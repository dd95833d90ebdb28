package token

import "vela/internal/source"

// Trivia is a skipped span: whitespace, a newline or a comment.
// Kind is always one of the kinds for which Kind.IsTrivia holds.
type Trivia struct {
	Kind Kind
	Span source.Span
	Text string
}
