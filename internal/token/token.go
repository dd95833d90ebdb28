package token

import (
	"strings"

	"vela/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia // только при Options.KeepTrivia
}

// IsLiteral reports whether the token is a boolean, character or numeric literal.
func (t Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Source returns the leading trivia text followed by the lexeme.
func (t Token) Source() string {
	if len(t.Leading) == 0 {
		return t.Text
	}
	var b strings.Builder
	for _, tr := range t.Leading {
		b.WriteString(tr.Text)
	}
	b.WriteString(t.Text)
	return b.String()
}
