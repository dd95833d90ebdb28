package lexer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"

	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/token"
)

// ErrCancelled is wrapped together with the context error when a scan stops early.
var ErrCancelled = errors.New("tokenization cancelled")

// LexicalError reports a position where no pattern matches, including
// malformed literals whose opener was seen but never completed.
type LexicalError struct {
	Code   diag.Code
	Path   string
	Offset uint32
	Pos    source.LineCol
	Char   rune // offending character; utf8.RuneError for invalid bytes
	Span   source.Span
	Msg    string
	// Leading holds the trivia scanned since the last token; only with KeepTrivia.
	Leading []token.Trivia
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Col, e.Msg)
}

// IsLexical reports whether err carries a LexicalError.
func IsLexical(err error) bool {
	var lexErr *LexicalError
	return errors.As(err, &lexErr)
}

// AsLexical extracts the LexicalError from err.
func AsLexical(err error) (*LexicalError, bool) {
	var lexErr *LexicalError
	ok := errors.As(err, &lexErr)
	return lexErr, ok
}

// describeChar renders the character at the start of b for messages:
// '@' (COMMERCIAL AT), '\x00' (<control>), byte 0xff.
func describeChar(b []byte) (rune, int, string) {
	r, sz := utf8.DecodeRune(b)
	if r == utf8.RuneError && sz <= 1 {
		if len(b) == 0 {
			return r, 0, "end of input"
		}
		return r, 1, fmt.Sprintf("byte 0x%02x", b[0])
	}
	desc := fmt.Sprintf("%q", r)
	if name := runenames.Name(r); name != "" {
		desc += " (" + name + ")"
	}
	return r, sz, desc
}
