package lexer

import (
	"vela/internal/diag"
	"vela/internal/token"
)

// DefaultMaxTokenLength is the limit the command line applies unless told
// otherwise. The library itself does not limit lexemes by default.
const DefaultMaxTokenLength = 1 << 20

type Options struct {
	// Reporter receives a diagnostic for every LexicalError. May be nil.
	Reporter diag.Reporter
	// KeepTrivia collects skipped spans into Token.Leading; the EOF token
	// carries the trailing ones.
	KeepTrivia bool
	// MaxTokenLength limits the length of emitted lexemes; comments and
	// whitespace are not limited. 0 means no limit.
	MaxTokenLength int
}

func (o Options) tooLong(kind token.Kind, n int) bool {
	return o.MaxTokenLength > 0 && n > o.MaxTokenLength && !kind.IsTrivia()
}
