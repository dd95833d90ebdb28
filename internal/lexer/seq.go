package lexer

import (
	"context"
	"fmt"
	"iter"

	"vela/internal/source"
	"vela/internal/token"
)

// Tokens returns a lazy stream over file. Every range starts a fresh lexer,
// so the sequence can be consumed more than once. The EOF token is yielded
// only with KeepTrivia, where it carries the trailing trivia. On a lexical
// error the sequence yields (zero token, err) and stops.
func Tokens(file *source.File, opts Options) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		lx := New(file, opts)
		for {
			tok, err := lx.Next()
			if err != nil {
				yield(token.Token{}, err)
				return
			}
			if tok.Kind == token.EOF {
				if opts.KeepTrivia {
					yield(tok, nil)
				}
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Tokenize scans src as an anonymous virtual file and collects all tokens.
// Lexemes are not length-limited here; use TokenizeContext with
// Options.MaxTokenLength for that. On error the tokens scanned before the
// failure are returned with it.
func Tokenize(src string) ([]token.Token, error) {
	file := source.NewVirtualFile("<input>", []byte(src))
	return TokenizeContext(context.Background(), file, Options{})
}

// TokenizeContext collects the stream of file, checking ctx between tokens.
func TokenizeContext(ctx context.Context, file *source.File, opts Options) ([]token.Token, error) {
	// грубая оценка: один токен на ~4 байта
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for tok, err := range Tokens(file, opts) {
		if err != nil {
			return toks, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return toks, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		toks = append(toks, tok)
	}
	return toks, nil
}
