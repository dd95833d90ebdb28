package testkit

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"vela/internal/lexer"
	"vela/internal/source"
	"vela/internal/token"
)

// CheckTiling scans sf with KeepTrivia and verifies that the spans of emitted
// tokens and skipped trivia tile the content:
// 1) every span is non-empty, except the final EOF;
// 2) each span starts where the previous one ended;
// 3) the text of every span equals the content under it;
// 4) the last span ends at the end of the content.
//
// A lexical error is not a violation: the prefix, including trivia held by
// the error, must then end exactly at the error offset.
func CheckTiling(sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var pos uint32
	check := func(kind token.Kind, sp source.Span, text string) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", kind, sp.File, sf.ID)
		}
		if sp.Start != pos {
			return fmt.Errorf("%s span %v does not start at %d", kind, sp, pos)
		}
		if sp.End <= sp.Start && kind != token.EOF {
			return fmt.Errorf("empty %s span at %d", kind, sp.Start)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s span end beyond content: %d > %d", kind, sp.End, lenContent)
		}
		if got := string(sf.Content[sp.Start:sp.End]); got != text {
			return fmt.Errorf("%s text %q differs from source %q", kind, text, got)
		}
		pos = sp.End
		return nil
	}

	for tok, lexErr := range lexer.Tokens(sf, lexer.Options{KeepTrivia: true}) {
		if lexErr != nil {
			le, ok := lexer.AsLexical(lexErr)
			if !ok {
				return fmt.Errorf("unexpected error: %w", lexErr)
			}
			for _, tr := range le.Leading {
				if err := check(tr.Kind, tr.Span, tr.Text); err != nil {
					return err
				}
			}
			// до ошибки всё должно быть покрыто
			if le.Offset != pos {
				return fmt.Errorf("error offset %d, scanned prefix ends at %d", le.Offset, pos)
			}
			return nil
		}
		for _, tr := range tok.Leading {
			if !tr.Kind.IsTrivia() {
				return fmt.Errorf("non-trivia kind %s in leading trivia", tr.Kind)
			}
			if err := check(tr.Kind, tr.Span, tr.Text); err != nil {
				return err
			}
		}
		if err := check(tok.Kind, tok.Span, tok.Text); err != nil {
			return err
		}
		if tok.Kind == token.EOF {
			if pos != lenContent {
				return fmt.Errorf("EOF at %d, content length %d", pos, lenContent)
			}
			return nil
		}
	}
	return fmt.Errorf("stream ended without EOF at %d", pos)
}

// CheckDeterminism scans sf twice with opts and compares the results,
// including the error, if any.
func CheckDeterminism(sf *source.File, opts lexer.Options) error {
	first, errA := collect(sf, opts)
	second, errB := collect(sf, opts)
	if (errA == nil) != (errB == nil) {
		return fmt.Errorf("error mismatch: %v vs %v", errA, errB)
	}
	if errA != nil && errA.Error() != errB.Error() {
		return fmt.Errorf("error mismatch: %q vs %q", errA, errB)
	}
	if len(first) != len(second) {
		return fmt.Errorf("token count mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Kind != b.Kind || a.Span != b.Span || a.Text != b.Text {
			return fmt.Errorf("token %d differs: %s %q %v vs %s %q %v", i, a.Kind, a.Text, a.Span, b.Kind, b.Text, b.Span)
		}
		if !slices.Equal(a.Leading, b.Leading) {
			return fmt.Errorf("token %d leading trivia differs", i)
		}
	}
	return nil
}

func collect(sf *source.File, opts lexer.Options) ([]token.Token, error) {
	var toks []token.Token
	for tok, err := range lexer.Tokens(sf, opts) {
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// Kinds returns the kinds of toks, for compact comparisons in tests.
func Kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}
