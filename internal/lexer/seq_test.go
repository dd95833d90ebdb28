package lexer_test

import (
	"context"
	"errors"
	"testing"

	"vela/internal/diag"
	"vela/internal/lexer"
	"vela/internal/testkit"
	"vela/internal/token"
)

func TestTokens_Restartable(t *testing.T) {
	seq := lexer.Tokens(makeFile("let x = 1;"), lexer.Options{})
	var runs [2][]token.Kind
	for i := range runs {
		for tok, err := range seq {
			if err != nil {
				t.Fatal(err)
			}
			runs[i] = append(runs[i], tok.Kind)
		}
	}
	want := []token.Kind{token.KwLet, token.Ident, token.Assign, token.IntLit, token.Semicolon}
	for i, got := range runs {
		if len(got) != len(want) {
			t.Fatalf("run %d: got %v", i, got)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("run %d token %d: want %v, got %v", i, j, want[j], got[j])
			}
		}
	}
}

func TestTokens_EarlyBreak(t *testing.T) {
	n := 0
	for range lexer.Tokens(makeFile("a b c d"), lexer.Options{}) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected to stop after 2, got %d", n)
	}
}

func TestTokens_ErrorIsLast(t *testing.T) {
	var kinds []token.Kind
	var gotErr error
	for tok, err := range lexer.Tokens(makeFile("a # b"), lexer.Options{}) {
		if err != nil {
			gotErr = err
			if tok.Kind != token.Invalid {
				t.Errorf("error must come with a zero token, got %v", tok.Kind)
			}
			continue
		}
		if gotErr != nil {
			t.Fatalf("token %v after the error", tok.Kind)
		}
		kinds = append(kinds, tok.Kind)
	}
	if len(kinds) != 1 || !lexer.IsLexical(gotErr) {
		t.Fatalf("got %v, err %v", kinds, gotErr)
	}
}

func TestTokens_EOFOnlyWithTrivia(t *testing.T) {
	count := func(opts lexer.Options) (eof int) {
		for tok, err := range lexer.Tokens(makeFile("x // tail"), opts) {
			if err != nil {
				t.Fatal(err)
			}
			if tok.Kind == token.EOF {
				eof++
				if len(tok.Leading) != 2 {
					t.Errorf("EOF should carry trailing trivia, got %+v", tok.Leading)
				}
			}
		}
		return eof
	}
	if n := count(lexer.Options{}); n != 0 {
		t.Errorf("default stream yielded %d EOF tokens", n)
	}
	if n := count(lexer.Options{KeepTrivia: true}); n != 1 {
		t.Errorf("trivia stream yielded %d EOF tokens", n)
	}
}

func TestTokenize_PartialOnError(t *testing.T) {
	toks, err := lexer.Tokenize("let x = @;")
	if len(toks) != 3 {
		t.Fatalf("expected tokens before the error, got %v", testkit.Kinds(toks))
	}
	le, ok := lexer.AsLexical(err)
	if !ok || le.Code != diag.LexUnknownChar || le.Path != "<input>" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTokenizeContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	toks, err := lexer.TokenizeContext(ctx, makeFile("a b c"), lexer.Options{})
	if !errors.Is(err, lexer.ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(toks) != 0 {
		t.Errorf("no token should be appended after cancellation, got %d", len(toks))
	}
}

func TestTokenizeContext_Complete(t *testing.T) {
	toks, err := lexer.TokenizeContext(context.Background(), makeFile("a -> b"), lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 || toks[1].Kind != token.Arrow {
		t.Fatalf("got %v", testkit.Kinds(toks))
	}
}
