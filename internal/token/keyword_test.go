package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"module":   KwModule,
		"func":     KwFunc,
		"let":      KwLet,
		"val":      KwVal,
		"i16":      TyI16,
		"u32":      TyU32,
		"f64":      TyF64,
		"str":      TyStr,
		"true":     TrueLit,
		"false":    FalseLit,
		"and":      KwAnd,
		"not":      KwNot,
		"continue": KwContinue,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	notKw := []string{
		"Func", "LET", "True", // регистр важен
		"i128", "f16", "string", "int",
		"fn", "identifier",
	}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}

func TestKeywordsCopyIsDetached(t *testing.T) {
	kw := Keywords()
	kw["let"] = Ident
	if k, _ := LookupKeyword("let"); k != KwLet {
		t.Fatal("mutating the copy must not affect the table")
	}
}

func TestKeywordTextRoundTrip(t *testing.T) {
	for w, k := range Keywords() {
		got, ok := KeywordText(k)
		if !ok || got != w {
			t.Errorf("KeywordText(%v) = %q, %v; want %q", k, got, ok, w)
		}
	}
	if _, ok := KeywordText(Ident); ok {
		t.Errorf("IDENTIFIER is not a reserved word")
	}
}
