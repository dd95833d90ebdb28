package lexer

import (
	"fmt"
	"regexp"

	"vela/internal/token"
)

// Entry is one row of the pattern table.
//
// Opener, when set, is the fixed prefix that commits the scanner to this entry:
// if the opener is present at the cursor but Match fails, the input holds a
// malformed literal and scanning stops with a LexicalError at that offset
// instead of trying later rows.
type Entry struct {
	Kind    token.Kind
	Pattern string // regexp form, for listings only
	Match   Matcher
	Opener  string
}

// wordEntry builds a row for a reserved word; the spelling comes from the
// token package so the two lists cannot drift.
func wordEntry(k token.Kind) Entry {
	w, ok := token.KeywordText(k)
	if !ok {
		panic(fmt.Sprintf("lexer: %s is not a reserved word", k))
	}
	return Entry{Kind: k, Pattern: `\b` + regexp.QuoteMeta(w) + `\b`, Match: word(w)}
}

func litEntry(k token.Kind, s string) Entry {
	return Entry{Kind: k, Pattern: regexp.QuoteMeta(s), Match: literal(s)}
}

// table is scanned top to bottom; the first row with a non-empty anchored match
// wins. Order is load-bearing:
//   - reserved words before IDENTIFIER;
//   - comments before DIVIDE and POINTER_DEREFERENCE;
//   - FLOAT_LITERAL before INTEGER_LITERAL;
//   - two-byte operators before their one-byte prefixes, ARROW before MINUS.
//
// POINTER_DEREFERENCE and MULTIPLY share the pattern `\*`; the earlier row
// always wins, so '*' lexes as POINTER_DEREFERENCE and the parser decides.
var table = [...]Entry{
	wordEntry(token.KwModule),
	wordEntry(token.KwLet),
	wordEntry(token.KwVal),
	wordEntry(token.KwFunc),
	{Kind: token.Comment, Pattern: `//.*`, Match: matchLineComment},
	{Kind: token.CommentBlock, Pattern: `/\*[\s\S]*?\*/`, Match: matchBlockComment, Opener: "/*"},
	litEntry(token.LBrace, "{"),
	litEntry(token.RBrace, "}"),
	litEntry(token.LBracket, "["),
	litEntry(token.RBracket, "]"),
	litEntry(token.LParen, "("),
	litEntry(token.RParen, ")"),

	// типы
	wordEntry(token.TyI8),
	wordEntry(token.TyU8),
	wordEntry(token.TyI16),
	wordEntry(token.TyU16),
	wordEntry(token.TyI32),
	wordEntry(token.TyU32),
	wordEntry(token.TyI64),
	wordEntry(token.TyU64),
	wordEntry(token.TyF32),
	wordEntry(token.TyF64),
	wordEntry(token.TyBool),
	wordEntry(token.TyChar),
	wordEntry(token.TyStr),

	// литералы
	wordEntry(token.TrueLit),
	wordEntry(token.FalseLit),
	{Kind: token.CharLit, Pattern: `'(\\.|[^\\'])'`, Match: matchChar, Opener: "'"},
	{Kind: token.FloatLit, Pattern: `\b\d+\.\d+\b`, Match: matchFloat},
	{Kind: token.IntLit, Pattern: `\b\d+\b`, Match: matchInt},

	litEntry(token.EqEq, "=="),
	litEntry(token.BangEq, "!="),
	litEntry(token.LtEq, "<="),
	litEntry(token.GtEq, ">="),
	litEntry(token.Assign, "="),
	litEntry(token.Lt, "<"),
	litEntry(token.Gt, ">"),

	litEntry(token.Pointer, "^"),
	litEntry(token.PointerDeref, "*"),
	litEntry(token.Amp, "&"),
	litEntry(token.Colon, ":"),
	litEntry(token.Semicolon, ";"),
	litEntry(token.Comma, ","),
	litEntry(token.Dot, "."),
	litEntry(token.Arrow, "->"),

	litEntry(token.Plus, "+"),
	litEntry(token.Minus, "-"),
	litEntry(token.Multiply, "*"),
	litEntry(token.Slash, "/"),
	litEntry(token.Percent, "%"),

	wordEntry(token.KwAnd),
	wordEntry(token.KwOr),
	wordEntry(token.KwNot),

	wordEntry(token.KwIf),
	wordEntry(token.KwElse),
	wordEntry(token.KwWhile),
	wordEntry(token.KwFor),
	wordEntry(token.KwReturn),
	wordEntry(token.KwBreak),
	wordEntry(token.KwContinue),

	// последним, чтобы ключевые слова выигрывали
	{Kind: token.Ident, Pattern: `\b[a-zA-Z_][a-zA-Z0-9_]*\b`, Match: matchIdent},

	{Kind: token.Newline, Pattern: `\n`, Match: literal("\n")},
	{Kind: token.Skip, Pattern: `[ \t\r]+`, Match: matchSpace},
}

// Row describes one table entry for listings.
type Row struct {
	Priority int        `json:"priority"`
	Kind     token.Kind `json:"kind"`
	Pattern  string     `json:"pattern"`
	Skipped  bool       `json:"skipped"`
}

// Table returns the pattern table in priority order (0 is tried first).
func Table() []Row {
	rows := make([]Row, len(table))
	for i := range table {
		rows[i] = Row{
			Priority: i,
			Kind:     table[i].Kind,
			Pattern:  table[i].Pattern,
			Skipped:  table[i].Kind.IsTrivia(),
		}
	}
	return rows
}

// Priority returns the first table position for kind, or -1 if the kind has no row.
func Priority(kind token.Kind) int {
	for i := range table {
		if table[i].Kind == kind {
			return i
		}
	}
	return -1
}
