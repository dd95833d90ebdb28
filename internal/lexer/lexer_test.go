package lexer_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vela/internal/diag"
	"vela/internal/lexer"
	"vela/internal/source"
	"vela/internal/testkit"
	"vela/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

func makeFile(input string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.vl", []byte(input)))
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	reporter := &testReporter{}
	return lexer.New(makeFile(input), lexer.Options{Reporter: reporter}), reporter
}

// collectAllTokens собирает токены до EOF или до первой ошибки
func collectAllTokens(lx *lexer.Lexer) ([]token.Token, error) {
	tokens := make([]token.Token, 0)
	for {
		tok, err := lx.Next()
		if err != nil {
			return tokens, err
		}
		if tok.Kind == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// expectTokens проверяет последовательность токенов (без EOF)
func expectTokens(t *testing.T, input string, expected []token.Kind) []token.Token {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens, err := collectAllTokens(lx)
	if err != nil {
		t.Fatalf("unexpected error for %q: %v\nErrors: %v", input, err, reporter.ErrorMessages())
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v",
			len(expected), len(tokens), input, tokensToString(tokens))
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
	return tokens
}

// expectSingleToken проверяет, что вход создаёт ровно один токен
func expectSingleToken(t *testing.T, input string, kind token.Kind, text string) {
	t.Helper()
	toks := expectTokens(t, input, []token.Kind{kind})
	if toks[0].Text != text {
		t.Errorf("Expected text %q, got %q", text, toks[0].Text)
	}
}

// expectLexError проверяет, что сканирование падает с кодом code на offset
func expectLexError(t *testing.T, input string, code diag.Code, offset uint32) *lexer.LexicalError {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	_, err := collectAllTokens(lx)
	if err == nil {
		t.Fatalf("expected lexical error for %q", input)
	}
	le, ok := lexer.AsLexical(err)
	if !ok {
		t.Fatalf("expected *LexicalError, got %T: %v", err, err)
	}
	if le.Code != code {
		t.Errorf("code: want %s, got %s (%s)", code.ID(), le.Code.ID(), le.Msg)
	}
	if le.Offset != offset {
		t.Errorf("offset: want %d, got %d", offset, le.Offset)
	}
	if len(reporter.diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", reporter.ErrorMessages())
	}
	if d := reporter.diagnostics[0]; d.Code != code || d.Primary.Start != offset || d.Severity != diag.SevError {
		t.Errorf("diagnostic mismatch: %+v", d)
	}
	return le
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestLexer_LetFloatDeclaration(t *testing.T) {
	toks := expectTokens(t, "let y: f64 = 3.14;", []token.Kind{
		token.KwLet, token.Ident, token.Colon, token.TyF64, token.Assign, token.FloatLit, token.Semicolon,
	})
	if toks[1].Text != "y" || toks[5].Text != "3.14" {
		t.Errorf("unexpected texts: %s", tokensToString(toks))
	}
	if toks[5].Span.Start != 13 || toks[5].Span.End != 17 {
		t.Errorf("float span: got %v", toks[5].Span)
	}
}

func TestKeywords_BeatIdentifier(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"module", token.KwModule},
		{"let", token.KwLet},
		{"val", token.KwVal},
		{"func", token.KwFunc},
		{"true", token.TrueLit},
		{"false", token.FalseLit},
		{"and", token.KwAnd},
		{"or", token.KwOr},
		{"not", token.KwNot},
		{"if", token.KwIf},
		{"else", token.KwElse},
		{"while", token.KwWhile},
		{"for", token.KwFor},
		{"return", token.KwReturn},
		{"break", token.KwBreak},
		{"continue", token.KwContinue},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestTypeNames(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"i8", token.TyI8}, {"u8", token.TyU8},
		{"i16", token.TyI16}, {"u16", token.TyU16},
		{"i32", token.TyI32}, {"u32", token.TyU32},
		{"i64", token.TyI64}, {"u64", token.TyU64},
		{"f32", token.TyF32}, {"f64", token.TyF64},
		{"bool", token.TyBool}, {"char", token.TyChar}, {"str", token.TyStr},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestKeywords_WordBoundary(t *testing.T) {
	// ключевое слово внутри идентификатора не распознаётся
	for _, input := range []string{"i8x", "iffy", "letter", "module_name", "_for", "funcs", "x_i32", "TRUE", "Let", "str2"} {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.Ident, input)
		})
	}
}

func TestIdentifiers_ASCII(t *testing.T) {
	for _, input := range []string{"foo", "_bar", "__test", "x123", "camelCase", "UPPER", "_"} {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.Ident, input)
		})
	}
}

func TestNumbers(t *testing.T) {
	expectSingleToken(t, "3.14", token.FloatLit, "3.14")
	expectSingleToken(t, "0.5", token.FloatLit, "0.5")
	expectSingleToken(t, "42", token.IntLit, "42")
	expectSingleToken(t, "007", token.IntLit, "007")

	// без дробной части это int и точка
	expectTokens(t, "3.", []token.Kind{token.IntLit, token.Dot})
	expectTokens(t, ".5", []token.Kind{token.Dot, token.IntLit})
	expectTokens(t, "1.2.3", []token.Kind{token.FloatLit, token.Dot, token.IntLit})
	expectTokens(t, "x.y", []token.Kind{token.Ident, token.Dot, token.Ident})
	expectTokens(t, "-5", []token.Kind{token.Minus, token.IntLit})
}

func TestNumbers_GluedToLetters(t *testing.T) {
	le := expectLexError(t, "3abc", diag.LexBadNumber, 0)
	if le.Span.End != 4 {
		t.Errorf("bad number span should cover the whole word, got %v", le.Span)
	}
	expectLexError(t, "let n = 12u8;", diag.LexBadNumber, 8)
}

func TestCharLiterals(t *testing.T) {
	tests := []string{`'a'`, `' '`, `'\n'`, `'\''`, `'\\'`, `'"'`, `'ж'`}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.CharLit, input)
		})
	}
}

func TestCharLiterals_Malformed(t *testing.T) {
	le := expectLexError(t, "'a", diag.LexUnterminatedChar, 0)
	if le.Char != '\'' {
		t.Errorf("offending char: want quote, got %q", le.Char)
	}
	expectLexError(t, "x = ''", diag.LexUnterminatedChar, 4)
	expectLexError(t, "'ab'", diag.LexUnterminatedChar, 0)
	expectLexError(t, "'\\\n'", diag.LexUnterminatedChar, 0)
	expectLexError(t, "'", diag.LexUnterminatedChar, 0)
}

func TestOperators_TwoCharBeforePrefix(t *testing.T) {
	expectSingleToken(t, "==", token.EqEq, "==")
	expectSingleToken(t, "!=", token.BangEq, "!=")
	expectSingleToken(t, "<=", token.LtEq, "<=")
	expectSingleToken(t, ">=", token.GtEq, ">=")
	expectSingleToken(t, "->", token.Arrow, "->")

	expectTokens(t, "===", []token.Kind{token.EqEq, token.Assign})
	expectTokens(t, "a-b", []token.Kind{token.Ident, token.Minus, token.Ident})
	expectTokens(t, "-->", []token.Kind{token.Minus, token.Arrow})
	expectTokens(t, "< =", []token.Kind{token.Lt, token.Assign})
}

func TestOperators_Single(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"{", token.LBrace}, {"}", token.RBrace},
		{"[", token.LBracket}, {"]", token.RBracket},
		{"(", token.LParen}, {")", token.RParen},
		{"=", token.Assign}, {"<", token.Lt}, {">", token.Gt},
		{"^", token.Pointer}, {"&", token.Amp},
		{":", token.Colon}, {";", token.Semicolon}, {",", token.Comma}, {".", token.Dot},
		{"+", token.Plus}, {"-", token.Minus}, {"/", token.Slash}, {"%", token.Percent},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestStar_AlwaysPointerDereference(t *testing.T) {
	expectSingleToken(t, "*", token.PointerDeref, "*")
	toks := expectTokens(t, "a * b", []token.Kind{token.Ident, token.PointerDeref, token.Ident})
	for _, tok := range toks {
		if tok.Kind == token.Multiply {
			t.Fatalf("MULTIPLY must be shadowed")
		}
	}
}

func TestBangAlone_IsUnknown(t *testing.T) {
	le := expectLexError(t, "!x", diag.LexUnknownChar, 0)
	if !strings.Contains(le.Msg, "EXCLAMATION MARK") {
		t.Errorf("message should name the character: %q", le.Msg)
	}
}

func TestTrivia_Comments(t *testing.T) {
	expectTokens(t, "// hello\nlet x", []token.Kind{token.KwLet, token.Ident})
	expectTokens(t, "let /* a */ x", []token.Kind{token.KwLet, token.Ident})
	expectTokens(t, "/* a\n b */let", []token.Kind{token.KwLet})
	expectTokens(t, "a//b", []token.Kind{token.Ident})
	expectTokens(t, "a/ /b", []token.Kind{token.Ident, token.Slash, token.Slash, token.Ident})
	// не вложенные: первый */ закрывает
	expectTokens(t, "/* /* x */ y", []token.Kind{token.Ident})
	expectTokens(t, "/**/", nil)
	expectTokens(t, "// only", nil)
}

func TestTrivia_UnterminatedBlockComment(t *testing.T) {
	expectLexError(t, "let a; /* never", diag.LexUnterminatedBlockComment, 7)
	expectLexError(t, "/*/", diag.LexUnterminatedBlockComment, 0)
}

func TestTrivia_Whitespace(t *testing.T) {
	expectTokens(t, "", nil)
	expectTokens(t, " \t\r\n\n  ", nil)
	expectTokens(t, "a\r\nb", []token.Kind{token.Ident, token.Ident})
}

func TestLexer_UnknownCharacter(t *testing.T) {
	lx, _ := makeTestLexer("let x = @;")
	var got []token.Token
	var err error
	for {
		var tok token.Token
		tok, err = lx.Next()
		if err != nil || tok.Kind == token.EOF {
			break
		}
		got = append(got, tok)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tokens before the error, got %s", tokensToString(got))
	}
	le, ok := lexer.AsLexical(err)
	if !ok {
		t.Fatalf("expected LexicalError, got %v", err)
	}
	if le.Offset != 8 || le.Char != '@' || le.Code != diag.LexUnknownChar {
		t.Errorf("unexpected error %+v", le)
	}
	if want := "test.vl:1:9: unexpected character '@' (COMMERCIAL AT)"; le.Error() != want {
		t.Errorf("Error():\nwant %q\ngot  %q", want, le.Error())
	}

	// лексер исчерпан: та же ошибка, нулевой токен
	tok, again := lx.Next()
	if !errors.Is(again, err) || tok.Kind != token.Invalid {
		t.Errorf("lexer should stay failed, got %v %v", tok.Kind, again)
	}
}

func TestLexer_NonASCII(t *testing.T) {
	le := expectLexError(t, "имя", diag.LexUnknownChar, 0)
	if le.Char != 'и' {
		t.Errorf("char: got %q", le.Char)
	}
	le = expectLexError(t, "a \xff", diag.LexUnknownChar, 2)
	if !strings.Contains(le.Msg, "byte 0xff") {
		t.Errorf("message: %q", le.Msg)
	}
}

func TestLexer_PositionOnLaterLine(t *testing.T) {
	le := expectLexError(t, "let a = 1;\n  $", diag.LexUnknownChar, 13)
	if le.Pos.Line != 2 || le.Pos.Col != 3 {
		t.Errorf("pos: got %d:%d", le.Pos.Line, le.Pos.Col)
	}
}

func TestLexer_EOF(t *testing.T) {
	lx, _ := makeTestLexer("x")
	if tok, _ := lx.Next(); tok.Kind != token.Ident {
		t.Fatalf("expected identifier, got %v", tok.Kind)
	}
	for range 3 {
		tok, err := lx.Next()
		if err != nil || tok.Kind != token.EOF {
			t.Fatalf("expected EOF forever, got %v %v", tok.Kind, err)
		}
		if !tok.Span.Empty() || tok.Span.Start != 1 {
			t.Errorf("EOF span: %v", tok.Span)
		}
	}
}

func TestLexer_PeekBehavior(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	p1, _ := lx.Peek()
	p2, _ := lx.Peek()
	if p1.Text != "a" || p2.Text != "a" {
		t.Fatalf("Peek must not consume: %q %q", p1.Text, p2.Text)
	}
	n1, _ := lx.Next()
	n2, _ := lx.Next()
	if n1.Text != "a" || n2.Text != "b" {
		t.Fatalf("unexpected sequence %q %q", n1.Text, n2.Text)
	}
}

func TestLexer_KeepTrivia(t *testing.T) {
	src := "// c\nlet  x /* b */ = 1; \n"
	file := makeFile(src)
	lx := lexer.New(file, lexer.Options{KeepTrivia: true})

	var b strings.Builder
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatal(err)
		}
		b.WriteString(tok.Source())
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if b.String() != src {
		t.Fatalf("reconstruction mismatch:\nwant %q\ngot  %q", src, b.String())
	}
	if got := toks[0].Leading; len(got) != 2 || got[0].Kind != token.Comment || got[1].Kind != token.Newline {
		t.Errorf("leading of LET: %+v", got)
	}
	if got := toks[len(toks)-1].Leading; len(got) != 2 || got[0].Kind != token.Skip || got[1].Kind != token.Newline {
		t.Errorf("trailing trivia on EOF: %+v", got)
	}
	// каждый токен владеет своим срезом
	if len(toks[1].Leading) != 1 || toks[1].Leading[0].Text != "  " {
		t.Errorf("leading of x: %+v", toks[1].Leading)
	}
}

func TestLexer_DefaultDropsTrivia(t *testing.T) {
	lx, _ := makeTestLexer("  a // c\n")
	tok, _ := lx.Next()
	if tok.Leading != nil {
		t.Errorf("leading trivia without KeepTrivia: %+v", tok.Leading)
	}
}

func TestLexer_MaxTokenLength(t *testing.T) {
	long := strings.Repeat("a", 65)
	lx := lexer.New(makeFile("x "+long), lexer.Options{MaxTokenLength: 64})
	if tok, err := lx.Next(); err != nil || tok.Text != "x" {
		t.Fatalf("first token: %v %v", tok, err)
	}
	_, err := lx.Next()
	le, ok := lexer.AsLexical(err)
	if !ok || le.Code != diag.LexTokenTooLong || le.Offset != 2 {
		t.Fatalf("expected LexTokenTooLong at 2, got %v", err)
	}

	// комментарии не ограничены
	lx = lexer.New(makeFile("// "+long+"\nx"), lexer.Options{MaxTokenLength: 64})
	if tok, err := lx.Next(); err != nil || tok.Text != "x" {
		t.Fatalf("comment should not be limited: %v %v", tok, err)
	}

	// без MaxTokenLength длина не ограничена
	huge := strings.Repeat("a", lexer.DefaultMaxTokenLength+1)
	toks, err := lexer.Tokenize(huge)
	if err != nil || len(toks) != 1 || len(toks[0].Text) != len(huge) {
		t.Fatalf("default options must not limit lexemes: %d tokens, %v", len(toks), err)
	}
}

func TestLexer_SampleProgram(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "sample.vl"))
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		t.Fatalf("sample should tokenize: %v", err)
	}
	head := []token.Kind{
		token.KwModule, token.Ident,
		token.KwLet, token.Ident, token.Colon, token.TyI32, token.Assign, token.IntLit, token.Semicolon,
		token.KwLet, token.Ident, token.Colon, token.TyF64, token.Assign, token.FloatLit, token.Semicolon,
		token.KwFunc, token.Ident, token.LParen,
	}
	got := testkit.Kinds(toks)
	if len(got) < len(head) {
		t.Fatalf("too few tokens: %d", len(got))
	}
	for i, k := range head {
		if got[i] != k {
			t.Fatalf("token %d: want %v, got %v (%s)", i, k, got[i], tokensToString(toks[:i+1]))
		}
	}
	for _, tok := range toks {
		if tok.Kind.IsTrivia() {
			t.Fatalf("trivia %v leaked into the default stream", tok.Kind)
		}
	}
	if last := toks[len(toks)-1]; last.Kind != token.RBrace {
		t.Errorf("last token: %v", last.Kind)
	}
}

func TestLexer_TilingAndDeterminism(t *testing.T) {
	inputs := []string{
		"",
		"let y: f64 = 3.14;",
		"// hello\nlet x",
		"func f(a: ^i32) -> i32 { return *a; }\r\n",
		"let x = @;",
		"/* open",
		"'a",
		"3abc",
		"a\tb  \n\n/* c */ // d",
		"let a = 1; // c\n  @",
		"x  /* open",
	}
	for _, in := range inputs {
		file := makeFile(in)
		if err := testkit.CheckTiling(file); err != nil {
			t.Errorf("tiling %q: %v", in, err)
		}
		if err := testkit.CheckDeterminism(file, lexer.Options{}); err != nil {
			t.Errorf("determinism %q: %v", in, err)
		}
		if err := testkit.CheckDeterminism(file, lexer.Options{KeepTrivia: true}); err != nil {
			t.Errorf("determinism with trivia %q: %v", in, err)
		}
	}
}

func TestLexer_TriviaBeforeErrorIsKept(t *testing.T) {
	src := "let a = 1; // c\n  @"
	lx := lexer.New(makeFile(src), lexer.Options{KeepTrivia: true})
	var err error
	for err == nil {
		_, err = lx.Next()
	}
	le, ok := lexer.AsLexical(err)
	if !ok || le.Offset != 18 {
		t.Fatalf("expected error at 18, got %v", err)
	}
	want := []struct {
		kind       token.Kind
		start, end uint32
	}{
		{token.Skip, 10, 11},
		{token.Comment, 11, 15},
		{token.Newline, 15, 16},
		{token.Skip, 16, 18},
	}
	if len(le.Leading) != len(want) {
		t.Fatalf("leading trivia: got %+v", le.Leading)
	}
	for i, w := range want {
		tr := le.Leading[i]
		if tr.Kind != w.kind || tr.Span.Start != w.start || tr.Span.End != w.end {
			t.Errorf("trivia %d: got %v %v, want %v %d..%d", i, tr.Kind, tr.Span, w.kind, w.start, w.end)
		}
	}

	lx = lexer.New(makeFile(src), lexer.Options{})
	for err = nil; err == nil; {
		_, err = lx.Next()
	}
	if le, _ := lexer.AsLexical(err); le.Leading != nil {
		t.Errorf("trivia without KeepTrivia: %+v", le.Leading)
	}
}
