package lexer

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/token"
)

// Lexer scans one file. It owns its cursor; the pattern table is shared and
// read-only, so any number of lexers may run concurrently.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	err    *LexicalError  // после ошибки лексер исчерпан
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next возвращает следующий значимый токен.
// После конца ввода всегда возвращает EOF. After a LexicalError every call
// returns the same error and a zero token.
func (lx *Lexer) Next() (token.Token, error) {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok, nil
	}
	if lx.err != nil {
		return token.Token{}, lx.err
	}

	for {
		if lx.cursor.EOF() {
			tok := token.Token{Kind: token.EOF, Span: lx.emptySpan()}
			tok.Leading, lx.hold = lx.hold, nil
			return tok, nil
		}

		entry, n, err := lx.match()
		if err != nil {
			return token.Token{}, lx.fail(err)
		}
		if lx.opts.tooLong(entry.Kind, n) {
			return token.Token{}, lx.fail(lx.tooLong(entry.Kind, n))
		}

		start := lx.cursor.Mark()
		lx.cursor.Advance(n)
		sp := lx.cursor.SpanFrom(start)
		text := string(lx.file.Content[sp.Start:sp.End])

		if entry.Kind.IsTrivia() {
			if lx.opts.KeepTrivia {
				lx.hold = append(lx.hold, token.Trivia{Kind: entry.Kind, Span: sp, Text: text})
			}
			continue
		}

		tok := token.Token{Kind: entry.Kind, Span: sp, Text: text}
		tok.Leading, lx.hold = lx.hold, nil
		return tok, nil
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() (token.Token, error) {
	tok, err := lx.Next()
	if err != nil {
		return tok, err
	}
	lx.look = &tok
	return tok, nil
}

// Offset returns the current cursor position.
func (lx *Lexer) Offset() uint32 {
	return lx.cursor.Off
}

// File returns the file being scanned.
func (lx *Lexer) File() *source.File {
	return lx.file
}

// match tries every table row in order at the cursor.
func (lx *Lexer) match() (*Entry, int, *LexicalError) {
	src := lx.file.Content
	off := int(lx.cursor.Off)
	rest := src[off:]

	for i := range table {
		e := &table[i]
		n := e.Match(src, off)
		if n < 0 || n > len(rest) {
			panic(fmt.Errorf("lexer: %s matcher returned length %d at offset %d", e.Kind, n, off))
		}
		if n > 0 {
			return e, n, nil
		}
		if e.Opener != "" && bytes.HasPrefix(rest, []byte(e.Opener)) {
			return nil, 0, lx.malformed(e)
		}
	}
	return nil, 0, lx.unmatched()
}

func (lx *Lexer) unmatched() *LexicalError {
	rest := lx.cursor.Rest()
	r, sz, desc := describeChar(rest)
	code := diag.LexUnknownChar
	msg := "unexpected character " + desc
	if isDigit(rest[0]) {
		// цифры, за которыми сразу идёт буква или '_': "3abc", "1.5e3"
		code = diag.LexBadNumber
		msg = "malformed number literal"
		sz = wordRun(rest)
	}
	return lx.newError(code, r, sz, msg)
}

func (lx *Lexer) malformed(e *Entry) *LexicalError {
	r, _, _ := describeChar(lx.cursor.Rest())
	switch e.Kind {
	case token.CommentBlock:
		return lx.newError(diag.LexUnterminatedBlockComment, r, len(e.Opener), "unterminated block comment")
	case token.CharLit:
		return lx.newError(diag.LexUnterminatedChar, r, len(e.Opener), "unterminated or malformed character literal")
	default:
		return lx.newError(diag.LexUnknownChar, r, len(e.Opener), fmt.Sprintf("malformed %s", e.Kind))
	}
}

func (lx *Lexer) tooLong(kind token.Kind, n int) *LexicalError {
	r, _, _ := describeChar(lx.cursor.Rest())
	msg := fmt.Sprintf("%s token of %d bytes exceeds the limit of %d", kind, n, lx.opts.MaxTokenLength)
	return lx.newError(diag.LexTokenTooLong, r, n, msg)
}

func (lx *Lexer) newError(code diag.Code, r rune, width int, msg string) *LexicalError {
	uw, err := safecast.Conv[uint32](width)
	if err != nil {
		panic(fmt.Errorf("error span overflow: %w", err))
	}
	off := lx.cursor.Off
	return &LexicalError{
		Code:   code,
		Path:   lx.file.Path,
		Offset: off,
		Pos:    lx.file.LineCol(off),
		Char:   r,
		Span:   source.Span{File: lx.file.ID, Start: off, End: off + uw},
		Msg:    msg,
	}
}

// fail records err, reports it once and exhausts the lexer. Held trivia
// moves to the error so the scanned prefix stays covered.
func (lx *Lexer) fail(err *LexicalError) error {
	err.Leading, lx.hold = lx.hold, nil
	lx.err = err
	err.Report(lx.opts.Reporter, lx.file)
	return err
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func wordRun(b []byte) int {
	n := 0
	for n < len(b) && (isWordByte(b[n]) || b[n] == '.') {
		n++
	}
	return max(n, 1)
}
