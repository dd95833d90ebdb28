package lexer

import (
	"unicode/utf8"

	"fortio.org/safecast"

	"vela/internal/diag"
	"vela/internal/source"
)

// SuggestFix proposes an insertion that completes a malformed literal:
// "*/" at the end of file for an open block comment, a closing quote after
// the first character of a char literal. Other errors have no fix.
func (e *LexicalError) SuggestFix(file *source.File) (diag.Fix, bool) {
	if e == nil || file == nil {
		return diag.Fix{}, false
	}
	switch e.Code {
	case diag.LexUnterminatedBlockComment:
		end, err := safecast.Conv[uint32](len(file.Content))
		if err != nil {
			return diag.Fix{}, false
		}
		return insertFix("insert `*/` at end of file", e.Span.File, end, "*/"), true
	case diag.LexUnterminatedChar:
		at, ok := charCloseOffset(file.Content, int(e.Offset))
		if !ok {
			return diag.Fix{}, false
		}
		pos, err := safecast.Conv[uint32](at)
		if err != nil {
			return diag.Fix{}, false
		}
		return insertFix("close the character literal", e.Span.File, pos, "'"), true
	}
	return diag.Fix{}, false
}

// Report emits e through r with its fix, if there is one.
func (e *LexicalError) Report(r diag.Reporter, file *source.File) {
	if r == nil || e == nil {
		return
	}
	b := diag.ReportError(r, e.Code, e.Span, e.Msg)
	if fx, ok := e.SuggestFix(file); ok {
		b.WithFix(fx.Title, fx.Edits...)
	}
	b.Emit()
}

func insertFix(title string, file source.FileID, at uint32, text string) diag.Fix {
	return diag.Fix{
		Title: title,
		Edits: []diag.FixEdit{{Span: source.Span{File: file, Start: at, End: at}, NewText: text}},
	}
}

// charCloseOffset returns where a closing quote turns src[off:] into a
// one-character literal. 'ab' and '' have no such place.
func charCloseOffset(src []byte, off int) (int, bool) {
	i := off + 1
	if i >= len(src) || src[i] == '\'' || src[i] == '\n' {
		return 0, false
	}
	if src[i] == '\\' {
		i++
		if i >= len(src) || src[i] == '\n' {
			return 0, false
		}
	}
	_, sz := utf8.DecodeRune(src[i:])
	i += sz
	if i < len(src) && (isWordByte(src[i]) || src[i] == '\'') {
		return 0, false
	}
	return i, true
}
