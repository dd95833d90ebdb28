package lexer

import (
	"bytes"
	"unicode/utf8"
)

// Matcher reports the length of an anchored match starting exactly at off,
// or 0 when nothing matches there. It must not look for matches further ahead.
type Matcher func(src []byte, off int) int

// Word bytes are the ASCII identifier class; boundaries are judged on them alone.
func isWordByte(b byte) bool {
	return b == '_' || isDigit(b) || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// boundaryBefore reports whether a word may start at off.
func boundaryBefore(src []byte, off int) bool {
	return off == 0 || !isWordByte(src[off-1])
}

// boundaryAfter reports whether a word may end at end.
func boundaryAfter(src []byte, end int) bool {
	return end >= len(src) || !isWordByte(src[end])
}

// literal matches s verbatim.
func literal(s string) Matcher {
	lit := []byte(s)
	return func(src []byte, off int) int {
		if bytes.HasPrefix(src[off:], lit) {
			return len(lit)
		}
		return 0
	}
}

// word matches s only as a whole word, so "iffy" never yields "if".
func word(s string) Matcher {
	lit := []byte(s)
	return func(src []byte, off int) int {
		if !boundaryBefore(src, off) || !bytes.HasPrefix(src[off:], lit) {
			return 0
		}
		if !boundaryAfter(src, off+len(lit)) {
			return 0
		}
		return len(lit)
	}
}

func digitRun(src []byte, i int) int {
	j := i
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	return j - i
}

// matchFloat: digits '.' digits, word-bounded on both sides.
func matchFloat(src []byte, off int) int {
	if !boundaryBefore(src, off) {
		return 0
	}
	whole := digitRun(src, off)
	if whole == 0 {
		return 0
	}
	dot := off + whole
	if dot >= len(src) || src[dot] != '.' {
		return 0
	}
	frac := digitRun(src, dot+1)
	if frac == 0 {
		return 0
	}
	end := dot + 1 + frac
	if !boundaryAfter(src, end) {
		return 0
	}
	return end - off
}

// matchInt: digits, word-bounded on both sides.
func matchInt(src []byte, off int) int {
	if !boundaryBefore(src, off) {
		return 0
	}
	n := digitRun(src, off)
	if n == 0 || !boundaryAfter(src, off+n) {
		return 0
	}
	return n
}

// matchIdent: [A-Za-z_][A-Za-z0-9_]*, word-bounded.
func matchIdent(src []byte, off int) int {
	if !boundaryBefore(src, off) || !isIdentStartByte(src[off]) {
		return 0
	}
	end := off + 1
	for end < len(src) && isWordByte(src[end]) {
		end++
	}
	return end - off
}

// matchChar: a quote, then either a backslash and any one character except a
// newline, or any one character except a backslash or a quote, then a quote.
func matchChar(src []byte, off int) int {
	if src[off] != '\'' {
		return 0
	}
	i := off + 1
	if i >= len(src) {
		return 0
	}
	if src[i] == '\\' {
		i++
		if i >= len(src) || src[i] == '\n' {
			return 0
		}
	} else if src[i] == '\'' {
		return 0
	}
	_, sz := utf8.DecodeRune(src[i:])
	i += sz
	if i >= len(src) || src[i] != '\'' {
		return 0
	}
	return i + 1 - off
}

// matchLineComment: '//' up to, not including, the next newline.
func matchLineComment(src []byte, off int) int {
	if !bytes.HasPrefix(src[off:], []byte("//")) {
		return 0
	}
	if nl := bytes.IndexByte(src[off:], '\n'); nl >= 0 {
		return nl
	}
	return len(src) - off
}

// matchBlockComment: '/*' through the nearest '*/'; nesting is not supported.
func matchBlockComment(src []byte, off int) int {
	if !bytes.HasPrefix(src[off:], []byte("/*")) {
		return 0
	}
	end := bytes.Index(src[off+2:], []byte("*/"))
	if end < 0 {
		return 0
	}
	return 2 + end + 2
}

// matchSpace: a run of ' ', '\t', '\r'.
func matchSpace(src []byte, off int) int {
	i := off
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\r') {
		i++
	}
	return i - off
}
