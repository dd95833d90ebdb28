package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/lexer"
	"vela/internal/source"
	"vela/internal/token"
)

// TokenFormat selects the rendering of a token stream.
type TokenFormat uint8

const (
	TokenFormatPretty TokenFormat = iota
	TokenFormatJSON
	TokenFormatMsgpack
	TokenFormatDump
)

var tokenFormatNames = [...]string{
	TokenFormatPretty:  "pretty",
	TokenFormatJSON:    "json",
	TokenFormatMsgpack: "msgpack",
	TokenFormatDump:    "dump",
}

func (f TokenFormat) String() string {
	if int(f) < len(tokenFormatNames) {
		return tokenFormatNames[f]
	}
	return "unknown"
}

// ParseTokenFormat converts a flag or config value to TokenFormat.
func ParseTokenFormat(s string) (TokenFormat, error) {
	for i, name := range tokenFormatNames {
		if s == name {
			return TokenFormat(i), nil
		}
	}
	return TokenFormatPretty, fmt.Errorf("unknown format %q (expected: pretty|json|msgpack|dump)", s)
}

// TokenOpts configures token output.
type TokenOpts struct {
	Color    bool
	PathMode PathMode
}

type TriviaOutput struct {
	Kind string      `json:"kind" msgpack:"kind"`
	Text string      `json:"text" msgpack:"text"`
	Span source.Span `json:"span" msgpack:"span"`
}

type TokenOutput struct {
	Kind    string         `json:"kind" msgpack:"kind"`
	Text    string         `json:"text,omitempty" msgpack:"text,omitempty"`
	Span    source.Span    `json:"span" msgpack:"span"`
	Line    uint32         `json:"line" msgpack:"line"`
	Col     uint32         `json:"col" msgpack:"col"`
	Leading []TriviaOutput `json:"leading,omitempty" msgpack:"leading,omitempty"`
}

type LexErrorOutput struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	Offset  uint32 `json:"offset" msgpack:"offset"`
	Line    uint32 `json:"line" msgpack:"line"`
	Col     uint32 `json:"col" msgpack:"col"`
}

// TokenStreamOutput is the document written by the json and msgpack formats
// for one file.
type TokenStreamOutput struct {
	File   string          `json:"file" msgpack:"file"`
	Tokens []TokenOutput   `json:"tokens" msgpack:"tokens"`
	Count  int             `json:"count" msgpack:"count"`
	Error  *LexErrorOutput `json:"error,omitempty" msgpack:"error,omitempty"`
}

// BuildTokenStream converts scanned tokens and an optional scan error.
func BuildTokenStream(file *source.File, tokens []token.Token, lexErr error, opts TokenOpts) TokenStreamOutput {
	out := TokenStreamOutput{
		File:   formatPath(file, opts.PathMode, ""),
		Tokens: make([]TokenOutput, 0, len(tokens)),
	}
	for _, tok := range tokens {
		pos := file.LineCol(tok.Span.Start)
		to := TokenOutput{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
			Line: pos.Line,
			Col:  pos.Col,
		}
		for _, tr := range tok.Leading {
			to.Leading = append(to.Leading, TriviaOutput{Kind: tr.Kind.String(), Text: tr.Text, Span: tr.Span})
		}
		out.Tokens = append(out.Tokens, to)
	}
	out.Count = len(out.Tokens)
	if le, ok := lexer.AsLexical(lexErr); ok {
		out.Error = &LexErrorOutput{
			Code:    le.Code.ID(),
			Message: le.Msg,
			Offset:  le.Offset,
			Line:    le.Pos.Line,
			Col:     le.Pos.Col,
		}
	}
	return out
}

// FormatTokens writes tokens of file in the chosen format. lexErr is the
// scan error, if any; only the structured formats embed it.
func FormatTokens(w io.Writer, format TokenFormat, file *source.File, tokens []token.Token, lexErr error, opts TokenOpts) error {
	switch format {
	case TokenFormatJSON:
		return FormatTokensJSON(w, BuildTokenStream(file, tokens, lexErr, opts))
	case TokenFormatMsgpack:
		return FormatTokensMsgpack(w, BuildTokenStream(file, tokens, lexErr, opts))
	case TokenFormatDump:
		return FormatTokensDump(w, tokens)
	default:
		return FormatTokensPretty(w, tokens, file, opts)
	}
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, file *source.File, opts TokenOpts) error {
	kindColor := color.New(color.FgCyan)
	if opts.Color {
		kindColor.EnableColor()
	} else {
		kindColor.DisableColor()
	}
	for i, tok := range tokens {
		start := file.LineCol(tok.Span.Start)
		end := file.LineCol(tok.Span.End)

		// kind выравниваем до цветовых escape-последовательностей
		line := fmt.Sprintf("%4d: %s", i+1, kindColor.Sprintf("%-22s", tok.Kind.String()))
		if tok.Text != "" {
			line += fmt.Sprintf(" %q", tok.Text)
		}
		line += fmt.Sprintf(" at %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		if len(tok.Leading) > 0 {
			kinds := make([]string, len(tok.Leading))
			for j, tr := range tok.Leading {
				kinds[j] = tr.Kind.String()
			}
			line += " (leading: " + strings.Join(kinds, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, stream TokenStreamOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stream)
}

// FormatTokensMsgpack writes one msgpack document per call, so several files
// can be streamed and read back with a msgpack.Decoder.
func FormatTokensMsgpack(w io.Writer, stream TokenStreamOutput) error {
	return msgpack.NewEncoder(w).Encode(stream)
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// FormatTokensDump пишет сырые структуры токенов через spew, для отладки.
func FormatTokensDump(w io.Writer, tokens []token.Token) error {
	dumpConfig.Fdump(w, tokens)
	return nil
}
