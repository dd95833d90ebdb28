package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vela/internal/diag"
	"vela/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой диагностики:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   1 | let x = @;
//	     |         ^
//
// затем Notes и Fixes, если включены.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostic(s) suppressed\n", dropped)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	path := formatPath(f, opts.PathMode, fs.BaseDir())

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, start.Line, start.Col,
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message)
	writeSnippet(w, f, d.Primary, opts, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos := nf.LineCol(n.Span.Start)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				formatPath(nf, opts.PathMode, fs.BaseDir()), pos.Line, pos.Col, n.Msg)
		}
	}
	if opts.ShowFixes {
		for _, fx := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("fix:"), fx.Title)
			for _, e := range fx.Edits {
				if e.Span.Empty() {
					at := f.LineCol(e.Span.Start)
					fmt.Fprintf(w, "      insert %q at %d:%d\n", e.NewText, at.Line, at.Col)
					continue
				}
				fmt.Fprintf(w, "      replace %q with %q\n", f.Text(e.Span), e.NewText)
			}
		}
	}
}

// writeSnippet печатает строку с ошибкой, Context строк вокруг и каретки под Span.
func writeSnippet(w io.Writer, f *source.File, sp source.Span, opts PrettyOpts, p palette) {
	if len(f.Content) == 0 && sp.Empty() {
		return
	}
	pos := f.LineCol(sp.Start)
	lineCount, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		return
	}
	ctx, err := safecast.Conv[uint32](max(opts.Context, 0))
	if err != nil {
		ctx = 0
	}

	first := pos.Line - min(ctx, pos.Line-1)
	last := min(pos.Line+ctx, lineCount)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := displayLine(f.GetLine(ln), opts.Width)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth+1, ln), text)
		if ln != pos.Line {
			continue
		}
		raw := f.GetLine(ln)
		col := min(int(pos.Col-1), len(raw))
		pad := runewidth.StringWidth(expandTabs(raw[:col]))
		// каретки до конца строки, если span многострочный
		end := min(col+int(sp.Len()), len(raw))
		width := max(runewidth.StringWidth(expandTabs(raw[col:end])), 1)
		if opts.Width > 0 && pad+width > opts.Width {
			width = max(opts.Width-pad, 1)
		}
		fmt.Fprintf(w, "%s %s%s\n",
			p.gutter.Sprintf("%*s |", gutterWidth+1, ""),
			strings.Repeat(" ", pad),
			p.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

func displayLine(line string, width int) string {
	line = expandTabs(strings.TrimRight(line, "\r"))
	if width > 0 && runewidth.StringWidth(line) > width {
		return runewidth.Truncate(line, width, "…")
	}
	return line
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
