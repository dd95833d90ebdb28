package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"vela/internal/diag"
	"vela/internal/diagfmt"
	"vela/internal/driver"
	"vela/internal/lexer"
)

const (
	historyFile = ".vela_history"
	promptMain  = "vela> "
	promptCont  = "....> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Tokenize lines interactively",
	Long: `Repl reads source lines, tokenizes each one and prints the tokens or the lexical error.
An unterminated block comment continues onto the next line. Type :quit to exit.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().Bool("keep-trivia", false, "attach whitespace and comments to tokens as leading trivia")
}

// lineReader is the part of liner.State the prompt loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	keepTrivia, err := cmd.Flags().GetBool("keep-trivia")
	if err != nil {
		return fmt.Errorf("failed to get keep-trivia flag: %w", err)
	}
	mode, err := colorModeOf(cmd)
	if err != nil {
		return err
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// #nosec G304 -- history lives in the user's home
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		// #nosec G304 -- history lives in the user's home
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out := cmd.OutOrStdout()
	opts := driver.Options{KeepTrivia: keepTrivia}
	colored := useColor(mode, os.Stdout)
	for {
		src, ok := readByLexProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return nil
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := replEval(cmd, out, src, opts, colored); err != nil {
			return err
		}
	}
}

// replEval tokenizes one input and prints tokens, then the error, if any.
func replEval(cmd *cobra.Command, out io.Writer, src string, opts driver.Options, colored bool) error {
	res, err := driver.TokenizeSource(cmd.Context(), "<repl>", []byte(src), opts)
	if err != nil {
		return err
	}
	if err := diagfmt.FormatTokensPretty(out, res.Tokens, res.File, diagfmt.TokenOpts{Color: colored}); err != nil {
		return err
	}
	if res.Bag.Len() > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: colored})
	}
	return nil
}

// readByLexProbe reads lines until the buffer no longer ends inside a
// block comment. ok is false on EOF.
func readByLexProbe(r lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := r.Prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// liner.ErrPromptAborted: бросаем незаконченный ввод
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether src stops inside a block comment.
func incomplete(src string) bool {
	_, err := lexer.Tokenize(src)
	le, ok := lexer.AsLexical(err)
	return ok && le.Code == diag.LexUnterminatedBlockComment
}
