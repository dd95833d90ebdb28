package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vela/internal/diag"
	"vela/internal/diagfmt"
	"vela/internal/driver"
	"vela/internal/lexer"
	"vela/internal/source"
)

//go:embed sample.vl
var sampleSource []byte

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file.vl|directory>",
	Short: "Tokenize a vela source file or directory",
	Long: `Tokenize breaks vela source into tokens using the priority-ordered pattern table.
A directory is scanned recursively for files with the configured extensions.
Scanning a file stops at the first lexical error; the exit status is then 1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

func init() {
	registerTokenizeFlags(tokenizeCmd)
}

func registerTokenizeFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "token output format (pretty|json|msgpack|dump)")
	cmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|json|short)")
	cmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("sample", false, "tokenize the built-in sample program")
	cmd.Flags().Bool("keep-trivia", false, "attach whitespace and comments to tokens as leading trivia")
	cmd.Flags().Int("max-token-length", lexer.DefaultMaxTokenLength, "reject longer non-trivia tokens (0 = no limit)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directories (0=auto)")
	cmd.Flags().StringSlice("ext", nil, "source file extensions for directories (default .vl)")
	cmd.Flags().Bool("cache", false, "reuse token streams from the on-disk cache")
	cmd.Flags().Bool("clear-cache", false, "drop the token cache before scanning")
	cmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	sample, err := cmd.Flags().GetBool("sample")
	if err != nil {
		return fmt.Errorf("failed to get sample flag: %w", err)
	}
	if sample == (len(args) == 1) {
		return fmt.Errorf("expected exactly one of <path> or --sample")
	}

	settings, err := resolveTokenizeSettings(cmd, ".")
	if err != nil {
		return err
	}
	opts := driver.Options{
		MaxDiagnostics: settings.maxDiagnostics,
		KeepTrivia:     settings.keepTrivia,
		MaxTokenLength: settings.maxTokenLength,
		Jobs:           settings.jobs,
		Extensions:     settings.extensions,
		Timings:        settings.timings,
	}
	if settings.cache || settings.clearCache {
		cache, cacheErr := driver.OpenTokenCache("vela")
		if cacheErr != nil {
			return fmt.Errorf("token cache: %w", cacheErr)
		}
		if settings.clearCache {
			if cacheErr := cache.DropAll(); cacheErr != nil {
				return fmt.Errorf("token cache: %w", cacheErr)
			}
		}
		if settings.cache {
			opts.Cache = cache
		}
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if sample {
		res, err := driver.TokenizeSource(ctx, "sample.vl", sampleSource, opts)
		if err != nil {
			return err
		}
		return finishReport(cmd, reportFile(out, errOut, res, settings))
	}

	path := args[0]
	st, err := os.Stat(path)
	if err != nil {
		printLoadError(errOut, path, err)
		return silent(cmd)
	}
	if st.IsDir() {
		return runTokenizeDir(cmd, path, opts, settings)
	}

	res, err := driver.Tokenize(ctx, path, opts)
	if err != nil {
		if driver.IsCancelled(err) {
			return err
		}
		printLoadError(errOut, path, err)
		return silent(cmd)
	}
	return finishReport(cmd, reportFile(out, errOut, res, settings))
}

func finishReport(cmd *cobra.Command, err error) error {
	if errors.Is(err, errReported) {
		return silent(cmd)
	}
	return err
}

func runTokenizeDir(cmd *cobra.Command, dir string, opts driver.Options, settings tokenizeSettings) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var (
		fileSet *source.FileSet
		results []driver.TokenizeDirResult
		err     error
	)
	if shouldUseTUI(settings.ui) && !settings.quiet {
		files, listErr := driver.ListSourceFiles(dir, settings.extensions)
		if listErr != nil {
			return listErr
		}
		fileSet, results, err = runTokenizeDirWithUI(ctx, "tokenize "+dir, files, dir, opts)
	} else {
		fileSet, results, err = driver.TokenizeDir(ctx, dir, opts)
	}
	if err != nil {
		return err
	}

	tokOpts := diagfmt.TokenOpts{Color: useColor(settings.color, os.Stdout), PathMode: settings.pathMode}
	var total int
	for _, r := range results {
		if r.LoadErr != nil {
			printLoadError(errOut, r.Path, r.LoadErr)
			continue
		}
		total += len(r.Tokens)
		if settings.format == diagfmt.TokenFormatPretty || settings.format == diagfmt.TokenFormatDump {
			fmt.Fprintf(out, "== %s ==\n", r.Path)
		}
		if err := diagfmt.FormatTokens(out, settings.format, r.File, r.Tokens, lexErrOf(r.TokenizeResult), tokOpts); err != nil {
			return err
		}
	}

	merged := driver.MergeBags(results, settings.maxDiagnostics)
	if err := printDiagnostics(errOut, merged, fileSet, settings); err != nil {
		return err
	}
	if !settings.quiet {
		summary := fmt.Sprintf("tokenized %d file(s), %d token(s)", len(results), total)
		if merged.HasWarnings() && !merged.HasErrors() {
			summary += " with warnings"
		}
		fmt.Fprintln(errOut, summary)
	}
	if driver.HasLexErrors(results) {
		return silent(cmd)
	}
	return nil
}

// reportFile prints diagnostics to errOut and tokens to out; errReported
// means a lexical error was printed.
func reportFile(out, errOut io.Writer, res *driver.TokenizeResult, settings tokenizeSettings) error {
	if err := printDiagnostics(errOut, res.Bag, res.FileSet, settings); err != nil {
		return err
	}
	tokOpts := diagfmt.TokenOpts{Color: useColor(settings.color, os.Stdout), PathMode: settings.pathMode}
	if err := diagfmt.FormatTokens(out, settings.format, res.File, res.Tokens, lexErrOf(res), tokOpts); err != nil {
		return err
	}
	if res.LexErr != nil {
		return errReported
	}
	return nil
}

func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, settings tokenizeSettings) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	switch settings.diagFormat {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         settings.pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	case "short":
		_, err := fmt.Fprintln(w, diag.FormatShortDiagnostics(bag.Items(), fs, false))
		return err
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     useColor(settings.color, os.Stderr),
		Context:   1,
		PathMode:  settings.pathMode,
		ShowNotes: true,
		ShowFixes: true,
	})
	return nil
}

// printLoadError renders an I/O failure in the diagnostic header format;
// there is no FileID to attach a span to.
func printLoadError(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "%s: ERROR %s: %v\n", filepath.ToSlash(path), diag.IOLoadFileError.ID(), err)
}

func lexErrOf(res *driver.TokenizeResult) error {
	if res == nil || res.LexErr == nil {
		return nil
	}
	return res.LexErr
}

// silent suppresses cobra's own error print: diagnostics are already out.
func silent(cmd *cobra.Command) error {
	cmd.SilenceErrors = true
	return errReported
}
