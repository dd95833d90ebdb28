package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vela/internal/diagfmt"
	"vela/internal/project"
)

// tokenizeSettings is the merged view of vela.toml and tokenize flags.
type tokenizeSettings struct {
	format         diagfmt.TokenFormat
	diagFormat     string
	pathMode       diagfmt.PathMode
	maxDiagnostics int
	maxTokenLength int
	jobs           int
	keepTrivia     bool
	cache          bool
	clearCache     bool
	extensions     []string
	ui             uiMode
	quiet          bool
	timings        bool
	color          colorMode
	manifest       string
}

// resolveTokenizeSettings reads flags and overlays vela.toml values for
// every flag the user did not set explicitly.
func resolveTokenizeSettings(cmd *cobra.Command, startDir string) (tokenizeSettings, error) {
	var s tokenizeSettings
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	formatStr, err := flags.GetString("format")
	if err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	if s.diagFormat, err = flags.GetString("diag-format"); err != nil {
		return s, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	pathModeStr, err := flags.GetString("path-mode")
	if err != nil {
		return s, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if s.maxTokenLength, err = flags.GetInt("max-token-length"); err != nil {
		return s, fmt.Errorf("failed to get max-token-length flag: %w", err)
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if s.keepTrivia, err = flags.GetBool("keep-trivia"); err != nil {
		return s, fmt.Errorf("failed to get keep-trivia flag: %w", err)
	}
	if s.cache, err = flags.GetBool("cache"); err != nil {
		return s, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if s.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return s, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if s.extensions, err = flags.GetStringSlice("ext"); err != nil {
		return s, fmt.Errorf("failed to get ext flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.color, err = colorModeOf(cmd); err != nil {
		return s, err
	}

	manifest, ok, err := project.LoadManifest(startDir)
	if err != nil {
		return s, err
	}
	if ok {
		s.manifest = manifest.Path
		cfg := manifest.Config.Tokenize
		if cfg.Format != "" && !flags.Changed("format") {
			formatStr = cfg.Format
		}
		if cfg.MaxDiagnostics > 0 && !root.Changed("max-diagnostics") {
			s.maxDiagnostics = cfg.MaxDiagnostics
		}
		if cfg.MaxTokenLength > 0 && !flags.Changed("max-token-length") {
			s.maxTokenLength = cfg.MaxTokenLength
		}
		if cfg.Jobs > 0 && !flags.Changed("jobs") {
			s.jobs = cfg.Jobs
		}
		if !flags.Changed("keep-trivia") {
			s.keepTrivia = s.keepTrivia || cfg.KeepTrivia
		}
		if !flags.Changed("cache") {
			s.cache = s.cache || cfg.Cache
		}
		if len(cfg.Extensions) > 0 && !flags.Changed("ext") {
			s.extensions = cfg.Extensions
		}
	}

	if s.format, err = diagfmt.ParseTokenFormat(strings.ToLower(formatStr)); err != nil {
		return s, err
	}
	switch s.diagFormat {
	case "pretty", "json", "short":
	default:
		return s, fmt.Errorf("invalid --diag-format value %q (expected pretty|json|short)", s.diagFormat)
	}
	if s.pathMode, err = diagfmt.ParsePathMode(pathModeStr); err != nil {
		return s, err
	}
	if s.ui, err = readUIMode(uiStr); err != nil {
		return s, err
	}
	if s.maxTokenLength < 0 {
		return s, fmt.Errorf("--max-token-length must be >= 0")
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must be >= 0")
	}
	return s, nil
}
