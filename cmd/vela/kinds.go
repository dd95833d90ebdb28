package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"vela/internal/lexer"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds [query]",
	Short: "List the pattern table in priority order",
	Long: `Kinds prints every row of the pattern table: its priority (0 is tried first),
the token kind and the pattern. An optional query fuzzy-filters by kind name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKinds,
}

func init() {
	kindsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runKinds(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	rows := filterRows(lexer.Table(), query)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "pretty":
		printRows(cmd.OutOrStdout(), rows)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// filterRows keeps rows whose kind name fuzzy-matches query, in table order.
func filterRows(rows []lexer.Row, query string) []lexer.Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	out := make([]lexer.Row, 0, len(rows))
	for _, r := range rows {
		if fuzzy.RankMatchNormalizedFold(query, r.Kind.String()) >= 0 {
			out = append(out, r)
		}
	}
	return out
}

func printRows(w io.Writer, rows []lexer.Row) {
	kindColor := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, r := range rows {
		line := fmt.Sprintf("%3d  %s %s", r.Priority, kindColor.Sprintf("%-20s", r.Kind), r.Pattern)
		if r.Skipped {
			line += dim.Sprint("  (skipped)")
		}
		fmt.Fprintln(w, line)
	}
}
