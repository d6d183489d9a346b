package cli

import (
	"fmt"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/koron-analytics/koron"
)

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var quote string

	cmd := &cobra.Command{
		Use:   "parse <sql>",
		Short: "Validate a query and print its metadata",
		Long: `Validate an analytic SQL query against the whitelist and print the extracted
metadata together with the regenerated data-extraction and data-aggregation
queries. Rejected queries report the offending construct and exit non-zero.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			quoteStyle, err := parseQuoteFlag(quote)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --quote flag", err)
			}
			return runParse(rootOpts, args[0], quoteStyle, cmd)
		},
	}

	cmd.Flags().StringVar(&quote, "quote", "",
		"identifier quote character for the data-extraction query (a single character, e.g. ' or `)")

	return cmd
}

// parseQuoteFlag converts the flag value to a quote style. Empty means
// unquoted; anything longer than one character is an error.
func parseQuoteFlag(value string) (koron.QuoteStyle, error) {
	if value == "" {
		return koron.QuoteNone, nil
	}
	r, size := utf8.DecodeRuneInString(value)
	if size != len(value) || r == utf8.RuneError {
		return koron.QuoteNone, fmt.Errorf("quote must be a single character, got %q", value)
	}
	return koron.QuoteStyle(r), nil
}

func runParse(opts *RootOptions, sql string, quote koron.QuoteStyle, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Parsing query: %s", sql)

	meta, err := koron.Parse(sql, quote)
	if err != nil {
		return reportParseError(formatter, err)
	}

	if formatter.Format != "text" {
		return formatter.Success(meta)
	}

	printMetadata(formatter, meta)
	return nil
}

// printMetadata renders the metadata for humans.
func printMetadata(formatter *OutputFormatter, meta *koron.QueryMetadata) {
	w := formatter.Writer

	fmt.Fprintf(w, "%s query accepted\n\n", color.GreenString("✓"))

	fmt.Fprintf(w, "  Function: %s\n", meta.Aggregation.Function)
	fmt.Fprintf(w, "  Column:   %s\n", meta.Aggregation.Column)
	if meta.Aggregation.Alias != "" {
		fmt.Fprintf(w, "  Alias:    %s\n", meta.Aggregation.Alias)
	}
	fmt.Fprintf(w, "  Table:    %s\n", meta.Table)
	if meta.Alias != "" {
		fmt.Fprintf(w, "  As:       %s\n", meta.Alias)
	}
	if meta.Filter != nil {
		fmt.Fprintf(w, "  Filter:   %s\n", renderFilter(meta.Filter))
	}

	fmt.Fprintf(w, "\n  Data extraction query:  %s\n", meta.DataExtractionQuery)
	if meta.DataAggregationQuery != "" {
		fmt.Fprintf(w, "  Data aggregation query: %s\n", meta.DataAggregationQuery)
	}
}

func renderFilter(filter *koron.Filter) string {
	if filter.Comparison.Value == "" {
		return fmt.Sprintf("%s %s", filter.Column, filter.Comparison)
	}
	return fmt.Sprintf("%s %s %s", filter.Column, filter.Comparison, filter.Comparison.Value)
}
