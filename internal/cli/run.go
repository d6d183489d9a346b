package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/koron-analytics/koron"
	"github.com/koron-analytics/koron/internal/stats"
	"github.com/koron-analytics/koron/internal/store"
)

// RunResult holds the outcome of executing a validated query against a
// database: the metadata, the raw values fetched by the data-extraction
// query, and the aggregate computed over them. EngineResult carries the
// database's own answer from the data-aggregation query when the engine
// could run it.
type RunResult struct {
	Metadata     *koron.QueryMetadata `json:"metadata" yaml:"metadata"`
	Values       int                  `json:"values" yaml:"values"`
	Result       float64              `json:"result" yaml:"result"`
	EngineResult string               `json:"engine_result,omitempty" yaml:"engine_result,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "run <sql>",
		Short: "Validate a query and execute it against a SQLite database",
		Long: `Validate an analytic SQL query, fetch the raw column values with the
regenerated data-extraction query and compute the aggregation client-side.
When the query has a data-aggregation form, it is also executed in the
database and its result reported alongside.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRun(opts *RootOptions, sql, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	meta, err := koron.Parse(sql, koron.QuoteNone)
	if err != nil {
		return reportParseError(formatter, err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("database %s not found", dbPath), err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer s.Close()

	ctx := cmd.Context()

	formatter.VerboseLog("Executing: %s", meta.DataExtractionQuery)
	rows, err := s.QueryRows(ctx, meta.DataExtractionQuery)
	if err != nil {
		return WrapExitError(ExitCommandError, "data extraction failed", err)
	}
	formatter.VerboseLog("Fetched %d row(s)", len(rows))

	values := collectValues(meta, rows)

	result, err := stats.Compute(meta.Aggregation.Function, values)
	if err != nil {
		return WrapExitError(ExitCommandError, "aggregation failed", err)
	}

	runResult := &RunResult{
		Metadata: meta,
		Values:   len(values),
		Result:   result,
	}

	// The aggregation query may use functions the engine lacks (SQLite has
	// no variance or stddev); that is not a command failure.
	if meta.DataAggregationQuery != "" {
		formatter.VerboseLog("Executing: %s", meta.DataAggregationQuery)
		engineResult, ok, err := s.QueryText(ctx, meta.DataAggregationQuery)
		switch {
		case err != nil:
			formatter.VerboseLog("Engine aggregation failed: %v", err)
		case ok:
			runResult.EngineResult = engineResult
		}
	}

	if formatter.Format != "text" {
		return formatter.Success(runResult)
	}

	printRunResult(formatter, runResult)
	return nil
}

// collectValues applies the query's filter to the fetched rows and keeps the
// non-NULL aggregation values that satisfy it. When the filter targets the
// aggregation column itself the extraction query carries a single column, so
// the comparison operand is the value.
func collectValues(meta *koron.QueryMetadata, rows []store.Row) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if !row.Value.Valid {
			continue
		}
		if meta.Filter != nil {
			operand := row.Filter
			if meta.Filter.Column == meta.Aggregation.Column {
				operand = row.Value.Float64
			}
			if !stats.Matches(meta.Filter, operand) {
				continue
			}
		}
		values = append(values, row.Value.Float64)
	}
	return values
}

func printRunResult(formatter *OutputFormatter, result *RunResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "%s %s(%s) over %s\n",
		color.GreenString("✓"),
		result.Metadata.Aggregation.Function,
		result.Metadata.Aggregation.Column,
		result.Metadata.Table)
	fmt.Fprintf(w, "  Values: %d\n", result.Values)
	fmt.Fprintf(w, "  Result: %s\n", strconv.FormatFloat(result.Result, 'g', -1, 64))
	if result.EngineResult != "" {
		fmt.Fprintf(w, "  Engine: %s\n", result.EngineResult)
	}
}
