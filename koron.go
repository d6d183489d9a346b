// Package koron validates analytic SQL queries against a deliberately narrow
// whitelist and regenerates the SQL a downstream engine actually runs.
//
// An accepted query reads exactly one table, projects exactly one whitelisted
// aggregation / analytic function over one column, and filters by at most one
// simple comparison. Everything else is rejected with an error naming the
// offending construct. From an accepted query, Parse extracts structured
// metadata plus two regenerated statements: a data-extraction query fetching
// the raw column values, and (except for Median, which has no SQL form here)
// a data-aggregation query recasting the original aggregate as text.
package koron

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// QueryMetadata is everything Koron knows about an accepted query.
type QueryMetadata struct {
	Aggregation Aggregation `json:"aggregation" yaml:"aggregation"`
	Table       TableIdent  `json:"table" yaml:"table"`
	Alias       string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Filter      *Filter     `json:"filter,omitempty" yaml:"filter,omitempty"`

	// DataExtractionQuery selects the raw values of the aggregated column
	// (and the filtered column, when distinct) without the WHERE clause, so
	// the aggregation can be recomputed client-side over all rows.
	DataExtractionQuery string `json:"data_extraction_query" yaml:"data_extraction_query"`

	// DataAggregationQuery re-renders the original query with its result cast
	// to text. Empty for Median, which no target dialect computes in SQL.
	DataAggregationQuery string `json:"data_aggregation_query,omitempty" yaml:"data_aggregation_query,omitempty"`
}

// Parse validates sqlQuery against the whitelist and extracts its metadata.
// quote selects the identifier quoting used in the regenerated
// data-extraction query; pass QuoteNone for bare identifiers.
//
// The returned error is always a *ParseError; use IsMalformedQuery,
// IsUnsupported and IsInternal to branch on its kind.
func Parse(sqlQuery string, quote QuoteStyle) (*QueryMetadata, error) {
	parsed, err := pg_query.Parse(sqlQuery)
	if err != nil {
		return nil, malformedf("%s", err)
	}
	if len(parsed.Stmts) != 1 {
		return nil, unsupportedf("statements different from single SELECT statement.")
	}

	dq, err := destructure(parsed.Stmts[0].Stmt)
	if err != nil {
		return nil, err
	}

	table, alias, err := extractTable(dq.from)
	if err != nil {
		return nil, err
	}

	ref := fromClauseRef{base: &table}
	if alias != "" {
		ref = fromClauseRef{alias: alias}
	}

	aggregation, err := extractAggregation(ref, dq.projection)
	if err != nil {
		return nil, err
	}

	var filter *Filter
	if dq.selection != nil {
		extracted, err := filterExtractor{ref: ref}.extract(dq.selection)
		if err != nil {
			return nil, err
		}
		filter = &extracted
	}

	meta := &QueryMetadata{
		Aggregation:         aggregation,
		Table:               table,
		Alias:               alias,
		Filter:              filter,
		DataExtractionQuery: buildExtractionQuery(aggregation, table, filter, quote),
	}

	if aggregation.Function != FunctionMedian {
		aggQuery, err := buildAggregationQuery(dq, table, alias, aggregation)
		if err != nil {
			return nil, err
		}
		meta.DataAggregationQuery = aggQuery
	}

	return meta, nil
}

// buildExtractionQuery renders the raw-value fetch: the aggregated column,
// plus the filtered column when it is a different one, with no WHERE clause.
func buildExtractionQuery(aggregation Aggregation, table TableIdent, filter *Filter, quote QuoteStyle) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(quoteIdent(aggregation.Column, quote))
	if filter != nil && filter.Column != aggregation.Column {
		b.WriteString(", ")
		b.WriteString(quoteIdent(filter.Column, quote))
	}
	b.WriteString(" FROM ")
	b.WriteString(table.render(quote))
	return b.String()
}

// buildAggregationQuery re-renders the accepted query with the aggregate cast
// to text. The aggregate expression and the WHERE clause are deparsed from
// the original tree, so they carry whatever normalization the parser applied
// (case folding, dropped grouping parens, `!=` as `<>`).
func buildAggregationQuery(dq destructuredQuery, table TableIdent, alias string, aggregation Aggregation) (string, error) {
	exprSQL, err := deparseExpr(dq.projection[0].GetResTarget().Val)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT CAST(")
	b.WriteString(exprSQL)
	b.WriteString(" AS TEXT)")
	if aggregation.Alias != "" {
		b.WriteString(" AS ")
		b.WriteString(displayIdent(aggregation.Alias))
	}
	b.WriteString(" FROM ")
	b.WriteString(displayPath(tableParts(table)))
	if alias != "" {
		b.WriteString(" AS ")
		b.WriteString(displayIdent(alias))
	}
	if dq.selection != nil {
		whereSQL, err := deparseExpr(dq.selection)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(whereSQL)
	}
	return b.String(), nil
}

func tableParts(t TableIdent) []string {
	parts := make([]string, 0, 3)
	if t.DB != "" {
		parts = append(parts, t.DB)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	return append(parts, t.Table)
}
