package koron

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// TableIdent identifies the single table a query reads from, case-folded per
// identifier rules. Only Table is always present; a database-qualified name
// always carries a schema too, since qualifiers peel from the right.
type TableIdent struct {
	DB     string `json:"db,omitempty" yaml:"db,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table  string `json:"table" yaml:"table"`
}

// String renders the identity dot-joined for diagnostics, omitting absent
// parts.
func (t TableIdent) String() string {
	parts := make([]string, 0, 3)
	if t.DB != "" {
		parts = append(parts, t.DB)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Table)
	return strings.Join(parts, ".")
}

// render rebuilds the qualified name for a regenerated query, honoring the
// caller-supplied quoting style on every part.
func (t TableIdent) render(quote QuoteStyle) string {
	parts := make([]string, 0, 3)
	if t.DB != "" {
		parts = append(parts, quoteIdent(t.DB, quote))
	}
	if t.Schema != "" {
		parts = append(parts, quoteIdent(t.Schema, quote))
	}
	parts = append(parts, quoteIdent(t.Table, quote))
	return strings.Join(parts, ".")
}

// extractTable resolves the FROM clause to a single plain table reference with
// an optional alias. Anything that smells of a second relation (joins, derived
// tables, table-valued functions) fails with one shared message; the remaining
// table-reference decorations fail each with their own.
func extractTable(from []*pg_query.Node) (TableIdent, string, error) {
	multiTables := unsupportedf("the FROM clause has multiple tables " +
		"(no JOINs, subqueries or functions allowed).")

	if len(from) != 1 {
		return TableIdent{}, "", multiTables
	}

	if sample := from[0].GetRangeTableSample(); sample != nil {
		return TableIdent{}, "", unsupportedf("TABLESAMPLE.")
	}

	rv := from[0].GetRangeVar()
	if rv == nil {
		// JoinExpr, RangeSubselect, RangeFunction, RangeTableFunc.
		return TableIdent{}, "", multiTables
	}
	if rv.Relname == "" {
		return TableIdent{}, "", internalf("found empty table name (RangeVar) in query AST.")
	}

	table := TableIdent{
		DB:     rv.Catalogname,
		Schema: rv.Schemaname,
		Table:  rv.Relname,
	}

	alias := ""
	if rv.Alias != nil {
		if len(rv.Alias.Colnames) > 0 {
			return TableIdent{}, "", unsupportedf("table aliases with columns (such as %s).",
				renderAlias(rv.Alias))
		}
		alias = rv.Alias.Aliasname
	}

	return table, alias, nil
}

func renderAlias(alias *pg_query.Alias) string {
	if len(alias.Colnames) == 0 {
		return displayIdent(alias.Aliasname)
	}
	cols := make([]string, 0, len(alias.Colnames))
	for _, col := range alias.Colnames {
		if s := col.GetString_(); s != nil {
			cols = append(cols, displayIdent(s.Sval))
		}
	}
	return displayIdent(alias.Aliasname) + " (" + strings.Join(cols, ", ") + ")"
}
