package koron

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// fromClauseRef is the identity qualified column references are checked
// against: the table identity itself, or the bare alias when one was given.
// Constructed once per query and borrowed by aggregation/filter extraction.
type fromClauseRef struct {
	base  *TableIdent // nil when alias is set
	alias string
}

func (r fromClauseRef) String() string {
	if r.base != nil {
		return r.base.String()
	}
	return r.alias
}

// matches checks a column qualifier chain (parts absent as "") against the
// reference. A base identity matches a suffix-compatible qualifier: an absent
// expected db/schema acts as a wildcard, as does an absent qualifier part. An
// alias is always unqualified, so it can never match a schema-qualified
// reference.
func (r fromClauseRef) matches(db, schema, table string) bool {
	if r.base == nil {
		return schema == "" && table == r.alias
	}
	dbMatches := r.base.DB == "" || db == "" || db == r.base.DB
	schemaMatches := r.base.Schema == "" || schema == "" || schema == r.base.Schema
	return dbMatches && schemaMatches && table == r.base.Table
}

// extractQualifiedColumn resolves a column reference to its bare column name,
// validating any table/schema/db qualifier chain against the FROM clause.
// Parts peel from the right: column, then table, schema, db.
func extractQualifiedColumn(ref fromClauseRef, columnRef *pg_query.ColumnRef) (string, error) {
	parts := make([]string, 0, len(columnRef.Fields))
	for _, field := range columnRef.Fields {
		s := field.GetString_()
		if s == nil {
			return "", internalf("found non-identifier part in column name (ColumnRef) in query AST.")
		}
		parts = append(parts, s.Sval)
	}

	if len(parts) == 0 {
		return "", internalf("found empty column name (ColumnRef) in query AST.")
	}
	if len(parts) > 4 {
		return "", internalf("found too many ident in column name (i.e., %s).", displayPath(parts))
	}

	column := parts[len(parts)-1]
	if len(parts) > 1 {
		table := parts[len(parts)-2]
		schema := ""
		if len(parts) > 2 {
			schema = parts[len(parts)-3]
		}
		db := ""
		if len(parts) > 3 {
			db = parts[len(parts)-4]
		}
		if !ref.matches(db, schema, table) {
			return "", malformedf("the %s column is not part of the table that's listed "+
				"in the FROM clause (%s).", displayPath(parts), ref)
		}
	}

	return column, nil
}

// columnRefIsStar reports whether the reference ends in a wildcard (bare `*`
// or qualified `t.*`), which is never a plain column.
func columnRefIsStar(columnRef *pg_query.ColumnRef) bool {
	for _, field := range columnRef.Fields {
		if field.GetAStar() != nil {
			return true
		}
	}
	return false
}
