package koron

import (
	"regexp"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// QuoteStyle selects the quoting character used when rendering identifiers in
// the regenerated query strings, e.g. '\'' for PostgreSQL-style literals or
// '`' for MySQL. QuoteNone renders identifiers unquoted.
type QuoteStyle rune

// QuoteNone renders identifiers without any quoting.
const QuoteNone QuoteStyle = 0

// quoteIdent renders an identifier with the caller-supplied quoting style.
// The quote character itself is escaped by doubling.
func quoteIdent(ident string, quote QuoteStyle) string {
	if quote == QuoteNone {
		return ident
	}
	q := string(rune(quote))
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// plainIdentPattern matches identifiers that survive a parse/fold round trip
// unchanged, i.e. ones that were written unquoted.
var plainIdentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// displayIdent renders an identifier for diagnostics and regenerated SQL,
// double-quoting it only when it could not have been written bare.
func displayIdent(ident string) string {
	if plainIdentPattern.MatchString(ident) {
		return ident
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// displayPath renders a dotted identifier chain for diagnostics.
func displayPath(parts []string) string {
	rendered := make([]string, len(parts))
	for i, part := range parts {
		rendered[i] = displayIdent(part)
	}
	return strings.Join(rendered, ".")
}

// deparseExpr renders an expression node back to SQL text via the parser's
// deparser. The expression is wrapped in a bare SELECT, deparsed, and the
// SELECT prefix stripped again.
func deparseExpr(expr *pg_query.Node) (string, error) {
	tree := &pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{
			Stmt: &pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: &pg_query.SelectStmt{
				TargetList: []*pg_query.Node{{Node: &pg_query.Node_ResTarget{ResTarget: &pg_query.ResTarget{
					Val: expr,
				}}}},
				Op:          pg_query.SetOperation_SETOP_NONE,
				LimitOption: pg_query.LimitOption_LIMIT_OPTION_DEFAULT,
			}}},
		}},
	}
	sql, err := pg_query.Deparse(tree)
	if err != nil {
		return "", internalf("failed to render expression from query AST: %s.", err)
	}
	return strings.TrimPrefix(sql, "SELECT "), nil
}

// exprText renders an expression for error messages. Rendering failures are
// swallowed since the message is already reporting a problem.
func exprText(expr *pg_query.Node) string {
	sql, err := deparseExpr(expr)
	if err != nil {
		return "<expression>"
	}
	return sql
}
