package koron

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// destructuredQuery is the reduced statement shape every later stage works
// from: the SELECT list, the FROM entries, and the optional WHERE expression.
// Everything else the grammar can attach to a query has been rejected.
type destructuredQuery struct {
	projection []*pg_query.Node
	from       []*pg_query.Node
	selection  *pg_query.Node
}

// destructure reduces a parsed statement to {projection, from, selection},
// rejecting every clause outside that shape. The checks are an ordered list of
// independent guards over the already-destructured statement, so supporting a
// clause later is a one-line removal.
func destructure(stmt *pg_query.Node) (destructuredQuery, error) {
	sel := stmt.GetSelectStmt()
	if sel == nil {
		return destructuredQuery{}, unsupportedf("statements different from single SELECT statement.")
	}

	if sel.WithClause != nil {
		return destructuredQuery{}, unsupportedf("CTEs (i.e., WITH clause).")
	}
	if sel.Op != pg_query.SetOperation_SETOP_NONE {
		return destructuredQuery{}, unsupportedf("set operations (i.e., %s).", setOpName(sel))
	}
	if len(sel.ValuesLists) > 0 {
		return destructuredQuery{}, unsupportedf("VALUES.")
	}
	if len(sel.SortClause) > 0 {
		return destructuredQuery{}, unsupportedf("ORDER BY.")
	}
	if sel.LimitOption == pg_query.LimitOption_LIMIT_OPTION_WITH_TIES {
		return destructuredQuery{}, unsupportedf("FETCH WITH TIES.")
	}
	if sel.LimitCount != nil {
		return destructuredQuery{}, unsupportedf("LIMIT.")
	}
	if sel.LimitOffset != nil {
		return destructuredQuery{}, unsupportedf("OFFSET.")
	}
	if len(sel.LockingClause) > 0 {
		return destructuredQuery{}, unsupportedf("locking clauses (i.e., %s).", lockingNames(sel.LockingClause))
	}

	if len(sel.DistinctClause) > 0 {
		return destructuredQuery{}, unsupportedf("DISTINCT.")
	}
	if sel.IntoClause != nil {
		return destructuredQuery{}, unsupportedf("SELECT INTO.")
	}
	if len(sel.GroupClause) > 0 || sel.GroupDistinct {
		return destructuredQuery{}, unsupportedf("GROUP BY.")
	}
	if sel.HavingClause != nil {
		return destructuredQuery{}, unsupportedf("HAVING.")
	}
	if len(sel.WindowClause) > 0 {
		return destructuredQuery{}, unsupportedf("named window definitions (WINDOW .. AS (..)).")
	}

	return destructuredQuery{
		projection: sel.TargetList,
		from:       sel.FromClause,
		selection:  sel.WhereClause,
	}, nil
}

func setOpName(sel *pg_query.SelectStmt) string {
	name := ""
	switch sel.Op {
	case pg_query.SetOperation_SETOP_UNION:
		name = "UNION"
	case pg_query.SetOperation_SETOP_INTERSECT:
		name = "INTERSECT"
	case pg_query.SetOperation_SETOP_EXCEPT:
		name = "EXCEPT"
	default:
		name = "unknown"
	}
	if sel.All {
		name += " ALL"
	}
	return name
}

func lockingNames(clauses []*pg_query.Node) string {
	names := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		lc := clause.GetLockingClause()
		if lc == nil {
			continue
		}
		switch lc.Strength {
		case pg_query.LockClauseStrength_LCS_FORKEYSHARE:
			names = append(names, "FOR KEY SHARE")
		case pg_query.LockClauseStrength_LCS_FORSHARE:
			names = append(names, "FOR SHARE")
		case pg_query.LockClauseStrength_LCS_FORNOKEYUPDATE:
			names = append(names, "FOR NO KEY UPDATE")
		case pg_query.LockClauseStrength_LCS_FORUPDATE:
			names = append(names, "FOR UPDATE")
		default:
			names = append(names, "unknown")
		}
	}
	return strings.Join(names, ", ")
}
