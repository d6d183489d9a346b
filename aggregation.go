package koron

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Function is a Koron aggregation / analytic function. It is a closed set:
// the only way to obtain one is through the whitelist lookup during
// extraction, and any other function name is a rejection, not a variant.
type Function string

const (
	FunctionSum               Function = "Sum"
	FunctionCount             Function = "Count"
	FunctionAverage           Function = "Average"
	FunctionMedian            Function = "Median"
	FunctionVariance          Function = "Variance"
	FunctionStandardDeviation Function = "StandardDeviation"
)

// functionNames is the single name-to-variant lookup. Folded (lowercase)
// function names only; a quoted mixed-case name never matches.
var functionNames = map[string]Function{
	"sum":      FunctionSum,
	"count":    FunctionCount,
	"avg":      FunctionAverage,
	"median":   FunctionMedian,
	"variance": FunctionVariance,
	"stddev":   FunctionStandardDeviation,
}

// sqlNames maps every Function back to the SQL spelling it was recognized
// from, for use in regenerated queries and diagnostics.
var sqlNames = map[Function]string{
	FunctionSum:               "sum",
	FunctionCount:             "count",
	FunctionAverage:           "avg",
	FunctionMedian:            "median",
	FunctionVariance:          "variance",
	FunctionStandardDeviation: "stddev",
}

// String returns the human-readable display form.
func (f Function) String() string {
	if f == FunctionStandardDeviation {
		return "Standard Deviation"
	}
	return string(f)
}

// sqlName returns the folded SQL function name for the variant.
func (f Function) sqlName() string {
	return sqlNames[f]
}

// Aggregation is an occurrence of `function(column) [AS alias]` in the SELECT
// clause. Column is always the bare, already-resolved name.
type Aggregation struct {
	Function Function `json:"function" yaml:"function"`
	Column   string   `json:"column" yaml:"column"`
	Alias    string   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// extractAggregation validates that the projection is exactly one whitelisted
// function call over one column and extracts it.
func extractAggregation(ref fromClauseRef, projection []*pg_query.Node) (Aggregation, error) {
	exactlyOne := unsupportedf("the SELECT clause must contain exactly one aggregation / " +
		"analytic function. Nothing else is accepted.")

	if len(projection) != 1 {
		return Aggregation{}, exactlyOne
	}
	target := projection[0].GetResTarget()
	if target == nil || target.Val == nil {
		return Aggregation{}, internalf("found non-target entry in SELECT list in query AST.")
	}

	fn := target.Val.GetFuncCall()
	if fn == nil {
		return Aggregation{}, exactlyOne
	}

	if fn.Over != nil {
		return Aggregation{}, unsupportedf("window functions (OVER).")
	}
	if fn.AggDistinct {
		return Aggregation{}, unsupportedf("DISTINCT.")
	}
	if fn.AggWithinGroup {
		// Checked before AggOrder: WITHIN GROUP stores its ORDER BY there.
		return Aggregation{}, unsupportedf("WITHIN GROUP.")
	}
	if len(fn.AggOrder) > 0 {
		return Aggregation{}, unsupportedf("ORDER BY.")
	}
	if fn.AggFilter != nil {
		return Aggregation{}, unsupportedf("FILTER.")
	}
	if fn.FuncVariadic {
		return Aggregation{}, unsupportedf("VARIADIC.")
	}

	function, name, err := lookupFunction(fn.Funcname)
	if err != nil {
		return Aggregation{}, err
	}

	column, err := extractOnlyColumnArgument(ref, name, fn)
	if err != nil {
		return Aggregation{}, err
	}

	return Aggregation{
		Function: function,
		Column:   column,
		Alias:    target.Name,
	}, nil
}

// lookupFunction matches the call's name against the whitelist. Only a single
// unqualified identifier can match; qualified or unknown names are rejected
// quoting the written name.
func lookupFunction(funcname []*pg_query.Node) (Function, string, error) {
	parts := make([]string, 0, len(funcname))
	for _, part := range funcname {
		s := part.GetString_()
		if s == nil {
			return "", "", internalf("found non-identifier part in function name in query AST.")
		}
		parts = append(parts, s.Sval)
	}
	if len(parts) == 0 {
		return "", "", internalf("found empty function name in query AST.")
	}
	if len(parts) == 1 {
		if function, ok := functionNames[parts[0]]; ok {
			return function, parts[0], nil
		}
	}
	return "", "", unsupportedf("unrecognized or unsupported function: %s.", displayPath(parts))
}

// extractOnlyColumnArgument enforces that the call takes exactly one unnamed
// column argument and resolves it against the FROM clause.
func extractOnlyColumnArgument(ref fromClauseRef, name string, fn *pg_query.FuncCall) (string, error) {
	onlyColumn := unsupportedf("only a column name is supported as the argument of the %s function.", name)

	if fn.AggStar {
		return "", onlyColumn
	}
	if len(fn.Args) != 1 {
		verb := "are"
		if len(fn.Args) == 1 {
			verb = "is"
		}
		return "", malformedf("the %s function takes exactly 1 argument, but %d %s provided.",
			name, len(fn.Args), verb)
	}

	arg := fn.Args[0]
	if named := arg.GetNamedArgExpr(); named != nil {
		return "", unsupportedf("named function arguments (such as %s => %s).",
			named.Name, exprText(named.Arg))
	}

	columnRef := arg.GetColumnRef()
	if columnRef == nil || columnRefIsStar(columnRef) {
		return "", onlyColumn
	}
	return extractQualifiedColumn(ref, columnRef)
}
