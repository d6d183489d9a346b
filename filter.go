package koron

import (
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Filter is the single WHERE-clause predicate: one column compared against
// one constant, already mirrored so the column reads on the left.
type Filter struct {
	Column     string    `json:"column" yaml:"column"`
	Comparison CompareOp `json:"comparison" yaml:"comparison"`
}

// filterExtractor resolves the WHERE clause of a query against its FROM
// clause identifier.
type filterExtractor struct {
	ref fromClauseRef
}

// extract reduces the selection expression to a Filter. Only a binary
// comparison between a column and a constant, or a null/boolean test on a
// column, is accepted.
func (fe filterExtractor) extract(selection *pg_query.Node) (Filter, error) {
	if aexpr := selection.GetAExpr(); aexpr != nil {
		return fe.extractAExpr(selection, aexpr)
	}
	if kind, ok := unaryCompareKind(selection); ok {
		column, err := fe.extractTestedColumn(selection)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Column: column, Comparison: CompareOp{Kind: kind}}, nil
	}
	if bt := selection.GetBooleanTest(); bt != nil {
		switch bt.Booltesttype {
		case pg_query.BoolTestType_IS_UNKNOWN:
			return Filter{}, unsupportedf("the IS UNKNOWN operator.")
		case pg_query.BoolTestType_IS_NOT_UNKNOWN:
			return Filter{}, unsupportedf("the IS NOT UNKNOWN operator.")
		}
	}
	if be := selection.GetBoolExpr(); be != nil {
		switch be.Boolop {
		case pg_query.BoolExprType_AND_EXPR:
			return Filter{}, unsupportedf("the AND operator.")
		case pg_query.BoolExprType_OR_EXPR:
			return Filter{}, unsupportedf("the OR operator.")
		case pg_query.BoolExprType_NOT_EXPR:
			return Filter{}, unsupportedf("the NOT operator.")
		}
	}
	return Filter{}, unsupportedf("unsupported expression in the WHERE clause: %s.", exprText(selection))
}

// aexprKindNames covers the A_Expr shapes that carry a recognizable SQL
// spelling; anything outside the map falls back to the generic message.
var aexprKindNames = map[pg_query.A_Expr_Kind]string{
	pg_query.A_Expr_Kind_AEXPR_LIKE:         "the LIKE operator.",
	pg_query.A_Expr_Kind_AEXPR_ILIKE:        "the ILIKE operator.",
	pg_query.A_Expr_Kind_AEXPR_SIMILAR:      "the SIMILAR TO operator.",
	pg_query.A_Expr_Kind_AEXPR_BETWEEN:      "BETWEEN.",
	pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN:  "BETWEEN.",
	pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM:  "BETWEEN.",
	pg_query.A_Expr_Kind_AEXPR_IN:           "the IN operator.",
	pg_query.A_Expr_Kind_AEXPR_DISTINCT:     "the IS DISTINCT FROM operator.",
	pg_query.A_Expr_Kind_AEXPR_NOT_DISTINCT: "the IS NOT DISTINCT FROM operator.",
	pg_query.A_Expr_Kind_AEXPR_OP_ANY:       "the ANY operator.",
	pg_query.A_Expr_Kind_AEXPR_OP_ALL:       "the ALL operator.",
	pg_query.A_Expr_Kind_AEXPR_NULLIF:       "NULLIF.",
}

func (fe filterExtractor) extractAExpr(selection *pg_query.Node, aexpr *pg_query.A_Expr) (Filter, error) {
	if aexpr.Kind != pg_query.A_Expr_Kind_AEXPR_OP {
		if name, ok := aexprKindNames[aexpr.Kind]; ok {
			return Filter{}, unsupportedf("%s", name)
		}
		return Filter{}, unsupportedf("unsupported expression in the WHERE clause: %s.", exprText(selection))
	}
	operator, err := aexprOperator(aexpr)
	if err != nil {
		return Filter{}, err
	}
	// The operator is checked against the whitelist before the operands so
	// that "a + b" style expressions report the operator, not the operands.
	if _, ok := binaryCompareKinds[operator]; !ok {
		return Filter{}, unsupportedf("the %s operator.", operator)
	}
	if aexpr.Lexpr == nil || aexpr.Rexpr == nil {
		return Filter{}, unsupportedf("unsupported expression in the WHERE clause: %s.", exprText(selection))
	}
	left, err := classifyOperand(fe.ref, aexpr.Lexpr)
	if err != nil {
		return Filter{}, err
	}
	right, err := classifyOperand(fe.ref, aexpr.Rexpr)
	if err != nil {
		return Filter{}, err
	}
	column, other, reversed, err := analyzeComparisonOperands(selection, left, right)
	if err != nil {
		return Filter{}, err
	}
	value, err := extractConstantValue(other)
	if err != nil {
		return Filter{}, err
	}
	comparison, err := newBinaryCompareOp(operator, value, reversed)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Column: column, Comparison: comparison}, nil
}

// extractTestedColumn resolves the argument of a null/boolean test, which
// must be a plain column reference.
func (fe filterExtractor) extractTestedColumn(selection *pg_query.Node) (string, error) {
	var arg *pg_query.Node
	if nt := selection.GetNullTest(); nt != nil {
		arg = nt.Arg
	} else if bt := selection.GetBooleanTest(); bt != nil {
		arg = bt.Arg
	}
	if arg != nil {
		if columnRef := arg.GetColumnRef(); columnRef != nil && !columnRefIsStar(columnRef) {
			return extractQualifiedColumn(fe.ref, columnRef)
		}
	}
	return "", unsupportedf("%s. Column must be specified.", exprText(selection))
}

// aexprOperator returns the spelling of a binary operator.
func aexprOperator(aexpr *pg_query.A_Expr) (string, error) {
	if len(aexpr.Name) != 1 {
		return "", internalf("found qualified operator name in query AST.")
	}
	str := aexpr.Name[0].GetString_()
	if str == nil || str.Sval == "" {
		return "", internalf("found empty operator name in query AST.")
	}
	return str.Sval, nil
}

// extractConstantValue reduces a non-column operand to a literal's textual
// form. A leading unary minus over a numeric literal is kept as part of the
// value; a unary plus is dropped.
func extractConstantValue(node *pg_query.Node) (string, error) {
	if aconst := node.GetAConst(); aconst != nil {
		return constText(aconst), nil
	}
	if aexpr := node.GetAExpr(); aexpr != nil &&
		aexpr.Kind == pg_query.A_Expr_Kind_AEXPR_OP && aexpr.Lexpr == nil && aexpr.Rexpr != nil {
		if operator, err := aexprOperator(aexpr); err == nil && (operator == "+" || operator == "-") {
			if aconst := aexpr.Rexpr.GetAConst(); aconst != nil && isNumericConst(aconst) {
				value := constText(aconst)
				if operator == "-" {
					value = "-" + value
				}
				return value, nil
			}
		}
	}
	if param := node.GetParamRef(); param != nil {
		return "", unsupportedf("Expected a value, got $%d.", param.Number)
	}
	return "", unsupportedf("Expected a value, got %s.", exprText(node))
}

func isNumericConst(aconst *pg_query.A_Const) bool {
	return aconst.GetIval() != nil || aconst.GetFval() != nil
}

// constText renders a literal the way the metadata reports values: numbers
// and strings by their content, booleans lowercased, NULL as "Null".
func constText(aconst *pg_query.A_Const) string {
	switch {
	case aconst.Isnull:
		return "Null"
	case aconst.GetIval() != nil:
		return strconv.FormatInt(int64(aconst.GetIval().Ival), 10)
	case aconst.GetFval() != nil:
		return aconst.GetFval().Fval
	case aconst.GetSval() != nil:
		return aconst.GetSval().Sval
	case aconst.GetBoolval() != nil:
		if aconst.GetBoolval().Boolval {
			return "true"
		}
		return "false"
	case aconst.GetBsval() != nil:
		return aconst.GetBsval().Bsval
	default:
		return ""
	}
}
