package koron

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// CompareKind enumerates the supported comparison operations. The six binary
// kinds carry a literal value; the six unary null/boolean kinds do not.
type CompareKind string

const (
	CompareLt    CompareKind = "Lt"
	CompareLtEq  CompareKind = "LtEq"
	CompareGt    CompareKind = "Gt"
	CompareGtEq  CompareKind = "GtEq"
	CompareEq    CompareKind = "Eq"
	CompareNotEq CompareKind = "NotEq"

	CompareIsNull     CompareKind = "IsNull"
	CompareIsNotNull  CompareKind = "IsNotNull"
	CompareIsTrue     CompareKind = "IsTrue"
	CompareIsNotTrue  CompareKind = "IsNotTrue"
	CompareIsFalse    CompareKind = "IsFalse"
	CompareIsNotFalse CompareKind = "IsNotFalse"
)

// compareKindDisplay gives every kind a display form; the map doubles as the
// exhaustiveness check for the closed set.
var compareKindDisplay = map[CompareKind]string{
	CompareLt:         "Less than",
	CompareLtEq:       "Less than or equal",
	CompareGt:         "Greater than",
	CompareGtEq:       "Greater than or equal",
	CompareEq:         "Equal",
	CompareNotEq:      "Not equal",
	CompareIsNull:     "Is null",
	CompareIsNotNull:  "Is not null",
	CompareIsTrue:     "Is true",
	CompareIsNotTrue:  "Is not true",
	CompareIsFalse:    "Is false",
	CompareIsNotFalse: "Is not false",
}

// CompareOp is the comparison between an unspecified column's value and a
// constant. Value holds the literal's textual form and is empty for the unary
// kinds; the pipeline never interprets literal semantics beyond its text.
type CompareOp struct {
	Kind  CompareKind `json:"kind" yaml:"kind"`
	Value string      `json:"value,omitempty" yaml:"value,omitempty"`
}

// String returns the display form of the operation.
func (op CompareOp) String() string {
	return compareKindDisplay[op.Kind]
}

// binaryCompareKinds is the whitelist of binary comparison operators, keyed by
// the operator spelling the parser reports.
var binaryCompareKinds = map[string]CompareKind{
	"<":  CompareLt,
	"<=": CompareLtEq,
	">":  CompareGt,
	">=": CompareGtEq,
	"=":  CompareEq,
	"<>": CompareNotEq,
}

// mirroredKinds maps each ordering operator to its mirror, used when the
// column sat on the right-hand side. Equality and inequality are symmetric
// and never mirrored.
var mirroredKinds = map[CompareKind]CompareKind{
	CompareLt:    CompareGt,
	CompareLtEq:  CompareGtEq,
	CompareGt:    CompareLt,
	CompareGtEq:  CompareLtEq,
	CompareEq:    CompareEq,
	CompareNotEq: CompareNotEq,
}

// newBinaryCompareOp builds the comparison for a whitelisted operator,
// mirroring it when reverse is set so the result always reads
// "column OP value".
func newBinaryCompareOp(operator, value string, reverse bool) (CompareOp, error) {
	kind, ok := binaryCompareKinds[operator]
	if !ok {
		return CompareOp{}, unsupportedf("the %s operator.", operator)
	}
	if reverse {
		kind = mirroredKinds[kind]
	}
	return CompareOp{Kind: kind, Value: value}, nil
}

// unaryCompareKind maps a null/boolean test to its comparison kind.
func unaryCompareKind(node *pg_query.Node) (CompareKind, bool) {
	if nt := node.GetNullTest(); nt != nil {
		switch nt.Nulltesttype {
		case pg_query.NullTestType_IS_NULL:
			return CompareIsNull, true
		case pg_query.NullTestType_IS_NOT_NULL:
			return CompareIsNotNull, true
		}
	}
	if bt := node.GetBooleanTest(); bt != nil {
		switch bt.Booltesttype {
		case pg_query.BoolTestType_IS_TRUE:
			return CompareIsTrue, true
		case pg_query.BoolTestType_IS_NOT_TRUE:
			return CompareIsNotTrue, true
		case pg_query.BoolTestType_IS_FALSE:
			return CompareIsFalse, true
		case pg_query.BoolTestType_IS_NOT_FALSE:
			return CompareIsNotFalse, true
		}
	}
	return "", false
}

// comparisonOperand classifies one side of a binary comparison: a resolved
// column name, or an opaque "other" expression left for literal reduction.
type comparisonOperand struct {
	column string
	other  *pg_query.Node // nil when column is set
}

// classifyOperand resolves an operand to a column if it is a bare or
// qualified identifier; everything else stays opaque.
func classifyOperand(ref fromClauseRef, node *pg_query.Node) (comparisonOperand, error) {
	if columnRef := node.GetColumnRef(); columnRef != nil && !columnRefIsStar(columnRef) {
		column, err := extractQualifiedColumn(ref, columnRef)
		if err != nil {
			return comparisonOperand{}, err
		}
		return comparisonOperand{column: column}, nil
	}
	return comparisonOperand{other: node}, nil
}

// analyzeComparisonOperands requires exactly one side to be a column, keeping
// the column on the left and reporting whether the operands were swapped.
func analyzeComparisonOperands(wholeExpr *pg_query.Node, left, right comparisonOperand) (string, *pg_query.Node, bool, error) {
	switch {
	case left.other == nil && right.other != nil:
		return left.column, right.other, false, nil
	case left.other != nil && right.other == nil:
		return right.column, left.other, true, nil
	default:
		return "", nil, false, unsupportedf(
			"%s. Only comparisons between a column and a constant are supported.", exprText(wholeExpr))
	}
}
