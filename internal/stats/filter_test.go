package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koron-analytics/koron"
)

func TestMatches_BinaryComparisons(t *testing.T) {
	tests := []struct {
		name  string
		kind  koron.CompareKind
		bound string
		value any
		want  bool
	}{
		{"eq number match", koron.CompareEq, "42", int64(42), true},
		{"eq number miss", koron.CompareEq, "42", int64(41), false},
		{"eq float vs int bound", koron.CompareEq, "4", float64(4.0), true},
		{"not eq", koron.CompareNotEq, "42", int64(41), true},
		{"lt", koron.CompareLt, "10", float64(9.5), true},
		{"lt at bound", koron.CompareLt, "10", int64(10), false},
		{"lteq at bound", koron.CompareLtEq, "10", int64(10), true},
		{"gt", koron.CompareGt, "0", float64(0.1), true},
		{"gteq below bound", koron.CompareGtEq, "5", int64(4), false},
		{"string eq", koron.CompareEq, "north", "north", true},
		{"string eq bytes", koron.CompareEq, "north", []byte("north"), true},
		{"string eq miss", koron.CompareEq, "north", "south", false},
		{"string order", koron.CompareLt, "m", "a", true},
		{"numeric value string bound", koron.CompareEq, "abc", int64(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &koron.Filter{
				Column:     "c",
				Comparison: koron.CompareOp{Kind: tt.kind, Value: tt.bound},
			}
			assert.Equal(t, tt.want, Matches(f, tt.value))
		})
	}
}

func TestMatches_NullNeverSatisfiesComparison(t *testing.T) {
	for _, kind := range []koron.CompareKind{
		koron.CompareLt, koron.CompareLtEq, koron.CompareGt,
		koron.CompareGtEq, koron.CompareEq, koron.CompareNotEq,
	} {
		f := &koron.Filter{Column: "c", Comparison: koron.CompareOp{Kind: kind, Value: "1"}}
		assert.False(t, Matches(f, nil), "kind %s", kind)
	}
}

func TestMatches_NullAndBooleanTests(t *testing.T) {
	tests := []struct {
		name  string
		kind  koron.CompareKind
		value any
		want  bool
	}{
		{"is null on null", koron.CompareIsNull, nil, true},
		{"is null on value", koron.CompareIsNull, int64(0), false},
		{"is not null on value", koron.CompareIsNotNull, "x", true},
		{"is not null on null", koron.CompareIsNotNull, nil, false},
		{"is true on one", koron.CompareIsTrue, int64(1), true},
		{"is true on zero", koron.CompareIsTrue, int64(0), false},
		{"is true on null", koron.CompareIsTrue, nil, false},
		{"is not true on null", koron.CompareIsNotTrue, nil, true},
		{"is not true on one", koron.CompareIsNotTrue, int64(1), false},
		{"is false on zero", koron.CompareIsFalse, int64(0), true},
		{"is false on null", koron.CompareIsFalse, nil, false},
		{"is not false on null", koron.CompareIsNotFalse, nil, true},
		{"is not false on zero", koron.CompareIsNotFalse, int64(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &koron.Filter{
				Column:     "c",
				Comparison: koron.CompareOp{Kind: tt.kind},
			}
			assert.Equal(t, tt.want, Matches(f, tt.value))
		})
	}
}
