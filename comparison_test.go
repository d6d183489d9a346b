package koron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinaryCompareOp_Mirroring(t *testing.T) {
	tests := []struct {
		operator string
		reverse  bool
		want     CompareKind
	}{
		{"<", false, CompareLt},
		{"<", true, CompareGt},
		{"<=", false, CompareLtEq},
		{"<=", true, CompareGtEq},
		{">", false, CompareGt},
		{">", true, CompareLt},
		{">=", false, CompareGtEq},
		{">=", true, CompareLtEq},
		{"=", false, CompareEq},
		{"=", true, CompareEq},
		{"<>", false, CompareNotEq},
		{"<>", true, CompareNotEq},
	}

	for _, tt := range tests {
		op, err := newBinaryCompareOp(tt.operator, "v", tt.reverse)
		require.NoError(t, err)
		assert.Equal(t, tt.want, op.Kind, "operator %s reverse=%v", tt.operator, tt.reverse)
		assert.Equal(t, "v", op.Value)
	}
}

func TestNewBinaryCompareOp_UnknownOperator(t *testing.T) {
	_, err := newBinaryCompareOp("~", "v", false)
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
	assert.EqualError(t, err, "statement not supported: the ~ operator.")
}

func TestCompareOp_String(t *testing.T) {
	assert.Equal(t, "Less than", CompareOp{Kind: CompareLt}.String())
	assert.Equal(t, "Greater than or equal", CompareOp{Kind: CompareGtEq}.String())
	assert.Equal(t, "Not equal", CompareOp{Kind: CompareNotEq}.String())
	assert.Equal(t, "Is not null", CompareOp{Kind: CompareIsNotNull}.String())

	// Every kind has a display form.
	for kind := range compareKindDisplay {
		assert.NotEmpty(t, CompareOp{Kind: kind}.String())
	}
}
