package koron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "col", quoteIdent("col", QuoteNone))
	assert.Equal(t, "'col'", quoteIdent("col", QuoteStyle('\'')))
	assert.Equal(t, "`col`", quoteIdent("col", QuoteStyle('`')))

	// The quote character doubles inside the identifier.
	assert.Equal(t, "'it''s'", quoteIdent("it's", QuoteStyle('\'')))
	assert.Equal(t, "it's", quoteIdent("it's", QuoteNone))
}

func TestDisplayIdent(t *testing.T) {
	// Names that could have been written bare stay bare.
	assert.Equal(t, "col", displayIdent("col"))
	assert.Equal(t, "_col2", displayIdent("_col2"))

	// Anything that must have been quoted gets its quotes back.
	assert.Equal(t, `"SUM"`, displayIdent("SUM"))
	assert.Equal(t, `"two words"`, displayIdent("two words"))
	assert.Equal(t, `"1col"`, displayIdent("1col"))
	assert.Equal(t, `"a""b"`, displayIdent(`a"b`))
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "d.s.t", displayPath([]string{"d", "s", "t"}))
	assert.Equal(t, `d."S".t`, displayPath([]string{"d", "S", "t"}))
}

func TestFunction_Names(t *testing.T) {
	assert.Equal(t, "Standard Deviation", FunctionStandardDeviation.String())
	assert.Equal(t, "Average", FunctionAverage.String())
	assert.Equal(t, "stddev", FunctionStandardDeviation.sqlName())
	assert.Equal(t, "avg", FunctionAverage.sqlName())

	// The two lookup tables cover the same closed set.
	assert.Len(t, sqlNames, len(functionNames))
	for name, fn := range functionNames {
		assert.Equal(t, name, fn.sqlName())
	}
}
