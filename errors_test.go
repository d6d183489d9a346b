package koron

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError_Formatting(t *testing.T) {
	assert.EqualError(t, malformedf("bad %s", "thing"), "malformed query: bad thing")
	assert.EqualError(t, unsupportedf("GROUP BY."), "statement not supported: GROUP BY.")
	assert.EqualError(t, internalf("broken %d", 42), "internal: broken 42")
}

func TestParseError_Predicates(t *testing.T) {
	assert.True(t, IsMalformedQuery(malformedf("x")))
	assert.False(t, IsMalformedQuery(unsupportedf("x")))

	assert.True(t, IsUnsupported(unsupportedf("x")))
	assert.False(t, IsUnsupported(internalf("x")))

	assert.True(t, IsInternal(internalf("x")))
	assert.False(t, IsInternal(malformedf("x")))

	assert.False(t, IsMalformedQuery(nil))
	assert.False(t, IsMalformedQuery(errors.New("plain")))
}

func TestParseError_PredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("while validating: %w", unsupportedf("LIMIT."))
	assert.True(t, IsUnsupported(wrapped))
	assert.False(t, IsMalformedQuery(wrapped))
}
