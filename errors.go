package koron

import (
	"errors"
	"fmt"
)

// ParseErrorKind categorizes pipeline failures.
type ParseErrorKind string

const (
	// ErrKindMalformedQuery indicates SQL-shaped input that violates a structural
	// expectation: parser syntax errors, wrong aggregation argument counts, or a
	// qualified column that doesn't match the FROM clause identity.
	ErrKindMalformedQuery ParseErrorKind = "MALFORMED_QUERY"

	// ErrKindUnsupported indicates a real SQL feature that Koron intentionally
	// does not implement. The message names the exact offending construct.
	ErrKindUnsupported ParseErrorKind = "UNSUPPORTED"

	// ErrKindInternal indicates a violated invariant that the parser's grammar
	// should make impossible. Never user-correctable.
	ErrKindInternal ParseErrorKind = "INTERNAL"
)

// ParseError is the single error type produced by the pipeline.
//
// Every extraction stage fails fast: the first violation is returned
// immediately, with no partial results and no accumulation.
type ParseError struct {
	Kind    ParseErrorKind `json:"kind"`
	Message string         `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindMalformedQuery:
		return fmt.Sprintf("malformed query: %s", e.Message)
	case ErrKindUnsupported:
		return fmt.Sprintf("statement not supported: %s", e.Message)
	default:
		return fmt.Sprintf("internal: %s", e.Message)
	}
}

func malformedf(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrKindMalformedQuery, Message: fmt.Sprintf(format, args...)}
}

func unsupportedf(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrKindUnsupported, Message: fmt.Sprintf(format, args...)}
}

func internalf(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrKindInternal, Message: fmt.Sprintf(format, args...)}
}

// IsMalformedQuery returns true if the error is a MalformedQuery parse error.
// Uses errors.As to handle wrapped errors.
func IsMalformedQuery(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == ErrKindMalformedQuery
}

// IsUnsupported returns true if the error is an Unsupported parse error.
func IsUnsupported(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == ErrKindUnsupported
}

// IsInternal returns true if the error is an Internal parse error.
func IsInternal(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == ErrKindInternal
}
