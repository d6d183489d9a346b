package stats

import (
	"strconv"

	"github.com/koron-analytics/koron"
)

// Matches reports whether a raw column value satisfies the filter, with SQL
// comparison semantics: a NULL value never satisfies a binary comparison,
// and IS NOT TRUE / IS NOT FALSE accept NULL. The value carries the
// database driver's native type (int64, float64, string, []byte or nil).
func Matches(filter *koron.Filter, value any) bool {
	switch filter.Comparison.Kind {
	case koron.CompareIsNull:
		return value == nil
	case koron.CompareIsNotNull:
		return value != nil
	case koron.CompareIsTrue:
		return value != nil && isTruthy(value)
	case koron.CompareIsNotTrue:
		return value == nil || !isTruthy(value)
	case koron.CompareIsFalse:
		return value != nil && !isTruthy(value)
	case koron.CompareIsNotFalse:
		return value == nil || isTruthy(value)
	default:
		if value == nil {
			return false
		}
		return compareOrdered(filter.Comparison, value)
	}
}

// compareOrdered applies a binary comparison. Both sides are compared
// numerically when they both parse as numbers, mirroring SQLite's numeric
// affinity; otherwise as text.
func compareOrdered(op koron.CompareOp, value any) bool {
	if have, ok := asFloat(value); ok {
		if want, err := strconv.ParseFloat(op.Value, 64); err == nil {
			return applyKind(op.Kind, compareFloats(have, want))
		}
	}
	return applyKind(op.Kind, compareStrings(asString(value), op.Value))
}

// applyKind turns a three-way comparison result into the operator's verdict.
func applyKind(kind koron.CompareKind, cmp int) bool {
	switch kind {
	case koron.CompareLt:
		return cmp < 0
	case koron.CompareLtEq:
		return cmp <= 0
	case koron.CompareGt:
		return cmp > 0
	case koron.CompareGtEq:
		return cmp >= 0
	case koron.CompareEq:
		return cmp == 0
	case koron.CompareNotEq:
		return cmp != 0
	default:
		return false
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// isTruthy follows SQLite's boolean storage: non-zero numbers are true.
func isTruthy(value any) bool {
	f, ok := asFloat(value)
	return ok && f != 0
}
