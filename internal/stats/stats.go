// Package stats recomputes Koron aggregations client-side over the raw
// values fetched by a data-extraction query. The SQL-shaped functions
// (variance, stddev) follow SQL semantics: sample statistics with an n-1
// denominator, NULLs already excluded by the caller.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/koron-analytics/koron"
)

// Compute applies fn to values. Sum and Count are defined on empty input;
// the remaining functions need at least one value, and variance and
// standard deviation need two.
func Compute(fn koron.Function, values []float64) (float64, error) {
	switch fn {
	case koron.FunctionSum:
		return Sum(values), nil
	case koron.FunctionCount:
		return float64(len(values)), nil
	case koron.FunctionAverage:
		if len(values) == 0 {
			return 0, fmt.Errorf("average of no values")
		}
		return Mean(values), nil
	case koron.FunctionMedian:
		if len(values) == 0 {
			return 0, fmt.Errorf("median of no values")
		}
		return Median(values), nil
	case koron.FunctionVariance:
		if len(values) < 2 {
			return 0, fmt.Errorf("variance needs at least 2 values, got %d", len(values))
		}
		return Variance(values), nil
	case koron.FunctionStandardDeviation:
		if len(values) < 2 {
			return 0, fmt.Errorf("standard deviation needs at least 2 values, got %d", len(values))
		}
		return math.Sqrt(Variance(values)), nil
	default:
		return 0, fmt.Errorf("unknown function %q", fn)
	}
}

// Sum returns the sum of values; 0 for empty input.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean. Panics on empty input; callers guard.
func Mean(values []float64) float64 {
	return Sum(values) / float64(len(values))
}

// Median returns the middle value, averaging the two middle values for
// even-length input. The input slice is not modified.
func Median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Variance returns the sample variance (n-1 denominator), matching SQL's
// variance(). Callers guard against fewer than two values.
func Variance(values []float64) float64 {
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(values)-1)
}
