package stats

import (
	"math"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidenceLevel is used when a caller passes a level outside (0, 1)
const DefaultConfidenceLevel = 0.95

// Interval is a closed [Low, High] range
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies inside the interval (inclusive)
func (i Interval) Contains(v float64) bool {
	return v >= i.Low && v <= i.High
}

// StatisticalResult summarizes a numeric sample
type StatisticalResult struct {
	Value              float64  `json:"value"`               // Sample mean
	ConfidenceInterval Interval `json:"confidence_interval"` // Normal-approximation CI around Value
	StandardError      float64  `json:"standard_error"`      // stddev/√n
	SampleSize         int      `json:"sample_size"`         // Number of contributing observations
}

// StandardDeviation recovers the sample standard deviation from the standard error
func (r StatisticalResult) StandardDeviation() float64 {
	if r.SampleSize < 2 {
		return 0.0
	}
	return r.StandardError * math.Sqrt(float64(r.SampleSize))
}

// Mean is the arithmetic mean; 0 for an empty sample
func Mean(values []float64) float64 {
	return common.Mean(values)
}

// StandardDeviation is the sample standard deviation (n-1 denominator); 0 when n <= 1
func StandardDeviation(values []float64) float64 {
	return common.StandardDeviation(values)
}

// StandardError is stddev/√n; 0 when n <= 1
func StandardError(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0.0
	}
	return StandardDeviation(values) / math.Sqrt(float64(n))
}

// ZCritical returns the two-sided standard normal critical value for level
// (1.96 for 0.95).
func ZCritical(level float64) float64 {
	if level <= 0 || level >= 1 {
		level = DefaultConfidenceLevel
	}
	return distuv.UnitNormal.Quantile(1 - (1-level)/2)
}

// ConfidenceInterval computes mean ± z·(stddev/√n) using the normal approximation.
// Samples with n <= 1 get the degenerate interval [mean, mean].
func ConfidenceInterval(values []float64, level float64) Interval {
	mean := Mean(values)
	if len(values) <= 1 {
		return Interval{Low: mean, High: mean}
	}

	margin := ZCritical(level) * StandardError(values)
	return Interval{Low: mean - margin, High: mean + margin}
}

// NewStatisticalResult bundles mean, CI, standard error and sample size.
// Non-finite values are dropped before summarizing.
func NewStatisticalResult(values []float64, level float64) StatisticalResult {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if common.IsFinite(v) {
			finite = append(finite, v)
		}
	}

	if len(finite) == 0 {
		return StatisticalResult{}
	}

	return StatisticalResult{
		Value:              Mean(finite),
		ConfidenceInterval: ConfidenceInterval(finite, level),
		StandardError:      StandardError(finite),
		SampleSize:         len(finite),
	}
}
