package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultReferenceSize is the number of quantiles in a generated reference table
const DefaultReferenceSize = 1000

// ReferenceNorm parameterizes a population norm as a normal distribution
type ReferenceNorm struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// NormalReference builds a deterministic reference sample for norm: the
// normal quantiles at (i+0.5)/size for i in [0, size). The same inputs always
// produce the same table, so percentile ranks are reproducible.
func NormalReference(norm ReferenceNorm, size int) []float64 {
	if size <= 0 {
		size = DefaultReferenceSize
	}

	ref := make([]float64, size)
	if norm.StdDev <= 0 {
		for i := range ref {
			ref[i] = norm.Mean
		}
		return ref
	}

	dist := distuv.Normal{Mu: norm.Mean, Sigma: norm.StdDev}
	for i := range ref {
		ref[i] = dist.Quantile((float64(i) + 0.5) / float64(size))
	}
	return ref
}

// PercentileRank returns the empirical percentile (0-100) of value within
// reference. Ties count half. An empty reference yields 0.
func PercentileRank(value float64, reference []float64) float64 {
	if len(reference) == 0 {
		return 0.0
	}

	below := 0
	equal := 0
	for _, r := range reference {
		switch {
		case r < value:
			below++
		case r == value:
			equal++
		}
	}

	return (float64(below) + 0.5*float64(equal)) / float64(len(reference)) * 100.0
}

// QuartileInfo contains quartile-specific information
type QuartileInfo struct {
	Q1  float64 `json:"q1"`  // First quartile (25th percentile)
	Q2  float64 `json:"q2"`  // Second quartile (median)
	Q3  float64 `json:"q3"`  // Third quartile (75th percentile)
	IQR float64 `json:"iqr"` // Interquartile range (Q3 - Q1)
}

// OutlierInfo lists values outside the Tukey fences Q1-k·IQR and Q3+k·IQR
type OutlierInfo struct {
	Quartiles  QuartileInfo `json:"quartiles"`
	LowerFence float64      `json:"lower_fence"`
	UpperFence float64      `json:"upper_fence"`
	Lower      []float64    `json:"lower"`
	Upper      []float64    `json:"upper"`
}

// Count returns the total number of outliers
func (o OutlierInfo) Count() int {
	return len(o.Lower) + len(o.Upper)
}

// DefaultOutlierK is Tukey's fence multiplier
const DefaultOutlierK = 1.5

// Quartiles computes Q1, median and Q3 with linear interpolation
func Quartiles(data []float64) QuartileInfo {
	if len(data) == 0 {
		return QuartileInfo{}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q2 := stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	return QuartileInfo{Q1: q1, Q2: q2, Q3: q3, IQR: q3 - q1}
}

// DetectOutliers applies the IQR rule with multiplier k (DefaultOutlierK when k <= 0).
// Fewer than four values never produce outliers.
func DetectOutliers(data []float64, k float64) OutlierInfo {
	if len(data) < 4 {
		return OutlierInfo{}
	}
	if k <= 0 {
		k = DefaultOutlierK
	}

	q := Quartiles(data)
	info := OutlierInfo{
		Quartiles:  q,
		LowerFence: q.Q1 - k*q.IQR,
		UpperFence: q.Q3 + k*q.IQR,
	}

	for _, v := range data {
		if v < info.LowerFence {
			info.Lower = append(info.Lower, v)
		} else if v > info.UpperFence {
			info.Upper = append(info.Upper, v)
		}
	}

	return info
}
