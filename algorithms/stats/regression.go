package stats

import (
	"math"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance classifies a hypothesis test outcome
type Significance string

const (
	Significant      Significance = "significant"
	NotSignificant   Significance = "not_significant"
	InsufficientData Significance = "insufficient_data"
)

// MinRegressionSamples is the smallest sample a trend is fitted on
const MinRegressionSamples = 5

// SignificanceAlpha is the p-value cutoff for Significant
const SignificanceAlpha = 0.05

// TrendAnalysis is the outcome of an ordinary least squares fit y = a + b·x
type TrendAnalysis struct {
	Slope        float64      `json:"slope"`
	Intercept    float64      `json:"intercept"`
	RSquared     float64      `json:"r_squared"`
	PValue       float64      `json:"p_value"`
	Significance Significance `json:"significance"`
	SlopeCI      Interval     `json:"slope_confidence_interval"`
	SampleSize   int          `json:"sample_size"`
}

// InsufficientTrend is the sentinel returned for samples too small to fit
func InsufficientTrend(n int) TrendAnalysis {
	return TrendAnalysis{
		PValue:       1.0,
		Significance: InsufficientData,
		SampleSize:   n,
	}
}

// LinearRegression fits y against x with OLS and tests the slope against zero
// using a two-sided Student's t test with n-2 degrees of freedom.
//
// Callers are expected to check MinRegressionSamples first; shorter or
// mismatched inputs still return InsufficientTrend rather than dividing by a
// near-zero number of degrees of freedom.
func LinearRegression(x, y []float64, level float64) TrendAnalysis {
	n := len(x)
	if n != len(y) || n < MinRegressionSamples {
		return InsufficientTrend(n)
	}
	if level <= 0 || level >= 1 {
		level = DefaultConfidenceLevel
	}

	meanX := common.Mean(x)
	sxx := 0.0
	for _, xi := range x {
		sxx += (xi - meanX) * (xi - meanX)
	}

	// No spread in x: the slope is undefined, report a flat line.
	if sxx < 1e-12 {
		return TrendAnalysis{
			Intercept:    common.Mean(y),
			PValue:       1.0,
			Significance: NotSignificant,
			SampleSize:   n,
		}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	rSquared := stat.RSquared(x, y, nil, alpha, beta)
	if !common.IsFinite(rSquared) {
		rSquared = 0.0
	}

	ssResidual := 0.0
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		ssResidual += r * r
	}

	df := float64(n - 2)
	se := math.Sqrt(ssResidual / df / sxx)

	result := TrendAnalysis{
		Slope:      beta,
		Intercept:  alpha,
		RSquared:   rSquared,
		SampleSize: n,
	}

	if se < 1e-12 {
		// Exact fit: any non-zero slope is as significant as it gets.
		result.PValue = 1.0
		if math.Abs(beta) > 1e-12 {
			result.PValue = 0.0
		}
		result.SlopeCI = Interval{Low: beta, High: beta}
	} else {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		t := beta / se
		result.PValue = common.Clamp(2*dist.Survival(math.Abs(t)), 0, 1)
		margin := dist.Quantile(1-(1-level)/2) * se
		result.SlopeCI = Interval{Low: beta - margin, High: beta + margin}
	}

	if result.PValue < SignificanceAlpha {
		result.Significance = Significant
	} else {
		result.Significance = NotSignificant
	}

	return result
}
