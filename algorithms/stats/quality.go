package stats

import "github.com/RyanBlaney/sonido-vitals/algorithms/common"

// Reliability is a coarse confidence label
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// outlierTolerance is the outlier fraction tolerated before the quality score is reduced
const outlierTolerance = 0.10

// DataQualityMetrics describes how much of the input survived validation
type DataQualityMetrics struct {
	TotalSegments   int         `json:"total_segments"`
	ValidSegments   int         `json:"valid_segments"`
	OutlierCount    int         `json:"outlier_count"`
	ValidRatio      float64     `json:"valid_ratio"`
	OutlierFraction float64     `json:"outlier_fraction"`
	QualityScore    float64     `json:"quality_score"` // 0-1
	Reliability     Reliability `json:"reliability"`
}

// AssessDataQuality scores a run as valid/total, reduced by the outlier
// fraction once it exceeds 10% of the valid segments.
func AssessDataQuality(total, valid, outliers int) DataQualityMetrics {
	if total < 0 {
		total = 0
	}
	if valid < 0 {
		valid = 0
	}
	if outliers < 0 {
		outliers = 0
	}

	ratio := common.SafeDiv(float64(valid), float64(total))
	outlierFraction := common.SafeDiv(float64(outliers), float64(valid))

	score := ratio
	if outlierFraction > outlierTolerance {
		score *= 1 - outlierFraction
	}
	score = common.Clamp(score, 0, 1)

	return DataQualityMetrics{
		TotalSegments:   total,
		ValidSegments:   valid,
		OutlierCount:    outliers,
		ValidRatio:      ratio,
		OutlierFraction: outlierFraction,
		QualityScore:    score,
		Reliability:     qualityLabel(score),
	}
}

func qualityLabel(score float64) Reliability {
	switch {
	case score >= 0.8:
		return ReliabilityHigh
	case score >= 0.6:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}
