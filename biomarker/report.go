package biomarker

import (
	"time"

	"github.com/RyanBlaney/sonido-vitals/algorithms/stats"
)

// WeeklyTrend is the speech-rate summary of one calendar week (Sunday start)
type WeeklyTrend struct {
	WeekStart  time.Time               `json:"week_start"`
	SpeechRate stats.StatisticalResult `json:"speech_rate"`
}

// HourlyEffect is the speech-rate summary of one local hour of day
type HourlyEffect struct {
	Hour               int            `json:"hour"`
	MeanSpeechRate     float64        `json:"mean_speech_rate"`
	ConfidenceInterval stats.Interval `json:"confidence_interval"`
	SampleSize         int            `json:"sample_size"`
}

// TimeOfDayEffect tests whether speech rate varies with the hour of day.
// PValue is a banded approximation of the F test; ExactPValue is the F
// distribution tail for the same ratio.
type TimeOfDayEffect struct {
	Hourly      []HourlyEffect `json:"hourly"`
	Significant bool           `json:"significant"`
	PValue      float64        `json:"p_value"`
	FRatio      float64        `json:"f_ratio"`
	ExactPValue float64        `json:"exact_p_value"`
}

// PercentileRankings position the aggregate values against population norms (0-100).
// They are a relative signal, not a clinical score.
type PercentileRankings struct {
	SpeechRate           float64 `json:"speech_rate"`
	PauseDuration        float64 `json:"pause_duration"`
	VocabularyComplexity float64 `json:"vocabulary_complexity"`
}

// StatisticalBiomarkers is the aggregate report for one analysis window
type StatisticalBiomarkers struct {
	ReportID      string    `json:"report_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	AnalysisStart time.Time `json:"analysis_start"`
	AnalysisEnd   time.Time `json:"analysis_end"`
	TimespanDays  float64   `json:"timespan_days"`

	SpeechRate           stats.StatisticalResult `json:"speech_rate"`           // wpm
	PauseDuration        stats.StatisticalResult `json:"pause_duration"`        // seconds
	VocabularyComplexity stats.StatisticalResult `json:"vocabulary_complexity"` // TTR×10 + len×0.5
	WordsPerTurn         stats.StatisticalResult `json:"words_per_turn"`

	Trend        stats.TrendAnalysis `json:"trend"`
	WeeklyTrends []WeeklyTrend       `json:"weekly_trends"`
	TimeOfDay    TimeOfDayEffect     `json:"time_of_day"`

	DataQuality     stats.DataQualityMetrics `json:"data_quality"`
	Percentiles     PercentileRankings       `json:"percentiles"`
	Reliability     stats.Reliability        `json:"reliability"`
	Recommendations []string                 `json:"recommendations"`
}

// IsEmpty reports whether no valid segment contributed to the report
func (b *StatisticalBiomarkers) IsEmpty() bool {
	return b == nil || b.SpeechRate.SampleSize == 0
}

// ValidSegmentCount is the number of valid segments behind the report
func (b *StatisticalBiomarkers) ValidSegmentCount() int {
	if b == nil {
		return 0
	}
	return b.SpeechRate.SampleSize
}
