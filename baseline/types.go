// Package baseline maintains per-user rolling speech norms and scores new
// reports against them.
package baseline

import (
	"slices"
	"time"
)

// MetricStats is the rolling summary of one signal
type MetricStats struct {
	Mean   float64    `json:"mean"`
	StdDev float64    `json:"std_dev"`
	Range  [2]float64 `json:"range"` // [min, max], never narrows
	Count  int        `json:"count"` // observations absorbed
}

// BaselineMetrics holds one MetricStats per tracked signal
type BaselineMetrics struct {
	SpeechRate           MetricStats `json:"speech_rate"`
	PauseDuration        MetricStats `json:"pause_duration"`
	VocabularyComplexity MetricStats `json:"vocabulary_complexity"`
	Fluency              MetricStats `json:"fluency"`
	Energy               MetricStats `json:"energy"`
	DisfluencyRate       MetricStats `json:"disfluency_rate"`
	RhythmConsistency    MetricStats `json:"rhythm_consistency"`
	CognitiveLoad        MetricStats `json:"cognitive_load"`
}

type namedStats struct {
	name  string
	stats *MetricStats
}

func (m *BaselineMetrics) named() []namedStats {
	return []namedStats{
		{MetricSpeechRate, &m.SpeechRate},
		{MetricPauseDuration, &m.PauseDuration},
		{MetricVocabularyComplexity, &m.VocabularyComplexity},
		{MetricFluency, &m.Fluency},
		{MetricEnergy, &m.Energy},
		{MetricDisfluencyRate, &m.DisfluencyRate},
		{MetricRhythmConsistency, &m.RhythmConsistency},
		{MetricCognitiveLoad, &m.CognitiveLoad},
	}
}

// Metric names used in z-score maps, affected-metric lists and stress signatures
const (
	MetricSpeechRate           = "speech_rate"
	MetricPauseDuration        = "pause_duration"
	MetricVocabularyComplexity = "vocabulary_complexity"
	MetricFluency              = "fluency"
	MetricEnergy               = "energy"
	MetricDisfluencyRate       = "disfluency_rate"
	MetricRhythmConsistency    = "rhythm_consistency"
	MetricCognitiveLoad        = "cognitive_load"
)

// TimeOfDayBuckets partitions a baseline by local time of day
type TimeOfDayBuckets struct {
	Morning   BaselineMetrics `json:"morning"`
	Afternoon BaselineMetrics `json:"afternoon"`
	Evening   BaselineMetrics `json:"evening"`
	Overall   BaselineMetrics `json:"overall"`
}

// Bucket returns the metrics for b
func (t *TimeOfDayBuckets) Bucket(b TimeBucket) *BaselineMetrics {
	switch b {
	case TimeMorning:
		return &t.Morning
	case TimeAfternoon:
		return &t.Afternoon
	case TimeEvening:
		return &t.Evening
	default:
		return &t.Overall
	}
}

// ContextBuckets partitions a baseline by situation. Only workday and
// weekend are selected by updates; meetings and casual keep their
// established snapshot.
type ContextBuckets struct {
	Workday  BaselineMetrics `json:"workday"`
	Weekend  BaselineMetrics `json:"weekend"`
	Meetings BaselineMetrics `json:"meetings"`
	Casual   BaselineMetrics `json:"casual"`
}

// Bucket returns the metrics for b
func (c *ContextBuckets) Bucket(b ContextBucket) *BaselineMetrics {
	switch b {
	case ContextWeekend:
		return &c.Weekend
	case ContextMeetings:
		return &c.Meetings
	case ContextCasual:
		return &c.Casual
	default:
		return &c.Workday
	}
}

// PersonalPatterns are the habits inferred from the buckets
type PersonalPatterns struct {
	OptimalHours    []int    `json:"optimal_hours"`
	FatigueHours    []int    `json:"fatigue_hours"`
	RecoveryMinutes float64  `json:"recovery_minutes"`
	StressSignature []string `json:"stress_signature"` // metrics with high overall variability
}

// AlertThresholds are fixed when the baseline is established
type AlertThresholds struct {
	SpeechRateLow     float64 `json:"speech_rate_low"`
	SpeechRateHigh    float64 `json:"speech_rate_high"`
	SpeechRateZ       float64 `json:"speech_rate_z"`
	EnergyZ           float64 `json:"energy_z"`
	FluencyZ          float64 `json:"fluency_z"`
	CognitiveLoadZ    float64 `json:"cognitive_load_z"`
	EnergyLow         float64 `json:"energy_low"`
	FluencyLow        float64 `json:"fluency_low"`
	CognitiveLoadHigh float64 `json:"cognitive_load_high"`

	// Significant when at least SignificantMetrics are abnormal or any |z| exceeds SignificantZ
	SignificantZ       float64 `json:"significant_z"`
	SignificantMetrics int     `json:"significant_metrics"`
}

// HealthIndicators are 0-1 scores recomputed after every update
type HealthIndicators struct {
	Stability        float64 `json:"stability"`
	Adaptability     float64 `json:"adaptability"`
	Resilience       float64 `json:"resilience"`
	VariabilityIndex float64 `json:"variability_index"`
}

// PersonalBaseline is one user's long-lived norm
type PersonalBaseline struct {
	UserID        string           `json:"user_id"`
	EstablishedAt time.Time        `json:"established_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DataPoints    int              `json:"data_points"`
	Updates       int              `json:"updates"`
	TimeOfDay     TimeOfDayBuckets `json:"time_of_day"`
	Context       ContextBuckets   `json:"context"`
	Patterns      PersonalPatterns `json:"patterns"`
	Thresholds    AlertThresholds  `json:"alert_thresholds"`
	Health        HealthIndicators `json:"health_indicators"`
}

// Clone returns a deep copy
func (b *PersonalBaseline) Clone() *PersonalBaseline {
	if b == nil {
		return nil
	}
	c := *b
	c.Patterns.OptimalHours = slices.Clone(b.Patterns.OptimalHours)
	c.Patterns.FatigueHours = slices.Clone(b.Patterns.FatigueHours)
	c.Patterns.StressSignature = slices.Clone(b.Patterns.StressSignature)
	return &c
}

// FeatureSummary carries the scores supplied by rhythm, disfluency and
// energy analyzers. The tracker treats them as opaque numbers.
type FeatureSummary struct {
	Fluency           float64 `json:"fluency"`            // 0-100
	Energy            float64 `json:"energy"`             // 0-100
	DisfluencyRate    float64 `json:"disfluency_rate"`    // per 100 words
	RhythmConsistency float64 `json:"rhythm_consistency"` // 0-1
	CognitiveLoad     float64 `json:"cognitive_load"`     // 0-1
}

// DeviationAnalysis is the verdict of comparing a report with a baseline
type DeviationAnalysis struct {
	UserID          string             `json:"user_id"`
	CheckedAt       time.Time          `json:"checked_at"`
	HasBaseline     bool               `json:"has_baseline"`
	Significant     bool               `json:"significant"`
	DeviationScore  float64            `json:"deviation_score"` // 0-100
	ZScores         map[string]float64 `json:"z_scores"`
	AffectedMetrics []string           `json:"affected_metrics"`
	Interpretation  string             `json:"interpretation"`
	Recommendations []string           `json:"recommendations"`
	TimeBucket      TimeBucket         `json:"time_bucket"`
	ContextBucket   ContextBucket      `json:"context_bucket"`
}
