// Package config holds every tunable threshold of the biomarker pipeline and
// the baseline tracker. Default returns the values the pipeline was
// calibrated with; Load overlays a YAML file on top of them.
package config

import (
	"time"

	"github.com/RyanBlaney/sonido-vitals/algorithms/stats"
)

// Config is the root configuration
type Config struct {
	Validation  ValidationConfig  `yaml:"validation" json:"validation"`
	Aggregation AggregationConfig `yaml:"aggregation" json:"aggregation"`
	Baseline    BaselineConfig    `yaml:"baseline" json:"baseline"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// ValidationConfig controls segment extraction and validity rules
type ValidationConfig struct {
	SubjectSpeaker    string  `yaml:"subject_speaker" json:"subject_speaker"` // speaker identifier of the wearer
	MinWords          int     `yaml:"min_words" json:"min_words"`
	MinDurationMs     float64 `yaml:"min_duration_ms" json:"min_duration_ms"`
	MinWordsPerMinute float64 `yaml:"min_words_per_minute" json:"min_words_per_minute"`
	MaxWordsPerMinute float64 `yaml:"max_words_per_minute" json:"max_words_per_minute"`
	MinTextLength     int     `yaml:"min_text_length" json:"min_text_length"` // trimmed characters
}

// NormsConfig holds the population norms percentile ranks are computed against.
// They are published averages, not clinical reference data.
type NormsConfig struct {
	SpeechRate           stats.ReferenceNorm `yaml:"speech_rate" json:"speech_rate"`                     // wpm
	PauseDuration        stats.ReferenceNorm `yaml:"pause_duration" json:"pause_duration"`               // seconds
	VocabularyComplexity stats.ReferenceNorm `yaml:"vocabulary_complexity" json:"vocabulary_complexity"` // TTR×10 + len×0.5
}

// ReliabilityConfig sets the cutoffs for the report reliability label
type ReliabilityConfig struct {
	HighMinSegments   int     `yaml:"high_min_segments" json:"high_min_segments"`
	HighMinQuality    float64 `yaml:"high_min_quality" json:"high_min_quality"`
	MediumMinSegments int     `yaml:"medium_min_segments" json:"medium_min_segments"`
	MediumMinQuality  float64 `yaml:"medium_min_quality" json:"medium_min_quality"`
}

// RecommendationConfig sets the thresholds behind data-collection advice
type RecommendationConfig struct {
	TrendMinSegments int     `yaml:"trend_min_segments" json:"trend_min_segments"`
	MediumSegments   int     `yaml:"medium_segments" json:"medium_segments"`
	HighSegments     int     `yaml:"high_segments" json:"high_segments"`
	MinDays          float64 `yaml:"min_days" json:"min_days"`
	MinDistinctHours int     `yaml:"min_distinct_hours" json:"min_distinct_hours"`
	MinQualityScore  float64 `yaml:"min_quality_score" json:"min_quality_score"`
}

// AggregationConfig controls the biomarker aggregator
type AggregationConfig struct {
	ConfidenceLevel float64              `yaml:"confidence_level" json:"confidence_level"`
	MaxPauseMs      float64              `yaml:"max_pause_ms" json:"max_pause_ms"`
	TrendMinSamples int                  `yaml:"trend_min_samples" json:"trend_min_samples"`
	OutlierK        float64              `yaml:"outlier_k" json:"outlier_k"`
	ReferenceSize   int                  `yaml:"reference_size" json:"reference_size"`
	Timezone        string               `yaml:"timezone" json:"timezone"` // IANA name, "Local" or ""
	Norms           NormsConfig          `yaml:"norms" json:"norms"`
	Reliability     ReliabilityConfig    `yaml:"reliability" json:"reliability"`
	Recommendations RecommendationConfig `yaml:"recommendations" json:"recommendations"`
}

// StdDevSeeds are the initial standard deviations for signals observed only
// once when a baseline is established
type StdDevSeeds struct {
	Fluency           float64 `yaml:"fluency" json:"fluency"`
	Energy            float64 `yaml:"energy" json:"energy"`
	DisfluencyRate    float64 `yaml:"disfluency_rate" json:"disfluency_rate"`
	RhythmConsistency float64 `yaml:"rhythm_consistency" json:"rhythm_consistency"`
	CognitiveLoad     float64 `yaml:"cognitive_load" json:"cognitive_load"`
}

// AlertConfig holds the fixed cutoffs copied into each new baseline
type AlertConfig struct {
	SpeechRateSEMultiplier float64 `yaml:"speech_rate_se_multiplier" json:"speech_rate_se_multiplier"`
	SpeechRateZ            float64 `yaml:"speech_rate_z" json:"speech_rate_z"`
	EnergyZ                float64 `yaml:"energy_z" json:"energy_z"`
	FluencyZ               float64 `yaml:"fluency_z" json:"fluency_z"`
	CognitiveLoadZ         float64 `yaml:"cognitive_load_z" json:"cognitive_load_z"`
	EnergyLow              float64 `yaml:"energy_low" json:"energy_low"`                   // 0-100
	FluencyLow             float64 `yaml:"fluency_low" json:"fluency_low"`                 // 0-100
	CognitiveLoadHigh      float64 `yaml:"cognitive_load_high" json:"cognitive_load_high"` // 0-1
	SignificantZ           float64 `yaml:"significant_z" json:"significant_z"`
	SignificantMetrics     int     `yaml:"significant_metrics" json:"significant_metrics"`
}

// BaselineConfig controls the personal baseline tracker
type BaselineConfig struct {
	MaxAlpha            float64     `yaml:"max_alpha" json:"max_alpha"`
	AlphaDivisor        float64     `yaml:"alpha_divisor" json:"alpha_divisor"`
	RecoveryMinutes     float64     `yaml:"recovery_minutes" json:"recovery_minutes"`
	StressCVThreshold   float64     `yaml:"stress_cv_threshold" json:"stress_cv_threshold"`
	DefaultOptimalHours []int       `yaml:"default_optimal_hours" json:"default_optimal_hours"`
	DefaultFatigueHours []int       `yaml:"default_fatigue_hours" json:"default_fatigue_hours"`
	Seeds               StdDevSeeds `yaml:"seeds" json:"seeds"`
	Alerts              AlertConfig `yaml:"alerts" json:"alerts"`
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
}

// Default returns the calibrated defaults
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			SubjectSpeaker:    "user",
			MinWords:          3,
			MinDurationMs:     500,
			MinWordsPerMinute: 30,
			MaxWordsPerMinute: 400,
			MinTextLength:     10,
		},
		Aggregation: AggregationConfig{
			ConfidenceLevel: 0.95,
			MaxPauseMs:      30000,
			TrendMinSamples: stats.MinRegressionSamples,
			OutlierK:        stats.DefaultOutlierK,
			ReferenceSize:   stats.DefaultReferenceSize,
			Timezone:        "Local",
			Norms: NormsConfig{
				SpeechRate:           stats.ReferenceNorm{Mean: 150, StdDev: 30},
				PauseDuration:        stats.ReferenceNorm{Mean: 1.2, StdDev: 0.6},
				VocabularyComplexity: stats.ReferenceNorm{Mean: 10.5, StdDev: 1.5},
			},
			Reliability: ReliabilityConfig{
				HighMinSegments:   100,
				HighMinQuality:    0.8,
				MediumMinSegments: 30,
				MediumMinQuality:  0.6,
			},
			Recommendations: RecommendationConfig{
				TrendMinSegments: 30,
				MediumSegments:   50,
				HighSegments:     100,
				MinDays:          7,
				MinDistinctHours: 3,
				MinQualityScore:  0.6,
			},
		},
		Baseline: BaselineConfig{
			MaxAlpha:            0.3,
			AlphaDivisor:        100,
			RecoveryMinutes:     30,
			StressCVThreshold:   0.25,
			DefaultOptimalHours: []int{9, 10, 11},
			DefaultFatigueHours: []int{14, 15, 22, 23},
			Seeds: StdDevSeeds{
				Fluency:           10,
				Energy:            15,
				DisfluencyRate:    2,
				RhythmConsistency: 0.1,
				CognitiveLoad:     0.15,
			},
			Alerts: AlertConfig{
				SpeechRateSEMultiplier: 2,
				SpeechRateZ:            2,
				EnergyZ:                1.5,
				FluencyZ:               1.5,
				CognitiveLoadZ:         1.5,
				EnergyLow:              30,
				FluencyLow:             60,
				CognitiveLoadHigh:      0.7,
				SignificantZ:           2,
				SignificantMetrics:     2,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Location resolves Aggregation.Timezone. "", "Local" and unknown names map
// to time.Local; Validate reports unknown names.
func (c *Config) Location() *time.Location {
	return resolveLocation(c.Aggregation.Timezone)
}

func resolveLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
