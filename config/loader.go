package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path over Default and validates the result
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over Default and validates the result.
// Keys absent from the document keep their default values.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg is coherent and returns every problem found
func Validate(cfg *Config) error {
	var errs []error

	v := cfg.Validation
	if v.MinWords < 0 {
		errs = append(errs, fmt.Errorf("validation.min_words must be >= 0, got %d", v.MinWords))
	}
	if v.MinDurationMs < 0 {
		errs = append(errs, fmt.Errorf("validation.min_duration_ms must be >= 0, got %v", v.MinDurationMs))
	}
	if v.MinWordsPerMinute < 0 || v.MaxWordsPerMinute <= v.MinWordsPerMinute {
		errs = append(errs, fmt.Errorf("validation words-per-minute bounds [%v, %v] are invalid", v.MinWordsPerMinute, v.MaxWordsPerMinute))
	}

	a := cfg.Aggregation
	if a.ConfidenceLevel <= 0 || a.ConfidenceLevel >= 1 {
		errs = append(errs, fmt.Errorf("aggregation.confidence_level must be in (0, 1), got %v", a.ConfidenceLevel))
	}
	if a.MaxPauseMs <= 0 {
		errs = append(errs, fmt.Errorf("aggregation.max_pause_ms must be > 0, got %v", a.MaxPauseMs))
	}
	if a.TrendMinSamples < 5 {
		errs = append(errs, fmt.Errorf("aggregation.trend_min_samples must be >= 5, got %d", a.TrendMinSamples))
	}
	if a.ReferenceSize < 1 {
		errs = append(errs, fmt.Errorf("aggregation.reference_size must be >= 1, got %d", a.ReferenceSize))
	}
	if a.OutlierK <= 0 {
		errs = append(errs, fmt.Errorf("aggregation.outlier_k must be > 0, got %v", a.OutlierK))
	}
	if a.Timezone != "" && a.Timezone != "Local" {
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("aggregation.timezone %q: %w", a.Timezone, err))
		}
	}
	for name, norm := range map[string]float64{
		"speech_rate":           a.Norms.SpeechRate.StdDev,
		"pause_duration":        a.Norms.PauseDuration.StdDev,
		"vocabulary_complexity": a.Norms.VocabularyComplexity.StdDev,
	} {
		if norm <= 0 {
			errs = append(errs, fmt.Errorf("aggregation.norms.%s.std_dev must be > 0, got %v", name, norm))
		}
	}

	b := cfg.Baseline
	if b.MaxAlpha <= 0 || b.MaxAlpha > 1 {
		errs = append(errs, fmt.Errorf("baseline.max_alpha must be in (0, 1], got %v", b.MaxAlpha))
	}
	if b.AlphaDivisor <= 0 {
		errs = append(errs, fmt.Errorf("baseline.alpha_divisor must be > 0, got %v", b.AlphaDivisor))
	}
	for _, h := range append(append([]int{}, b.DefaultOptimalHours...), b.DefaultFatigueHours...) {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("baseline default hours must be in [0, 23], got %d", h))
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}

	return errors.Join(errs...)
}
