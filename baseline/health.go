package baseline

import (
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"github.com/RyanBlaney/sonido-vitals/config"
)

var dayBuckets = []TimeBucket{TimeMorning, TimeAfternoon, TimeEvening}

// derivePatterns picks optimal and fatigue hours from the time buckets and
// lists the metrics whose overall variability exceeds the stress threshold
func derivePatterns(b *PersonalBaseline, cfg config.BaselineConfig) PersonalPatterns {
	p := PersonalPatterns{
		OptimalHours:    slices.Clone(cfg.DefaultOptimalHours),
		FatigueHours:    slices.Clone(cfg.DefaultFatigueHours),
		RecoveryMinutes: cfg.RecoveryMinutes,
		StressSignature: []string{},
	}

	if best, ok := extremeBucket(b, func(m *BaselineMetrics) float64 { return m.Fluency.Mean }, true); ok {
		p.OptimalHours = bucketHours(best)
	}
	if worst, ok := extremeBucket(b, func(m *BaselineMetrics) float64 { return m.Energy.Mean }, false); ok {
		p.FatigueHours = bucketHours(worst)
	}

	for _, ns := range b.TimeOfDay.Overall.named() {
		if ns.stats.Count > 0 && ns.stats.CoefficientOfVariation() > cfg.StressCVThreshold {
			p.StressSignature = append(p.StressSignature, ns.name)
		}
	}
	return p
}

// extremeBucket returns the day bucket with the highest (or lowest) value.
// ok is false while all buckets are tied.
func extremeBucket(b *PersonalBaseline, value func(*BaselineMetrics) float64, highest bool) (TimeBucket, bool) {
	best := dayBuckets[0]
	bestValue := value(b.TimeOfDay.Bucket(best))
	tied := true

	for _, tb := range dayBuckets[1:] {
		v := value(b.TimeOfDay.Bucket(tb))
		if v != bestValue {
			tied = false
		}
		if (highest && v > bestValue) || (!highest && v < bestValue) {
			best, bestValue = tb, v
		}
	}
	return best, !tied
}

// deriveHealth computes the 0-1 health scores from the current buckets
func deriveHealth(b *PersonalBaseline) HealthIndicators {
	overall := b.TimeOfDay.Overall

	periodMeans := make([]float64, 0, len(dayBuckets))
	for _, tb := range dayBuckets {
		periodMeans = append(periodMeans, b.TimeOfDay.Bucket(tb).SpeechRate.Mean)
	}
	stability := 1 / (1 + math.Abs(common.CoefficientOfVariation(periodMeans)))

	diff := math.Abs(b.Context.Workday.SpeechRate.Mean - b.Context.Weekend.SpeechRate.Mean)
	adaptability := 1 / (1 + common.SafeDiv(diff, math.Abs(overall.SpeechRate.Mean)))

	resilience := common.Clamp(overall.Energy.Mean/100, 0, 1) * (1 - common.Clamp(overall.CognitiveLoad.Mean, 0, 1))

	return HealthIndicators{
		Stability:        stability,
		Adaptability:     adaptability,
		Resilience:       resilience,
		VariabilityIndex: overall.SpeechRate.CoefficientOfVariation(),
	}
}
