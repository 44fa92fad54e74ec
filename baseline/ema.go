package baseline

import (
	"math"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
)

// Alpha is the EMA weight for an update backed by n new segments:
// min(maxAlpha, n/divisor), never negative
func Alpha(n int, maxAlpha, divisor float64) float64 {
	if n <= 0 || divisor <= 0 {
		return 0
	}
	return common.Clamp(float64(n)/divisor, 0, maxAlpha)
}

func seedStats(value, stdDev float64) MetricStats {
	if !common.IsFinite(value) {
		return MetricStats{StdDev: stdDev}
	}
	return MetricStats{
		Mean:   value,
		StdDev: stdDev,
		Range:  [2]float64{value, value},
		Count:  1,
	}
}

// Update blends current into the stats:
//
//	mean' = (1-α)·mean + α·current
//	var'  = (1-α)·var  + α·(current-mean')²
//
// The range widens to include current. Non-finite values are ignored. The
// first finite observation initialises the mean instead of blending.
func (m *MetricStats) Update(current, alpha float64) {
	if !common.IsFinite(current) {
		return
	}
	if m.Count == 0 {
		m.Mean = current
		m.Range = [2]float64{current, current}
		m.Count = 1
		return
	}

	mean := (1-alpha)*m.Mean + alpha*current
	variance := (1-alpha)*m.StdDev*m.StdDev + alpha*(current-mean)*(current-mean)

	m.Mean = mean
	m.StdDev = math.Sqrt(variance)
	m.Range[0] = math.Min(m.Range[0], current)
	m.Range[1] = math.Max(m.Range[1], current)
	m.Count++
}

// ZScore is (value-mean)/stddev, or 0 when the spread is degenerate
func (m MetricStats) ZScore(value float64) float64 {
	if m.StdDev <= 1e-9 || !common.IsFinite(value) {
		return 0
	}
	return (value - m.Mean) / m.StdDev
}

// CoefficientOfVariation is stddev/|mean|, 0 for a zero mean
func (m MetricStats) CoefficientOfVariation() float64 {
	return common.SafeDiv(m.StdDev, math.Abs(m.Mean))
}

// observation is one report plus feature summary flattened to signal values.
// NaN marks a signal the report did not measure.
type observation struct {
	speechRate           float64
	pauseDuration        float64
	vocabularyComplexity float64
	features             FeatureSummary
}

func (o observation) values() map[string]float64 {
	return map[string]float64{
		MetricSpeechRate:           o.speechRate,
		MetricPauseDuration:        o.pauseDuration,
		MetricVocabularyComplexity: o.vocabularyComplexity,
		MetricFluency:              o.features.Fluency,
		MetricEnergy:               o.features.Energy,
		MetricDisfluencyRate:       o.features.DisfluencyRate,
		MetricRhythmConsistency:    o.features.RhythmConsistency,
		MetricCognitiveLoad:        o.features.CognitiveLoad,
	}
}

// update applies the EMA law to every signal of m
func (m *BaselineMetrics) update(obs observation, alpha float64) {
	values := obs.values()
	for _, ns := range m.named() {
		ns.stats.Update(values[ns.name], alpha)
	}
}
