package baseline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/logging"
)

// Interpretations, in priority order
const (
	InterpretationEnergyLow         = "Energy is well below your usual level. This often follows poor sleep, illness or sustained fatigue."
	InterpretationCognitiveOverload = "Speech suggests a higher cognitive load than usual, with longer pauses or simpler phrasing."
	InterpretationFluencyDrop       = "Fluency has dropped compared with your baseline, with more hesitations or fillers."
	InterpretationMultiMetric       = "Several speech measures have shifted from your baseline at the same time."
	InterpretationNominal           = "Speech patterns are within your normal range."
	InterpretationIsolated          = "One speech measure has moved away from your baseline."
	InterpretationNoBaseline        = "No baseline yet; keep recording to establish your personal norm."
	InterpretationInsufficientData  = "Not enough valid speech in this report to compare with your baseline."
)

// CheckDeviation compares report and features with the user's baseline at
// the current time. It never fails for a missing baseline; the error is
// non-nil only when the store fails.
func (t *Tracker) CheckDeviation(ctx context.Context, userID string, report *biomarker.StatisticalBiomarkers, features FeatureSummary) (DeviationAnalysis, error) {
	return t.CheckDeviationAt(ctx, userID, t.now(), report, features)
}

// CheckDeviationAt is CheckDeviation with an explicit observation time
func (t *Tracker) CheckDeviationAt(ctx context.Context, userID string, at time.Time, report *biomarker.StatisticalBiomarkers, features FeatureSummary) (DeviationAnalysis, error) {
	sel := Select(at, t.location)

	b, err := t.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		t.metrics.RecordDeviationCheck(ctx, false)
		return NoBaselineAnalysis(userID, at, sel), nil
	}
	if err != nil {
		t.logger.Error(err, "Failed to load baseline", logging.Fields{"user_id": userID})
		return DeviationAnalysis{}, fmt.Errorf("baseline: load %s: %w", userID, err)
	}

	if report.IsEmpty() {
		t.metrics.RecordDeviationCheck(ctx, false)
		t.logger.Debug("Skipping deviation check for empty report", logging.Fields{"user_id": userID})
		return InsufficientDataAnalysis(userID, at, sel), nil
	}

	analysis := evaluate(b, sel, newObservation(report, features))
	analysis.UserID = userID
	analysis.CheckedAt = at

	t.metrics.RecordDeviationCheck(ctx, analysis.Significant)
	t.logger.Debug("Deviation checked", logging.Fields{
		"user_id":     userID,
		"significant": analysis.Significant,
		"score":       analysis.DeviationScore,
		"affected":    analysis.AffectedMetrics,
	})

	return analysis, nil
}

// NoBaselineAnalysis is the result for a user without a baseline
func NoBaselineAnalysis(userID string, at time.Time, sel Selection) DeviationAnalysis {
	return DeviationAnalysis{
		UserID:          userID,
		CheckedAt:       at,
		ZScores:         map[string]float64{},
		AffectedMetrics: []string{},
		Interpretation:  InterpretationNoBaseline,
		Recommendations: []string{"Record at least a few days of conversation to establish a baseline."},
		TimeBucket:      sel.Time,
		ContextBucket:   sel.Context,
	}
}

// InsufficientDataAnalysis is the result for a report with no valid segments
// checked against an existing baseline
func InsufficientDataAnalysis(userID string, at time.Time, sel Selection) DeviationAnalysis {
	return DeviationAnalysis{
		UserID:          userID,
		CheckedAt:       at,
		HasBaseline:     true,
		ZScores:         map[string]float64{},
		AffectedMetrics: []string{},
		Interpretation:  InterpretationInsufficientData,
		Recommendations: []string{"Record longer stretches of conversational speech before checking again."},
		TimeBucket:      sel.Time,
		ContextBucket:   sel.Context,
	}
}

// evaluate scores obs against the selected time-of-day bucket of b
func evaluate(b *PersonalBaseline, sel Selection, obs observation) DeviationAnalysis {
	bucket := b.TimeOfDay.Bucket(sel.Time)
	th := b.Thresholds

	analysis := DeviationAnalysis{
		HasBaseline:     true,
		ZScores:         map[string]float64{},
		AffectedMetrics: []string{},
		TimeBucket:      sel.Time,
		ContextBucket:   sel.Context,
	}

	type check struct {
		name      string
		value     float64
		stats     MetricStats
		threshold float64
		raw       func(v float64) bool // raw-value warning, nil when none
	}
	checks := []check{
		{MetricSpeechRate, obs.speechRate, bucket.SpeechRate, th.SpeechRateZ, func(v float64) bool { return v < th.SpeechRateLow || v > th.SpeechRateHigh }},
		{MetricEnergy, obs.features.Energy, bucket.Energy, th.EnergyZ, func(v float64) bool { return v < th.EnergyLow }},
		{MetricFluency, obs.features.Fluency, bucket.Fluency, th.FluencyZ, func(v float64) bool { return v < th.FluencyLow }},
		{MetricCognitiveLoad, obs.features.CognitiveLoad, bucket.CognitiveLoad, th.CognitiveLoadZ, nil},
	}

	sumAbs := 0.0
	maxAbs := 0.0
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			continue
		}
		z := c.stats.ZScore(c.value)
		analysis.ZScores[c.name] = z
		sumAbs += math.Abs(z)
		maxAbs = math.Max(maxAbs, math.Abs(z))

		if math.Abs(z) > c.threshold || (c.raw != nil && c.raw(c.value)) {
			analysis.AffectedMetrics = append(analysis.AffectedMetrics, c.name)
		}
	}

	analysis.Significant = len(analysis.AffectedMetrics) >= th.SignificantMetrics || maxAbs > th.SignificantZ
	analysis.DeviationScore = math.Min(100, 10*sumAbs)
	analysis.Interpretation, analysis.Recommendations = interpret(analysis, obs, th)

	return analysis
}

// interpret picks the first matching pattern in fixed priority order
func interpret(a DeviationAnalysis, obs observation, th AlertThresholds) (string, []string) {
	affected := func(name string) bool { return slices.Contains(a.AffectedMetrics, name) }

	switch {
	case affected(MetricEnergy) && (obs.features.Energy < th.EnergyLow || a.ZScores[MetricEnergy] < 0):
		return InterpretationEnergyLow, []string{
			"Prioritise rest and sleep over the next few days.",
			"Check whether the drop coincides with illness or a change in routine.",
		}
	case (affected(MetricCognitiveLoad) && a.ZScores[MetricCognitiveLoad] > 0) || obs.features.CognitiveLoad > th.CognitiveLoadHigh:
		return InterpretationCognitiveOverload, []string{
			"Break demanding work into shorter blocks with pauses in between.",
			"Reduce multitasking during conversations where possible.",
		}
	case affected(MetricFluency) && (obs.features.Fluency < th.FluencyLow || a.ZScores[MetricFluency] < 0):
		return InterpretationFluencyDrop, []string{
			"Slow down and allow pauses instead of fillers.",
			"Watch whether the change persists over several days.",
		}
	case len(a.AffectedMetrics) >= 2:
		return InterpretationMultiMetric, []string{
			"Keep recording to see whether the shift persists.",
			"Consider what changed recently in sleep, workload or health.",
		}
	case len(a.AffectedMetrics) == 1:
		return InterpretationIsolated, []string{
			"A single deviation is common; keep recording to confirm it.",
		}
	default:
		return InterpretationNominal, []string{
			"No action needed; keep recording to refine your baseline.",
		}
	}
}
