// Package features derives fallback feature summaries from transcript
// segments when no external rhythm, disfluency or energy analyzer is wired in.
// The scores are heuristics on the same segments the report was built from.
package features

import (
	"math"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"github.com/RyanBlaney/sonido-vitals/algorithms/lexical"
	"github.com/RyanBlaney/sonido-vitals/algorithms/spectral"
	"github.com/RyanBlaney/sonido-vitals/baseline"
	"github.com/RyanBlaney/sonido-vitals/biomarker"
)

const (
	// minRhythmSamples is the shortest speech-rate series given a spectral estimate
	minRhythmSamples = 4

	fillerPenalty    = 5.0  // fluency points per filler per 100 words
	pausePenalty     = 10.0 // fluency points per second of mean pause above comfortablePause
	comfortablePause = 1.0  // seconds
	maxLoadPause     = 3.0  // seconds of mean pause that saturate the pause part of cognitive load
)

// Estimator computes baseline.FeatureSummary values
type Estimator struct {
	spectrum *spectral.PowerSpectrum
	flatness *spectral.SpectralFlatness
}

// NewEstimator creates a feature estimator
func NewEstimator() *Estimator {
	return &Estimator{
		spectrum: spectral.NewPowerSpectrum(),
		flatness: spectral.NewSpectralFlatness(),
	}
}

// Estimate derives a summary from report and the valid segments behind it
func (e *Estimator) Estimate(report *biomarker.StatisticalBiomarkers, segments []biomarker.Segment) baseline.FeatureSummary {
	valid := biomarker.ValidSegments(segments)
	if report.IsEmpty() || len(valid) == 0 {
		return baseline.FeatureSummary{}
	}

	disfluency := DisfluencyRate(valid)
	pause := 0.0
	if report.PauseDuration.SampleSize > 0 {
		pause = report.PauseDuration.Value
	}

	fluency := 100 - fillerPenalty*disfluency - pausePenalty*math.Max(0, pause-comfortablePause)

	pauseLoad := common.Clamp(pause/maxLoadPause, 0, 1)
	simplicity := 1 - common.Clamp(report.Percentiles.VocabularyComplexity/100, 0, 1)

	wpm := make([]float64, len(valid))
	for i, s := range valid {
		wpm[i] = s.WordsPerMinute
	}

	return baseline.FeatureSummary{
		Fluency:           common.Clamp(fluency, 0, 100),
		Energy:            common.Clamp(report.Percentiles.SpeechRate, 0, 100),
		DisfluencyRate:    disfluency,
		RhythmConsistency: e.RhythmConsistency(wpm),
		CognitiveLoad:     common.Clamp(0.5*pauseLoad+0.5*simplicity, 0, 1),
	}
}

// RhythmConsistency scores how regular a speech-rate series is (0-1).
// Series long enough for a spectrum score 1 − spectral flatness of the
// detrended series; shorter ones score 1 − coefficient of variation.
func (e *Estimator) RhythmConsistency(wpm []float64) float64 {
	if len(wpm) == 0 {
		return 0
	}
	if len(wpm) < minRhythmSamples {
		return 1 - common.Clamp(common.CoefficientOfVariation(wpm), 0, 1)
	}

	power := e.spectrum.Compute(detrend(wpm))
	return 1 - common.Clamp(e.flatness.Compute(power), 0, 1)
}

// DisfluencyRate is filler tokens per 100 words across segments
func DisfluencyRate(segments []biomarker.Segment) float64 {
	words, fillers := 0, 0
	for _, s := range segments {
		words += s.WordCount
		fillers += lexical.CountFillers(s.Text)
	}
	return 100 * common.SafeDiv(float64(fillers), float64(words))
}

// detrend removes the least-squares line through (i, series[i])
func detrend(series []float64) []float64 {
	n := float64(len(series))
	meanX := (n - 1) / 2
	meanY := common.Mean(series)

	var sxy, sxx float64
	for i, y := range series {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	slope := common.SafeDiv(sxy, sxx)

	out := make([]float64, len(series))
	for i, y := range series {
		out[i] = y - (meanY + slope*(float64(i)-meanX))
	}
	return out
}
