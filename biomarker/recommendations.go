package biomarker

import (
	"fmt"

	"github.com/RyanBlaney/sonido-vitals/config"
)

// coverage is what the recommendation rules look at
type coverage struct {
	validSegments int
	totalSegments int
	timespanDays  float64
	distinctHours int
	qualityScore  float64
}

// recommend returns data-collection advice in a fixed order
func recommend(cfg config.RecommendationConfig, c coverage) []string {
	var recs []string

	if c.validSegments == 0 {
		recs = append(recs, "No valid speech segments found; record longer conversational speech (at least 3 words and half a second per utterance).")
	}
	if c.validSegments < cfg.TrendMinSegments {
		recs = append(recs, fmt.Sprintf("Collect at least %d valid segments before interpreting trends (currently %d).", cfg.TrendMinSegments, c.validSegments))
	}
	if c.validSegments < cfg.MediumSegments {
		recs = append(recs, fmt.Sprintf("Collect at least %d valid segments for medium reliability.", cfg.MediumSegments))
	}
	if c.validSegments < cfg.HighSegments {
		recs = append(recs, fmt.Sprintf("Collect at least %d valid segments for high reliability.", cfg.HighSegments))
	}
	if c.timespanDays < cfg.MinDays {
		recs = append(recs, fmt.Sprintf("Record across at least %.0f days to establish reliable patterns (currently %.1f days).", cfg.MinDays, c.timespanDays))
	}
	if c.validSegments > 0 && c.distinctHours < cfg.MinDistinctHours {
		recs = append(recs, fmt.Sprintf("Record at different times of day to measure time-of-day effects (currently %d distinct hours).", c.distinctHours))
	}
	if c.totalSegments > 0 && c.qualityScore < cfg.MinQualityScore {
		recs = append(recs, fmt.Sprintf("Many segments were excluded by quality checks (quality score %.2f); longer uninterrupted speech improves reliability.", c.qualityScore))
	}

	if len(recs) == 0 {
		recs = append(recs, "Data volume and coverage are sufficient for reliable biomarker tracking.")
	}
	return recs
}
