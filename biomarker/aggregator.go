package biomarker

import (
	"context"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-vitals/algorithms/lexical"
	"github.com/RyanBlaney/sonido-vitals/algorithms/stats"
	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/RyanBlaney/sonido-vitals/observe"
	"github.com/google/uuid"
)

// Aggregator turns validated segments into a StatisticalBiomarkers report
type Aggregator struct {
	config   config.AggregationConfig
	location *time.Location
	logger   logging.Logger
	metrics  *observe.Metrics
	now      func() time.Time

	// Reference tables are built once; they depend only on the norms.
	speechRateRef []float64
	pauseRef      []float64
	vocabularyRef []float64
}

// NewAggregator creates an aggregator using cfg's aggregation settings and timezone
func NewAggregator(cfg *config.Config, opts ...Option) *Aggregator {
	if cfg == nil {
		cfg = config.Default()
	}
	o := applyOptions(opts)
	a := cfg.Aggregation

	return &Aggregator{
		config:        a,
		location:      cfg.Location(),
		logger:        o.logger.WithFields(logging.Fields{"component": "biomarker_aggregator"}),
		metrics:       o.metrics,
		now:           o.now,
		speechRateRef: stats.NormalReference(a.Norms.SpeechRate, a.ReferenceSize),
		pauseRef:      stats.NormalReference(a.Norms.PauseDuration, a.ReferenceSize),
		vocabularyRef: stats.NormalReference(a.Norms.VocabularyComplexity, a.ReferenceSize),
	}
}

// Aggregate builds a report from segments (valid and invalid). Only valid
// segments contribute to statistics; the rest count toward data quality.
// Zero valid segments yield the empty-report sentinel, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, segments []Segment) *StatisticalBiomarkers {
	started := time.Now()

	valid := ValidSegments(segments)
	slices.SortStableFunc(valid, func(x, y Segment) int {
		return x.Timestamp.Compare(y.Timestamp)
	})

	var report *StatisticalBiomarkers
	if len(valid) == 0 {
		report = a.emptyReport(len(segments))
	} else {
		report = a.aggregate(len(segments), valid)
	}

	a.metrics.RecordReport(ctx, string(report.Reliability), time.Since(started))
	a.logger.Info("Biomarker report generated", logging.Fields{
		"report_id":      report.ReportID,
		"segments":       len(segments),
		"valid_segments": len(valid),
		"reliability":    report.Reliability,
		"trend":          report.Trend.Significance,
	})

	return report
}

func (a *Aggregator) aggregate(total int, valid []Segment) *StatisticalBiomarkers {
	level := a.config.ConfidenceLevel

	wpm := make([]float64, len(valid))
	words := make([]float64, len(valid))
	vocabulary := make([]float64, len(valid))
	for i, s := range valid {
		wpm[i] = s.WordsPerMinute
		words[i] = float64(s.WordCount)
		vocabulary[i] = lexical.VocabularyComplexity(s.Text)
	}

	first := valid[0].Timestamp
	last := valid[len(valid)-1].Timestamp

	report := &StatisticalBiomarkers{
		ReportID:             uuid.NewString(),
		GeneratedAt:          a.now(),
		AnalysisStart:        first,
		AnalysisEnd:          last,
		TimespanDays:         last.Sub(first).Hours() / 24,
		SpeechRate:           stats.NewStatisticalResult(wpm, level),
		PauseDuration:        stats.NewStatisticalResult(a.pauses(valid), level),
		VocabularyComplexity: stats.NewStatisticalResult(vocabulary, level),
		WordsPerTurn:         stats.NewStatisticalResult(words, level),
		Trend:                a.trend(valid, wpm),
		WeeklyTrends:         a.weeklyTrends(valid),
		TimeOfDay:            a.timeOfDay(valid),
	}

	outliers := stats.DetectOutliers(wpm, a.config.OutlierK)
	report.DataQuality = stats.AssessDataQuality(total, len(valid), outliers.Count())
	report.Percentiles = a.percentiles(report)
	report.Reliability = a.reliability(len(valid), report.DataQuality.QualityScore)
	report.Recommendations = recommend(a.config.Recommendations, coverage{
		validSegments: len(valid),
		totalSegments: total,
		timespanDays:  report.TimespanDays,
		distinctHours: len(report.TimeOfDay.Hourly),
		qualityScore:  report.DataQuality.QualityScore,
	})

	return report
}

func (a *Aggregator) emptyReport(total int) *StatisticalBiomarkers {
	quality := stats.AssessDataQuality(total, 0, 0)
	return &StatisticalBiomarkers{
		ReportID:     uuid.NewString(),
		GeneratedAt:  a.now(),
		Trend:        stats.InsufficientTrend(0),
		WeeklyTrends: []WeeklyTrend{},
		TimeOfDay: TimeOfDayEffect{
			Hourly:      []HourlyEffect{},
			PValue:      1.0,
			ExactPValue: 1.0,
		},
		DataQuality: quality,
		Reliability: stats.ReliabilityLow,
		Recommendations: recommend(a.config.Recommendations, coverage{
			totalSegments: total,
		}),
	}
}

// pauses returns the gaps in seconds between consecutive segments of the
// same recording, keeping only 0 < gap < MaxPauseMs
func (a *Aggregator) pauses(valid []Segment) []float64 {
	var out []float64
	for i := 0; i+1 < len(valid); i++ {
		cur, next := valid[i], valid[i+1]
		if cur.RecordingID != next.RecordingID {
			continue
		}
		gap := next.StartMs - cur.EndMs
		if gap > 0 && gap < a.config.MaxPauseMs {
			out = append(out, gap/1000.0)
		}
	}
	return out
}

// trend regresses wpm on hours elapsed since the first valid segment
func (a *Aggregator) trend(valid []Segment, wpm []float64) stats.TrendAnalysis {
	if len(valid) < a.config.TrendMinSamples {
		return stats.InsufficientTrend(len(valid))
	}

	first := valid[0].Timestamp
	hours := make([]float64, len(valid))
	for i, s := range valid {
		hours[i] = s.Timestamp.Sub(first).Hours()
	}
	return stats.LinearRegression(hours, wpm, a.config.ConfidenceLevel)
}

func (a *Aggregator) weeklyTrends(valid []Segment) []WeeklyTrend {
	buckets := make(map[time.Time][]float64)
	var weeks []time.Time
	for _, s := range valid {
		week := WeekStart(s.Timestamp, a.location)
		if _, ok := buckets[week]; !ok {
			weeks = append(weeks, week)
		}
		buckets[week] = append(buckets[week], s.WordsPerMinute)
	}

	slices.SortFunc(weeks, func(x, y time.Time) int { return x.Compare(y) })

	trends := make([]WeeklyTrend, 0, len(weeks))
	for _, w := range weeks {
		trends = append(trends, WeeklyTrend{
			WeekStart:  w,
			SpeechRate: stats.NewStatisticalResult(buckets[w], a.config.ConfidenceLevel),
		})
	}
	return trends
}

func (a *Aggregator) timeOfDay(valid []Segment) TimeOfDayEffect {
	var byHour [24][]float64
	for _, s := range valid {
		h := s.Timestamp.In(a.location).Hour()
		byHour[h] = append(byHour[h], s.WordsPerMinute)
	}

	effect := TimeOfDayEffect{Hourly: []HourlyEffect{}}
	groups := make([][]float64, 0, 24)
	for hour, values := range byHour {
		if len(values) == 0 {
			continue
		}
		r := stats.NewStatisticalResult(values, a.config.ConfidenceLevel)
		effect.Hourly = append(effect.Hourly, HourlyEffect{
			Hour:               hour,
			MeanSpeechRate:     r.Value,
			ConfidenceInterval: r.ConfidenceInterval,
			SampleSize:         r.SampleSize,
		})
		groups = append(groups, values)
	}

	test := stats.OneWayVarianceRatio(groups)
	effect.Significant = test.Significant
	effect.PValue = test.PValue
	effect.FRatio = test.FRatio
	effect.ExactPValue = test.ExactPValue
	return effect
}

func (a *Aggregator) percentiles(report *StatisticalBiomarkers) PercentileRankings {
	var p PercentileRankings
	if report.SpeechRate.SampleSize > 0 {
		p.SpeechRate = stats.PercentileRank(report.SpeechRate.Value, a.speechRateRef)
	}
	if report.PauseDuration.SampleSize > 0 {
		p.PauseDuration = stats.PercentileRank(report.PauseDuration.Value, a.pauseRef)
	}
	if report.VocabularyComplexity.SampleSize > 0 {
		p.VocabularyComplexity = stats.PercentileRank(report.VocabularyComplexity.Value, a.vocabularyRef)
	}
	return p
}

func (a *Aggregator) reliability(valid int, quality float64) stats.Reliability {
	r := a.config.Reliability
	switch {
	case valid >= r.HighMinSegments && quality >= r.HighMinQuality:
		return stats.ReliabilityHigh
	case valid >= r.MediumMinSegments && quality >= r.MediumMinQuality:
		return stats.ReliabilityMedium
	default:
		return stats.ReliabilityLow
	}
}

// WeekStart returns local midnight of the most recent Sunday on or before t
func WeekStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-int(local.Weekday()), 0, 0, 0, 0, loc)
}
