package baseline

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-vitals/algorithms/stats"
	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"golang.org/x/sync/errgroup"
)

const tol = 1e-9

// Wednesday morning
var wednesday9am = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func approx(a, b float64) bool { return math.Abs(a-b) <= tol }

func newTestTracker(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	cfg := config.Default()
	cfg.Aggregation.Timezone = "UTC"
	opts = append([]Option{WithLogger(logging.NewNoOpLogger())}, opts...)
	return NewTracker(cfg, opts...)
}

func report(speechRate float64, n int) *biomarker.StatisticalBiomarkers {
	return &biomarker.StatisticalBiomarkers{
		SpeechRate: stats.StatisticalResult{
			Value:              speechRate,
			StandardError:      2,
			SampleSize:         n,
			ConfidenceInterval: stats.Interval{Low: speechRate - 4, High: speechRate + 4},
		},
		PauseDuration:        stats.StatisticalResult{Value: 1.1, StandardError: 0.1, SampleSize: n - 1},
		VocabularyComplexity: stats.StatisticalResult{Value: 10, StandardError: 0.2, SampleSize: n},
	}
}

var steadyFeatures = FeatureSummary{
	Fluency:           85,
	Energy:            70,
	DisfluencyRate:    2,
	RhythmConsistency: 0.8,
	CognitiveLoad:     0.3,
}

func TestAlpha(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{-3, 0},
		{1, 0.01},
		{20, 0.2},
		{30, 0.3},
		{500, 0.3},
	}
	for _, tt := range tests {
		if got := Alpha(tt.n, 0.3, 100); !approx(got, tt.want) {
			t.Errorf("Alpha(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestMetricStatsUpdate(t *testing.T) {
	t.Parallel()

	m := MetricStats{Mean: 10, StdDev: 2, Range: [2]float64{8, 12}, Count: 3}
	m.Update(20, 0.25)

	if !approx(m.Mean, 12.5) {
		t.Errorf("Mean = %v, want 12.5", m.Mean)
	}
	if want := math.Sqrt(0.75*4 + 0.25*7.5*7.5); !approx(m.StdDev, want) {
		t.Errorf("StdDev = %v, want %v", m.StdDev, want)
	}
	if m.Range != [2]float64{8, 20} {
		t.Errorf("Range = %v, want [8 20]", m.Range)
	}

	m.Update(10, 0.25)
	if m.Range != [2]float64{8, 20} {
		t.Errorf("Range narrowed to %v", m.Range)
	}

	before := m
	m.Update(math.NaN(), 0.25)
	if m != before {
		t.Errorf("NaN changed stats: %+v", m)
	}
}

func TestMetricStatsUpdate_FirstObservation(t *testing.T) {
	t.Parallel()

	m := MetricStats{StdDev: 0.5}
	m.Update(3, 0.1)
	if m.Mean != 3 || m.Range != [2]float64{3, 3} || m.Count != 1 || m.StdDev != 0.5 {
		t.Errorf("first observation = %+v", m)
	}
}

func TestZScoreSign(t *testing.T) {
	t.Parallel()

	m := MetricStats{Mean: 140, StdDev: 10}
	if z := m.ZScore(150); z <= 0 {
		t.Errorf("z above mean = %v, want positive", z)
	}
	if z := m.ZScore(130); z >= 0 {
		t.Errorf("z below mean = %v, want negative", z)
	}
	if z := (MetricStats{Mean: 140}).ZScore(200); z != 0 {
		t.Errorf("zero spread z = %v, want 0", z)
	}
}

func TestSelectTimeBucket(t *testing.T) {
	t.Parallel()

	want := map[int]TimeBucket{
		0: TimeOverall, 5: TimeOverall,
		6: TimeMorning, 11: TimeMorning,
		12: TimeAfternoon, 17: TimeAfternoon,
		18: TimeEvening, 23: TimeEvening,
	}
	for hour, b := range want {
		if got := SelectTimeBucket(hour); got != b {
			t.Errorf("SelectTimeBucket(%d) = %s, want %s", hour, got, b)
		}
	}

	if got := Select(time.Date(2024, time.January, 13, 10, 0, 0, 0, time.UTC), time.UTC); got != (Selection{TimeMorning, ContextWeekend}) {
		t.Errorf("Saturday morning = %+v", got)
	}
}

func TestUpdate_EstablishThenEMA(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	first, err := tr.UpdateAt(ctx, "u1", wednesday9am, report(140, 10), steadyFeatures)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Status != StatusEstablished {
		t.Fatalf("Status = %s, want established", first.Status)
	}

	b := first.Baseline
	for _, tb := range []TimeBucket{TimeMorning, TimeAfternoon, TimeEvening, TimeOverall} {
		if got := b.TimeOfDay.Bucket(tb).SpeechRate.Mean; got != 140 {
			t.Errorf("%s speech rate = %v, want 140", tb, got)
		}
	}
	for _, cb := range []ContextBucket{ContextWorkday, ContextWeekend, ContextMeetings, ContextCasual} {
		if got := b.Context.Bucket(cb).SpeechRate.Mean; got != 140 {
			t.Errorf("%s speech rate = %v, want 140", cb, got)
		}
	}
	if !approx(b.Thresholds.SpeechRateLow, 136) || !approx(b.Thresholds.SpeechRateHigh, 144) {
		t.Errorf("speech rate thresholds = [%v, %v], want [136, 144]", b.Thresholds.SpeechRateLow, b.Thresholds.SpeechRateHigh)
	}
	if b.TimeOfDay.Overall.Energy.StdDev != 15 {
		t.Errorf("energy seed = %v, want 15", b.TimeOfDay.Overall.Energy.StdDev)
	}

	second, err := tr.UpdateAt(ctx, "u1", wednesday9am.Add(24*time.Hour), report(160, 20), steadyFeatures)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second.Status != StatusUpdated || !approx(second.Alpha, 0.2) {
		t.Fatalf("second = %s alpha %v", second.Status, second.Alpha)
	}

	b = second.Baseline
	if got := b.TimeOfDay.Morning.SpeechRate.Mean; !approx(got, 144) {
		t.Errorf("morning = %v, want 144", got)
	}
	if got := b.TimeOfDay.Overall.SpeechRate.Mean; !approx(got, 144) {
		t.Errorf("overall = %v, want 144", got)
	}
	if got := b.Context.Workday.SpeechRate.Mean; !approx(got, 144) {
		t.Errorf("workday = %v, want 144", got)
	}
	if got := b.TimeOfDay.Afternoon.SpeechRate.Mean; got != 140 {
		t.Errorf("untouched afternoon = %v, want 140", got)
	}
	if got := b.Context.Weekend.SpeechRate.Mean; got != 140 {
		t.Errorf("untouched weekend = %v, want 140", got)
	}
	if got := b.TimeOfDay.Morning.SpeechRate.Range; got != [2]float64{140, 160} {
		t.Errorf("morning range = %v, want [140 160]", got)
	}
	if b.DataPoints != 30 || b.Updates != 2 {
		t.Errorf("DataPoints = %d, Updates = %d", b.DataPoints, b.Updates)
	}

	stored, err := tr.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !approx(stored.TimeOfDay.Morning.SpeechRate.Mean, 144) {
		t.Errorf("stored morning = %v, want 144", stored.TimeOfDay.Morning.SpeechRate.Mean)
	}
}

func TestUpdate_EarlyHoursOnlyOverall(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.UpdateAt(ctx, "u1", wednesday9am, report(140, 10), steadyFeatures); err != nil {
		t.Fatal(err)
	}
	res, err := tr.UpdateAt(ctx, "u1", time.Date(2024, time.January, 11, 3, 0, 0, 0, time.UTC), report(200, 50), steadyFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if res.Selection.Time != TimeOverall {
		t.Fatalf("selection = %+v", res.Selection)
	}

	b := res.Baseline
	if !approx(b.TimeOfDay.Overall.SpeechRate.Mean, 0.7*140+0.3*200) {
		t.Errorf("overall = %v", b.TimeOfDay.Overall.SpeechRate.Mean)
	}
	for _, tb := range dayBuckets {
		if got := b.TimeOfDay.Bucket(tb).SpeechRate.Mean; got != 140 {
			t.Errorf("%s = %v, want 140", tb, got)
		}
	}
}

func TestUpdate_EmptyReportSkipped(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	res, err := tr.UpdateAt(context.Background(), "u1", wednesday9am, &biomarker.StatisticalBiomarkers{}, steadyFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSkipped || res.Baseline != nil {
		t.Errorf("result = %+v, want skipped without baseline", res)
	}
	if _, err := tr.Get(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ConcurrentSameUser(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	const workers = 32
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			_, err := tr.UpdateAt(ctx, "u1", wednesday9am, report(150, 10), steadyFeatures)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	b, err := tr.Get(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Updates != workers || b.DataPoints != workers*10 {
		t.Errorf("Updates = %d, DataPoints = %d; lost updates", b.Updates, b.DataPoints)
	}
}

func TestHealthAndPatterns(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	res, err := tr.UpdateAt(ctx, "u1", wednesday9am, report(140, 10), steadyFeatures)
	if err != nil {
		t.Fatal(err)
	}
	h := res.Baseline.Health
	if !approx(h.Stability, 1) || !approx(h.Adaptability, 1) || !approx(h.Resilience, 0.7*0.7) {
		t.Errorf("health = %+v", h)
	}
	if !slices.Equal(res.Baseline.Patterns.OptimalHours, []int{9, 10, 11}) {
		t.Errorf("default optimal hours = %v", res.Baseline.Patterns.OptimalHours)
	}

	better := steadyFeatures
	better.Fluency = 95
	afternoon := wednesday9am.Add(6 * time.Hour)
	res, err = tr.UpdateAt(ctx, "u1", afternoon, report(140, 30), better)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{12, 13, 14, 15, 16, 17}; !slices.Equal(res.Baseline.Patterns.OptimalHours, want) {
		t.Errorf("optimal hours = %v, want %v", res.Baseline.Patterns.OptimalHours, want)
	}
	if res.Baseline.Patterns.RecoveryMinutes != 30 {
		t.Errorf("recovery = %v", res.Baseline.Patterns.RecoveryMinutes)
	}
}

func TestCheckDeviation_NoBaseline(t *testing.T) {
	t.Parallel()

	a, err := newTestTracker(t).CheckDeviationAt(context.Background(), "nobody", wednesday9am, report(140, 10), steadyFeatures)
	if err != nil {
		t.Fatal(err)
	}
	if a.HasBaseline || a.Significant || a.Interpretation != InterpretationNoBaseline {
		t.Errorf("analysis = %+v", a)
	}
}

func TestCheckDeviation(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()
	if _, err := tr.UpdateAt(ctx, "u1", wednesday9am, report(140, 10), steadyFeatures); err != nil {
		t.Fatal(err)
	}

	with := func(mod func(*FeatureSummary)) FeatureSummary {
		f := steadyFeatures
		mod(&f)
		return f
	}

	tests := []struct {
		name           string
		report         *biomarker.StatisticalBiomarkers
		features       FeatureSummary
		significant    bool
		interpretation string
		affected       []string
	}{
		{
			name:           "nominal",
			report:         report(140, 10),
			features:       steadyFeatures,
			interpretation: InterpretationNominal,
			affected:       []string{},
		},
		{
			name:           "energy low",
			report:         report(140, 10),
			features:       with(func(f *FeatureSummary) { f.Energy = 20 }),
			significant:    true,
			interpretation: InterpretationEnergyLow,
			affected:       []string{MetricEnergy},
		},
		{
			name:           "cognitive overload",
			report:         report(140, 10),
			features:       with(func(f *FeatureSummary) { f.CognitiveLoad = 0.9 }),
			significant:    true,
			interpretation: InterpretationCognitiveOverload,
			affected:       []string{MetricCognitiveLoad},
		},
		{
			name:           "fluency drop",
			report:         report(140, 10),
			features:       with(func(f *FeatureSummary) { f.Fluency = 55 }),
			significant:    true,
			interpretation: InterpretationFluencyDrop,
			affected:       []string{MetricFluency},
		},
		{
			name:           "energy outranks fluency",
			report:         report(140, 10),
			features:       with(func(f *FeatureSummary) { f.Fluency = 55; f.Energy = 20 }),
			significant:    true,
			interpretation: InterpretationEnergyLow,
			affected:       []string{MetricEnergy, MetricFluency},
		},
		{
			name:           "multi metric",
			report:         report(170, 10),
			features:       with(func(f *FeatureSummary) { f.Energy = 100 }),
			significant:    true,
			interpretation: InterpretationMultiMetric,
			affected:       []string{MetricSpeechRate, MetricEnergy},
		},
		{
			name:           "speech rate inside stored band",
			report:         report(143, 10),
			features:       steadyFeatures,
			interpretation: InterpretationNominal,
			affected:       []string{},
		},
		{
			// band is [136, 144] while z stays near 1.3
			name:           "speech rate outside stored band",
			report:         report(148, 10),
			features:       steadyFeatures,
			interpretation: InterpretationIsolated,
			affected:       []string{MetricSpeechRate},
		},
		{
			name:           "slow speech below stored band",
			report:         report(133, 10),
			features:       steadyFeatures,
			interpretation: InterpretationIsolated,
			affected:       []string{MetricSpeechRate},
		},
		{
			name:           "empty report",
			report:         &biomarker.StatisticalBiomarkers{},
			features:       FeatureSummary{},
			interpretation: InterpretationInsufficientData,
			affected:       []string{},
		},
		{
			name:           "nil report",
			report:         nil,
			features:       FeatureSummary{},
			interpretation: InterpretationInsufficientData,
			affected:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tr.CheckDeviationAt(ctx, "u1", wednesday9am, tt.report, tt.features)
			if err != nil {
				t.Fatal(err)
			}
			if !a.HasBaseline {
				t.Error("HasBaseline = false")
			}
			if a.Significant != tt.significant {
				t.Errorf("Significant = %v, want %v (z %v)", a.Significant, tt.significant, a.ZScores)
			}
			if a.Interpretation != tt.interpretation {
				t.Errorf("Interpretation = %q, want %q", a.Interpretation, tt.interpretation)
			}
			if !slices.Equal(a.AffectedMetrics, tt.affected) {
				t.Errorf("AffectedMetrics = %v, want %v", a.AffectedMetrics, tt.affected)
			}
			sum := 0.0
			for _, z := range a.ZScores {
				sum += math.Abs(z)
			}
			if !approx(a.DeviationScore, math.Min(100, 10*sum)) {
				t.Errorf("DeviationScore = %v, want %v", a.DeviationScore, math.Min(100, 10*sum))
			}
			if len(a.Recommendations) == 0 {
				t.Error("no recommendations")
			}
		})
	}
}

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) (*PersonalBaseline, error) { return nil, s.err }
func (s failingStore) Put(context.Context, *PersonalBaseline) error           { return s.err }

func TestTracker_StoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	tr := newTestTracker(t, WithStore(failingStore{err: boom}))

	if _, err := tr.UpdateAt(context.Background(), "u1", wednesday9am, report(140, 10), steadyFeatures); !errors.Is(err, boom) {
		t.Errorf("Update err = %v, want wrapped %v", err, boom)
	}
	if _, err := tr.CheckDeviationAt(context.Background(), "u1", wednesday9am, report(140, 10), steadyFeatures); !errors.Is(err, boom) {
		t.Errorf("CheckDeviation err = %v, want wrapped %v", err, boom)
	}
}

func TestMemStore_Copies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()

	if _, err := s.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}

	b := &PersonalBaseline{UserID: "u1", Patterns: PersonalPatterns{OptimalHours: []int{9}}}
	if err := s.Put(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Patterns.OptimalHours[0] = 20
	b.DataPoints = 99

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.DataPoints != 0 || got.Patterns.OptimalHours[0] != 9 {
		t.Errorf("stored baseline aliased caller's copy: %+v", got)
	}

	if err := s.Put(ctx, &PersonalBaseline{}); err == nil {
		t.Error("Put without user id succeeded")
	}
	if ids := s.Users(); !slices.Equal(ids, []string{"u1"}) {
		t.Errorf("Users = %v", ids)
	}
}
