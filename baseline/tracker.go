package baseline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/RyanBlaney/sonido-vitals/observe"
)

// UpdateStatus is the outcome of Tracker.Update
type UpdateStatus string

const (
	StatusEstablished UpdateStatus = "established"
	StatusUpdated     UpdateStatus = "updated"
	StatusSkipped     UpdateStatus = "skipped" // report had no valid segments
)

// UpdateResult describes what an update did
type UpdateResult struct {
	Baseline  *PersonalBaseline `json:"baseline"`
	Status    UpdateStatus      `json:"status"`
	Alpha     float64           `json:"alpha"`
	Selection Selection         `json:"selection"`
}

// Tracker owns the absent → established → updated lifecycle of each user's
// baseline. Read-modify-write cycles are serialised per user.
type Tracker struct {
	store    Store
	config   config.BaselineConfig
	location *time.Location
	logger   logging.Logger
	metrics  *observe.Metrics
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates a tracker backed by a MemStore unless WithStore is given
func NewTracker(cfg *config.Config, opts ...Option) *Tracker {
	if cfg == nil {
		cfg = config.Default()
	}
	t := &Tracker{
		store:    NewMemStore(),
		config:   cfg.Baseline,
		location: cfg.Location(),
		logger:   logging.GetGlobalLogger(),
		metrics:  observe.Default(),
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithFields(logging.Fields{"component": "baseline_tracker"})
	return t
}

// Store returns the tracker's store
func (t *Tracker) Store() Store { return t.store }

func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// Update folds report and features into the user's baseline at the current time
func (t *Tracker) Update(ctx context.Context, userID string, report *biomarker.StatisticalBiomarkers, features FeatureSummary) (UpdateResult, error) {
	return t.UpdateAt(ctx, userID, t.now(), report, features)
}

// UpdateAt is Update with an explicit observation time, which selects the buckets
func (t *Tracker) UpdateAt(ctx context.Context, userID string, at time.Time, report *biomarker.StatisticalBiomarkers, features FeatureSummary) (UpdateResult, error) {
	if userID == "" {
		return UpdateResult{}, errors.New("baseline: empty user id")
	}

	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	logger := t.logger.WithFields(logging.Fields{"user_id": userID})
	sel := Select(at, t.location)

	current, err := t.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.Error(err, "Failed to load baseline")
		return UpdateResult{}, fmt.Errorf("baseline: load %s: %w", userID, err)
	}

	if report.IsEmpty() {
		t.metrics.RecordBaselineUpdate(ctx, string(StatusSkipped))
		logger.Debug("Skipping baseline update for empty report")
		return UpdateResult{Baseline: current, Status: StatusSkipped, Selection: sel}, nil
	}

	obs := newObservation(report, features)

	var result UpdateResult
	if current == nil {
		result = UpdateResult{
			Baseline:  t.establish(userID, at, report, obs),
			Status:    StatusEstablished,
			Selection: sel,
		}
	} else {
		alpha := Alpha(report.ValidSegmentCount(), t.config.MaxAlpha, t.config.AlphaDivisor)
		t.apply(current, at, sel, alpha, report.ValidSegmentCount(), obs)
		result = UpdateResult{Baseline: current, Status: StatusUpdated, Alpha: alpha, Selection: sel}
	}

	if err := t.store.Put(ctx, result.Baseline); err != nil {
		logger.Error(err, "Failed to store baseline")
		return UpdateResult{}, fmt.Errorf("baseline: store %s: %w", userID, err)
	}

	t.metrics.RecordBaselineUpdate(ctx, string(result.Status))
	logger.Info("Baseline "+string(result.Status), logging.Fields{
		"time_bucket":    sel.Time,
		"context_bucket": sel.Context,
		"alpha":          result.Alpha,
		"data_points":    result.Baseline.DataPoints,
	})

	return result, nil
}

// Get returns the user's baseline or ErrNotFound
func (t *Tracker) Get(ctx context.Context, userID string) (*PersonalBaseline, error) {
	return t.store.Get(ctx, userID)
}

func newObservation(report *biomarker.StatisticalBiomarkers, features FeatureSummary) observation {
	obs := observation{
		speechRate:           math.NaN(),
		pauseDuration:        math.NaN(),
		vocabularyComplexity: math.NaN(),
		features:             features,
	}
	if report.SpeechRate.SampleSize > 0 {
		obs.speechRate = report.SpeechRate.Value
	}
	if report.PauseDuration.SampleSize > 0 {
		obs.pauseDuration = report.PauseDuration.Value
	}
	if report.VocabularyComplexity.SampleSize > 0 {
		obs.vocabularyComplexity = report.VocabularyComplexity.Value
	}
	return obs
}

// establish builds a baseline whose buckets all start from the same snapshot
func (t *Tracker) establish(userID string, at time.Time, report *biomarker.StatisticalBiomarkers, obs observation) *PersonalBaseline {
	seeds := t.config.Seeds
	snapshot := BaselineMetrics{
		SpeechRate:           seedStats(obs.speechRate, report.SpeechRate.StandardDeviation()),
		PauseDuration:        seedStats(obs.pauseDuration, report.PauseDuration.StandardDeviation()),
		VocabularyComplexity: seedStats(obs.vocabularyComplexity, report.VocabularyComplexity.StandardDeviation()),
		Fluency:              seedStats(obs.features.Fluency, seeds.Fluency),
		Energy:               seedStats(obs.features.Energy, seeds.Energy),
		DisfluencyRate:       seedStats(obs.features.DisfluencyRate, seeds.DisfluencyRate),
		RhythmConsistency:    seedStats(obs.features.RhythmConsistency, seeds.RhythmConsistency),
		CognitiveLoad:        seedStats(obs.features.CognitiveLoad, seeds.CognitiveLoad),
	}

	alerts := t.config.Alerts
	margin := alerts.SpeechRateSEMultiplier * report.SpeechRate.StandardError

	b := &PersonalBaseline{
		UserID:        userID,
		EstablishedAt: at,
		UpdatedAt:     at,
		DataPoints:    report.ValidSegmentCount(),
		Updates:       1,
		TimeOfDay: TimeOfDayBuckets{
			Morning:   snapshot,
			Afternoon: snapshot,
			Evening:   snapshot,
			Overall:   snapshot,
		},
		Context: ContextBuckets{
			Workday:  snapshot,
			Weekend:  snapshot,
			Meetings: snapshot,
			Casual:   snapshot,
		},
		Thresholds: AlertThresholds{
			SpeechRateLow:      report.SpeechRate.Value - margin,
			SpeechRateHigh:     report.SpeechRate.Value + margin,
			SpeechRateZ:        alerts.SpeechRateZ,
			EnergyZ:            alerts.EnergyZ,
			FluencyZ:           alerts.FluencyZ,
			CognitiveLoadZ:     alerts.CognitiveLoadZ,
			EnergyLow:          alerts.EnergyLow,
			FluencyLow:         alerts.FluencyLow,
			CognitiveLoadHigh:  alerts.CognitiveLoadHigh,
			SignificantZ:       alerts.SignificantZ,
			SignificantMetrics: alerts.SignificantMetrics,
		},
	}

	t.refresh(b)
	return b
}

// apply updates overall plus the selected time and context buckets in place
func (t *Tracker) apply(b *PersonalBaseline, at time.Time, sel Selection, alpha float64, n int, obs observation) {
	b.TimeOfDay.Overall.update(obs, alpha)
	if sel.Time != TimeOverall {
		b.TimeOfDay.Bucket(sel.Time).update(obs, alpha)
	}
	b.Context.Bucket(sel.Context).update(obs, alpha)

	b.DataPoints += n
	b.Updates++
	b.UpdatedAt = at
	t.refresh(b)
}

// refresh recomputes the derived pattern and health fields
func (t *Tracker) refresh(b *PersonalBaseline) {
	b.Patterns = derivePatterns(b, t.config)
	b.Health = deriveHealth(b)
}
