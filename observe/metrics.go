// Package observe provides the OpenTelemetry metric instruments recorded by
// the biomarker pipeline and the baseline tracker.
//
// Instruments are created from a [metric.MeterProvider]. [Default] uses the
// global provider, which is a no-op until the application installs an SDK
// provider; tests should use [NewMetrics] with a ManualReader-backed provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/RyanBlaney/sonido-vitals"

// Metrics holds all metric instruments. All fields are safe for concurrent use.
type Metrics struct {
	// SegmentsExtracted counts extracted segments. Attribute: valid (bool).
	SegmentsExtracted metric.Int64Counter

	// ReportsGenerated counts aggregation runs. Attribute: reliability.
	ReportsGenerated metric.Int64Counter

	// AggregationDuration tracks aggregation latency in seconds.
	AggregationDuration metric.Float64Histogram

	// BaselineUpdates counts tracker updates. Attribute: status.
	BaselineUpdates metric.Int64Counter

	// DeviationChecks counts deviation checks. Attribute: significant (bool).
	DeviationChecks metric.Int64Counter
}

var aggregationBuckets = []float64{
	0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
}

// NewMetrics creates all instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SegmentsExtracted, err = m.Int64Counter("vitals.segments.extracted",
		metric.WithDescription("Speech segments produced by the extractor."),
		metric.WithUnit("{segment}"),
	); err != nil {
		return nil, err
	}
	if met.ReportsGenerated, err = m.Int64Counter("vitals.reports.generated",
		metric.WithDescription("Biomarker reports generated."),
		metric.WithUnit("{report}"),
	); err != nil {
		return nil, err
	}
	if met.AggregationDuration, err = m.Float64Histogram("vitals.aggregation.duration",
		metric.WithDescription("Time spent aggregating segments into a report."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(aggregationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BaselineUpdates, err = m.Int64Counter("vitals.baseline.updates",
		metric.WithDescription("Personal baseline updates by outcome."),
		metric.WithUnit("{update}"),
	); err != nil {
		return nil, err
	}
	if met.DeviationChecks, err = m.Int64Counter("vitals.deviation.checks",
		metric.WithDescription("Deviation checks against a personal baseline."),
		metric.WithUnit("{check}"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns a process-wide Metrics built on the global MeterProvider.
// It panics only if instrument creation fails, which the API never does for
// valid names.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordSegments adds valid and invalid segment counts
func (m *Metrics) RecordSegments(ctx context.Context, valid, invalid int) {
	if valid > 0 {
		m.SegmentsExtracted.Add(ctx, int64(valid), metric.WithAttributes(attribute.Bool("valid", true)))
	}
	if invalid > 0 {
		m.SegmentsExtracted.Add(ctx, int64(invalid), metric.WithAttributes(attribute.Bool("valid", false)))
	}
}

// RecordReport counts a report and its aggregation latency
func (m *Metrics) RecordReport(ctx context.Context, reliability string, elapsed time.Duration) {
	m.ReportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("reliability", reliability)))
	m.AggregationDuration.Record(ctx, elapsed.Seconds())
}

// RecordBaselineUpdate counts a tracker update outcome
func (m *Metrics) RecordBaselineUpdate(ctx context.Context, status string) {
	m.BaselineUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordDeviationCheck counts a deviation check
func (m *Metrics) RecordDeviationCheck(ctx context.Context, significant bool) {
	m.DeviationChecks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("significant", significant)))
}
