package biomarker

import (
	"time"

	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/RyanBlaney/sonido-vitals/observe"
)

// Option configures an Extractor, Aggregator or Analyzer
type Option func(*options)

type options struct {
	logger  logging.Logger
	metrics *observe.Metrics
	now     func() time.Time
}

// WithLogger overrides the global logger
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records to m instead of observe.Default()
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock overrides time.Now for report timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger:  logging.GetGlobalLogger(),
		metrics: observe.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
