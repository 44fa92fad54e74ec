package baseline

import (
	"time"

	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/RyanBlaney/sonido-vitals/observe"
)

// Option configures a Tracker
type Option func(*Tracker)

// WithStore replaces the default in-memory store
func WithStore(s Store) Option {
	return func(t *Tracker) {
		if s != nil {
			t.store = s
		}
	}
}

// WithLogger overrides the global logger
func WithLogger(l logging.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetrics records to m instead of observe.Default()
func WithMetrics(m *observe.Metrics) Option {
	return func(t *Tracker) {
		if m != nil {
			t.metrics = m
		}
	}
}

// WithClock overrides time.Now for Update and CheckDeviation
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}
