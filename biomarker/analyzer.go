package biomarker

import (
	"context"

	"github.com/RyanBlaney/sonido-vitals/config"
)

// Analyzer runs extraction and aggregation in one pass
type Analyzer struct {
	extractor  *Extractor
	aggregator *Aggregator
}

// NewAnalyzer wires an Extractor and an Aggregator from cfg
func NewAnalyzer(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Analyzer{
		extractor:  NewExtractor(cfg.Validation, opts...),
		aggregator: NewAggregator(cfg, opts...),
	}
}

// Analyze extracts segments from recordings and aggregates them. The
// segments are returned for quality auditing and feature estimation.
func (a *Analyzer) Analyze(ctx context.Context, recordings []Recording) (*StatisticalBiomarkers, []Segment) {
	segments := a.extractor.Extract(ctx, recordings)
	return a.aggregator.Aggregate(ctx, segments), segments
}

// Extractor returns the analyzer's extractor
func (a *Analyzer) Extractor() *Extractor { return a.extractor }

// Aggregator returns the analyzer's aggregator
func (a *Analyzer) Aggregator() *Aggregator { return a.aggregator }
