package biomarker

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RyanBlaney/sonido-vitals/algorithms/common"
	"github.com/RyanBlaney/sonido-vitals/algorithms/lexical"
	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/RyanBlaney/sonido-vitals/observe"
)

// Extractor turns recordings into validated segments
type Extractor struct {
	config  config.ValidationConfig
	logger  logging.Logger
	metrics *observe.Metrics
}

// NewExtractor creates an extractor for the validation rules in cfg
func NewExtractor(cfg config.ValidationConfig, opts ...Option) *Extractor {
	o := applyOptions(opts)
	return &Extractor{
		config:  cfg,
		logger:  o.logger.WithFields(logging.Fields{"component": "segment_extractor"}),
		metrics: o.metrics,
	}
}

// Extract walks every recording's content tree and returns one segment per
// subject-speaker utterance, sorted by absolute timestamp. Invalid segments
// are kept with their quality flags so callers can audit them.
func (e *Extractor) Extract(ctx context.Context, recordings []Recording) []Segment {
	var segments []Segment
	for _, rec := range recordings {
		e.walk(rec, rec.Contents, &segments)
	}

	slices.SortStableFunc(segments, func(a, b Segment) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	valid := 0
	for _, s := range segments {
		if s.Valid {
			valid++
		}
	}
	e.metrics.RecordSegments(ctx, valid, len(segments)-valid)

	e.logger.Debug("Segments extracted", logging.Fields{
		"recordings": len(recordings),
		"segments":   len(segments),
		"valid":      valid,
	})

	return segments
}

func (e *Extractor) walk(rec Recording, nodes []ContentNode, out *[]Segment) {
	for _, node := range nodes {
		if node.SpeakerIdentifier == e.config.SubjectSpeaker && strings.TrimSpace(node.Text) != "" {
			*out = append(*out, e.BuildSegment(rec, node))
		}
		if len(node.Children) > 0 {
			e.walk(rec, node.Children, out)
		}
	}
}

// BuildSegment derives timing and word statistics for node and applies the
// validity rules
func (e *Extractor) BuildSegment(rec Recording, node ContentNode) Segment {
	seg := Segment{
		RecordingID: rec.ID,
		Text:        node.Text,
		Timestamp:   rec.StartTime,
		WordCount:   lexical.WordCount(node.Text),
	}

	switch {
	case node.StartOffsetMs == nil || node.EndOffsetMs == nil:
		seg.QualityFlags = append(seg.QualityFlags, FlagMissingTiming)
	case !common.IsFinite(*node.StartOffsetMs) || !common.IsFinite(*node.EndOffsetMs):
		seg.QualityFlags = append(seg.QualityFlags, FlagInvalidTiming)
	default:
		seg.StartMs = *node.StartOffsetMs
		seg.EndMs = *node.EndOffsetMs
		seg.DurationMs = seg.EndMs - seg.StartMs
		seg.Timestamp = rec.StartTime.Add(time.Duration(seg.StartMs * float64(time.Millisecond)))
		if seg.DurationMs > 0 {
			seg.WordsPerMinute = float64(seg.WordCount) / (seg.DurationMs / 60000.0)
		}
		seg.QualityFlags = append(seg.QualityFlags, e.timingFlags(seg)...)
	}

	seg.QualityFlags = append(seg.QualityFlags, e.contentFlags(seg)...)
	seg.Valid = len(seg.QualityFlags) == 0
	return seg
}

func (e *Extractor) timingFlags(seg Segment) []QualityFlag {
	var flags []QualityFlag
	if seg.WordCount < e.config.MinWords {
		flags = append(flags, FlagTooFewWords)
	}
	if seg.DurationMs < e.config.MinDurationMs {
		flags = append(flags, FlagTooShortDuration)
	}
	if seg.WordsPerMinute > e.config.MaxWordsPerMinute || seg.WordsPerMinute < e.config.MinWordsPerMinute {
		flags = append(flags, FlagUnrealisticSpeechRate)
	}
	return flags
}

func (e *Extractor) contentFlags(seg Segment) []QualityFlag {
	var flags []QualityFlag
	// Segments without timing still get the word-count rule.
	if seg.HasFlag(FlagMissingTiming) || seg.HasFlag(FlagInvalidTiming) {
		if seg.WordCount < e.config.MinWords {
			flags = append(flags, FlagTooFewWords)
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(seg.Text)) < e.config.MinTextLength {
		flags = append(flags, FlagTooBriefContent)
	}
	if lexical.IsFillerOnly(seg.Text) {
		flags = append(flags, FlagMinimalSpeech)
	}
	return flags
}
