package biomarker

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
)

var epoch = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func ms(v float64) *float64 { return &v }

func userNode(text string, start, end float64) ContentNode {
	return ContentNode{
		Type:              "blockquote",
		Text:              text,
		SpeakerIdentifier: "user",
		StartOffsetMs:     ms(start),
		EndOffsetMs:       ms(end),
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(config.Default().Validation, WithLogger(logging.NewNoOpLogger()))
}

func TestBuildSegment_WordCountFlip(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	rec := Recording{ID: "r1", StartTime: epoch}

	two := e.BuildSegment(rec, userNode("hello there", 0, 1000))
	if two.Valid {
		t.Fatalf("two-word segment should be invalid: %+v", two)
	}
	if !slices.Equal(two.QualityFlags, []QualityFlag{FlagTooFewWords}) {
		t.Errorf("flags = %v, want [too_few_words]", two.QualityFlags)
	}

	three := e.BuildSegment(rec, userNode("hello there friend", 0, 1000))
	if !three.Valid {
		t.Fatalf("three-word segment should be valid, flags %v", three.QualityFlags)
	}
	if three.WordCount != 3 || math.Abs(three.WordsPerMinute-180) > 1e-9 {
		t.Errorf("WordCount = %d, WPM = %v; want 3, 180", three.WordCount, three.WordsPerMinute)
	}
	if three.DurationMs != 1000 {
		t.Errorf("DurationMs = %v, want 1000", three.DurationMs)
	}
}

func TestBuildSegment_Filler(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)
	seg := e.BuildSegment(Recording{ID: "r1", StartTime: epoch}, userNode("um", 0, 300))

	if seg.Valid {
		t.Fatal("filler segment should be invalid")
	}
	for _, f := range []QualityFlag{FlagTooFewWords, FlagTooShortDuration, FlagTooBriefContent, FlagMinimalSpeech} {
		if !seg.HasFlag(f) {
			t.Errorf("missing flag %s in %v", f, seg.QualityFlags)
		}
	}
}

func TestBuildSegment_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		node  ContentNode
		flags []QualityFlag
	}{
		{
			name:  "valid",
			node:  userNode("I think we should ship it today", 0, 2400),
			flags: nil,
		},
		{
			name:  "too fast",
			node:  userNode("one two three four five six seven eight nine ten", 0, 1000),
			flags: []QualityFlag{FlagUnrealisticSpeechRate},
		},
		{
			name:  "too slow",
			node:  userNode("well I suppose so", 0, 20000),
			flags: []QualityFlag{FlagUnrealisticSpeechRate},
		},
		{
			name:  "zero duration",
			node:  userNode("a b c d e f g h", 500, 500),
			flags: []QualityFlag{FlagTooShortDuration, FlagUnrealisticSpeechRate},
		},
		{
			name: "missing end offset",
			node: ContentNode{
				Text:              "this one has no end offset",
				SpeakerIdentifier: "user",
				StartOffsetMs:     ms(0),
			},
			flags: []QualityFlag{FlagMissingTiming},
		},
		{
			name:  "non-finite offset",
			node:  userNode("this one has a broken offset", 0, math.Inf(1)),
			flags: []QualityFlag{FlagInvalidTiming},
		},
		{
			name: "missing timing and too few words",
			node: ContentNode{
				Text:              "absolutely wonderful",
				SpeakerIdentifier: "user",
			},
			flags: []QualityFlag{FlagMissingTiming, FlagTooFewWords},
		},
	}

	e := newTestExtractor(t)
	rec := Recording{ID: "r1", StartTime: epoch}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := e.BuildSegment(rec, tt.node)
			if !slices.Equal(seg.QualityFlags, tt.flags) {
				t.Errorf("flags = %v, want %v", seg.QualityFlags, tt.flags)
			}
			if seg.Valid != (len(tt.flags) == 0) {
				t.Errorf("Valid = %v with flags %v", seg.Valid, seg.QualityFlags)
			}
			if math.IsNaN(seg.WordsPerMinute) || math.IsInf(seg.WordsPerMinute, 0) {
				t.Errorf("WordsPerMinute is not finite: %v", seg.WordsPerMinute)
			}
		})
	}
}

func TestExtract_SpeakerFilterAndOrder(t *testing.T) {
	t.Parallel()

	later := Recording{
		ID:        "later",
		StartTime: epoch.Add(2 * time.Hour),
		Contents: []ContentNode{
			userNode("this happened in the afternoon", 0, 2000),
		},
	}
	earlier := Recording{
		ID:        "earlier",
		StartTime: epoch,
		Contents: []ContentNode{
			{
				Type: "heading2",
				Text: "Standup",
				Children: []ContentNode{
					userNode("second thing I said this morning", 60000, 62000),
					{
						Text:              "someone else talking for a while",
						SpeakerIdentifier: "",
						SpeakerName:       "Alex",
						StartOffsetMs:     ms(5000),
						EndOffsetMs:       ms(7000),
					},
					userNode("first thing I said this morning", 1000, 3000),
					userNode("   ", 4000, 5000),
				},
			},
		},
	}

	segs := newTestExtractor(t).Extract(context.Background(), []Recording{later, earlier})

	want := []string{
		"first thing I said this morning",
		"second thing I said this morning",
		"this happened in the afternoon",
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(segs), len(want), segs)
	}
	for i, s := range segs {
		if s.Text != want[i] {
			t.Errorf("segment %d = %q, want %q", i, s.Text, want[i])
		}
		if i > 0 && segs[i-1].Timestamp.After(s.Timestamp) {
			t.Errorf("segments not sorted at %d", i)
		}
	}
	if got := segs[0].Timestamp; !got.Equal(epoch.Add(time.Second)) {
		t.Errorf("Timestamp = %v, want recording start + 1s", got)
	}
}
