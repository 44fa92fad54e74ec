package biomarker

import (
	"time"
)

// Recording is one continuous capture from the recording-data provider
type Recording struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Contents  []ContentNode `json:"contents"`
}

// ContentNode is a node of a recording's transcript tree. Offsets are
// milliseconds relative to the recording start; nil means the provider did
// not supply one.
type ContentNode struct {
	Type              string        `json:"type,omitempty"`
	Text              string        `json:"content"`
	SpeakerName       string        `json:"speaker_name,omitempty"`
	SpeakerIdentifier string        `json:"speaker_identifier,omitempty"` // "user" for the wearer
	StartOffsetMs     *float64      `json:"start_offset_ms,omitempty"`
	EndOffsetMs       *float64      `json:"end_offset_ms,omitempty"`
	Children          []ContentNode `json:"children,omitempty"`
}

// QualityFlag names a validity rule a segment failed
type QualityFlag string

const (
	FlagTooFewWords           QualityFlag = "too_few_words"
	FlagTooShortDuration      QualityFlag = "too_short_duration"
	FlagUnrealisticSpeechRate QualityFlag = "unrealistic_speech_rate"
	FlagTooBriefContent       QualityFlag = "too_brief_content"
	FlagMinimalSpeech         QualityFlag = "minimal_speech"
	FlagMissingTiming         QualityFlag = "missing_timing"
	FlagInvalidTiming         QualityFlag = "invalid_timing"
)

// Segment is one utterance attributed to the subject speaker.
// Segments are built once by the Extractor and not modified afterwards.
type Segment struct {
	RecordingID    string        `json:"recording_id"`
	Text           string        `json:"text"`
	StartMs        float64       `json:"start_ms"` // offset within the recording
	EndMs          float64       `json:"end_ms"`
	Timestamp      time.Time     `json:"timestamp"` // recording start + StartMs
	DurationMs     float64       `json:"duration_ms"`
	WordCount      int           `json:"word_count"`
	WordsPerMinute float64       `json:"words_per_minute"`
	Valid          bool          `json:"valid"`
	QualityFlags   []QualityFlag `json:"quality_flags,omitempty"`
}

// HasFlag reports whether the segment carries flag
func (s Segment) HasFlag(flag QualityFlag) bool {
	for _, f := range s.QualityFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// ValidSegments filters segments down to the valid ones, preserving order
func ValidSegments(segments []Segment) []Segment {
	valid := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Valid {
			valid = append(valid, s)
		}
	}
	return valid
}
