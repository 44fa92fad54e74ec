// Package ingest decodes recording-provider exports into biomarker recordings.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/logging"
)

// ErrNoRecordings is returned when a payload decodes but holds no recordings
var ErrNoRecordings = errors.New("ingest: no recordings in payload")

// lifelog is one recording as the provider serialises it
type lifelog struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Contents  []contentNode `json:"contents"`
}

type contentNode struct {
	Type              string        `json:"type"`
	Content           string        `json:"content"`
	StartTime         *time.Time    `json:"startTime"`
	EndTime           *time.Time    `json:"endTime"`
	StartOffsetMs     *float64      `json:"startOffsetMs"`
	EndOffsetMs       *float64      `json:"endOffsetMs"`
	SpeakerName       string        `json:"speakerName"`
	SpeakerIdentifier string        `json:"speakerIdentifier"`
	Children          []contentNode `json:"children"`
}

// envelope covers {"data":{"lifelogs":[...]}} and {"lifelogs":[...]}
type envelope struct {
	Data *struct {
		Lifelogs []lifelog `json:"lifelogs"`
	} `json:"data"`
	Lifelogs []lifelog `json:"lifelogs"`
}

// Decoder turns provider JSON into recordings sorted by start time
type Decoder struct {
	logger logging.Logger
}

// NewDecoder creates a decoder logging through logger, or the global logger when nil
func NewDecoder(logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Decoder{logger: logger.WithFields(logging.Fields{"component": "ingest_decoder"})}
}

// DecodeFile reads and decodes filename
func (d *Decoder) DecodeFile(filename string) ([]biomarker.Recording, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Error(err, "Failed to read recordings file")
		return nil, fmt.Errorf("ingest: read %s: %w", filename, err)
	}

	recs, err := d.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, filename)
	}
	return recs, nil
}

// DecodeReader reads r to the end and decodes it
func (d *Decoder) DecodeReader(r io.Reader) ([]biomarker.Recording, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		d.logger.Error(err, "Failed to read recordings")
		return nil, fmt.Errorf("ingest: read: %w", err)
	}
	return d.DecodeBytes(data)
}

// DecodeBytes accepts an enveloped export or a bare array of recordings
func (d *Decoder) DecodeBytes(data []byte) ([]biomarker.Recording, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ingest: empty payload")
	}

	var logs []lifelog
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &logs); err != nil {
			return nil, fmt.Errorf("ingest: decode recording array: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("ingest: decode envelope: %w", err)
		}
		logs = env.Lifelogs
		if env.Data != nil {
			logs = append(logs, env.Data.Lifelogs...)
		}
	}

	if len(logs) == 0 {
		return nil, ErrNoRecordings
	}

	recs := make([]biomarker.Recording, 0, len(logs))
	for _, l := range logs {
		recs = append(recs, l.recording())
	}
	slices.SortStableFunc(recs, func(a, b biomarker.Recording) int {
		return a.StartTime.Compare(b.StartTime)
	})

	d.logger.Debug("Recordings decoded", logging.Fields{
		"recordings": len(recs),
		"bytes":      len(data),
	})

	return recs, nil
}

func (l lifelog) recording() biomarker.Recording {
	return biomarker.Recording{
		ID:        l.ID,
		Title:     l.Title,
		StartTime: l.StartTime,
		EndTime:   l.EndTime,
		Contents:  convertNodes(l.Contents, l.StartTime),
	}
}

func convertNodes(nodes []contentNode, start time.Time) []biomarker.ContentNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]biomarker.ContentNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, biomarker.ContentNode{
			Type:              n.Type,
			Text:              n.Content,
			SpeakerName:       n.SpeakerName,
			SpeakerIdentifier: n.SpeakerIdentifier,
			StartOffsetMs:     offset(n.StartOffsetMs, n.StartTime, start),
			EndOffsetMs:       offset(n.EndOffsetMs, n.EndTime, start),
			Children:          convertNodes(n.Children, start),
		})
	}
	return out
}

// offset prefers the explicit offset and falls back to the absolute
// timestamp relative to the recording start
func offset(explicit *float64, absolute *time.Time, start time.Time) *float64 {
	if explicit != nil {
		v := *explicit
		return &v
	}
	if absolute == nil || absolute.IsZero() || start.IsZero() {
		return nil
	}
	v := float64(absolute.Sub(start)) / float64(time.Millisecond)
	return &v
}
