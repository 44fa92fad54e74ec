package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-vitals/config"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("Validate(Default()): %v", err)
	}
}

func TestLoadFromReader_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	const doc = `
validation:
  min_words: 4
aggregation:
  timezone: UTC
  norms:
    speech_rate:
      mean: 160
      std_dev: 25
baseline:
  max_alpha: 0.2
logging:
  level: debug
`
	cfg, err := config.LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Validation.MinWords != 4 {
		t.Errorf("MinWords = %d, want 4", cfg.Validation.MinWords)
	}
	if cfg.Validation.MinDurationMs != 500 {
		t.Errorf("MinDurationMs = %v, want default 500", cfg.Validation.MinDurationMs)
	}
	if cfg.Aggregation.Norms.SpeechRate.Mean != 160 || cfg.Aggregation.Norms.PauseDuration.Mean != 1.2 {
		t.Errorf("norms = %+v", cfg.Aggregation.Norms)
	}
	if cfg.Baseline.MaxAlpha != 0.2 || cfg.Baseline.AlphaDivisor != 100 {
		t.Errorf("baseline = %+v", cfg.Baseline)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader(empty): %v", err)
	}
	if cfg.Validation.SubjectSpeaker != "user" {
		t.Errorf("SubjectSpeaker = %q, want user", cfg.Validation.SubjectSpeaker)
	}
}

func TestLoadFromReader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantSub string
	}{
		{"unknown field", "validation:\n  min_wordz: 3\n", "min_wordz"},
		{"bad confidence", "aggregation:\n  confidence_level: 1.5\n", "confidence_level"},
		{"bad timezone", "aggregation:\n  timezone: Mars/Olympus\n", "timezone"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad wpm bounds", "validation:\n  min_words_per_minute: 500\n", "words-per-minute"},
		{"bad hours", "baseline:\n  default_optimal_hours: [25]\n", "default hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vitals.yaml")
	if err := os.WriteFile(path, []byte("aggregation:\n  max_pause_ms: 20000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Aggregation.MaxPauseMs != 20000 {
		t.Errorf("MaxPauseMs = %v, want 20000", cfg.Aggregation.MaxPauseMs)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) returned nil error")
	}
}
