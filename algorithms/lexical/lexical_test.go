package lexical

import (
	"math"
	"testing"
)

func TestWordCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"um", 1},
		{"I went  to\tthe\nstore", 5},
	}
	for _, tt := range tests {
		if got := WordCount(tt.text); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTypeTokenRatio(t *testing.T) {
	t.Parallel()

	if got := TypeTokenRatio("The cat saw the CAT."); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("TypeTokenRatio = %v, want 0.6", got)
	}
	if got := TypeTokenRatio(""); got != 0 {
		t.Errorf("TypeTokenRatio(empty) = %v, want 0", got)
	}
}

func TestMeanWordLengthAndComplexity(t *testing.T) {
	t.Parallel()

	text := "Dogs run fast."
	if got := MeanWordLength(text); math.Abs(got-11.0/3.0) > 1e-12 {
		t.Errorf("MeanWordLength = %v, want %v", got, 11.0/3.0)
	}
	want := 1.0*10 + (11.0/3.0)*0.5
	if got := VocabularyComplexity(text); math.Abs(got-want) > 1e-12 {
		t.Errorf("VocabularyComplexity = %v, want %v", got, want)
	}
}

func TestIsFillerOnly(t *testing.T) {
	t.Parallel()

	fillers := []string{"um", "Umm.", "yeah.", "hmm", " Mhm ", "okay!", "uh-huh"}
	for _, f := range fillers {
		if !IsFillerOnly(f) {
			t.Errorf("IsFillerOnly(%q) = false, want true", f)
		}
	}

	speech := []string{"yeah I think so", "umbrella", "hmm, let me check the calendar", ""}
	for _, s := range speech {
		if IsFillerOnly(s) {
			t.Errorf("IsFillerOnly(%q) = true, want false", s)
		}
	}
}

func TestCountFillers(t *testing.T) {
	t.Parallel()

	if got := CountFillers("So, um, I was, uh, thinking... Hmm. Umbrella!"); got != 3 {
		t.Errorf("CountFillers = %d, want 3", got)
	}
}
