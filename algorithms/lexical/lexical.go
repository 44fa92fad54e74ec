// Package lexical holds the text measures used on transcript segments:
// tokenization, vocabulary diversity and filler detection.
package lexical

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fillerOnly matches utterances made of nothing but a short filler or
// back-channel token, optionally followed by punctuation.
var fillerOnly = regexp.MustCompile(`(?i)^\s*(u+m+|u+h+|h+m+|m+h*m+|e+r+m*|a+h+|o+h+|yeah|yep|yup|yes|no|nope|ok(ay)?|right|sure|uh[- ]huh|mhm|mm[- ]hmm)\s*[.!?,…]*\s*$`)

// fillerToken matches a single disfluency token after punctuation is stripped
var fillerToken = regexp.MustCompile(`(?i)^(u+m+|u+h+|e+r+m*|h+m+|m+h*m+|a+h+)$`)

// Tokenize splits text on whitespace, dropping empty tokens
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// WordCount is len(Tokenize(text))
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// normalize case-folds a token and trims surrounding punctuation
func normalize(token string) string {
	return strings.ToLower(strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}

// TypeTokenRatio is unique case-folded words / total words; 0 for empty text
func TypeTokenRatio(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0.0
	}

	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		w := normalize(t)
		if w == "" {
			w = t
		}
		unique[w] = struct{}{}
	}

	return float64(len(unique)) / float64(len(tokens))
}

// MeanWordLength is the average rune length of tokens with punctuation trimmed
func MeanWordLength(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0.0
	}

	total := 0
	for _, t := range tokens {
		total += utf8.RuneCountInString(normalize(t))
	}

	return float64(total) / float64(len(tokens))
}

// VocabularyComplexity combines diversity and word length as TTR×10 + meanWordLength×0.5
func VocabularyComplexity(text string) float64 {
	return TypeTokenRatio(text)*10 + MeanWordLength(text)*0.5
}

// IsFillerOnly reports whether text is a bare filler such as "um", "hmm" or "yeah."
func IsFillerOnly(text string) bool {
	return fillerOnly.MatchString(text)
}

// CountFillers counts disfluency tokens (um, uh, er, hmm...) in text
func CountFillers(text string) int {
	count := 0
	for _, t := range Tokenize(text) {
		if fillerToken.MatchString(normalize(t)) {
			count++
		}
	}
	return count
}
