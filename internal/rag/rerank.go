package rag

import (
	"regexp"
	"strings"
)

const (
	numericBoost  = 0.15
	tabularBoost  = 0.12
	temporalBoost = 0.10
)

var temporalCues = regexp.MustCompile(`(?i)\b(quarter|q[1-4]|year|period|change|changed|increase[ds]?|decrease[ds]?|compared|(?:19|20)\d{2})\b`)

// rerankScore adds content boosts to a similarity score. Boosts are
// additive and the result never exceeds 1, so reranking reorders
// candidates without discarding them.
func rerankScore(similarity float64, text string) float64 {
	score := similarity
	if hasNumericContent(text) {
		score += numericBoost
	}
	if hasTabularContent(text) {
		score += tabularBoost
	}
	if temporalCues.MatchString(text) {
		score += temporalBoost
	}
	if score > 1 {
		score = 1
	}
	return score
}

// hasNumericContent reports whether a segment carries quantitative data
// (digits, percentages, currency).
func hasNumericContent(text string) bool {
	if strings.ContainsAny(text, "%$") {
		return true
	}
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func hasTabularContent(text string) bool {
	return strings.Contains(text, "|") || strings.Contains(strings.ToUpper(text), "TABLE")
}

var tocPatterns = []string{
	"table of contents",
	"contents\n",
	"page number",
	"...........",
	"copyright notice",
	"all rights reserved",
}

// isTableOfContents flags index-style segments: heading lists, dotted
// leaders, little sentence structure. Long segments that merely mention
// a pattern are kept.
func isTableOfContents(text string) bool {
	lower := strings.ToLower(text)

	matched := false
	for _, pattern := range tocPatterns {
		if strings.Contains(lower, pattern) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	return len(strings.Fields(text)) < 100
}
