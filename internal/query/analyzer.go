package query

import (
	"regexp"
	"strings"
)

// Intent classifies what a question is asking for.
type Intent int

const (
	// Plain is a direct factual question answerable from one place.
	Plain Intent = iota
	// Comparative asks about a change or difference across periods or
	// entities; retrieval enforces source diversity for these.
	Comparative
)

func (i Intent) String() string {
	if i == Comparative {
		return "comparative"
	}
	return "plain"
}

var (
	comparativeWords   = regexp.MustCompile(`\b(compare|compared|comparison|versus|vs|between|difference|changed|change)\b`)
	periodToken        = regexp.MustCompile(`(?i)\b(q[1-4]|(?:19|20)\d{2}|(?:first|second|third|fourth)\s+quarter)\b`)
	whitespaceCollapse = regexp.MustCompile(`\s+`)
)

// Analyze classifies a question and extracts the distinct period-like
// tokens it mentions (quarter labels, years). Intent is Comparative when
// the text uses an explicit comparison word or names two or more distinct
// periods. Hints only bias diversity downstream; they never filter
// results.
func Analyze(question string) (Intent, []string) {
	hints := periodHints(question)

	if len(hints) >= 2 {
		return Comparative, hints
	}
	if comparativeWords.MatchString(strings.ToLower(question)) {
		return Comparative, hints
	}
	return Plain, hints
}

// periodHints returns the distinct period tokens in appearance order,
// normalized so "q1" and "Q1" count once.
func periodHints(question string) []string {
	matches := periodToken.FindAllString(question, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	hints := make([]string, 0, len(matches))
	for _, match := range matches {
		normalized := normalizePeriod(match)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		hints = append(hints, normalized)
	}
	return hints
}

func normalizePeriod(token string) string {
	token = whitespaceCollapse.ReplaceAllString(token, " ")
	if len(token) == 2 {
		// Quarter labels read better uppercase.
		return strings.ToUpper(token)
	}
	return strings.ToLower(token)
}
