package domain

import "strings"

// DefaultFuzzyThreshold is the minimum Jaccard score for a fuzzy title match.
const DefaultFuzzyThreshold = 0.5

// stopWords are dropped before comparing titles.
var stopWords = map[string]struct{}{
	"to":  {},
	"a":   {},
	"the": {},
	"for": {},
	"and": {},
	"go":  {},
}

// TitleTokens splits text into lowercase alphanumeric tokens, minus stop words.
func TitleTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// NormaliseTitle is the comparison key for exact title matches.
func NormaliseTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// MatchTitleExact returns the first task whose normalised title equals title's.
func MatchTitleExact(title string, tasks []Task) *Task {
	key := NormaliseTitle(title)
	for i := range tasks {
		if NormaliseTitle(tasks[i].Title) == key {
			t := tasks[i]
			return &t
		}
	}
	return nil
}

// MatchTitleFuzzy scans tasks in order and returns the best Jaccard match
// with its score. Ties keep the first task seen. It returns nil when the
// query has no tokens, tasks is empty, or the best score is below threshold.
func MatchTitleFuzzy(title string, tasks []Task, threshold float64) (*Task, float64) {
	target := TitleTokens(title)
	if len(target) == 0 {
		return nil, 0
	}

	best := -1
	bestScore := 0.0
	for i := range tasks {
		score := Jaccard(target, TitleTokens(tasks[i].Title))
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < threshold {
		return nil, bestScore
	}
	t := tasks[best]
	return &t, bestScore
}
