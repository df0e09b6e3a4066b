package pricing

import (
	"regexp"
	"strings"
)

// fuzzyThreshold is the minimum MatchScore accepted by the fuzzy cascade steps.
const fuzzyThreshold = 0.4

var nonWordPattern = regexp.MustCompile(`[^a-z0-9\s]`)

var matchStopwords = map[string]struct{}{
	"and":         {},
	"for":         {},
	"the":         {},
	"products":    {},
	"other":       {},
	"supplies":    {},
	"accessories": {},
}

// normalizeLabel lowercases s and drops every rune outside [a-z0-9] and
// whitespace. Accented letters are dropped, not folded.
func normalizeLabel(s string) string {
	return strings.TrimSpace(nonWordPattern.ReplaceAllString(strings.ToLower(s), ""))
}

// MatchScore measures how well a rule label covers a category path. Each
// significant rule token scores 1 for an exact path token and 0.8 for a partial
// one; the result is the mean over rule tokens, in [0, 1].
func MatchScore(ruleLabel, itemPath string) float64 {
	ruleTokens := make([]string, 0, 4)
	for _, tok := range strings.Fields(normalizeLabel(ruleLabel)) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := matchStopwords[tok]; stop {
			continue
		}
		ruleTokens = append(ruleTokens, tok)
	}
	if len(ruleTokens) == 0 {
		return 0
	}

	pathTokens := strings.Fields(normalizeLabel(itemPath))

	var sum float64
	for _, tok := range ruleTokens {
		sum += tokenScore(tok, pathTokens)
	}
	return sum / float64(len(ruleTokens))
}

func tokenScore(tok string, pathTokens []string) float64 {
	for _, pt := range pathTokens {
		if pt == tok {
			return 1
		}
	}
	for _, pt := range pathTokens {
		if strings.Contains(pt, tok) || strings.Contains(tok, pt) {
			return 0.8
		}
	}
	return 0
}

// bestMatch returns the label with the highest score against path. The first
// label wins ties; ok is false when no label reaches the fuzzy threshold.
func bestMatch(labels []string, path string) (string, float64, bool) {
	var (
		best      string
		bestScore float64
	)
	for _, label := range labels {
		if score := MatchScore(label, path); score > bestScore {
			best, bestScore = label, score
		}
	}
	if bestScore < fuzzyThreshold {
		return "", bestScore, false
	}
	return best, bestScore, true
}
