package sentiment

import (
	"context"
	"fmt"
	"strings"
)

// KeywordScorer is a deterministic lexicon-based scorer used when the LLM is
// unavailable or returns garbage. Magnitude scales with the keyword-count
// margin and is clamped to +/-0.9.
type KeywordScorer struct{}

// NewKeywordScorer returns a keyword-lexicon scorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

var positiveWords = []string{
	"gain", "rise", "rally", "surge", "bull", "bullish", "positive", "growth",
	"strong", "beat", "outperform", "soar", "jump", "climb", "profit", "success",
	"high", "up", "boost", "upgrade", "optimistic",
}

var negativeWords = []string{
	"loss", "fall", "crash", "bear", "bearish", "negative", "decline", "weak",
	"miss", "underperform", "plummet", "drop", "down", "disappoint", "concern",
	"low", "downgrade", "pessimistic", "struggle", "fail",
}

// Score implements Scorer. It never fails.
func (s *KeywordScorer) Score(_ context.Context, text string) (float64, string, error) {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	net := pos - neg
	switch {
	case net > 0:
		score := 0.5 + float64(net-1)*0.15
		if score > 0.9 {
			score = 0.9
		}
		return score, fmt.Sprintf("Positive sentiment detected (%d positive keywords)", pos), nil
	case net < 0:
		score := -0.5 + float64(net+1)*0.15
		if score < -0.9 {
			score = -0.9
		}
		return score, fmt.Sprintf("Negative sentiment detected (%d negative keywords)", neg), nil
	default:
		return 0, "Neutral sentiment", nil
	}
}
