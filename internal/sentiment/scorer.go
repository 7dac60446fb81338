package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
)

// Scorer scores one text for sentiment. Score is in [-1, 1].
type Scorer interface {
	Score(ctx context.Context, text string) (score float64, interpretation string, err error)
}

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqScorer scores texts with an LLM over the Groq chat-completions API.
type GroqScorer struct {
	client *api.Client
	apiKey string
	model  string
}

// NewGroqScorer creates an LLM-backed scorer. The key is captured once at
// construction; callers decide availability up front instead of probing the
// environment per request.
func NewGroqScorer(apiKey, model string) *GroqScorer {
	return &GroqScorer{
		client: api.NewClient(api.WithTimeout(20 * time.Second)),
		apiKey: apiKey,
		model:  model,
	}
}

const scoringPrompt = `Analyze the sentiment of the following financial news text.
Respond in JSON format with sentiment_score (float from -1 to 1) and interpretation (brief explanation).

IMPORTANT SCORING GUIDELINES:
- Use the FULL range from -1 to 1. Don't be overly conservative.
- Scores between -0.1 and 0.1 should ONLY be for truly neutral/mixed content
- Clearly positive news should be 0.3 to 0.8
- Clearly negative news should be -0.3 to -0.8
- Reserve -0.9 to -1.0 for extremely negative news (crashes, scandals)
- Reserve 0.9 to 1.0 for extremely positive news (major breakthroughs)

Text: %s

Respond only with valid JSON in this format:
{
    "sentiment_score": <float>,
    "interpretation": "<brief explanation>"
}`

// Score implements Scorer.
func (s *GroqScorer) Score(ctx context.Context, text string) (float64, string, error) {
	ctx, span := trace.StartSpan(ctx, "llm-sentiment-score")
	defer span.End()

	if s.apiKey == "" {
		return 0, "", errors.New("groq API key missing")
	}

	body := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(scoringPrompt, text)},
		},
		"temperature": 0.3,
		"max_tokens":  150,
	}

	resp, err := s.client.POST(ctx, groqEndpoint, body, map[string]string{
		"Authorization": "Bearer " + s.apiKey,
	})
	if err != nil {
		return 0, "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, "", err
	}
	if len(r.Choices) == 0 {
		return 0, "", errors.New("no choices in completion response")
	}

	content := strings.TrimSpace(r.Choices[0].Message.Content)

	var parsed struct {
		Score          float64 `json:"sentiment_score"`
		Interpretation string  `json:"interpretation"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return 0, "", fmt.Errorf("invalid JSON in completion: %w", err)
	}

	score := clamp(parsed.Score, -1, 1)
	interpretation := parsed.Interpretation
	if interpretation == "" {
		interpretation = "Unable to interpret"
	}
	return score, interpretation, nil
}

// fallbackScorer tries the primary scorer per item and falls back on error,
// so a flaky LLM never fails a whole batch.
type fallbackScorer struct {
	primary  Scorer
	fallback Scorer
}

// WithFallback composes two scorers. A nil primary always uses the fallback.
func WithFallback(primary, fallback Scorer) Scorer {
	return &fallbackScorer{primary: primary, fallback: fallback}
}

func (s *fallbackScorer) Score(ctx context.Context, text string) (float64, string, error) {
	if s.primary != nil {
		score, interpretation, err := s.primary.Score(ctx, text)
		if err == nil {
			return score, interpretation, nil
		}
		logger.Warn(ctx, "Primary scorer failed, using keyword fallback", "error", err)
	}
	return s.fallback.Score(ctx, text)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
