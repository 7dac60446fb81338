package sentiment

import (
	"context"
	"fmt"
	"math"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// Thresholds classify an average score into POSITIVE/NEGATIVE/NEUTRAL.
// Defaults use the 0.1 band; earlier revisions of the rules used 0.2, which
// over-classified mildly worded headlines as neutral.
type Thresholds struct {
	Positive float64
	Negative float64
}

// DefaultThresholds returns the 0.1/-0.1 classification band.
func DefaultThresholds() Thresholds {
	return Thresholds{Positive: 0.1, Negative: -0.1}
}

// Aggregator reduces per-text sentiment scores into one aggregate.
type Aggregator struct {
	scorer     Scorer
	thresholds Thresholds
}

// NewAggregator creates an aggregator over the given scorer.
func NewAggregator(scorer Scorer, thresholds Thresholds) *Aggregator {
	return &Aggregator{scorer: scorer, thresholds: thresholds}
}

// Analyze scores every text in input order and reduces the scores into a
// single aggregate. Never fails: an empty input yields a neutral
// zero-confidence aggregate with the error marker set, and per-text scorer
// failures are absorbed by the scorer's own fallback.
func (a *Aggregator) Analyze(ctx context.Context, texts []string) types.SentimentAggregate {
	ctx, span := trace.StartSpan(ctx, "aggregate-sentiment")
	defer span.End()

	if len(texts) == 0 {
		return types.SentimentAggregate{
			SampleCount:      0,
			OverallSentiment: types.SentimentNeutral,
			OverallScore:     0,
			Confidence:       0,
			Err:              "No texts provided for sentiment analysis",
		}
	}

	samples := make([]types.SentimentSample, 0, len(texts))
	for _, text := range texts {
		score, interpretation, err := a.scorer.Score(ctx, text)
		if err != nil {
			// Scorers are expected to degrade internally; a hard error
			// here still must not sink the batch.
			logger.Warn(ctx, "Scorer failed for text, counting as neutral", "error", err)
			score, interpretation = 0, "Scoring unavailable"
		}
		samples = append(samples, types.SentimentSample{
			Score:          round(score, 3),
			Interpretation: interpretation,
		})
	}

	// Fixed input-order summation keeps the mean reproducible.
	total := 0.0
	for _, s := range samples {
		total += s.Score
	}
	avg := total / float64(len(samples))
	label := a.classify(avg)

	agg := types.SentimentAggregate{
		SampleCount:      len(samples),
		OverallSentiment: label,
		OverallScore:     round(avg, 3),
		Confidence:       round(confidence(samples), 2),
		Samples:          samples,
	}
	agg.Summary = fmt.Sprintf("Analyzed %d text(s) with average sentiment score of %.2f, overall sentiment is %s",
		len(samples), avg, label)

	logger.Info(ctx, "Sentiment aggregated",
		"samples", agg.SampleCount, "score", agg.OverallScore, "sentiment", agg.OverallSentiment)
	return agg
}

func (a *Aggregator) classify(avg float64) string {
	switch {
	case avg > a.thresholds.Positive:
		return types.SentimentPositive
	case avg < a.thresholds.Negative:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// confidence measures agreement among samples: one sample is a fixed 0.7
// (agreement cannot be assessed), more samples use 1 minus the population
// standard deviation, floored at 0.
func confidence(samples []types.SentimentSample) float64 {
	switch len(samples) {
	case 0:
		return 0
	case 1:
		return 0.7
	}

	avg := 0.0
	for _, s := range samples {
		avg += s.Score
	}
	avg /= float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := s.Score - avg
		variance += d * d
	}
	variance /= float64(len(samples))

	return 1 - math.Min(math.Sqrt(variance), 1)
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
