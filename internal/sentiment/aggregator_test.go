package sentiment

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"stock-research-agent/internal/types"
)

// scriptedScorer returns preset scores in call order.
type scriptedScorer struct {
	scores []float64
	errs   []error
	calls  int
}

func (s *scriptedScorer) Score(_ context.Context, _ string) (float64, string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return 0, "", err
	}
	return s.scores[i], "scripted", nil
}

func TestAnalyzeEmptyInput(t *testing.T) {
	agg := NewAggregator(NewKeywordScorer(), DefaultThresholds())
	got := agg.Analyze(context.Background(), nil)

	if got.SampleCount != 0 {
		t.Errorf("Expected 0 samples, got %d", got.SampleCount)
	}
	if got.OverallSentiment != types.SentimentNeutral {
		t.Errorf("Expected NEUTRAL, got %s", got.OverallSentiment)
	}
	if got.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %f", got.Confidence)
	}
	if got.Err != "No texts provided for sentiment analysis" {
		t.Errorf("Expected error marker, got %q", got.Err)
	}
}

func TestAnalyzeSingleTextConfidence(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{0.8}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"one"})

	if got.Confidence != 0.7 {
		t.Errorf("Expected fixed 0.7 confidence for one sample, got %f", got.Confidence)
	}
	if got.OverallSentiment != types.SentimentPositive {
		t.Errorf("Expected POSITIVE, got %s", got.OverallSentiment)
	}
}

func TestAnalyzeAgreementConfidence(t *testing.T) {
	// Identical scores: zero stddev, confidence 1.
	scorer := &scriptedScorer{scores: []float64{0.5, 0.5, 0.5}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a", "b", "c"})

	if got.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0 for unanimous scores, got %f", got.Confidence)
	}
	if got.OverallScore != 0.5 {
		t.Errorf("Expected mean 0.5, got %f", got.OverallScore)
	}
}

func TestAnalyzeDisagreementLowersConfidence(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{0.9, -0.9}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a", "b"})

	// Population stddev = 0.9, so confidence = 0.1.
	if math.Abs(got.Confidence-0.1) > 1e-9 {
		t.Errorf("Expected confidence 0.10, got %f", got.Confidence)
	}
	if got.OverallSentiment != types.SentimentNeutral {
		t.Errorf("Expected NEUTRAL for symmetric scores, got %s", got.OverallSentiment)
	}
}

func TestAnalyzeThresholdBoundary(t *testing.T) {
	// Exactly at the threshold classifies neutral.
	scorer := &scriptedScorer{scores: []float64{0.1}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a"})
	if got.OverallSentiment != types.SentimentNeutral {
		t.Errorf("Expected NEUTRAL at threshold boundary, got %s", got.OverallSentiment)
	}
}

func TestAnalyzeNegativeClassification(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{-0.4, -0.2}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a", "b"})

	if got.OverallSentiment != types.SentimentNegative {
		t.Errorf("Expected NEGATIVE, got %s", got.OverallSentiment)
	}
	if got.OverallScore != -0.3 {
		t.Errorf("Expected mean -0.3, got %f", got.OverallScore)
	}
	if !strings.Contains(got.Summary, "overall sentiment is NEGATIVE") {
		t.Errorf("Unexpected summary: %q", got.Summary)
	}
}

func TestAnalyzeScorerErrorCountsNeutral(t *testing.T) {
	scorer := &scriptedScorer{
		scores: []float64{0.6, 0, 0.6},
		errs:   []error{nil, errors.New("boom"), nil},
	}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a", "b", "c"})

	if got.SampleCount != 3 {
		t.Errorf("Expected all 3 texts to produce samples, got %d", got.SampleCount)
	}
	if got.Samples[1].Score != 0 {
		t.Errorf("Expected failed sample to score 0, got %f", got.Samples[1].Score)
	}
	if got.OverallScore != 0.4 {
		t.Errorf("Expected mean 0.4, got %f", got.OverallScore)
	}
}

func TestAnalyzePreservesOrder(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{0.1, 0.2, 0.3}}
	agg := NewAggregator(scorer, DefaultThresholds())
	got := agg.Analyze(context.Background(), []string{"a", "b", "c"})

	want := []float64{0.1, 0.2, 0.3}
	for i, s := range got.Samples {
		if s.Score != want[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, want[i], s.Score)
		}
	}
}

func TestWithFallbackPerItem(t *testing.T) {
	primary := &scriptedScorer{
		scores: []float64{0.9, 0},
		errs:   []error{nil, errors.New("rate limited")},
	}
	scorer := WithFallback(primary, NewKeywordScorer())

	score, _, err := scorer.Score(context.Background(), "irrelevant")
	if err != nil || score != 0.9 {
		t.Errorf("Expected primary score 0.9, got %f (%v)", score, err)
	}

	// Second call fails on the primary; the keyword fallback takes over.
	score, interp, err := scorer.Score(context.Background(), "stock posts strong growth")
	if err != nil {
		t.Fatalf("Expected fallback to absorb the error, got %v", err)
	}
	if score <= 0 {
		t.Errorf("Expected positive fallback score, got %f", score)
	}
	if !strings.Contains(interp, "Positive sentiment") {
		t.Errorf("Unexpected interpretation: %q", interp)
	}
}
