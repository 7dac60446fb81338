package pipeline

import (
	"context"
	"errors"
	"testing"

	"stock-research-agent/internal/recorder"
	"stock-research-agent/internal/sentiment"
	"stock-research-agent/internal/ta"
	"stock-research-agent/internal/types"
)

type stubHistory struct {
	series []types.PricePoint
	err    error
}

func (s *stubHistory) History(_ context.Context, _, _ string) ([]types.PricePoint, error) {
	return s.series, s.err
}

type stubNews struct {
	headlines []types.Headline
	err       error
}

func (s *stubNews) News(_ context.Context, _ string, _ int) ([]types.Headline, error) {
	return s.headlines, s.err
}

type captureRecorder struct {
	recorder.NoopRecorder
	last *recorder.Record
}

func (c *captureRecorder) RecordAnalysis(r *recorder.Record) error {
	c.last = r
	return nil
}

func fallingSeries(n int) []types.PricePoint {
	series := make([]types.PricePoint, n)
	for i := range series {
		series[i] = types.PricePoint{Date: "2025-01-01", Close: 200 - float64(i)}
	}
	return series
}

func risingSeries(n int) []types.PricePoint {
	series := make([]types.PricePoint, n)
	for i := range series {
		series[i] = types.PricePoint{Date: "2025-01-01", Close: 100 + float64(i)}
	}
	return series
}

func TestAnalyzeWithoutSentiment(t *testing.T) {
	rec := &captureRecorder{}
	a := New(&stubHistory{series: fallingSeries(60)}, nil, ta.NewEngine(), nil, 5, rec)

	result, err := a.Analyze(context.Background(), "aapl", "6mo")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Symbol != "AAPL" {
		t.Errorf("Expected symbol normalized to AAPL, got %s", result.Symbol)
	}
	if result.Decision.Action != types.ActionBuy {
		t.Errorf("Expected BUY for a steadily falling series, got %s", result.Decision.Action)
	}
	if result.Sentiment != nil {
		t.Error("Expected nil sentiment when no aggregator is configured")
	}
	if result.HistoryLength != 60 {
		t.Errorf("Expected history length 60, got %d", result.HistoryLength)
	}
	if result.CurrentPrice != 141.0 {
		t.Errorf("Expected current price 141.0, got %f", result.CurrentPrice)
	}

	if rec.last == nil {
		t.Fatal("Expected analysis to be recorded")
	}
	if rec.last.Symbol != "AAPL" || rec.last.Action != types.ActionBuy {
		t.Errorf("Unexpected record: %+v", rec.last)
	}
}

func TestAnalyzeHistoryError(t *testing.T) {
	wantErr := errors.New("upstream down")
	a := New(&stubHistory{err: wantErr}, nil, ta.NewEngine(), nil, 5, nil)

	_, err := a.Analyze(context.Background(), "AAPL", "1y")
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected history error to propagate, got %v", err)
	}
}

func TestAnalyzeFusesHeadlineSentiment(t *testing.T) {
	agg := sentiment.NewAggregator(sentiment.NewKeywordScorer(), sentiment.DefaultThresholds())
	news := &stubNews{headlines: []types.Headline{
		{Title: "Shares surge on strong growth"},
		{Title: "Analysts upgrade after profit beat"},
	}}
	a := New(&stubHistory{series: fallingSeries(60)}, news, ta.NewEngine(), agg, 5, nil)

	result, err := a.Analyze(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Sentiment == nil {
		t.Fatal("Expected sentiment aggregate in the result")
	}
	if result.Sentiment.OverallSentiment != types.SentimentPositive {
		t.Errorf("Expected POSITIVE headline sentiment, got %s", result.Sentiment.OverallSentiment)
	}
}

func TestAnalyzeNewsFailureDegrades(t *testing.T) {
	agg := sentiment.NewAggregator(sentiment.NewKeywordScorer(), sentiment.DefaultThresholds())
	news := &stubNews{err: errors.New("feed unavailable")}
	a := New(&stubHistory{series: risingSeries(60)}, news, ta.NewEngine(), agg, 5, nil)

	result, err := a.Analyze(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("Expected analysis to proceed without news, got %v", err)
	}
	if result.Sentiment != nil {
		t.Error("Expected nil sentiment when headlines are unavailable")
	}
}

func TestAnalyzeSentimentUnconfigured(t *testing.T) {
	a := New(&stubHistory{}, nil, ta.NewEngine(), nil, 5, nil)
	if _, ok := a.AnalyzeSentiment(context.Background(), []string{"text"}); ok {
		t.Error("Expected false when no aggregator is configured")
	}
	if a.SentimentEnabled() {
		t.Error("Expected SentimentEnabled to be false")
	}
}

func TestAnalyzeSentimentConfigured(t *testing.T) {
	agg := sentiment.NewAggregator(sentiment.NewKeywordScorer(), sentiment.DefaultThresholds())
	a := New(&stubHistory{}, nil, ta.NewEngine(), agg, 5, nil)

	got, ok := a.AnalyzeSentiment(context.Background(), []string{"stocks rally on growth"})
	if !ok {
		t.Fatal("Expected sentiment analysis to run")
	}
	if got.SampleCount != 1 {
		t.Errorf("Expected 1 sample, got %d", got.SampleCount)
	}
}
