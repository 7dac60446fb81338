package pipeline

import (
	"context"
	"math"
	"strings"
	"time"

	"stock-research-agent/internal/decision"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/marketdata"
	"stock-research-agent/internal/recorder"
	"stock-research-agent/internal/sentiment"
	"stock-research-agent/internal/ta"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// Analyzer sequences acquisition, indicators, sentiment, and decision into
// one analysis. It owns no business rules of its own.
type Analyzer struct {
	history      marketdata.HistoryProvider
	news         marketdata.NewsProvider
	indicators   *ta.Engine
	aggregator   *sentiment.Aggregator // nil disables sentiment fusion
	maxHeadlines int
	rec          recorder.Recorder
}

// New creates an analyzer. aggregator may be nil when sentiment analysis is
// disabled or unconfigured; decisions then run on indicators alone.
func New(history marketdata.HistoryProvider, news marketdata.NewsProvider, indicators *ta.Engine,
	aggregator *sentiment.Aggregator, maxHeadlines int, rec recorder.Recorder) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if maxHeadlines <= 0 {
		maxHeadlines = 5
	}
	return &Analyzer{
		history:      history,
		news:         news,
		indicators:   indicators,
		aggregator:   aggregator,
		maxHeadlines: maxHeadlines,
		rec:          rec,
	}
}

// SentimentEnabled reports whether the analyzer fuses news sentiment.
func (a *Analyzer) SentimentEnabled() bool {
	return a.aggregator != nil
}

// Analyze runs the full pipeline for one symbol/period pair.
func (a *Analyzer) Analyze(ctx context.Context, symbol, period string) (types.AnalysisResult, error) {
	ctx, span := trace.StartSpan(ctx, "analyze-stock")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	series, err := a.history.History(ctx, symbol, period)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	snap, err := a.indicators.Compute(series)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	agg := a.fetchSentiment(ctx, symbol)

	dec, err := decision.Decide(decision.FromSnapshot(snap), agg)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	logger.Decision(ctx, symbol, dec.Action, dec.Confidence, dec.Reason)

	currentPrice := math.Round(series[len(series)-1].Close*100) / 100
	result := types.AnalysisResult{
		Symbol:        symbol,
		CurrentPrice:  currentPrice,
		Indicators:    snap,
		Decision:      dec,
		Sentiment:     agg,
		HistoryLength: len(series),
	}

	if err := a.rec.RecordAnalysis(&recorder.Record{
		Time:       time.Now().UTC(),
		Symbol:     symbol,
		Period:     period,
		Price:      currentPrice,
		RSI:        snap.RSI,
		MA20:       snap.MA20,
		MACD:       snap.MACD,
		Action:     dec.Action,
		Confidence: dec.Confidence,
	}); err != nil {
		logger.Warn(ctx, "Failed to record analysis", "symbol", symbol, "error", err)
	}

	return result, nil
}

// AnalyzeSentiment scores an arbitrary batch of texts without touching price
// data. Returns false when no aggregator is configured.
func (a *Analyzer) AnalyzeSentiment(ctx context.Context, texts []string) (types.SentimentAggregate, bool) {
	if a.aggregator == nil {
		return types.SentimentAggregate{}, false
	}
	return a.aggregator.Analyze(ctx, texts), true
}

// News fetches recent headlines for a symbol.
func (a *Analyzer) News(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	if a.news == nil {
		return []types.Headline{}, nil
	}
	return a.news.News(ctx, symbol, limit)
}

// fetchSentiment gathers headlines and reduces them to an aggregate. Any
// failure or absence of data yields nil so the decision runs unfused.
func (a *Analyzer) fetchSentiment(ctx context.Context, symbol string) *types.SentimentAggregate {
	if a.aggregator == nil || a.news == nil {
		return nil
	}

	headlines, err := a.news.News(ctx, symbol, a.maxHeadlines)
	if err != nil || len(headlines) == 0 {
		logger.Info(ctx, "No headlines available, deciding on indicators only", "symbol", symbol)
		return nil
	}

	texts := make([]string, len(headlines))
	for i, h := range headlines {
		texts[i] = h.Title
	}

	agg := a.aggregator.Analyze(ctx, texts)
	if agg.Err != "" {
		return nil
	}
	return &agg
}
