package main

import (
	"context"
	"fmt"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/marketdata"
	"stock-research-agent/internal/pipeline"
	"stock-research-agent/internal/recorder"
	"stock-research-agent/internal/scheduler"
	"stock-research-agent/internal/sentiment"
	"stock-research-agent/internal/server"
	"stock-research-agent/internal/store"
	"stock-research-agent/internal/ta"
)

// app holds everything main needs to run and tear down.
type app struct {
	Server    *server.Server
	Scheduler *scheduler.Scheduler
	rec       recorder.Recorder
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		logger.ErrorWithErr(context.Background(), "recorder close failed", err)
	}
}

func bootstrap(ctx context.Context, cfg *store.Config) (*app, error) {
	rec, err := buildRecorder(cfg)
	if err != nil {
		return nil, err
	}

	engine := &ta.Engine{
		RSIPeriod: cfg.Indicators.RSIPeriod,
		MAPeriod:  cfg.Indicators.MAPeriod,
		MACDFast:  cfg.Indicators.MACDFast,
		MACDSlow:  cfg.Indicators.MACDSlow,
	}

	aggregator := buildAggregator(ctx, cfg)
	analyzer := pipeline.New(
		marketdata.NewYahooProvider(),
		marketdata.NewYahooNews(),
		engine,
		aggregator,
		cfg.Sentiment.MaxHeadlines,
		rec,
	)

	sched := scheduler.New(ctx, analyzer, cfg.Watchlist.Symbols, cfg.Watchlist.Period)
	if len(cfg.Watchlist.Symbols) > 0 {
		if err := sched.Register(cfg.Watchlist.Cron); err != nil {
			rec.Close()
			return nil, err
		}
	}

	return &app{
		Server:    server.New(cfg, analyzer, rec),
		Scheduler: sched,
		rec:       rec,
	}, nil
}

func buildRecorder(cfg *store.Config) (recorder.Recorder, error) {
	switch cfg.Recorder.Driver {
	case "sqlite":
		return recorder.NewSQLiteRecorder(cfg.Recorder.Path)
	case "none", "":
		return recorder.NewNoopRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown recorder driver %q", cfg.Recorder.Driver)
	}
}

// buildAggregator returns nil when sentiment is disabled or no API key is
// present; the analyzer then decides on indicators alone.
func buildAggregator(ctx context.Context, cfg *store.Config) *sentiment.Aggregator {
	if !cfg.Sentiment.Enabled {
		return nil
	}
	thresholds := sentiment.Thresholds{
		Positive: cfg.Sentiment.PositiveThreshold,
		Negative: cfg.Sentiment.NegativeThreshold,
	}
	if cfg.Sentiment.APIKey == "" {
		logger.Warn(ctx, "sentiment enabled but API key missing, using keyword scorer",
			"env", cfg.Sentiment.APIKeyEnv)
		return sentiment.NewAggregator(sentiment.NewKeywordScorer(), thresholds)
	}
	scorer := sentiment.WithFallback(
		sentiment.NewGroqScorer(cfg.Sentiment.APIKey, cfg.Sentiment.Model),
		sentiment.NewKeywordScorer(),
	)
	return sentiment.NewAggregator(scorer, thresholds)
}
