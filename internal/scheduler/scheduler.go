package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/metrics"
	"stock-research-agent/internal/pipeline"
)

// Scheduler runs periodic watchlist analyses.
type Scheduler struct {
	cron     *cron.Cron
	analyzer *pipeline.Analyzer
	symbols  []string
	period   string
	ctx      context.Context
}

// New creates a scheduler for the given watchlist. The returned scheduler
// does nothing until Register and Start are called.
func New(ctx context.Context, analyzer *pipeline.Analyzer, symbols []string, period string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		analyzer: analyzer,
		symbols:  symbols,
		period:   period,
		ctx:      ctx,
	}
}

// Register schedules the watchlist sweep with the given cron expression.
func (s *Scheduler) Register(spec string) error {
	if len(s.symbols) == 0 {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("register watchlist sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	if len(s.symbols) == 0 {
		return
	}
	s.cron.Start()
	logger.Info(s.ctx, "scheduler started", "watchlist_size", len(s.symbols))
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn(s.ctx, "scheduler stop timed out")
	}
}

// RunNow executes a sweep immediately, outside the cron schedule.
func (s *Scheduler) RunNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	for _, symbol := range s.symbols {
		ctx, cancel := context.WithTimeout(s.ctx, 60*time.Second)
		result, err := s.analyzer.Analyze(ctx, symbol, s.period)
		cancel()
		if err != nil {
			metrics.RecordError("watchlist_sweep")
			logger.ErrorWithErr(s.ctx, "watchlist analysis failed", err, "symbol", symbol)
			continue
		}
		metrics.RecordAnalysis(result.Decision.Action)
	}
}
