package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

// ErrNoData is returned when Yahoo yields no usable bars for a symbol.
var ErrNoData = fmt.Errorf("no price data available")

// HistoryProvider yields a chronological daily price series for a symbol.
type HistoryProvider interface {
	History(ctx context.Context, symbol, period string) ([]types.PricePoint, error)
}

// NewsProvider yields recent headlines for a symbol.
type NewsProvider interface {
	News(ctx context.Context, symbol string, limit int) ([]types.Headline, error)
}

// validPeriods is the accepted history-period vocabulary.
var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

// ValidPeriod reports whether period is part of the accepted vocabulary.
func ValidPeriod(period string) bool {
	return validPeriods[strings.ToLower(period)]
}

// periodRange converts a period keyword into a concrete [start, end) window.
func periodRange(period string, now time.Time) (time.Time, time.Time, error) {
	end := now
	var start time.Time

	switch strings.ToLower(period) {
	case "1d":
		start = now.AddDate(0, 0, -1)
	case "5d":
		start = now.AddDate(0, 0, -5)
	case "1mo":
		start = now.AddDate(0, -1, 0)
	case "3mo":
		start = now.AddDate(0, -3, 0)
	case "6mo":
		start = now.AddDate(0, -6, 0)
	case "1y":
		start = now.AddDate(-1, 0, 0)
	case "2y":
		start = now.AddDate(-2, 0, 0)
	case "5y":
		start = now.AddDate(-5, 0, 0)
	case "10y":
		start = now.AddDate(-10, 0, 0)
	case "ytd":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case "max":
		start = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period '%s'", period)
	}
	return start, end, nil
}

// YahooProvider fetches daily OHLCV history from the Yahoo Finance chart API.
type YahooProvider struct{}

// NewYahooProvider creates a Yahoo-backed history provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{}
}

// History implements HistoryProvider. Bars come back oldest-first; bars with
// an unusable close are skipped, matching how the chart API reports market
// holidays.
func (p *YahooProvider) History(ctx context.Context, symbol, period string) ([]types.PricePoint, error) {
	ctx, span := trace.StartSpan(ctx, "fetch-price-history")
	defer span.End()

	start, end, err := periodRange(period, time.Now())
	if err != nil {
		return nil, err
	}

	params := &chart.Params{
		Symbol:   strings.ToUpper(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	series := make([]types.PricePoint, 0, 256)
	for iter.Next() {
		bar := iter.Bar()

		closePrice, _ := bar.Close.Float64()
		if closePrice == 0 {
			continue
		}
		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()

		series = append(series, types.PricePoint{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w for symbol %s", ErrNoData, symbol)
	}

	logger.Info(ctx, "Price history fetched", "symbol", symbol, "period", period, "bars", len(series))
	return series, nil
}
