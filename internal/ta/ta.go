package ta

import (
	"errors"
	"math"

	"stock-research-agent/internal/types"
)

// ErrEmptyHistory is returned when indicators are requested for an empty price series.
var ErrEmptyHistory = errors.New("no price history to compute indicators")

// RSI computes the Wilder-smoothed Relative Strength Index over the given
// period. Returns the neutral value 50.0 when fewer than period+1 closes are
// available, and exactly 100.0 when the smoothing window contains no losses.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remaining changes.
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// SMA computes the simple moving average of the last period closes. When
// fewer closes are available it averages everything it has; 0 on empty input.
func SMA(closes []float64, period int) float64 {
	if len(closes) == 0 || period <= 0 {
		return 0
	}
	n := period
	if len(closes) < period {
		n = len(closes)
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMA computes the exponential moving average series with alpha = 2/(span+1),
// seeded at the first value. No look-ahead.
func EMA(series []float64, span int) []float64 {
	if len(series) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the latest raw MACD line value (fast EMA minus slow EMA).
// ok is false when fewer than slow closes are available; that is an
// absent-marker, not an error. No signal-line smoothing is applied.
func MACD(closes []float64, fast, slow int) (float64, bool) {
	if len(closes) < slow {
		return 0, false
	}
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	return emaFast[len(emaFast)-1] - emaSlow[len(emaSlow)-1], true
}

// Engine computes indicator snapshots with configurable periods.
type Engine struct {
	RSIPeriod int
	MAPeriod  int
	MACDFast  int
	MACDSlow  int
}

// NewEngine returns an engine with the standard 14/20/12/26 periods.
func NewEngine() *Engine {
	return &Engine{RSIPeriod: 14, MAPeriod: 20, MACDFast: 12, MACDSlow: 26}
}

// Compute derives an IndicatorSnapshot from a chronological (oldest-first)
// price series. RSI and MA20 are rounded to 2 decimals, MACD to 4.
func (e *Engine) Compute(series []types.PricePoint) (types.IndicatorSnapshot, error) {
	if len(series) == 0 {
		return types.IndicatorSnapshot{}, ErrEmptyHistory
	}

	closes := make([]float64, len(series))
	for i, p := range series {
		closes[i] = p.Close
	}

	snap := types.IndicatorSnapshot{
		RSI:  round(RSI(closes, e.RSIPeriod), 2),
		MA20: round(SMA(closes, e.MAPeriod), 2),
	}
	if v, ok := MACD(closes, e.MACDFast, e.MACDSlow); ok {
		m := round(v, 4)
		snap.MACD = &m
	}
	return snap, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
