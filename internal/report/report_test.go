package report

import (
	"strings"
	"testing"

	"stock-research-agent/internal/types"
)

func f(v float64) *float64 { return &v }

func result(rsi float64, macd *float64, price float64, action string, conf float64) types.AnalysisResult {
	return types.AnalysisResult{
		Symbol:        "AAPL",
		CurrentPrice:  price,
		Indicators:    types.IndicatorSnapshot{RSI: rsi, MA20: 100, MACD: macd},
		Decision:      types.Decision{Action: action, Confidence: conf, Reason: "test"},
		HistoryLength: 250,
	}
}

func TestGenerateSummary(t *testing.T) {
	rep := Generate(result(25, f(0.5), 150.25, types.ActionBuy, 0.9))

	want := "AAPL is trading at $150.25 with a bullish outlook. BUY signal with 90% confidence."
	if rep.Summary != want {
		t.Errorf("Expected %q, got %q", want, rep.Summary)
	}
	if rep.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, got %s", rep.Ticker)
	}
	if rep.DataPoints != 250 {
		t.Errorf("Expected 250 data points, got %d", rep.DataPoints)
	}
}

func TestRSIInterpretationZones(t *testing.T) {
	cases := []struct {
		rsi  float64
		want string
	}{
		{25, "Oversold - Strong BUY signal"},
		{35, "Approaching oversold"},
		{50, "Neutral - In equilibrium"},
		{65, "Approaching overbought"},
		{75, "Overbought - Strong SELL signal"},
	}
	for _, tc := range cases {
		if got := interpretRSI(tc.rsi); got != tc.want {
			t.Errorf("RSI %.0f: expected %q, got %q", tc.rsi, tc.want, got)
		}
	}
}

func TestMAInterpretation(t *testing.T) {
	if got := interpretMA(110, 100); !strings.Contains(got, "Bullish") || !strings.Contains(got, "10.00%") {
		t.Errorf("Unexpected interpretation: %q", got)
	}
	if got := interpretMA(90, 100); !strings.Contains(got, "Bearish") || !strings.Contains(got, "10.00%") {
		t.Errorf("Unexpected interpretation: %q", got)
	}
	if got := interpretMA(90, 0); got != "Moving average unavailable" {
		t.Errorf("Unexpected interpretation: %q", got)
	}
}

func TestMACDInterpretation(t *testing.T) {
	if got := interpretMACD(nil); got != "Insufficient data for MACD" {
		t.Errorf("Unexpected interpretation: %q", got)
	}
	if got := interpretMACD(f(0.02)); got != "Positive momentum - Bullish" {
		t.Errorf("Unexpected interpretation: %q", got)
	}
	if got := interpretMACD(f(-0.02)); got != "Negative momentum - Bearish" {
		t.Errorf("Unexpected interpretation: %q", got)
	}
	if got := interpretMACD(f(0.001)); got != "Neutral momentum" {
		t.Errorf("Unexpected interpretation: %q", got)
	}
}

func TestSignalCounts(t *testing.T) {
	s := analyzeSignals(types.IndicatorSnapshot{RSI: 25, MACD: f(0.3)})
	if s.Bullish != 2 || s.Bearish != 0 {
		t.Errorf("Expected 2 bullish / 0 bearish, got %d/%d", s.Bullish, s.Bearish)
	}
	if s.Strength != "Strong Bullish" {
		t.Errorf("Expected Strong Bullish, got %s", s.Strength)
	}

	s = analyzeSignals(types.IndicatorSnapshot{RSI: 75, MACD: f(-0.3)})
	if s.Strength != "Strong Bearish" {
		t.Errorf("Expected Strong Bearish, got %s", s.Strength)
	}

	s = analyzeSignals(types.IndicatorSnapshot{RSI: 50})
	if s.Bullish != 0 || s.Bearish != 0 || s.Strength != "Mixed" {
		t.Errorf("Expected mixed with no signals, got %+v", s)
	}
}

func TestRiskLevels(t *testing.T) {
	cases := []struct {
		rsi  float64
		conf float64
		want string
	}{
		{15, 0.9, "HIGH"},
		{85, 0.9, "HIGH"},
		{25, 0.9, "MODERATE"},
		{75, 0.9, "MODERATE"},
		{50, 0.9, "LOW"},
		{50, 0.5, "MODERATE"}, // low confidence bumps a level
		{25, 0.5, "HIGH"},
	}
	for _, tc := range cases {
		risk := assessRisk(
			types.IndicatorSnapshot{RSI: tc.rsi},
			types.Decision{Confidence: tc.conf},
		)
		if risk.Level != tc.want {
			t.Errorf("RSI %.0f conf %.1f: expected %s, got %s", tc.rsi, tc.conf, tc.want, risk.Level)
		}
	}
}

func TestRecommendationVariants(t *testing.T) {
	rep := Generate(result(25, f(0.5), 150, types.ActionBuy, 0.9))
	if !strings.HasPrefix(rep.Recommendation, "STRONG BUY") {
		t.Errorf("Expected STRONG BUY, got %q", rep.Recommendation)
	}

	rep = Generate(result(28, nil, 150, types.ActionBuy, 0.6))
	if !strings.HasPrefix(rep.Recommendation, "BUY -") {
		t.Errorf("Expected plain BUY, got %q", rep.Recommendation)
	}

	rep = Generate(result(75, f(-0.5), 150, types.ActionSell, 0.9))
	if !strings.HasPrefix(rep.Recommendation, "STRONG SELL") {
		t.Errorf("Expected STRONG SELL, got %q", rep.Recommendation)
	}

	rep = Generate(result(50, f(0.0), 150, types.ActionHold, 0.5))
	if !strings.HasPrefix(rep.Recommendation, "HOLD") {
		t.Errorf("Expected HOLD, got %q", rep.Recommendation)
	}
}

func TestIndicatorReadingsCarryValues(t *testing.T) {
	rep := Generate(result(42.5, f(0.1234), 150, types.ActionHold, 0.5))

	if rep.Indicators["rsi"].Value == nil || *rep.Indicators["rsi"].Value != 42.5 {
		t.Error("Expected RSI value carried into report")
	}
	if rep.Indicators["macd"].Value == nil || *rep.Indicators["macd"].Value != 0.1234 {
		t.Error("Expected MACD value carried into report")
	}

	rep = Generate(result(42.5, nil, 150, types.ActionHold, 0.5))
	if rep.Indicators["macd"].Value != nil {
		t.Error("Expected nil MACD value for short histories")
	}
}
