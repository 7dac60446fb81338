package report

import (
	"fmt"
	"time"

	"stock-research-agent/internal/types"
)

// IndicatorReading pairs an indicator value with its interpretation.
type IndicatorReading struct {
	Value          *float64 `json:"value"`
	Interpretation string   `json:"interpretation"`
}

// RiskAssessment summarizes risk for the decision.
type RiskAssessment struct {
	Level          string  `json:"level"` // LOW, MODERATE, HIGH
	Confidence     float64 `json:"confidence_score"`
	Recommendation string  `json:"recommendation"`
}

// SignalAnalysis counts directional signals among the indicators.
type SignalAnalysis struct {
	Bullish  int    `json:"bullish_signals"`
	Bearish  int    `json:"bearish_signals"`
	Strength string `json:"overall_strength"`
}

// Report is the full human-oriented analysis report for one symbol.
type Report struct {
	Ticker         string                      `json:"ticker"`
	Timestamp      string                      `json:"timestamp"`
	Summary        string                      `json:"summary"`
	CurrentPrice   float64                     `json:"current_price"`
	Indicators     map[string]IndicatorReading `json:"technical_indicators"`
	Decision       types.Decision              `json:"trading_decision"`
	Signals        SignalAnalysis              `json:"signal_analysis"`
	Risk           RiskAssessment              `json:"risk_assessment"`
	Recommendation string                      `json:"recommendation"`
	DataPoints     int                         `json:"data_points"`
}

// Generate formats an analysis result into a report.
func Generate(result types.AnalysisResult) Report {
	ind := result.Indicators
	dec := result.Decision

	rsi, ma20 := ind.RSI, ind.MA20
	signals := analyzeSignals(ind)
	risk := assessRisk(ind, dec)

	return Report{
		Ticker:       result.Symbol,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Summary:      summarize(result.Symbol, result.CurrentPrice, dec),
		CurrentPrice: result.CurrentPrice,
		Indicators: map[string]IndicatorReading{
			"rsi":               {Value: &rsi, Interpretation: interpretRSI(ind.RSI)},
			"moving_average_20": {Value: &ma20, Interpretation: interpretMA(result.CurrentPrice, ind.MA20)},
			"macd":              {Value: ind.MACD, Interpretation: interpretMACD(ind.MACD)},
		},
		Decision:       dec,
		Signals:        signals,
		Risk:           risk,
		Recommendation: recommend(dec, signals, risk),
		DataPoints:     result.HistoryLength,
	}
}

func summarize(ticker string, price float64, dec types.Decision) string {
	outlook := "neutral"
	switch dec.Action {
	case types.ActionBuy:
		outlook = "bullish"
	case types.ActionSell:
		outlook = "bearish"
	}
	return fmt.Sprintf("%s is trading at $%.2f with a %s outlook. %s signal with %.0f%% confidence.",
		ticker, price, outlook, dec.Action, dec.Confidence*100)
}

func interpretRSI(rsi float64) string {
	switch {
	case rsi < 30:
		return "Oversold - Strong BUY signal"
	case rsi < 40:
		return "Approaching oversold"
	case rsi > 70:
		return "Overbought - Strong SELL signal"
	case rsi > 60:
		return "Approaching overbought"
	default:
		return "Neutral - In equilibrium"
	}
}

func interpretMA(price, ma20 float64) string {
	if ma20 == 0 {
		return "Moving average unavailable"
	}
	if price > ma20 {
		return fmt.Sprintf("Price above MA20 (%.2f%%) - Bullish", (price-ma20)/ma20*100)
	}
	return fmt.Sprintf("Price below MA20 (%.2f%%) - Bearish", (ma20-price)/ma20*100)
}

func interpretMACD(macd *float64) string {
	if macd == nil {
		return "Insufficient data for MACD"
	}
	switch {
	case *macd > 0.005:
		return "Positive momentum - Bullish"
	case *macd < -0.005:
		return "Negative momentum - Bearish"
	default:
		return "Neutral momentum"
	}
}

func analyzeSignals(ind types.IndicatorSnapshot) SignalAnalysis {
	var bullish, bearish int
	if ind.RSI < 30 {
		bullish++
	}
	if ind.RSI > 70 {
		bearish++
	}
	if ind.MACD != nil {
		if *ind.MACD > 0 {
			bullish++
		} else if *ind.MACD < 0 {
			bearish++
		}
	}

	strength := "Mixed"
	if bullish > bearish {
		strength = "Strong Bullish"
	} else if bearish > bullish {
		strength = "Strong Bearish"
	}
	return SignalAnalysis{Bullish: bullish, Bearish: bearish, Strength: strength}
}

func assessRisk(ind types.IndicatorSnapshot, dec types.Decision) RiskAssessment {
	level := "LOW"
	switch {
	case ind.RSI < 20 || ind.RSI > 80:
		level = "HIGH"
	case ind.RSI < 30 || ind.RSI > 70:
		level = "MODERATE"
	}

	// Low confidence bumps the risk one level.
	if dec.Confidence < 0.6 {
		switch level {
		case "LOW":
			level = "MODERATE"
		case "MODERATE":
			level = "HIGH"
		}
	}

	stop, size := "tight", "normal"
	if level == "HIGH" {
		stop, size = "wider", "reduced"
	}
	return RiskAssessment{
		Level:          level,
		Confidence:     dec.Confidence,
		Recommendation: fmt.Sprintf("Use %s stop-loss and %s position size", stop, size),
	}
}

func recommend(dec types.Decision, signals SignalAnalysis, risk RiskAssessment) string {
	switch {
	case dec.Action == types.ActionBuy && dec.Confidence > 0.7:
		return fmt.Sprintf("STRONG BUY - %s signals with %s risk. Consider entering a position; %s.",
			signals.Strength, risk.Level, lower(risk.Recommendation))
	case dec.Action == types.ActionBuy:
		return fmt.Sprintf("BUY - Mixed signals, enter cautiously; %s.", lower(risk.Recommendation))
	case dec.Action == types.ActionSell && dec.Confidence > 0.7:
		return fmt.Sprintf("STRONG SELL - %s signals with %s risk. Consider exiting positions; %s.",
			signals.Strength, risk.Level, lower(risk.Recommendation))
	case dec.Action == types.ActionSell:
		return fmt.Sprintf("SELL - Mixed signals, exit cautiously; %s.", lower(risk.Recommendation))
	default:
		return fmt.Sprintf("HOLD - %s signals. Monitor price action and wait for clearer signals before making moves.",
			signals.Strength)
	}
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
