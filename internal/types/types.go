package types

// Trading actions emitted by the decision engine.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Sentiment labels for an aggregated set of texts.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// PricePoint is a single daily OHLCV bar. Immutable once produced.
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// IndicatorSnapshot holds the latest indicator values for a price series.
// MACD is nil when the history is shorter than the slow EMA span.
type IndicatorSnapshot struct {
	RSI  float64  `json:"rsi"`
	MA20 float64  `json:"ma20"`
	MACD *float64 `json:"macd"`
}

// SentimentSample is the scored result for one input text.
type SentimentSample struct {
	Score          float64 `json:"score"`
	Interpretation string  `json:"interpretation"`
}

// SentimentAggregate reduces per-text sentiment samples into one signal.
// A zero-sample aggregate carries Err instead of a usable signal.
type SentimentAggregate struct {
	SampleCount      int               `json:"texts_analyzed"`
	OverallSentiment string            `json:"overall_sentiment"`
	OverallScore     float64           `json:"overall_score"`
	Confidence       float64           `json:"confidence"`
	Samples          []SentimentSample `json:"samples,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	Err              string            `json:"error,omitempty"`
}

// Decision is the action/confidence/reason triple for one analysis.
type Decision struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// AnalysisResult is the assembled output of one analysis request.
type AnalysisResult struct {
	Symbol        string              `json:"symbol"`
	CurrentPrice  float64             `json:"current_price"`
	Indicators    IndicatorSnapshot   `json:"indicators"`
	Decision      Decision            `json:"decision"`
	Sentiment     *SentimentAggregate `json:"sentiment,omitempty"`
	HistoryLength int                 `json:"price_history_length"`
}

// Headline is one news item fetched for a symbol.
type Headline struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Link      string `json:"link,omitempty"`
}
