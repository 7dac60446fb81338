package recorder

import "time"

// Record is one persisted analysis outcome.
type Record struct {
	Time       time.Time `json:"time"`
	Symbol     string    `json:"symbol"`
	Period     string    `json:"period"`
	Price      float64   `json:"price"`
	RSI        float64   `json:"rsi"`
	MA20       float64   `json:"ma20"`
	MACD       *float64  `json:"macd"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(rec *Record) error
	Recent(symbol string, n int) ([]Record, error)
	Close() error
}
