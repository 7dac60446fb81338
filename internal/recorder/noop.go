package recorder

// NoopRecorder discards everything. Used when persistence is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) RecordAnalysis(*Record) error         { return nil }
func (*NoopRecorder) Recent(string, int) ([]Record, error) { return nil, nil }
func (*NoopRecorder) Close() error                         { return nil }
