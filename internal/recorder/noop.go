package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordQuery(_ *QuerySnapshot) error           { return nil }
func (n *NoopRecorder) RecentQueries(_ int) ([]QuerySnapshot, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                { return nil }
