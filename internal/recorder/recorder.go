package recorder

import (
	"time"

	"StockTerminal/internal/model"
)

// QuerySnapshot is the persisted outcome of one dashboard query.
type QuerySnapshot struct {
	ID         string       `json:"id"`
	Symbol     string       `json:"symbol"`
	Name       string       `json:"name"`
	Found      bool         `json:"found"`
	CAGR1Y     model.Metric `json:"cagr_1y"`
	CAGR3Y     model.Metric `json:"cagr_3y"`
	CAGR5Y     model.Metric `json:"cagr_5y"`
	Volatility model.Metric `json:"annual_volatility"`
	Source     string       `json:"source"` // "http", "telegram" or "digest"
	Timestamp  time.Time    `json:"timestamp"`
}

// Recorder persists query history for later review.
type Recorder interface {
	RecordQuery(snap *QuerySnapshot) error
	// RecentQueries returns up to limit snapshots, newest first.
	RecentQueries(limit int) ([]QuerySnapshot, error)
	Close() error
}
