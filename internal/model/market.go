package model

import "time"

// OHLCV represents a single daily bar. AdjMissing marks a bar for which the
// provider reported no adjusted close; AdjClose is then meaningless.
type OHLCV struct {
	Time       time.Time `json:"time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	AdjClose   float64   `json:"adj_close"`
	AdjMissing bool      `json:"adj_missing,omitempty"`
	Volume     float64   `json:"volume"`
}

// History holds the daily bars returned by a provider for one symbol.
// HasAdjClose is set when the provider supplied an adjusted close column;
// individual bars may still lack a value (see OHLCV.AdjMissing).
type History struct {
	Symbol      string
	Bars        []OHLCV
	HasAdjClose bool
	FetchedAt   time.Time
}

// Empty reports whether the history carries no bars.
func (h *History) Empty() bool {
	return h == nil || len(h.Bars) == 0
}

// AdjCloses extracts the adjusted close column. A bar without a value
// carries the previous one forward; bars before the first value are left
// out. ok is false when no bar has an adjusted close.
func (h *History) AdjCloses() (dates []time.Time, values []float64, ok bool) {
	if h == nil || !h.HasAdjClose {
		return nil, nil, false
	}
	dates = make([]time.Time, 0, len(h.Bars))
	values = make([]float64, 0, len(h.Bars))
	seen := false
	var last float64
	for _, b := range h.Bars {
		if !b.AdjMissing {
			last, seen = b.AdjClose, true
		}
		if !seen {
			continue
		}
		dates = append(dates, b.Time)
		values = append(values, last)
	}
	if !seen {
		return nil, nil, false
	}
	return dates, values, true
}
