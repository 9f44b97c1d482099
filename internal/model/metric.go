package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NotAvailableText is how an unavailable metric is displayed and serialized.
const NotAvailableText = "N/A"

// Metric is a percentage figure or an explicit "not available" marker.
type Metric struct {
	Value     float64
	Available bool
}

// NotAvailable is the zero Metric.
var NotAvailable = Metric{}

// Percent wraps an available percentage.
func Percent(v float64) Metric {
	return Metric{Value: v, Available: true}
}

func (m Metric) String() string {
	if !m.Available {
		return NotAvailableText
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return json.Marshal(NotAvailableText)
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		*m = NotAvailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Percent(v)
	return nil
}
