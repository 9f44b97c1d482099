package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"StockTerminal/internal/model"
)

// TradingDaysPerYear is the annualisation convention used by every calculator.
const TradingDaysPerYear = 252

var (
	// ErrInvalidSeries is returned when prices or dates break the series invariants.
	ErrInvalidSeries = errors.New("invalid price series")
	// ErrMissingAdjClose is returned when a history carries no adjusted close column.
	ErrMissingAdjClose = errors.New("adjusted close not available")
)

// PricePoint is one adjusted close observation. Date is the calendar day at UTC midnight.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries is an immutable, strictly date-ordered adjusted close series.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries validates and copies the given observations. Dates are
// reduced to their calendar day in their own location.
func NewPriceSeries(dates []time.Time, prices []float64) (PriceSeries, error) {
	if len(dates) != len(prices) {
		return PriceSeries{}, fmt.Errorf("%w: %d dates for %d prices", ErrInvalidSeries, len(dates), len(prices))
	}
	points := make([]PricePoint, len(dates))
	for i := range dates {
		p := prices[i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return PriceSeries{}, fmt.Errorf("%w: price %v at %s", ErrInvalidSeries, p, dates[i].Format(time.DateOnly))
		}
		d := calendarDay(dates[i])
		if i > 0 && !d.After(points[i-1].Date) {
			return PriceSeries{}, fmt.Errorf("%w: %s does not follow %s", ErrInvalidSeries,
				d.Format(time.DateOnly), points[i-1].Date.Format(time.DateOnly))
		}
		points[i] = PricePoint{Date: d, Price: p}
	}
	return PriceSeries{points: points}, nil
}

// SeriesFromHistory builds the adjusted close series of a provider history.
func SeriesFromHistory(h *model.History) (PriceSeries, error) {
	dates, values, ok := h.AdjCloses()
	if !ok {
		return PriceSeries{}, ErrMissingAdjClose
	}
	return NewPriceSeries(dates, values)
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.points) }

// Points returns a copy of the observations.
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Last returns the most recent observation.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
