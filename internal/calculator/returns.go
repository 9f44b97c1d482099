package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"StockTerminal/internal/model"
)

// ErrInvalidHorizon is returned for an empty horizon list or a non-positive horizon.
var ErrInvalidHorizon = errors.New("invalid horizon")

// HorizonReturn is the annualised return over one horizon.
type HorizonReturn struct {
	Label  string
	Years  int
	Return model.Metric
}

// CAGRResult keeps horizons in the order they were requested, duplicates included.
type CAGRResult []HorizonReturn

// Get returns the first entry with the given label, e.g. "3Y".
func (r CAGRResult) Get(label string) (model.Metric, bool) {
	for _, h := range r {
		if h.Label == label {
			return h.Return, true
		}
	}
	return model.NotAvailable, false
}

// HorizonLabel formats a horizon in years as "1Y", "3Y", ...
func HorizonLabel(years int) string {
	return strconv.Itoa(years) + "Y"
}

// ComputeCAGR computes the compound annual growth rate for every horizon.
// The start price of a horizon of n years is taken 252*n observations before
// the end of the calendar-day resampled series; shorter series report the
// horizon as not available.
func ComputeCAGR(s PriceSeries, horizons []int) (CAGRResult, error) {
	if len(horizons) == 0 {
		return nil, fmt.Errorf("%w: no horizons requested", ErrInvalidHorizon)
	}
	for _, h := range horizons {
		if h <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, h)
		}
	}

	result := make(CAGRResult, 0, len(horizons))
	end, ok := s.Last()
	daily := Resample(s)
	for _, years := range horizons {
		hr := HorizonReturn{Label: HorizonLabel(years), Years: years, Return: model.NotAvailable}
		required := TradingDaysPerYear * years
		if ok && daily.Len() >= required {
			start := daily.points[daily.Len()-required].Price
			cagr := math.Pow(end.Price/start, 1/float64(years)) - 1
			hr.Return = model.Percent(round2(cagr * 100))
		}
		result = append(result, hr)
	}
	return result, nil
}

// round2 rounds the exact binary value of v to two decimals, ties to even.
// Thirty fractional digits keep every non-tie float distinguishable from a tie.
func round2(v float64) float64 {
	return decimal.NewFromFloatWithExponent(v, -30).RoundBank(2).InexactFloat64()
}
