package calculator

import (
	"math"

	"StockTerminal/internal/model"
)

// ComputeAnnualVolatility returns the population standard deviation of the
// day-over-day percentage changes, scaled by sqrt(252), as a percentage.
func ComputeAnnualVolatility(s PriceSeries) model.Metric {
	n := len(s.points)
	if n < 2 {
		return model.NotAvailable
	}
	returns := make([]float64, n-1)
	var sum float64
	for i := 1; i < n; i++ {
		prev := s.points[i-1].Price
		returns[i-1] = (s.points[i].Price - prev) / prev
		sum += returns[i-1]
	}
	mean := sum / float64(len(returns))
	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	std := math.Sqrt(sq / float64(len(returns)))
	return model.Percent(round2(std * math.Sqrt(TradingDaysPerYear) * 100))
}
