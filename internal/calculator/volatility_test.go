package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTerminal/internal/model"
)

func TestComputeAnnualVolatility_Golden(t *testing.T) {
	// Returns of +1%, -1%, +1%.
	s := dailySeries(t, 100, 101, 101*0.99, 101*0.99*1.01)
	assert.Equal(t, model.Percent(14.97), ComputeAnnualVolatility(s))
}

func TestComputeAnnualVolatility_AlternatingTenPercent(t *testing.T) {
	// Four returns of +/-10%: mean 0, population std 0.1.
	s := dailySeries(t, 100, 110, 99, 108.9, 98.01)
	assert.Equal(t, model.Percent(158.75), ComputeAnnualVolatility(s))
}

func TestComputeAnnualVolatility_UsesPopulationStd(t *testing.T) {
	// Returns +10% and -50%: population std 0.3 (sample std would be ~0.42).
	s := dailySeries(t, 100, 110, 55)
	assert.Equal(t, model.Percent(476.24), ComputeAnnualVolatility(s))
}

func TestComputeAnnualVolatility_NotAvailable(t *testing.T) {
	assert.Equal(t, model.NotAvailable, ComputeAnnualVolatility(PriceSeries{}))
	assert.Equal(t, model.NotAvailable, ComputeAnnualVolatility(dailySeries(t, 42)))
}

func TestComputeAnnualVolatility_ConstantSeries(t *testing.T) {
	assert.Equal(t, model.Percent(0), ComputeAnnualVolatility(dailySeries(t, 5, 5, 5, 5)))
	assert.Equal(t, model.Percent(0), ComputeAnnualVolatility(dailySeries(t, 5, 6)))
}

func TestComputeAnnualVolatility_IgnoresCalendarGaps(t *testing.T) {
	dense := dailySeries(t, 100, 110, 99, 108.9, 98.01)
	dates := []time.Time{day0, day0.AddDate(0, 0, 3), day0.AddDate(0, 0, 4), day0.AddDate(0, 0, 10), day0.AddDate(0, 0, 11)}
	sparse, err := NewPriceSeries(dates, []float64{100, 110, 99, 108.9, 98.01})
	require.NoError(t, err)

	assert.Equal(t, ComputeAnnualVolatility(dense), ComputeAnnualVolatility(sparse))
}

func TestRange52Week(t *testing.T) {
	_, _, err := Range52Week(nil)
	assert.Error(t, err)

	bars := make([]model.OHLCV, 300)
	for i := range bars {
		bars[i] = model.OHLCV{High: float64(i + 10), Low: float64(i)}
	}
	bars[10].High = 1000 // outside the trailing 252 bars
	high, low, err := Range52Week(bars)
	require.NoError(t, err)
	assert.Equal(t, 309.0, high)
	assert.Equal(t, 48.0, low)
}
