package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTerminal/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday

// dailySeries builds one observation per calendar day starting at day0.
func dailySeries(t *testing.T, prices ...float64) PriceSeries {
	t.Helper()
	dates := make([]time.Time, len(prices))
	for i := range prices {
		dates[i] = day0.AddDate(0, 0, i)
	}
	s, err := NewPriceSeries(dates, prices)
	require.NoError(t, err)
	return s
}

// weekdaySeries builds one observation per weekday starting at day0.
func weekdaySeries(t *testing.T, prices []float64) PriceSeries {
	t.Helper()
	dates := make([]time.Time, 0, len(prices))
	for d := day0; len(dates) < len(prices); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	s, err := NewPriceSeries(dates, prices)
	require.NoError(t, err)
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeCAGR_OneYearTenPercent(t *testing.T) {
	s := dailySeries(t, append(flat(252, 100), 110)...)

	res, err := ComputeCAGR(s, []int{1})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "1Y", res[0].Label)
	assert.Equal(t, model.Percent(10), res[0].Return)
}

func TestComputeCAGR_InsufficientHistory(t *testing.T) {
	s := dailySeries(t, flat(100, 100)...)

	res, err := ComputeCAGR(s, []int{1})
	require.NoError(t, err)
	m, ok := res.Get("1Y")
	require.True(t, ok)
	assert.False(t, m.Available)
	assert.Equal(t, "N/A", m.String())
}

func TestComputeCAGR_BoundaryCount(t *testing.T) {
	prices := flat(251, 100)
	short := dailySeries(t, prices...)
	res, err := ComputeCAGR(short, []int{1})
	require.NoError(t, err)
	assert.False(t, res[0].Return.Available, "251 observations cannot cover one year")

	exact := dailySeries(t, append(flat(251, 50), 100)...)
	res, err = ComputeCAGR(exact, []int{1})
	require.NoError(t, err)
	assert.Equal(t, model.Percent(100), res[0].Return, "start is the 252nd observation from the end")
}

func TestComputeCAGR_CountsResampledCalendarDays(t *testing.T) {
	// 200 weekdays span 278 calendar days: enough for one year only once
	// weekends are forward filled.
	prices := make([]float64, 200)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	s := weekdaySeries(t, prices)
	require.Equal(t, 278, Resample(s).Len())

	res, err := ComputeCAGR(s, []int{1})
	require.NoError(t, err)
	// The start day (2024-01-27) is a Saturday carrying Friday's price, 119.
	assert.Equal(t, model.Percent(151.26), res[0].Return)
}

func TestComputeCAGR_MultipleHorizons(t *testing.T) {
	n := 5*TradingDaysPerYear + 1
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100
	}
	prices[n-3*TradingDaysPerYear] = 50
	prices[n-1] = 200
	s := dailySeries(t, prices...)

	res, err := ComputeCAGR(s, []int{5, 1, 3, 1, 10})
	require.NoError(t, err)
	require.Len(t, res, 5)

	labels := make([]string, len(res))
	for i, r := range res {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"5Y", "1Y", "3Y", "1Y", "10Y"}, labels)

	assert.Equal(t, model.Percent(14.87), res[0].Return)
	assert.Equal(t, model.Percent(100), res[1].Return)
	assert.Equal(t, model.Percent(58.74), res[2].Return)
	assert.Equal(t, res[1], res[3])
	assert.False(t, res[4].Return.Available)
}

func TestComputeCAGR_EmptySeries(t *testing.T) {
	res, err := ComputeCAGR(PriceSeries{}, []int{1, 3, 5})
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.False(t, r.Return.Available, r.Label)
	}
}

func TestComputeCAGR_RejectsBadHorizons(t *testing.T) {
	s := dailySeries(t, 100, 101)

	_, err := ComputeCAGR(s, nil)
	assert.ErrorIs(t, err, ErrInvalidHorizon)

	_, err = ComputeCAGR(s, []int{1, 0})
	assert.ErrorIs(t, err, ErrInvalidHorizon)

	_, err = ComputeCAGR(s, []int{-3})
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestResample_DailySeriesIsNoop(t *testing.T) {
	s := dailySeries(t, 10, 11, 12, 13, 12, 11)
	assert.Equal(t, s.Points(), Resample(s).Points())
}

func TestResample_ForwardFillsGaps(t *testing.T) {
	dates := []time.Time{day0, day0.AddDate(0, 0, 3), day0.AddDate(0, 0, 4)}
	s, err := NewPriceSeries(dates, []float64{1, 2, 3})
	require.NoError(t, err)

	var got []float64
	for _, p := range Resample(s).Points() {
		got = append(got, p.Price)
	}
	assert.Equal(t, []float64{1, 1, 1, 2, 3}, got)
}

func TestNewPriceSeries_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		dates  []time.Time
		prices []float64
	}{
		{"length mismatch", []time.Time{day0}, []float64{1, 2}},
		{"duplicate date", []time.Time{day0, day0.Add(5 * time.Hour)}, []float64{1, 1}},
		{"out of order", []time.Time{day0.AddDate(0, 0, 1), day0}, []float64{1, 2}},
		{"zero price", []time.Time{day0}, []float64{0}},
		{"negative price", []time.Time{day0}, []float64{-4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceSeries(tt.dates, tt.prices)
			assert.ErrorIs(t, err, ErrInvalidSeries)
		})
	}
}

func TestNewPriceSeries_UsesLocalCalendarDay(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	open := time.Date(2024, 3, 4, 9, 30, 0, 0, ny) // 14:30 UTC, same day
	late := time.Date(2024, 3, 5, 20, 0, 0, 0, ny) // 01:00 UTC next day
	s, err := NewPriceSeries([]time.Time{open, late}, []float64{1, 2})
	require.NoError(t, err)

	pts := s.Points()
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), pts[0].Date)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), pts[1].Date)
}

func TestSeriesFromHistory(t *testing.T) {
	h := &model.History{Symbol: "AAPL", Bars: []model.OHLCV{
		{Time: day0, Close: 10, AdjClose: 9},
		{Time: day0.AddDate(0, 0, 1), Close: 11, AdjClose: 10},
	}}

	_, err := SeriesFromHistory(h)
	assert.ErrorIs(t, err, ErrMissingAdjClose)

	h.HasAdjClose = true
	s, err := SeriesFromHistory(h)
	require.NoError(t, err)
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 10.0, last.Price)
}

func TestRound2_RoundsExactBinaryValue(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		// 1.005 and 2.675 are stored just below the tie.
		{1.005, 1.0},
		{2.675, 2.67},
		{-2.675, -2.67},
		// 0.125 and 0.375 are exact ties and go to even.
		{0.125, 0.12},
		{0.375, 0.38},
		{14.965, 14.96},
		{151.2567, 151.26},
		{10.000000000000009, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in), "round2(%v)", tt.in)
	}
}
