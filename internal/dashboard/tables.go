package dashboard

import (
	"StockTerminal/internal/calculator"
	"StockTerminal/internal/model"
)

// Rows of the illustrative return views.
const (
	rowTotalReturn = "Total Return (%)"
	rowBenchmark   = "Benchmark (%)"
)

// annualizedTable lays out CAGR figures as one row per horizon.
func annualizedTable(returns calculator.CAGRResult) model.ReturnTable {
	t := model.ReturnTable{
		View:    model.ViewAnnualized,
		Columns: []string{"Annualized Return (%)"},
	}
	for _, r := range returns {
		t.Rows = append(t.Rows, model.ReturnRow{Label: r.Label, Values: []model.Metric{r.Return}})
	}
	return t
}

// cumulativeTable and calendarYearTable are fixed sample figures, not
// computed from the queried symbol.
func cumulativeTable() model.ReturnTable {
	return model.ReturnTable{
		View:    model.ViewCumulative,
		Columns: []string{"YTD", "1M", "3M", "6M", "1Y", "3Y", "5Y"},
		Rows: []model.ReturnRow{
			{Label: rowTotalReturn, Values: percents(5.75, 0.34, 5.75, 1.48, -3.92, -0.60, 62.74)},
			{Label: rowBenchmark, Values: percents(6.24, 0.34, 6.24, 1.54, -5.20, 3.09, 77.28)},
		},
	}
}

func calendarYearTable() model.ReturnTable {
	return model.ReturnTable{
		View:    model.ViewCalendarYear,
		Columns: []string{"2020", "2021", "2022", "2023", "2024"},
		Rows: []model.ReturnRow{
			{Label: rowTotalReturn, Values: percents(2.56, 17.53, -8.07, 17.20, -7.80)},
			{Label: rowBenchmark, Values: percents(3.35, 24.38, -5.74, 22.66, -10.70)},
		},
	}
}

func percents(vs ...float64) []model.Metric {
	out := make([]model.Metric, len(vs))
	for i, v := range vs {
		out[i] = model.Percent(v)
	}
	return out
}
