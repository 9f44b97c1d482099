package model

import "time"

// Return view names offered by the dashboard.
const (
	ViewAnnualized   = "Annualized"
	ViewCumulative   = "Cumulative"
	ViewCalendarYear = "Calendar Year"
)

// RenderModel is everything a surface needs to display one ticker query.
type RenderModel struct {
	QueryID     string          `json:"query_id"`
	Symbol      string          `json:"symbol"`
	Found       bool            `json:"found"`
	Message     string          `json:"message,omitempty"`
	Company     *CompanySummary `json:"company,omitempty"`
	Charts      *ChartLinks     `json:"charts,omitempty"`
	Returns     []ReturnTable   `json:"returns,omitempty"`
	Volatility  Metric          `json:"annual_volatility"`
	Warnings    []string        `json:"warnings,omitempty"`
	Exports     *ExportLinks    `json:"exports,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// CompanySummary is the header block of the dashboard.
type CompanySummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metrics     []SummaryMetric `json:"metrics"`
}

// SummaryMetric is a labelled display value such as "Market Cap".
type SummaryMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartLinks points at the rendered chart images. AdjClose is empty when the
// adjusted close series is missing.
type ChartLinks struct {
	Candlestick string `json:"candlestick"`
	AdjClose    string `json:"adj_close,omitempty"`
}

// ExportLinks points at the download endpoints for the metadata record.
type ExportLinks struct {
	CSV string `json:"csv"`
	PDF string `json:"pdf"`
}

// ReturnTable is one of the return views.
type ReturnTable struct {
	View    string      `json:"view"`
	Columns []string    `json:"columns"`
	Rows    []ReturnRow `json:"rows"`
}

// ReturnRow is a labelled row of percentages.
type ReturnRow struct {
	Label  string   `json:"label"`
	Values []Metric `json:"values"`
}

// Table returns the return view with the given name.
func (r *RenderModel) Table(view string) (ReturnTable, bool) {
	for _, t := range r.Returns {
		if t.View == view {
			return t, true
		}
	}
	return ReturnTable{}, false
}
