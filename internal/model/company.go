package model

import "time"

// Field is one named entry of a metadata record, kept in provider order.
type Field struct {
	Key   string
	Value any
}

// CompanyInfo is the metadata record for a ticker. Zero numeric values mean
// the provider did not report the figure.
type CompanyInfo struct {
	Symbol           string
	LongName         string
	Sector           string
	Industry         string
	MarketCap        int64
	CurrentPrice     float64
	FiftyTwoWeekLow  float64
	FiftyTwoWeekHigh float64
	Description      string
	Currency         string
	Extra            []Field
	FetchedAt        time.Time
}

// Found reports whether the record identifies a real company.
func (c *CompanyInfo) Found() bool {
	return c != nil && c.LongName != ""
}

// Fields flattens the record into ordered key/value pairs for export.
// Unreported figures are omitted.
func (c *CompanyInfo) Fields() []Field {
	if c == nil {
		return nil
	}
	fields := []Field{
		{Key: "symbol", Value: c.Symbol},
		{Key: "longName", Value: c.LongName},
	}
	add := func(key string, v any, present bool) {
		if present {
			fields = append(fields, Field{Key: key, Value: v})
		}
	}
	add("sector", c.Sector, c.Sector != "")
	add("industry", c.Industry, c.Industry != "")
	add("marketCap", c.MarketCap, c.MarketCap != 0)
	add("currentPrice", c.CurrentPrice, c.CurrentPrice != 0)
	add("fiftyTwoWeekLow", c.FiftyTwoWeekLow, c.FiftyTwoWeekLow != 0)
	add("fiftyTwoWeekHigh", c.FiftyTwoWeekHigh, c.FiftyTwoWeekHigh != 0)
	add("currency", c.Currency, c.Currency != "")
	add("longBusinessSummary", c.Description, c.Description != "")
	return append(fields, c.Extra...)
}
