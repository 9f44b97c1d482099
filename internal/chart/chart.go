// Package chart renders price history as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockTerminal/internal/model"
)

// Image dimensions in pixels.
const (
	Width  = 1000
	Height = 480
)

var (
	// ErrNoData is returned for an empty history.
	ErrNoData = errors.New("no price history")
	// ErrNoAdjClose is returned when the history has no adjusted close column.
	ErrNoAdjClose = errors.New("adjusted close data not available")
)

// Candlestick renders OHLC candles with volume bars in the lower quarter.
func Candlestick(w io.Writer, h *model.History) error {
	if h.Empty() {
		return ErrNoData
	}
	maxVol := 0.0
	for _, b := range h.Bars {
		if b.Volume > maxVol {
			maxVol = b.Volume
		}
	}

	series := []gochart.Series{candleSeries{bars: h.Bars}}
	secondary := gochart.YAxis{Style: gochart.Hidden()}
	if maxVol > 0 {
		// Volume bars use at most a quarter of the canvas height.
		secondary.Range = &gochart.ContinuousRange{Min: 0, Max: maxVol * 4}
		series = append([]gochart.Series{volumeSeries{bars: h.Bars}}, series...)
	}

	c := gochart.Chart{
		Title:  fmt.Sprintf("%s - %d Year History", h.Symbol, yearsSpanned(h)),
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: gochart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
		},
		YAxisSecondary: secondary,
		Series:         series,
	}
	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render candlestick: %w", err)
	}
	return nil
}

// AdjustedClose renders the adjusted close as a line chart.
func AdjustedClose(w io.Writer, h *model.History) error {
	if h.Empty() {
		return ErrNoData
	}
	dates, values, ok := h.AdjCloses()
	if !ok {
		return ErrNoAdjClose
	}

	first, last := dates[0], dates[len(dates)-1]
	c := gochart.Chart{
		Title:  fmt.Sprintf("Adjusted Close Price History - %s (%d-%d)", h.Symbol, first.Year(), last.Year()),
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: gochart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Adj Close",
				XValues: dates,
				YValues: values,
				Style: gochart.Style{
					StrokeColor: drawing.ColorFromHex("3366cc"),
					StrokeWidth: 2.2,
				},
			},
		},
	}
	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render adjusted close: %w", err)
	}
	return nil
}

func priceFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

func yearsSpanned(h *model.History) int {
	first, last := h.Bars[0].Time, h.Bars[len(h.Bars)-1].Time
	years := int(last.Sub(first).Hours()/(24*365) + 0.5)
	if years < 1 {
		years = 1
	}
	return years
}
