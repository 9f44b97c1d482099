package chart

import (
	"errors"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockTerminal/internal/model"
)

var (
	colorUp   = drawing.ColorFromHex("26a69a")
	colorDown = drawing.ColorFromHex("ef5350")
	colorVol  = drawing.ColorFromHex("90a4ae").WithAlpha(160)
)

// candleSeries draws one OHLC candle per bar on the primary axis. Its bounded
// values (low, high) drive the price range.
type candleSeries struct {
	bars []model.OHLCV
}

func (s candleSeries) GetName() string             { return "OHLC" }
func (s candleSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s candleSeries) GetStyle() gochart.Style     { return gochart.Style{} }
func (s candleSeries) Len() int                    { return len(s.bars) }

func (s candleSeries) GetBoundedValues(i int) (x, low, high float64) {
	b := s.bars[i]
	return gochart.TimeToFloat64(b.Time), b.Low, b.High
}

func (s candleSeries) Validate() error {
	if len(s.bars) == 0 {
		return errors.New("candle series has no bars")
	}
	return nil
}

func (s candleSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	half := bodyWidth(box, len(s.bars)) / 2
	r.SetStrokeWidth(1)
	for _, b := range s.bars {
		c := colorUp
		if b.Close < b.Open {
			c = colorDown
		}
		r.SetStrokeColor(c)
		r.SetFillColor(c)

		x := box.Left + xr.Translate(gochart.TimeToFloat64(b.Time))
		r.MoveTo(x, box.Bottom-yr.Translate(b.High))
		r.LineTo(x, box.Bottom-yr.Translate(b.Low))
		r.Stroke()

		top := box.Bottom - yr.Translate(maxf(b.Open, b.Close))
		bottom := box.Bottom - yr.Translate(minf(b.Open, b.Close))
		if bottom == top {
			bottom++
		}
		r.MoveTo(x-half, top)
		r.LineTo(x+half, top)
		r.LineTo(x+half, bottom)
		r.LineTo(x-half, bottom)
		r.Close()
		r.FillStroke()
	}
}

// volumeSeries draws volume bars against the secondary axis.
type volumeSeries struct {
	bars []model.OHLCV
}

func (s volumeSeries) GetName() string             { return "Volume" }
func (s volumeSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisSecondary }
func (s volumeSeries) GetStyle() gochart.Style     { return gochart.Style{} }
func (s volumeSeries) Len() int                    { return len(s.bars) }

func (s volumeSeries) GetValues(i int) (x, y float64) {
	return gochart.TimeToFloat64(s.bars[i].Time), s.bars[i].Volume
}

func (s volumeSeries) Validate() error { return nil }

func (s volumeSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	half := bodyWidth(box, len(s.bars)) / 2
	r.SetStrokeWidth(0)
	r.SetFillColor(colorVol)
	r.SetStrokeColor(colorVol)
	for _, b := range s.bars {
		if b.Volume <= 0 {
			continue
		}
		x := box.Left + xr.Translate(gochart.TimeToFloat64(b.Time))
		top := box.Bottom - yr.Translate(b.Volume)
		r.MoveTo(x-half, top)
		r.LineTo(x+half, top)
		r.LineTo(x+half, box.Bottom)
		r.LineTo(x-half, box.Bottom)
		r.Close()
		r.Fill()
	}
}

func bodyWidth(box gochart.Box, n int) int {
	if n == 0 {
		return 1
	}
	w := box.Width() * 3 / (n * 5)
	if w < 1 {
		w = 1
	}
	return w
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
