// Package dashboard turns a ticker query into a render model shared by the
// HTTP and Telegram surfaces.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockTerminal/internal/cache"
	"StockTerminal/internal/calculator"
	"StockTerminal/internal/collector"
	"StockTerminal/internal/model"
	"StockTerminal/internal/recorder"
)

// User-facing messages.
const (
	MsgNotFound       = "Incorrect symbol, please try again."
	MsgNoDescription  = "No description available."
	MsgNoAdjClose     = "Adjusted close data not available for this symbol."
	MsgNoHistory      = "Historical price data not available for this symbol."
	MsgInvalidHistory = "Historical price data is inconsistent; returns are not available."
)

// DefaultHorizons are the CAGR horizons in years shown in the annualized view.
var DefaultHorizons = []int{1, 3, 5}

// ErrUnknownView is returned by View for an unrecognised mode.
var ErrUnknownView = errors.New("unknown return view")

// Service answers ticker queries.
type Service struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Horizons  []int

	logger *zap.Logger
	now    func() time.Time
}

func NewService(col *collector.Collector, rec recorder.Recorder, logger *zap.Logger) *Service {
	return &Service{
		Collector: col,
		Recorder:  rec,
		Horizons:  DefaultHorizons,
		logger:    logger,
		now:       time.Now,
	}
}

type sourceKey struct{}

// WithSource tags queries made with ctx by the surface that issued them.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok {
		return s
	}
	return ""
}

// HandleQuery runs one query cycle: metadata, summary, history, charts,
// returns and volatility. Provider failures degrade to "not found" or
// warnings; only a blank symbol is an error.
func (s *Service) HandleQuery(ctx context.Context, symbol string) (*model.RenderModel, error) {
	key := cache.Key(symbol)
	if key == "" {
		return nil, collector.ErrEmptySymbol
	}
	rm := &model.RenderModel{
		QueryID:     uuid.NewString(),
		Symbol:      key,
		Volatility:  model.NotAvailable,
		GeneratedAt: s.now(),
	}

	info, err := s.Collector.Info(ctx, key)
	if err != nil {
		s.logger.Warn("info lookup failed", zap.String("symbol", key), zap.Error(err))
	}
	if !info.Found() {
		rm.Message = MsgNotFound
		s.record(ctx, rm, nil, nil)
		return rm, nil
	}
	rm.Found = true

	history, err := s.Collector.History(ctx, key)
	if err != nil {
		s.logger.Warn("history lookup failed", zap.String("symbol", key), zap.Error(err))
		history = nil
	}

	rm.Company = summarize(info, history)
	rm.Exports = &model.ExportLinks{
		CSV: fmt.Sprintf("/api/export/%s.csv", key),
		PDF: fmt.Sprintf("/api/export/%s.pdf", key),
	}

	cagr := notAvailable(s.Horizons)
	switch {
	case history.Empty():
		rm.Warnings = append(rm.Warnings, MsgNoHistory)
	case !history.HasAdjClose:
		rm.Charts = &model.ChartLinks{Candlestick: chartURL(key, "candlestick")}
		rm.Warnings = append(rm.Warnings, MsgNoAdjClose)
	default:
		rm.Charts = &model.ChartLinks{
			Candlestick: chartURL(key, "candlestick"),
			AdjClose:    chartURL(key, "adjclose"),
		}
		series, err := calculator.SeriesFromHistory(history)
		if err != nil {
			s.logger.Warn("unusable adjusted close series", zap.String("symbol", key), zap.Error(err))
			rm.Warnings = append(rm.Warnings, MsgInvalidHistory)
			break
		}
		if res, err := calculator.ComputeCAGR(series, s.Horizons); err != nil {
			s.logger.Error("compute cagr", zap.String("symbol", key), zap.Error(err))
		} else {
			cagr = res
		}
		rm.Volatility = calculator.ComputeAnnualVolatility(series)
	}

	if !history.Empty() {
		rm.Returns = []model.ReturnTable{annualizedTable(cagr), cumulativeTable(), calendarYearTable()}
	}

	s.record(ctx, rm, info, cagr)
	return rm, nil
}

// View runs a query and keeps only the named return view.
func (s *Service) View(ctx context.Context, symbol, mode string) (*model.RenderModel, error) {
	if !ValidView(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, mode)
	}
	rm, err := s.HandleQuery(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if t, ok := rm.Table(mode); ok {
		rm.Returns = []model.ReturnTable{t}
	}
	return rm, nil
}

// ValidView reports whether mode names one of the return views.
func ValidView(mode string) bool {
	switch mode {
	case model.ViewAnnualized, model.ViewCumulative, model.ViewCalendarYear:
		return true
	}
	return false
}

func (s *Service) record(ctx context.Context, rm *model.RenderModel, info *model.CompanyInfo, cagr calculator.CAGRResult) {
	snap := &recorder.QuerySnapshot{
		ID:         rm.QueryID,
		Symbol:     rm.Symbol,
		Found:      rm.Found,
		Volatility: rm.Volatility,
		Source:     sourceFrom(ctx),
		Timestamp:  rm.GeneratedAt,
	}
	if info != nil {
		snap.Name = info.LongName
	}
	snap.CAGR1Y, _ = cagr.Get("1Y")
	snap.CAGR3Y, _ = cagr.Get("3Y")
	snap.CAGR5Y, _ = cagr.Get("5Y")
	if err := s.Recorder.RecordQuery(snap); err != nil {
		s.logger.Error("record query", zap.String("symbol", rm.Symbol), zap.Error(err))
	}
}

func notAvailable(horizons []int) calculator.CAGRResult {
	out := make(calculator.CAGRResult, len(horizons))
	for i, y := range horizons {
		out[i] = calculator.HorizonReturn{Label: calculator.HorizonLabel(y), Years: y, Return: model.NotAvailable}
	}
	return out
}

func chartURL(symbol, kind string) string {
	return fmt.Sprintf("/api/chart/%s/%s.png", symbol, kind)
}

// summarize builds the header block. The 52-week range falls back to the
// price history when the provider did not report it.
func summarize(info *model.CompanyInfo, history *model.History) *model.CompanySummary {
	low, high := info.FiftyTwoWeekLow, info.FiftyTwoWeekHigh
	if (low == 0 || high == 0) && !history.Empty() {
		if h, l, err := calculator.Range52Week(history.Bars); err == nil {
			if low == 0 {
				low = l
			}
			if high == 0 {
				high = h
			}
		}
	}

	desc := info.Description
	if desc == "" {
		desc = MsgNoDescription
	}
	return &model.CompanySummary{
		Name:        info.LongName,
		Description: desc,
		Metrics: []model.SummaryMetric{
			{Label: "Sector", Value: orNA(info.Sector)},
			{Label: "Industry", Value: orNA(info.Industry)},
			{Label: "Market Cap", Value: marketCap(info.MarketCap)},
			{Label: "Current Price", Value: price(info.CurrentPrice)},
			{Label: "52W Low", Value: price(low)},
			{Label: "52W High", Value: price(high)},
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return model.NotAvailableText
	}
	return s
}

func marketCap(v int64) string {
	if v == 0 {
		return model.NotAvailableText
	}
	return "$" + humanize.Comma(v)
}

func price(v float64) string {
	if v == 0 {
		return model.NotAvailableText
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}
