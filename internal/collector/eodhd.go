package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"StockTerminal/internal/model"
)

// DefaultEODHDBaseURL is the EODHD API root.
const DefaultEODHDBaseURL = "https://eodhd.com/api"

// EODHDProvider implements Provider using the EODHD end-of-day and fundamentals APIs.
type EODHDProvider struct {
	opts     options
	apiKey   string
	exchange string
	now      func() time.Time
}

// NewEODHDProvider creates a provider. Symbols without an exchange suffix get
// ".<exchange>" appended, e.g. AAPL becomes AAPL.US.
func NewEODHDProvider(apiKey, exchange string, opts ...Option) *EODHDProvider {
	if exchange == "" {
		exchange = "US"
	}
	return &EODHDProvider{
		opts:     buildOptions(DefaultEODHDBaseURL, opts),
		apiKey:   apiKey,
		exchange: exchange,
		now:      time.Now,
	}
}

func (p *EODHDProvider) Name() string { return "eodhd" }

func (p *EODHDProvider) ticker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + p.exchange
}

func (p *EODHDProvider) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", p.apiKey)
	params.Set("fmt", "json")
	return fmt.Sprintf("%s%s?%s", p.opts.baseURL, path, params.Encode())
}

// eodBar is the JSON shape of one /eod row. AdjustedClose is a pointer so a
// missing column is told apart from a zero price.
type eodBar struct {
	Date          string   `json:"date"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Close         float64  `json:"close"`
	AdjustedClose *float64 `json:"adjusted_close"`
	Volume        float64  `json:"volume"`
}

type eodFundamentals struct {
	General *struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Exchange     string `json:"Exchange"`
		CurrencyCode string `json:"CurrencyCode"`
		CountryName  string `json:"CountryName"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		Description  string `json:"Description"`
		WebURL       string `json:"WebURL"`
	} `json:"General"`
	Highlights *struct {
		MarketCapitalization float64 `json:"MarketCapitalization"`
		PERatio              float64 `json:"PERatio"`
		DividendYield        float64 `json:"DividendYield"`
	} `json:"Highlights"`
	Technicals *struct {
		Beta         float64 `json:"Beta"`
		WeekHigh52   float64 `json:"52WeekHigh"`
		WeekLow52    float64 `json:"52WeekLow"`
		MovingAvg200 float64 `json:"200DayMA"`
	} `json:"Technicals"`
}

type eodRealTime struct {
	Close any `json:"close"`
}

// FetchInfo reads the fundamentals record and the real-time price.
func (p *EODHDProvider) FetchInfo(ctx context.Context, symbol string) (*model.CompanyInfo, error) {
	ticker := p.ticker(symbol)

	var f eodFundamentals
	if err := getJSON(ctx, p.opts, p.endpoint("/fundamentals/"+url.PathEscape(ticker), nil), nil, &f); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("eodhd %s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("eodhd fundamentals: %w", err)
	}
	if f.General == nil {
		return nil, fmt.Errorf("eodhd %s: %w", ticker, ErrNotFound)
	}

	g := f.General
	info := &model.CompanyInfo{
		Symbol:      symbol,
		LongName:    g.Name,
		Sector:      g.Sector,
		Industry:    g.Industry,
		Description: g.Description,
		Currency:    g.CurrencyCode,
		FetchedAt:   p.now(),
	}
	if g.Exchange != "" {
		info.Extra = append(info.Extra, model.Field{Key: "exchange", Value: g.Exchange})
	}
	if g.CountryName != "" {
		info.Extra = append(info.Extra, model.Field{Key: "country", Value: g.CountryName})
	}
	if g.WebURL != "" {
		info.Extra = append(info.Extra, model.Field{Key: "website", Value: g.WebURL})
	}
	if hl := f.Highlights; hl != nil {
		info.MarketCap = int64(hl.MarketCapitalization)
		if hl.PERatio != 0 {
			info.Extra = append(info.Extra, model.Field{Key: "trailingPE", Value: hl.PERatio})
		}
		if hl.DividendYield != 0 {
			info.Extra = append(info.Extra, model.Field{Key: "dividendYield", Value: hl.DividendYield})
		}
	}
	if t := f.Technicals; t != nil {
		info.FiftyTwoWeekHigh = t.WeekHigh52
		info.FiftyTwoWeekLow = t.WeekLow52
		if t.Beta != 0 {
			info.Extra = append(info.Extra, model.Field{Key: "beta", Value: t.Beta})
		}
	}

	var rt eodRealTime
	if err := getJSON(ctx, p.opts, p.endpoint("/real-time/"+url.PathEscape(ticker), nil), nil, &rt); err != nil {
		p.opts.logger.Warn("eodhd real-time price unavailable", zap.String("symbol", ticker), zap.Error(err))
	} else if price, ok := rt.Close.(float64); ok {
		info.CurrentPrice = price
	}
	return info, nil
}

// FetchHistory reads daily bars for the trailing window of the given years.
func (p *EODHDProvider) FetchHistory(ctx context.Context, symbol string, years int) (*model.History, error) {
	ticker := p.ticker(symbol)
	to := p.now()
	params := url.Values{}
	params.Set("period", "d")
	params.Set("from", to.AddDate(-years, 0, 0).Format(time.DateOnly))
	params.Set("to", to.Format(time.DateOnly))

	var rows []eodBar
	if err := getJSON(ctx, p.opts, p.endpoint("/eod/"+url.PathEscape(ticker), params), nil, &rows); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("eodhd %s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("eodhd eod: %w", err)
	}

	h := &model.History{Symbol: symbol, FetchedAt: to}
	h.Bars = make([]model.OHLCV, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			p.opts.logger.Warn("eodhd skipping row", zap.String("date", r.Date), zap.Error(err))
			continue
		}
		bar := model.OHLCV{Time: d, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume}
		if r.AdjustedClose != nil {
			bar.AdjClose = *r.AdjustedClose
		} else {
			bar.AdjMissing = true
		}
		h.Bars = append(h.Bars, bar)
	}
	h.Bars = normalizeBars(h.Bars)
	h.HasAdjClose = len(h.Bars) > countAdjMissing(h.Bars)
	return h, nil
}
