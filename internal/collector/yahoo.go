package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockTerminal/internal/model"
)

// DefaultYahooBaseURL is the Yahoo Finance public API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// DefaultYahooCookieURL sets the session cookie that a quoteSummary crumb is bound to.
const DefaultYahooCookieURL = "https://fc.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance chart and quoteSummary APIs.
type YahooProvider struct {
	opts      options
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	CookieURL string

	mu     sync.Mutex
	crumb  string
	cookie string
}

// NewYahooProvider creates a new Yahoo Finance provider. With a custom base
// URL the session cookie is requested from that host as well.
func NewYahooProvider(opts ...Option) *YahooProvider {
	o := buildOptions(DefaultYahooBaseURL, opts)
	cookieURL := DefaultYahooCookieURL
	if o.baseURL != DefaultYahooBaseURL {
		cookieURL = o.baseURL + "/"
	}
	return &YahooProvider{
		opts:      o,
		CookieURL: cookieURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

var yahooHeader = http.Header{"User-Agent": []string{"Mozilla/5.0"}}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Numeric arrays hold nulls for non-trading rows.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
				GMTOffset            int     `json:"gmtoffset"`
				LongName             string  `json:"longName"`
				ShortName            string  `json:"shortName"`
				Currency             string  `json:"currency"`
				FullExchangeName     string  `json:"fullExchangeName"`
				InstrumentType       string  `json:"instrumentType"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooRaw is Yahoo's {"raw": 1.5, "fmt": "1.50"} number wrapper.
type yahooRaw struct {
	Raw float64 `json:"raw"`
}

func (r *yahooRaw) value() float64 {
	if r == nil {
		return 0
	}
	return r.Raw
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName           string    `json:"longName"`
				ShortName          string    `json:"shortName"`
				Currency           string    `json:"currency"`
				ExchangeName       string    `json:"exchangeName"`
				QuoteType          string    `json:"quoteType"`
				RegularMarketPrice *yahooRaw `json:"regularMarketPrice"`
				MarketCap          *yahooRaw `json:"marketCap"`
			} `json:"price"`
			AssetProfile *struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				LongBusinessSummary string `json:"longBusinessSummary"`
				Website             string `json:"website"`
				Country             string `json:"country"`
				FullTimeEmployees   int64  `json:"fullTimeEmployees"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				FiftyTwoWeekLow  *yahooRaw `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHigh *yahooRaw `json:"fiftyTwoWeekHigh"`
				TrailingPE       *yahooRaw `json:"trailingPE"`
				DividendYield    *yahooRaw `json:"dividendYield"`
				Beta             *yahooRaw `json:"beta"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchInfo reads the price, assetProfile and summaryDetail modules. When
// quoteSummary rejects the session, name and price come from the chart meta.
func (p *YahooProvider) FetchInfo(ctx context.Context, symbol string) (*model.CompanyInfo, error) {
	info, err := p.fetchSummary(ctx, symbol)
	if hasStatus(err, http.StatusUnauthorized) {
		p.resetSession()
		p.opts.logger.Warn("yahoo quote summary unauthorized, falling back to chart meta",
			zap.String("symbol", symbol))
		return p.fetchMeta(ctx, symbol)
	}
	return info, err
}

// session returns the cached crumb and cookie, running the handshake once.
func (p *YahooProvider) session(ctx context.Context) (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.crumb != "" {
		return p.crumb, p.cookie, nil
	}

	// The cookie host answers 404 but still sets the cookie.
	_, cookies, err := getText(ctx, p.opts, p.CookieURL, yahooHeader)
	if len(cookies) == 0 {
		if err == nil {
			err = errors.New("no cookie set")
		}
		return "", "", fmt.Errorf("yahoo cookie: %w", err)
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	cookie := strings.Join(pairs, "; ")

	header := yahooHeader.Clone()
	header.Set("Cookie", cookie)
	crumb, _, err := getText(ctx, p.opts, p.opts.baseURL+"/v1/test/getcrumb", header)
	if err != nil {
		return "", "", fmt.Errorf("yahoo crumb: %w", err)
	}
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", "", errors.New("yahoo crumb: unexpected body")
	}
	p.crumb, p.cookie = crumb, cookie
	return crumb, cookie, nil
}

func (p *YahooProvider) resetSession() {
	p.mu.Lock()
	p.crumb, p.cookie = "", ""
	p.mu.Unlock()
}

func (p *YahooProvider) fetchSummary(ctx context.Context, symbol string) (*model.CompanyInfo, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,assetProfile,summaryDetail",
		p.opts.baseURL, url.PathEscape(p.yahooSymbol(symbol)))
	header := yahooHeader
	if crumb, cookie, err := p.session(ctx); err != nil {
		p.opts.logger.Debug("yahoo session unavailable", zap.Error(err))
	} else {
		endpoint += "&crumb=" + url.QueryEscape(crumb)
		header = yahooHeader.Clone()
		header.Set("Cookie", cookie)
	}

	var summary yahooSummary
	if err := getJSON(ctx, p.opts, endpoint, header, &summary); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo quote summary: %w", err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
	}

	res := summary.QuoteSummary.Result[0]
	info := &model.CompanyInfo{Symbol: symbol, FetchedAt: time.Now()}
	if pr := res.Price; pr != nil {
		info.LongName = pr.LongName
		info.Currency = pr.Currency
		info.CurrentPrice = pr.RegularMarketPrice.value()
		info.MarketCap = int64(pr.MarketCap.value())
		if pr.ShortName != "" {
			info.Extra = append(info.Extra, model.Field{Key: "shortName", Value: pr.ShortName})
		}
		if pr.ExchangeName != "" {
			info.Extra = append(info.Extra, model.Field{Key: "exchange", Value: pr.ExchangeName})
		}
		if pr.QuoteType != "" {
			info.Extra = append(info.Extra, model.Field{Key: "quoteType", Value: pr.QuoteType})
		}
	}
	if ap := res.AssetProfile; ap != nil {
		info.Sector = ap.Sector
		info.Industry = ap.Industry
		info.Description = ap.LongBusinessSummary
		if ap.Website != "" {
			info.Extra = append(info.Extra, model.Field{Key: "website", Value: ap.Website})
		}
		if ap.Country != "" {
			info.Extra = append(info.Extra, model.Field{Key: "country", Value: ap.Country})
		}
		if ap.FullTimeEmployees != 0 {
			info.Extra = append(info.Extra, model.Field{Key: "fullTimeEmployees", Value: ap.FullTimeEmployees})
		}
	}
	if sd := res.SummaryDetail; sd != nil {
		info.FiftyTwoWeekLow = sd.FiftyTwoWeekLow.value()
		info.FiftyTwoWeekHigh = sd.FiftyTwoWeekHigh.value()
		if sd.TrailingPE != nil {
			info.Extra = append(info.Extra, model.Field{Key: "trailingPE", Value: sd.TrailingPE.Raw})
		}
		if sd.DividendYield != nil {
			info.Extra = append(info.Extra, model.Field{Key: "dividendYield", Value: sd.DividendYield.Raw})
		}
		if sd.Beta != nil {
			info.Extra = append(info.Extra, model.Field{Key: "beta", Value: sd.Beta.Raw})
		}
	}
	return info, nil
}

// fetchMeta builds a reduced record from the chart endpoint, which needs no crumb.
func (p *YahooProvider) fetchMeta(ctx context.Context, symbol string) (*model.CompanyInfo, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d",
		p.opts.baseURL, url.PathEscape(p.yahooSymbol(symbol)))

	var chart yahooChart
	if err := getJSON(ctx, p.opts, endpoint, yahooHeader, &chart); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo chart meta: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
	}

	m := chart.Chart.Result[0].Meta
	info := &model.CompanyInfo{
		Symbol:           symbol,
		LongName:         m.LongName,
		Currency:         m.Currency,
		CurrentPrice:     m.RegularMarketPrice,
		FiftyTwoWeekLow:  m.FiftyTwoWeekLow,
		FiftyTwoWeekHigh: m.FiftyTwoWeekHigh,
		FetchedAt:        time.Now(),
	}
	if info.LongName == "" {
		info.LongName = m.ShortName
	}
	if m.ShortName != "" {
		info.Extra = append(info.Extra, model.Field{Key: "shortName", Value: m.ShortName})
	}
	if m.FullExchangeName != "" {
		info.Extra = append(info.Extra, model.Field{Key: "exchange", Value: m.FullExchangeName})
	}
	if m.InstrumentType != "" {
		info.Extra = append(info.Extra, model.Field{Key: "quoteType", Value: m.InstrumentType})
	}
	return info, nil
}

// FetchHistory reads unadjusted daily bars plus the adjusted close column.
func (p *YahooProvider) FetchHistory(ctx context.Context, symbol string, years int) (*model.History, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%dy&events=div%%2Csplit",
		p.opts.baseURL, url.PathEscape(p.yahooSymbol(symbol)), years)

	var chart yahooChart
	if err := getJSON(ctx, p.opts, endpoint, yahooHeader, &chart); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return &model.History{Symbol: symbol, FetchedAt: time.Now()}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart: no quote indicators")
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)

	h := &model.History{Symbol: symbol, HasAdjClose: len(adj) > 0, FetchedAt: time.Now()}
	h.Bars = make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // skip null bars (holidays etc.)
		}
		bar := model.OHLCV{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  *c,
			Volume: deref(at(quote.Volume, i)),
		}
		if a := at(adj, i); a != nil {
			bar.AdjClose = *a
		} else {
			bar.AdjMissing = true
		}
		h.Bars = append(h.Bars, bar)
	}
	h.Bars = normalizeBars(h.Bars)

	missing := countAdjMissing(h.Bars)
	switch {
	case !h.HasAdjClose || missing == len(h.Bars):
		h.HasAdjClose = false
		p.opts.logger.Warn("yahoo history without adjusted close", zap.String("symbol", symbol))
	case missing > 0:
		p.opts.logger.Debug("yahoo bars without adjusted close",
			zap.String("symbol", symbol), zap.Int("missing", missing))
	}
	return h, nil
}

func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", gmtOffset)
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
