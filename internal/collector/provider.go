package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"StockTerminal/internal/model"
)

// ErrNotFound is returned when the provider does not know the symbol.
var ErrNotFound = errors.New("symbol not found")

// Provider fetches company metadata and daily history from a market-data source.
type Provider interface {
	FetchInfo(ctx context.Context, symbol string) (*model.CompanyInfo, error)
	FetchHistory(ctx context.Context, symbol string, years int) (*model.History, error)
	Name() string
}

// APIError is a non-200 answer from a provider endpoint.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Endpoint, e.StatusCode, e.Body)
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// DefaultRateLimit is the default request rate (requests per second) against a provider.
const DefaultRateLimit = 5

type options struct {
	baseURL string
	proxy   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a provider.
type Option func(*options)

// WithBaseURL overrides the provider endpoint, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxyURL string) Option {
	return func(o *options) { o.proxy = proxyURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithRateLimit caps the request rate.
func WithRateLimit(requestsPerSecond int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = newHTTPClient(o.proxy, 30*time.Second)
	}
	return o
}

// getJSON performs a rate limited GET and decodes a 200 answer into result.
func getJSON(ctx context.Context, o options, endpoint string, header http.Header, result any) error {
	resp, body, err := get(ctx, o, endpoint, header)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: resp.Request.URL.Path, Body: truncate(string(body), 256)}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s: %w", resp.Request.URL.Path, err)
	}
	return nil
}

// getText performs a rate limited GET and returns the trimmed body of a 200
// answer. Cookies set by the response are returned even for other statuses.
func getText(ctx context.Context, o options, endpoint string, header http.Header) (string, []*http.Cookie, error) {
	resp, body, err := get(ctx, o, endpoint, header)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.Cookies(), &APIError{StatusCode: resp.StatusCode, Endpoint: resp.Request.URL.Path, Body: truncate(string(body), 256)}
	}
	return strings.TrimSpace(string(body)), resp.Cookies(), nil
}

// get waits for the limiter, sends the request and reads the whole body.
func get(ctx context.Context, o options, endpoint string, header http.Header) (*http.Response, []byte, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	o.logger.Debug("provider response",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return resp, body, nil
}

// normalizeBars orders bars by time and keeps the last bar of each calendar
// day, so a live intraday bar replaces the daily bar it duplicates.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func countAdjMissing(bars []model.OHLCV) int {
	n := 0
	for _, b := range bars {
		if b.AdjMissing {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func isNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
