package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEODHDServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		switch r.URL.Path {
		case "/eod/MSFT.US":
			assert.Equal(t, "2020-06-15", r.URL.Query().Get("from"))
			assert.Equal(t, "2025-06-15", r.URL.Query().Get("to"))
			w.Write([]byte(`[
				{"date":"2025-06-13","open":10,"high":12,"low":9,"close":11,"adjusted_close":10.5,"volume":1000},
				{"date":"2025-06-12","open":9,"high":10,"low":8,"close":10,"adjusted_close":9.5,"volume":900}]`))
		case "/eod/GAP.US":
			w.Write([]byte(`[
				{"date":"2025-06-11","open":1,"high":1,"low":1,"close":10,"adjusted_close":10,"volume":1},
				{"date":"2025-06-12","open":1,"high":1,"low":1,"close":11,"adjusted_close":null,"volume":1},
				{"date":"2025-06-13","open":1,"high":1,"low":1,"close":12,"adjusted_close":11.5,"volume":1},
				{"date":"2025-06-13","open":1,"high":1,"low":1,"close":13,"adjusted_close":12,"volume":1}]`))
		case "/eod/RAW.US":
			w.Write([]byte(`[{"date":"2025-06-13","open":1,"high":1,"low":1,"close":1,"volume":1}]`))
		case "/fundamentals/MSFT.US":
			w.Write([]byte(`{"General":{"Code":"MSFT","Name":"Microsoft Corporation","Exchange":"NASDAQ",
				"CurrencyCode":"USD","Sector":"Technology","Industry":"Software - Infrastructure",
				"Description":"Microsoft builds software."},
				"Highlights":{"MarketCapitalization":3100000000000,"PERatio":35.1},
				"Technicals":{"Beta":0.9,"52WeekHigh":468.35,"52WeekLow":344.79}}`))
		case "/real-time/MSFT.US":
			w.Write([]byte(`{"code":"MSFT.US","close":420.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`Ticker Not Found.`))
		}
	}))
}

func newTestEODHD(url string) *EODHDProvider {
	p := NewEODHDProvider("secret", "", WithBaseURL(url), WithRateLimit(100))
	p.now = func() time.Time { return time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC) }
	return p
}

func TestEODHDProvider_FetchHistory(t *testing.T) {
	srv := newEODHDServer(t)
	defer srv.Close()
	p := newTestEODHD(srv.URL)

	h, err := p.FetchHistory(context.Background(), "MSFT", 5)
	require.NoError(t, err)
	require.Len(t, h.Bars, 2)
	assert.True(t, h.HasAdjClose)
	assert.True(t, h.Bars[0].Time.Before(h.Bars[1].Time), "bars are sorted")
	assert.Equal(t, 9.5, h.Bars[0].AdjClose)
	assert.Equal(t, 11.0, h.Bars[1].Close)
}

func TestEODHDProvider_MissingAdjustedClose(t *testing.T) {
	srv := newEODHDServer(t)
	defer srv.Close()

	h, err := newTestEODHD(srv.URL).FetchHistory(context.Background(), "RAW", 5)
	require.NoError(t, err)
	assert.False(t, h.HasAdjClose)
}

func TestEODHDProvider_GapAndDuplicateDay(t *testing.T) {
	srv := newEODHDServer(t)
	defer srv.Close()

	h, err := newTestEODHD(srv.URL).FetchHistory(context.Background(), "GAP", 5)
	require.NoError(t, err)
	require.Len(t, h.Bars, 3, "one bar per day")
	assert.True(t, h.HasAdjClose)
	assert.True(t, h.Bars[1].AdjMissing)
	assert.Equal(t, 13.0, h.Bars[2].Close, "last bar of the day wins")

	_, values, ok := h.AdjCloses()
	require.True(t, ok)
	assert.Equal(t, []float64{10, 10, 12}, values)
}

func TestEODHDProvider_FetchInfo(t *testing.T) {
	srv := newEODHDServer(t)
	defer srv.Close()

	info, err := newTestEODHD(srv.URL).FetchInfo(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", info.Symbol)
	assert.Equal(t, "Microsoft Corporation", info.LongName)
	assert.Equal(t, int64(3100000000000), info.MarketCap)
	assert.Equal(t, 420.5, info.CurrentPrice)
	assert.Equal(t, 468.35, info.FiftyTwoWeekHigh)
	assert.Equal(t, 344.79, info.FiftyTwoWeekLow)
}

func TestEODHDProvider_NotFound(t *testing.T) {
	srv := newEODHDServer(t)
	defer srv.Close()
	p := newTestEODHD(srv.URL)

	_, err := p.FetchInfo(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.FetchHistory(context.Background(), "NOPE.LSE", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
