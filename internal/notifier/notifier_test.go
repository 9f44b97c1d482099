package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockTerminal/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	t := NewTelegramNotifier("TOKEN", "42", "", zap.NewNop())
	t.APIBase = url
	return t
}

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry_RecoversFromServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).sendWithBackOff(context.Background(), "x", 3, &backoff.ZeroBackOff{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).sendWithBackOff(context.Background(), "x", 2, &backoff.ZeroBackOff{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendWithRetry_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).sendWithBackOff(context.Background(), "x", 5, &backoff.ZeroBackOff{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStartPolling_RepliesInOriginChat(t *testing.T) {
	var (
		mu      sync.Mutex
		polls   int
		replies []map[string]any
	)
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			polls++
			if polls == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":" aapl ","chat":{"id":1001}}},
					{"update_id":8,"message":{"text":"","chat":{"id":1001}}}
				]}`))
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			replies = append(replies, payload)
			close(done)
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, text string) string {
			return "got " + text
		})
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, replies, 1)
	assert.Equal(t, "1001", replies[0]["chat_id"])
	assert.Equal(t, "got aapl", replies[0]["text"])
}

func sampleModel() *model.RenderModel {
	return &model.RenderModel{
		Symbol: "AAPL",
		Found:  true,
		Company: &model.CompanySummary{
			Name: "Apple & Co",
			Metrics: []model.SummaryMetric{
				{Label: "Sector", Value: "Technology"},
				{Label: "Market Cap", Value: "$1,000"},
			},
		},
		Returns: []model.ReturnTable{{
			View:    model.ViewAnnualized,
			Columns: []string{"Annualized Return (%)"},
			Rows: []model.ReturnRow{
				{Label: "1Y", Values: []model.Metric{model.Percent(12.5)}},
				{Label: "3Y", Values: []model.Metric{model.NotAvailable}},
			},
		}},
		Volatility: model.Percent(27.31),
		Warnings:   []string{"Adjusted close data not available for this symbol."},
	}
}

func TestFormatRenderModel(t *testing.T) {
	msg := FormatRenderModel(sampleModel())
	assert.Contains(t, msg, "<b>Apple &amp; Co</b> (AAPL)")
	assert.Contains(t, msg, "Sector: Technology")
	assert.Contains(t, msg, "1Y: 12.50%")
	assert.Contains(t, msg, "3Y: N/A")
	assert.Contains(t, msg, "Annual Volatility: 27.31%")
	assert.Contains(t, msg, "<i>Adjusted close data not available for this symbol.</i>")
}

func TestFormatRenderModel_NotFound(t *testing.T) {
	msg := FormatRenderModel(&model.RenderModel{Symbol: "ZZZ", Message: "Incorrect symbol, please try again."})
	assert.Equal(t, "❌ Incorrect symbol, please try again. (ZZZ)", msg)
}

func TestFormatDigest(t *testing.T) {
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	msg := FormatDigest([]*model.RenderModel{sampleModel(), {Symbol: "ZZZ"}}, at)
	assert.Contains(t, msg, "2025-06-02")
	assert.Contains(t, msg, "<b>AAPL</b>  1Y 12.50% | vol 27.31%")
	assert.Contains(t, msg, "ZZZ: not found")
}
