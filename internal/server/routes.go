package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"StockTerminal/internal/cache"
	"StockTerminal/internal/chart"
	"StockTerminal/internal/collector"
	"StockTerminal/internal/dashboard"
	"StockTerminal/internal/export"
	"StockTerminal/internal/model"
	"StockTerminal/internal/recorder"
)

// SourceHTTP tags snapshots of queries made over HTTP.
const SourceHTTP = "http"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/query/{symbol}", s.handleQuery)
	mux.HandleFunc("GET /api/chart/{symbol}/candlestick.png", s.handleChart(chart.Candlestick))
	mux.HandleFunc("GET /api/chart/{symbol}/adjclose.png", s.handleChart(chart.AdjustedClose))
	mux.HandleFunc("GET /api/export/{file}", s.handleExport)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)
	mux.HandleFunc("DELETE /api/cache/{symbol}", s.handleCacheInvalidate)
	mux.HandleFunc("GET /api/recent", s.handleRecent)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.Collector.Provider.Name(),
		"cached":   s.Collector.Cached(),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := dashboard.WithSource(r.Context(), SourceHTTP)
	symbol := r.PathValue("symbol")

	var (
		rm  *model.RenderModel
		err error
	)
	if view := r.URL.Query().Get("view"); view != "" {
		rm, err = s.Dashboard.View(ctx, symbol, view)
	} else {
		rm, err = s.Dashboard.HandleQuery(ctx, symbol)
	}
	switch {
	case errors.Is(err, dashboard.ErrUnknownView), errors.Is(err, collector.ErrEmptySymbol):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("query", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	status := http.StatusOK
	if !rm.Found {
		status = http.StatusNotFound
	}
	writeJSON(w, status, rm)
}

type renderFunc func(io.Writer, *model.History) error

func (s *Server) handleChart(render renderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, ok := s.history(w, r, r.PathValue("symbol"))
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := render(&buf, history); err != nil {
			if errors.Is(err, chart.ErrNoAdjClose) || errors.Is(err, chart.ErrNoData) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			s.logger.Error("render chart", zap.String("symbol", history.Symbol), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "chart rendering failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "max-age=300")
		w.Write(buf.Bytes())
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		writeError(w, http.StatusNotFound, "unknown export format")
		return
	}
	symbol, format := file[:dot], strings.ToLower(file[dot+1:])

	var (
		write       func(io.Writer, *model.CompanyInfo) error
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		write, contentType, filename = s.Exporter.CSV, "text/csv", export.CSVFilename
	case "pdf":
		write, contentType, filename = s.Exporter.PDF, "application/pdf", export.PDFFilename
	default:
		writeError(w, http.StatusNotFound, "unknown export format")
		return
	}

	info, err := s.Collector.Info(r.Context(), symbol)
	if err != nil && !errors.Is(err, collector.ErrEmptySymbol) {
		s.logger.Warn("export info lookup", zap.String("symbol", symbol), zap.Error(err))
	}
	if !info.Found() {
		writeError(w, http.StatusNotFound, dashboard.MsgNotFound)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, info); err != nil {
		s.logger.Error("export", zap.String("symbol", symbol), zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.Collector.Clear()
	s.logger.Info("cache cleared", zap.String("request_id", requestID(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	symbol := cache.Key(r.PathValue("symbol"))
	s.Collector.Invalidate(symbol)
	s.logger.Info("cache entry invalidated", zap.String("symbol", symbol))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	snaps, err := s.Recorder.RecentQueries(limit)
	if err != nil {
		s.logger.Error("recent queries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if snaps == nil {
		snaps = []recorder.QuerySnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// history loads the price history for symbol, writing an error response
// when it is unavailable.
func (s *Server) history(w http.ResponseWriter, r *http.Request, symbol string) (*model.History, bool) {
	h, err := s.Collector.History(r.Context(), symbol)
	switch {
	case errors.Is(err, collector.ErrEmptySymbol):
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	case errors.Is(err, collector.ErrNotFound), errors.Is(err, context.Canceled):
		writeError(w, http.StatusNotFound, dashboard.MsgNoHistory)
		return nil, false
	case err != nil:
		s.logger.Warn("history lookup", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, dashboard.MsgNoHistory)
		return nil, false
	}
	return h, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
