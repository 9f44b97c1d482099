// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"StockTerminal/internal/collector"
	"StockTerminal/internal/dashboard"
	"StockTerminal/internal/export"
	"StockTerminal/internal/recorder"
)

// Server is the HTTP surface of the terminal.
type Server struct {
	Dashboard *dashboard.Service
	Collector *collector.Collector
	Exporter  *export.Exporter
	Recorder  recorder.Recorder

	logger *zap.Logger
	server *http.Server
}

// New creates a Server listening on addr.
func New(addr string, svc *dashboard.Service, exp *export.Exporter, rec recorder.Recorder, logger *zap.Logger) *Server {
	s := &Server{
		Dashboard: svc,
		Collector: svc.Collector,
		Exporter:  exp,
		Recorder:  rec,
		logger:    logger,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped with middleware.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.routes())
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
