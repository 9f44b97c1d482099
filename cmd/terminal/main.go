package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"StockTerminal/internal/collector"
	"StockTerminal/internal/config"
	"StockTerminal/internal/dashboard"
	"StockTerminal/internal/export"
	"StockTerminal/internal/notifier"
	"StockTerminal/internal/recorder"
	"StockTerminal/internal/scheduler"
	"StockTerminal/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("stock terminal stopped with error", zap.Error(err))
	}
	logger.Info("stock terminal stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("stock terminal starting", zap.String("provider", cfg.DataSource.Provider))

	provider := newProvider(cfg, logger)
	col := collector.NewCollector(provider, cfg.CacheTTL(), logger)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	svc := dashboard.NewService(col, rec, logger)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, col, svc, sender, cfg.Schedule.Watchlist, logger)
	if err := sched.RegisterAll(cfg.Schedule.CachePurgeCron, cfg.Schedule.DigestCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(cfg.Server.Addr, svc, export.New(logger), rec, logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gCtx, sched.HandleCommand)
			return nil
		})
		logger.Info("telegram polling started")
	}

	logger.Info("stock terminal is running, press Ctrl+C to stop")
	return g.Wait()
}

func newProvider(cfg *config.Config, logger *zap.Logger) collector.Provider {
	opts := []collector.Option{
		collector.WithProxy(cfg.Proxy),
		collector.WithRateLimit(cfg.DataSource.RateLimit),
		collector.WithLogger(logger),
	}
	if cfg.DataSource.BaseURL != "" {
		opts = append(opts, collector.WithBaseURL(cfg.DataSource.BaseURL))
	}

	switch cfg.DataSource.Provider {
	case "eodhd":
		return collector.NewEODHDProvider(cfg.DataSource.APIKey, cfg.DataSource.Exchange, opts...)
	case "mock":
		return &collector.MockProvider{Price: cfg.DataSource.MockPrice}
	default:
		return collector.NewYahooProvider(opts...)
	}
}

func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return zc.Build()
}
