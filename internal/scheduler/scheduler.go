package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockTerminal/internal/collector"
	"StockTerminal/internal/dashboard"
	"StockTerminal/internal/model"
	"StockTerminal/internal/notifier"
)

// Query sources recorded with each snapshot.
const (
	SourceTelegram = "telegram"
	SourceDigest   = "digest"
)

// sendRetries is how many times a failed notification is retried.
const sendRetries = 3

// Sender delivers a message to the configured chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Dashboard *dashboard.Service
	Notifier  Sender
	Watchlist []string
	Ctx       context.Context

	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new Scheduler. notifier may be nil when Telegram is disabled.
func NewScheduler(ctx context.Context, col *collector.Collector, svc *dashboard.Service, n Sender, watchlist []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Dashboard: svc,
		Notifier:  n,
		Watchlist: watchlist,
		Ctx:       ctx,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterAll registers the cache purge task and, when digestCron is set,
// the watchlist digest.
func (s *Scheduler) RegisterAll(purgeCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	if digestCron == "" {
		return nil
	}
	if s.Notifier == nil {
		return fmt.Errorf("register digest task: no notifier configured")
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunDigestNow executes the digest task immediately.
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) purgeTask() {
	if n := s.Collector.Purge(); n > 0 {
		s.logger.Info("expired cache entries purged", zap.Int("count", n), zap.Int("remaining", s.Collector.Cached()))
	}
}

func (s *Scheduler) digestTask() {
	s.logger.Info("running watchlist digest", zap.Strings("symbols", s.Watchlist))
	ctx := dashboard.WithSource(s.Ctx, SourceDigest)

	results := make([]*model.RenderModel, 0, len(s.Watchlist))
	for _, sym := range s.Watchlist {
		rm, err := s.Dashboard.HandleQuery(ctx, sym)
		if err != nil {
			s.logger.Error("digest query", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		results = append(results, rm)
	}
	if len(results) == 0 {
		return
	}
	s.trySend(notifier.FormatDigest(results, s.now()))
}

// HandleCommand processes a bot message and returns a reply. Anything that
// is not a command is treated as a ticker symbol.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "/clear":
		s.Collector.Clear()
		s.logger.Info("cache cleared from telegram")
		return "🧹 Cache cleared."
	case strings.HasPrefix(text, "/"), text == "":
		return notifier.HelpText
	}

	rm, err := s.Dashboard.HandleQuery(dashboard.WithSource(ctx, SourceTelegram), text)
	if err != nil {
		s.logger.Warn("telegram query", zap.String("text", text), zap.Error(err))
		return notifier.HelpText
	}
	return notifier.FormatRenderModel(rm)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
