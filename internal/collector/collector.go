package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockTerminal/internal/cache"
	"StockTerminal/internal/model"
)

// ErrEmptySymbol is returned for a blank ticker.
var ErrEmptySymbol = errors.New("empty symbol")

// HistoryYears is the trailing window fetched for every symbol.
const HistoryYears = 5

// Collector fetches through a Provider and remembers the last result per symbol.
// Only successful fetches are cached; a "not found" record is a successful fetch.
type Collector struct {
	Provider Provider
	Years    int

	info    *cache.Cache[*model.CompanyInfo]
	history *cache.Cache[*model.History]
	logger  *zap.Logger
}

// NewCollector creates a Collector whose cache entries live for ttl (0 = until cleared).
func NewCollector(provider Provider, ttl time.Duration, logger *zap.Logger, opts ...cache.Option) *Collector {
	return &Collector{
		Provider: provider,
		Years:    HistoryYears,
		info:     cache.New[*model.CompanyInfo](ttl, opts...),
		history:  cache.New[*model.History](ttl, opts...),
		logger:   logger,
	}
}

// Info returns the metadata record for symbol.
func (c *Collector) Info(ctx context.Context, symbol string) (*model.CompanyInfo, error) {
	key := cache.Key(symbol)
	if key == "" {
		return nil, ErrEmptySymbol
	}
	if info, ok := c.info.Get(key); ok {
		return info, nil
	}
	info, err := c.Provider.FetchInfo(ctx, key)
	if errors.Is(err, ErrNotFound) {
		info, err = &model.CompanyInfo{Symbol: key, FetchedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch info %s: %w", key, err)
	}
	c.info.Set(key, info)
	c.logger.Debug("info fetched", zap.String("symbol", key), zap.String("provider", c.Provider.Name()))
	return info, nil
}

// History returns the trailing daily history for symbol.
func (c *Collector) History(ctx context.Context, symbol string) (*model.History, error) {
	key := cache.Key(symbol)
	if key == "" {
		return nil, ErrEmptySymbol
	}
	if h, ok := c.history.Get(key); ok {
		return h, nil
	}
	h, err := c.Provider.FetchHistory(ctx, key, c.Years)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", key, err)
	}
	c.history.Set(key, h)
	c.logger.Debug("history fetched",
		zap.String("symbol", key),
		zap.Int("bars", len(h.Bars)),
		zap.Bool("adj_close", h.HasAdjClose))
	return h, nil
}

// Invalidate forgets everything cached for symbol.
func (c *Collector) Invalidate(symbol string) {
	c.info.Invalidate(symbol)
	c.history.Invalidate(symbol)
}

// Clear forgets every cached symbol.
func (c *Collector) Clear() {
	c.info.Clear()
	c.history.Clear()
}

// Purge drops expired entries and returns how many were removed.
func (c *Collector) Purge() int {
	return c.info.Purge() + c.history.Purge()
}

// Cached returns the number of cached records.
func (c *Collector) Cached() int {
	return c.info.Len() + c.history.Len()
}
