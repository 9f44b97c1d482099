package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"StockTerminal/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// When Infos or Histories is nil, any symbol gets generated data.
type MockProvider struct {
	Price     float64
	Infos     map[string]*model.CompanyInfo
	Histories map[string]*model.History
	Err       error

	infoCalls    atomic.Int32
	historyCalls atomic.Int32
}

func (m *MockProvider) Name() string { return "mock" }

// InfoCalls reports how many times FetchInfo ran.
func (m *MockProvider) InfoCalls() int { return int(m.infoCalls.Load()) }

// HistoryCalls reports how many times FetchHistory ran.
func (m *MockProvider) HistoryCalls() int { return int(m.historyCalls.Load()) }

func (m *MockProvider) FetchInfo(_ context.Context, symbol string) (*model.CompanyInfo, error) {
	m.infoCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Infos != nil {
		info, ok := m.Infos[symbol]
		if !ok {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNotFound)
		}
		return info, nil
	}
	return &model.CompanyInfo{
		Symbol:           symbol,
		LongName:         symbol + " Holdings Inc.",
		Sector:           "Technology",
		Industry:         "Software",
		MarketCap:        1_250_000_000,
		CurrentPrice:     m.Price,
		FiftyTwoWeekLow:  m.Price * 0.8,
		FiftyTwoWeekHigh: m.Price * 1.2,
		Description:      "Generated company used for development.",
		Currency:         "USD",
		FetchedAt:        time.Now(),
	}, nil
}

func (m *MockProvider) FetchHistory(_ context.Context, symbol string, years int) (*model.History, error) {
	m.historyCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Histories != nil {
		h, ok := m.Histories[symbol]
		if !ok {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNotFound)
		}
		return h, nil
	}
	return &model.History{
		Symbol:      symbol,
		Bars:        GenerateMockBars(m.Price, years*252, time.Now()),
		HasAdjClose: true,
		FetchedAt:   time.Now(),
	}, nil
}

// GenerateMockBars returns count weekday bars ending on or before end, with a
// slow upward drift around basePrice.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := count - 1; i >= 0; i-- {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:     day,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p * 0.98,
			Volume:   1000000,
		}
		day = day.AddDate(0, 0, -1)
	}
	return bars
}
