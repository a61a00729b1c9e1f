package ratelimit

import (
	"context"
	"sync"
	"time"

	"stonkboard/internal/provider"
)

// MinInterval wraps an API and enforces a minimum time between calls.
// Concurrent calls wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	API      provider.API
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.API.Name() }

// gate reserves the next slot and sleeps until it opens.
func (m *MinInterval) gate(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	now := time.Now()
	next := m.last.Add(m.Interval)
	if next.Before(now) {
		next = now
	}
	m.last = next
	m.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	if err := m.gate(ctx); err != nil {
		return provider.SearchResponse{}, err
	}
	return m.API.Search(ctx, query)
}

func (m *MinInterval) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := m.gate(ctx); err != nil {
		return provider.Quote{}, err
	}
	return m.API.Quote(ctx, symbol)
}

func (m *MinInterval) Earnings(ctx context.Context, symbol string) (provider.EarningsResponse, error) {
	if err := m.gate(ctx); err != nil {
		return provider.EarningsResponse{}, err
	}
	return m.API.Earnings(ctx, symbol)
}
