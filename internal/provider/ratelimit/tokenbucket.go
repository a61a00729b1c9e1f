package ratelimit

import (
	"context"
	"sync"
	"time"

	"stonkboard/internal/provider"
)

// TokenBucket is a token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	if tokensPerSecond <= 0 {
		tokensPerSecond = 0.0000001
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:     tokensPerSecond,
		capacity: float64(burst),
		tokens:   float64(burst), // start full to allow an initial burst
		last:     time.Now(),
	}
}

// PerMinute builds a bucket refilling n tokens per minute.
func PerMinute(n, burst int) *TokenBucket {
	return NewTokenBucket(float64(n)/60.0, burst)
}

// Wait blocks until one token is available or ctx is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		// Refill
		elapsed := now.Sub(tb.last).Seconds()
		if elapsed > 0 {
			tb.tokens += elapsed * tb.rate
			if tb.tokens > tb.capacity {
				tb.tokens = tb.capacity
			}
			tb.last = now
		}
		if tb.tokens >= 1 {
			tb.tokens -= 1
			tb.mu.Unlock()
			return nil
		}
		deficit := 1 - tb.tokens
		tb.mu.Unlock()

		waitDur := time.Duration(deficit / tb.rate * float64(time.Second))
		if waitDur <= 0 {
			waitDur = time.Millisecond
		}
		timer := time.NewTimer(waitDur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokenBucketAPI wraps an API and gates every call with a token bucket.
type TokenBucketAPI struct {
	API provider.API
	TB  *TokenBucket
}

func (t *TokenBucketAPI) Name() string { return t.API.Name() }

func (t *TokenBucketAPI) wait(ctx context.Context) error {
	if t.TB == nil {
		return nil
	}
	return t.TB.Wait(ctx)
}

func (t *TokenBucketAPI) Search(ctx context.Context, query string) (provider.SearchResponse, error) {
	if err := t.wait(ctx); err != nil {
		return provider.SearchResponse{}, err
	}
	return t.API.Search(ctx, query)
}

func (t *TokenBucketAPI) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := t.wait(ctx); err != nil {
		return provider.Quote{}, err
	}
	return t.API.Quote(ctx, symbol)
}

func (t *TokenBucketAPI) Earnings(ctx context.Context, symbol string) (provider.EarningsResponse, error) {
	if err := t.wait(ctx); err != nil {
		return provider.EarningsResponse{}, err
	}
	return t.API.Earnings(ctx, symbol)
}

// Wrap applies the limiter the settings ask for: a token bucket when rpm is
// positive, otherwise a minimum interval, otherwise api unchanged.
func Wrap(api provider.API, rpm, burst int, minInterval time.Duration) provider.API {
	switch {
	case rpm > 0:
		return &TokenBucketAPI{API: api, TB: PerMinute(rpm, burst)}
	case minInterval > 0:
		return &MinInterval{API: api, Interval: minInterval}
	default:
		return api
	}
}
