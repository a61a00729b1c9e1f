package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stonkboard/internal/provider/providertest"
)

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	tb := NewTokenBucket(0.001, 2)

	require.NoError(t, tb.Wait(t.Context()))
	require.NoError(t, tb.Wait(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestTokenBucketAPI_GatesEveryMethod(t *testing.T) {
	fake := &providertest.API{}
	api := &TokenBucketAPI{API: fake, TB: NewTokenBucket(0.001, 3)}

	_, err := api.Search(t.Context(), "GME")
	require.NoError(t, err)
	_, err = api.Quote(t.Context(), "GME")
	require.NoError(t, err)
	_, err = api.Earnings(t.Context(), "GME")
	require.NoError(t, err)

	// bucket is empty now; the next call must give up with the context
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = api.Quote(ctx, "GME")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, fake.Calls("Quote"), 1)
	require.Equal(t, "fake", api.Name())
}

func TestMinInterval_SpacesCalls(t *testing.T) {
	fake := &providertest.API{}
	api := &MinInterval{API: fake, Interval: 30 * time.Millisecond}

	start := time.Now()
	_, err := api.Quote(t.Context(), "A")
	require.NoError(t, err)
	_, err = api.Earnings(t.Context(), "A")
	require.NoError(t, err)

	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Equal(t, []string{"A"}, fake.Calls("Earnings"))
}

func TestMinInterval_Canceled(t *testing.T) {
	api := &MinInterval{API: &providertest.API{}, Interval: time.Hour}

	_, err := api.Search(t.Context(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = api.Search(ctx, "second")
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrap(t *testing.T) {
	fake := &providertest.API{}

	require.IsType(t, &TokenBucketAPI{}, Wrap(fake, 5, 2, time.Second))
	require.IsType(t, &MinInterval{}, Wrap(fake, 0, 0, time.Second))
	require.Same(t, fake, Wrap(fake, 0, 0, 0))
}
