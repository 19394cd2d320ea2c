package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsearch/finder/internal/domain"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) FetchData(_ context.Context, symbol, interval string) ([]domain.Bar, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Bar{{Time: 1, Close: 100}}, nil
}

func TestCachedSourceServesFromCacheWithinTTL(t *testing.T) {
	src := &countingSource{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	cached := NewCachedSource(src, 30*time.Second)
	cached.SetClock(clock)

	ctx := context.Background()
	_, err := cached.FetchData(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	_, err = cached.FetchData(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	hits, misses := cached.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachedSourceExpiresAfterTTL(t *testing.T) {
	src := &countingSource{}
	clock := &fakeClock{now: time.Unix(0, 0)}
	cached := NewCachedSource(src, 30*time.Second)
	cached.SetClock(clock)

	ctx := context.Background()
	_, _ = cached.FetchData(ctx, "BTCUSDT", "1h")
	clock.now = clock.now.Add(31 * time.Second)
	_, _ = cached.FetchData(ctx, "BTCUSDT", "1h")
	assert.Equal(t, 2, src.calls)
}

func TestCachedSourceKeyedBySymbolAndInterval(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedSource(src, 30*time.Second)

	ctx := context.Background()
	_, _ = cached.FetchData(ctx, "BTCUSDT", "1h")
	_, _ = cached.FetchData(ctx, "BTCUSDT", "4h")
	_, _ = cached.FetchData(ctx, "ETHUSDT", "1h")
	assert.Equal(t, 3, src.calls)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(src, 30*time.Second)

	ctx := context.Background()
	_, err := cached.FetchData(ctx, "BTCUSDT", "1h")
	require.Error(t, err)
	src.err = nil
	bars, err := cached.FetchData(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, 2, src.calls)
}
