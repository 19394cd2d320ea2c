package data

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paramsearch/finder/internal/domain"
)

// DefaultTTL is how long a fetched dataset stays valid. Thirty seconds is
// enough to cover repeated finder runs on the same symbol without serving
// stale bars during live use.
const DefaultTTL = 30 * time.Second

type cacheEntry struct {
	bars    []domain.Bar
	expires time.Time
}

// CachedSource wraps a Source with a TTL cache keyed by symbol+interval.
// Entries hold bar slices by reference; expiry is checked on read so no
// cleanup goroutine is needed for the handful of keys a run touches.
type CachedSource struct {
	mu      sync.Mutex
	source  Source
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   Clock

	hits   int64
	misses int64
}

// NewCachedSource wraps source with a TTL cache. A non-positive ttl falls
// back to DefaultTTL.
func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		source:  source,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   RealClock{},
	}
}

// SetClock sets the clock implementation (for testing).
func (c *CachedSource) SetClock(clock Clock) { c.clock = clock }

// FetchData returns the cached dataset for symbol+interval when fresh,
// otherwise fetches through the underlying source and caches the result.
func (c *CachedSource) FetchData(ctx context.Context, symbol, interval string) ([]domain.Bar, error) {
	key := symbol + "|" + interval

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.clock.Now().Before(entry.expires) {
		c.hits++
		c.mu.Unlock()
		return entry.bars, nil
	}
	c.misses++
	c.mu.Unlock()

	bars, err := c.source.FetchData(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{bars: bars, expires: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()

	log.Debug().Str("symbol", symbol).Str("interval", interval).Int("bars", len(bars)).Msg("dataset cached")
	return bars, nil
}

// Stats returns cache hit and miss counts.
func (c *CachedSource) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
