// Package data defines the bar-series source consumed by the finder and a
// time-boxed cache that keeps repeated runs on the same symbol from
// re-fetching multi-million-bar datasets.
package data

import (
	"context"
	"time"

	"github.com/paramsearch/finder/internal/domain"
)

// Source supplies OHLCV bars for a symbol and interval. Implementations
// live outside this module (network clients, file readers); the finder only
// consumes the interface.
type Source interface {
	FetchData(ctx context.Context, symbol, interval string) ([]domain.Bar, error)
}

// Clock is injectable for testing time-dependent code.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using real time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
