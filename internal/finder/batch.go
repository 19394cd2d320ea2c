package finder

import (
	"time"

	"github.com/paramsearch/finder/internal/domain"
)

// Batch sizes by dataset tier. Extreme datasets run one job at a time so a
// single in-flight simulation bounds peak memory.
const (
	batchSizeExtreme   = 1
	batchSizeVeryLarge = 2
	batchSizeLarge     = 8
	batchSizeHeavy     = 4
	batchSizeDefault   = 16
)

// Compact-backtest thresholds: above this many bars the engine asks the
// backtester for the compact variant.
const (
	compactThresholdHeavy  = 50_000
	compactThresholdNormal = 500_000
)

// Cooperative yield budgets: how long the worker may run before checking
// for cancellation and flushing progress.
const (
	yieldBudgetHeavy  = 16 * time.Millisecond
	yieldBudgetNormal = 28 * time.Millisecond
)

// heavyTradeFloor marks a trade-count filter aggressive enough to imply
// per-bar bookkeeping in the backtester.
const heavyTradeFloor = 1000

// isHeavyConfig reports whether the run configuration adds per-bar work:
// non-zero snapshot/quality filters, an aggressive trade-count floor, or
// confirmation-strategy gating.
func isHeavyConfig(opts domain.FinderOptions, settings domain.BacktestSettings, confirmation bool) bool {
	if settings.SnapshotFilter != 0 || settings.QualityFilter != 0 {
		return true
	}
	if opts.TradeFilterEnabled && opts.MinTrades >= heavyTradeFloor {
		return true
	}
	return confirmation
}

// batchSizeFor picks the job batch size from the dataset tier and the
// configuration weight.
func batchSizeFor(tier domain.DataTier, heavy bool) int {
	switch tier {
	case domain.TierExtreme:
		return batchSizeExtreme
	case domain.TierVeryLarge:
		return batchSizeVeryLarge
	case domain.TierLarge:
		return batchSizeLarge
	}
	if heavy {
		return batchSizeHeavy
	}
	return batchSizeDefault
}

// useCompact decides the compact-vs-full backtest function for a bar count.
func useCompact(barCount int, heavy bool) bool {
	threshold := compactThresholdNormal
	if heavy {
		threshold = compactThresholdHeavy
	}
	return barCount >= threshold
}

// yieldBudgetFor returns the cooperative yield budget.
func yieldBudgetFor(heavy bool) time.Duration {
	if heavy {
		return yieldBudgetHeavy
	}
	return yieldBudgetNormal
}
