package finder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paramsearch/finder/internal/domain"
)

func TestBatchSizeByTier(t *testing.T) {
	cases := []struct {
		bars  int
		heavy bool
		want  int
	}{
		{bars: 1000, heavy: false, want: 16},
		{bars: 1000, heavy: true, want: 4},
		{bars: 499_999, heavy: true, want: 4},
		{bars: 500_000, heavy: false, want: 8},
		{bars: 500_000, heavy: true, want: 8}, // tier dominates config weight
		{bars: 2_000_000, heavy: false, want: 2},
		{bars: 4_000_000, heavy: false, want: 1},
	}
	for _, tc := range cases {
		got := batchSizeFor(domain.TierFor(tc.bars), tc.heavy)
		assert.Equal(t, tc.want, got, "bars=%d heavy=%v", tc.bars, tc.heavy)
	}
}

func TestUseCompactThresholds(t *testing.T) {
	assert.False(t, useCompact(49_999, true))
	assert.True(t, useCompact(50_000, true))
	assert.False(t, useCompact(499_999, false))
	assert.True(t, useCompact(500_000, false))
}

func TestIsHeavyConfig(t *testing.T) {
	opts := domain.DefaultFinderOptions()

	assert.False(t, isHeavyConfig(opts, domain.BacktestSettings{}, false))
	assert.True(t, isHeavyConfig(opts, domain.BacktestSettings{SnapshotFilter: 2}, false))
	assert.True(t, isHeavyConfig(opts, domain.BacktestSettings{QualityFilter: 1}, false))
	assert.True(t, isHeavyConfig(opts, domain.BacktestSettings{}, true), "confirmation gating adds per-bar work")

	filtered := opts
	filtered.TradeFilterEnabled = true
	filtered.MinTrades = 1000
	assert.True(t, isHeavyConfig(filtered, domain.BacktestSettings{}, false))

	relaxed := opts
	relaxed.TradeFilterEnabled = true
	relaxed.MinTrades = 10
	assert.False(t, isHeavyConfig(relaxed, domain.BacktestSettings{}, false))
}

func TestYieldBudget(t *testing.T) {
	assert.Less(t, yieldBudgetFor(true), yieldBudgetFor(false), "heavy configs yield more often")
}
