package durability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsearch/finder/internal/domain"
)

func bars(n int) []domain.Bar {
	out := make([]domain.Bar, n)
	for i := range out {
		out[i] = domain.Bar{Time: int64(i) * 60_000, Close: 100}
	}
	return out
}

func defaultOpts() domain.DurabilityOptions {
	return domain.DurabilityOptions{Enabled: true, HoldoutRatio: 0.25, MinOOSTrades: 10, MinScore: 40}
}

func TestPlanPartitionIsContiguousAndNonOverlapping(t *testing.T) {
	data := bars(1000)
	ctx := Plan(data, defaultOpts())
	require.True(t, ctx.Enabled)

	assert.Equal(t, len(data), len(ctx.InSampleData)+len(ctx.OutOfSampleData))
	assert.GreaterOrEqual(t, len(ctx.InSampleData), 120)
	assert.GreaterOrEqual(t, len(ctx.OutOfSampleData), 60)
	assert.Equal(t, data[0].Time, ctx.InSampleStart)
	assert.Equal(t, data[len(data)-1].Time, ctx.OutOfSampleEnd)
	assert.Less(t, ctx.InSampleEnd, ctx.OutOfSampleStart, "segments must not overlap")
	// Contiguous: the holdout starts exactly one bar after in-sample ends.
	assert.Equal(t, ctx.InSampleEnd+60_000, ctx.OutOfSampleStart)
}

func TestPlanRatioClamped(t *testing.T) {
	data := bars(1000)

	tiny := defaultOpts()
	tiny.HoldoutRatio = 0.01
	ctx := Plan(data, tiny)
	require.True(t, ctx.Enabled)
	assert.Equal(t, 100, len(ctx.OutOfSampleData), "ratio clamps up to 10%%")

	huge := defaultOpts()
	huge.HoldoutRatio = 0.9
	ctx = Plan(data, huge)
	require.True(t, ctx.Enabled)
	assert.Equal(t, 500, len(ctx.OutOfSampleData), "ratio clamps down to 50%%")
}

func TestPlanDisabledOutsideSeriesBounds(t *testing.T) {
	assert.False(t, Plan(bars(199), defaultOpts()).Enabled, "too short")
	assert.True(t, Plan(bars(200), defaultOpts()).Enabled)
	long := make([]domain.Bar, maxSeriesBars+1)
	for i := range long {
		long[i].Time = int64(i)
	}
	assert.False(t, Plan(long, defaultOpts()).Enabled, "too long")
}

func TestPlanShortSeriesRespectsFloors(t *testing.T) {
	// 200 bars at 50% holdout would leave only 100 in-sample; the floor
	// pushes the split to 120/80.
	opts := defaultOpts()
	opts.HoldoutRatio = 0.5
	ctx := Plan(bars(200), opts)
	require.True(t, ctx.Enabled)
	assert.Equal(t, 120, len(ctx.InSampleData))
	assert.Equal(t, 80, len(ctx.OutOfSampleData))
}

func TestPartitionByTimestampStripsBarIndexes(t *testing.T) {
	ctx := Plan(bars(1000), defaultOpts())
	require.True(t, ctx.Enabled)

	signals := []domain.Signal{
		{Time: ctx.InSampleStart, Action: domain.SignalBuy, BarIndex: 0},
		{Time: ctx.InSampleEnd, Action: domain.SignalSell, BarIndex: 749},
		{Time: ctx.OutOfSampleStart, Action: domain.SignalBuy, BarIndex: 750},
		{Time: ctx.OutOfSampleEnd, Action: domain.SignalSell, BarIndex: 999},
	}
	is, oos := ctx.Partition(signals)
	require.Len(t, is, 2)
	require.Len(t, oos, 2)
	for _, s := range append(is, oos...) {
		assert.Equal(t, -1, s.BarIndex, "bar-index annotations must be stripped")
	}
}

func oosResult(trades int, netProfit, pf, sharpe, ddPct float64) *domain.BacktestResult {
	return &domain.BacktestResult{
		TotalTrades:        trades,
		NetProfit:          netProfit,
		NetProfitPercent:   netProfit / 100,
		ProfitFactor:       pf,
		SharpeRatio:        sharpe,
		MaxDrawdownPercent: ddPct,
	}
}

func TestScoreStrongOOSPasses(t *testing.T) {
	ctx := Plan(bars(1000), defaultOpts())
	is := oosResult(40, 2000, 2.0, 1.5, 10)
	oos := oosResult(20, 800, 2.2, 1.2, 8)

	m := ctx.Score(is, oos)
	assert.True(t, m.Passed)
	assert.Greater(t, m.Score, 40.0)
	assert.Equal(t, 20, m.OOSTrades)
}

func TestScorePenalizesLosingHoldout(t *testing.T) {
	ctx := Plan(bars(1000), defaultOpts())
	is := oosResult(40, 2000, 2.0, 1.5, 10)

	winning := ctx.Score(is, oosResult(20, 500, 1.5, 1.0, 10))
	losing := ctx.Score(is, oosResult(20, -500, 0.7, -0.5, 25))

	assert.False(t, losing.Passed)
	assert.Less(t, losing.Score, winning.Score)
	// Both sanity penalties apply: net profit <= 0 and profit factor < 1.
	assert.Less(t, losing.Score, winning.Score*failurePenalty*failurePenalty)
}

func TestScoreScaledByTradeSufficiency(t *testing.T) {
	ctx := Plan(bars(1000), defaultOpts())
	is := oosResult(40, 2000, 2.0, 1.5, 10)

	full := ctx.Score(is, oosResult(10, 500, 1.8, 1.0, 10))
	half := ctx.Score(is, oosResult(5, 500, 1.8, 1.0, 10))

	assert.False(t, half.Passed, "below the trade floor")
	assert.InDelta(t, full.Score/2, half.Score, 1e-9)
}

func TestScoreCapsInfiniteProfitFactor(t *testing.T) {
	ctx := Plan(bars(1000), defaultOpts())
	is := oosResult(40, 2000, 2.0, 1.5, 10)
	oos := oosResult(20, 800, 0, 1.2, 8)
	oos.ProfitFactor = 1e18

	m := ctx.Score(is, oos)
	assert.Equal(t, 1000.0, m.OOSProfitFactor)
	assert.False(t, m.Score != m.Score, "score must not be NaN")
}
