// Package durability implements the walk-forward out-of-sample check: a
// parameter set selected on the in-sample segment is scored on the holdout
// it never saw.
package durability

import (
	"math"

	"github.com/paramsearch/finder/internal/domain"
)

// Split floors. Series outside [minSeriesBars, maxSeriesBars] disable
// durability for the run instead of failing it: too short means the holdout
// is statistically meaningless, too long means the extra backtests are not
// worth the compute.
const (
	minInSampleBars    = 120
	minOutOfSampleBars = 60
	minSeriesBars      = 200
	maxSeriesBars      = 500_000
)

// Holdout ratio bounds.
const (
	minHoldoutRatio = 0.10
	maxHoldoutRatio = 0.50
)

// Empirical score weights. These are tuning values carried from live use;
// they are constants by design, not derived quantities.
const (
	weightProfitFactor = 0.35
	weightNetProfit    = 0.25
	weightDrawdown     = 0.15
	weightConsistency  = 0.15
	weightSharpe       = 0.10
)

// Sub-score transform bounds: each raw metric maps linearly into [0,1]
// between these anchors.
const (
	pfScoreFloor   = 0.5  // profit factor at or below scores 0
	pfScoreCeil    = 2.5  // profit factor at or above scores 1
	npScoreSpanPct = 20.0 // +-1 span of net profit percent around 0
	ddScoreCeilPct = 30.0 // drawdown percent at or above scores 0
	sharpeCeil     = 2.0  // Sharpe at or above scores 1
)

const failurePenalty = 0.75 // applied per failed sanity condition

// Context is a planned in-sample/out-of-sample split of a bar series. The
// segments are contiguous, non-overlapping, and together cover the series.
type Context struct {
	Enabled bool

	InSampleData    []domain.Bar
	OutOfSampleData []domain.Bar

	InSampleStart    int64
	InSampleEnd      int64
	OutOfSampleStart int64
	OutOfSampleEnd   int64

	MinOOSTrades int
	MinScore     float64
}

// Plan splits data for walk-forward evaluation. The holdout ratio is
// clamped to [0.10, 0.50] and the split index respects both segment floors;
// a series that cannot satisfy them yields a disabled context.
func Plan(data []domain.Bar, opts domain.DurabilityOptions) Context {
	n := len(data)
	if n < minSeriesBars || n > maxSeriesBars {
		return Context{}
	}

	ratio := opts.HoldoutRatio
	if ratio < minHoldoutRatio {
		ratio = minHoldoutRatio
	}
	if ratio > maxHoldoutRatio {
		ratio = maxHoldoutRatio
	}

	split := n - int(math.Round(float64(n)*ratio))
	if split < minInSampleBars {
		split = minInSampleBars
	}
	if n-split < minOutOfSampleBars {
		split = n - minOutOfSampleBars
	}
	if split < minInSampleBars || n-split < minOutOfSampleBars {
		return Context{}
	}

	is := data[:split]
	oos := data[split:]
	return Context{
		Enabled:          true,
		InSampleData:     is,
		OutOfSampleData:  oos,
		InSampleStart:    is[0].Time,
		InSampleEnd:      is[len(is)-1].Time,
		OutOfSampleStart: oos[0].Time,
		OutOfSampleEnd:   oos[len(oos)-1].Time,
		MinOOSTrades:     opts.MinOOSTrades,
		MinScore:         opts.MinScore,
	}
}

// Partition assigns signals to the in-sample and out-of-sample segments by
// timestamp range. Bar-index annotations are stripped: slicing the series
// invalidates them.
func (c Context) Partition(signals []domain.Signal) (inSample, outOfSample []domain.Signal) {
	for _, s := range signals {
		s.BarIndex = -1
		switch {
		case s.Time >= c.InSampleStart && s.Time <= c.InSampleEnd:
			inSample = append(inSample, s)
		case s.Time >= c.OutOfSampleStart && s.Time <= c.OutOfSampleEnd:
			outOfSample = append(outOfSample, s)
		}
	}
	return inSample, outOfSample
}

// Score blends the out-of-sample metrics into a 0-100 robustness score and
// evaluates the pass criteria.
func (c Context) Score(inSample, outOfSample *domain.BacktestResult) *domain.RobustMetrics {
	oosPF := finite(outOfSample.ProfitFactor)
	isPF := finite(inSample.ProfitFactor)

	pfScore := clamp01((oosPF - pfScoreFloor) / (pfScoreCeil - pfScoreFloor))
	npScore := clamp01(outOfSample.NetProfitPercent/npScoreSpanPct + 0.5)
	ddScore := clamp01(1 - outOfSample.MaxDrawdownPercent/ddScoreCeilPct)
	consistency := 0.0
	if isPF > 0 {
		consistency = clamp01(oosPF / isPF)
	}
	sharpeScore := clamp01(outOfSample.SharpeRatio / sharpeCeil)

	score := 100 * (weightProfitFactor*pfScore +
		weightNetProfit*npScore +
		weightDrawdown*ddScore +
		weightConsistency*consistency +
		weightSharpe*sharpeScore)

	// Scale by trade sufficiency, then penalize outright failures.
	if c.MinOOSTrades > 0 {
		score *= math.Min(1, float64(outOfSample.TotalTrades)/float64(c.MinOOSTrades))
	}
	if outOfSample.NetProfit <= 0 {
		score *= failurePenalty
	}
	if oosPF < 1 {
		score *= failurePenalty
	}

	passed := outOfSample.TotalTrades >= c.MinOOSTrades &&
		score >= c.MinScore &&
		outOfSample.NetProfit >= 0 &&
		oosPF >= 1

	return &domain.RobustMetrics{
		Score:                score,
		Passed:               passed,
		OOSTrades:            outOfSample.TotalTrades,
		OOSNetProfit:         outOfSample.NetProfit,
		OOSProfitFactor:      oosPF,
		InSampleProfitFactor: isPF,
	}
}

// finite caps an infinite profit factor (no losing trades) so the score
// arithmetic stays finite.
func finite(v float64) float64 {
	if math.IsInf(v, 1) || v > 1000 {
		return 1000
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
