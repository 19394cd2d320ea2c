// Package aggregate merges per-interval backtest results into one composite
// result for multi-timeframe runs. The merge is a statistics merge, not a
// trade-level merge: trade lists and equity curves are dropped.
package aggregate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/paramsearch/finder/internal/domain"
)

// MaxTimeframes caps the interval list; extra entries are ignored.
const MaxTimeframes = 5

// profitFactorCap replaces a non-finite per-interval profit factor (an
// all-winning interval) before averaging, so a single perfect interval does
// not propagate infinity into the composite.
const profitFactorCap = 4

// NormalizeIntervals deduplicates the requested intervals preserving their
// order, capped at MaxTimeframes.
func NormalizeIntervals(intervals []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, iv := range intervals {
		if iv == "" || seen[iv] {
			continue
		}
		seen[iv] = true
		out = append(out, iv)
		if len(out) == MaxTimeframes {
			break
		}
	}
	return out
}

// Merge aggregates per-interval results into one composite. With exactly
// one result it is passed through unchanged; with N the scalar metrics are
// averaged, except netProfitPercent which is recomputed from the averaged
// absolute net profit over starting capital so the percentage and currency
// views stay consistent.
func Merge(results []*domain.BacktestResult) *domain.BacktestResult {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	}

	n := len(results)
	netProfits := make([]float64, n)
	winRates := make([]float64, n)
	profitFactors := make([]float64, n)
	expectancies := make([]float64, n)
	avgTrades := make([]float64, n)
	maxDDs := make([]float64, n)
	maxDDPcts := make([]float64, n)
	totals := make([]float64, n)
	avgWins := make([]float64, n)
	avgLosses := make([]float64, n)
	sharpes := make([]float64, n)

	capital := 0.0
	for i, r := range results {
		netProfits[i] = r.NetProfit
		winRates[i] = r.WinRate
		profitFactors[i] = cappedPF(r.ProfitFactor)
		expectancies[i] = r.Expectancy
		avgTrades[i] = r.AvgTrade
		maxDDs[i] = r.MaxDrawdown
		maxDDPcts[i] = r.MaxDrawdownPercent
		totals[i] = float64(r.TotalTrades)
		avgWins[i] = r.AvgWin
		avgLosses[i] = r.AvgLoss
		sharpes[i] = r.SharpeRatio
		if capital == 0 && r.InitialCapital > 0 {
			capital = r.InitialCapital
		}
	}

	out := &domain.BacktestResult{
		InitialCapital:     capital,
		NetProfit:          stat.Mean(netProfits, nil),
		WinRate:            stat.Mean(winRates, nil),
		ProfitFactor:       stat.Mean(profitFactors, nil),
		Expectancy:         stat.Mean(expectancies, nil),
		AvgTrade:           stat.Mean(avgTrades, nil),
		MaxDrawdown:        stat.Mean(maxDDs, nil),
		MaxDrawdownPercent: stat.Mean(maxDDPcts, nil),
		AvgWin:             stat.Mean(avgWins, nil),
		AvgLoss:            stat.Mean(avgLosses, nil),
		SharpeRatio:        stat.Mean(sharpes, nil),
		Trades:             []domain.Trade{},
		EquityCurve:        []float64{},
	}

	// Percentage view recomputed from the averaged currency view when the
	// starting capital is known; otherwise fall back to averaging.
	if capital > 0 {
		out.NetProfitPercent = out.NetProfit / capital * 100
	} else {
		pcts := make([]float64, n)
		for i, r := range results {
			pcts[i] = r.NetProfitPercent
		}
		out.NetProfitPercent = stat.Mean(pcts, nil)
	}

	// Reconstruct integer trade counts from the averaged totals and win
	// rate.
	out.TotalTrades = int(math.Round(stat.Mean(totals, nil)))
	out.WinningTrades = int(math.Round(float64(out.TotalTrades) * out.WinRate / 100))
	out.LosingTrades = out.TotalTrades - out.WinningTrades

	return out
}

func cappedPF(pf float64) float64 {
	if math.IsInf(pf, 1) || math.IsNaN(pf) {
		return profitFactorCap
	}
	return pf
}
