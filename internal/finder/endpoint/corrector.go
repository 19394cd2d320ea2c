// Package endpoint removes the forced-liquidation artifact from backtest
// results. Trades whose exit lands on the dataset's final bar only closed
// because the simulation ran out of data, and they bias every derived
// metric of a parameter set that tends to be mid-trade at the boundary.
package endpoint

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/paramsearch/finder/internal/domain"
)

// Correction is the outcome of an endpoint-bias pass.
type Correction struct {
	Result        *domain.BacktestResult
	Adjusted      bool
	RemovedTrades int
}

// Correct drops every trade whose exit is not strictly before lastBarTime
// and recomputes the derived metrics from the filtered set. When nothing is
// removed the original result is returned unchanged, making the operation
// idempotent on already-clean results.
func Correct(result *domain.BacktestResult, lastBarTime int64) Correction {
	if result == nil || len(result.Trades) == 0 {
		return Correction{Result: result}
	}

	kept := make([]domain.Trade, 0, len(result.Trades))
	for _, tr := range result.Trades {
		if tr.ExitTime < lastBarTime {
			kept = append(kept, tr)
		}
	}
	removed := len(result.Trades) - len(kept)
	if removed == 0 {
		return Correction{Result: result}
	}

	out := recompute(result, kept)
	return Correction{Result: out, Adjusted: true, RemovedTrades: removed}
}

// recompute rebuilds the trade-derived metrics from kept. Drawdown and the
// equity curve are carried over: they describe the path the simulation
// actually took, not the closed-trade ledger.
func recompute(src *domain.BacktestResult, kept []domain.Trade) *domain.BacktestResult {
	out := src.Clone()
	out.Trades = kept
	out.TotalTrades = len(kept)

	var netProfit, grossProfit, grossLoss float64
	var wins, losses int
	returns := make([]float64, 0, len(kept))
	for _, tr := range kept {
		netProfit += tr.ProfitLoss
		returns = append(returns, tr.ProfitLossPercent)
		if tr.ProfitLoss > 0 {
			wins++
			grossProfit += tr.ProfitLoss
		} else {
			losses++
			grossLoss += -tr.ProfitLoss
		}
	}

	out.NetProfit = netProfit
	out.NetProfitPercent = 0
	if src.InitialCapital > 0 {
		out.NetProfitPercent = netProfit / src.InitialCapital * 100
	}
	out.WinningTrades = wins
	out.LosingTrades = losses
	out.WinRate = 0
	out.AvgWin = 0
	out.AvgLoss = 0
	out.AvgTrade = 0
	out.Expectancy = 0
	out.ProfitFactor = 0
	out.SharpeRatio = 0
	if len(kept) == 0 {
		return out
	}

	out.WinRate = float64(wins) / float64(len(kept)) * 100
	out.AvgTrade = netProfit / float64(len(kept))
	if wins > 0 {
		out.AvgWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		out.AvgLoss = -grossLoss / float64(losses)
	}
	switch {
	case grossLoss > 0:
		out.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		out.ProfitFactor = math.Inf(1)
	}

	winRate := float64(wins) / float64(len(kept))
	out.Expectancy = winRate*out.AvgWin + (1-winRate)*out.AvgLoss

	out.SharpeRatio = sharpe(returns)
	return out
}

// sharpe is the per-trade Sharpe ratio: mean over sample standard deviation
// of percentage returns.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return 0
	}
	return mean / std
}
