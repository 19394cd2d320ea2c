package domain

// Metric names the ranker and sort-priority configuration recognize.
const (
	MetricNetProfit          = "netProfit"
	MetricNetProfitPercent   = "netProfitPercent"
	MetricWinRate            = "winRate"
	MetricProfitFactor       = "profitFactor"
	MetricExpectancy         = "expectancy"
	MetricAvgTrade           = "avgTrade"
	MetricMaxDrawdownPercent = "maxDrawdownPercent"
	MetricSharpeRatio        = "sharpeRatio"
	MetricTotalTrades        = "totalTrades"
)

// MetricValue extracts a named metric from a result. Unknown names yield 0.
func MetricValue(r *BacktestResult, name string) float64 {
	if r == nil {
		return 0
	}
	switch name {
	case MetricNetProfit:
		return r.NetProfit
	case MetricNetProfitPercent:
		return r.NetProfitPercent
	case MetricWinRate:
		return r.WinRate
	case MetricProfitFactor:
		return r.ProfitFactor
	case MetricExpectancy:
		return r.Expectancy
	case MetricAvgTrade:
		return r.AvgTrade
	case MetricMaxDrawdownPercent:
		return r.MaxDrawdownPercent
	case MetricSharpeRatio:
		return r.SharpeRatio
	case MetricTotalTrades:
		return float64(r.TotalTrades)
	default:
		return 0
	}
}

// KnownMetric reports whether name is a recognized sort metric.
func KnownMetric(name string) bool {
	switch name {
	case MetricNetProfit, MetricNetProfitPercent, MetricWinRate,
		MetricProfitFactor, MetricExpectancy, MetricAvgTrade,
		MetricMaxDrawdownPercent, MetricSharpeRatio, MetricTotalTrades:
		return true
	}
	return false
}
