package domain

// Trade is one closed round-trip produced by the backtester.
type Trade struct {
	EntryTime         int64   `json:"entryTime"`
	ExitTime          int64   `json:"exitTime"`
	EntryPrice        float64 `json:"entryPrice"`
	ExitPrice         float64 `json:"exitPrice"`
	Size              float64 `json:"size"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// BacktestResult is the trade list plus derived metrics produced by the
// external backtester. The finder treats it as opaque except for the
// fields the ranker, filters, and correctors read.
type BacktestResult struct {
	Trades      []Trade   `json:"trades,omitempty"`
	EquityCurve []float64 `json:"equityCurve,omitempty"`

	InitialCapital     float64 `json:"initialCapital"`
	NetProfit          float64 `json:"netProfit"`
	NetProfitPercent   float64 `json:"netProfitPercent"`
	WinRate            float64 `json:"winRate"`
	ProfitFactor       float64 `json:"profitFactor"`
	Expectancy         float64 `json:"expectancy"`
	AvgTrade           float64 `json:"avgTrade"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent"`
	TotalTrades        int     `json:"totalTrades"`
	WinningTrades      int     `json:"winningTrades"`
	LosingTrades       int     `json:"losingTrades"`
	AvgWin             float64 `json:"avgWin"`
	AvgLoss            float64 `json:"avgLoss"`
	SharpeRatio        float64 `json:"sharpeRatio"`
}

// Clone returns a deep copy.
func (r *BacktestResult) Clone() *BacktestResult {
	out := *r
	if r.Trades != nil {
		out.Trades = make([]Trade, len(r.Trades))
		copy(out.Trades, r.Trades)
	}
	if r.EquityCurve != nil {
		out.EquityCurve = make([]float64, len(r.EquityCurve))
		copy(out.EquityCurve, r.EquityCurve)
	}
	return &out
}

// RobustMetrics is the outcome of the walk-forward durability check for a
// single candidate.
type RobustMetrics struct {
	Score                float64 `json:"score"`
	Passed               bool    `json:"passed"`
	OOSTrades            int     `json:"oosTrades"`
	OOSNetProfit         float64 `json:"oosNetProfit"`
	OOSProfitFactor      float64 `json:"oosProfitFactor"`
	InSampleProfitFactor float64 `json:"inSampleProfitFactor"`
}

// FinderResult is one ranked candidate: the parameter set, the raw backtest
// result, and the endpoint-corrected result the ranker actually reads.
// Invariant: SelectionResult.TotalTrades <= Result.TotalTrades.
type FinderResult struct {
	Key                   string          `json:"key"`
	Name                  string          `json:"name"`
	Timeframes            []string        `json:"timeframes,omitempty"`
	Params                StrategyParams  `json:"params"`
	Result                *BacktestResult `json:"result"`
	SelectionResult       *BacktestResult `json:"selectionResult"`
	EndpointAdjusted      bool            `json:"endpointAdjusted"`
	EndpointRemovedTrades int             `json:"endpointRemovedTrades"`
	ConfirmationParams    StrategyParams  `json:"confirmationParams,omitempty"`
	RobustMetrics         *RobustMetrics  `json:"robustMetrics,omitempty"`
}
