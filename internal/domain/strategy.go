package domain

import "context"

// StrategyRole distinguishes entry strategies from confirmation filters.
type StrategyRole string

const (
	RoleEntry  StrategyRole = "entry"
	RoleFilter StrategyRole = "filter"
)

// StrategyMetadata describes a strategy's role and trade direction.
type StrategyMetadata struct {
	Role      StrategyRole `json:"role"`
	Direction string       `json:"direction"`
}

// Strategy produces signals from bars and parameters. Implementations live
// outside this module; the finder only consumes the interface.
type Strategy interface {
	Execute(data []Bar, params StrategyParams) ([]Signal, error)
	DefaultParams() StrategyParams
	Metadata() StrategyMetadata
}

// Backtester turns signals into a trade list and derived metrics. RunCompact
// trades trade-level detail for lower memory on very large series.
type Backtester interface {
	Run(ctx context.Context, data []Bar, signals []Signal, spec BacktestSpec) (*BacktestResult, error)
	RunCompact(ctx context.Context, data []Bar, signals []Signal, spec BacktestSpec) (*BacktestResult, error)
}

// ProgressSink receives coalesced progress and status updates. Calls are
// rate-limited by the engine to roughly one per 120ms.
type ProgressSink interface {
	SetProgress(percent float64, text string)
	SetStatus(text string)
}
