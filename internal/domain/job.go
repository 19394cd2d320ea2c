package domain

// BacktestSettings is the per-run simulation configuration forwarded to the
// backtester. Snapshot and quality filters add per-bar work, which the
// scheduler accounts for when sizing batches.
type BacktestSettings struct {
	SnapshotFilter  float64 `yaml:"snapshot_filter" json:"snapshotFilter,omitempty"`
	QualityFilter   float64 `yaml:"quality_filter" json:"qualityFilter,omitempty"`
	SlippagePercent float64 `yaml:"slippage_percent" json:"slippagePercent,omitempty"`
	TrailingStop    bool    `yaml:"trailing_stop" json:"trailingStop,omitempty"`
	PartialExits    bool    `yaml:"partial_exits" json:"partialExits,omitempty"`
}

// BacktestSpec bundles everything the backtester needs besides bars and
// signals.
type BacktestSpec struct {
	InitialCapital float64          `yaml:"initial_capital" json:"initialCapital"`
	PositionSize   float64          `yaml:"position_size" json:"positionSize"`
	Commission     float64          `yaml:"commission" json:"commission"`
	Settings       BacktestSettings `yaml:"settings" json:"settings"`
	Sizing         string           `yaml:"sizing" json:"sizing"`
}

// ParamJob is one immutable unit of work: a candidate parameter set for a
// named strategy. IDs are unique per run and monotonically assigned.
type ParamJob struct {
	ID           int64          `json:"id"`
	StrategyKey  string         `json:"strategyKey"`
	StrategyName string         `json:"strategyName"`
	Params       StrategyParams `json:"params"`
	Spec         BacktestSpec   `json:"spec"`
}
