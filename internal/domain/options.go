package domain

import "fmt"

// SearchMode selects how the parameter space is sampled.
type SearchMode string

const (
	ModeDefault        SearchMode = "default"
	ModeGrid           SearchMode = "grid"
	ModeRandom         SearchMode = "random"
	ModeRobustRandomWF SearchMode = "robust_random_wf"
)

// DefaultRobustSeed seeds the deterministic generator when none is configured.
const DefaultRobustSeed uint32 = 1337

// DurabilityOptions configures the walk-forward out-of-sample check.
type DurabilityOptions struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	HoldoutRatio float64 `yaml:"holdout_ratio" json:"holdoutRatio"`
	MinOOSTrades int     `yaml:"min_oos_trades" json:"minOOSTrades"`
	MinScore     float64 `yaml:"min_score" json:"minScore"`
}

// FinderOptions is the immutable search configuration for one run.
// It is constructed once per run and passed by value through every
// component.
type FinderOptions struct {
	Mode         SearchMode `yaml:"mode" json:"mode"`
	SortPriority []string   `yaml:"sort_priority" json:"sortPriority"`
	TopN         int        `yaml:"top_n" json:"topN"`
	Steps        int        `yaml:"steps" json:"steps"`
	RangePercent float64    `yaml:"range_percent" json:"rangePercent"`
	MaxRuns      int        `yaml:"max_runs" json:"maxRuns"`

	TradeFilterEnabled bool `yaml:"trade_filter_enabled" json:"tradeFilterEnabled"`
	MinTrades          int  `yaml:"min_trades" json:"minTrades"`
	MaxTrades          int  `yaml:"max_trades" json:"maxTrades"`

	MultiTimeframeEnabled bool     `yaml:"multi_timeframe_enabled" json:"multiTimeframeEnabled"`
	Timeframes            []string `yaml:"timeframes" json:"timeframes,omitempty"`

	RobustSeed uint32            `yaml:"robust_seed" json:"robustSeed"`
	Durability DurabilityOptions `yaml:"durability" json:"durability"`
}

// DefaultFinderOptions returns the baseline search configuration.
func DefaultFinderOptions() FinderOptions {
	return FinderOptions{
		Mode:         ModeDefault,
		SortPriority: []string{MetricNetProfitPercent, MetricProfitFactor, MetricMaxDrawdownPercent},
		TopN:         25,
		Steps:        3,
		RangePercent: 30,
		MaxRuns:      500,
		MinTrades:    1,
		MaxTrades:    100000,
		RobustSeed:   DefaultRobustSeed,
		Durability: DurabilityOptions{
			HoldoutRatio: 0.25,
			MinOOSTrades: 10,
			MinScore:     40,
		},
	}
}

// Validate checks the option invariants.
func (o FinderOptions) Validate() error {
	switch o.Mode {
	case ModeDefault, ModeGrid, ModeRandom, ModeRobustRandomWF:
	default:
		return fmt.Errorf("unknown search mode %q", o.Mode)
	}
	if o.TopN <= 0 {
		return fmt.Errorf("topN must be positive, got %d", o.TopN)
	}
	if o.MaxRuns <= 0 {
		return fmt.Errorf("maxRuns must be positive, got %d", o.MaxRuns)
	}
	if o.Mode == ModeGrid && o.Steps < 2 {
		return fmt.Errorf("grid mode requires steps >= 2, got %d", o.Steps)
	}
	if o.RangePercent < 0 {
		return fmt.Errorf("rangePercent must not be negative, got %g", o.RangePercent)
	}
	if o.TradeFilterEnabled && o.MaxTrades < o.MinTrades {
		return fmt.Errorf("maxTrades %d < minTrades %d", o.MaxTrades, o.MinTrades)
	}
	for _, m := range o.SortPriority {
		if !KnownMetric(m) {
			return fmt.Errorf("unknown sort metric %q", m)
		}
	}
	return nil
}

// Seeded reports whether the sampler must draw from the deterministic
// seeded source. Only robust_random_wf is reproducible.
func (o FinderOptions) Seeded() bool {
	return o.Mode == ModeRobustRandomWF
}
