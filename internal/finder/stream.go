package finder

import (
	"github.com/paramsearch/finder/internal/domain"
	"github.com/paramsearch/finder/internal/finder/sampler"
)

// StrategyRun names one strategy participating in a run. Defaults come from
// the strategy unless overridden.
type StrategyRun struct {
	Key      string
	Name     string
	Strategy domain.Strategy
	Defaults domain.StrategyParams
}

// batchEntry pairs a job with the strategy that will generate its signals.
type batchEntry struct {
	job      *domain.ParamJob
	strategy domain.Strategy
}

// jobStream materializes jobs lazily: each strategy's parameter plan is
// generated only when the stream reaches it, so a multi-strategy run never
// allocates the full cross-product up front.
type jobStream struct {
	strategies []StrategyRun
	opts       domain.FinderOptions
	spec       domain.BacktestSpec
	gen        *sampler.Generator

	strategyIdx int
	plan        []domain.StrategyParams
	planIdx     int
	nextID      int64

	emittedPlans int // total size of plans materialized so far
}

func newJobStream(strategies []StrategyRun, opts domain.FinderOptions, spec domain.BacktestSpec) *jobStream {
	return &jobStream{
		strategies: strategies,
		opts:       opts,
		spec:       spec,
		gen:        sampler.New(opts),
	}
}

// next returns the next job, or ok=false when the stream is exhausted.
func (s *jobStream) next() (batchEntry, bool) {
	for {
		if s.strategyIdx >= len(s.strategies) {
			return batchEntry{}, false
		}
		run := s.strategies[s.strategyIdx]
		if s.plan == nil {
			defaults := run.Defaults
			if defaults == nil {
				defaults = run.Strategy.DefaultParams()
			}
			s.plan = s.gen.Generate(defaults, s.opts)
			s.planIdx = 0
			s.emittedPlans += len(s.plan)
		}
		if s.planIdx >= len(s.plan) {
			s.strategyIdx++
			s.plan = nil
			continue
		}
		params := s.plan[s.planIdx]
		s.planIdx++
		s.nextID++
		return batchEntry{
			job: &domain.ParamJob{
				ID:           s.nextID,
				StrategyKey:  run.Key,
				StrategyName: run.Name,
				Params:       params,
				Spec:         s.spec,
			},
			strategy: run.Strategy,
		}, true
	}
}

// nextBatch pulls up to n jobs.
func (s *jobStream) nextBatch(n int) []batchEntry {
	out := make([]batchEntry, 0, n)
	for len(out) < n {
		entry, ok := s.next()
		if !ok {
			break
		}
		out = append(out, entry)
	}
	return out
}

// estimatedTotal is the best current estimate of the run's job count:
// materialized plans exactly, unreached strategies at the maxRuns bound.
func (s *jobStream) estimatedTotal() int {
	remaining := len(s.strategies) - s.strategyIdx
	if s.plan != nil {
		remaining--
	}
	if remaining < 0 {
		remaining = 0
	}
	return s.emittedPlans + remaining*s.opts.MaxRuns
}
