package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paramsearch/finder/internal/data"
	"github.com/paramsearch/finder/internal/domain"
	"github.com/paramsearch/finder/internal/finder/aggregate"
	"github.com/paramsearch/finder/internal/finder/durability"
	"github.com/paramsearch/finder/internal/finder/endpoint"
	"github.com/paramsearch/finder/internal/finder/rank"
	"github.com/paramsearch/finder/internal/metrics"
	"github.com/paramsearch/finder/internal/offload"
)

// Early-termination conditions: no valid work to do. Everything else is
// recovered per job or per batch.
var (
	ErrNoStrategies = errors.New("finder: no strategies selected")
	ErrNoData       = errors.New("finder: no data loaded")
)

// ConfirmationRun gates primary entry signals with an auxiliary strategy's
// signals.
type ConfirmationRun struct {
	Strategy domain.Strategy
	Params   domain.StrategyParams
}

// RunRequest describes one finder run.
type RunRequest struct {
	Strategies []StrategyRun
	Symbol     string
	Interval   string
	// Data optionally pre-loads the primary dataset; when nil it is
	// fetched through the configured source.
	Data         []domain.Bar
	Options      domain.FinderOptions
	Spec         domain.BacktestSpec
	Confirmation *ConfirmationRun
}

// EngineConfig wires the engine's collaborators. Backtester is required;
// everything else is optional.
type EngineConfig struct {
	Backtester domain.Backtester
	Source     data.Source
	Offload    *offload.Client
	Sink       domain.ProgressSink
	Metrics    *metrics.Metrics
	CacheTTL   time.Duration
}

// Engine orchestrates a parameter-space search. It is single-worker by
// contract: jobs never run in parallel and suspension only happens at
// job/batch boundaries, where cancellation is also checked.
type Engine struct {
	backtester domain.Backtester
	source     *data.CachedSource
	offload    *offload.Client
	sink       domain.ProgressSink
	metrics    *metrics.Metrics
	session    *Session
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	var source *data.CachedSource
	if cfg.Source != nil {
		source = data.NewCachedSource(cfg.Source, cfg.CacheTTL)
	}
	return &Engine{
		backtester: cfg.Backtester,
		source:     source,
		offload:    cfg.Offload,
		sink:       cfg.Sink,
		metrics:    cfg.Metrics,
		session:    NewSession(),
	}
}

// Session exposes the run lifecycle for status surfaces.
func (e *Engine) Session() *Session { return e.session }

// Run executes a finder search and returns the final sorted top-N. A run
// already in flight is rejected with ErrRunActive, never queued.
func (e *Engine) Run(ctx context.Context, req RunRequest) ([]*domain.FinderResult, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	if len(req.Strategies) == 0 {
		return nil, ErrNoStrategies
	}
	runID, err := e.session.Begin()
	if err != nil {
		return nil, err
	}
	defer e.session.Finish()

	started := time.Now()
	e.metrics.RunStarted()
	defer func() { e.metrics.RunFinished(time.Since(started)) }()

	reporter := NewReporter(e.sink)
	opts := req.Options

	primary, datasets, intervals, err := e.loadDatasets(ctx, req)
	if err != nil {
		reporter.Final(0, err.Error())
		return nil, err
	}

	heavy := isHeavyConfig(opts, req.Spec.Settings, req.Confirmation != nil)
	tier := domain.TierFor(len(primary))
	batchSize := batchSizeFor(tier, heavy)
	compact := useCompact(len(primary), heavy)
	budget := yieldBudgetFor(heavy)

	log.Info().
		Str("run", runID.String()).
		Int("strategies", len(req.Strategies)).
		Str("mode", string(opts.Mode)).
		Str("tier", tier.String()).
		Bool("heavy", heavy).
		Int("batch_size", batchSize).
		Int("bars", len(primary)).
		Msg("finder run started")

	executor := offload.NewExecutor(e.offload, e.backtester)
	if !opts.MultiTimeframeEnabled {
		executor.Prepare(ctx, req.Symbol, req.Interval, primary, req.Spec.Settings)
	}

	var durCtx durability.Context
	if opts.Durability.Enabled {
		durCtx = durability.Plan(primary, opts.Durability)
		if !durCtx.Enabled {
			log.Info().Int("bars", len(primary)).Msg("durability disabled for this run: series outside supported bounds")
		}
	}

	confirmSignals, err := e.confirmationSignals(req, datasets, intervals)
	if err != nil {
		reporter.Final(0, err.Error())
		return nil, err
	}

	ranker := rank.NewRanker(opts.TopN, rank.NewComparator(opts.SortPriority))
	stream := newJobStream(req.Strategies, opts, req.Spec)
	robustByJob := make(map[int64]*domain.RobustMetrics)
	reporter.Status(fmt.Sprintf("Searching up to %d parameter combinations", stream.estimatedTotal()))

	lastYield := time.Now()
	for {
		// Batch boundary: the only suspension point. Cancellation is
		// honored here, never mid-job.
		if err := ctx.Err(); err != nil {
			reporter.Final(0, "search cancelled")
			return nil, fmt.Errorf("finder run cancelled: %w", err)
		}

		batch := stream.nextBatch(batchSize)
		if len(batch) == 0 {
			break
		}

		ready, strategies := e.prepareBatch(ctx, batch, primary, confirmSignals[req.Interval], durCtx, opts, robustByJob)

		var outcomes []offload.Outcome
		if opts.MultiTimeframeEnabled {
			outcomes = e.runMultiTimeframe(ctx, ready, strategies, datasets, intervals, confirmSignals, heavy)
			e.metrics.BatchDone("local")
		} else {
			outcomes = executor.ExecuteBatch(ctx, primary, ready, compact)
			mode := "local"
			if executor.RemoteEnabled() {
				mode = "remote"
				// Every non-remote outcome was a remote miss, whether or
				// not the local re-run then succeeded.
				for _, o := range outcomes {
					if !o.Remote {
						e.metrics.Fallback()
					}
				}
			}
			e.metrics.BatchDone(mode)
		}

		for _, o := range outcomes {
			e.collect(o, req, opts, intervals, domain.LastBarTime(primary), robustByJob, ranker)
		}

		if time.Since(lastYield) >= budget {
			stats := e.session.Stats()
			total := stream.estimatedTotal()
			pct := 0.0
			if total > 0 {
				pct = float64(stats.JobsScheduled) / float64(total) * 100
				if pct > 99 {
					pct = 99
				}
			}
			reporter.Progress(pct, fmt.Sprintf("Tested %d combinations", stats.JobsCompleted))
			lastYield = time.Now()
		}
	}

	e.session.Completing()
	results := ranker.ToSortedArray(opts.TopN)
	stats := e.session.Stats()
	reporter.Final(100, fmt.Sprintf("Search complete: %d of %d combinations kept", len(results), stats.JobsCompleted))
	log.Info().
		Str("run", runID.String()).
		Int64("completed", stats.JobsCompleted).
		Int64("failed", stats.JobsFailed).
		Int64("filtered", stats.JobsFiltered).
		Int("kept", len(results)).
		Dur("elapsed", time.Since(started)).
		Msg("finder run finished")
	return results, nil
}

// loadDatasets resolves the primary dataset and, for multi-timeframe runs,
// one dataset per requested interval through the TTL cache.
func (e *Engine) loadDatasets(ctx context.Context, req RunRequest) (primary []domain.Bar, datasets map[string][]domain.Bar, intervals []string, err error) {
	primary = req.Data
	if len(primary) == 0 {
		if e.source == nil {
			return nil, nil, nil, ErrNoData
		}
		primary, err = e.source.FetchData(ctx, req.Symbol, req.Interval)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fetch %s %s: %w", req.Symbol, req.Interval, err)
		}
	}
	if len(primary) == 0 {
		return nil, nil, nil, ErrNoData
	}

	intervals = []string{req.Interval}
	datasets = map[string][]domain.Bar{req.Interval: primary}
	if !req.Options.MultiTimeframeEnabled {
		return primary, datasets, intervals, nil
	}

	requested := aggregate.NormalizeIntervals(append([]string{req.Interval}, req.Options.Timeframes...))
	intervals = intervals[:0]
	for _, iv := range requested {
		if iv == req.Interval {
			intervals = append(intervals, iv)
			continue
		}
		if e.source == nil {
			continue
		}
		bars, ferr := e.source.FetchData(ctx, req.Symbol, iv)
		if ferr != nil || len(bars) == 0 {
			// Insufficient data disables the interval, not the run.
			log.Warn().Err(ferr).Str("interval", iv).Msg("skipping timeframe without data")
			continue
		}
		datasets[iv] = bars
		intervals = append(intervals, iv)
	}
	if len(intervals) == 0 {
		return nil, nil, nil, ErrNoData
	}
	return primary, datasets, intervals, nil
}

// confirmationSignals computes the gating signals once per interval
// dataset.
func (e *Engine) confirmationSignals(req RunRequest, datasets map[string][]domain.Bar, intervals []string) (map[string][]domain.Signal, error) {
	out := make(map[string][]domain.Signal)
	if req.Confirmation == nil {
		return out, nil
	}
	params := req.Confirmation.Params
	if params == nil {
		params = req.Confirmation.Strategy.DefaultParams()
	}
	for _, iv := range intervals {
		signals, err := req.Confirmation.Strategy.Execute(datasets[iv], params)
		if err != nil {
			return nil, fmt.Errorf("confirmation signals on %s: %w", iv, err)
		}
		out[iv] = signals
	}
	return out, nil
}

// prepareBatch generates signals for each job, applies confirmation gating,
// and runs the walk-forward check. Failing jobs are logged and skipped;
// they never abort the batch.
func (e *Engine) prepareBatch(ctx context.Context, batch []batchEntry, primary []domain.Bar, confirm []domain.Signal, durCtx durability.Context, opts domain.FinderOptions, robustByJob map[int64]*domain.RobustMetrics) ([]offload.BatchJob, map[int64]domain.Strategy) {
	ready := make([]offload.BatchJob, 0, len(batch))
	strategies := make(map[int64]domain.Strategy, len(batch))
	for _, entry := range batch {
		e.session.record(func(s *SessionStats) { s.JobsScheduled++ })

		signals, err := entry.strategy.Execute(primary, entry.job.Params)
		if err != nil {
			log.Warn().Err(err).Int64("job", entry.job.ID).Str("strategy", entry.job.StrategyKey).Msg("signal generation failed, skipping job")
			e.session.record(func(s *SessionStats) { s.JobsFailed++ })
			e.metrics.JobDone("failed")
			continue
		}
		if confirm != nil {
			signals = gateSignals(signals, confirm)
		}

		if durCtx.Enabled {
			robust, derr := e.evaluateDurability(ctx, durCtx, entry.job, signals)
			switch {
			case derr != nil:
				log.Warn().Err(derr).Int64("job", entry.job.ID).Msg("durability evaluation failed, keeping candidate unscored")
			case opts.Mode == domain.ModeRobustRandomWF && !robust.Passed:
				e.session.record(func(s *SessionStats) { s.JobsFiltered++ })
				e.metrics.JobDone("filtered")
				continue
			default:
				// Stored only for jobs that go on to execute; collect
				// releases the entry for every outcome.
				robustByJob[entry.job.ID] = robust
			}
		}

		ready = append(ready, offload.BatchJob{Job: entry.job, Signals: signals})
		strategies[entry.job.ID] = entry.strategy
	}
	return ready, strategies
}

// evaluateDurability backtests the in-sample and out-of-sample segments and
// blends the holdout metrics into the robustness score. Compact backtests
// keep the extra simulations cheap.
func (e *Engine) evaluateDurability(ctx context.Context, durCtx durability.Context, job *domain.ParamJob, signals []domain.Signal) (*domain.RobustMetrics, error) {
	isSignals, oosSignals := durCtx.Partition(signals)
	isResult, err := e.backtester.RunCompact(ctx, durCtx.InSampleData, isSignals, job.Spec)
	if err != nil {
		return nil, fmt.Errorf("in-sample backtest: %w", err)
	}
	oosResult, err := e.backtester.RunCompact(ctx, durCtx.OutOfSampleData, oosSignals, job.Spec)
	if err != nil {
		return nil, fmt.Errorf("out-of-sample backtest: %w", err)
	}
	return durCtx.Score(isResult, oosResult), nil
}

// runMultiTimeframe executes each job once per interval locally and merges
// the per-interval results into one composite.
func (e *Engine) runMultiTimeframe(ctx context.Context, jobs []offload.BatchJob, strategies map[int64]domain.Strategy, datasets map[string][]domain.Bar, intervals []string, confirmSignals map[string][]domain.Signal, heavy bool) []offload.Outcome {
	out := make([]offload.Outcome, 0, len(jobs))
	for _, bj := range jobs {
		perInterval := make([]*domain.BacktestResult, 0, len(intervals))
		var jobErr error
		for _, iv := range intervals {
			bars := datasets[iv]
			signals := bj.Signals
			if iv != intervals[0] {
				// Signals were generated against the primary interval;
				// other intervals need their own.
				var err error
				signals, err = e.signalsFor(strategies[bj.Job.ID], bj.Job, bars, confirmSignals[iv])
				if err != nil {
					jobErr = err
					break
				}
			}
			var result *domain.BacktestResult
			var err error
			if useCompact(len(bars), heavy) {
				result, err = e.backtester.RunCompact(ctx, bars, signals, bj.Job.Spec)
			} else {
				result, err = e.backtester.Run(ctx, bars, signals, bj.Job.Spec)
			}
			if err != nil {
				jobErr = err
				break
			}
			perInterval = append(perInterval, result)
		}
		if jobErr != nil {
			out = append(out, offload.Outcome{Job: bj.Job, Err: jobErr})
			continue
		}
		out = append(out, offload.Outcome{Job: bj.Job, Result: aggregate.Merge(perInterval)})
	}
	return out
}

// signalsFor regenerates a job's signals against another interval's bars.
func (e *Engine) signalsFor(strategy domain.Strategy, job *domain.ParamJob, bars []domain.Bar, confirm []domain.Signal) ([]domain.Signal, error) {
	signals, err := strategy.Execute(bars, job.Params)
	if err != nil {
		return nil, err
	}
	if confirm != nil {
		signals = gateSignals(signals, confirm)
	}
	return signals, nil
}

// collect applies endpoint correction and the trade-count filter, then
// offers the candidate to the ranker.
func (e *Engine) collect(o offload.Outcome, req RunRequest, opts domain.FinderOptions, intervals []string, lastBarTime int64, robustByJob map[int64]*domain.RobustMetrics, ranker *rank.Ranker) {
	// Release the walk-forward entry whatever happens to the outcome, so
	// rejected jobs cannot accumulate state across batches.
	robust := robustByJob[o.Job.ID]
	delete(robustByJob, o.Job.ID)

	if o.Err != nil {
		log.Warn().Err(o.Err).Int64("job", o.Job.ID).Msg("backtest failed, skipping job")
		e.session.record(func(s *SessionStats) { s.JobsFailed++ })
		e.metrics.JobDone("failed")
		return
	}
	if o.Result == nil {
		e.session.record(func(s *SessionStats) { s.JobsFailed++ })
		e.metrics.JobDone("failed")
		return
	}
	if o.Remote {
		e.session.record(func(s *SessionStats) { s.RemoteJobs++ })
	}

	correction := endpoint.Correct(o.Result, lastBarTime)
	selection := correction.Result

	if opts.TradeFilterEnabled &&
		(selection.TotalTrades < opts.MinTrades || selection.TotalTrades > opts.MaxTrades) {
		e.session.record(func(s *SessionStats) { s.JobsFiltered++ })
		e.metrics.JobDone("filtered")
		return
	}

	fr := &domain.FinderResult{
		Key:                   o.Job.StrategyKey,
		Name:                  o.Job.StrategyName,
		Params:                o.Job.Params,
		Result:                o.Result,
		SelectionResult:       selection,
		EndpointAdjusted:      correction.Adjusted,
		EndpointRemovedTrades: correction.RemovedTrades,
		RobustMetrics:         robust,
	}
	if opts.MultiTimeframeEnabled {
		fr.Timeframes = intervals
	}
	if req.Confirmation != nil {
		params := req.Confirmation.Params
		if params == nil {
			params = req.Confirmation.Strategy.DefaultParams()
		}
		fr.ConfirmationParams = params
	}

	ranker.Offer(fr)
	e.session.record(func(s *SessionStats) { s.JobsCompleted++ })
	e.metrics.JobDone("completed")
}

// gateSignals keeps primary signals that a same-action confirmation signal
// accompanies at the same bar time.
func gateSignals(primary, confirm []domain.Signal) []domain.Signal {
	allowed := make(map[int64]domain.SignalAction, len(confirm))
	for _, s := range confirm {
		allowed[s.Time] = s.Action
	}
	out := make([]domain.Signal, 0, len(primary))
	for _, s := range primary {
		// Exits always pass; only entries are gated.
		if s.Action == domain.SignalSell {
			out = append(out, s)
			continue
		}
		if action, ok := allowed[s.Time]; ok && action == s.Action {
			out = append(out, s)
		}
	}
	return out
}
