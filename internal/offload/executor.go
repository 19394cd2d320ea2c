package offload

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/paramsearch/finder/internal/domain"
)

// BatchJob pairs a job with its locally generated signals.
type BatchJob struct {
	Job     *domain.ParamJob
	Signals []domain.Signal
}

// Outcome is the execution result for one job. Remote marks results the
// accelerated engine produced; fallbacks and local-only runs have it false.
type Outcome struct {
	Job    *domain.ParamJob
	Result *domain.BacktestResult
	Remote bool
	Err    error
}

// Executor decides local-vs-remote execution per run and degrades
// gracefully: a job missing from a remote response re-runs locally, a
// failed batch call re-runs every job in the batch locally, and a run that
// cannot use the remote engine at all never touches the network.
type Executor struct {
	client *Client
	local  domain.Backtester

	remote  bool
	cacheID string
}

// NewExecutor creates an executor. A nil client means local-only execution.
func NewExecutor(client *Client, local domain.Backtester) *Executor {
	return &Executor{client: client, local: local}
}

// Prepare decides whether this run may use the remote engine and, for large
// datasets, uploads the bars once so later batches reference them by cache
// id. Extreme-tier datasets stay local: the serialization cost alone risks
// out-of-memory.
func (e *Executor) Prepare(ctx context.Context, symbol, interval string, bars []domain.Bar, settings domain.BacktestSettings) {
	e.remote = false
	e.cacheID = ""
	if e.client == nil {
		return
	}
	if _, ok := ProjectSettings(settings); !ok {
		log.Info().Msg("offload disabled: settings use features the remote engine does not support")
		return
	}
	tier := domain.TierFor(len(bars))
	if tier == domain.TierExtreme {
		log.Info().Str("tier", tier.String()).Msg("offload disabled: dataset too large to serialize")
		return
	}
	if !e.client.HealthCheck(ctx) {
		log.Info().Msg("offload disabled: engine health check failed")
		return
	}

	if tier >= domain.TierLarge {
		cacheID, err := e.client.CacheData(ctx, CacheDataRequest{Symbol: symbol, Interval: interval, Bars: bars})
		if err != nil {
			log.Warn().Err(err).Msg("offload disabled: dataset upload failed")
			return
		}
		e.cacheID = cacheID
	}
	e.remote = true
	log.Info().Str("tier", tier.String()).Bool("cached", e.cacheID != "").Msg("offload enabled")
}

// RemoteEnabled reports whether Prepare elected remote execution.
func (e *Executor) RemoteEnabled() bool { return e.remote }

// ExecuteBatch runs a batch of jobs, remotely when the run allows it, with
// per-job local fallback.
func (e *Executor) ExecuteBatch(ctx context.Context, bars []domain.Bar, jobs []BatchJob, compact bool) []Outcome {
	// A batch can come up empty when every job was rejected upstream.
	if len(jobs) == 0 {
		return nil
	}
	if !e.remote {
		return e.runAllLocal(ctx, bars, jobs, compact)
	}

	items := make([]BatchItem, 0, len(jobs))
	for _, bj := range jobs {
		settings, ok := ProjectSettings(bj.Job.Spec.Settings)
		if !ok {
			// Cannot happen after Prepare, but a per-job surprise still
			// degrades to local rather than poisoning the batch.
			continue
		}
		// Bar indexes are annotations against the local series; they mean
		// nothing to the remote engine.
		items = append(items, BatchItem{ID: bj.Job.ID, Signals: domain.StripBarIndexes(bj.Signals), Settings: settings})
	}

	spec := jobs[0].Job.Spec
	var results map[int64]*BatchResultItem
	var err error
	if e.cacheID != "" {
		results, err = e.client.RunCachedBatch(ctx, e.cacheID, CachedBatchRequest{
			Items:          items,
			InitialCapital: spec.InitialCapital,
			PositionSize:   spec.PositionSize,
			Commission:     spec.Commission,
			Sizing:         spec.Sizing,
		})
	} else {
		results, err = e.client.RunBatch(ctx, BatchRequest{
			Bars:           bars,
			Items:          items,
			InitialCapital: spec.InitialCapital,
			PositionSize:   spec.PositionSize,
			Commission:     spec.Commission,
			Sizing:         spec.Sizing,
		})
	}
	if err != nil {
		log.Warn().Err(err).Int("jobs", len(jobs)).Msg("offload batch failed, falling back to local")
		return e.runAllLocal(ctx, bars, jobs, compact)
	}

	out := make([]Outcome, 0, len(jobs))
	for _, bj := range jobs {
		if item, ok := results[bj.Job.ID]; ok {
			out = append(out, Outcome{Job: bj.Job, Result: item.Result, Remote: true})
			continue
		}
		log.Debug().Int64("job", bj.Job.ID).Msg("job missing from offload response, running locally")
		out = append(out, e.runLocal(ctx, bars, bj, compact))
	}
	return out
}

func (e *Executor) runAllLocal(ctx context.Context, bars []domain.Bar, jobs []BatchJob, compact bool) []Outcome {
	out := make([]Outcome, 0, len(jobs))
	for _, bj := range jobs {
		out = append(out, e.runLocal(ctx, bars, bj, compact))
	}
	return out
}

func (e *Executor) runLocal(ctx context.Context, bars []domain.Bar, bj BatchJob, compact bool) Outcome {
	var result *domain.BacktestResult
	var err error
	if compact {
		result, err = e.local.RunCompact(ctx, bars, bj.Signals, bj.Job.Spec)
	} else {
		result, err = e.local.Run(ctx, bars, bj.Signals, bj.Job.Spec)
	}
	return Outcome{Job: bj.Job, Result: result, Err: err}
}
