// Package offload routes backtest batches to a remote accelerated engine
// when that is safe and profitable, and falls back to local execution per
// job when it is not.
package offload

import "github.com/paramsearch/finder/internal/domain"

// RemoteCapableSettings is the typed projection of BacktestSettings the
// remote engine accepts. Settings the engine does not support are not
// representable here, so nothing needs to be stripped at the wire boundary.
type RemoteCapableSettings struct {
	SnapshotFilter  float64 `json:"snapshotFilter,omitempty"`
	QualityFilter   float64 `json:"qualityFilter,omitempty"`
	SlippagePercent float64 `json:"slippagePercent,omitempty"`
}

// ProjectSettings converts full settings into the remote projection. ok is
// false when the settings use a feature the remote engine does not support,
// which forces local execution for the run.
func ProjectSettings(s domain.BacktestSettings) (RemoteCapableSettings, bool) {
	if s.TrailingStop || s.PartialExits {
		return RemoteCapableSettings{}, false
	}
	return RemoteCapableSettings{
		SnapshotFilter:  s.SnapshotFilter,
		QualityFilter:   s.QualityFilter,
		SlippagePercent: s.SlippagePercent,
	}, true
}

// BatchItem is one job inside a batch request: its id, the locally computed
// signals, and the remote-capable settings.
type BatchItem struct {
	ID       int64                 `json:"id"`
	Signals  []domain.Signal       `json:"signals"`
	Settings RemoteCapableSettings `json:"settings"`
}

// CacheDataRequest uploads a dataset once; subsequent batches reference it
// by the returned opaque cache id.
type CacheDataRequest struct {
	Symbol   string       `json:"symbol"`
	Interval string       `json:"interval"`
	Bars     []domain.Bar `json:"bars"`
}

// CacheDataResponse carries the opaque dataset handle.
type CacheDataResponse struct {
	CacheID string `json:"cacheId"`
}

// BatchRequest runs a batch against inline bars.
type BatchRequest struct {
	Bars           []domain.Bar `json:"bars"`
	Items          []BatchItem  `json:"items"`
	InitialCapital float64      `json:"initialCapital"`
	PositionSize   float64      `json:"positionSize"`
	Commission     float64      `json:"commission"`
	Sizing         string       `json:"sizing"`
}

// CachedBatchRequest runs a batch against a previously uploaded dataset.
type CachedBatchRequest struct {
	Items          []BatchItem `json:"items"`
	InitialCapital float64     `json:"initialCapital"`
	PositionSize   float64     `json:"positionSize"`
	Commission     float64     `json:"commission"`
	Sizing         string      `json:"sizing"`
}

// BatchResultItem is one per-job result keyed by job id. A job id absent
// from the response means the remote engine could not produce a result for
// it and the caller re-runs that job locally.
type BatchResultItem struct {
	ID     int64                  `json:"id"`
	Result *domain.BacktestResult `json:"result"`
}

// BatchResponse is the remote engine's answer for a batch.
type BatchResponse struct {
	Results []BatchResultItem `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
}
