package finder

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/paramsearch/finder/internal/domain"
)

// progressInterval coalesces progress updates so the sink sees at most one
// per interval, keeping a tight job loop from flooding the UI layer.
const progressInterval = 120 * time.Millisecond

// Reporter rate-limits a ProgressSink. Final updates bypass the limiter so
// the 100% state is never dropped.
type Reporter struct {
	sink    domain.ProgressSink
	limiter *rate.Limiter
}

// NewReporter wraps sink; a nil sink yields a no-op reporter.
func NewReporter(sink domain.ProgressSink) *Reporter {
	return &Reporter{
		sink:    sink,
		limiter: rate.NewLimiter(rate.Every(progressInterval), 1),
	}
}

// Progress forwards a coalesced progress update.
func (r *Reporter) Progress(percent float64, text string) {
	if r.sink == nil || !r.limiter.Allow() {
		return
	}
	r.sink.SetProgress(percent, text)
}

// Status forwards a coalesced status update.
func (r *Reporter) Status(text string) {
	if r.sink == nil || !r.limiter.Allow() {
		return
	}
	r.sink.SetStatus(text)
}

// Final forwards a terminal update unconditionally.
func (r *Reporter) Final(percent float64, text string) {
	if r.sink == nil {
		return
	}
	r.sink.SetProgress(percent, text)
	r.sink.SetStatus(text)
}
