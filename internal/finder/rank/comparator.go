// Package rank provides the bounded online top-K selector used to keep the
// best finder results in O(capacity) memory regardless of how many
// candidates a run produces.
package rank

import (
	"math"

	"github.com/paramsearch/finder/internal/domain"
)

// epsilon below which two metric values are considered equal and the
// comparison falls through to the next priority metric.
const epsilon = 1e-4

// infiniteProfitFactor stands in for an infinite profit factor (no losing
// trades) so comparisons stay finite.
const infiniteProfitFactor = 1e9

// Comparator orders finder results by an ordered list of metrics. Every
// metric sorts descending except max drawdown percent, where lower is
// better. Ranking reads the selection result, i.e. the endpoint-corrected
// metrics.
type Comparator struct {
	priority []string
}

// NewComparator creates a comparator for the given metric priority list.
// An empty list falls back to net profit percent.
func NewComparator(priority []string) *Comparator {
	if len(priority) == 0 {
		priority = []string{domain.MetricNetProfitPercent}
	}
	return &Comparator{priority: priority}
}

// Compare returns a negative value when a ranks before b (a is better),
// positive when b ranks before a, and zero when every priority metric ties
// within epsilon. It is symmetric: Compare(a,b) == -Compare(b,a).
func (c *Comparator) Compare(a, b *domain.FinderResult) int {
	for _, metric := range c.priority {
		av := metricFor(a, metric)
		bv := metricFor(b, metric)

		delta := bv - av // descending: larger value ranks first
		if metric == domain.MetricMaxDrawdownPercent {
			delta = av - bv // ascending: smaller drawdown ranks first
		}
		if math.Abs(delta) > epsilon {
			if delta < 0 {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Better reports whether a strictly outranks b.
func (c *Comparator) Better(a, b *domain.FinderResult) bool {
	return c.Compare(a, b) < 0
}

func metricFor(r *domain.FinderResult, metric string) float64 {
	v := domain.MetricValue(r.SelectionResult, metric)
	if metric == domain.MetricProfitFactor && (math.IsInf(v, 1) || v > infiniteProfitFactor) {
		return infiniteProfitFactor
	}
	return v
}
