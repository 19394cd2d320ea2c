package rank

import (
	"sort"

	"github.com/paramsearch/finder/internal/domain"
)

// Ranker is a fixed-capacity online top-K selector. It is a binary heap
// ordered by "is worse than" under the comparator, so the root is always
// the worst kept result and a candidate that cannot displace it is
// discarded in O(1).
type Ranker struct {
	cmp   *Comparator
	cap   int
	items []*domain.FinderResult
}

// NewRanker creates a ranker that keeps at most capacity results.
func NewRanker(capacity int, cmp *Comparator) *Ranker {
	if capacity < 1 {
		capacity = 1
	}
	return &Ranker{
		cmp:   cmp,
		cap:   capacity,
		items: make([]*domain.FinderResult, 0, capacity),
	}
}

// Len returns the number of kept results.
func (r *Ranker) Len() int { return len(r.items) }

// Capacity returns the configured bound.
func (r *Ranker) Capacity() int { return r.cap }

// Offer considers a candidate. Below capacity it is kept unconditionally;
// at capacity it replaces the current worst kept result only when it ranks
// strictly better.
func (r *Ranker) Offer(candidate *domain.FinderResult) {
	if len(r.items) < r.cap {
		r.items = append(r.items, candidate)
		r.siftUp(len(r.items) - 1)
		return
	}
	// Root holds the worst kept result. Discard candidates that do not
	// outrank it.
	if !r.cmp.Better(candidate, r.items[0]) {
		return
	}
	r.items[0] = candidate
	r.siftDown(0)
}

// ToSortedArray returns the kept results best-first, truncated to limit.
// Only the bounded heap contents are sorted, never the full candidate
// stream, yet the output equals sorting everything offered and taking the
// top N for any capacity >= limit.
func (r *Ranker) ToSortedArray(limit int) []*domain.FinderResult {
	out := make([]*domain.FinderResult, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		return r.cmp.Compare(out[i], out[j]) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// worse reports whether items[i] ranks at or below items[j]; the heap
// property keeps the worst result at the root.
func (r *Ranker) worse(i, j int) bool {
	return r.cmp.Compare(r.items[i], r.items[j]) >= 0
}

func (r *Ranker) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !r.worse(i, parent) {
			break
		}
		r.items[i], r.items[parent] = r.items[parent], r.items[i]
		i = parent
	}
}

func (r *Ranker) siftDown(i int) {
	n := len(r.items)
	for {
		worst := i
		if l := 2*i + 1; l < n && r.worse(l, worst) {
			worst = l
		}
		if rt := 2*i + 2; rt < n && r.worse(rt, worst) {
			worst = rt
		}
		if worst == i {
			return
		}
		r.items[i], r.items[worst] = r.items[worst], r.items[i]
		i = worst
	}
}
