package rank

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsearch/finder/internal/domain"
)

func resultWith(metrics map[string]float64) *domain.FinderResult {
	sel := &domain.BacktestResult{}
	for name, v := range metrics {
		switch name {
		case domain.MetricNetProfitPercent:
			sel.NetProfitPercent = v
		case domain.MetricNetProfit:
			sel.NetProfit = v
		case domain.MetricProfitFactor:
			sel.ProfitFactor = v
		case domain.MetricMaxDrawdownPercent:
			sel.MaxDrawdownPercent = v
		case domain.MetricWinRate:
			sel.WinRate = v
		case domain.MetricSharpeRatio:
			sel.SharpeRatio = v
		}
	}
	return &domain.FinderResult{SelectionResult: sel, Result: sel}
}

func defaultComparator() *Comparator {
	return NewComparator([]string{
		domain.MetricNetProfitPercent,
		domain.MetricProfitFactor,
		domain.MetricMaxDrawdownPercent,
	})
}

func TestRankerNeverExceedsCapacity(t *testing.T) {
	r := NewRanker(8, defaultComparator())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		r.Offer(resultWith(map[string]float64{
			domain.MetricNetProfitPercent: rng.Float64()*200 - 100,
		}))
		require.LessOrEqual(t, r.Len(), 8)
	}
}

func TestRankerEquivalentToFullSort(t *testing.T) {
	cmp := defaultComparator()
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		r := NewRanker(10, cmp)
		var all []*domain.FinderResult
		n := 1 + rng.Intn(500)
		for i := 0; i < n; i++ {
			c := resultWith(map[string]float64{
				domain.MetricNetProfitPercent:   math.Round(rng.Float64()*2000-1000) / 10,
				domain.MetricProfitFactor:       rng.Float64() * 5,
				domain.MetricMaxDrawdownPercent: rng.Float64() * 60,
			})
			c.Key = fmt.Sprintf("c%d", i)
			all = append(all, c)
			r.Offer(c)
		}

		want := make([]*domain.FinderResult, len(all))
		copy(want, all)
		sort.SliceStable(want, func(i, j int) bool { return cmp.Compare(want[i], want[j]) < 0 })
		if len(want) > 10 {
			want = want[:10]
		}

		got := r.ToSortedArray(10)
		require.Equal(t, len(want), len(got), "trial %d", trial)
		for i := range want {
			assert.Zero(t, cmp.Compare(want[i], got[i]),
				"trial %d: rank %d differs under comparator", trial, i)
		}
	}
}

func TestComparatorSymmetryWithinEpsilon(t *testing.T) {
	cmp := defaultComparator()
	a := resultWith(map[string]float64{
		domain.MetricNetProfitPercent:   10.00001,
		domain.MetricProfitFactor:       1.50002,
		domain.MetricMaxDrawdownPercent: 12.00003,
	})
	b := resultWith(map[string]float64{
		domain.MetricNetProfitPercent:   10.00004,
		domain.MetricProfitFactor:       1.50001,
		domain.MetricMaxDrawdownPercent: 12.00001,
	})
	assert.Zero(t, cmp.Compare(a, b))
	assert.Zero(t, cmp.Compare(b, a))
}

func TestComparatorAntisymmetry(t *testing.T) {
	cmp := defaultComparator()
	a := resultWith(map[string]float64{domain.MetricNetProfitPercent: 20})
	b := resultWith(map[string]float64{domain.MetricNetProfitPercent: 10})
	assert.Equal(t, -1, cmp.Compare(a, b))
	assert.Equal(t, 1, cmp.Compare(b, a))
}

func TestComparatorDrawdownSortsAscending(t *testing.T) {
	cmp := NewComparator([]string{domain.MetricMaxDrawdownPercent})
	low := resultWith(map[string]float64{domain.MetricMaxDrawdownPercent: 5})
	high := resultWith(map[string]float64{domain.MetricMaxDrawdownPercent: 25})
	assert.True(t, cmp.Better(low, high))
	assert.False(t, cmp.Better(high, low))
}

func TestComparatorInfiniteProfitFactor(t *testing.T) {
	cmp := NewComparator([]string{domain.MetricProfitFactor})
	inf := resultWith(map[string]float64{domain.MetricProfitFactor: math.Inf(1)})
	big := resultWith(map[string]float64{domain.MetricProfitFactor: 50})
	assert.True(t, cmp.Better(inf, big))

	// Two infinities compare equal rather than NaN-poisoning the ordering.
	inf2 := resultWith(map[string]float64{domain.MetricProfitFactor: math.Inf(1)})
	assert.Zero(t, cmp.Compare(inf, inf2))
}

func TestComparatorTieFallsThroughPriorities(t *testing.T) {
	cmp := defaultComparator()
	a := resultWith(map[string]float64{
		domain.MetricNetProfitPercent:   10,
		domain.MetricProfitFactor:       2,
		domain.MetricMaxDrawdownPercent: 8,
	})
	b := resultWith(map[string]float64{
		domain.MetricNetProfitPercent:   10,
		domain.MetricProfitFactor:       2,
		domain.MetricMaxDrawdownPercent: 16,
	})
	assert.True(t, cmp.Better(a, b), "drawdown decides after the first two tie")
}

func TestRankerOrderIndependence(t *testing.T) {
	cmp := defaultComparator()
	var candidates []*domain.FinderResult
	for i := 0; i < 200; i++ {
		c := resultWith(map[string]float64{domain.MetricNetProfitPercent: float64(i)})
		c.Key = fmt.Sprintf("c%d", i)
		candidates = append(candidates, c)
	}

	forward := NewRanker(5, cmp)
	for _, c := range candidates {
		forward.Offer(c)
	}
	backward := NewRanker(5, cmp)
	for i := len(candidates) - 1; i >= 0; i-- {
		backward.Offer(candidates[i])
	}

	f := forward.ToSortedArray(5)
	b := backward.ToSortedArray(5)
	require.Equal(t, len(f), len(b))
	for i := range f {
		assert.Equal(t, f[i].SelectionResult.NetProfitPercent, b[i].SelectionResult.NetProfitPercent)
	}
}
