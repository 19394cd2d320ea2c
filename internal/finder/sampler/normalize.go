package sampler

import (
	"math"

	"github.com/paramsearch/finder/internal/domain"
)

// valueRange is the computed search interval for one numeric parameter.
type valueRange struct {
	min float64
	max float64
}

// rangeFor computes the search interval for a numeric parameter: the default
// value perturbed by rangePercent in both directions, then clamped to the
// economically valid interval for its name family.
func rangeFor(name string, def, rangePercent float64) valueRange {
	span := math.Abs(def) * rangePercent / 100
	if def == 0 && rangePercent > 0 {
		span = 1
	}
	r := valueRange{min: def - span, max: def + span}

	switch {
	case isStopLossKey(name):
		r = clampRange(r, 0, 15)
	case isTakeProfitKey(name):
		r = clampRange(r, 0, 100)
	case isPercentKey(name):
		r = clampRange(r, 0, 100)
	case isPeriodKey(name):
		r = clampRange(r, 1, math.MaxFloat64)
	case isFactorKey(name):
		r = clampRange(r, 0.01, math.MaxFloat64)
	}
	if r.max < r.min {
		r.max = r.min
	}
	return r
}

func clampRange(r valueRange, lo, hi float64) valueRange {
	return valueRange{min: clamp(r.min, lo, hi), max: clamp(r.max, lo, hi)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeValue post-processes a sampled value for its name family:
// toggles snap to {0,1}, periods round to whole bars, percents clamp to
// [0,100] with two-decimal rounding, factors stay positive.
func normalizeValue(name string, v float64) float64 {
	switch {
	case isToggleKey(name):
		if v >= 0.5 {
			return 1
		}
		return 0
	case isPeriodKey(name):
		n := math.Round(v)
		if n < 1 {
			n = 1
		}
		return n
	case isStopLossKey(name):
		return round2(clamp(v, 0, 15))
	case isPercentKey(name) || isTakeProfitKey(name):
		return round2(clamp(v, 0, 100))
	case isFactorKey(name):
		if v < 0.01 {
			return 0.01
		}
		return round2(v)
	default:
		return round2(v)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// normalizeParams applies normalizeValue to every entry of a parameter set.
func normalizeParams(p domain.StrategyParams) domain.StrategyParams {
	out := p.Clone()
	for i, kv := range out {
		out[i].Value = normalizeValue(kv.Name, kv.Value)
	}
	return out
}
