package sampler

import (
	"strings"

	"github.com/paramsearch/finder/internal/domain"
)

// orderedPairs are name fragments whose values must satisfy lhs < rhs when
// both keys exist in a parameter set. Violations are degenerate combinations
// (e.g. a fast average slower than the slow one) and are rejected during
// sampling so they never reach execution.
var orderedPairs = [][2]string{
	{"fast", "slow"},
	{"oversold", "overbought"},
	{"lower", "upper"},
	{"short", "long"},
	{"min", "max"},
}

// Valid reports whether a parameter set satisfies the semantic ordering
// invariants.
func Valid(p domain.StrategyParams) bool {
	for _, pair := range orderedPairs {
		if !orderedPairHolds(p, pair[0], pair[1]) {
			return false
		}
	}
	return true
}

// orderedPairHolds checks every key containing lhs against its counterpart
// with lhs swapped for rhs. Keys without a counterpart are unconstrained.
func orderedPairHolds(p domain.StrategyParams, lhs, rhs string) bool {
	for _, kv := range p {
		k := canonKey(kv.Name)
		idx := strings.Index(k, lhs)
		if idx < 0 {
			continue
		}
		counterpart := k[:idx] + rhs + k[idx+len(lhs):]
		for _, other := range p {
			if canonKey(other.Name) == counterpart && kv.Value >= other.Value {
				return false
			}
		}
	}
	return true
}
