// Package sampler turns a strategy's default parameters and search options
// into a finite, deduplicated sequence of candidate parameter sets.
package sampler

import (
	"github.com/rs/zerolog/log"

	"github.com/paramsearch/finder/internal/domain"
)

// attemptFactor bounds rejection sampling: after attemptFactor*maxRuns draws
// the search gives up with whatever unique combinations it found.
const attemptFactor = 10

// Generator produces candidate parameter sets for one strategy.
type Generator struct {
	rng Rand
}

// New creates a generator for the given options. robust_random_wf draws from
// the deterministic seeded source; every other mode uses math/rand.
func New(opts domain.FinderOptions) *Generator {
	if opts.Seeded() {
		seed := opts.RobustSeed
		if seed == 0 {
			seed = domain.DefaultRobustSeed
		}
		return &Generator{rng: NewSeededRandom(seed)}
	}
	return &Generator{rng: systemRand{}}
}

// Generate returns at most opts.MaxRuns candidate sets. The normalized
// default set always comes first and every entry satisfies the semantic
// validation predicate.
func (g *Generator) Generate(defaults domain.StrategyParams, opts domain.FinderOptions) []domain.StrategyParams {
	base := normalizeParams(defaults)
	out := []domain.StrategyParams{base}
	if opts.MaxRuns <= 1 || len(base) == 0 {
		return out
	}
	seen := map[string]bool{base.Key(): true}

	switch opts.Mode {
	case domain.ModeGrid:
		out = g.generateGrid(base, opts, out, seen)
	default:
		// default, random and robust_random_wf all perturb uniformly
		// within the per-key range; only the random source differs.
		out = g.generateRandom(base, opts, out, seen)
	}

	log.Debug().Int("candidates", len(out)).Str("mode", string(opts.Mode)).Msg("parameter plan generated")
	return out
}

// gridValues computes the per-key step values. Toggles are the discrete set
// {0, 1}; numeric keys get steps evenly spaced values across the computed
// range, deduplicated after normalization (a zero range collapses every step
// onto the default).
func gridValues(base domain.StrategyParams, opts domain.FinderOptions) [][]float64 {
	sets := make([][]float64, len(base))
	for i, kv := range base {
		if isToggleKey(kv.Name) {
			sets[i] = []float64{0, 1}
			continue
		}
		r := rangeFor(kv.Name, kv.Value, opts.RangePercent)
		var vals []float64
		for s := 0; s < opts.Steps; s++ {
			v := r.min
			if opts.Steps > 1 {
				v = r.min + (r.max-r.min)*float64(s)/float64(opts.Steps-1)
			}
			v = normalizeValue(kv.Name, v)
			if !containsValue(vals, v) {
				vals = append(vals, v)
			}
		}
		sets[i] = vals
	}
	return sets
}

func (g *Generator) generateGrid(base domain.StrategyParams, opts domain.FinderOptions, out []domain.StrategyParams, seen map[string]bool) []domain.StrategyParams {
	sets := gridValues(base, opts)

	// Cartesian product size, capped so huge grids never overflow.
	product := 1
	for _, vals := range sets {
		product *= len(vals)
		if product > opts.MaxRuns {
			break
		}
	}

	if product <= opts.MaxRuns {
		return gridWalk(base, sets, 0, base.Clone(), out, seen, opts.MaxRuns)
	}

	// Grid too large: uniform random sampling from the same per-key value
	// sets until maxRuns unique combinations or the attempt budget runs out.
	attempts := 0
	for len(out) < opts.MaxRuns && attempts < attemptFactor*opts.MaxRuns {
		attempts++
		combo := base.Clone()
		for i := range combo {
			vals := sets[i]
			combo[i].Value = vals[randIndex(g.rng, len(vals))]
		}
		if !Valid(combo) {
			continue
		}
		key := combo.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, combo)
	}
	return out
}

// gridWalk emits the cartesian product depth-first, short-circuiting once
// maxRuns combinations are collected.
func gridWalk(base domain.StrategyParams, sets [][]float64, depth int, combo domain.StrategyParams, out []domain.StrategyParams, seen map[string]bool, maxRuns int) []domain.StrategyParams {
	if len(out) >= maxRuns {
		return out
	}
	if depth == len(base) {
		if !Valid(combo) {
			return out
		}
		key := combo.Key()
		if seen[key] {
			return out
		}
		seen[key] = true
		out = append(out, combo.Clone())
		return out
	}
	for _, v := range sets[depth] {
		combo[depth].Value = v
		out = gridWalk(base, sets, depth+1, combo, out, seen, maxRuns)
		if len(out) >= maxRuns {
			break
		}
	}
	return out
}

func (g *Generator) generateRandom(base domain.StrategyParams, opts domain.FinderOptions, out []domain.StrategyParams, seen map[string]bool) []domain.StrategyParams {
	ranges := make([]valueRange, len(base))
	for i, kv := range base {
		ranges[i] = rangeFor(kv.Name, kv.Value, opts.RangePercent)
	}

	attempts := 0
	for len(out) < opts.MaxRuns && attempts < attemptFactor*opts.MaxRuns {
		attempts++
		combo := base.Clone()
		for i, kv := range combo {
			if isToggleKey(kv.Name) {
				// Coin flip.
				if g.rng.Float64() < 0.5 {
					combo[i].Value = 0
				} else {
					combo[i].Value = 1
				}
				continue
			}
			r := ranges[i]
			v := r.min + (r.max-r.min)*g.rng.Float64()
			combo[i].Value = normalizeValue(kv.Name, v)
		}
		if !Valid(combo) {
			continue
		}
		key := combo.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, combo)
	}
	return out
}

func randIndex(rng Rand, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func containsValue(vals []float64, v float64) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
