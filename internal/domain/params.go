package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is a single named numeric strategy parameter.
type Param struct {
	Name  string  `yaml:"name" json:"name"`
	Value float64 `yaml:"value" json:"value"`
}

// StrategyParams is an ordered mapping of parameter name to numeric value.
// Order is strategy-defined and preserved; names are unique.
type StrategyParams []Param

// Get returns the value for name and whether it exists.
func (p StrategyParams) Get(name string) (float64, bool) {
	for _, kv := range p {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return 0, false
}

// Set replaces the value for name in place, or appends it when absent.
func (p *StrategyParams) Set(name string, value float64) {
	for i, kv := range *p {
		if kv.Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Name: name, Value: value})
}

// Clone returns an independent copy.
func (p StrategyParams) Clone() StrategyParams {
	out := make(StrategyParams, len(p))
	copy(out, p)
	return out
}

// Key returns a canonical serialization of the parameter set, used for
// deduplication during sampling. Values are formatted with enough precision
// that distinct float64 values never collide.
func (p StrategyParams) Key() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(kv.Name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(kv.Value, 'g', -1, 64))
	}
	return b.String()
}

func (p StrategyParams) String() string {
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = fmt.Sprintf("%s=%g", kv.Name, kv.Value)
	}
	return strings.Join(parts, " ")
}
