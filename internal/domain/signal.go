package domain

// SignalAction is the direction of a strategy signal.
type SignalAction string

const (
	SignalBuy  SignalAction = "buy"
	SignalSell SignalAction = "sell"
)

// Signal is a buy/sell event emitted by a strategy at a given bar.
// BarIndex is an optional absolute index annotation into the series the
// signal was generated from; -1 means unset. Slicing a series invalidates
// the annotation, so consumers that re-slice must strip it.
type Signal struct {
	Time         int64        `json:"time"`
	Action       SignalAction `json:"action"`
	Price        float64      `json:"price"`
	SizeFraction float64      `json:"sizeFraction,omitempty"`
	BarIndex     int          `json:"barIndex,omitempty"`
}

// StripBarIndexes returns a copy of signals with bar-index annotations
// cleared. Used before running signals against a sliced series.
func StripBarIndexes(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	for i := range out {
		out[i].BarIndex = -1
	}
	return out
}
