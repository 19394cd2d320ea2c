package domain

// Bar is one time-indexed OHLCV sample of a price series.
// Time is a unix timestamp in milliseconds.
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// DataTier classifies a dataset by bar count. Batch sizing and the
// local-vs-remote execution split both key off the tier.
type DataTier int

const (
	TierNormal DataTier = iota
	TierLarge
	TierVeryLarge
	TierExtreme
)

const (
	largeBars     = 500_000
	veryLargeBars = 2_000_000
	extremeBars   = 4_000_000
)

// TierFor returns the dataset tier for a bar count.
func TierFor(barCount int) DataTier {
	switch {
	case barCount >= extremeBars:
		return TierExtreme
	case barCount >= veryLargeBars:
		return TierVeryLarge
	case barCount >= largeBars:
		return TierLarge
	default:
		return TierNormal
	}
}

func (t DataTier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierVeryLarge:
		return "very_large"
	case TierExtreme:
		return "extreme"
	default:
		return "normal"
	}
}

// LastBarTime returns the timestamp of the final bar, or 0 for an empty series.
func LastBarTime(bars []Bar) int64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Time
}
