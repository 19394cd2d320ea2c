package sampler

import "strings"

// Parameter-name families. Keys are matched on a lowercased, separator-free
// form so "stopLossPercent", "stop_loss_percent" and "StopLossPct" all land
// in the same family.

func canonKey(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

// isToggleKey reports whether a parameter follows the boolean-switch naming
// convention. Toggles are sampled from {0, 1} and never perturbed by the
// percentage range.
func isToggleKey(name string) bool {
	k := canonKey(name)
	return strings.HasPrefix(k, "use") ||
		strings.HasPrefix(k, "enable") ||
		strings.HasPrefix(k, "show") ||
		strings.HasSuffix(k, "enabled") ||
		strings.HasSuffix(k, "toggle")
}

// isPeriodKey matches lookback-style parameters that only make sense as
// whole bar counts.
func isPeriodKey(name string) bool {
	k := canonKey(name)
	return strings.Contains(k, "period") ||
		strings.Contains(k, "length") ||
		strings.Contains(k, "lookback") ||
		strings.Contains(k, "window")
}

func isPercentKey(name string) bool {
	k := canonKey(name)
	return strings.Contains(k, "percent") || strings.Contains(k, "pct")
}

func isStopLossKey(name string) bool {
	return strings.Contains(canonKey(name), "stoploss")
}

func isTakeProfitKey(name string) bool {
	return strings.Contains(canonKey(name), "takeprofit")
}

// isFactorKey matches multiplier-style parameters that must stay positive.
func isFactorKey(name string) bool {
	k := canonKey(name)
	return strings.Contains(k, "factor") ||
		strings.Contains(k, "multiplier") ||
		strings.Contains(k, "mult")
}
