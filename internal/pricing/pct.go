package pricing

// ParsePct is the single normalization boundary between percent and
// fractional representations. Values above 1.0 are read as whole percents
// ("21" means 21%); values in 0.0-1.0 are already fractional and pass
// through. Every percent crossing the external tool-call boundary goes
// through this function exactly once.
func ParsePct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1.0 {
		return v / 100.0
	}
	return v
}
