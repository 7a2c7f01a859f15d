package analytics

const (
	// anomalyMultiplier flags an amount once it exceeds this multiple of the
	// category's historical average.
	anomalyMultiplier = 2.0
	// anomalyFloor suppresses flags on small amounts regardless of the
	// average, so categories full of tiny purchases don't trip on noise.
	anomalyFloor = 100.0
)

// ClassifyAnomaly decides at write time whether a new expense is unusually
// large for its category. history holds the amounts of the user's prior
// expenses in the same category, not including the new one. With no history
// the expense is never anomalous. The flag is computed once at creation and
// never revised when later expenses move the average.
func ClassifyAnomaly(amount float64, history []float64) bool {
	if len(history) == 0 {
		return false
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	avg := sum / float64(len(history))
	return amount > anomalyMultiplier*avg && amount > anomalyFloor
}
