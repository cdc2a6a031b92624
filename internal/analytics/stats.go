package analytics

import "sort"

// Percentile returns the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between closest ranks: the quantile sits at rank q*(n-1) in
// the sorted sample and fractional ranks interpolate between neighbours.
// This matches the definition used when the growth tables were first built;
// changing it would silently move the top-performer threshold.
// An empty sample returns 0.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := q * float64(len(sorted)-1)
	lower := int(rank)
	frac := rank - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

func mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
