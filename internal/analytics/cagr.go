package analytics

import "math"

// minYearsForCAGR is the shortest holding period that gets an annualized
// rate. Flips held under six months keep their total growth but report a
// CAGR of zero.
const minYearsForCAGR = 0.5

// ComputeGrowth calculates the compound annual growth rate and the simple
// total growth between two sale prices. A holding period below six months,
// or any non-finite intermediate (zero first price, negative price ratio
// raised to a fractional exponent, overflow), yields a CAGR of 0 so that one
// malformed property never aborts a batch.
func ComputeGrowth(firstPrice, lastPrice, yearsHeld float64) (cagr, totalGrowth float64) {
	if firstPrice != 0 {
		totalGrowth = (lastPrice - firstPrice) / firstPrice
	}
	if math.IsNaN(totalGrowth) || math.IsInf(totalGrowth, 0) {
		totalGrowth = 0
	}

	if yearsHeld < minYearsForCAGR {
		return 0, totalGrowth
	}

	cagr = math.Pow(lastPrice/firstPrice, 1/yearsHeld) - 1
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return 0, totalGrowth
	}
	return cagr, totalGrowth
}
