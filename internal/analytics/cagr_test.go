package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeGrowth_OneYearDoubling(t *testing.T) {
	cagr, total := ComputeGrowth(100, 200, 1.0)
	assert.Equal(t, 1.0, cagr)
	assert.Equal(t, 1.0, total)
}

func TestComputeGrowth_ShortHoldingPeriod(t *testing.T) {
	// Held under six months: CAGR suppressed, total growth kept
	cagr, total := ComputeGrowth(100, 200, 0.4)
	assert.Equal(t, 0.0, cagr)
	assert.Equal(t, 1.0, total)
}

func TestComputeGrowth_FiveYears(t *testing.T) {
	// (150/100)^(1/5) - 1 ~= 0.08447
	cagr, total := ComputeGrowth(100, 150, 5.0)
	assert.InDelta(t, 0.08447, cagr, 0.0001)
	assert.Equal(t, 0.5, total)
}

func TestComputeGrowth_Loss(t *testing.T) {
	cagr, total := ComputeGrowth(100, 50, 1.0)
	assert.Equal(t, -0.5, cagr)
	assert.Equal(t, -0.5, total)
}

func TestComputeGrowth_ZeroYears(t *testing.T) {
	// Division by zero in the exponent must not leak past the cutoff
	cagr, total := ComputeGrowth(100, 200, 0.0)
	assert.Equal(t, 0.0, cagr)
	assert.Equal(t, 1.0, total)
}

func TestComputeGrowth_ZeroFirstPrice(t *testing.T) {
	cagr, total := ComputeGrowth(0, 200, 2.0)
	assert.Equal(t, 0.0, cagr)
	assert.Equal(t, 0.0, total)
}

func TestComputeGrowth_NegativeRatio(t *testing.T) {
	// Negative base with fractional exponent is non-real; CAGR falls back
	cagr, total := ComputeGrowth(100, -50, 2.5)
	assert.Equal(t, 0.0, cagr)
	assert.Equal(t, -1.5, total)
	assert.False(t, math.IsNaN(cagr))
}
