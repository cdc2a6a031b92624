package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 0.9))
}

func TestPercentile_SingleValue(t *testing.T) {
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.9))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	// rank = 0.5 * 3 = 1.5, halfway between 2 and 3
	assert.InDelta(t, 2.5, Percentile(values, 0.5), 1e-9)
	// rank = 0.9 * 3 = 2.7
	assert.InDelta(t, 3.7, Percentile(values, 0.9), 1e-9)
}

func TestPercentile_UnsortedInput(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, Percentile(values, 0.5), 1e-9)

	// Input slice must not be reordered
	assert.Equal(t, []float64{4, 1, 3, 2}, values)
}

func TestPercentile_Bounds(t *testing.T) {
	values := []float64{5, 10, 15}
	assert.Equal(t, 5.0, Percentile(values, 0))
	assert.Equal(t, 15.0, Percentile(values, 1))
}
