package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermStructureInterpolation(t *testing.T) {
	ts, err := NewTermStructure([]int{10, 45, 60}, []float64{0.40, 0.30, 0.28})
	require.NoError(t, err)

	// exact points
	assert.InDelta(t, 0.40, ts.ValueAt(10), 1e-12)
	assert.InDelta(t, 0.30, ts.ValueAt(45), 1e-12)
	assert.InDelta(t, 0.28, ts.ValueAt(60), 1e-12)

	// midpoint of the first segment
	assert.InDelta(t, 0.35, ts.ValueAt(27.5), 1e-12)

	// continuity at an interior knot
	assert.InDelta(t, ts.ValueAt(45), ts.ValueAt(44.9999), 1e-3)
}

func TestTermStructureFlatExtrapolation(t *testing.T) {
	ts, err := NewTermStructure([]int{10, 45, 60}, []float64{0.40, 0.30, 0.28})
	require.NoError(t, err)

	assert.Equal(t, 0.40, ts.ValueAt(0))
	assert.Equal(t, 0.40, ts.ValueAt(5))
	assert.Equal(t, 0.28, ts.ValueAt(61))
	assert.Equal(t, 0.28, ts.ValueAt(365))
}

func TestTermStructureSortsPoints(t *testing.T) {
	ts, err := NewTermStructure([]int{60, 10, 45}, []float64{0.28, 0.40, 0.30})
	require.NoError(t, err)

	assert.Equal(t, 10.0, ts.MinDays())
	assert.InDelta(t, 0.35, ts.ValueAt(27.5), 1e-12)
}

func TestTermStructureSlope(t *testing.T) {
	ts, err := NewTermStructure([]int{10, 45, 60}, []float64{0.40, 0.30, 0.28})
	require.NoError(t, err)

	slope, ok := ts.Slope(ts.MinDays(), 45)
	require.True(t, ok)
	assert.InDelta(t, (0.30-0.40)/35.0, slope, 1e-12)
}

func TestTermStructureSlopeUndefinedAtEqualTenors(t *testing.T) {
	ts, err := NewTermStructure([]int{45, 60}, []float64{0.30, 0.28})
	require.NoError(t, err)

	_, ok := ts.Slope(ts.MinDays(), 45)
	assert.False(t, ok)
}

func TestTermStructureSinglePoint(t *testing.T) {
	ts, err := NewTermStructure([]int{30}, []float64{0.35})
	require.NoError(t, err)

	assert.Equal(t, 0.35, ts.ValueAt(0))
	assert.Equal(t, 0.35, ts.ValueAt(30))
	assert.Equal(t, 0.35, ts.ValueAt(90))
}

func TestTermStructureRequiresPoints(t *testing.T) {
	_, err := NewTermStructure(nil, nil)
	assert.Error(t, err)

	_, err = NewTermStructure([]int{10, 20}, []float64{0.3})
	assert.Error(t, err)
}
