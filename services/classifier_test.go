package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyShortVolatility(t *testing.T) {
	rec := &Recommendation{
		VolumeAdequate:  true,
		IVRVElevated:    true,
		SlopeInverted:   true,
		IVRVRatio:       1.4,
		MispricingRatio: 1.1,
		IVPercentile:    60,
	}
	assert.Equal(t, DecisionRecommend, Classify(rec))
}

func TestClassifyPriorityOverLongVolatility(t *testing.T) {
	// satisfies both the short-vol rule and (as constructed) the long-vol
	// rule; the short-vol rule must win
	rec := &Recommendation{
		VolumeAdequate:  true,
		IVRVElevated:    true,
		SlopeInverted:   true,
		IVRVRatio:       0.9,
		MispricingRatio: 0.5,
		IVPercentile:    10,
	}
	assert.Equal(t, DecisionRecommend, Classify(rec))
}

func TestClassifyConsider(t *testing.T) {
	// exactly one of volume / iv-rv with an inverted slope
	rec := &Recommendation{
		VolumeAdequate:  true,
		IVRVElevated:    false,
		SlopeInverted:   true,
		MispricingRatio: 1.0,
		IVPercentile:    50,
		IVRVRatio:       1.1,
	}
	assert.Equal(t, DecisionConsider, Classify(rec))

	rec.VolumeAdequate = false
	rec.IVRVElevated = true
	rec.IVRVRatio = 1.3
	assert.Equal(t, DecisionConsider, Classify(rec))
}

func TestClassifyInvertedSlopeAloneIsNotConsider(t *testing.T) {
	rec := &Recommendation{
		SlopeInverted:   true,
		MispricingRatio: 1.0,
		IVPercentile:    50,
		IVRVRatio:       1.1,
	}
	assert.Equal(t, DecisionSkip, Classify(rec))
}

func TestClassifyLongVolatility(t *testing.T) {
	rec := &Recommendation{
		VolumeAdequate:  true,
		IVRVElevated:    false,
		SlopeInverted:   false,
		IVRVRatio:       0.9,
		MispricingRatio: 0.7,
		IVPercentile:    20,
	}
	assert.Equal(t, DecisionRecommendBuy, Classify(rec))
}

func TestClassifyLongVolatilityBoundaries(t *testing.T) {
	base := Recommendation{
		IVRVRatio:       0.9,
		MispricingRatio: 0.7,
		IVPercentile:    20,
	}

	rec := base
	rec.MispricingRatio = 0.8 // not strictly below
	assert.Equal(t, DecisionSkip, Classify(&rec))

	rec = base
	rec.IVPercentile = 25.0
	assert.Equal(t, DecisionSkip, Classify(&rec))

	rec = base
	rec.IVRVRatio = 1.0
	assert.Equal(t, DecisionSkip, Classify(&rec))
}

func TestClassifyDefaultSkip(t *testing.T) {
	rec := &Recommendation{
		VolumeAdequate:  true,
		IVRVElevated:    false,
		SlopeInverted:   false,
		IVRVRatio:       1.2,
		MispricingRatio: 1.0,
		IVPercentile:    80,
	}
	assert.Equal(t, DecisionSkip, Classify(rec))
}
