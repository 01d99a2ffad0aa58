package services

// Decision is the terminal trade category for one evaluation
type Decision string

const (
	DecisionRecommend    Decision = "RECOMMEND"     // short-volatility calendar
	DecisionConsider     Decision = "CONSIDER"      // partial signal alignment
	DecisionRecommendBuy Decision = "RECOMMEND_BUY" // long-volatility entry
	DecisionSkip         Decision = "SKIP"
)

// Classification thresholds.
const (
	minAdequateVolume  = 1_500_000
	minElevatedIVRV    = 1.25
	maxInvertedSlope   = -0.00406
	maxBuyMispricing   = 0.8
	maxBuyIVPercentile = 25.0
	maxBuyIVRV         = 1.0
)

// Classify maps an evaluated recommendation to its trade category. Pure and
// stateless; the rules apply strictly in priority order, so a record that
// satisfies the short-volatility rule never falls through to the others.
func Classify(r *Recommendation) Decision {
	switch {
	case r.VolumeAdequate && r.IVRVElevated && r.SlopeInverted:
		return DecisionRecommend
	case r.SlopeInverted && (r.VolumeAdequate != r.IVRVElevated):
		return DecisionConsider
	case r.MispricingRatio < maxBuyMispricing && r.IVPercentile < maxBuyIVPercentile && r.IVRVRatio < maxBuyIVRV:
		return DecisionRecommendBuy
	default:
		return DecisionSkip
	}
}
