package services

// Skew tags for the calendar-spread leg selection.
const (
	SkewPut     = "P"
	SkewCall    = "C"
	SkewNeutral = "N/A"
)

// skewThreshold is the absolute IV gap between the ATM put and call that
// marks a directional skew worth trading.
const skewThreshold = 0.02

// vixCapLevel caps the expiration horizon during high-volatility macro
// regimes regardless of the term-structure signal.
const vixCapLevel = 25.0

// SelectStrategy maps the nearest-expiration ATM call/put IVs, the
// term-structure slope, the IV30/RV30 ratio and the current VIX level to a
// skew tag and a recommended expiration horizon in days.
func SelectStrategy(callIV, putIV, slope, ivRV, vix float64) (tag string, horizonDays int) {
	switch {
	case putIV-callIV > skewThreshold:
		tag = SkewPut
	case callIV-putIV > skewThreshold:
		tag = SkewCall
	default:
		tag = SkewNeutral
	}

	switch {
	case slope < -0.004 || ivRV > 1.5:
		horizonDays = 60
	case slope < -0.002:
		horizonDays = 45
	default:
		horizonDays = 30
	}

	if vix > vixCapLevel && horizonDays > 30 {
		horizonDays = 30
	}
	return tag, horizonDays
}
