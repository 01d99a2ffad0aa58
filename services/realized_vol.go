package services

import (
	"math"

	"earnings-scanner/interfaces"
)

// Defaults for the Yang-Zhang realized volatility estimator.
const (
	DefaultRVWindow       = 30
	DefaultTradingPeriods = 252
)

// YangZhang returns the most recent annualized Yang-Zhang realized
// volatility over a rolling window of daily OHLC bars. Requires at least
// window+1 bars (the first bar has no prior close).
func YangZhang(bars []interfaces.PriceBar, window, tradingPeriods int) (float64, error) {
	series, err := YangZhangSeries(bars, window, tradingPeriods)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// YangZhangSeries returns the full rolling Yang-Zhang volatility series,
// one value per bar once the window is warm. The estimator combines an
// overnight (open vs prior close) component, a close-to-close component and
// a Rogers-Satchell intraday component:
//
//	rs = ln(H/O)*(ln(H/O)-ln(C/O)) + ln(L/O)*(ln(L/O)-ln(C/O))
//	k  = 0.34 / (1.34 + (W+1)/(W-1))
//	var = overnight + k*close + (1-k)*rs
//
// each component rolling-summed over the window and normalized by 1/(W-1).
// Log ratios are unaffected by a uniform price rescale, so the estimator is
// scale-invariant.
func YangZhangSeries(bars []interfaces.PriceBar, window, tradingPeriods int) ([]float64, error) {
	if window < 2 {
		window = DefaultRVWindow
	}
	if tradingPeriods <= 0 {
		tradingPeriods = DefaultTradingPeriods
	}
	if len(bars) < window+1 {
		return nil, interfaces.ErrInsufficientHistory
	}

	n := len(bars)
	// per-bar terms, defined from the second bar onward
	ccSq := make([]float64, n)
	ocSq := make([]float64, n)
	rs := make([]float64, n)
	for i := 1; i < n; i++ {
		b := bars[i]
		logHO := math.Log(b.High / b.Open)
		logLO := math.Log(b.Low / b.Open)
		logCO := math.Log(b.Close / b.Open)
		logOC := math.Log(b.Open / bars[i-1].Close)
		logCC := math.Log(b.Close / bars[i-1].Close)

		ccSq[i] = logCC * logCC
		ocSq[i] = logOC * logOC
		rs[i] = logHO*(logHO-logCO) + logLO*(logLO-logCO)
	}

	k := 0.34 / (1.34 + float64(window+1)/float64(window-1))
	norm := 1.0 / float64(window-1)

	var closeSum, openSum, rsSum float64
	out := make([]float64, 0, n-window)
	for i := 1; i < n; i++ {
		closeSum += ccSq[i]
		openSum += ocSq[i]
		rsSum += rs[i]
		if i < window {
			continue
		}
		if i > window {
			closeSum -= ccSq[i-window]
			openSum -= ocSq[i-window]
			rsSum -= rs[i-window]
		}
		variance := openSum*norm + k*closeSum*norm + (1-k)*rsSum*norm
		out = append(out, math.Sqrt(variance)*math.Sqrt(float64(tradingPeriods)))
	}
	return out, nil
}
