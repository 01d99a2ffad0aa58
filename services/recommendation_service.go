package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"earnings-scanner/interfaces"

	"github.com/sirupsen/logrus"
)

// RecommendationService evaluates whether the options market is mispricing
// near-term volatility around an earnings report for a single symbol
type RecommendationService struct {
	dataService interfaces.MarketDataService
	logger      *logrus.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(dataService interfaces.MarketDataService) *RecommendationService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &RecommendationService{
		dataService: dataService,
		logger:      logger,
	}
}

// Recommendation is the terminal output record of one evaluation. It is a
// plain snapshot of the derived metrics; nothing in it references the data
// source, so the caller owns it outright.
type Recommendation struct {
	Symbol          string    `json:"symbol"`
	UnderlyingPrice float64   `json:"underlying_price"`
	MarketCap       float64   `json:"market_cap"`
	EvaluatedAt     time.Time `json:"evaluated_at"`

	AvgVolume30D   float64 `json:"avg_volume_30d"`
	VolumeAdequate bool    `json:"volume_adequate"`

	IVRVRatio    float64 `json:"iv30_rv30"`
	IVRVElevated bool    `json:"iv30_rv30_elevated"`

	Slope         float64 `json:"ts_slope_0_45"`
	SlopeDefined  bool    `json:"ts_slope_defined"`
	SlopeInverted bool    `json:"ts_slope_inverted"`

	ExpectedMovePct float64 `json:"expected_move_pct"`
	HasExpectedMove bool    `json:"has_expected_move"`

	IVPercentile    float64            `json:"iv_percentile"`
	MispricingRatio float64            `json:"mispricing_ratio"`
	PastMoves       map[string]float64 `json:"past_moves,omitempty"`

	Strategy       string `json:"strategy"`
	ExpirationDays int    `json:"expiration_days"`
}

// Lookback windows for the two history-based calculations.
const (
	shortLookback = 90 * 24 * time.Hour  // realized vol, average volume
	yearLookback  = 365 * 24 * time.Hour // percentile and earnings moves
)

// Evaluate runs the full decision pipeline for one symbol. All market data
// is fetched up front through the data service; everything after that is
// pure computation. Expected data shortfalls surface as the typed errors in
// the interfaces package; anything else is wrapped in an EvaluationError.
func (rs *RecommendationService) Evaluate(ctx context.Context, symbol string, vixLevel float64) (*Recommendation, error) {
	rec, err := rs.evaluate(ctx, symbol, vixLevel)
	if err != nil && !isExpectedFailure(err) {
		return nil, &interfaces.EvaluationError{Symbol: symbol, Err: err}
	}
	return rec, err
}

func isExpectedFailure(err error) bool {
	return errors.Is(err, interfaces.ErrNoOptions) ||
		errors.Is(err, interfaces.ErrInsufficientExpirations) ||
		errors.Is(err, interfaces.ErrNoPrice) ||
		errors.Is(err, interfaces.ErrNoAtmIV) ||
		errors.Is(err, interfaces.ErrInsufficientHistory)
}

func (rs *RecommendationService) evaluate(ctx context.Context, symbol string, vixLevel float64) (*Recommendation, error) {
	log := rs.logger.WithField("symbol", symbol)

	expirations, err := rs.dataService.GetExpirations(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(expirations) == 0 {
		return nil, interfaces.ErrNoOptions
	}

	now := time.Now()
	selected, err := FilterExpirations(expirations, now)
	if err != nil {
		return nil, err
	}

	spot, err := rs.dataService.GetUnderlyingPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// reduce each usable expiration to a term-structure point; the first
	// usable one also supplies the straddle and the skew inputs
	var (
		dtes          []int
		ivs           []float64
		nearCallIV    float64
		nearPutIV     float64
		straddle      float64
		straddleOK    bool
		haveNearQuote bool
	)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, expDate := range selected {
		chain, err := rs.dataService.GetOptionChain(ctx, symbol, expDate)
		if err != nil {
			return nil, fmt.Errorf("fetching chain for %s: %w", expDate, err)
		}
		iv, ok := AtmImpliedVol(chain, spot)
		if !ok {
			log.WithField("expiration", expDate).Debug("Skipping expiration with one-sided chain")
			continue
		}

		exp, err := time.Parse("2006-01-02", chain.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration date %q: %w", chain.ExpirationDate, err)
		}
		dtes = append(dtes, int(exp.Sub(today).Hours()/24))
		ivs = append(ivs, iv)

		if !haveNearQuote {
			call, put, _ := AtmQuotes(chain, spot)
			nearCallIV = call.ImpliedVolatility
			nearPutIV = put.ImpliedVolatility
			straddle, straddleOK = StraddleMid(chain, spot)
			haveNearQuote = true
		}
	}
	if len(dtes) == 0 {
		return nil, interfaces.ErrNoAtmIV
	}

	ts, err := NewTermStructure(dtes, ivs)
	if err != nil {
		return nil, err
	}
	slope, slopeDefined := ts.Slope(ts.MinDays(), expirationCutoffDays)

	history, err := rs.dataService.GetPriceHistory(ctx, symbol, shortLookback)
	if err != nil {
		return nil, fmt.Errorf("fetching price history: %w", err)
	}
	rv30, err := YangZhang(history, DefaultRVWindow, DefaultTradingPeriods)
	if err != nil {
		return nil, err
	}
	iv30 := ts.ValueAt(30)
	ivRV := iv30 / rv30

	avgVolume, err := averageVolume(history, 30)
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{
		Symbol:          symbol,
		UnderlyingPrice: spot,
		EvaluatedAt:     now,
		AvgVolume30D:    avgVolume,
		VolumeAdequate:  avgVolume >= minAdequateVolume,
		IVRVRatio:       ivRV,
		IVRVElevated:    ivRV >= minElevatedIVRV,
		Slope:           slope,
		SlopeDefined:    slopeDefined,
		SlopeInverted:   slopeDefined && slope <= maxInvertedSlope,
		MispricingRatio: 1.0,
		IVPercentile:    100.0,
	}

	if straddleOK && spot > 0 {
		rec.ExpectedMovePct = straddle / spot * 100.0
		rec.HasExpectedMove = true
	}

	// an undefined slope contributes no term-structure signal to the
	// horizon ladder
	strategySlope := slope
	if !slopeDefined {
		strategySlope = 0
	}
	rec.Strategy, rec.ExpirationDays = SelectStrategy(nearCallIV, nearPutIV, strategySlope, ivRV, vixLevel)

	marketCap, err := rs.dataService.GetMarketCap(ctx, symbol)
	if err != nil {
		log.WithError(err).Debug("Market cap unavailable, defaulting to 0")
		marketCap = 0
	}
	rec.MarketCap = marketCap

	yearHistory, err := rs.dataService.GetPriceHistory(ctx, symbol, yearLookback)
	if err != nil {
		return nil, fmt.Errorf("fetching one-year history: %w", err)
	}
	rec.IVPercentile = ivPercentile(iv30, yearHistory, 30)

	events, err := rs.dataService.GetEarningsEvents(ctx, symbol)
	if err != nil {
		// no historical earnings data is a degraded input, not a failure
		log.WithError(err).Debug("Earnings history unavailable")
		events = nil
	}
	rec.PastMoves = HistoricalMoves(events, yearHistory)
	if avg, ok := AverageMove(rec.PastMoves); ok && avg > 0 && rec.HasExpectedMove {
		rec.MispricingRatio = rec.ExpectedMovePct / avg
	}

	log.WithFields(logrus.Fields{
		"iv30_rv30":     rec.IVRVRatio,
		"ts_slope_0_45": rec.Slope,
		"avg_volume":    rec.AvgVolume30D,
	}).Info("Evaluation complete")

	return rec, nil
}

// averageVolume returns the mean share volume of the most recent window bars.
func averageVolume(bars []interfaces.PriceBar, window int) (float64, error) {
	if len(bars) < window {
		return 0, interfaces.ErrInsufficientHistory
	}
	total := int64(0)
	for _, b := range bars[len(bars)-window:] {
		total += b.Volume
	}
	return float64(total) / float64(window), nil
}

// ivPercentile maps the current 30-day implied vol against the one-year
// range of rolling close-price standard deviations. The two are not on the
// same scale; the mapping is kept as-is rather than silently reworked
// into an IV-rank.
func ivPercentile(iv30 float64, bars []interfaces.PriceBar, window int) float64 {
	stds := rollingCloseStd(bars, window)
	if len(stds) == 0 {
		return 100.0
	}
	lo, hi := stds[0], stds[0]
	for _, s := range stds[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if hi == lo {
		return 100.0
	}
	pct := (iv30 - lo) / (hi - lo) * 100.0
	return math.Round(pct*100) / 100
}

// rollingCloseStd computes the rolling sample standard deviation of closing
// prices over the window.
func rollingCloseStd(bars []interfaces.PriceBar, window int) []float64 {
	if len(bars) < window || window < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-window+1)
	for i := window; i <= len(bars); i++ {
		sum := 0.0
		for _, b := range bars[i-window : i] {
			sum += b.Close
		}
		mean := sum / float64(window)
		variance := 0.0
		for _, b := range bars[i-window : i] {
			diff := b.Close - mean
			variance += diff * diff
		}
		variance /= float64(window - 1)
		out = append(out, math.Sqrt(variance))
	}
	return out
}
