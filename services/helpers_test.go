package services

import (
	"context"
	"math"
	"time"

	"earnings-scanner/interfaces"
)

// genAlternatingBars produces n daily weekday bars whose close alternates up
// and down by a fixed log-return r, with each open equal to the prior close
// and high/low hugging the open/close. For this shape the Yang-Zhang
// overnight and Rogers-Satchell components vanish, so the expected vol has
// the closed form sqrt(k*W/(W-1)) * r * sqrt(252).
func genAlternatingBars(start time.Time, n int, r float64) []interfaces.PriceBar {
	bars := make([]interfaces.PriceBar, 0, n)
	price := 100.0
	day := start
	for len(bars) < n {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		open := price
		if len(bars)%2 == 0 {
			price = open * math.Exp(r)
		} else {
			price = open * math.Exp(-r)
		}
		high := math.Max(open, price)
		low := math.Min(open, price)
		bars = append(bars, interfaces.PriceBar{
			Date:   day,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 2_000_000,
		})
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

// expectedAlternatingVol is the closed-form Yang-Zhang vol for
// genAlternatingBars input.
func expectedAlternatingVol(window int, r float64) float64 {
	k := 0.34 / (1.34 + float64(window+1)/float64(window-1))
	return math.Sqrt(k*float64(window)/float64(window-1)) * r * math.Sqrt(252)
}

// twoSidedChain builds a one-strike chain with matching call/put IVs and
// two-sided quotes, enough for a term-structure point and a straddle.
func twoSidedChain(expiration string, strike, callIV, putIV float64) *interfaces.ExpirationChain {
	return &interfaces.ExpirationChain{
		ExpirationDate: expiration,
		Calls: []interfaces.OptionQuote{
			{Strike: strike, Bid: 3.0, Ask: 3.2, HasBid: true, HasAsk: true, ImpliedVolatility: callIV},
		},
		Puts: []interfaces.OptionQuote{
			{Strike: strike, Bid: 2.8, Ask: 3.0, HasBid: true, HasAsk: true, ImpliedVolatility: putIV},
		},
	}
}

// stubMarketData is a canned MarketDataService for pipeline tests.
type stubMarketData struct {
	expirations    []string
	expirationsErr error
	chains         map[string]*interfaces.ExpirationChain
	chainErr       error
	price          float64
	priceErr       error
	shortBars      []interfaces.PriceBar
	yearBars       []interfaces.PriceBar
	historyErr     error
	events         []interfaces.EarningsEvent
	eventsErr      error
	marketCap      float64
	vix            float64
	perSymbolErr   map[string]error
}

func (s *stubMarketData) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	if err, ok := s.perSymbolErr[symbol]; ok {
		return nil, err
	}
	return s.expirations, s.expirationsErr
}

func (s *stubMarketData) GetOptionChain(ctx context.Context, symbol, expirationDate string) (*interfaces.ExpirationChain, error) {
	if s.chainErr != nil {
		return nil, s.chainErr
	}
	if chain, ok := s.chains[expirationDate]; ok {
		return chain, nil
	}
	return &interfaces.ExpirationChain{ExpirationDate: expirationDate}, nil
}

func (s *stubMarketData) GetUnderlyingPrice(ctx context.Context, symbol string) (float64, error) {
	return s.price, s.priceErr
}

func (s *stubMarketData) GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]interfaces.PriceBar, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if lookback > 180*24*time.Hour {
		return s.yearBars, nil
	}
	return s.shortBars, nil
}

func (s *stubMarketData) GetEarningsEvents(ctx context.Context, symbol string) ([]interfaces.EarningsEvent, error) {
	return s.events, s.eventsErr
}

func (s *stubMarketData) GetMarketCap(ctx context.Context, symbol string) (float64, error) {
	return s.marketCap, nil
}

func (s *stubMarketData) GetVixLevel(ctx context.Context) (float64, error) {
	return s.vix, nil
}
