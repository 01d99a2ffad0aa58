package services

import (
	"math"

	"earnings-scanner/interfaces"
)

// nearestStrikeIndex returns the index of the quote whose strike is closest
// to the underlying price. Ties keep the first occurrence in the supplied
// ordering, matching what the data source listed first.
func nearestStrikeIndex(quotes []interfaces.OptionQuote, spot float64) int {
	best := 0
	bestDiff := math.Abs(quotes[0].Strike - spot)
	for i := 1; i < len(quotes); i++ {
		diff := math.Abs(quotes[i].Strike - spot)
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}

// AtmQuotes returns the at-the-money call and put quotes of a chain. ok is
// false when either side of the chain is empty; such expirations are skipped
// rather than errored.
func AtmQuotes(chain *interfaces.ExpirationChain, spot float64) (call, put interfaces.OptionQuote, ok bool) {
	if len(chain.Calls) == 0 || len(chain.Puts) == 0 {
		return interfaces.OptionQuote{}, interfaces.OptionQuote{}, false
	}
	call = chain.Calls[nearestStrikeIndex(chain.Calls, spot)]
	put = chain.Puts[nearestStrikeIndex(chain.Puts, spot)]
	return call, put, true
}

// AtmImpliedVol reduces one expiration's chain to a single ATM implied vol,
// the arithmetic mean of the call-side and put-side IVs at their nearest
// strikes.
func AtmImpliedVol(chain *interfaces.ExpirationChain, spot float64) (iv float64, ok bool) {
	call, put, ok := AtmQuotes(chain, spot)
	if !ok {
		return 0, false
	}
	return (call.ImpliedVolatility + put.ImpliedVolatility) / 2.0, true
}

// quoteMid returns the bid/ask midpoint, undefined unless both sides of the
// quote are present.
func quoteMid(q interfaces.OptionQuote) (float64, bool) {
	if !q.HasBid || !q.HasAsk {
		return 0, false
	}
	return (q.Bid + q.Ask) / 2.0, true
}

// StraddleMid returns the ATM straddle mid-price (call mid + put mid) for a
// chain. The straddle is undefined when either leg lacks a two-sided quote.
func StraddleMid(chain *interfaces.ExpirationChain, spot float64) (price float64, ok bool) {
	call, put, ok := AtmQuotes(chain, spot)
	if !ok {
		return 0, false
	}
	callMid, ok := quoteMid(call)
	if !ok {
		return 0, false
	}
	putMid, ok := quoteMid(put)
	if !ok {
		return 0, false
	}
	return callMid + putMid, true
}
