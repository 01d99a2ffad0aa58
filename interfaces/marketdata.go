package interfaces

import (
	"context"
	"time"
)

// PriceBar represents one daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// OptionQuote represents a single option row in a chain
type OptionQuote struct {
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	HasBid            bool    `json:"has_bid"`
	HasAsk            bool    `json:"has_ask"`
	ImpliedVolatility float64 `json:"implied_volatility"`
}

// ExpirationChain represents the call and put sides of one expiration.
// Quote ordering is preserved exactly as supplied by the data source;
// nearest-strike selection depends on it for tie-breaking.
type ExpirationChain struct {
	ExpirationDate string        `json:"expiration_date"` // ISO calendar date
	Calls          []OptionQuote `json:"calls"`
	Puts           []OptionQuote `json:"puts"`
}

// EarningsTiming indicates when in the trading day earnings are reported
type EarningsTiming string

const (
	TimingBeforeOpen EarningsTiming = "BEFORE_OPEN"
	TimingAfterClose EarningsTiming = "AFTER_CLOSE"
	TimingUnknown    EarningsTiming = "UNKNOWN"
)

// EarningsEvent represents one historical or upcoming earnings report.
// Timestamp carries the exchange-local wall-clock time of the announcement.
type EarningsEvent struct {
	Symbol    string         `json:"symbol"`
	Timestamp time.Time      `json:"timestamp"`
	Timing    EarningsTiming `json:"timing"`
	MarketCap float64        `json:"market_cap,omitempty"`
}

// MarketDataService defines the interface for market data operations
type MarketDataService interface {
	// GetExpirations returns the listed option expiration dates (ISO,
	// ascending) for a symbol. Returns ErrNoOptions when none are listed.
	GetExpirations(ctx context.Context, symbol string) ([]string, error)

	// GetOptionChain returns the call/put chain for one expiration.
	GetOptionChain(ctx context.Context, symbol, expirationDate string) (*ExpirationChain, error)

	// GetUnderlyingPrice returns the latest trade price of the underlying.
	// Returns ErrNoPrice when unavailable.
	GetUnderlyingPrice(ctx context.Context, symbol string) (float64, error)

	// GetPriceHistory returns daily bars covering the trailing lookback
	// window, oldest first.
	GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]PriceBar, error)

	// GetEarningsEvents returns historical earnings events for a symbol,
	// oldest first. An empty slice means no historical data, not an error.
	GetEarningsEvents(ctx context.Context, symbol string) ([]EarningsEvent, error)

	// GetMarketCap returns the market capitalization in dollars, 0 when
	// unavailable.
	GetMarketCap(ctx context.Context, symbol string) (float64, error)

	// GetVixLevel returns the current VIX index level.
	GetVixLevel(ctx context.Context) (float64, error)
}

// EarningsCalendarService defines the interface for the daily earnings calendar
type EarningsCalendarService interface {
	// GetEarningsForDate returns the tickers reporting around the given
	// calendar date: after the close that day plus before the open the
	// next day.
	GetEarningsForDate(ctx context.Context, date time.Time) ([]EarningsEvent, error)
}

// StorageService defines the interface for the local market-data cache
type StorageService interface {
	SaveBars(symbol string, bars []PriceBar) error
	GetBars(symbol string, start, end time.Time) ([]PriceBar, error)
	SaveEarningsEvents(symbol string, events []EarningsEvent) error
	GetEarningsEvents(symbol string) ([]EarningsEvent, error)
	CleanupOldData(before time.Time) error
}
