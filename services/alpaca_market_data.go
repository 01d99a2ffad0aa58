package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"earnings-scanner/interfaces"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/sirupsen/logrus"
)

// AlpacaMarketDataService implements MarketDataService on top of Alpaca's
// stock and options data APIs, with a local cache for bars and earnings
// events and a Yahoo Finance fallback for the VIX index (Alpaca does not
// serve index quotes).
type AlpacaMarketDataService struct {
	apiKey    string
	secretKey string
	baseURL   string
	mdClient  *marketdata.Client
	client    *http.Client
	logger    *logrus.Logger

	earnings *EarningsCalendarService
	storage  interfaces.StorageService
}

// NewAlpacaMarketDataService creates a new Alpaca market data service.
// storage may be nil to run without the local cache.
func NewAlpacaMarketDataService(apiKey, secretKey string, earnings *EarningsCalendarService, storage interfaces.StorageService) *AlpacaMarketDataService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &AlpacaMarketDataService{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   "https://data.alpaca.markets",
		mdClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: secretKey,
		}),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		earnings: earnings,
		storage:  storage,
	}
}

// alpacaContractsResponse represents the option contracts listing
type alpacaContractsResponse struct {
	OptionContracts []struct {
		Symbol         string `json:"symbol"`
		ExpirationDate string `json:"expiration_date"`
	} `json:"option_contracts"`
	NextPageToken string `json:"next_page_token"`
}

// alpacaChainSnapshot represents the per-expiration chain snapshot response
type alpacaChainSnapshot struct {
	Snapshots map[string]struct {
		LatestQuote struct {
			BidPrice float64 `json:"bp"`
			AskPrice float64 `json:"ap"`
		} `json:"latestQuote"`
		ImpliedVolatility float64 `json:"impliedVolatility"`
	} `json:"snapshots"`
	NextPageToken string `json:"next_page_token"`
}

func (s *AlpacaMarketDataService) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", s.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetExpirations returns the distinct listed expiration dates for a symbol,
// ascending.
func (s *AlpacaMarketDataService) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	url := fmt.Sprintf("%s/v1beta1/options/contracts?underlying_symbols=%s&limit=10000", s.baseURL, symbol)

	var resp alpacaContractsResponse
	if err := s.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching contracts for %s: %w", symbol, err)
	}
	if len(resp.OptionContracts) == 0 {
		return nil, interfaces.ErrNoOptions
	}

	seen := make(map[string]bool)
	dates := []string{}
	for _, c := range resp.OptionContracts {
		if !seen[c.ExpirationDate] {
			seen[c.ExpirationDate] = true
			dates = append(dates, c.ExpirationDate)
		}
	}
	sort.Strings(dates)

	s.logger.WithFields(logrus.Fields{
		"symbol":      symbol,
		"expirations": len(dates),
	}).Debug("Fetched expirations")
	return dates, nil
}

// parseOCCSymbol extracts the contract type and strike from an OCC option
// symbol (e.g. AAPL241220C00150000).
func parseOCCSymbol(symbol string) (contractType byte, strike float64, ok bool) {
	if len(symbol) < 9+6 {
		return 0, 0, false
	}
	strikeStr := symbol[len(symbol)-8:]
	contractType = symbol[len(symbol)-9]
	if contractType != 'C' && contractType != 'P' {
		return 0, 0, false
	}
	millis, err := strconv.ParseInt(strikeStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return contractType, float64(millis) / 1000.0, true
}

// GetOptionChain fetches the call/put chain snapshot for one expiration.
// Quotes are ordered by ascending strike; nearest-strike tie-breaking in the
// engine relies on that ordering being stable.
func (s *AlpacaMarketDataService) GetOptionChain(ctx context.Context, symbol, expirationDate string) (*interfaces.ExpirationChain, error) {
	url := fmt.Sprintf("%s/v1beta1/options/snapshots/%s?expiration_date=%s&limit=1000",
		s.baseURL, symbol, expirationDate)

	var resp alpacaChainSnapshot
	if err := s.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching chain %s %s: %w", symbol, expirationDate, err)
	}

	chain := &interfaces.ExpirationChain{ExpirationDate: expirationDate}
	for occ, snap := range resp.Snapshots {
		contractType, strike, ok := parseOCCSymbol(occ)
		if !ok {
			continue
		}
		quote := interfaces.OptionQuote{
			Strike:            strike,
			Bid:               snap.LatestQuote.BidPrice,
			Ask:               snap.LatestQuote.AskPrice,
			HasBid:            snap.LatestQuote.BidPrice > 0,
			HasAsk:            snap.LatestQuote.AskPrice > 0,
			ImpliedVolatility: snap.ImpliedVolatility,
		}
		if contractType == 'C' {
			chain.Calls = append(chain.Calls, quote)
		} else {
			chain.Puts = append(chain.Puts, quote)
		}
	}
	sort.Slice(chain.Calls, func(i, j int) bool { return chain.Calls[i].Strike < chain.Calls[j].Strike })
	sort.Slice(chain.Puts, func(i, j int) bool { return chain.Puts[i].Strike < chain.Puts[j].Strike })

	return chain, nil
}

// GetUnderlyingPrice returns the latest trade price for a symbol.
func (s *AlpacaMarketDataService) GetUnderlyingPrice(ctx context.Context, symbol string) (float64, error) {
	trade, err := s.mdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil || trade == nil || trade.Price <= 0 {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("No latest trade")
		return 0, interfaces.ErrNoPrice
	}
	return trade.Price, nil
}

// GetPriceHistory returns daily bars for the trailing lookback window,
// oldest first. Fetched bars are written through to the cache; on API
// failure the cache serves what it has.
func (s *AlpacaMarketDataService) GetPriceHistory(ctx context.Context, symbol string, lookback time.Duration) ([]interfaces.PriceBar, error) {
	end := time.Now()
	start := end.Add(-lookback)

	alpacaBars, err := s.mdClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        end,
		Adjustment: marketdata.Split,
	})
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Bar fetch failed, trying cache")
		if s.storage != nil {
			if cached, cacheErr := s.storage.GetBars(symbol, start, end); cacheErr == nil && len(cached) > 0 {
				return cached, nil
			}
		}
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}

	bars := make([]interfaces.PriceBar, len(alpacaBars))
	for i, b := range alpacaBars {
		bars[i] = interfaces.PriceBar{
			Date:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveBars(symbol, bars); err != nil {
			s.logger.WithError(err).Debug("Bar cache write failed")
		}
	}
	return bars, nil
}

// GetEarningsEvents returns the historical earnings events for a symbol,
// read through the cache.
func (s *AlpacaMarketDataService) GetEarningsEvents(ctx context.Context, symbol string) ([]interfaces.EarningsEvent, error) {
	events, err := s.earnings.GetEarningsHistory(ctx, symbol)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Earnings fetch failed, trying cache")
		if s.storage != nil {
			if cached, cacheErr := s.storage.GetEarningsEvents(symbol); cacheErr == nil {
				return cached, nil
			}
		}
		return nil, err
	}

	if s.storage != nil {
		if err := s.storage.SaveEarningsEvents(symbol, events); err != nil {
			s.logger.WithError(err).Debug("Earnings cache write failed")
		}
	}
	return events, nil
}

// GetMarketCap returns the market capitalization snapshot carried on the
// symbol's most recent earnings calendar entry, 0 when unavailable.
func (s *AlpacaMarketDataService) GetMarketCap(ctx context.Context, symbol string) (float64, error) {
	events, err := s.GetEarningsEvents(ctx, symbol)
	if err != nil || len(events) == 0 {
		return 0, nil
	}
	return events[len(events)-1].MarketCap, nil
}

// yahooChart is the response structure of the Yahoo Finance chart API,
// used only for the VIX level.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetVixLevel returns the current VIX index level.
func (s *AlpacaMarketDataService) GetVixLevel(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1d",
		url.PathEscape("^VIX"))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("vix fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("vix read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("vix: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("vix decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("vix api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("vix: no data returned")
	}
	return chart.Chart.Result[0].Meta.RegularMarketPrice, nil
}
