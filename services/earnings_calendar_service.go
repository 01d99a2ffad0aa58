package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"earnings-scanner/interfaces"
)

// minScanMarketCap filters the daily calendar down to names liquid enough
// to carry a tradeable options market.
const minScanMarketCap = 1_000_000_000

// calendarSplitTime is the wall-clock boundary used to split a calendar day
// between after-close reports and the next morning's before-open reports.
const calendarSplitTime = "15:00:00"

// calendarEntry represents one row of the earnings calendar API response
type calendarEntry struct {
	Symbol       string  `json:"symbol"`
	EarningsDate string  `json:"earningsDate"`
	EarningsTime string  `json:"earningsTime"`
	MarketCap    float64 `json:"marketCap"`
}

// EarningsCalendarService fetches earnings calendar data over HTTP
type EarningsCalendarService struct {
	baseURL    string
	httpClient *http.Client
}

// NewEarningsCalendarService creates a new earnings calendar service
func NewEarningsCalendarService() *EarningsCalendarService {
	return &EarningsCalendarService{
		baseURL: "https://api.savvytrader.com/pricing/assets",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (cs *EarningsCalendarService) fetchJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := cs.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("calendar: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar decode: %w", err)
	}
	return nil
}

// exchangeLocal is the timezone earnings report times are quoted in.
func exchangeLocal() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

func (ce calendarEntry) toEvent() (interfaces.EarningsEvent, error) {
	clock := ce.EarningsTime
	if clock == "" {
		clock = "00:00:00"
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", ce.EarningsDate+" "+clock, exchangeLocal())
	if err != nil {
		return interfaces.EarningsEvent{}, fmt.Errorf("invalid earnings entry for %s: %w", ce.Symbol, err)
	}
	return interfaces.EarningsEvent{
		Symbol:    ce.Symbol,
		Timestamp: ts,
		Timing:    interfaces.TimingUnknown,
		MarketCap: ce.MarketCap,
	}, nil
}

// GetEarningsForDate returns the tickers whose earnings land on the trading
// session anchored at the given date: reports after the close that day plus
// reports before the open the next day. Entries below the market-cap floor
// are dropped.
func (cs *EarningsCalendarService) GetEarningsForDate(ctx context.Context, date time.Time) ([]interfaces.EarningsEvent, error) {
	from := date.Format("2006-01-02")
	to := date.AddDate(0, 0, 1).Format("2006-01-02")
	url := fmt.Sprintf("%s/earnings/calendar/daily?start=%s&end=%s", cs.baseURL, from, to)

	var calendar map[string][]calendarEntry
	if err := cs.fetchJSON(ctx, url, &calendar); err != nil {
		return nil, err
	}

	split, _ := time.Parse("15:04:05", calendarSplitTime)
	afterSplit := func(e calendarEntry) bool {
		t, err := time.Parse("15:04:05", e.EarningsTime)
		return err == nil && !t.Before(split)
	}

	events := []interfaces.EarningsEvent{}
	appendEntries := func(entries []calendarEntry, wantAfterSplit bool) {
		for _, entry := range entries {
			if afterSplit(entry) != wantAfterSplit {
				continue
			}
			if entry.MarketCap < minScanMarketCap {
				continue
			}
			event, err := entry.toEvent()
			if err != nil {
				continue
			}
			events = append(events, event)
		}
	}

	appendEntries(calendar[from], true)
	appendEntries(calendar[to], false)
	return events, nil
}

// GetEarningsHistory returns a symbol's historical earnings events, oldest
// first.
func (cs *EarningsCalendarService) GetEarningsHistory(ctx context.Context, symbol string) ([]interfaces.EarningsEvent, error) {
	url := fmt.Sprintf("%s/earnings/history?symbol=%s", cs.baseURL, symbol)

	var entries []calendarEntry
	if err := cs.fetchJSON(ctx, url, &entries); err != nil {
		return nil, err
	}

	events := make([]interfaces.EarningsEvent, 0, len(entries))
	for _, entry := range entries {
		event, err := entry.toEvent()
		if err != nil {
			continue
		}
		if event.Symbol == "" {
			event.Symbol = symbol
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}
