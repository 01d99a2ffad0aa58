package services

import (
	"context"
	"sync"
	"time"

	"earnings-scanner/interfaces"

	"github.com/sirupsen/logrus"
)

// Scanner batch defaults: the upstream data source tolerates around 40
// concurrent symbol fetches before throttling, and wants a pause between
// bursts.
const (
	DefaultScanBatchSize = 40
	DefaultScanCooldown  = 3 * time.Second
)

// ScannerService fans the recommendation pipeline out across every ticker
// reporting earnings on a given date
type ScannerService struct {
	calendar       interfaces.EarningsCalendarService
	dataService    interfaces.MarketDataService
	recommendation *RecommendationService
	logger         *logrus.Logger

	batchSize int
	cooldown  time.Duration
}

// NewScannerService creates a new scanner service
func NewScannerService(calendar interfaces.EarningsCalendarService, dataService interfaces.MarketDataService, recommendation *RecommendationService) *ScannerService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &ScannerService{
		calendar:       calendar,
		dataService:    dataService,
		recommendation: recommendation,
		logger:         logger,
		batchSize:      DefaultScanBatchSize,
		cooldown:       DefaultScanCooldown,
	}
}

// SetBatching overrides the batch size and inter-batch cooldown. This is a
// rate-limiting policy for the upstream data source, not a correctness
// requirement of the engine.
func (ss *ScannerService) SetBatching(batchSize int, cooldown time.Duration) {
	if batchSize > 0 {
		ss.batchSize = batchSize
	}
	if cooldown >= 0 {
		ss.cooldown = cooldown
	}
}

// ScanEntry is the per-symbol outcome of a scan
type ScanEntry struct {
	Symbol         string          `json:"symbol"`
	Decision       Decision        `json:"decision"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// ScanReport groups the per-symbol outcomes of one earnings date into the
// four decision buckets
type ScanReport struct {
	Date           string      `json:"date"`
	VixLevel       float64     `json:"vix_level"`
	Evaluated      int         `json:"evaluated"`
	RecommendShort []ScanEntry `json:"recommend_short"`
	ConsiderShort  []ScanEntry `json:"consider_short"`
	RecommendLong  []ScanEntry `json:"recommend_long"`
	Other          []ScanEntry `json:"other"`
	Failed         []ScanEntry `json:"failed,omitempty"`
}

// ScanDate evaluates every ticker reporting earnings around the given date.
// Symbols are processed in fixed-size batches through a bounded worker pool
// with a cooldown pause between batches. A failed evaluation is recorded in
// the report and never aborts its siblings.
func (ss *ScannerService) ScanDate(ctx context.Context, date time.Time) (*ScanReport, error) {
	events, err := ss.calendar.GetEarningsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{Date: date.Format("2006-01-02")}
	if len(events) == 0 {
		ss.logger.WithField("date", report.Date).Info("No earnings reports found")
		return report, nil
	}

	// the VIX level is shared by every evaluation in the run
	vix, err := ss.dataService.GetVixLevel(ctx)
	if err != nil {
		return nil, err
	}
	report.VixLevel = vix

	ss.logger.WithFields(logrus.Fields{
		"date":    report.Date,
		"tickers": len(events),
		"vix":     vix,
	}).Info("Starting earnings scan")

	var (
		mu      sync.Mutex
		entries []ScanEntry
	)

	for start := 0; start < len(events); start += ss.batchSize {
		end := start + ss.batchSize
		if end > len(events) {
			end = len(events)
		}

		var wg sync.WaitGroup
		for _, event := range events[start:end] {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				entry := ss.evaluateOne(ctx, symbol, vix)
				mu.Lock()
				entries = append(entries, entry)
				mu.Unlock()
			}(event.Symbol)
		}
		wg.Wait()

		if end < len(events) && ss.cooldown > 0 {
			time.Sleep(ss.cooldown)
		}
	}

	for _, entry := range entries {
		report.Evaluated++
		switch {
		case entry.Error != "":
			report.Failed = append(report.Failed, entry)
		case entry.Decision == DecisionRecommend:
			report.RecommendShort = append(report.RecommendShort, entry)
		case entry.Decision == DecisionConsider:
			report.ConsiderShort = append(report.ConsiderShort, entry)
		case entry.Decision == DecisionRecommendBuy:
			report.RecommendLong = append(report.RecommendLong, entry)
		default:
			report.Other = append(report.Other, entry)
		}
	}

	ss.logger.WithFields(logrus.Fields{
		"evaluated": report.Evaluated,
		"recommend": len(report.RecommendShort),
		"consider":  len(report.ConsiderShort),
		"long":      len(report.RecommendLong),
		"failed":    len(report.Failed),
	}).Info("Earnings scan complete")

	return report, nil
}

func (ss *ScannerService) evaluateOne(ctx context.Context, symbol string, vix float64) ScanEntry {
	rec, err := ss.recommendation.Evaluate(ctx, symbol, vix)
	if err != nil {
		ss.logger.WithError(err).WithField("symbol", symbol).Warn("Evaluation failed")
		return ScanEntry{Symbol: symbol, Decision: DecisionSkip, Error: err.Error()}
	}
	return ScanEntry{Symbol: symbol, Decision: Classify(rec), Recommendation: rec}
}
