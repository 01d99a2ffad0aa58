package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"earnings-scanner/interfaces"
	"earnings-scanner/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalStorage implements the StorageService interface using SQLite. It
// caches fetched market data (daily bars, earnings events) so repeated
// scans of overlapping ticker sets do not hammer the upstream APIs.
// Evaluation results are never stored.
type LocalStorage struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewLocalStorage creates a new local storage service
func NewLocalStorage(dbPath string) (*LocalStorage, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.DBBar{},
		&models.DBEarningsEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &LocalStorage{
		db:     db,
		logger: log,
	}, nil
}

// SaveBars replaces the cached daily bars for a symbol over the span of the
// supplied slice.
func (s *LocalStorage) SaveBars(symbol string, bars []interfaces.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	start := bars[0].Date
	end := bars[len(bars)-1].Date
	if err := s.db.Where("symbol = ? AND date >= ? AND date <= ?", symbol, start, end).
		Delete(&models.DBBar{}).Error; err != nil {
		return fmt.Errorf("failed to clear stale bars: %w", err)
	}

	now := time.Now()
	dbBars := make([]*models.DBBar, len(bars))
	for i, bar := range bars {
		dbBars[i] = &models.DBBar{
			Symbol:    symbol,
			Date:      bar.Date,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
			FetchedAt: now,
		}
	}

	result := s.db.Create(&dbBars)
	if result.Error != nil {
		return fmt.Errorf("failed to save bars: %w", result.Error)
	}

	s.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"saved":  result.RowsAffected,
	}).Debug("Bars cached")
	return nil
}

// GetBars retrieves cached bars for a symbol within a time range, oldest
// first.
func (s *LocalStorage) GetBars(symbol string, start, end time.Time) ([]interfaces.PriceBar, error) {
	var dbBars []*models.DBBar

	result := s.db.Where("symbol = ? AND date >= ? AND date <= ?", symbol, start, end).
		Order("date ASC").
		Find(&dbBars)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get bars: %w", result.Error)
	}

	bars := make([]interfaces.PriceBar, len(dbBars))
	for i, dbBar := range dbBars {
		bars[i] = interfaces.PriceBar{
			Date:   dbBar.Date,
			Open:   dbBar.Open,
			High:   dbBar.High,
			Low:    dbBar.Low,
			Close:  dbBar.Close,
			Volume: dbBar.Volume,
		}
	}
	return bars, nil
}

// SaveEarningsEvents replaces the cached earnings history for a symbol.
func (s *LocalStorage) SaveEarningsEvents(symbol string, events []interfaces.EarningsEvent) error {
	if err := s.db.Where("symbol = ?", symbol).Delete(&models.DBEarningsEvent{}).Error; err != nil {
		return fmt.Errorf("failed to clear stale earnings events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	now := time.Now()
	dbEvents := make([]*models.DBEarningsEvent, len(events))
	for i, event := range events {
		dbEvents[i] = &models.DBEarningsEvent{
			Symbol:    symbol,
			Reported:  event.Timestamp,
			Timing:    string(event.Timing),
			MarketCap: event.MarketCap,
			FetchedAt: now,
		}
	}

	result := s.db.Create(&dbEvents)
	if result.Error != nil {
		return fmt.Errorf("failed to save earnings events: %w", result.Error)
	}
	return nil
}

// GetEarningsEvents retrieves the cached earnings history for a symbol,
// oldest first.
func (s *LocalStorage) GetEarningsEvents(symbol string) ([]interfaces.EarningsEvent, error) {
	var dbEvents []*models.DBEarningsEvent

	result := s.db.Where("symbol = ?", symbol).
		Order("reported ASC").
		Find(&dbEvents)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get earnings events: %w", result.Error)
	}

	events := make([]interfaces.EarningsEvent, len(dbEvents))
	for i, dbEvent := range dbEvents {
		events[i] = interfaces.EarningsEvent{
			Symbol:    dbEvent.Symbol,
			Timestamp: dbEvent.Reported,
			Timing:    interfaces.EarningsTiming(dbEvent.Timing),
			MarketCap: dbEvent.MarketCap,
		}
	}
	return events, nil
}

// CleanupOldData removes cached data older than the specified time
func (s *LocalStorage) CleanupOldData(before time.Time) error {
	s.logger.WithField("before", before).Info("Cleaning up old cached data")

	if err := s.db.Where("date < ?", before).Delete(&models.DBBar{}).Error; err != nil {
		return fmt.Errorf("failed to delete old bars: %w", err)
	}
	if err := s.db.Where("reported < ?", before).Delete(&models.DBEarningsEvent{}).Error; err != nil {
		return fmt.Errorf("failed to delete old earnings events: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *LocalStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
