package models

import (
	"time"

	"gorm.io/gorm"
)

// DBBar represents a cached daily price bar in the database
type DBBar struct {
	gorm.Model
	Symbol    string    `gorm:"index:idx_symbol_date"`
	Date      time.Time `gorm:"index:idx_symbol_date"`
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	FetchedAt time.Time
}

// DBEarningsEvent represents a cached historical earnings event
type DBEarningsEvent struct {
	gorm.Model
	Symbol    string    `gorm:"index:idx_symbol_reported"`
	Reported  time.Time `gorm:"index:idx_symbol_reported"`
	Timing    string    // "BEFORE_OPEN", "AFTER_CLOSE", "UNKNOWN"
	MarketCap float64
	FetchedAt time.Time
}

// TableName overrides for cleaner table names
func (DBBar) TableName() string {
	return "bars"
}

func (DBEarningsEvent) TableName() string {
	return "earnings_events"
}
