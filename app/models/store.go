package models

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one completed simulation run. Only finished runs are
// persisted; a run that ends in an error leaves no record.
type RunRecord struct {
	ID                  string    `gorm:"primary_key" json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	Strategy            string    `json:"strategy"`
	Benchmark           string    `json:"benchmark"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	StartingValue       float64   `json:"starting_value"`
	FinalValue          float64   `json:"final_portfolio_value"`
	FinalBenchmarkValue *float64  `json:"final_benchmark_value"`
	TotalReturnPct      float64   `json:"total_return_pct"`
	DurationSeconds     float64   `json:"duration_seconds"`

	Trades      []TradeRecord      `gorm:"foreignKey:RunID" json:"trades,omitempty"`
	DailyValues []DailyValueRecord `gorm:"foreignKey:RunID" json:"daily_values,omitempty"`
}

// TradeRecord is one closed trade belonging to a run
type TradeRecord struct {
	ID           int       `gorm:"primary_key" json:"-"`
	RunID        string    `gorm:"index" json:"-"`
	TradeID      string    `json:"trade_id"`
	Ticker       string    `json:"ticker"`
	Position     string    `json:"position"`
	Quantity     float64   `json:"quantity"`
	EntryDate    time.Time `json:"entry_date"`
	EntryPrice   float64   `json:"entry_price"`
	ExitDate     time.Time `json:"exit_date"`
	ExitPrice    float64   `json:"exit_price"`
	PNL          float64   `json:"pnl"`
	PNLPercent   float64   `json:"pnl_pct"`
	DurationDays int       `json:"duration_days"`
}

// DailyValueRecord is one day of the portfolio/benchmark value series
type DailyValueRecord struct {
	ID             int       `gorm:"primary_key" json:"-"`
	RunID          string    `gorm:"index" json:"-"`
	Date           time.Time `json:"date"`
	PortfolioValue float64   `json:"portfolio_value"`
	BenchmarkValue *float64  `json:"benchmark_value"`
}

// Store persists run history. It is constructed and passed in rather
// than held as a package global, so tests and runs stay isolated.
type Store struct {
	db *gorm.DB
}

// NewStore opens the sqlite database at path and migrates the schema
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("database open error: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}, &TradeRecord{}, &DailyValueRecord{}); err != nil {
		return nil, fmt.Errorf("database migrate error: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveRun creates the run with its trades and daily values
func (s *Store) SaveRun(run *RunRecord) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("run create error: %w", err)
	}
	return nil
}

// GetRun returns one run with trades and daily values attached
func (s *Store) GetRun(id string) (*RunRecord, error) {
	var run RunRecord
	err := s.db.Preload("Trades").Preload("DailyValues").First(&run, RunRecord{ID: id}).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns run headers newest first, without child rows
func (s *Store) ListRuns() ([]RunRecord, error) {
	var runs []RunRecord
	if err := s.db.Order("created_at desc").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteRun removes a run and everything attached to it
func (s *Store) DeleteRun(id string) error {
	if err := s.db.Delete(&TradeRecord{}, "run_id = ?", id).Error; err != nil {
		return err
	}
	if err := s.db.Delete(&DailyValueRecord{}, "run_id = ?", id).Error; err != nil {
		return err
	}
	return s.db.Delete(&RunRecord{}, "id = ?", id).Error
}
