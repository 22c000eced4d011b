package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed history database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&DecisionRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDecision appends a decision record to the history log.
func (d *Database) SaveDecision(record *DecisionRecord) error {
	if record == nil {
		return errors.New("decision record is nil")
	}
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("decision record id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(record).Error
}

// GetDecision fetches a single record by its identifier.
func (d *Database) GetDecision(id string) (*DecisionRecord, error) {
	var record DecisionRecord
	if err := d.gorm.First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DecisionQuery filters and paginates history listings.
type DecisionQuery struct {
	Query         string
	Source        string
	MinConfidence float64
	Offset        int
	Limit         int
}

// ListDecisions returns matching history rows, newest first, plus the total
// match count. A negative limit disables pagination.
func (d *Database) ListDecisions(q DecisionQuery) ([]DecisionRecord, int64, error) {
	tx := d.gorm.Model(&DecisionRecord{})
	if trimmed := strings.TrimSpace(q.Query); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		tx = tx.Where("LOWER(task_description) LIKE ? OR LOWER(decision) LIKE ?", like, like)
	}
	if trimmed := strings.TrimSpace(q.Source); trimmed != "" {
		tx = tx.Where("source = ?", trimmed)
	}
	if q.MinConfidence > 0 {
		tx = tx.Where("confidence >= ?", q.MinConfidence)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order("created_at DESC")
	if q.Limit >= 0 {
		limit := q.Limit
		if limit == 0 {
			limit = 100
		}
		tx = tx.Offset(q.Offset).Limit(limit)
	}

	var rows []DecisionRecord
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountDecisions returns the total number of history rows.
func (d *Database) CountDecisions() (int64, error) {
	var total int64
	err := d.gorm.Model(&DecisionRecord{}).Count(&total).Error
	return total, err
}

// HistorySummary aggregates history rows for the config/analytics endpoint.
type HistorySummary struct {
	Total         int64   `json:"total"`
	FallbackCount int64   `json:"fallback_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Summarize computes aggregate statistics over the decision history.
func (d *Database) Summarize() (HistorySummary, error) {
	var summary HistorySummary
	if err := d.gorm.Model(&DecisionRecord{}).Count(&summary.Total).Error; err != nil {
		return summary, err
	}
	if err := d.gorm.Model(&DecisionRecord{}).Where("source = ?", "fallback").Count(&summary.FallbackCount).Error; err != nil {
		return summary, err
	}
	if summary.Total > 0 {
		row := d.gorm.Model(&DecisionRecord{}).Select("AVG(confidence)").Row()
		if err := row.Scan(&summary.AvgConfidence); err != nil {
			return summary, err
		}
	}
	return summary, nil
}
