package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

var (
	ErrWorkerNotFound   = errors.New("worker not found")
	ErrTemplateNotFound = errors.New("staffing template not found")
)

// APIKey represents the api_keys table. Every key publishes for exactly one site.
// Revoked keys stay soft-deleted so their still-valid signature can be refused.
type APIKey struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Key        string         `gorm:"unique;not null" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	SiteID     string         `gorm:"index;not null" json:"site"`
	KeyPreview string         `json:"key_preview"`
	CreatedAt  time.Time      `json:"created_at"`
	LastUsed   *time.Time     `json:"last_used"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// APIUsage represents the api_usage table: per key, per day publishing counters.
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	Documents    int    `gorm:"default:0" json:"documents"`
	Gaps         int    `gorm:"default:0" json:"gaps"`
}

// Worker represents the workers table.
type Worker struct {
	ID              int                                     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name            string                                  `gorm:"not null" json:"name"`
	SiteID          string                                  `gorm:"index;not null" json:"site"`
	Role            models.Role                             `gorm:"not null" json:"role"`
	WeaponCertified bool                                    `json:"weaponCertified"`
	Position        *string                                 `json:"position,omitempty"`
	PasswordHash    string                                  `gorm:"not null" json:"-"`
	Availability    datatypes.JSONType[models.Availability] `json:"requestedAvailability"`
	CreatedAt       time.Time                               `json:"created_at"`
	UpdatedAt       time.Time                               `json:"updated_at"`
}

// Profile is the worker as the roster engine sees them.
func (w *Worker) Profile() models.WorkerProfile {
	avail := w.Availability.Data()
	if avail == nil {
		avail = models.NewAvailability()
	}
	return models.WorkerProfile{
		ID:                    w.ID,
		DisplayName:           w.Name,
		SiteID:                w.SiteID,
		Role:                  w.Role,
		WeaponCertified:       w.WeaponCertified,
		Position:              w.Position,
		RequestedAvailability: avail,
	}
}

// ScheduleRecord represents the schedules table. WeekAnchor is stored as YYYY-MM-DD so
// the anchor ordering is the same on every driver.
type ScheduleRecord struct {
	ID          string                           `gorm:"primaryKey;size:36"`
	SiteID      string                           `gorm:"uniqueIndex:idx_site_week;not null"`
	WeekAnchor  string                           `gorm:"uniqueIndex:idx_site_week;size:10;not null"`
	GeneratedAt time.Time                        `gorm:"index;not null"`
	Status      models.ScheduleStatus            `gorm:"not null"`
	Body        datatypes.JSONType[scheduleBody] `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type scheduleBody struct {
	Grid       models.AssignmentGrid `json:"assignments"`
	Names      models.NameSnapshot   `json:"names"`
	GapNotices []models.GapNotice    `json:"gapNotices"`
}

// StaffingTemplateRecord represents the staffing_templates table, one row per site.
type StaffingTemplateRecord struct {
	SiteID    string                                      `gorm:"primaryKey"`
	Template  datatypes.JSONType[models.StaffingTemplate] `gorm:"not null"`
	UpdatedAt time.Time
}

// InitDB opens Postgres when a URL is configured and SQLite at the configured path
// otherwise, then migrates the schema.
func InitDB(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error
	if cfg.URL != "" {
		gormCfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.URL != "" {
		logger.Info("database ready", zap.String("driver", "postgres"))
	} else {
		logger.Info("database ready", zap.String("driver", "sqlite"), zap.String("path", cfg.Path))
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &Worker{}, &ScheduleRecord{}, &StaffingTemplateRecord{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
