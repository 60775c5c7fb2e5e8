package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// WorkerStore reads and updates workers and site staffing templates.
type WorkerStore struct {
	db *gorm.DB
}

// NewWorkerStore creates a worker store.
func NewWorkerStore(db *gorm.DB) *WorkerStore {
	return &WorkerStore{db: db}
}

// Worker loads a worker by id.
func (s *WorkerStore) Worker(ctx context.Context, id int) (*Worker, error) {
	var w Worker
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("worker %d: %w", id, ErrWorkerNotFound)
		}
		return nil, fmt.Errorf("load worker %d: %w", id, err)
	}
	return &w, nil
}

// Profile loads the worker's current profile.
func (s *WorkerStore) Profile(ctx context.Context, id int) (models.WorkerProfile, error) {
	w, err := s.Worker(ctx, id)
	if err != nil {
		return models.WorkerProfile{}, err
	}
	return w.Profile(), nil
}

// CreateWorker inserts w, or does nothing when the id is taken.
func (s *WorkerStore) CreateWorker(ctx context.Context, w *Worker) (created bool, err error) {
	if w.Availability.Data() == nil {
		w.Availability = datatypes.NewJSONType(models.NewAvailability())
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(w)
	if res.Error != nil {
		return false, fmt.Errorf("create worker %d: %w", w.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateAvailability replaces the worker's requested availability.
func (s *WorkerStore) UpdateAvailability(ctx context.Context, id int, a models.Availability) error {
	res := s.db.WithContext(ctx).Model(&Worker{}).Where("id = ?", id).
		Update("availability", datatypes.NewJSONType(a))
	if res.Error != nil {
		return fmt.Errorf("update availability of worker %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("worker %d: %w", id, ErrWorkerNotFound)
	}
	return nil
}

// Template loads the site's staffing template.
func (s *WorkerStore) Template(ctx context.Context, siteID string) (models.StaffingTemplate, error) {
	var rec StaffingTemplateRecord
	if err := s.db.WithContext(ctx).Where("site_id = ?", siteID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("site %q: %w", siteID, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("load template of %q: %w", siteID, err)
	}
	return rec.Template.Data(), nil
}

// SaveTemplate replaces the site's staffing template.
func (s *WorkerStore) SaveTemplate(ctx context.Context, siteID string, t models.StaffingTemplate) error {
	rec := StaffingTemplateRecord{SiteID: siteID, Template: datatypes.NewJSONType(t)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "site_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"template", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save template of %q: %w", siteID, err)
	}
	return nil
}
