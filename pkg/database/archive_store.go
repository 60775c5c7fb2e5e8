package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// ArchiveStore persists schedule documents and partitions them per site.
type ArchiveStore struct {
	db        *gorm.DB
	retention int
	logger    *zap.Logger
	now       func() time.Time
}

// NewArchiveStore creates a store keeping at most retention past documents per site
// (never more than models.MaxPrevious).
func NewArchiveStore(db *gorm.DB, retention int, logger *zap.Logger) *ArchiveStore {
	if retention <= 0 || retention > models.MaxPrevious {
		retention = models.MaxPrevious
	}
	return &ArchiveStore{db: db, retention: retention, logger: logger, now: time.Now}
}

// PublishResult reports what a publish changed.
type PublishResult struct {
	Replaced string   `json:"replaced,omitempty"`
	Pruned   []string `json:"pruned,omitempty"`
}

// Publish stores doc as the site's document for its week, replacing any document with
// the same anchor, and prunes the site's history down to the retention limit. Both
// steps run in one transaction.
func (s *ArchiveStore) Publish(ctx context.Context, doc *models.ScheduleDocument) (PublishResult, error) {
	rec := toRecord(doc)
	today := calendar.Format(calendar.WeekAnchor(s.now()))

	var res PublishResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ScheduleRecord
		err := tx.Where("site_id = ? AND week_anchor = ?", rec.SiteID, rec.WeekAnchor).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("replace document %s: %w", existing.ID, err)
			}
			res.Replaced = existing.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("look up week %s: %w", rec.WeekAnchor, err)
		}

		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		var past []string
		if err := tx.Model(&ScheduleRecord{}).
			Where("site_id = ? AND week_anchor < ?", rec.SiteID, today).
			Order("generated_at desc").
			Pluck("id", &past).Error; err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(past) > s.retention {
			res.Pruned = past[s.retention:]
			if err := tx.Where("id IN ?", res.Pruned).Delete(&ScheduleRecord{}).Error; err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return PublishResult{}, err
	}

	s.logger.Info("schedule published",
		zap.String("site", doc.SiteID),
		zap.String("document", doc.ID),
		zap.String("week", rec.WeekAnchor),
		zap.String("replaced", res.Replaced),
		zap.Int("pruned", len(res.Pruned)),
	)
	return res, nil
}

// LoadArchive partitions the site's documents around the week containing today: the
// document of that week is current, the earliest later week is next, and earlier weeks
// are previous, newest generation first.
func (s *ArchiveStore) LoadArchive(ctx context.Context, siteID string, today time.Time) (models.Archive, error) {
	anchor := calendar.Format(calendar.WeekAnchor(today))
	db := s.db.WithContext(ctx)
	archive := models.Archive{SiteID: siteID, Previous: []models.ScheduleDocument{}}

	var current []ScheduleRecord
	if err := db.Where("site_id = ? AND week_anchor = ?", siteID, anchor).Limit(1).Find(&current).Error; err != nil {
		return models.Archive{}, fmt.Errorf("load current week: %w", err)
	}
	if len(current) == 1 {
		doc, err := current[0].document()
		if err != nil {
			return models.Archive{}, err
		}
		archive.Current = doc
	}

	var next []ScheduleRecord
	if err := db.Where("site_id = ? AND week_anchor > ?", siteID, anchor).
		Order("week_anchor asc").Limit(1).Find(&next).Error; err != nil {
		return models.Archive{}, fmt.Errorf("load next week: %w", err)
	}
	if len(next) == 1 {
		doc, err := next[0].document()
		if err != nil {
			return models.Archive{}, err
		}
		archive.Next = doc
	}

	var previous []ScheduleRecord
	if err := db.Where("site_id = ? AND week_anchor < ?", siteID, anchor).
		Order("generated_at desc").Order("week_anchor desc").Limit(s.retention).Find(&previous).Error; err != nil {
		return models.Archive{}, fmt.Errorf("load previous weeks: %w", err)
	}
	for i := range previous {
		doc, err := previous[i].document()
		if err != nil {
			return models.Archive{}, err
		}
		archive.Previous = append(archive.Previous, *doc)
	}
	return archive, nil
}

// Document returns a stored document by id.
func (s *ArchiveStore) Document(ctx context.Context, id string) (*models.ScheduleDocument, error) {
	var rec ScheduleRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return rec.document()
}

func toRecord(doc *models.ScheduleDocument) ScheduleRecord {
	return ScheduleRecord{
		ID:          doc.ID,
		SiteID:      doc.SiteID,
		WeekAnchor:  calendar.Format(doc.WeekAnchor),
		GeneratedAt: doc.GeneratedAt.UTC(),
		Status:      doc.Status,
		Body: datatypes.NewJSONType(scheduleBody{
			Grid:       doc.Grid,
			Names:      doc.Names,
			GapNotices: doc.GapNotices,
		}),
	}
}

func (r *ScheduleRecord) document() (*models.ScheduleDocument, error) {
	anchor, err := calendar.Parse(r.WeekAnchor)
	if err != nil {
		return nil, fmt.Errorf("document %s: stored week anchor: %w", r.ID, err)
	}
	body := r.Body.Data()
	if body.Grid == nil {
		body.Grid = models.AssignmentGrid{}
	}
	if body.Names == nil {
		body.Names = models.NameSnapshot{}
	}
	return &models.ScheduleDocument{
		ID:          r.ID,
		SiteID:      r.SiteID,
		WeekAnchor:  anchor,
		GeneratedAt: r.GeneratedAt.UTC(),
		Status:      r.Status,
		Grid:        body.Grid,
		Names:       body.Names,
		GapNotices:  body.GapNotices,
	}, nil
}
