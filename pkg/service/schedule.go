// Package service coordinates storage, the archive cache, solver intake and the roster
// engine behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/roster"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/solver"
)

// ArchiveStore is the persistence the schedule service needs.
type ArchiveStore interface {
	Publish(ctx context.Context, doc *models.ScheduleDocument) (database.PublishResult, error)
	LoadArchive(ctx context.Context, siteID string, today time.Time) (models.Archive, error)
}

// TemplateSource provides site staffing templates.
type TemplateSource interface {
	Template(ctx context.Context, siteID string) (models.StaffingTemplate, error)
}

// ArchiveCache caches partitioned archives per site and week.
type ArchiveCache interface {
	Get(ctx context.Context, siteID string, today time.Time) (models.Archive, bool, error)
	Version(ctx context.Context, siteID string) (int64, error)
	Set(ctx context.Context, siteID string, today time.Time, version int64, a models.Archive) error
	Invalidate(ctx context.Context, siteID string) error
}

// ScheduleService serves schedule views and accepts solver output.
type ScheduleService struct {
	archives  ArchiveStore
	templates TemplateSource
	cache     ArchiveCache
	engine    *roster.Engine
	intake    *solver.Intake
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService wires the service. cache may be nil.
func NewScheduleService(archives ArchiveStore, templates TemplateSource, cache ArchiveCache, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		archives:  archives,
		templates: templates,
		cache:     cache,
		engine:    roster.NewEngine(logger),
		intake:    solver.NewIntake(),
		logger:    logger,
		now:       time.Now,
	}
}

// Now is the service clock.
func (s *ScheduleService) Now() time.Time { return s.now() }

// Archive returns the site's archive partitioned around today, from the cache when it
// holds one. Archives that fail validation are reported and never cached.
func (s *ScheduleService) Archive(ctx context.Context, siteID string) (models.Archive, error) {
	today := s.now()
	var version int64
	cacheable := false
	if s.cache != nil {
		a, ok, err := s.cache.Get(ctx, siteID, today)
		if err != nil {
			s.logger.Warn("archive cache read failed", zap.String("site", siteID), zap.Error(err))
		}
		if ok {
			return a, nil
		}
		// the version must be read before loading, see ArchiveCache.Set
		version, err = s.cache.Version(ctx, siteID)
		if err != nil {
			s.logger.Warn("archive cache version read failed", zap.String("site", siteID), zap.Error(err))
		} else {
			cacheable = true
		}
	}

	a, err := s.archives.LoadArchive(ctx, siteID, today)
	if err != nil {
		return models.Archive{}, err
	}
	if err := roster.ValidateArchive(a); err != nil {
		s.logger.Error("archive failed validation", zap.String("site", siteID), zap.Error(err))
		return models.Archive{}, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, siteID, today, version, a); err != nil {
			s.logger.Warn("archive cache write failed", zap.String("site", siteID), zap.Error(err))
		}
	}
	return a, nil
}

// View resolves the default week for the worker and prepares it.
func (s *ScheduleService) View(ctx context.Context, p models.WorkerProfile, referenceDate time.Time, mode roster.Mode) (roster.View, error) {
	a, err := s.Archive(ctx, p.SiteID)
	if err != nil {
		return roster.View{}, err
	}
	return s.engine.View(a, p, referenceDate, mode)
}

// Week prepares the document of a specific week for the worker.
func (s *ScheduleService) Week(ctx context.Context, p models.WorkerProfile, anchor time.Time, mode roster.Mode) (roster.View, error) {
	a, err := s.Archive(ctx, p.SiteID)
	if err != nil {
		return roster.View{}, err
	}
	res, err := roster.ResolveWeek(a, anchor, s.now())
	if err != nil {
		return roster.View{}, err
	}
	return s.engine.ViewDocument(res, p, mode), nil
}

// Build validates a solver payload for the site without storing it.
func (s *ScheduleService) Build(ctx context.Context, siteID string, p *solver.Payload) (*models.ScheduleDocument, error) {
	template, err := s.templates.Template(ctx, siteID)
	if err != nil && !errors.Is(err, database.ErrTemplateNotFound) {
		return nil, err
	}
	return s.intake.Build(p, siteID, template)
}

// Publish validates a solver payload, stores it and drops the site's cached archives.
func (s *ScheduleService) Publish(ctx context.Context, siteID string, p *solver.Payload) (*models.ScheduleDocument, database.PublishResult, error) {
	doc, err := s.Build(ctx, siteID, p)
	if err != nil {
		return nil, database.PublishResult{}, err
	}
	res, err := s.archives.Publish(ctx, doc)
	if err != nil {
		return nil, database.PublishResult{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, siteID); err != nil {
			s.logger.Error("archive cache invalidation failed", zap.String("site", siteID), zap.Error(err))
		}
	}
	return doc, res, nil
}
