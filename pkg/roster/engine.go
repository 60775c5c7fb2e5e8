// Package roster selects, filters and lays out solver-produced weekly schedules.
//
// Everything here is a pure function of its inputs: an archive of documents, the
// profile of the worker looking at them and a reference date. Engine binds those
// functions to a logger used for diagnostics that must not fail a request.
package roster

import (
	"time"

	"go.uber.org/zap"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Engine runs the resolution, filtering and grid steps for one worker.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger discards diagnostics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// View is everything a worker's schedule page needs.
type View struct {
	Resolution Resolution
	Notices    []models.GapNotice
	Grid       Grid
}

// Resolve picks the default document of the archive.
func (e *Engine) Resolve(a models.Archive, referenceDate time.Time) (Resolution, error) {
	return ResolveDisplayWeek(a, referenceDate)
}

// FilterNotices reduces the document's gap notices to what the worker should see.
// Dropped notices are logged, not returned.
func (e *Engine) FilterNotices(doc *models.ScheduleDocument, p models.WorkerProfile) []models.GapNotice {
	return FilterGapNotices(doc.GapNotices, p, func(err *MalformedNoticeError) {
		e.logger.Warn("dropping malformed gap notice",
			zap.String("site", doc.SiteID),
			zap.String("document", doc.ID),
			zap.Int("index", err.Index),
			zap.String("field", err.Field),
		)
	})
}

// Assemble lays the document out for the worker.
func (e *Engine) Assemble(doc *models.ScheduleDocument, p models.WorkerProfile, mode Mode) Grid {
	return AssembleGrid(doc, p, mode)
}

// View resolves the default week of the archive and prepares it for the worker.
func (e *Engine) View(a models.Archive, p models.WorkerProfile, referenceDate time.Time, mode Mode) (View, error) {
	res, err := e.Resolve(a, referenceDate)
	if err != nil {
		return View{}, err
	}
	return e.ViewDocument(res, p, mode), nil
}

// ViewDocument prepares an already selected document for the worker.
func (e *Engine) ViewDocument(res Resolution, p models.WorkerProfile, mode Mode) View {
	return View{
		Resolution: res,
		Notices:    e.FilterNotices(res.Document, p),
		Grid:       e.Assemble(res.Document, p, mode),
	}
}
