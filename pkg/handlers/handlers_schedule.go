package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/export"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/roster"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/solver"
)

type scheduleResponse struct {
	Week              roster.WeekKey        `json:"week"`
	WeekAnchor        string                `json:"weekAnchor"`
	WeekRange         string                `json:"weekRange"`
	ContainsReference bool                  `json:"containsReference"`
	DocumentID        string                `json:"documentId"`
	GeneratedAt       time.Time             `json:"generatedAt"`
	Status            models.ScheduleStatus `json:"status"`
	Notices           []models.GapNotice    `json:"notices"`
	Grid              *roster.Grid          `json:"grid,omitempty"`
}

func newScheduleResponse(v roster.View, withGrid bool) scheduleResponse {
	doc := v.Resolution.Document
	notices := v.Notices
	if notices == nil {
		notices = []models.GapNotice{}
	}
	resp := scheduleResponse{
		Week:              v.Resolution.Key,
		WeekAnchor:        calendar.Format(doc.WeekAnchor),
		WeekRange:         v.Resolution.WeekRange,
		ContainsReference: v.Resolution.ContainsReference,
		DocumentID:        doc.ID,
		GeneratedAt:       doc.GeneratedAt,
		Status:            doc.Status,
		Notices:           notices,
	}
	if withGrid {
		resp.Grid = &v.Grid
	}
	return resp
}

// referenceDate reads ?date=, defaulting to today.
func (h *Handler) referenceDate(c *gin.Context) (time.Time, error) {
	if s := c.Query("date"); s != "" {
		return calendar.Parse(s)
	}
	return h.Schedules.Now(), nil
}

// view resolves the requested week: ?week= (or the :anchor path parameter) picks a
// specific week, otherwise the default one is shown.
func (h *Handler) view(c *gin.Context, week string) (roster.View, bool) {
	mode, err := roster.ParseMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return roster.View{}, false
	}

	p := currentProfile(c)
	var v roster.View
	if week != "" {
		anchor, perr := calendar.ParseAnchor(week)
		if perr != nil {
			h.fail(c, perr)
			return roster.View{}, false
		}
		v, err = h.Schedules.Week(c.Request.Context(), p, anchor, mode)
	} else {
		ref, perr := h.referenceDate(c)
		if perr != nil {
			h.fail(c, perr)
			return roster.View{}, false
		}
		v, err = h.Schedules.View(c.Request.Context(), p, ref, mode)
	}
	if err != nil {
		h.fail(c, err)
		return roster.View{}, false
	}
	return v, true
}

// GetSchedule returns the default week for the worker with its grid and the gap
// notices they may volunteer for
func (h *Handler) GetSchedule(c *gin.Context) {
	v, ok := h.view(c, "")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newScheduleResponse(v, true))
}

// GetWeek returns a specific week
func (h *Handler) GetWeek(c *gin.Context) {
	v, ok := h.view(c, c.Param("anchor"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newScheduleResponse(v, true))
}

// GetNotices returns only the filtered gap notices of the default week
func (h *Handler) GetNotices(c *gin.Context) {
	v, ok := h.view(c, "")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newScheduleResponse(v, false))
}

// ExportSchedule streams the grid as an xlsx workbook
func (h *Handler) ExportSchedule(c *gin.Context) {
	v, ok := h.view(c, c.Query("week"))
	if !ok {
		return
	}

	doc := v.Resolution.Document
	buf, filename, err := export.Grid(v.Grid, doc.SiteID, doc.WeekAnchor)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// PublishDocument accepts a solver result for the API key's site
func (h *Handler) PublishDocument(c *gin.Context) {
	var p solver.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	site := c.GetString(siteKey)
	doc, res, err := h.Schedules.Publish(c.Request.Context(), site, &p)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.RecordUsage(c, 1, len(doc.GapNotices))

	c.JSON(http.StatusCreated, gin.H{
		"id":          doc.ID,
		"site":        doc.SiteID,
		"weekAnchor":  calendar.Format(doc.WeekAnchor),
		"generatedAt": doc.GeneratedAt,
		"status":      doc.Status,
		"gaps":        len(doc.GapNotices),
		"replaced":    res.Replaced,
		"pruned":      res.Pruned,
	})
}
