package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/solver"
)

// ValidateInput checks a solver result without publishing it
func (h *Handler) ValidateInput(c *gin.Context) {
	var p solver.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	doc, err := h.Schedules.Build(c.Request.Context(), c.GetString(siteKey), &p)
	if err != nil {
		var docErr *solver.DocumentError
		if errors.As(err, &docErr) {
			c.JSON(http.StatusOK, gin.H{
				"valid": false,
				"field": docErr.Field,
				"error": docErr.Reason,
			})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"week_anchor": calendar.Format(doc.WeekAnchor),
			"status":      doc.Status,
			"slot_count":  len(doc.Grid),
			"gap_count":   len(doc.GapNotices),
		},
	})
}
