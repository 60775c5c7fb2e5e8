package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/auth"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/roster"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/service"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/solver"
)

// MinRequestedShifts is the smallest availability submission accepted.
const MinRequestedShifts = 5

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Workers   *database.WorkerStore
	Schedules *service.ScheduleService
	Auth      *auth.Authenticator
	Logger    *zap.Logger
}

// fail writes the error response for err.
func (h *Handler) fail(c *gin.Context, err error) {
	var corrupt *roster.ArchiveCorruptionError
	switch {
	case roster.IsClientError(err), errors.Is(err, solver.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, roster.ErrNoScheduleAvailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "No schedule available"})
	case errors.Is(err, roster.ErrWeekNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &corrupt):
		h.Logger.Error("schedule archive is corrupted",
			zap.String("site", corrupt.SiteID),
			zap.Time("anchor", corrupt.Anchor),
			zap.Int("matches", corrupt.Matches),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Schedule archive is inconsistent"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Login exchanges a worker id and password for a session token
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		ID       int    `json:"id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.Workers.Worker(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, database.ErrWorkerNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.fail(c, err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, w.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	profile := w.Profile()
	token, err := h.Auth.CreateToken(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "profile": profile})
}

// Me returns the signed-in worker's profile
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentProfile(c))
}

// GetAvailability returns the shifts the worker asked to work
func (h *Handler) GetAvailability(c *gin.Context) {
	p := currentProfile(c)
	c.JSON(http.StatusOK, gin.H{"requestedAvailability": p.RequestedAvailability})
}

// PutAvailability replaces the worker's requested shifts. A day sent without shifts
// stands for the whole day.
func (h *Handler) PutAvailability(c *gin.Context) {
	var req struct {
		Days []models.DayShifts `json:"requestedAvailability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	avail, err := models.ExpandAvailability(req.Days)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(avail) < MinRequestedShifts {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select at least 5 shifts"})
		return
	}

	p := currentProfile(c)
	if err := h.Workers.UpdateAvailability(c.Request.Context(), p.ID, avail); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requestedAvailability": avail})
}

// GetRequirements returns the site's staffing template
func (h *Handler) GetRequirements(c *gin.Context) {
	p := currentProfile(c)
	t, err := h.Workers.Template(c.Request.Context(), p.SiteID)
	if err != nil {
		if !errors.Is(err, database.ErrTemplateNotFound) {
			h.fail(c, err)
			return
		}
		t = models.StaffingTemplate{}
	}
	c.JSON(http.StatusOK, gin.H{"site": p.SiteID, "requirements": t})
}

// PutRequirements replaces the site's staffing template
func (h *Handler) PutRequirements(c *gin.Context) {
	var t models.StaffingTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := t.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := currentProfile(c)
	if err := h.Workers.SaveTemplate(c.Request.Context(), p.SiteID, t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": p.SiteID, "requirements": t})
}

// GenerateKey creates a new solver API key for the manager's site using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	site := currentProfile(c).SiteID
	key := h.Auth.GenerateHMACKey(site, req.Name)

	// Revoked keys count too: the same name would sign the same key again.
	var existing int64
	if err := h.DB.Unscoped().Model(&database.APIKey{}).Where(database.APIKey{Key: key}).Count(&existing).Error; err != nil {
		h.fail(c, err)
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "a key with this name already exists or was revoked"})
		return
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		SiteID:     site,
		KeyPreview: preview(key),
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"site": site,
		"key":  key,
	})
}

// ListKeys returns the API keys of the manager's site
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Where("site_id = ?", currentProfile(c).SiteID).Order("id").Find(&keys).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey soft-deletes an API key of the manager's site so the solver can no longer use it
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	res := h.DB.Where("id = ? AND site_id = ?", id, currentProfile(c).SiteID).Delete(&database.APIKey{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// GetUsage returns usage stats for a key of the manager's site
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var key database.APIKey
	if err := h.DB.Where("id = ? AND site_id = ?", id, currentProfile(c).SiteID).Take(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		h.fail(c, err)
		return
	}

	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", key.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
