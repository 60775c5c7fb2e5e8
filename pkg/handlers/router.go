package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Version is reported by the banner route.
const Version = "1.0.0"

// NewRouter builds the gin engine serving every route.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(h.Logger), gin.Recovery())
	if len(cfg.AllowOrigins) > 0 {
		r.Use(CORS(cfg.AllowOrigins))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift Roster API",
			"version": Version,
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", h.Login)

	// Worker Endpoints
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/me", h.Me)
		api.GET("/me/availability", h.GetAvailability)
		api.PUT("/me/availability", h.PutAvailability)

		api.GET("/schedule", h.GetSchedule)
		api.GET("/schedule/weeks/:anchor", h.GetWeek)
		api.GET("/schedule/notices", h.GetNotices)
		api.GET("/schedule/export", h.ExportSchedule)

		api.GET("/requirements", h.GetRequirements)
	}

	// Management Endpoints
	manage := api.Group("")
	manage.Use(h.RequireRole(models.RoleManagement))
	{
		manage.PUT("/requirements", h.PutRequirements)
		manage.POST("/keys", h.GenerateKey)
		manage.GET("/keys", h.ListKeys)
		manage.DELETE("/keys/:id", h.RevokeKey)
		manage.GET("/keys/:id/usage", h.GetUsage)
	}

	// Solver Endpoints
	solver := r.Group("/solver")
	solver.Use(h.APIKeyMiddleware())
	{
		solver.POST("/documents", h.PublishDocument)
		solver.POST("/validate", h.ValidateInput)
		solver.GET("/usage", h.GetMyUsage)
	}

	return r
}
