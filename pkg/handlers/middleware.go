package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

const (
	profileKey   = "profile"
	apiKeyKey    = "apiKey"
	siteKey      = "site"
	requestIDKey = "request_id"

	requestIDMaxLen = 64
)

// RequestID tags every request with the caller's X-Request-ID or a fresh uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// Logger logs one line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("client error", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// CORS allows the configured browser origins.
func CORS(allowOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := true
		switch {
		case origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		case origins["*"]:
			// a wildcard origin never carries credentials
			c.Header("Access-Control-Allow-Origin", "*")
		default:
			allowed = false
		}
		if allowed {
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	// Strip "Bearer " if present
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware verifies the worker's session token and loads their profile fresh
// from storage, so role or availability changes apply without a new login.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		profile, err := h.Workers.Profile(c.Request.Context(), claims.WorkerID)
		if err != nil {
			if errors.Is(err, database.ErrWorkerNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			h.fail(c, err)
			c.Abort()
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// RequireRole lets only workers holding one of roles through.
func (h *Handler) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := currentProfile(c)
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

func currentProfile(c *gin.Context) models.WorkerProfile {
	p, _ := c.Get(profileKey)
	profile, _ := p.(models.WorkerProfile)
	return profile
}

// APIKeyMiddleware verifies the solver's API key using HMAC. The key decides which site
// the caller publishes for.
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		siteID, name, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		var revoked int64
		err = h.DB.WithContext(c.Request.Context()).Unscoped().Model(&database.APIKey{}).
			Where(database.APIKey{Key: key}).Where("deleted_at IS NOT NULL").
			Count(&revoked).Error
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		if revoked > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		err = h.DB.WithContext(c.Request.Context()).
			Where(database.APIKey{Key: key}).
			Attrs(database.APIKey{Name: name, SiteID: siteID, KeyPreview: preview(key)}).
			FirstOrCreate(&apiKey).Error
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}

		now := time.Now()
		h.DB.WithContext(c.Request.Context()).Model(&apiKey).Update("last_used", now)

		c.Set(apiKeyKey, &apiKey)
		c.Set(siteKey, siteID)
		c.Next()
	}
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, documents, gaps int) {
	apiKeyRaw, exists := c.Get(apiKeyKey)
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	err := h.DB.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"documents":     gorm.Expr("documents + ?", documents),
			"gaps":          gorm.Expr("gaps + ?", gaps),
		}),
	}).Create(&database.APIUsage{
		KeyID:        apiKey.ID,
		Date:         today,
		RequestCount: 1,
		Documents:    documents,
		Gaps:         gaps,
	}).Error
	if err != nil {
		h.Logger.Warn("recording api usage failed", zap.Uint("key", apiKey.ID), zap.Error(err))
	}
}

// preview shortens a key for listings, e.g. "hil...9f3a".
func preview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}
