package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
)

// GetMyUsage returns publishing stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get(apiKeyKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalDocuments, totalGaps int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalDocuments += int64(u.Documents)
		totalGaps += int64(u.Gaps)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"site":          apiKey.SiteID,
		"usage_history": usage,
		"totals": gin.H{
			"requests":  totalRequests,
			"documents": totalDocuments,
			"gaps":      totalGaps,
		},
	})
}
