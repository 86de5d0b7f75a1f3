package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	analysisModel   string
	generationModel string
	apiConfigured   bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(analysisModel, generationModel string, apiConfigured bool) *HealthHandler {
	return &HealthHandler{
		analysisModel:   analysisModel,
		generationModel: generationModel,
		apiConfigured:   apiConfigured,
	}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"analysis_model":   h.analysisModel,
		"generation_model": h.generationModel,
		"api_configured":   h.apiConfigured,
	})
}
