package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koji/nanobanana/internal/service"
)

// StatsHandler exposes cache counters.
type StatsHandler struct {
	orchestrator *service.Orchestrator
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(orchestrator *service.Orchestrator) *StatsHandler {
	return &StatsHandler{orchestrator: orchestrator}
}

// Stats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Stats(c.Request.Context()))
}
