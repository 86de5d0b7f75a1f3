package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/prompts"
	"github.com/koji/nanobanana/internal/service"
)

// AnalyzeHandler handles chart-analysis endpoints.
type AnalyzeHandler struct {
	orchestrator  *service.Orchestrator
	maxImageBytes int64
}

// NewAnalyzeHandler creates a new analyze handler.
// Parameters:
//   - orchestrator: request orchestrator.
//   - maxImageBytes: upload size cap in bytes.
// Returns:
//   - *AnalyzeHandler: initialized handler.
func NewAnalyzeHandler(orchestrator *service.Orchestrator, maxImageBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		orchestrator:  orchestrator,
		maxImageBytes: maxImageBytes,
	}
}

// Analyze handles POST /api/v1/analyze.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	data, mimeType, err := readUpload(c, h.maxImageBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	req := &domain.Request{
		Mode:      domain.ModeAnalysis,
		Image:     data,
		ImageMIME: mimeType,
		Params: formParams(c,
			domain.ParamTimeframe,
			domain.ParamAssetType,
			domain.ParamDirection,
			domain.ParamCustomPrompt,
		),
	}

	result, err := h.orchestrator.Handle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"parsed":         result.Parsed,
		"analysis":       result.Analysis,
		"raw_response":   result.RawText,
		"original_image": dataURL(mimeType, data),
		"metadata":       req.EffectiveParams(),
	})
}

// Options handles GET /api/v1/options: the analysis parameter catalog.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AnalyzeHandler) Options(c *gin.Context) {
	timeframes := make([]gin.H, 0, len(domain.Timeframes))
	for _, tf := range domain.Timeframes {
		timeframes = append(timeframes, gin.H{
			"id":          tf,
			"description": prompts.TimeframeDescriptions[tf],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframes":       timeframes,
		"asset_types":      domain.AssetTypes,
		"trade_directions": domain.TradeDirections,
	})
}
