package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/service"
)

// GenerateHandler handles skin-generation endpoints.
type GenerateHandler struct {
	orchestrator  *service.Orchestrator
	maxImageBytes int64
}

// NewGenerateHandler creates a new generate handler.
// Parameters:
//   - orchestrator: request orchestrator.
//   - maxImageBytes: upload size cap in bytes.
// Returns:
//   - *GenerateHandler: initialized handler.
func NewGenerateHandler(orchestrator *service.Orchestrator, maxImageBytes int64) *GenerateHandler {
	return &GenerateHandler{
		orchestrator:  orchestrator,
		maxImageBytes: maxImageBytes,
	}
}

// Generate handles POST /api/v1/generate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GenerateHandler) Generate(c *gin.Context) {
	data, mimeType, err := readUpload(c, h.maxImageBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	req := &domain.Request{
		Mode:      domain.ModeGeneration,
		Image:     data,
		ImageMIME: mimeType,
		Params: formParams(c,
			domain.ParamStyle,
			domain.ParamCustomPrompt,
		),
	}

	result, err := h.orchestrator.Handle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	images := make([]string, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, dataURL(img.MIMEType, img.Data))
	}

	style := strings.ToLower(c.PostForm(domain.ParamStyle))
	if style == "" || style == domain.DefaultAuto {
		style = domain.StyleDefault
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"parsed":           result.Parsed,
		"style":            style,
		"original_image":   dataURL(mimeType, data),
		"generated_images": images,
		"description":      result.RawText,
		"skin_details":     result.Skin,
	})
}

// Styles handles GET /api/v1/styles: the generation theme catalog.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GenerateHandler) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles": domain.Styles,
	})
}
