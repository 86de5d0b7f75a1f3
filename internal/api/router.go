package api

import (
	"github.com/gin-gonic/gin"

	"github.com/koji/nanobanana/internal/api/handler"
	"github.com/koji/nanobanana/internal/api/middleware"
	"github.com/koji/nanobanana/internal/config"
	"github.com/koji/nanobanana/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	orchestrator *service.Orchestrator,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	if cfg.Limits.MaxImageBytes > 0 {
		r.MaxMultipartMemory = cfg.Limits.MaxImageBytes
	}

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Model.AnalysisModel, cfg.Model.GenerationModel, cfg.Model.APIKey != "")
	analyzeHandler := handler.NewAnalyzeHandler(orchestrator, cfg.Limits.MaxImageBytes)
	generateHandler := handler.NewGenerateHandler(orchestrator, cfg.Limits.MaxImageBytes)
	statsHandler := handler.NewStatsHandler(orchestrator)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Model work
		v1.POST("/analyze", analyzeHandler.Analyze)
		v1.POST("/generate", generateHandler.Generate)

		// Catalogs
		v1.GET("/styles", generateHandler.Styles)
		v1.GET("/options", analyzeHandler.Options)

		// Stats
		v1.GET("/stats", statsHandler.Stats)
	}

	return r
}
