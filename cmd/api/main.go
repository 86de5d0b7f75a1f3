package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koji/nanobanana/internal/api"
	"github.com/koji/nanobanana/internal/cache"
	"github.com/koji/nanobanana/internal/config"
	"github.com/koji/nanobanana/internal/logger"
	"github.com/koji/nanobanana/internal/repository"
	"github.com/koji/nanobanana/internal/service"
	"github.com/koji/nanobanana/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	if cfg.Model.APIKey == "" {
		logger.Warn("GOOGLE_API_KEY is not set, model calls will be rejected upstream")
	}

	// Initialize the result store behind the cache
	var store cache.Store
	switch cfg.Cache.Backend {
	case "database":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize database: %v", err)
		}
		store = cache.NewDatabaseStore(repository.NewResultRepository(db), cfg.Cache.Capacity, cfg.Cache.TTL)
		logger.Info("Using database-backed result cache driver=%s capacity=%d ttl=%s",
			cfg.Database.Driver, cfg.Cache.Capacity, cfg.Cache.TTL)
	case "object":
		objectStorage, err := storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
		if err := objectStorage.EnsureBucket(context.Background()); err != nil {
			logger.Fatal("Failed to ensure storage bucket: %v", err)
		}
		store = cache.NewObjectStore(objectStorage, cfg.Storage.Prefix, cfg.Cache.TTL)
		logger.Info("Using object-backed result cache bucket=%s prefix=%s ttl=%s",
			cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.Cache.TTL)
	default:
		store = cache.NewMemoryStore(cfg.Cache.Capacity, cfg.Cache.TTL)
		logger.Info("Using in-memory result cache capacity=%d ttl=%s", cfg.Cache.Capacity, cfg.Cache.TTL)
	}
	responseCache := cache.New(store)

	// Initialize the model client and its retry wrapper
	gemini := service.NewGeminiService(&service.GeminiConfig{
		APIKey:          cfg.Model.APIKey,
		BaseURL:         cfg.Model.BaseURL,
		AnalysisModel:   cfg.Model.AnalysisModel,
		GenerationModel: cfg.Model.GenerationModel,
	})
	invoker := service.NewInvoker(gemini, &service.InvokerConfig{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	})

	orchestrator := service.NewOrchestrator(responseCache, invoker, &service.OrchestratorConfig{
		Workers:       cfg.Pool.Workers,
		InvokeTimeout: cfg.Model.InvokeTimeout,
	})

	// Setup router
	router := api.SetupRouter(orchestrator, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server port=%d mode=%s analysis_model=%s generation_model=%s workers=%d",
			cfg.Server.Port, cfg.Server.Mode, cfg.Model.AnalysisModel, cfg.Model.GenerationModel, cfg.Pool.Workers)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
