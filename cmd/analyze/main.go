package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/koji/nanobanana/internal/cache"
	"github.com/koji/nanobanana/internal/config"
	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/logger"
	"github.com/koji/nanobanana/internal/repository"
	"github.com/koji/nanobanana/internal/service"
	"github.com/koji/nanobanana/internal/storage"
)

func main() {
	// Initialize logger first, on stderr so the result JSON owns stdout
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stderr,
		ServiceName: "nanobanana-analyze",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "Path to the chart or reference image (required)")
	mode := flag.String("mode", "analysis", "Request mode: analysis or generation")
	timeframe := flag.String("timeframe", "", "Chart timeframe (1m, 5m, 1h, 4h, 1d, ...)")
	asset := flag.String("asset", "", "Asset type (btc, sol, eth, alts, memecoin)")
	direction := flag.String("direction", "", "Trade direction (long, short, both)")
	style := flag.String("style", "", "Generation style (legendary, anime, meme, cyberpunk, horror)")
	prompt := flag.String("prompt", "", "Extra free-text instruction")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -file <image> [-mode analysis|generation] [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	image, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read image file")
	}

	params := map[string]string{}
	for name, value := range map[string]string{
		domain.ParamTimeframe:    *timeframe,
		domain.ParamAssetType:    *asset,
		domain.ParamDirection:    *direction,
		domain.ParamStyle:        *style,
		domain.ParamCustomPrompt: *prompt,
	} {
		if value != "" {
			params[name] = value
		}
	}

	appLogger.WithFields(logger.Fields{
		"file":   *filePath,
		"mode":   *mode,
		"params": len(params),
	}).Info("Starting one-shot request")

	// Initialize the result store behind the cache
	var store cache.Store
	switch cfg.Cache.Backend {
	case "database":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize database")
		}
		store = cache.NewDatabaseStore(repository.NewResultRepository(db), cfg.Cache.Capacity, cfg.Cache.TTL)
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
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := objectStorage.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
		store = cache.NewObjectStore(objectStorage, cfg.Storage.Prefix, cfg.Cache.TTL)
	default:
		store = cache.NewMemoryStore(cfg.Cache.Capacity, cfg.Cache.TTL)
	}

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
	orchestrator := service.NewOrchestrator(cache.New(store), invoker, &service.OrchestratorConfig{
		Workers:       cfg.Pool.Workers,
		InvokeTimeout: cfg.Model.InvokeTimeout,
	})

	req := &domain.Request{
		Mode:      domain.Mode(*mode),
		Image:     image,
		ImageMIME: http.DetectContentType(image),
		Params:    params,
	}

	result, err := orchestrator.Handle(context.Background(), req)
	if err != nil {
		appLogger.WithError(err).Fatal("Request failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to encode result")
	}
	fmt.Println(string(out))
}
