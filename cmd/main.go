package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/agents"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/clients/redis"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/config"
	fashionhttp "github.com/AshleyDelph84/fashion-designer-ai/internal/http"
	httpH "github.com/AshleyDelph84/fashion-designer-ai/internal/http/handlers"
	httpMW "github.com/AshleyDelph84/fashion-designer-ai/internal/http/middleware"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/observability"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/services"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/status"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx/recommend"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx/temporalworker"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Resolve()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration invalid", "error", err)
	}

	ctx := context.Background()
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "fashion-designer",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	}); shutdown != nil {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	bucket, err := gcp.NewBucketServiceWithConfig(log, cfg.ObjectStorage)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}

	rdb, err := redis.NewClient(log)
	if err != nil {
		log.Fatal("Could not connect to Redis", "error", err)
	}
	statusService := status.NewService(log, rdb)

	temporalClient, err := temporalx.NewClient(log)
	if err != nil {
		log.Fatal("Could not connect to Temporal", "error", err)
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}

	runWorker := cfg.Role == config.RoleWorker || cfg.Role == config.RoleAll
	runAPI := cfg.Role == config.RoleAPI || cfg.Role == config.RoleAll

	if runWorker {
		if temporalClient == nil {
			log.Fatal("Worker role requires TEMPORAL_ADDRESS")
		}
		stylist, err := agents.NewGeminiAgent(ctx, log)
		if err != nil {
			log.Fatal("Could not init Gemini agent", "error", err)
		}
		images, err := agents.NewReplicateClient(log)
		if err != nil {
			log.Fatal("Could not init Replicate client", "error", err)
		}
		acts := recommend.NewActivities(log, bucket, stylist, images, statusService, cfg.VizConcurrency)
		w := temporalworker.New(temporalClient, acts, log)

		if !runAPI {
			if err := temporalworker.Run(w); err != nil {
				log.Fatal("Worker stopped", "error", err)
			}
			return
		}
		go func() {
			if err := temporalworker.Run(w); err != nil {
				log.Error("Worker stopped", "error", err)
			}
		}()
	}

	if runAPI {
		authService, err := services.NewAuthService(log)
		if err != nil {
			log.Fatal("Could not init AuthService", "error", err)
		}
		preflight, err := services.NewPhotoPreflight(ctx, log)
		if err != nil {
			log.Fatal("Could not init photo preflight", "error", err)
		}
		favoritesService := services.NewFavoritesService(log, bucket, rdb)
		resultsService := services.NewResultsService(log, bucket, statusService, favoritesService)
		intakeService := services.NewIntakeService(log, bucket, temporalClient, statusService, preflight)

		server := fashionhttp.NewServer(fashionhttp.RouterConfig{
			Log:              log,
			AuthMiddleware:   httpMW.NewAuthMiddleware(log, authService),
			FashionHandler:   httpH.NewFashionHandler(intakeService, resultsService),
			FavoritesHandler: httpH.NewFavoritesHandler(favoritesService),
			HealthHandler:    httpH.NewHealthHandler(),
		})

		log.Info("API listening", "port", cfg.Port, "role", string(cfg.Role))
		if err := server.Run(":" + cfg.Port); err != nil {
			log.Fatal("HTTP server stopped", "error", err)
		}
	}
}
