package main

// @title Listing Microservice API
// @version 1.0.0
// @description Каталог объявлений о недвижимости для Telegram Mini App.
// @description
// @description Основные возможности:
// @description - Поиск объявлений с фильтрами по городу, району, типу, цене и комнатам
// @description - Локализованные заголовки и описания (en, ru, bg, he)
// @description - Фасеты для построения фильтров
// @description - Добавление, изменение и снятие объявлений (по API ключу или токену админа)
// @description - Загрузка фото в S3 и заявки покупателей

// @contact.name API Support
// @contact.email support@listing-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/listing-microservice/docs"
	"github.com/listing-microservice/internal/config"
	httpDelivery "github.com/listing-microservice/internal/delivery/http"
	"github.com/listing-microservice/internal/delivery/http/handler"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/infrastructure/s3"
	"github.com/listing-microservice/internal/pkg/i18n"
	"github.com/listing-microservice/internal/pkg/logger"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/repository/cache"
	"github.com/listing-microservice/internal/repository/jsonfile"
	"github.com/listing-microservice/internal/repository/postgres"
	redisRepo "github.com/listing-microservice/internal/repository/redis"
	"github.com/listing-microservice/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Listing Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	checks := make(map[string]handler.HealthChecker)

	// 3. Listing storage
	var listingRepo repository.ListingRepository
	switch cfg.Storage.Backend {
	case config.StorageBackendJSONFile:
		listingRepo, err = jsonfile.NewListingRepository(cfg.Storage.JSONPath, logger.Named(log, "storage"))
		if err != nil {
			log.Fatal("Failed to open JSON listing store", zap.Error(err))
		}
	default:
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		if err := db.Health(ctx); err != nil {
			log.Fatal("PostgreSQL health check failed", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			applied, err := db.Migrate(ctx, cfg.Database.MigrationsPath)
			if err != nil {
				log.Fatal("Failed to apply migrations", zap.Error(err))
			}
			log.Info("Schema is up to date", zap.Int("applied", applied))
		}
		checks["postgres"] = db
		listingRepo = postgres.NewListingRepository(db, logger.Named(log, "storage"))
	}

	// 4. Redis: facets cache and event stream
	var (
		cacheRepo repository.CacheRepository
		publisher repository.EventPublisher
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		checks["redis"] = redisClient
		cacheRepo = cache.NewCacheRepository(redisClient)
		publisher = redisRepo.NewStreamRepository(redisClient.Client(), log)
	} else {
		log.Warn("Redis is disabled: facets are not cached, events and enquiries are not published")
	}

	// 5. Image storage
	var images repository.ImageStorage
	if cfg.S3.Enabled() {
		storage, err := s3.NewS3Storage(ctx, &cfg.S3, log)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		images = storage
	} else {
		log.Warn("S3 is not configured: image uploads are disabled")
	}

	var metricsManager *metrics.MetricsManager
	if cfg.Metrics.Enabled {
		metricsManager = metrics.NewMetricsManager("listings")
	}

	log.Info("Repositories initialized")

	// 6. Initialize Use Cases
	langs := i18n.NewResolver(cfg.Listings.DefaultLang, cfg.Listings.SupportedLangs)

	listingUC := usecase.NewListingUseCase(listingRepo, cacheRepo, langs, log, usecase.ListingOptions{
		DefaultLimit:     cfg.Listings.DefaultLimit,
		MaxLimit:         cfg.Listings.MaxLimit,
		FacetsCacheTTL:   cfg.Cache.FacetsCacheTTL,
		FacetsActiveOnly: cfg.Listings.FacetsActiveOnly,
	})

	moderationUC := usecase.NewModerationUseCase(listingRepo, usecase.ModerationDeps{
		Cache:          cacheRepo,
		Publisher:      publisher,
		Images:         images,
		Metrics:        metricsManager,
		MaxUploadBytes: cfg.S3.MaxUploadBytes,
	}, log)

	enquiryUC := usecase.NewEnquiryUseCase(listingRepo, publisher, metricsManager, log)

	authUC, err := usecase.NewAuthUseCase(cfg.Auth, log)
	if err != nil {
		log.Fatal("Failed to initialize auth", zap.Error(err))
	}

	if seeded, err := usecase.NewSeedUseCase(listingRepo, log).SeedIfEmpty(ctx, cfg.Storage.SeedPath); err != nil {
		log.Error("Failed to seed listings", zap.Error(err))
	} else if seeded > 0 {
		log.Info("Listings seeded", zap.Int("count", seeded))
	}

	log.Info("Use cases initialized")

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, metricsManager, authUC, httpDelivery.Handlers{
		Listing:    handler.NewListingHandler(listingUC, log),
		Moderation: handler.NewModerationHandler(moderationUC, langs.Default(), log),
		Enquiry:    handler.NewEnquiryHandler(enquiryUC, log),
		Admin:      handler.NewAdminHandler(authUC, log),
		Health:     handler.NewHealthHandler(checks, log),
	})

	log.Info("HTTP server initialized")

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
