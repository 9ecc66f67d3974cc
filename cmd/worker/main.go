package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/infrastructure/telegram"
	"github.com/listing-microservice/internal/pkg/logger"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/repository/cache"
	redisRepo "github.com/listing-microservice/internal/repository/redis"
	"github.com/listing-microservice/internal/worker"
	"github.com/listing-microservice/internal/worker/notification"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Listing Notification Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int64("batch_size", cfg.Worker.BatchSize))

	if !cfg.Redis.Enabled {
		log.Fatal("Worker requires Redis, set REDIS_ENABLED=true")
	}
	if cfg.Telegram.BotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN is not set, deliveries will fail")
	}

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	telegramClient := telegram.NewTelegramClient(&cfg.Telegram, logger.Named(log, "telegram"))

	var metricsManager *metrics.MetricsManager
	var metricsServer *http.Server
	if cfg.Metrics.Enabled && cfg.Worker.MetricsAddr != "" {
		metricsManager = metrics.NewMetricsManager("listings")
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsManager.Handler())
		metricsServer = &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		log.Info("Metrics endpoint started", zap.String("address", cfg.Worker.MetricsAddr))
	}

	// 5. Initialize workers
	notificationWorker := notification.NewNotificationWorker(
		streamRepo,
		telegramClient,
		metricsManager,
		notification.Options{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			ConsumerName:  cfg.Worker.ConsumerName,
			AdminChatID:   cfg.Telegram.AdminChatID,
			MaxRetries:    cfg.Worker.MaxRetries,
			BatchSize:     cfg.Worker.BatchSize,
		},
		logger.Named(log, "notification"),
	)

	// 6. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(notificationWorker)

	// 7. Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := workerManager.Run(ctx); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	log.Info("Worker shutdown complete")
}
