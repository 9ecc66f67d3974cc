package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/bot"
	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/infrastructure/listingapi"
	"github.com/listing-microservice/internal/infrastructure/telegram"
	"github.com/listing-microservice/internal/pkg/logger"
	"github.com/listing-microservice/internal/repository/cache"
	"github.com/listing-microservice/internal/worker"
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

	if cfg.Telegram.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	log.Info("Starting Listing Bot")
	log.Info("Configuration loaded",
		zap.String("api_base", cfg.Bot.APIBase),
		zap.String("default_city", cfg.Bot.DefaultCity),
		zap.Int64("admin_user_id", cfg.Bot.AdminUserID),
		zap.Bool("webapp_configured", cfg.Bot.WebappURL != ""))

	// 3. Sessions: Redis when available, otherwise process memory
	var sessions bot.SessionStore
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
		sessions = bot.NewCacheSessionStore(cache.NewCacheRepository(redisClient), cfg.Bot.SessionTTL)
	} else {
		log.Warn("Redis is disabled, bot sessions are kept in memory")
		sessions = bot.NewMemorySessionStore(cfg.Bot.SessionTTL)
	}

	// 4. Initialize clients
	telegramClient := telegram.NewTelegramClient(&cfg.Telegram, logger.Named(log, "telegram"))
	apiClient := listingapi.NewClient(&cfg.Bot, logger.Named(log, "listingapi"))

	listingBot := bot.NewBot(telegramClient, apiClient, sessions, bot.Options{
		AdminUserID: cfg.Bot.AdminUserID,
		AdminChatID: cfg.Telegram.AdminChatID,
		DefaultCity: cfg.Bot.DefaultCity,
		WebappURL:   cfg.Bot.WebappURL,
		Langs:       cfg.Listings.SupportedLangs,
		PollTimeout: cfg.Bot.PollTimeout,
	}, logger.Named(log, "bot"))

	// 5. Run through the worker manager
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(listingBot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := workerManager.Run(ctx); err != nil {
		log.Error("Error stopping bot", zap.Error(err))
	}

	log.Info("Bot shutdown complete")
}
