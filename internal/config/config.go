package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendJSONFile = "jsonfile"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Listings  ListingsConfig
	S3        S3Config
	Worker    WorkerConfig
	Telegram  TelegramConfig
	Bot       BotConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	WebappDir    string
	CORSOrigins  string
}

type StorageConfig struct {
	Backend  string
	JSONPath string
	SeedPath string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	FacetsCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	APIKey            string
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type ListingsConfig struct {
	DefaultLimit     int
	MaxLimit         int
	DefaultLang      string
	SupportedLangs   []string
	FacetsActiveOnly bool
}

type S3Config struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	MaxUploadBytes int64
}

// Enabled reports whether image uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	ConsumerName      string
	StreamReadTimeout time.Duration
	MaxRetries        int
	BatchSize         int64
	MetricsAddr       string
}

type TelegramConfig struct {
	BotToken    string
	APIBase     string
	AdminChatID int64
}

type BotConfig struct {
	APIBase     string
	APIKey      string
	DefaultCity string
	AdminUserID int64
	WebappURL   string
	SessionTTL  time.Duration
	PollTimeout time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("API_ENV", "development")
	viper.SetDefault("API_READ_TIMEOUT", 10)
	viper.SetDefault("API_WRITE_TIMEOUT", 10)
	viper.SetDefault("CORS_ORIGINS", "*")

	viper.SetDefault("STORAGE_BACKEND", StorageBackendPostgres)
	viper.SetDefault("JSON_STORE_PATH", "data/listings.json")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "listings")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 20)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")

	viper.SetDefault("REDIS_ENABLED", true)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("FACETS_CACHE_TTL", 300)

	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("ADMIN_USER", "admin")
	viper.SetDefault("SESSION_TTL", 720)

	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	viper.SetDefault("LISTINGS_DEFAULT_LIMIT", 200)
	viper.SetDefault("LISTINGS_MAX_LIMIT", 1000)
	viper.SetDefault("DEFAULT_LANG", "en")
	viper.SetDefault("SUPPORTED_LANGS", "en,ru,bg,he")
	viper.SetDefault("FACETS_ACTIVE_ONLY", true)

	viper.SetDefault("S3_BUCKET", "listing-images")
	viper.SetDefault("S3_MAX_UPLOAD_BYTES", 10<<20)

	viper.SetDefault("WORKER_ENABLED", true)
	viper.SetDefault("WORKER_CONSUMER_GROUP", "listing-notification-workers")
	viper.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
	viper.SetDefault("WORKER_BATCH_SIZE", 20)
	viper.SetDefault("WORKER_METRICS_ADDR", ":9091")

	viper.SetDefault("TELEGRAM_API_BASE", "https://api.telegram.org")

	viper.SetDefault("BOT_API_BASE", "http://localhost:8080")
	viper.SetDefault("BOT_DEFAULT_CITY", "varna")
	viper.SetDefault("BOT_SESSION_TTL", 3600)
	viper.SetDefault("BOT_POLL_TIMEOUT", 30)

	viper.SetDefault("METRICS_ENABLED", true)
}

func Load() (*Config, error) {
	setDefaults()
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("API_HOST"),
			Port:         viper.GetInt("API_PORT"),
			Env:          viper.GetString("API_ENV"),
			ReadTimeout:  time.Duration(viper.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("API_WRITE_TIMEOUT")) * time.Second,
			WebappDir:    viper.GetString("WEBAPP_DIR"),
			CORSOrigins:  viper.GetString("CORS_ORIGINS"),
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(viper.GetString("STORAGE_BACKEND")),
			JSONPath: viper.GetString("JSON_STORE_PATH"),
			SeedPath: viper.GetString("SEED_PATH"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
			MigrationsPath:  viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			FacetsCacheTTL: time.Duration(viper.GetInt("FACETS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			APIKey:            viper.GetString("ADMIN_API_KEY"),
			AdminUser:         viper.GetString("ADMIN_USER"),
			AdminPassword:     viper.GetString("ADMIN_PASSWORD"),
			AdminPasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
			SessionSecret:     viper.GetString("SESSION_SECRET"),
			SessionTTL:        time.Duration(viper.GetInt("SESSION_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Listings: ListingsConfig{
			DefaultLimit:     viper.GetInt("LISTINGS_DEFAULT_LIMIT"),
			MaxLimit:         viper.GetInt("LISTINGS_MAX_LIMIT"),
			DefaultLang:      viper.GetString("DEFAULT_LANG"),
			SupportedLangs:   parseList(viper.GetString("SUPPORTED_LANGS")),
			FacetsActiveOnly: viper.GetBool("FACETS_ACTIVE_ONLY"),
		},
		S3: S3Config{
			Endpoint:       viper.GetString("S3_ENDPOINT"),
			AccessKey:      viper.GetString("S3_ACCESS_KEY"),
			SecretKey:      viper.GetString("S3_SECRET_KEY"),
			Bucket:         viper.GetString("S3_BUCKET"),
			UseSSL:         viper.GetBool("S3_USE_SSL"),
			MaxUploadBytes: viper.GetInt64("S3_MAX_UPLOAD_BYTES"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			ConsumerName:      viper.GetString("WORKER_CONSUMER_NAME"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
			BatchSize:         viper.GetInt64("WORKER_BATCH_SIZE"),
			MetricsAddr:       viper.GetString("WORKER_METRICS_ADDR"),
		},
		Telegram: TelegramConfig{
			BotToken:    viper.GetString("TELEGRAM_BOT_TOKEN"),
			APIBase:     viper.GetString("TELEGRAM_API_BASE"),
			AdminChatID: viper.GetInt64("TELEGRAM_ADMIN_CHAT_ID"),
		},
		Bot: BotConfig{
			APIBase:     viper.GetString("BOT_API_BASE"),
			APIKey:      viper.GetString("ADMIN_API_KEY"),
			DefaultCity: viper.GetString("BOT_DEFAULT_CITY"),
			AdminUserID: viper.GetInt64("TELEGRAM_ADMIN_ID"),
			WebappURL:   viper.GetString("WEBAPP_URL"),
			SessionTTL:  time.Duration(viper.GetInt("BOT_SESSION_TTL")) * time.Second,
			PollTimeout: time.Duration(viper.GetInt("BOT_POLL_TIMEOUT")) * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
		},
	}

	// Set default values if not provided
	if cfg.Listings.MaxLimit <= 0 || cfg.Listings.MaxLimit > 1000 {
		cfg.Listings.MaxLimit = 1000
	}
	if cfg.Listings.DefaultLimit <= 0 || cfg.Listings.DefaultLimit > cfg.Listings.MaxLimit {
		cfg.Listings.DefaultLimit = cfg.Listings.MaxLimit
		if cfg.Listings.MaxLimit > 200 {
			cfg.Listings.DefaultLimit = 200
		}
	}
	if cfg.Worker.BatchSize <= 0 {
		cfg.Worker.BatchSize = 20
	}
	if cfg.Bot.AdminUserID == 0 {
		cfg.Bot.AdminUserID = cfg.Telegram.AdminChatID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendPostgres:
	case StorageBackendJSONFile:
		if c.Storage.JSONPath == "" {
			return errors.New("JSON_STORE_PATH is required for the jsonfile backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
