package http

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/delivery/http/handler"
	"github.com/listing-microservice/internal/delivery/http/middleware"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/pkg/utils"
)

// Handlers - набор обработчиков, подключаемых к серверу
type Handlers struct {
	Listing    *handler.ListingHandler
	Moderation *handler.ModerationHandler
	Enquiry    *handler.EnquiryHandler
	Admin      *handler.AdminHandler
	Health     *handler.HealthHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app         *fiber.App
	config      *config.Config
	logger      *zap.Logger
	metrics     *metrics.MetricsManager
	auth        middleware.Authorizer
	rateLimiter *middleware.RateLimiter
	handlers    Handlers
}

// NewServer - создание нового HTTP сервера. metrics может быть nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	metricsManager *metrics.MetricsManager,
	auth middleware.Authorizer,
	handlers Handlers,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Listing Microservice",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    int(maxBodyBytes(cfg)),
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:         app,
		config:      cfg,
		logger:      logger,
		metrics:     metricsManager,
		auth:        auth,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		handlers:    handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	if s.metrics != nil {
		s.app.Use(middleware.Metrics(s.metrics))
	}
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	// Prototype clients call /api, newer ones /api/v1
	s.registerAPI(s.app.Group("/api"))
	s.registerAPI(s.app.Group("/api/v1"))

	if dir := s.config.Server.WebappDir; dir != "" {
		if _, err := os.Stat(dir); err != nil {
			s.logger.Warn("WEBAPP_DIR not found, static mount skipped", zap.String("dir", dir), zap.Error(err))
		} else {
			s.app.Static("/", dir, fiber.Static{Index: "index.html"})
		}
	}
}

func (s *Server) registerAPI(api fiber.Router) {
	h := s.handlers
	requireAuth := middleware.RequireAuth(s.auth, s.logger)
	limit := middleware.RateLimit(s.rateLimiter, s.logger)

	// Health check
	api.Get("/health", h.Health.Health)
	api.Get("/status", h.Health.Status)

	// Catalog
	api.Get("/listings", h.Listing.ListListings)
	api.Get("/listings/:id", h.Listing.GetListing)
	api.Get("/filters", h.Listing.GetFilters)
	api.Get("/meta", h.Listing.GetFilters)

	// Moderation
	api.Post("/listings", limit, requireAuth, h.Moderation.CreateListing)
	api.Patch("/listings/:id", limit, requireAuth, h.Moderation.UpdateListing)
	api.Post("/listings/:id/deactivate", limit, requireAuth, h.Moderation.DeactivateListing)
	api.Post("/listings/:id/images", limit, requireAuth, h.Moderation.UploadImage)

	// Buyer enquiries
	api.Post("/listings/:id/enquiries", limit, h.Enquiry.SubmitEnquiry)

	// Admin
	admin := api.Group("/admin")
	admin.Post("/login", limit, h.Admin.Login)
	admin.Get("/listings", requireAuth, h.Listing.AdminListListings)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, не обработанные в хендлерах (404 роутера, паники, лимит тела)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := errors.As(err); !ok {
			if _, isFiber := err.(*fiber.Error); !isFiber {
				logger.Error("HTTP Error",
					zap.String("path", c.Path()),
					zap.String("request_id", middleware.GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
		return utils.SendError(c, err)
	}
}

func maxBodyBytes(cfg *config.Config) int64 {
	limit := int64(4 << 20)
	// multipart overhead on top of the largest accepted image
	if upload := cfg.S3.MaxUploadBytes + 1<<20; upload > limit {
		limit = upload
	}
	return limit
}
