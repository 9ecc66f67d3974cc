package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/utils"
)

// HealthChecker - зависимость, проверяемая в /status
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler - health и status
type HealthHandler struct {
	checks map[string]HealthChecker
	logger *zap.Logger
}

func NewHealthHandler(checks map[string]HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Health godoc
// @Summary Проверка живости
// @Tags System
// @Produce json
// @Success 200 {object} utils.StatusResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return utils.SendSuccess(c, utils.StatusResponse{Status: "ok"})
}

// Status godoc
// @Summary Состояние зависимостей
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/status [get]
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	result := fiber.Map{"status": "ok"}
	code := fiber.StatusOK
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			result[name] = "unavailable"
			result["status"] = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	return c.Status(code).JSON(result)
}
