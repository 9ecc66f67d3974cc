package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/listing-microservice/internal/pkg/metrics"
)

// Metrics - счётчики и латентность запросов по шаблону маршрута
func Metrics(m *metrics.MetricsManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
