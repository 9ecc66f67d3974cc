package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/utils"
)

const APIKeyHeader = "X-API-Key"

// Authorizer checks an API key or an admin bearer token.
type Authorizer interface {
	Authorize(apiKey, bearer string) error
}

// RequireAuth - доступ по X-API-Key, ?api_key= или Authorization: Bearer <jwt>
func RequireAuth(auth Authorizer, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get(APIKeyHeader)
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		bearer := ""
		if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			bearer = strings.TrimSpace(h[7:])
		}

		if err := auth.Authorize(apiKey, bearer); err != nil {
			logger.Warn("Unauthorized request",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Path()),
				zap.String("client_ip", c.IP()))
			return utils.SendError(c, err)
		}
		return c.Next()
	}
}
