package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Mini app открывается из Telegram, поэтому по умолчанию разрешены все origin.
func CORS(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Accept-Language,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders:    RequestIDHeader,
		AllowCredentials: origins != "*",
	})
}
