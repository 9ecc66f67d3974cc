package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/errors"
)

type stubAuthorizer struct {
	key   string
	token string
}

func (s stubAuthorizer) Authorize(apiKey, bearer string) error {
	if (apiKey != "" && apiKey == s.key) || (bearer != "" && bearer == s.token) {
		return nil
	}
	return errors.ErrUnauthorized
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(2 * limiterIdleTTL)
	rl.Allow("3.3.3.3")
	rl.mu.Lock()
	_, stale := rl.visitors["1.1.1.1"]
	rl.mu.Unlock()
	assert.False(t, stale)
}

func TestRateLimit_Middleware(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(NewRateLimiter(0.001, 1), zap.NewNop()))
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Use(RequireAuth(stubAuthorizer{key: "k", token: "jwt"}, zap.NewNop()))
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{name: "header key", target: "/", header: map[string]string{APIKeyHeader: "k"}, want: fiber.StatusOK},
		{name: "query key", target: "/?api_key=k", want: fiber.StatusOK},
		{name: "bearer token", target: "/", header: map[string]string{"Authorization": "Bearer jwt"}, want: fiber.StatusOK},
		{name: "wrong key", target: "/?api_key=nope", want: fiber.StatusUnauthorized},
		{name: "missing", target: "/", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(RequestIDHeader))
}
