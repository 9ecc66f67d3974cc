package listingapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/usecase/dto"
)

func TestClient_CreateListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/listings", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))

		var req dto.CreateListingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "varna", req.City)
		assert.Equal(t, "Квартира", req.Title["ru"])

		_, _ = w.Write([]byte(`{"id":17}`))
	}))
	defer server.Close()

	c := NewClient(&config.BotConfig{APIBase: server.URL + "/", APIKey: "key"}, zap.NewNop())
	price := 125000.0

	id, err := c.CreateListing(context.Background(), dto.CreateListingRequest{
		City:  "varna",
		Type:  "apartment",
		Price: &price,
		Title: map[string]string{"ru": "Квартира"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}

func TestClient_DeactivateListing(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/listings/3/deactivate", r.URL.Path)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		c := NewClient(&config.BotConfig{APIBase: server.URL, APIKey: "key"}, zap.NewNop())
		assert.NoError(t, c.DeactivateListing(context.Background(), 3))
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"LISTING_NOT_FOUND","detail":"not found"}`))
		}))
		defer server.Close()

		c := NewClient(&config.BotConfig{APIBase: server.URL}, zap.NewNop())
		err := c.DeactivateListing(context.Background(), 999)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "LISTING_NOT_FOUND", apiErr.Code)
		assert.Equal(t, "API 404: not found", err.Error())
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		}))
		defer server.Close()

		c := NewClient(&config.BotConfig{APIBase: server.URL}, zap.NewNop())
		err := c.DeactivateListing(context.Background(), 1)

		assert.EqualError(t, err, "API 502: bad gateway")
	})
}
