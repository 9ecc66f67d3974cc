package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	deliveryhttp "github.com/listing-microservice/internal/delivery/http"
	"github.com/listing-microservice/internal/delivery/http/handler"
	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/pkg/i18n"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/repository/jsonfile"
	"github.com/listing-microservice/internal/usecase"
)

const testAPIKey = "test-key"

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ListingEvent
}

func (p *recordingPublisher) PublishListingEvent(_ context.Context, e domain.ListingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testServer struct {
	server    *deliveryhttp.Server
	publisher *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		Server: config.ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, CORSOrigins: "*"},
		Auth: config.AuthConfig{
			APIKey:        testAPIKey,
			AdminUser:     "admin",
			AdminPassword: "pass",
			SessionSecret: "secret",
			SessionTTL:    time.Hour,
		},
		Listings: config.ListingsConfig{DefaultLimit: 200, MaxLimit: 1000, FacetsActiveOnly: true},
	}

	repo, err := jsonfile.NewListingRepository(filepath.Join(t.TempDir(), "listings.json"), logger)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	m := metrics.NewMetricsManager("listings")
	langs := i18n.NewResolver("en", []string{"en", "ru", "bg", "he"})

	listingUC := usecase.NewListingUseCase(repo, nil, langs, logger, usecase.ListingOptions{
		DefaultLimit:     cfg.Listings.DefaultLimit,
		MaxLimit:         cfg.Listings.MaxLimit,
		FacetsActiveOnly: cfg.Listings.FacetsActiveOnly,
	})
	moderationUC := usecase.NewModerationUseCase(repo, usecase.ModerationDeps{Publisher: publisher, Metrics: m}, logger)
	enquiryUC := usecase.NewEnquiryUseCase(repo, publisher, m, logger)
	authUC, err := usecase.NewAuthUseCase(cfg.Auth, logger)
	require.NoError(t, err)

	server := deliveryhttp.NewServer(cfg, logger, m, authUC, deliveryhttp.Handlers{
		Listing:    handler.NewListingHandler(listingUC, logger),
		Moderation: handler.NewModerationHandler(moderationUC, "en", logger),
		Enquiry:    handler.NewEnquiryHandler(enquiryUC, logger),
		Admin:      handler.NewAdminHandler(authUC, logger),
		Health:     handler.NewHealthHandler(nil, logger),
	})

	return &testServer{server: server, publisher: publisher}
}

func (ts *testServer) do(t *testing.T, method, target, body string, headers map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.server.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (ts *testServer) create(t *testing.T, body string) int64 {
	t.Helper()
	status, raw := ts.do(t, http.MethodPost, "/api/listings", body, map[string]string{"X-API-Key": testAPIKey})
	require.Equal(t, http.StatusOK, status, string(raw))

	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp.ID
}

func decodeList(t *testing.T, raw []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestServer_ListingLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// unauthenticated create
	status, _ := ts.do(t, http.MethodPost, "/api/listings", `{"city":"Varna","type":"apartment","price":1}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// rejected create consumes no id
	status, raw := ts.do(t, http.MethodPost, "/api/listings?api_key="+testAPIKey,
		`{"city":"Varna","type":"apartment","price":-5}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "VALIDATION_ERROR")

	first := ts.create(t, `{"city":"Varna","district":"Levski","property_type":"apartment","price":120000,"rooms":2,
		"title":{"en":"Sea view","ru":"Вид на море"}}`)
	second := ts.create(t, `{"city":"Sofia","district":"Center","type":"house","price":300000}`)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	// case-insensitive city filter and language resolution
	status, raw = ts.do(t, http.MethodGet, "/api/listings?city=VARNA&lang=ru", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeList(t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, "Вид на море", list[0]["title"])

	// newest first
	status, raw = ts.do(t, http.MethodGet, "/api/v1/listings", "", nil)
	require.Equal(t, http.StatusOK, status)
	list = decodeList(t, raw)
	require.Len(t, list, 2)
	assert.Equal(t, float64(2), list[0]["id"])

	// malformed filter
	status, _ = ts.do(t, http.MethodGet, "/api/listings?max_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// no match is an empty array
	status, raw = ts.do(t, http.MethodGet, "/api/listings?city=Burgas", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))

	// deactivate twice
	for i := 0; i < 2; i++ {
		status, raw = ts.do(t, http.MethodPost, "/api/listings/1/deactivate", "", map[string]string{"X-API-Key": testAPIKey})
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"ok":true}`, string(raw))
	}

	status, raw = ts.do(t, http.MethodGet, "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, status)
	list = decodeList(t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0]["id"])

	// inactive record is still addressable
	status, raw = ts.do(t, http.MethodGet, "/api/listings/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"is_active":false`)

	assert.Equal(t, []domain.EventType{
		domain.EventListingCreated,
		domain.EventListingCreated,
		domain.EventListingDeactivated,
		domain.EventListingDeactivated,
	}, ts.publisher.types())
}

func TestServer_NotFound(t *testing.T) {
	ts := newTestServer(t)

	status, raw := ts.do(t, http.MethodGet, "/api/listings/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "not found", body["detail"])

	status, _ = ts.do(t, http.MethodPost, "/api/listings/999/deactivate", "", map[string]string{"X-API-Key": testAPIKey})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodGet, "/api/listings/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Filters(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, `{"city":"Varna","district":"Levski","type":"apartment","price":1}`)
	ts.create(t, `{"city":" varna ","district":"","type":"House","price":2}`)
	ts.create(t, `{"city":"Burgas","district":"Center","type":"apartment","price":3}`)
	ts.do(t, http.MethodPost, "/api/listings/3/deactivate", "", map[string]string{"X-API-Key": testAPIKey})

	status, raw := ts.do(t, http.MethodGet, "/api/filters", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"cities":["Varna"],"districts":["Levski"],"types":["House","apartment"]}`, string(raw))

	status, raw = ts.do(t, http.MethodGet, "/api/meta?include_inactive=true", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"cities":["Burgas","Varna"],"districts":["Center","Levski"],"types":["House","apartment"]}`, string(raw))
}

func TestServer_EnquiriesAndImages(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, `{"city":"Varna","type":"apartment","price":1}`)

	status, _ := ts.do(t, http.MethodPost, "/api/listings/1/enquiries", `{"from_username":"buyer","message":"hi"}`, nil)
	assert.Equal(t, http.StatusOK, status)

	ts.do(t, http.MethodPost, "/api/listings/1/deactivate", "", map[string]string{"X-API-Key": testAPIKey})
	status, _ = ts.do(t, http.MethodPost, "/api/listings/1/enquiries", `{"from_username":"buyer"}`, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/api/listings/1/images", "", map[string]string{"X-API-Key": testAPIKey})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_AdminSession(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, `{"city":"Varna","type":"apartment","price":1}`)
	ts.do(t, http.MethodPost, "/api/listings/1/deactivate", "", map[string]string{"X-API-Key": testAPIKey})

	status, _ := ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := ts.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"pass"}`, nil)
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token)

	status, raw = ts.do(t, http.MethodGet, "/api/admin/listings", "", map[string]string{"Authorization": "Bearer " + login.Token})
	require.Equal(t, http.StatusOK, status)
	list := decodeList(t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0]["is_active"])

	status, _ = ts.do(t, http.MethodGet, "/api/admin/listings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, raw := ts.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, _ = ts.do(t, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "listings_http_requests_total")
}
