package listingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/usecase/dto"
)

const requestTimeout = 30 * time.Second

// APIError - ошибка, возвращённая сервисом объявлений
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API %d", e.StatusCode)
}

// Client - HTTP клиент сервиса объявлений для бота
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient создает клиент сервиса объявлений
func NewClient(cfg *config.BotConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.APIBase, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// CreateListing создаёт объявление и возвращает его id
func (c *Client) CreateListing(ctx context.Context, req dto.CreateListingRequest) (int64, error) {
	var resp dto.CreateListingResponse
	if err := c.do(ctx, http.MethodPost, "/api/listings", req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// DeactivateListing снимает объявление с публикации
func (c *Client) DeactivateListing(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/listings/%d/deactivate", id), nil, nil)
}

// SubmitEnquiry передаёт запрос покупателя
func (c *Client) SubmitEnquiry(ctx context.Context, id int64, req dto.EnquiryRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/listings/%d/enquiries", id), req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Listing API request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(raw))
		}
		c.logger.Warn("Listing API returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", apiErr.Code))
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
