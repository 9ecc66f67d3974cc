package telegram

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
	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
)

// requestSlack is added on top of the long-poll timeout.
const requestSlack = 10 * time.Second

type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// NewTelegramClient создает новый клиент для Telegram Bot API
func NewTelegramClient(cfg *config.TelegramConfig, logger *zap.Logger) repository.TelegramRepository {
	return &client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.APIBase, "/"),
		token:      cfg.BotToken,
		logger:     logger,
	}
}

// SendMessage отправляет текстовое сообщение
func (c *client) SendMessage(ctx context.Context, msg domain.OutgoingMessage) error {
	if msg.ChatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("message text is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, requestSlack)
	defer cancel()

	return c.call(ctx, "sendMessage", msg, nil)
}

// GetUpdates выполняет long polling
func (c *client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]domain.TelegramUpdate, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+requestSlack)
	defer cancel()

	var updates []domain.TelegramUpdate
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	c.logger.Debug("Calling Telegram Bot API", zap.String("method", method))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url carries the bot token
		err = redact(err, c.token)
		c.logger.Warn("Telegram request failed", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("telegram %s: request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		c.logger.Error("Failed to decode Telegram response",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !apiResp.OK {
		c.logger.Error("Telegram API returned error",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode),
			zap.Int("error_code", apiResp.ErrorCode),
			zap.String("description", apiResp.Description))
		return fmt.Errorf("telegram API error: %d %s", apiResp.ErrorCode, apiResp.Description)
	}

	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}

	return nil
}

// redact strips the bot token from transport errors, which embed the URL.
func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}
