package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/domain"
)

func TestClient_SendMessage(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful request", func(t *testing.T) {
		var got domain.OutgoingMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/bottest_token/sendMessage", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":42}}}`))
		}))
		defer server.Close()

		c := NewTelegramClient(&config.TelegramConfig{BotToken: "test_token", APIBase: server.URL}, logger)

		err := c.SendMessage(context.Background(), domain.OutgoingMessage{ChatID: 42, Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ChatID)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
		}))
		defer server.Close()

		c := NewTelegramClient(&config.TelegramConfig{BotToken: "t", APIBase: server.URL}, logger)

		err := c.SendMessage(context.Background(), domain.OutgoingMessage{ChatID: 1, Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bot was blocked")
	})

	t.Run("empty text", func(t *testing.T) {
		c := NewTelegramClient(&config.TelegramConfig{BotToken: "t", APIBase: "http://127.0.0.1:0"}, logger)

		err := c.SendMessage(context.Background(), domain.OutgoingMessage{ChatID: 1, Text: "  "})
		assert.Error(t, err)
	})

	t.Run("transport error does not leak token", func(t *testing.T) {
		c := NewTelegramClient(&config.TelegramConfig{BotToken: "super-secret", APIBase: "http://127.0.0.1:1"}, logger)

		err := c.SendMessage(context.Background(), domain.OutgoingMessage{ChatID: 1, Text: "x"})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "super-secret")
	})
}

func TestClient_GetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(7), payload["offset"])
		assert.Equal(t, float64(1), payload["timeout"])

		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":3,"from":{"id":5,"first_name":"A","username":"alice"},"chat":{"id":5,"type":"private"},"text":"/start"}}
		]}`))
	}))
	defer server.Close()

	c := NewTelegramClient(&config.TelegramConfig{BotToken: "t", APIBase: server.URL}, zap.NewNop())

	updates, err := c.GetUpdates(context.Background(), 7, time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "alice", updates[0].Message.From.Username)
	assert.Equal(t, "/start", updates[0].Message.Text)
}
