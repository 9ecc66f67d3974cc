package repository

import (
	"context"
	"time"

	"github.com/listing-microservice/internal/domain"
)

// TelegramRepository - клиент Telegram Bot API
type TelegramRepository interface {
	// SendMessage отправляет сообщение в чат
	SendMessage(ctx context.Context, msg domain.OutgoingMessage) error

	// GetUpdates получает обновления long polling'ом начиная с offset
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]domain.TelegramUpdate, error)
}
