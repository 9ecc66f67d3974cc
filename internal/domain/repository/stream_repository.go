package repository

import (
	"context"

	"github.com/listing-microservice/internal/domain"
)

// EventPublisher - публикация событий объявлений
type EventPublisher interface {
	PublishListingEvent(ctx context.Context, event domain.ListingEvent) error
}

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	EventPublisher

	// ConsumeBatch читает до count сообщений за один вызов
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error)

	// AckMessages подтверждает обработку нескольких сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
