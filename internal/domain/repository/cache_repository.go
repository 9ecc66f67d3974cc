package repository

import (
	"context"
	"time"

	"github.com/listing-microservice/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetFacets получает фасеты из кеша; nil, nil если их нет
	GetFacets(ctx context.Context, activeOnly bool) (*domain.Facets, error)

	// SetFacets сохраняет фасеты в кеше
	SetFacets(ctx context.Context, activeOnly bool, facets *domain.Facets, ttl time.Duration) error

	// InvalidateFacets сбрасывает оба варианта фасетов
	InvalidateFacets(ctx context.Context) error
}
