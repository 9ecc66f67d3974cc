package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	facetsKeyActive = "facets:active"
	facetsKeyAll    = "facets:all"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, errors.ErrCacheError.Wrap(fmt.Errorf("cache get error: %w", err))
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return errors.ErrCacheError.Wrap(fmt.Errorf("cache set error: %w", err))
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return errors.ErrCacheError.Wrap(fmt.Errorf("cache delete error: %w", err))
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, errors.ErrCacheError.Wrap(fmt.Errorf("cache exists error: %w", err))
	}

	return val > 0, nil
}

func facetsKey(activeOnly bool) string {
	if activeOnly {
		return facetsKeyActive
	}
	return facetsKeyAll
}

// GetFacets получает фасеты из кеша
func (r *cacheRepository) GetFacets(ctx context.Context, activeOnly bool) (*domain.Facets, error) {
	data, err := r.Get(ctx, facetsKey(activeOnly))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var facets domain.Facets
	if err := json.Unmarshal(data, &facets); err != nil {
		r.logger.Error("Failed to unmarshal facets from cache", zap.Error(err))
		return nil, errors.ErrCacheError.Wrap(fmt.Errorf("unmarshal facets: %w", err))
	}

	return &facets, nil
}

// SetFacets сохраняет фасеты в кеше
func (r *cacheRepository) SetFacets(ctx context.Context, activeOnly bool, facets *domain.Facets, ttl time.Duration) error {
	data, err := json.Marshal(facets)
	if err != nil {
		r.logger.Error("Failed to marshal facets", zap.Error(err))
		return errors.ErrCacheError.Wrap(fmt.Errorf("marshal facets: %w", err))
	}

	return r.Set(ctx, facetsKey(activeOnly), data, ttl)
}

// InvalidateFacets удаляет оба варианта фасетов
func (r *cacheRepository) InvalidateFacets(ctx context.Context) error {
	if err := r.client.Del(ctx, facetsKeyActive, facetsKeyAll).Err(); err != nil {
		r.logger.Error("Failed to invalidate facets", zap.Error(err))
		return errors.ErrCacheError.Wrap(fmt.Errorf("cache invalidate error: %w", err))
	}
	return nil
}
