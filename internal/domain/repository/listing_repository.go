package repository

import (
	"context"

	"github.com/listing-microservice/internal/domain"
)

// ListingRepository - хранилище объявлений. Единственный компонент, который
// изменяет сохранённые объявления. Реализации: postgres и jsonfile.
type ListingRepository interface {
	// Create валидирует объявление, присваивает id, is_active=true, created_at=now
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)

	// Get возвращает объявление по id, включая неактивные
	Get(ctx context.Context, id int64) (*domain.Listing, error)

	// Deactivate выставляет is_active=false. Идемпотентна.
	Deactivate(ctx context.Context, id int64) (*domain.Listing, error)

	// Update применяет частичное обновление и повторно валидирует запись
	Update(ctx context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error)

	// AddImage добавляет фотографию к объявлению
	AddImage(ctx context.Context, listingID int64, image *domain.Image) (*domain.Image, error)

	// Query возвращает объявления по фильтру; пустой результат не ошибка
	Query(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, error)

	// FacetValues возвращает city/district/type в порядке возрастания id
	FacetValues(ctx context.Context, activeOnly bool) ([]domain.FacetRow, error)

	// Count - общее число объявлений (для сидера)
	Count(ctx context.Context) (int, error)
}
