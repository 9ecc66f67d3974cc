package usecase

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/pkg/validator"
	"github.com/listing-microservice/internal/usecase/dto"
)

// ModerationUseCase - use case для создания и модерации объявлений.
// После каждой успешной записи сбрасывает кеш фасетов и публикует событие;
// сбои кеша и стрима только логируются.
type ModerationUseCase struct {
	listingRepo    repository.ListingRepository
	cacheRepo      repository.CacheRepository
	publisher      repository.EventPublisher
	images         repository.ImageStorage
	metrics        *metrics.MetricsManager
	logger         *zap.Logger
	maxUploadBytes int64
}

// ModerationDeps - необязательные зависимости ModerationUseCase
type ModerationDeps struct {
	Cache          repository.CacheRepository
	Publisher      repository.EventPublisher
	Images         repository.ImageStorage
	Metrics        *metrics.MetricsManager
	MaxUploadBytes int64
}

// NewModerationUseCase - создание нового ModerationUseCase
func NewModerationUseCase(listingRepo repository.ListingRepository, deps ModerationDeps, logger *zap.Logger) *ModerationUseCase {
	return &ModerationUseCase{
		listingRepo:    listingRepo,
		cacheRepo:      deps.Cache,
		publisher:      deps.Publisher,
		images:         deps.Images,
		metrics:        deps.Metrics,
		logger:         logger,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

// ImagesEnabled reports whether an object store is configured.
func (uc *ModerationUseCase) ImagesEnabled() bool {
	return uc.images != nil
}

// CreateListing - создание объявления
func (uc *ModerationUseCase) CreateListing(ctx context.Context, req dto.CreateListingRequest) (*dto.CreateListingResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	created, err := uc.listingRepo.Create(ctx, req.ToDomain())
	if err != nil {
		if !errors.Is(err, errors.ErrValidation) {
			uc.logger.Error("Failed to create listing", zap.Error(err))
		}
		return nil, err
	}

	uc.logger.Info("Listing created",
		zap.Int64("id", created.ID),
		zap.String("city", created.City),
		zap.String("type", created.Type),
	)
	uc.metrics.ListingCreated()
	uc.afterWrite(ctx, domain.EventListingCreated, created)

	return &dto.CreateListingResponse{ID: created.ID}, nil
}

// UpdateListing - частичное обновление объявления
func (uc *ModerationUseCase) UpdateListing(ctx context.Context, id int64, req dto.UpdateListingRequest) (*domain.Listing, error) {
	updated, err := uc.listingRepo.Update(ctx, id, req.ToPatch())
	if err != nil {
		if !errors.Is(err, errors.ErrValidation) && !errors.Is(err, errors.ErrListingNotFound) {
			uc.logger.Error("Failed to update listing", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	uc.metrics.ListingUpdated()
	uc.afterWrite(ctx, domain.EventListingUpdated, updated)

	return updated, nil
}

// DeactivateListing - снятие объявления с публикации. Повторный вызов успешен.
func (uc *ModerationUseCase) DeactivateListing(ctx context.Context, id int64) error {
	l, err := uc.listingRepo.Deactivate(ctx, id)
	if err != nil {
		if !errors.Is(err, errors.ErrListingNotFound) {
			uc.logger.Error("Failed to deactivate listing", zap.Int64("id", id), zap.Error(err))
		}
		return err
	}

	uc.logger.Info("Listing deactivated", zap.Int64("id", id))
	uc.metrics.ListingDeactivated()
	uc.afterWrite(ctx, domain.EventListingDeactivated, l)

	return nil
}

// UploadImage - загрузка фотографии в объектное хранилище и привязка к объявлению
func (uc *ModerationUseCase) UploadImage(ctx context.Context, listingID int64, upload dto.ImageUpload) (*domain.Image, error) {
	if uc.images == nil {
		return nil, errors.ErrFeatureDisabled.WithMessage("image uploads are not configured")
	}
	if len(upload.Data) == 0 {
		return nil, errors.Validation("file is required")
	}
	if uc.maxUploadBytes > 0 && int64(len(upload.Data)) > uc.maxUploadBytes {
		return nil, errors.Validation("file is too large")
	}

	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(upload.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Validation("file must be an image")
	}

	// Объявление должно существовать до загрузки в хранилище
	if _, err := uc.listingRepo.Get(ctx, listingID); err != nil {
		return nil, err
	}

	url, err := uc.images.Upload(ctx, upload.Filename, contentType, upload.Data)
	if err != nil {
		uc.logger.Error("Failed to upload image", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, errors.ErrStorage.Wrap(err)
	}

	img, err := uc.listingRepo.AddImage(ctx, listingID, &domain.Image{
		URL:       url,
		SortOrder: upload.SortOrder,
		IsCover:   upload.IsCover,
	})
	if err != nil {
		uc.logger.Error("Failed to attach image", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	uc.metrics.ImageUploaded()
	uc.invalidateFacets(ctx)

	return img, nil
}

func (uc *ModerationUseCase) afterWrite(ctx context.Context, eventType domain.EventType, l *domain.Listing) {
	uc.invalidateFacets(ctx)

	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishListingEvent(ctx, domain.NewListingEvent(eventType, l)); err != nil {
		uc.logger.Warn("Failed to publish listing event",
			zap.String("type", string(eventType)),
			zap.Int64("id", l.ID),
			zap.Error(err),
		)
	}
}

func (uc *ModerationUseCase) invalidateFacets(ctx context.Context) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.InvalidateFacets(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate facets cache", zap.Error(err))
	}
}
