package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/usecase"
	"github.com/listing-microservice/internal/usecase/dto"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type moderationFixture struct {
	repo      *MockListingRepository
	cache     *MockCacheRepository
	publisher *MockEventPublisher
	images    *MockImageStorage
	uc        *usecase.ModerationUseCase
}

func newModerationFixture(withImages bool) *moderationFixture {
	f := &moderationFixture{
		repo:      &MockListingRepository{},
		cache:     &MockCacheRepository{},
		publisher: &MockEventPublisher{},
		images:    &MockImageStorage{},
	}
	deps := usecase.ModerationDeps{
		Cache:          f.cache,
		Publisher:      f.publisher,
		Metrics:        metrics.NewMetricsManager("test"),
		MaxUploadBytes: 1024,
	}
	if withImages {
		deps.Images = f.images
	}
	f.uc = usecase.NewModerationUseCase(f.repo, deps, zap.NewNop())
	return f
}

func TestModerationUseCase_CreateListing(t *testing.T) {
	ctx := context.Background()
	price := 120000.0

	t.Run("success publishes event and invalidates facets", func(t *testing.T) {
		f := newModerationFixture(false)

		f.repo.On("Create", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.City == "Varna" && l.Type == "apartment" && l.Price == price
		})).Return(&domain.Listing{ID: 5, City: "Varna", Type: "apartment", Price: price, IsActive: true}, nil).Once()
		f.cache.On("InvalidateFacets", ctx).Return(nil).Once()
		f.publisher.On("PublishListingEvent", ctx, mock.MatchedBy(func(e domain.ListingEvent) bool {
			return e.Type == domain.EventListingCreated && e.ListingID == 5
		})).Return(nil).Once()

		resp, err := f.uc.CreateListing(ctx, dto.CreateListingRequest{
			City:         "Varna",
			PropertyType: "apartment",
			Price:        &price,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
		f.repo.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("missing price is rejected before the store", func(t *testing.T) {
		f := newModerationFixture(false)

		_, err := f.uc.CreateListing(ctx, dto.CreateListingRequest{City: "Varna", Type: "house"})

		assert.True(t, errors.Is(err, errors.ErrValidation))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		f := newModerationFixture(false)

		f.repo.On("Create", ctx, mock.Anything).Return(&domain.Listing{ID: 6, City: "Sofia", Type: "house"}, nil).Once()
		f.cache.On("InvalidateFacets", ctx).Return(errors.ErrCacheError).Once()
		f.publisher.On("PublishListingEvent", ctx, mock.Anything).Return(stderrors.New("redis down")).Once()

		resp, err := f.uc.CreateListing(ctx, dto.CreateListingRequest{City: "Sofia", Type: "house", Price: &price})

		require.NoError(t, err)
		assert.Equal(t, int64(6), resp.ID)
	})
}

func TestModerationUseCase_DeactivateListing(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newModerationFixture(false)

		f.repo.On("Deactivate", ctx, int64(3)).Return(&domain.Listing{ID: 3, IsActive: false}, nil).Once()
		f.cache.On("InvalidateFacets", ctx).Return(nil).Once()
		f.publisher.On("PublishListingEvent", ctx, mock.MatchedBy(func(e domain.ListingEvent) bool {
			return e.Type == domain.EventListingDeactivated && !e.Listing.IsActive
		})).Return(nil).Once()

		require.NoError(t, f.uc.DeactivateListing(ctx, 3))
		f.publisher.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newModerationFixture(false)

		f.repo.On("Deactivate", ctx, int64(404)).Return(nil, errors.ErrListingNotFound).Once()

		err := f.uc.DeactivateListing(ctx, 404)

		assert.True(t, errors.Is(err, errors.ErrListingNotFound))
		f.publisher.AssertNotCalled(t, "PublishListingEvent", mock.Anything, mock.Anything)
	})
}

func TestModerationUseCase_UpdateListing(t *testing.T) {
	ctx := context.Background()
	f := newModerationFixture(false)
	newPrice := 99000.0

	f.repo.On("Update", ctx, int64(2), mock.MatchedBy(func(p domain.ListingPatch) bool {
		return p.Price != nil && *p.Price == newPrice && p.City == nil
	})).Return(&domain.Listing{ID: 2, Price: newPrice}, nil).Once()
	f.cache.On("InvalidateFacets", ctx).Return(nil).Once()
	f.publisher.On("PublishListingEvent", ctx, mock.Anything).Return(nil).Once()

	updated, err := f.uc.UpdateListing(ctx, 2, dto.UpdateListingRequest{Price: &newPrice})

	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
}

func TestModerationUseCase_UploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without object storage", func(t *testing.T) {
		f := newModerationFixture(false)

		_, err := f.uc.UploadImage(ctx, 1, dto.ImageUpload{Filename: "a.png", Data: pngHeader})

		assert.True(t, errors.Is(err, errors.ErrFeatureDisabled))
	})

	t.Run("uploads and attaches", func(t *testing.T) {
		f := newModerationFixture(true)

		f.repo.On("Get", ctx, int64(1)).Return(&domain.Listing{ID: 1}, nil).Once()
		f.images.On("Upload", ctx, "a.png", "image/png", pngHeader).Return("http://s3/listings/photos/x.png", nil).Once()
		f.repo.On("AddImage", ctx, int64(1), mock.MatchedBy(func(img *domain.Image) bool {
			return img.URL == "http://s3/listings/photos/x.png" && img.IsCover
		})).Return(&domain.Image{ID: 10, ListingID: 1, URL: "http://s3/listings/photos/x.png", IsCover: true}, nil).Once()
		f.cache.On("InvalidateFacets", ctx).Return(nil).Once()

		img, err := f.uc.UploadImage(ctx, 1, dto.ImageUpload{Filename: "a.png", Data: pngHeader, IsCover: true})

		require.NoError(t, err)
		assert.Equal(t, int64(10), img.ID)
		f.images.AssertExpectations(t)
	})

	t.Run("rejects non-image payload", func(t *testing.T) {
		f := newModerationFixture(true)

		_, err := f.uc.UploadImage(ctx, 1, dto.ImageUpload{Filename: "a.txt", Data: []byte("hello world")})

		assert.True(t, errors.Is(err, errors.ErrValidation))
		f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		f := newModerationFixture(true)

		_, err := f.uc.UploadImage(ctx, 1, dto.ImageUpload{Filename: "a.png", Data: make([]byte, 2048)})

		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newModerationFixture(true)

		f.repo.On("Get", ctx, int64(9)).Return(nil, errors.ErrListingNotFound).Once()

		_, err := f.uc.UploadImage(ctx, 9, dto.ImageUpload{Filename: "a.png", Data: pngHeader})

		assert.True(t, errors.Is(err, errors.ErrListingNotFound))
		f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
