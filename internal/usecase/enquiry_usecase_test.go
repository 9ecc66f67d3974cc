package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/usecase"
	"github.com/listing-microservice/internal/usecase/dto"
)

func TestEnquiryUseCase_SubmitEnquiry(t *testing.T) {
	ctx := context.Background()
	req := dto.EnquiryRequest{FromUserID: 42, FromUsername: "buyer", Message: " Is it available? "}

	t.Run("publishes enquiry event", func(t *testing.T) {
		repo := &MockListingRepository{}
		pub := &MockEventPublisher{}
		uc := usecase.NewEnquiryUseCase(repo, pub, nil, zap.NewNop())

		repo.On("Get", ctx, int64(1)).Return(&domain.Listing{ID: 1, City: "Varna", IsActive: true}, nil).Once()
		pub.On("PublishListingEvent", ctx, mock.MatchedBy(func(e domain.ListingEvent) bool {
			return e.Type == domain.EventListingEnquiry &&
				e.Enquiry != nil &&
				e.Enquiry.FromUsername == "buyer" &&
				e.Enquiry.Message == "Is it available?"
		})).Return(nil).Once()

		require.NoError(t, uc.SubmitEnquiry(ctx, 1, req))
		pub.AssertExpectations(t)
	})

	t.Run("inactive listing conflicts", func(t *testing.T) {
		repo := &MockListingRepository{}
		pub := &MockEventPublisher{}
		uc := usecase.NewEnquiryUseCase(repo, pub, nil, zap.NewNop())

		repo.On("Get", ctx, int64(2)).Return(&domain.Listing{ID: 2, IsActive: false}, nil).Once()

		err := uc.SubmitEnquiry(ctx, 2, req)

		assert.True(t, errors.Is(err, errors.ErrListingInactive))
		pub.AssertNotCalled(t, "PublishListingEvent", mock.Anything, mock.Anything)
	})

	t.Run("unknown listing", func(t *testing.T) {
		repo := &MockListingRepository{}
		uc := usecase.NewEnquiryUseCase(repo, &MockEventPublisher{}, nil, zap.NewNop())

		repo.On("Get", ctx, int64(3)).Return(nil, errors.ErrListingNotFound).Once()

		assert.True(t, errors.Is(uc.SubmitEnquiry(ctx, 3, req), errors.ErrListingNotFound))
	})

	t.Run("anonymous enquiry rejected", func(t *testing.T) {
		uc := usecase.NewEnquiryUseCase(&MockListingRepository{}, &MockEventPublisher{}, nil, zap.NewNop())

		err := uc.SubmitEnquiry(ctx, 1, dto.EnquiryRequest{Message: "hi"})

		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("disabled without stream", func(t *testing.T) {
		uc := usecase.NewEnquiryUseCase(&MockListingRepository{}, nil, nil, zap.NewNop())

		assert.True(t, errors.Is(uc.SubmitEnquiry(ctx, 1, req), errors.ErrFeatureDisabled))
	})
}
