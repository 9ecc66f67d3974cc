package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/pkg/validator"
	"github.com/listing-microservice/internal/usecase/dto"
)

// EnquiryUseCase - приём запросов покупателей; доставка админу через стрим
type EnquiryUseCase struct {
	listingRepo repository.ListingRepository
	publisher   repository.EventPublisher
	metrics     *metrics.MetricsManager
	logger      *zap.Logger
}

// NewEnquiryUseCase - создание нового EnquiryUseCase
func NewEnquiryUseCase(
	listingRepo repository.ListingRepository,
	publisher repository.EventPublisher,
	metrics *metrics.MetricsManager,
	logger *zap.Logger,
) *EnquiryUseCase {
	return &EnquiryUseCase{
		listingRepo: listingRepo,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// SubmitEnquiry - отправить запрос по активному объявлению
func (uc *EnquiryUseCase) SubmitEnquiry(ctx context.Context, listingID int64, req dto.EnquiryRequest) error {
	if uc.publisher == nil {
		return errors.ErrFeatureDisabled.WithMessage("enquiries are not configured")
	}
	if err := validator.Validate(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.FromUsername) == "" && strings.TrimSpace(req.Contact) == "" && req.FromUserID == 0 {
		return errors.Validation("contact or from_username is required")
	}

	l, err := uc.listingRepo.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if !l.IsActive {
		return errors.ErrListingInactive
	}

	event := domain.NewListingEvent(domain.EventListingEnquiry, l)
	event.Enquiry = &domain.Enquiry{
		FromUserID:   req.FromUserID,
		FromUsername: strings.TrimSpace(req.FromUsername),
		Contact:      strings.TrimSpace(req.Contact),
		Message:      strings.TrimSpace(req.Message),
	}

	if err := uc.publisher.PublishListingEvent(ctx, event); err != nil {
		uc.logger.Error("Failed to publish enquiry", zap.Int64("listing_id", listingID), zap.Error(err))
		return errors.ErrInternalServer.Wrap(err)
	}

	uc.metrics.EnquiryReceived()
	uc.logger.Info("Enquiry accepted", zap.Int64("listing_id", listingID))
	return nil
}
