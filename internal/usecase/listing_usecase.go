package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/i18n"
	"github.com/listing-microservice/internal/usecase/dto"
)

// ListingUseCase - use case для чтения объявлений (список, карточка, фасеты)
type ListingUseCase struct {
	listingRepo      repository.ListingRepository
	cacheRepo        repository.CacheRepository
	langs            *i18n.Resolver
	logger           *zap.Logger
	cacheTTL         time.Duration
	defaultLimit     int
	maxLimit         int
	facetsActiveOnly bool
}

// ListingOptions - параметры ListingUseCase
type ListingOptions struct {
	DefaultLimit     int
	MaxLimit         int
	FacetsCacheTTL   time.Duration
	FacetsActiveOnly bool
}

// NewListingUseCase - создание нового ListingUseCase. cacheRepo может быть nil.
func NewListingUseCase(
	listingRepo repository.ListingRepository,
	cacheRepo repository.CacheRepository,
	langs *i18n.Resolver,
	logger *zap.Logger,
	opts ListingOptions,
) *ListingUseCase {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = domain.DefaultQueryLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = domain.MaxQueryLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	return &ListingUseCase{
		listingRepo:      listingRepo,
		cacheRepo:        cacheRepo,
		langs:            langs,
		logger:           logger,
		cacheTTL:         opts.FacetsCacheTTL,
		defaultLimit:     opts.DefaultLimit,
		maxLimit:         opts.MaxLimit,
		facetsActiveOnly: opts.FacetsActiveOnly,
	}
}

// ListListings - список объявлений по фильтру. Невалидные параметры
// отклоняются до обращения к хранилищу.
func (uc *ListingUseCase) ListListings(ctx context.Context, req dto.ListListingsRequest) ([]dto.ListingResponse, error) {
	q, err := uc.ParseQuery(req)
	if err != nil {
		return nil, err
	}

	listings, err := uc.listingRepo.Query(ctx, q)
	if err != nil {
		uc.logger.Error("Failed to query listings", zap.Error(err))
		return nil, err
	}

	lang := uc.langs.Pick(req.Lang, req.AcceptLanguage)
	results := make([]dto.ListingResponse, 0, len(listings))
	for _, l := range listings {
		results = append(results, dto.NewListingResponse(l, lang))
	}

	return results, nil
}

// ParseQuery converts raw query parameters into a ListingQuery.
func (uc *ListingUseCase) ParseQuery(req dto.ListListingsRequest) (domain.ListingQuery, error) {
	q := domain.ListingQuery{
		ActiveOnly: !req.IncludeInactive,
		Order:      domain.SortNewest,
		Limit:      uc.defaultLimit,
	}

	q.Filter.City = optionalString(req.City)
	q.Filter.District = optionalString(req.District)
	q.Filter.Type = optionalString(req.Type)

	var err error
	if q.Filter.MinPrice, err = parsePrice("min_price", req.MinPrice); err != nil {
		return q, err
	}
	if q.Filter.MaxPrice, err = parsePrice("max_price", req.MaxPrice); err != nil {
		return q, err
	}

	if raw := strings.TrimSpace(req.Rooms); raw != "" {
		rooms, convErr := strconv.Atoi(raw)
		if convErr != nil || rooms < 0 {
			return q, errors.Validation("rooms must be a non-negative integer")
		}
		q.Filter.Rooms = &rooms
	}

	if raw := strings.TrimSpace(req.Limit); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return q, errors.Validation("limit must be an integer")
		}
		switch {
		case limit > uc.maxLimit:
			q.Limit = uc.maxLimit
		case limit > 0:
			q.Limit = limit
		}
	}

	if raw := strings.TrimSpace(req.Sort); raw != "" {
		order, ok := domain.ParseSortOrder(raw)
		if !ok {
			return q, errors.Validation("sort must be one of newest, oldest, price_asc, price_desc")
		}
		q.Order = order
	}

	return q, nil
}

// GetListing - карточка объявления, включая неактивные
func (uc *ListingUseCase) GetListing(ctx context.Context, id int64, lang, acceptLanguage string) (*dto.ListingResponse, error) {
	if id <= 0 {
		return nil, errors.ErrListingNotFound
	}

	l, err := uc.listingRepo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, errors.ErrListingNotFound) {
			uc.logger.Error("Failed to get listing", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := dto.NewListingResponse(l, uc.langs.Pick(lang, acceptLanguage))
	return &resp, nil
}

// GetFacets - значения для фильтров. includeInactive переопределяет настройку
// FACETS_ACTIVE_ONLY.
func (uc *ListingUseCase) GetFacets(ctx context.Context, includeInactive bool) (*domain.Facets, error) {
	activeOnly := uc.facetsActiveOnly && !includeInactive

	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetFacets(ctx, activeOnly)
		if err != nil {
			uc.logger.Warn("Failed to read facets from cache", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	rows, err := uc.listingRepo.FacetValues(ctx, activeOnly)
	if err != nil {
		uc.logger.Error("Failed to load facet values", zap.Error(err))
		return nil, err
	}

	facets := domain.BuildFacets(rows)

	if uc.cacheRepo != nil && uc.cacheTTL > 0 {
		if err := uc.cacheRepo.SetFacets(ctx, activeOnly, &facets, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache facets", zap.Error(err))
		}
	}

	return &facets, nil
}

func optionalString(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}

func parsePrice(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.Validation(fmt.Sprintf("%s must be a number", name))
	}
	if v < 0 {
		return nil, errors.Validation(fmt.Sprintf("%s must be non-negative", name))
	}
	return &v, nil
}
