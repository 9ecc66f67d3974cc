package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
)

// seedListing treats a missing is_active as true.
type seedListing struct {
	domain.Listing
	IsActive *bool `json:"is_active"`
}

// SeedUseCase - первоначальное наполнение пустого хранилища
type SeedUseCase struct {
	listingRepo repository.ListingRepository
	logger      *zap.Logger
}

// NewSeedUseCase - создание нового SeedUseCase
func NewSeedUseCase(listingRepo repository.ListingRepository, logger *zap.Logger) *SeedUseCase {
	return &SeedUseCase{listingRepo: listingRepo, logger: logger}
}

// SeedIfEmpty loads listings from path when the store holds none.
// Ids in the seed file are ignored; the store assigns its own. A missing
// path is not an error.
func (uc *SeedUseCase) SeedIfEmpty(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	count, err := uc.listingRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		uc.logger.Debug("Store not empty, skipping seed", zap.Int("count", count))
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			uc.logger.Warn("Seed file not found", zap.String("path", path))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var listings []*seedListing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return 0, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}

	seeded := 0
	for i, l := range listings {
		if l == nil {
			continue
		}
		l.Listing.ID = 0
		created, err := uc.listingRepo.Create(ctx, &l.Listing)
		if err != nil {
			uc.logger.Warn("Skipping invalid seed listing", zap.Int("index", i), zap.Error(err))
			continue
		}
		if l.IsActive != nil && !*l.IsActive {
			if _, err := uc.listingRepo.Deactivate(ctx, created.ID); err != nil {
				return seeded, err
			}
		}
		seeded++
	}

	uc.logger.Info("Store seeded", zap.String("path", path), zap.Int("listings", seeded))
	return seeded, nil
}
