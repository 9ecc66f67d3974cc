package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewListingRepositoryForTest creates a listing repository with test database and logger
func NewListingRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ListingRepository {
	return postgres.NewListingRepository(NewDBForTest(db, logger), logger)
}
