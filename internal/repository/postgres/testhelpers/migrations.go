package testhelpers

import (
	"context"
	"database/sql"

	"github.com/listing-microservice/internal/repository/postgres"
)

// ApplyMigrations brings the test database to the latest schema. Re-running it
// against an already migrated database is a no-op.
func ApplyMigrations(db *sql.DB, migrationsPath string) error {
	_, err := postgres.Migrate(context.Background(), db, migrationsPath, nil)
	return err
}
