package testhelpers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listing-microservice/internal/pkg/i18n"
)

// InsertListing inserts a raw row bypassing the repository, for arranging
// state such as inactive listings.
func InsertListing(db *sql.DB, city, district, typ string, price float64, active bool) (int64, error) {
	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO listings (city, district, type, price, is_active, city_key, district_key, type_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		city, district, typ, price, active, i18n.Fold(city), i18n.Fold(district), i18n.Fold(typ)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert listing fixture: %w", err)
	}
	return id, nil
}
