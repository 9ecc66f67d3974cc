package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/i18n"
)

const listingColumns = `id, city, district, type, price, currency, area_m2, rooms, lat, lon,
	title_i18n, desc_i18n, contact_telegram, contact_phone, is_active, created_at, updated_at`

type listingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewListingRepository создает новый экземпляр listing repository
func NewListingRepository(db *DB, logger *zap.Logger) repository.ListingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &listingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	l := listing.Clone()
	l.Normalize()
	// validation happens before INSERT so a rejected create never touches the sequence
	if err := l.Validate(); err != nil {
		return nil, err
	}

	var created domain.Listing
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO listings (
				city, district, type, price, currency, area_m2, rooms, lat, lon,
				title_i18n, desc_i18n, contact_telegram, contact_phone, is_active, created_at,
				city_key, district_key, type_key
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), $14, $15, $16)
			RETURNING ` + listingColumns

		if err := tx.QueryRowxContext(ctx, query,
			l.City, l.District, l.Type, l.Price, l.Currency, l.AreaM2, l.Rooms, l.Lat, l.Lon,
			l.Title, l.Description, l.ContactTelegram, l.ContactPhone,
			i18n.Fold(l.City), i18n.Fold(l.District), i18n.Fold(l.Type),
		).StructScan(&created); err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}

		for _, img := range l.Images {
			inserted, err := insertImage(ctx, tx, created.ID, img)
			if err != nil {
				return err
			}
			created.Images = append(created.Images, *inserted)
		}
		return nil
	})
	if err != nil {
		return nil, r.storageError("create listing", err)
	}

	r.logger.Debug("Listing created", zap.Int64("listing_id", created.ID))
	return &created, nil
}

func (r *listingRepository) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrListingNotFound
		}
		return nil, r.storageError("get listing", err)
	}

	if err := attachImages(ctx, r.db, []*domain.Listing{&l}); err != nil {
		return nil, r.storageError("get listing images", err)
	}
	return &l, nil
}

func (r *listingRepository) Deactivate(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE listings
			SET is_active = FALSE,
				updated_at = CASE WHEN is_active THEN NOW() ELSE updated_at END
			WHERE id = $1
			RETURNING ` + listingColumns

		if err := tx.QueryRowxContext(ctx, query, id).StructScan(&l); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.ErrListingNotFound
			}
			return fmt.Errorf("deactivate listing: %w", err)
		}
		return attachImages(ctx, tx, []*domain.Listing{&l})
	})
	if err != nil {
		return nil, r.storageError("deactivate listing", err)
	}

	r.logger.Debug("Listing deactivated", zap.Int64("listing_id", id))
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	var updated domain.Listing
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		var current domain.Listing
		query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &current, query, id); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.ErrListingNotFound
			}
			return fmt.Errorf("lock listing: %w", err)
		}

		patch.Apply(&current)
		current.Normalize()
		if err := current.Validate(); err != nil {
			return err
		}

		update := `
			UPDATE listings SET
				city = $2, district = $3, type = $4, price = $5, currency = $6,
				area_m2 = $7, rooms = $8, lat = $9, lon = $10,
				title_i18n = $11, desc_i18n = $12,
				contact_telegram = $13, contact_phone = $14,
				is_active = $15, updated_at = NOW(),
				city_key = $16, district_key = $17, type_key = $18
			WHERE id = $1
			RETURNING ` + listingColumns

		if err := tx.QueryRowxContext(ctx, update, id,
			current.City, current.District, current.Type, current.Price, current.Currency,
			current.AreaM2, current.Rooms, current.Lat, current.Lon,
			current.Title, current.Description,
			current.ContactTelegram, current.ContactPhone,
			current.IsActive,
			i18n.Fold(current.City), i18n.Fold(current.District), i18n.Fold(current.Type),
		).StructScan(&updated); err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
		return attachImages(ctx, tx, []*domain.Listing{&updated})
	})
	if err != nil {
		return nil, r.storageError("update listing", err)
	}
	return &updated, nil
}

func (r *listingRepository) AddImage(ctx context.Context, listingID int64, image *domain.Image) (*domain.Image, error) {
	img := *image
	if err := img.Validate(); err != nil {
		return nil, err
	}

	var inserted *domain.Image
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE listings SET updated_at = NOW() WHERE id = $1`, listingID)
		if err != nil {
			return fmt.Errorf("touch listing: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.ErrListingNotFound
		}

		inserted, err = insertImage(ctx, tx, listingID, img)
		return err
	})
	if err != nil {
		return nil, r.storageError("add image", err)
	}
	return inserted, nil
}

func (r *listingRepository) Query(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, error) {
	qb := applyFilters(q)
	limit := qb.nextArg(q.EffectiveLimit())

	query := fmt.Sprintf(`SELECT %s FROM listings %s %s LIMIT %s`,
		listingColumns, qb.where(), orderClause(q.EffectiveOrder()), limit)

	listings := make([]*domain.Listing, 0)
	if err := r.db.SelectContext(ctx, &listings, query, qb.args...); err != nil {
		return nil, r.storageError("query listings", err)
	}

	if err := attachImages(ctx, r.db, listings); err != nil {
		return nil, r.storageError("query listing images", err)
	}
	return listings, nil
}

func (r *listingRepository) FacetValues(ctx context.Context, activeOnly bool) ([]domain.FacetRow, error) {
	query := `SELECT city, district, type FROM listings`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id ASC`

	rows := make([]domain.FacetRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, r.storageError("facet values", err)
	}
	return rows, nil
}

func (r *listingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM listings`); err != nil {
		return 0, r.storageError("count listings", err)
	}
	return n, nil
}

// storageError passes AppErrors through and wraps everything else.
func (r *listingRepository) storageError(op string, err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	r.logger.Error("Listing storage failure", zap.String("op", op), zap.Error(err))
	return errors.Storage(fmt.Errorf("%s: %w", op, err))
}

func insertImage(ctx context.Context, tx *sqlx.Tx, listingID int64, img domain.Image) (*domain.Image, error) {
	var inserted domain.Image
	query := `
		INSERT INTO listing_images (listing_id, url, sort_order, is_cover)
		VALUES ($1, $2, $3, $4)
		RETURNING id, listing_id, url, sort_order, is_cover`

	if err := tx.QueryRowxContext(ctx, query, listingID, img.URL, img.SortOrder, img.IsCover).StructScan(&inserted); err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return &inserted, nil
}

// attachImages loads images for all listings in one round-trip.
func attachImages(ctx context.Context, q sqlx.QueryerContext, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]int64, len(listings))
	byID := make(map[int64]*domain.Listing, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
		byID[l.ID] = l
	}

	var images []domain.Image
	query := `
		SELECT id, listing_id, url, sort_order, is_cover
		FROM listing_images
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, sort_order, id`

	if err := sqlx.SelectContext(ctx, q, &images, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("select images: %w", err)
	}

	for _, img := range images {
		if l, ok := byID[img.ListingID]; ok {
			l.Images = append(l.Images, img)
		}
	}
	return nil
}
