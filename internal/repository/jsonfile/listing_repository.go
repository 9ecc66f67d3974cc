package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/errors"
)

// listingRepository keeps the whole listing set in one JSON array document.
// Reads share mu.RLock; every mutation holds mu.Lock across the full
// read-modify-write so id assignment and rewrites are serialized.
type listingRepository struct {
	mu     sync.RWMutex
	path   string
	schema *jsonschema.Schema
	logger *zap.Logger
	now    func() time.Time
}

// NewListingRepository создает файловое хранилище объявлений
func NewListingRepository(path string, logger *zap.Logger) (repository.ListingRepository, error) {
	return newListingRepository(path, logger)
}

func newListingRepository(path string, logger *zap.Logger) (*listingRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	logger.Info("JSON listing store ready", zap.String("path", path))

	return &listingRepository{
		path:   path,
		schema: schema,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := listing.Clone()
	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listings, err := r.load()
	if err != nil {
		return nil, err
	}

	l.ID = maxListingID(listings) + 1
	l.IsActive = true
	l.CreatedAt = r.now()
	l.UpdatedAt = nil

	nextImageID := maxImageID(listings)
	for i := range l.Images {
		nextImageID++
		l.Images[i].ID = nextImageID
		l.Images[i].ListingID = l.ID
	}

	listings = append(listings, l)
	if err := r.save(listings); err != nil {
		return nil, err
	}

	r.logger.Debug("Listing created", zap.Int64("listing_id", l.ID))
	return l.Clone(), nil
}

func (r *listingRepository) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	listings, err := r.load()
	if err != nil {
		return nil, err
	}

	_, l := findListing(listings, id)
	if l == nil {
		return nil, errors.ErrListingNotFound
	}
	return l, nil
}

// Deactivate leaves an already inactive record untouched, updated_at included.
func (r *listingRepository) Deactivate(ctx context.Context, id int64) (*domain.Listing, error) {
	return r.mutate(ctx, id, func(l *domain.Listing) (bool, error) {
		if !l.IsActive {
			return false, nil
		}
		l.IsActive = false
		return true, nil
	})
}

func (r *listingRepository) Update(ctx context.Context, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	return r.mutate(ctx, id, func(l *domain.Listing) (bool, error) {
		patch.Apply(l)
		l.Normalize()
		return true, l.Validate()
	})
}

// mutate applies fn to a copy of the stored record and persists it only when
// fn succeeds and reports a change.
func (r *listingRepository) mutate(ctx context.Context, id int64, fn func(l *domain.Listing) (bool, error)) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listings, err := r.load()
	if err != nil {
		return nil, err
	}

	idx, current := findListing(listings, id)
	if current == nil {
		return nil, errors.ErrListingNotFound
	}

	changed, err := fn(current)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current.Clone(), nil
	}
	now := r.now()
	current.UpdatedAt = &now
	listings[idx] = current

	if err := r.save(listings); err != nil {
		return nil, err
	}
	return current.Clone(), nil
}

func (r *listingRepository) AddImage(ctx context.Context, listingID int64, image *domain.Image) (*domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := *image
	if err := img.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listings, err := r.load()
	if err != nil {
		return nil, err
	}

	idx, l := findListing(listings, listingID)
	if l == nil {
		return nil, errors.ErrListingNotFound
	}

	img.ID = maxImageID(listings) + 1
	img.ListingID = listingID
	l.Images = append(l.Images, img)
	now := r.now()
	l.UpdatedAt = &now
	listings[idx] = l

	if err := r.save(listings); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *listingRepository) Query(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	listings, err := r.load()
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Listing, 0)
	for _, l := range listings {
		if q.Accepts(l) {
			result = append(result, l)
		}
	}

	order := q.EffectiveOrder()
	sort.SliceStable(result, func(i, j int) bool {
		return order.Less(result[i], result[j])
	})

	if limit := q.EffectiveLimit(); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *listingRepository) FacetValues(ctx context.Context, activeOnly bool) ([]domain.FacetRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	listings, err := r.load()
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })

	rows := make([]domain.FacetRow, 0, len(listings))
	for _, l := range listings {
		if activeOnly && !l.IsActive {
			continue
		}
		rows = append(rows, domain.FacetRow{City: l.City, District: l.District, Type: l.Type})
	}
	return rows, nil
}

func (r *listingRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	listings, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(listings), nil
}

// load reads and validates the document. Caller holds mu.
// A missing or empty file is an empty store; anything unparsable is a
// storage error, never an empty result.
func (r *listingRepository) load() ([]*domain.Listing, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Listing{}, nil
		}
		r.logger.Error("Failed to read listing store", zap.String("path", r.path), zap.Error(err))
		return nil, errors.Storage(fmt.Errorf("read %s: %w", r.path, err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []*domain.Listing{}, nil
	}

	if err := validateDocument(r.schema, raw); err != nil {
		r.logger.Error("Listing store is corrupt", zap.String("path", r.path), zap.Error(err))
		return nil, errors.Storage(err)
	}

	listings, err := decodeListings(raw)
	if err != nil {
		r.logger.Error("Failed to decode listing store", zap.String("path", r.path), zap.Error(err))
		return nil, errors.Storage(fmt.Errorf("decode %s: %w", r.path, err))
	}

	seen := make(map[int64]struct{}, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.ID]; dup {
			err := fmt.Errorf("duplicate listing id %d", l.ID)
			r.logger.Error("Listing store is corrupt", zap.String("path", r.path), zap.Error(err))
			return nil, errors.Storage(err)
		}
		seen[l.ID] = struct{}{}
	}
	return listings, nil
}

// decodeListings treats a record without is_active as active.
func decodeListings(raw []byte) ([]*domain.Listing, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	listings := make([]*domain.Listing, 0, len(elems))
	for i, elem := range elems {
		l := &domain.Listing{IsActive: true}
		if err := json.Unmarshal(elem, l); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// save rewrites the document through a temp file and rename so readers never
// observe a partial write. Caller holds mu for writing.
func (r *listingRepository) save(listings []*domain.Listing) error {
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return errors.Storage(fmt.Errorf("encode listings: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".listings-*.tmp")
	if err != nil {
		r.logger.Error("Failed to create temp file", zap.Error(err))
		return errors.Storage(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Storage(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Storage(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return errors.Storage(fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		r.logger.Error("Failed to replace listing store", zap.String("path", r.path), zap.Error(err))
		return errors.Storage(fmt.Errorf("replace %s: %w", r.path, err))
	}
	return nil
}

func findListing(listings []*domain.Listing, id int64) (int, *domain.Listing) {
	for i, l := range listings {
		if l.ID == id {
			return i, l
		}
	}
	return -1, nil
}

func maxListingID(listings []*domain.Listing) int64 {
	var maxID int64
	for _, l := range listings {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	return maxID
}

func maxImageID(listings []*domain.Listing) int64 {
	var maxID int64
	for _, l := range listings {
		for _, img := range l.Images {
			if img.ID > maxID {
				maxID = img.ID
			}
		}
	}
	return maxID
}
