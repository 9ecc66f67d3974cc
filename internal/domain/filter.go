package domain

import (
	"github.com/listing-microservice/internal/pkg/i18n"
)

const (
	DefaultQueryLimit = 200
	MaxQueryLimit     = 1000
)

// SortOrder - порядок выдачи
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", SortNewest:
		return SortNewest, true
	case SortOldest, SortPriceAsc, SortPriceDesc:
		return SortOrder(s), true
	}
	return "", false
}

// Less reports whether a goes before b. Ties are always broken by id desc.
func (o SortOrder) Less(a, b *Listing) bool {
	switch o {
	case SortOldest:
		return a.ID < b.ID
	case SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	}
	return a.ID > b.ID
}

// ListingFilter - набор фильтров. nil = нет ограничения по измерению,
// все заданные условия объединяются через AND.
type ListingFilter struct {
	City     *string
	District *string
	Type     *string
	MinPrice *float64
	MaxPrice *float64
	Rooms    *int
}

// Matches is the in-memory form of the predicate; the SQL backend builds the
// same conditions from the same struct.
func (f ListingFilter) Matches(l *Listing) bool {
	if f.City != nil && i18n.Fold(*f.City) != i18n.Fold(l.City) {
		return false
	}
	if f.District != nil && i18n.Fold(*f.District) != i18n.Fold(l.District) {
		return false
	}
	if f.Type != nil && i18n.Fold(*f.Type) != i18n.Fold(l.Type) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Rooms != nil && (l.Rooms == nil || *l.Rooms != *f.Rooms) {
		return false
	}
	return true
}

type ListingQuery struct {
	Filter     ListingFilter
	ActiveOnly bool
	Order      SortOrder
	Limit      int
}

// EffectiveLimit applies the default and the hard ceiling.
func (q ListingQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultQueryLimit
	case q.Limit > MaxQueryLimit:
		return MaxQueryLimit
	}
	return q.Limit
}

func (q ListingQuery) EffectiveOrder() SortOrder {
	if o, ok := ParseSortOrder(string(q.Order)); ok {
		return o
	}
	return SortNewest
}

// Accepts combines the filter with the activity flag.
func (q ListingQuery) Accepts(l *Listing) bool {
	if q.ActiveOnly && !l.IsActive {
		return false
	}
	return q.Filter.Matches(l)
}
