package domain

import (
	"sort"
	"strings"

	"github.com/listing-microservice/internal/pkg/i18n"
)

// Facets - доступные значения фильтров
type Facets struct {
	Cities    []string `json:"cities"`
	Districts []string `json:"districts"`
	Types     []string `json:"types"`
}

// FacetRow - сырые значения одного объявления
type FacetRow struct {
	City     string `db:"city"`
	District string `db:"district"`
	Type     string `db:"type"`
}

// BuildFacets dedups by trimmed case-folded value keeping the first spelling
// seen, drops empties and sorts. Rows are expected in ascending id order.
func BuildFacets(rows []FacetRow) Facets {
	cities := newFacetSet()
	districts := newFacetSet()
	types := newFacetSet()

	for _, r := range rows {
		cities.add(r.City)
		districts.add(r.District)
		types.add(r.Type)
	}

	return Facets{
		Cities:    cities.sorted(),
		Districts: districts.sorted(),
		Types:     types.sorted(),
	}
}

type facetSet struct {
	seen   map[string]struct{}
	values []string
}

func newFacetSet() *facetSet {
	return &facetSet{seen: make(map[string]struct{})}
}

func (s *facetSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	key := i18n.Fold(v)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.values = append(s.values, v)
}

func (s *facetSet) sorted() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	sort.Strings(out)
	return out
}
