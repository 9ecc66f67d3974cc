package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestListingFilter_Matches(t *testing.T) {
	l := &Listing{ID: 1, City: "Varna", District: "Levski", Type: "apartment", Price: 100000, Rooms: intPtr(2), IsActive: true}

	tests := []struct {
		name   string
		filter ListingFilter
		want   bool
	}{
		{"empty filter", ListingFilter{}, true},
		{"city case insensitive", ListingFilter{City: strPtr("varna")}, true},
		{"city mismatch", ListingFilter{City: strPtr("Sofia")}, false},
		{"city and type intersect", ListingFilter{City: strPtr("VARNA"), Type: strPtr("house")}, false},
		{"district", ListingFilter{District: strPtr("levski")}, true},
		{"max price inclusive", ListingFilter{MaxPrice: floatPtr(100000)}, true},
		{"max price excludes", ListingFilter{MaxPrice: floatPtr(99999)}, false},
		{"min price excludes", ListingFilter{MinPrice: floatPtr(150000)}, false},
		{"rooms", ListingFilter{Rooms: intPtr(2)}, true},
		{"rooms mismatch", ListingFilter{Rooms: intPtr(3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(l))
		})
	}

	assert.False(t, ListingFilter{Rooms: intPtr(1)}.Matches(&Listing{City: "x"}), "no rooms recorded never matches a rooms filter")
}

func TestListingQuery_Defaults(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, ListingQuery{}.EffectiveLimit())
	assert.Equal(t, MaxQueryLimit, ListingQuery{Limit: 5000}.EffectiveLimit())
	assert.Equal(t, 10, ListingQuery{Limit: 10}.EffectiveLimit())
	assert.Equal(t, SortNewest, ListingQuery{Order: "bogus"}.EffectiveOrder())

	inactive := &Listing{ID: 2, City: "Varna"}
	assert.False(t, ListingQuery{ActiveOnly: true}.Accepts(inactive))
	assert.True(t, ListingQuery{}.Accepts(inactive))
}

func TestSortOrder_Less(t *testing.T) {
	ls := []*Listing{
		{ID: 1, Price: 300},
		{ID: 2, Price: 100},
		{ID: 3, Price: 100},
	}

	ids := func(order SortOrder) []int64 {
		cp := append([]*Listing(nil), ls...)
		sort.SliceStable(cp, func(i, j int) bool { return order.Less(cp[i], cp[j]) })
		out := make([]int64, len(cp))
		for i, l := range cp {
			out[i] = l.ID
		}
		return out
	}

	assert.Equal(t, []int64{3, 2, 1}, ids(SortNewest))
	assert.Equal(t, []int64{1, 2, 3}, ids(SortOldest))
	assert.Equal(t, []int64{3, 2, 1}, ids(SortPriceAsc))
	assert.Equal(t, []int64{1, 3, 2}, ids(SortPriceDesc))

	_, ok := ParseSortOrder("cheapest")
	assert.False(t, ok)
}
