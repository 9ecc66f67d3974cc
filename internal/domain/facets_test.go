package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFacets(t *testing.T) {
	rows := []FacetRow{
		{City: "Varna", District: "Levski", Type: "apartment"},
		{City: "varna ", District: "", Type: "House"},
		{City: "Sofia", District: " levski", Type: "house"},
		{City: "", District: "Center", Type: "apartment"},
	}

	f := BuildFacets(rows)

	assert.Equal(t, []string{"Sofia", "Varna"}, f.Cities)
	assert.Equal(t, []string{"Center", "Levski"}, f.Districts)
	assert.Equal(t, []string{"House", "apartment"}, f.Types)

	for _, vals := range [][]string{f.Cities, f.Districts, f.Types} {
		assert.True(t, sort.StringsAreSorted(vals))
		assert.NotContains(t, vals, "")
	}
}

func TestBuildFacets_Empty(t *testing.T) {
	f := BuildFacets(nil)
	assert.NotNil(t, f.Cities)
	assert.Empty(t, f.Cities)
	assert.Empty(t, f.Types)
}
