package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListingEvent(t *testing.T) {
	l := &Listing{
		ID:       7,
		City:     "Varna",
		Type:     "apartment",
		Price:    95000,
		Currency: "EUR",
		Title:    LocalizedText{"ru": "Квартира", "en": "Flat"},
		IsActive: true,
	}

	e := NewListingEvent(EventListingCreated, l)

	assert.Equal(t, int64(7), e.ListingID)
	require.NotNil(t, e.Listing)
	assert.Equal(t, "Flat", e.Listing.Title)
	assert.False(t, e.OccurredAt.IsZero())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"listing.created"`)
	assert.NotContains(t, string(raw), `"enquiry"`)
}
