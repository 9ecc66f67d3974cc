package domain

import (
	"sort"

	"github.com/listing-microservice/internal/pkg/validator"
)

// Image - фотография объявления
type Image struct {
	ID        int64  `json:"id" db:"id"`
	ListingID int64  `json:"listing_id" db:"listing_id"`
	URL       string `json:"url" db:"url" validate:"notblank,max=2048"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
	IsCover   bool   `json:"is_cover" db:"is_cover"`
}

func (img *Image) Validate() error {
	return validator.Validate(img)
}

// SortImages returns a copy ordered by sort_order, ties broken by id.
func SortImages(images []Image) []Image {
	out := make([]Image, len(images))
	copy(out, images)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CoverImage picks the cover-flagged image with the highest id (last write
// wins), falling back to the first image in display order.
func CoverImage(images []Image) *Image {
	if len(images) == 0 {
		return nil
	}

	var cover *Image
	for i := range images {
		if images[i].IsCover && (cover == nil || images[i].ID > cover.ID) {
			cover = &images[i]
		}
	}
	if cover != nil {
		c := *cover
		return &c
	}

	first := SortImages(images)[0]
	return &first
}
