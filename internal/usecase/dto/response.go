package dto

import (
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/listing-microservice/internal/domain"
)

const geohashPrecision = 7

// ListingResponse - объявление в ответе API с разрешённым языком
type ListingResponse struct {
	ID              int64      `json:"id"`
	City            string     `json:"city"`
	District        string     `json:"district"`
	Type            string     `json:"type"`
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	AreaM2          *float64   `json:"area_m2"`
	Rooms           *int       `json:"rooms"`
	Lat             *float64   `json:"lat"`
	Lon             *float64   `json:"lon"`
	Geohash         string     `json:"geohash,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CoverImage      *string    `json:"cover_image"`
	Images          []string   `json:"images"`
	ContactTelegram *string    `json:"contact_telegram,omitempty"`
	ContactPhone    *string    `json:"contact_phone,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// NewListingResponse shapes a stored listing for lang.
func NewListingResponse(l *domain.Listing, lang string) ListingResponse {
	resp := ListingResponse{
		ID:              l.ID,
		City:            l.City,
		District:        l.District,
		Type:            l.Type,
		Price:           l.Price,
		Currency:        l.Currency,
		AreaM2:          l.AreaM2,
		Rooms:           l.Rooms,
		Lat:             l.Lat,
		Lon:             l.Lon,
		Title:           l.Title.Resolve(lang),
		Description:     l.Description.Resolve(lang),
		ContactTelegram: l.ContactTelegram,
		ContactPhone:    l.ContactPhone,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		Images:          make([]string, 0, len(l.Images)),
	}

	if l.Lat != nil && l.Lon != nil {
		resp.Geohash = geohash.EncodeWithPrecision(*l.Lat, *l.Lon, geohashPrecision)
	}

	for _, img := range domain.SortImages(l.Images) {
		resp.Images = append(resp.Images, img.URL)
	}
	if cover := domain.CoverImage(l.Images); cover != nil {
		url := cover.URL
		resp.CoverImage = &url
	}

	return resp
}

// CreateListingResponse - ответ на создание
type CreateListingResponse struct {
	ID int64 `json:"id"`
}

// LoginResponse - токен сессии администратора
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
