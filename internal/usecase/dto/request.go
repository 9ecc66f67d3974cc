package dto

import (
	"strings"

	"github.com/listing-microservice/internal/domain"
)

// ListListingsRequest - сырые query-параметры; разбор и валидация в ListingUseCase
type ListListingsRequest struct {
	City           string
	District       string
	Type           string
	MinPrice       string
	MaxPrice       string
	Rooms          string
	Lang           string
	AcceptLanguage string
	Limit          string
	Sort           string
	// IncludeInactive is only honoured on admin routes
	IncludeInactive bool
}

// ImageInput - фотография в запросе создания
type ImageInput struct {
	URL       string `json:"url" validate:"required,url"`
	SortOrder int    `json:"sort_order"`
	IsCover   bool   `json:"is_cover"`
}

// CreateListingRequest - запрос на создание объявления. Принимает как формат
// бота (property_type, title, description), так и формат хранилища
// (type, title_i18n, desc_i18n).
type CreateListingRequest struct {
	City            string               `json:"city"`
	District        string               `json:"district"`
	Type            string               `json:"type"`
	PropertyType    string               `json:"property_type"`
	Price           *float64             `json:"price" validate:"required"`
	Currency        string               `json:"currency"`
	AreaM2          *float64             `json:"area_m2"`
	Rooms           *int                 `json:"rooms"`
	Lat             *float64             `json:"lat"`
	Lon             *float64             `json:"lon"`
	Title           domain.LocalizedText `json:"title"`
	TitleI18n       domain.LocalizedText `json:"title_i18n"`
	Description     domain.LocalizedText `json:"description"`
	DescI18n        domain.LocalizedText `json:"desc_i18n"`
	Images          []ImageInput         `json:"images" validate:"omitempty,max=30,dive"`
	ContactTelegram *string              `json:"contact_telegram"`
	ContactPhone    *string              `json:"contact_phone"`
}

func (r CreateListingRequest) ToDomain() *domain.Listing {
	l := &domain.Listing{
		City:            r.City,
		District:        r.District,
		Type:            firstNonBlank(r.Type, r.PropertyType),
		Currency:        r.Currency,
		AreaM2:          r.AreaM2,
		Rooms:           r.Rooms,
		Lat:             r.Lat,
		Lon:             r.Lon,
		Title:           mergeText(r.TitleI18n, r.Title),
		Description:     mergeText(r.DescI18n, r.Description),
		ContactTelegram: r.ContactTelegram,
		ContactPhone:    r.ContactPhone,
	}
	if r.Price != nil {
		l.Price = *r.Price
	}
	for _, img := range r.Images {
		l.Images = append(l.Images, domain.Image{URL: img.URL, SortOrder: img.SortOrder, IsCover: img.IsCover})
	}
	return l
}

// UpdateListingRequest - частичное обновление (админка)
type UpdateListingRequest struct {
	City            *string              `json:"city"`
	District        *string              `json:"district"`
	Type            *string              `json:"type"`
	Price           *float64             `json:"price"`
	Currency        *string              `json:"currency"`
	AreaM2          *float64             `json:"area_m2"`
	Rooms           *int                 `json:"rooms"`
	Lat             *float64             `json:"lat"`
	Lon             *float64             `json:"lon"`
	Title           domain.LocalizedText `json:"title_i18n"`
	Description     domain.LocalizedText `json:"desc_i18n"`
	ContactTelegram *string              `json:"contact_telegram"`
	ContactPhone    *string              `json:"contact_phone"`
	IsActive        *bool                `json:"is_active"`
}

func (r UpdateListingRequest) ToPatch() domain.ListingPatch {
	return domain.ListingPatch{
		City:            r.City,
		District:        r.District,
		Type:            r.Type,
		Price:           r.Price,
		Currency:        r.Currency,
		AreaM2:          r.AreaM2,
		Rooms:           r.Rooms,
		Lat:             r.Lat,
		Lon:             r.Lon,
		Title:           r.Title,
		Description:     r.Description,
		ContactTelegram: r.ContactTelegram,
		ContactPhone:    r.ContactPhone,
		IsActive:        r.IsActive,
	}
}

// ImageUpload - загруженный файл фотографии
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	SortOrder   int
	IsCover     bool
}

// LoginRequest - вход администратора
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// EnquiryRequest - запрос покупателя по объявлению
type EnquiryRequest struct {
	FromUserID   int64  `json:"from_user_id"`
	FromUsername string `json:"from_username" validate:"max=64"`
	Contact      string `json:"contact" validate:"max=128"`
	Message      string `json:"message" validate:"max=1000"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// mergeText prefers entries of primary, filling gaps from secondary.
func mergeText(primary, secondary domain.LocalizedText) domain.LocalizedText {
	out := domain.LocalizedText{}
	for k, v := range secondary {
		out[k] = v
	}
	for k, v := range primary {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}
