package domain

import (
	"strings"
	"time"

	"github.com/listing-microservice/internal/pkg/validator"
)

const DefaultCurrency = "EUR"

// Listing - объявление о продаже/аренде недвижимости
type Listing struct {
	ID              int64         `json:"id" db:"id"`
	City            string        `json:"city" db:"city" validate:"notblank,max=100"`
	District        string        `json:"district" db:"district" validate:"max=100"`
	Type            string        `json:"type" db:"type" validate:"notblank,max=50"`
	Price           float64       `json:"price" db:"price" validate:"gte=0"`
	Currency        string        `json:"currency" db:"currency" validate:"currency"`
	AreaM2          *float64      `json:"area_m2,omitempty" db:"area_m2" validate:"omitempty,gte=0"`
	Rooms           *int          `json:"rooms,omitempty" db:"rooms" validate:"omitempty,gte=0"`
	Lat             *float64      `json:"lat,omitempty" db:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon             *float64      `json:"lon,omitempty" db:"lon" validate:"omitempty,gte=-180,lte=180"`
	Title           LocalizedText `json:"title_i18n" db:"title_i18n"`
	Description     LocalizedText `json:"desc_i18n" db:"desc_i18n"`
	Images          []Image       `json:"images,omitempty" db:"-" validate:"dive"`
	ContactTelegram *string       `json:"contact_telegram,omitempty" db:"contact_telegram" validate:"omitempty,max=64"`
	ContactPhone    *string       `json:"contact_phone,omitempty" db:"contact_phone" validate:"omitempty,max=32"`
	IsActive        bool          `json:"is_active" db:"is_active"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

// Normalize trims free-text codes and fills defaults. Called by the stores
// right before Validate.
func (l *Listing) Normalize() {
	l.City = strings.TrimSpace(l.City)
	l.District = strings.TrimSpace(l.District)
	l.Type = strings.TrimSpace(l.Type)
	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	if l.Currency == "" {
		l.Currency = DefaultCurrency
	}
	l.Title = l.Title.Normalized()
	l.Description = l.Description.Normalized()
	l.ContactTelegram = trimOptional(l.ContactTelegram)
	l.ContactPhone = trimOptional(l.ContactPhone)
}

// Validate checks required fields and ranges. Returns a VALIDATION_ERROR.
func (l *Listing) Validate() error {
	return validator.Validate(l)
}

func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	cp := *l
	cp.AreaM2 = cloneFloat(l.AreaM2)
	cp.Lat = cloneFloat(l.Lat)
	cp.Lon = cloneFloat(l.Lon)
	if l.Rooms != nil {
		r := *l.Rooms
		cp.Rooms = &r
	}
	cp.Title = cloneText(l.Title)
	cp.Description = cloneText(l.Description)
	if l.Images != nil {
		cp.Images = append([]Image(nil), l.Images...)
	}
	if l.ContactTelegram != nil {
		s := *l.ContactTelegram
		cp.ContactTelegram = &s
	}
	if l.ContactPhone != nil {
		s := *l.ContactPhone
		cp.ContactPhone = &s
	}
	if l.UpdatedAt != nil {
		u := *l.UpdatedAt
		cp.UpdatedAt = &u
	}
	return &cp
}

// ListingPatch - частичное обновление объявления (админка). nil = не менять.
type ListingPatch struct {
	City            *string
	District        *string
	Type            *string
	Price           *float64
	Currency        *string
	AreaM2          *float64
	Rooms           *int
	Lat             *float64
	Lon             *float64
	Title           LocalizedText
	Description     LocalizedText
	ContactTelegram *string
	ContactPhone    *string
	IsActive        *bool
}

func (p ListingPatch) Apply(l *Listing) {
	if p.City != nil {
		l.City = *p.City
	}
	if p.District != nil {
		l.District = *p.District
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Currency != nil {
		l.Currency = *p.Currency
	}
	if p.AreaM2 != nil {
		l.AreaM2 = cloneFloat(p.AreaM2)
	}
	if p.Rooms != nil {
		r := *p.Rooms
		l.Rooms = &r
	}
	if p.Lat != nil {
		l.Lat = cloneFloat(p.Lat)
	}
	if p.Lon != nil {
		l.Lon = cloneFloat(p.Lon)
	}
	if p.Title != nil {
		l.Title = cloneText(p.Title)
	}
	if p.Description != nil {
		l.Description = cloneText(p.Description)
	}
	if p.ContactTelegram != nil {
		s := *p.ContactTelegram
		l.ContactTelegram = &s
	}
	if p.ContactPhone != nil {
		s := *p.ContactPhone
		l.ContactPhone = &s
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneText(t LocalizedText) LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
