package domain

import "time"

// Stream names
const (
	StreamListingEvents = "stream:listing:events"
)

type EventType string

const (
	EventListingCreated     EventType = "listing.created"
	EventListingUpdated     EventType = "listing.updated"
	EventListingDeactivated EventType = "listing.deactivated"
	EventListingEnquiry     EventType = "listing.enquiry"
)

// ListingEvent - событие, публикуемое в stream:listing:events
type ListingEvent struct {
	Type       EventType       `json:"type"`
	ListingID  int64           `json:"listing_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Listing    *ListingSummary `json:"listing,omitempty"`
	Enquiry    *Enquiry        `json:"enquiry,omitempty"`
}

// ListingSummary - краткое описание объявления для уведомлений
type ListingSummary struct {
	City     string  `json:"city"`
	District string  `json:"district,omitempty"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Title    string  `json:"title,omitempty"`
	IsActive bool    `json:"is_active"`
}

// Enquiry - запрос покупателя по объявлению
type Enquiry struct {
	FromUserID   int64  `json:"from_user_id,omitempty"`
	FromUsername string `json:"from_username,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewListingEvent(t EventType, l *Listing) ListingEvent {
	e := ListingEvent{
		Type:       t,
		ListingID:  l.ID,
		OccurredAt: time.Now().UTC(),
	}
	e.Listing = &ListingSummary{
		City:     l.City,
		District: l.District,
		Type:     l.Type,
		Price:    l.Price,
		Currency: l.Currency,
		Title:    l.Title.Resolve(""),
		IsActive: l.IsActive,
	}
	return e
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
