package notification

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/listing-microservice/internal/domain"
)

// FormatEvent renders an event as an admin chat message.
func FormatEvent(e domain.ListingEvent) string {
	var b strings.Builder

	switch e.Type {
	case domain.EventListingEnquiry:
		from := "no_username"
		contact := ""
		if q := e.Enquiry; q != nil {
			if q.FromUsername != "" {
				from = strings.TrimPrefix(q.FromUsername, "@")
			}
			if q.FromUserID != 0 {
				from += " (id " + strconv.FormatInt(q.FromUserID, 10) + ")"
			}
			contact = q.Contact
		}
		fmt.Fprintf(&b, "📩 Заявка от @%s по объекту ID=%d", from, e.ListingID)
		if contact != "" {
			fmt.Fprintf(&b, "\nКонтакт: %s", contact)
		}
		if e.Enquiry != nil && e.Enquiry.Message != "" {
			fmt.Fprintf(&b, "\n%s", e.Enquiry.Message)
		}
	case domain.EventListingCreated:
		fmt.Fprintf(&b, "✅ Добавлено объявление ID=%d", e.ListingID)
	case domain.EventListingUpdated:
		fmt.Fprintf(&b, "✏️ Изменено объявление ID=%d", e.ListingID)
	case domain.EventListingDeactivated:
		fmt.Fprintf(&b, "🚫 Объявление ID=%d скрыто", e.ListingID)
	default:
		fmt.Fprintf(&b, "%s ID=%d", e.Type, e.ListingID)
	}

	if s := e.Listing; s != nil {
		place := s.City
		if s.District != "" {
			place += ", " + s.District
		}
		fmt.Fprintf(&b, "\n%s · %s · %s %s", place, s.Type, strconv.FormatFloat(s.Price, 'f', -1, 64), s.Currency)
		if s.Title != "" {
			fmt.Fprintf(&b, "\n%s", s.Title)
		}
	}

	return b.String()
}
