// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/listing-microservice/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	listingID := flag.Int64("listing", 1, "Listing ID")
	eventType := flag.String("type", string(domain.EventListingEnquiry), "Event type")
	username := flag.String("user", "test_buyer", "Buyer username for enquiries")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.ListingEvent{
		Type:       domain.EventType(*eventType),
		ListingID:  *listingID,
		OccurredAt: time.Now().UTC(),
	}
	if event.Type == domain.EventListingEnquiry {
		event.Enquiry = &domain.Enquiry{
			FromUserID:   42,
			FromUsername: *username,
			Message:      "Тестовая заявка",
		}
	} else {
		event.Listing = &domain.ListingSummary{
			City:     "varna",
			District: "briz",
			Type:     "apartment",
			Price:    125000,
			Currency: domain.DefaultCurrency,
			Title:    "Test listing",
			IsActive: true,
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamListingEvents,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: %s\n", domain.StreamListingEvents)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Type: %s\n", event.Type)
	fmt.Printf("   Listing ID: %d\n", event.ListingID)

	// Ожидание обработки воркером
	fmt.Printf("\n⏳ Waiting for the notification worker to acknowledge...\n")

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("❌ Timeout: message is still pending or no consumer group exists")
			return
		case <-ticker.C:
			groups, err := client.XInfoGroups(ctx, domain.StreamListingEvents).Result()
			if err != nil {
				continue
			}
			for _, g := range groups {
				if g.Pending == 0 && g.LastDeliveredID >= result {
					fmt.Printf("\n✅ Delivered and acknowledged by group %q\n", g.Name)
					return
				}
			}
		}
	}
}
