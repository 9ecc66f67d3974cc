package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/usecase/dto"
)

func listingID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithMessage("id must be an integer")
	}
	return id, nil
}

func listRequest(c *fiber.Ctx) dto.ListListingsRequest {
	typ := c.Query("type")
	if typ == "" {
		typ = c.Query("property_type")
	}
	return dto.ListListingsRequest{
		City:           c.Query("city"),
		District:       c.Query("district"),
		Type:           typ,
		MinPrice:       c.Query("min_price"),
		MaxPrice:       c.Query("max_price"),
		Rooms:          c.Query("rooms"),
		Lang:           c.Query("lang"),
		AcceptLanguage: c.Get(fiber.HeaderAcceptLanguage),
		Limit:          c.Query("limit"),
		Sort:           c.Query("sort"),
	}
}

func queryBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}
