package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/listing-microservice/internal/pkg/errors"
)

type OKResponse struct {
	OK bool `json:"ok"`
}

type IDResponse struct {
	ID int64 `json:"id"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// SendSuccess writes data as the whole response body. Listing endpoints return
// bare arrays and objects, there is no envelope.
func SendSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func SendOK(c *fiber.Ctx) error {
	return c.JSON(OKResponse{OK: true})
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		return c.Status(appErr.StatusCode).JSON(appErr)
	}

	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(errors.New("HTTP_ERROR", fe.Message, fe.Code))
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(errors.ErrInternalServer)
}
