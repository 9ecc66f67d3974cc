package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/utils"
	"github.com/listing-microservice/internal/usecase"
	"github.com/listing-microservice/internal/usecase/dto"
)

// EnquiryHandler - запросы покупателей из mini app и бота
type EnquiryHandler struct {
	enquiryUC *usecase.EnquiryUseCase
	logger    *zap.Logger
}

func NewEnquiryHandler(enquiryUC *usecase.EnquiryUseCase, logger *zap.Logger) *EnquiryHandler {
	return &EnquiryHandler{enquiryUC: enquiryUC, logger: logger}
}

// SubmitEnquiry godoc
// @Summary Отправить запрос по объявлению
// @Tags Listings
// @Accept json
// @Produce json
// @Param id path int true "ID объявления"
// @Param request body dto.EnquiryRequest true "Контакт покупателя"
// @Success 200 {object} utils.OKResponse
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Failure 503 {object} errors.AppError
// @Router /api/listings/{id}/enquiries [post]
func (h *EnquiryHandler) SubmitEnquiry(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.EnquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}

	if err := h.enquiryUC.SubmitEnquiry(c.Context(), id, req); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendOK(c)
}
