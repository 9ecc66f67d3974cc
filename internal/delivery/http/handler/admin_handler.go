package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/utils"
	"github.com/listing-microservice/internal/usecase"
	"github.com/listing-microservice/internal/usecase/dto"
)

// AdminHandler - вход администратора
type AdminHandler struct {
	authUC *usecase.AuthUseCase
	logger *zap.Logger
}

func NewAdminHandler(authUC *usecase.AuthUseCase, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{authUC: authUC, logger: logger}
}

// Login godoc
// @Summary Вход администратора
// @Description Возвращает JWT для заголовка Authorization: Bearer
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Учётные данные"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} errors.AppError
// @Failure 503 {object} errors.AppError
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}

	result, err := h.authUC.Login(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}
