package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/utils"
	"github.com/listing-microservice/internal/usecase"
	"github.com/listing-microservice/internal/usecase/dto"
)

// ModerationHandler - создание, изменение и снятие объявлений
type ModerationHandler struct {
	moderationUC *usecase.ModerationUseCase
	lang         string
	logger       *zap.Logger
}

// NewModerationHandler - создание нового ModerationHandler
func NewModerationHandler(moderationUC *usecase.ModerationUseCase, defaultLang string, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderationUC: moderationUC,
		lang:         defaultLang,
		logger:       logger,
	}
}

// CreateListing godoc
// @Summary Создать объявление
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateListingRequest true "Объявление"
// @Success 200 {object} dto.CreateListingResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /api/listings [post]
func (h *ModerationHandler) CreateListing(c *fiber.Ctx) error {
	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}

	result, err := h.moderationUC.CreateListing(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}

// UpdateListing godoc
// @Summary Изменить объявление
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID объявления"
// @Param request body dto.UpdateListingRequest true "Изменяемые поля"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /api/listings/{id} [patch]
func (h *ModerationHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}

	updated, err := h.moderationUC.UpdateListing(c.Context(), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewListingResponse(updated, h.lang))
}

// DeactivateListing godoc
// @Summary Снять объявление с публикации
// @Description Идемпотентно: повторный вызов тоже возвращает ok
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} utils.OKResponse
// @Failure 401 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /api/listings/{id}/deactivate [post]
func (h *ModerationHandler) DeactivateListing(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.moderationUC.DeactivateListing(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendOK(c)
}

// UploadImage godoc
// @Summary Загрузить фотографию
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID объявления"
// @Param file formData file true "Изображение"
// @Param sort_order formData int false "Порядок"
// @Param is_cover formData bool false "Обложка"
// @Success 200 {object} domain.Image
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 503 {object} errors.AppError
// @Router /api/listings/{id}/images [post]
func (h *ModerationHandler) UploadImage(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if !h.moderationUC.ImagesEnabled() {
		return utils.SendError(c, errors.ErrFeatureDisabled.WithMessage("image uploads are not configured"))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, errors.Validation("file is required"))
	}

	f, err := fh.Open()
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("failed to read upload"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("failed to read upload"))
	}

	sortOrder := 0
	if raw := c.FormValue("sort_order"); raw != "" {
		if sortOrder, err = strconv.Atoi(raw); err != nil {
			return utils.SendError(c, errors.Validation("sort_order must be an integer"))
		}
	}
	isCover, _ := strconv.ParseBool(c.FormValue("is_cover"))

	img, err := h.moderationUC.UploadImage(c.Context(), id, dto.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
		SortOrder:   sortOrder,
		IsCover:     isCover,
	})
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, img)
}
