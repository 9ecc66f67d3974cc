package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/pkg/utils"
	"github.com/listing-microservice/internal/usecase"
)

// ListingHandler - публичные эндпоинты каталога
type ListingHandler struct {
	listingUC *usecase.ListingUseCase
	logger    *zap.Logger
}

// NewListingHandler - создание нового ListingHandler
func NewListingHandler(listingUC *usecase.ListingUseCase, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingUC: listingUC,
		logger:    logger,
	}
}

// ListListings godoc
// @Summary Список объявлений
// @Description Активные объявления по фильтрам, новые первыми. Пустой массив, если ничего не найдено.
// @Tags Listings
// @Produce json
// @Param city query string false "Город (без учёта регистра)"
// @Param district query string false "Район"
// @Param type query string false "Тип объекта (alias: property_type)"
// @Param min_price query number false "Минимальная цена"
// @Param max_price query number false "Максимальная цена"
// @Param rooms query int false "Количество комнат"
// @Param lang query string false "Язык заголовка и описания" default(en)
// @Param limit query int false "Максимум записей" default(200)
// @Param sort query string false "newest, oldest, price_asc, price_desc" default(newest)
// @Success 200 {array} dto.ListingResponse
// @Failure 400 {object} errors.AppError
// @Failure 500 {object} errors.AppError
// @Router /api/listings [get]
func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	result, err := h.listingUC.ListListings(c.Context(), listRequest(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}

// GetListing godoc
// @Summary Карточка объявления
// @Description Возвращает объявление по id, включая снятые с публикации
// @Tags Listings
// @Produce json
// @Param id path int true "ID объявления"
// @Param lang query string false "Язык" default(en)
// @Success 200 {object} dto.ListingResponse
// @Failure 404 {object} errors.AppError
// @Router /api/listings/{id} [get]
func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.listingUC.GetListing(c.Context(), id, c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}

// GetFilters godoc
// @Summary Значения фильтров
// @Description Уникальные города, районы и типы объектов, отсортированные
// @Tags Listings
// @Produce json
// @Param include_inactive query bool false "Учитывать снятые объявления"
// @Success 200 {object} domain.Facets
// @Failure 500 {object} errors.AppError
// @Router /api/filters [get]
func (h *ListingHandler) GetFilters(c *fiber.Ctx) error {
	facets, err := h.listingUC.GetFacets(c.Context(), queryBool(c, "include_inactive"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, facets)
}

// AdminListListings godoc
// @Summary Все объявления (админ)
// @Description Как /listings, но включая неактивные
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.ListingResponse
// @Failure 401 {object} errors.AppError
// @Router /api/admin/listings [get]
func (h *ListingHandler) AdminListListings(c *fiber.Ctx) error {
	req := listRequest(c)
	req.IncludeInactive = true

	result, err := h.listingUC.ListListings(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}
