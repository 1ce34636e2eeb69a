package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// UniversityHasAdminsCode signals a deletion blocked by remaining admins.
const UniversityHasAdminsCode = "UNIVERSITY_HAS_ADMINS"

// AdminUniversityHandler serves the platform-admin university endpoints.
type AdminUniversityHandler struct {
	service service.UniversityService
	logger  zerolog.Logger
}

// NewAdminUniversityHandler constructs the handler.
func NewAdminUniversityHandler(universityService service.UniversityService, logger zerolog.Logger) *AdminUniversityHandler {
	return &AdminUniversityHandler{
		service: universityService,
		logger:  logger.With().Str("component", "admin_university_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminUniversityHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/universities", h.list)
	router.Post("/universities", h.create)
	router.Get("/universities/:id", h.get)
	router.Patch("/universities/:id", h.update)
	router.Delete("/universities/:id", h.delete)
}

func (h *AdminUniversityHandler) dashboard(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load dashboard stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	return utils.SendSuccess(c, "dashboard stats retrieved", stats)
}

func (h *AdminUniversityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.List(c.UserContext(), dto.UniversityListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list universities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list universities")
	}

	return utils.SendSuccess(c, "universities retrieved", result)
}

func (h *AdminUniversityHandler) create(c *fiber.Ctx) error {
	var payload dto.UniversityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	university, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if errors.Is(err, service.ErrUniversityEmailTaken) {
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create university")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create university")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "university created", university)
}

func (h *AdminUniversityHandler) get(c *fiber.Ctx) error {
	university, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrUniversityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		}
		h.logger.Error().Err(err).Msg("failed to load university")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load university")
	}
	return utils.SendSuccess(c, "university retrieved", university)
}

func (h *AdminUniversityHandler) update(c *fiber.Ctx) error {
	var payload dto.UniversityUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	university, err := h.service.Update(c.UserContext(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		if errors.Is(err, service.ErrUniversityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		}
		h.logger.Error().Err(err).Str("university_id", c.Params("id")).Msg("failed to update university")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update university")
	}

	return utils.SendSuccess(c, "university updated", university)
}

func (h *AdminUniversityHandler) delete(c *fiber.Ctx) error {
	err := h.service.Delete(c.UserContext(), actorFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUniversityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		case errors.Is(err, service.ErrUniversityHasAdmins):
			return utils.SendErrorCode(c, fiber.StatusConflict, UniversityHasAdminsCode, err.Error())
		default:
			h.logger.Error().Err(err).Str("university_id", c.Params("id")).Msg("failed to delete university")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete university")
		}
	}

	return utils.SendSuccess(c, "university deleted", nil)
}
