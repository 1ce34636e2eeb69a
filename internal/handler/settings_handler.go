package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// SettingsHandler serves the university-admin settings and program endpoints.
type SettingsHandler struct {
	service service.ProgramService
	logger  zerolog.Logger
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(programService service.ProgramService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: programService,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register attaches routes. Each route is guarded by the permission its
// profile was granted at provisioning time.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("/settings", middleware.RequirePermission("university:read"), h.settings)
	router.Patch("/settings", middleware.RequirePermission("university:write"), h.updateSettings)
	router.Get("/programs", middleware.RequirePermission("courses:read"), h.listPrograms)
	router.Post("/programs", middleware.RequirePermission("courses:write"), h.createProgram)
	router.Patch("/programs/:id", middleware.RequirePermission("courses:write"), h.updateProgram)
	router.Delete("/programs/:id", middleware.RequirePermission("courses:write"), h.deleteProgram)
}

func (h *SettingsHandler) settings(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	settings, err := h.service.Settings(c.UserContext(), principal.UniversityID)
	if err != nil {
		if errors.Is(err, service.ErrUniversityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		}
		h.logger.Error().Err(err).Msg("failed to load settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *SettingsHandler) updateSettings(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	var payload dto.UniversitySettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	settings, err := h.service.UpdateSettings(c.UserContext(), actorFromContext(c), principal.UniversityID, payload)
	if err != nil {
		if errors.Is(err, service.ErrUniversityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		}
		h.logger.Error().Err(err).Msg("failed to update settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update settings")
	}

	return utils.SendSuccess(c, "settings updated", settings)
}

func (h *SettingsHandler) listPrograms(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.List(c.UserContext(), principal.UniversityID, page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list programs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list programs")
	}

	return utils.SendSuccess(c, "programs retrieved", result)
}

func (h *SettingsHandler) createProgram(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	program, err := h.service.Create(c.UserContext(), actorFromContext(c), principal.UniversityID, payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create program")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create program")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program created", program)
}

func (h *SettingsHandler) updateProgram(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	program, err := h.service.Update(c.UserContext(), actorFromContext(c), principal.UniversityID, c.Params("id"), payload)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		}
		h.logger.Error().Err(err).Str("program_id", c.Params("id")).Msg("failed to update program")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update program")
	}

	return utils.SendSuccess(c, "program updated", program)
}

func (h *SettingsHandler) deleteProgram(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), principal.UniversityID, c.Params("id")); err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		}
		h.logger.Error().Err(err).Str("program_id", c.Params("id")).Msg("failed to delete program")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete program")
	}

	return utils.SendSuccess(c, "program deleted", nil)
}
