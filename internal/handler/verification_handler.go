package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// VerificationHandler serves the anonymous credential verification endpoints.
type VerificationHandler struct {
	service service.VerificationService
	logger  zerolog.Logger
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(verificationService service.VerificationService, logger zerolog.Logger) *VerificationHandler {
	return &VerificationHandler{
		service: verificationService,
		logger:  logger.With().Str("component", "verification_handler").Logger(),
	}
}

// Register attaches routes.
func (h *VerificationHandler) Register(router fiber.Router) {
	router.Post("/verify", h.verify)
	router.Get("/universities", h.universities)
	router.Get("/universities/:id/programs", h.programs)
	router.Get("/universities/:id/years", h.years)
	router.Get("/records/:universityId/:recordId/preview/:kind", h.preview)
}

func (h *VerificationHandler) verify(c *fiber.Ctx) error {
	var payload dto.VerificationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	result, err := h.service.Verify(c.UserContext(), payload)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationRequired) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("verification lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "verification lookup failed")
	}

	if !result.Found {
		return utils.SendSuccess(c, "no matching credential found", result)
	}
	return utils.SendSuccess(c, "credential verified", result)
}

func (h *VerificationHandler) universities(c *fiber.Ctx) error {
	options, err := h.service.Universities(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list universities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list universities")
	}
	return utils.SendSuccess(c, "universities retrieved", options)
}

func (h *VerificationHandler) programs(c *fiber.Ctx) error {
	options, err := h.service.Programs(c.UserContext(), c.Params("id"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list programs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list programs")
	}
	return utils.SendSuccess(c, "programs retrieved", options)
}

func (h *VerificationHandler) years(c *fiber.Ctx) error {
	years, err := h.service.GraduationYears(c.UserContext(), c.Params("id"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list graduation years")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list graduation years")
	}
	return utils.SendSuccess(c, "graduation years retrieved", years)
}

func (h *VerificationHandler) preview(c *fiber.Ctx) error {
	preview, err := h.service.Preview(c.UserContext(), c.Params("universityId"), c.Params("recordId"), c.Params("kind"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "credential not found")
		case errors.Is(err, service.ErrAttachmentMissing):
			return utils.SendError(c, fiber.StatusNotFound, "requested document is not attached")
		default:
			h.logger.Error().Err(err).Msg("failed to build preview url")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build preview url")
		}
	}

	return utils.SendSuccess(c, "preview url generated", preview)
}
