package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// Conflict codes surfaced by the account deletion guards.
const (
	SelfDeleteForbiddenCode            = "SELF_DELETE_FORBIDDEN"
	UniversityAdminDeleteForbiddenCode = "UNIVERSITY_ADMIN_DELETE_FORBIDDEN"
)

// AdminAccountHandler serves the platform-admin account and university-admin
// management endpoints.
type AdminAccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAdminAccountHandler constructs the handler.
func NewAdminAccountHandler(accountService service.AccountService, logger zerolog.Logger) *AdminAccountHandler {
	return &AdminAccountHandler{
		service: accountService,
		logger:  logger.With().Str("component", "admin_account_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminAccountHandler) Register(router fiber.Router) {
	router.Get("/accounts", h.listAccounts)
	router.Get("/accounts/:id", h.getAccount)
	router.Delete("/accounts/:id", h.deleteAccount)
	router.Post("/platform-admins", h.createPlatformAdmin)
	router.Get("/university-admins", h.listUniversityAdmins)
	router.Post("/university-admins", h.createUniversityAdmin)
	router.Get("/university-admins/:id", h.getUniversityAdmin)
	router.Patch("/university-admins/:id", h.updateUniversityAdmin)
	router.Delete("/university-admins/:id", h.deleteUniversityAdmin)
}

func (h *AdminAccountHandler) listAccounts(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.ListAccounts(c.UserContext(), actorFromContext(c), dto.AccountListRequest{
		Page:     page,
		PageSize: pageSize,
		Role:     c.Query("role"),
		Search:   c.Query("search"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list accounts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list accounts")
	}

	return utils.SendSuccess(c, "accounts retrieved", result)
}

func (h *AdminAccountHandler) getAccount(c *fiber.Ctx) error {
	account, err := h.service.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		}
		h.logger.Error().Err(err).Msg("failed to load account")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load account")
	}
	return utils.SendSuccess(c, "account retrieved", account)
}

func (h *AdminAccountHandler) deleteAccount(c *fiber.Ctx) error {
	report, err := h.service.DeleteAccount(c.UserContext(), actorFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "account not found")
		case errors.Is(err, service.ErrSelfDelete):
			return utils.SendErrorCode(c, fiber.StatusConflict, SelfDeleteForbiddenCode, err.Error())
		case errors.Is(err, service.ErrUniversityAdminDelete):
			return utils.SendErrorCode(c, fiber.StatusConflict, UniversityAdminDeleteForbiddenCode, err.Error())
		default:
			h.logger.Error().Err(err).Str("account_id", c.Params("id")).Msg("failed to delete account")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete account")
		}
	}

	return utils.SendSuccess(c, "account deleted", report)
}

func (h *AdminAccountHandler) createPlatformAdmin(c *fiber.Ctx) error {
	var payload dto.CreatePlatformAdminRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	account, err := h.service.CreatePlatformAdmin(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, identity.ErrUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "authentication service is unavailable")
		default:
			h.logger.Error().Err(err).Msg("failed to create platform admin")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create platform admin")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "platform admin created", account)
}

func (h *AdminAccountHandler) listUniversityAdmins(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.ListUniversityAdmins(c.UserContext(), c.Query("university_id"), c.Query("search"), page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list university admins")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list university admins")
	}

	return utils.SendSuccess(c, "university admins retrieved", result)
}

func (h *AdminAccountHandler) createUniversityAdmin(c *fiber.Ctx) error {
	var payload dto.CreateUniversityAdminRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	admin, err := h.service.CreateUniversityAdmin(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrUniversityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "university not found")
		case errors.Is(err, service.ErrUniversityInactive):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, identity.ErrUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "authentication service is unavailable")
		default:
			h.logger.Error().Err(err).Msg("failed to create university admin")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create university admin")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "university admin created", admin)
}

func (h *AdminAccountHandler) getUniversityAdmin(c *fiber.Ctx) error {
	admin, err := h.service.GetUniversityAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university admin not found")
		}
		h.logger.Error().Err(err).Msg("failed to load university admin")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load university admin")
	}
	return utils.SendSuccess(c, "university admin retrieved", admin)
}

func (h *AdminAccountHandler) updateUniversityAdmin(c *fiber.Ctx) error {
	var payload dto.UpdateUniversityAdminRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	admin, err := h.service.UpdateUniversityAdmin(c.UserContext(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "university admin not found")
		}
		h.logger.Error().Err(err).Str("admin_id", c.Params("id")).Msg("failed to update university admin")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update university admin")
	}

	return utils.SendSuccess(c, "university admin updated", admin)
}

func (h *AdminAccountHandler) deleteUniversityAdmin(c *fiber.Ctx) error {
	report, err := h.service.DeleteUniversityAdmin(c.UserContext(), actorFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "university admin not found")
		case errors.Is(err, service.ErrSelfDelete):
			return utils.SendErrorCode(c, fiber.StatusConflict, SelfDeleteForbiddenCode, err.Error())
		default:
			h.logger.Error().Err(err).Str("admin_id", c.Params("id")).Msg("failed to delete university admin")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete university admin")
		}
	}

	return utils.SendSuccess(c, "university admin deleted", report)
}
