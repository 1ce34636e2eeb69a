package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// AuthHandler serves the admin session endpoints.
type AuthHandler struct {
	service service.AuthService
	gate    *middleware.Gate
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService service.AuthService, gate *middleware.Gate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: authService,
		gate:    gate,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/logout", h.gate.AnyAdmin(), h.logout)
	router.Post("/forgot-password", h.forgotPassword)
	router.Post("/change-password", h.changePassword)
	router.Get("/session", h.gate.AnyAdmin(), h.session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLogin),
			errors.Is(err, service.ErrNotAdminAccount):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrProfileInactive):
			return utils.SendErrorCode(c, fiber.StatusForbidden, middleware.CodeProfileInactive, "administrator profile is deactivated")
		case errors.Is(err, service.ErrProfileMissing):
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, middleware.CodeAccountNotFound, "administrator profile not found")
		case errors.Is(err, identity.ErrRateLimited):
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many attempts, try again later")
		case errors.Is(err, identity.ErrUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "authentication service is unavailable")
		default:
			h.logger.Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "signed in", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if principal, ok := middleware.GetPrincipal(c); ok {
		h.service.Logout(c.UserContext(), principal.AccountID, c.IP(), c.Get(fiber.HeaderUserAgent))
	}
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	if err := h.service.ForgotPassword(c.UserContext(), payload.Email); err != nil {
		if errors.Is(err, identity.ErrRateLimited) {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many attempts, try again later")
		}
		h.logger.Error().Err(err).Msg("password reset request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "password reset request failed")
	}

	// Same response whether or not the email exists.
	return utils.SendSuccess(c, "if the email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	if err := h.service.ChangePassword(c.UserContext(), payload); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "reset token is invalid or expired")
		case errors.Is(err, identity.ErrUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "authentication service is unavailable")
		default:
			h.logger.Error().Err(err).Msg("password change failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "password change failed")
		}
	}

	return utils.SendSuccess(c, "password updated", nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return utils.SendErrorCode(c, fiber.StatusUnauthorized, middleware.CodeNoToken, "authorization token required")
	}

	return utils.SendSuccess(c, "session active", dto.SessionResponse{
		AccountID:    principal.AccountID,
		Email:        principal.Email,
		Role:         principal.Role,
		UniversityID: principal.UniversityID,
	})
}
