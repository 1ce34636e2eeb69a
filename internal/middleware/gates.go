package middleware

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// Machine-readable codes returned by the authentication gates so clients can
// distinguish "sign in again" from "you are not allowed".
const (
	CodeNoToken          = "NO_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	CodeInsufficientRole = "INSUFFICIENT_ROLE"
	CodeProfileInactive  = "PROFILE_INACTIVE"
)

// RefreshedTokenHeader carries a replacement session token when the current
// one is close to expiry. Clients should adopt it transparently.
const RefreshedTokenHeader = "X-Refreshed-Token"

// Gate authenticates requests against the session token issuer and re-validates
// the backing account row on every request. Deleting an account therefore
// revokes all of its outstanding tokens.
type Gate struct {
	tokens   service.TokenService
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

// NewGate constructs the authentication gate middleware factory.
func NewGate(tokens service.TokenService, accounts repository.AccountRepository, profiles repository.ProfileRepository, logger zerolog.Logger) *Gate {
	return &Gate{
		tokens:   tokens,
		accounts: accounts,
		profiles: profiles,
		logger:   logger.With().Str("component", "auth_gate").Logger(),
	}
}

// PlatformAdmin admits only active platform administrators.
func (g *Gate) PlatformAdmin() fiber.Handler {
	return g.admit(models.RolePlatformAdmin)
}

// UniversityAdmin admits only active university administrators and binds their
// tenant to the request principal.
func (g *Gate) UniversityAdmin() fiber.Handler {
	return g.admit(models.RoleUniversityAdmin)
}

// AnyAdmin admits either administrator role, used by shared session endpoints.
func (g *Gate) AnyAdmin() fiber.Handler {
	return g.admit("")
}

// admit builds the gate handler. An empty requiredRole accepts both admin
// roles; the profile branch follows the account's actual role either way.
func (g *Gate) admit(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeNoToken, "authorization token required")
		}

		claims, err := g.tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeTokenExpired, "session has expired, please sign in again")
			}
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeTokenInvalid, "session token is invalid")
		}

		ctx := c.UserContext()
		account, err := g.accounts.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeAccountNotFound, "account no longer exists")
			}
			g.logger.Error().Err(err).Str("account_id", claims.Subject).Msg("account lookup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "authentication check failed")
		}

		switch {
		case requiredRole == "":
			if account.Role != models.RolePlatformAdmin && account.Role != models.RoleUniversityAdmin {
				return utils.SendErrorCode(c, fiber.StatusForbidden, CodeInsufficientRole, "insufficient role for this resource")
			}
		case account.Role != requiredRole:
			return utils.SendErrorCode(c, fiber.StatusForbidden, CodeInsufficientRole, "insufficient role for this resource")
		}

		principal := Principal{
			AccountID: account.ID,
			Email:     account.Email,
			Role:      account.Role,
		}

		switch account.Role {
		case models.RolePlatformAdmin:
			profile, err := g.profiles.GetPlatformAdminByAccount(ctx, account.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeAccountNotFound, "administrator profile not found")
				}
				g.logger.Error().Err(err).Str("account_id", account.ID).Msg("profile lookup failed")
				return utils.SendError(c, fiber.StatusInternalServerError, "authentication check failed")
			}
			if !profile.IsActive {
				return utils.SendErrorCode(c, fiber.StatusForbidden, CodeProfileInactive, "administrator profile is deactivated")
			}
			principal.ProfileID = profile.ID
			principal.Permissions = decodePermissions(profile.Permissions)

		case models.RoleUniversityAdmin:
			profile, err := g.profiles.GetUniversityAdminByAccount(ctx, account.ID)
			if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
				// Accounts provisioned before the profile row existed are
				// matched by their denormalized email.
				profile, err = g.profiles.GetUniversityAdminByEmail(ctx, account.Email)
			}
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeAccountNotFound, "administrator profile not found")
				}
				g.logger.Error().Err(err).Str("account_id", account.ID).Msg("profile lookup failed")
				return utils.SendError(c, fiber.StatusInternalServerError, "authentication check failed")
			}
			if !profile.IsActive {
				return utils.SendErrorCode(c, fiber.StatusForbidden, CodeProfileInactive, "administrator profile is deactivated")
			}
			principal.ProfileID = profile.ID
			principal.UniversityID = profile.UniversityID
			principal.Permissions = decodePermissions(profile.Permissions)
		}

		SetPrincipal(c, principal)

		if g.tokens.ShouldRefresh(claims) {
			if refreshed, _, err := g.tokens.Issue(&account, principal.UniversityID); err == nil {
				c.Set(RefreshedTokenHeader, refreshed)
			} else {
				g.logger.Warn().Err(err).Str("account_id", account.ID).Msg("token refresh failed")
			}
		}

		// Best effort; a failed timestamp update must not block the request.
		if err := g.profiles.TouchLastLogin(ctx, account.Role, account.ID); err != nil {
			g.logger.Debug().Err(err).Str("account_id", account.ID).Msg("last login update failed")
		}

		return c.Next()
	}
}

// RequirePermission ensures the admitted principal carries the named
// permission. Platform administrators bypass the check.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, CodeNoToken, "authorization token required")
		}
		if principal.Role == models.RolePlatformAdmin {
			return c.Next()
		}
		if !principal.HasPermission(permission) {
			return utils.SendErrorCode(c, fiber.StatusForbidden, CodeInsufficientRole, "missing required permission")
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authorization == "" {
		return ""
	}

	const bearer = "bearer "
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return ""
	}

	return strings.TrimSpace(authorization[len(bearer):])
}

func decodePermissions(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var permissions []string
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil
	}
	return permissions
}
