package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Principal is the authenticated caller bound to the active request after a
// gate has admitted it. UniversityID and ProfileID are empty for platform
// administrators operating outside a tenant.
type Principal struct {
	AccountID    string
	Email        string
	Role         string
	ProfileID    string
	UniversityID string
	Permissions  []string
}

// HasPermission reports whether the principal carries the named permission.
func (p Principal) HasPermission(permission string) bool {
	for _, granted := range p.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// SetPrincipal binds the authenticated principal to the request.
func SetPrincipal(c *fiber.Ctx, principal Principal) {
	c.Locals(principalKey, principal)
}

// GetPrincipal returns the principal bound to the request, if any.
func GetPrincipal(c *fiber.Ctx) (Principal, bool) {
	value := c.Locals(principalKey)
	if value == nil {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}
