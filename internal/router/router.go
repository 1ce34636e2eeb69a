package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acadverify/acadverify-api/internal/config"
	"github.com/acadverify/acadverify-api/internal/handler"
	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UniversityHandler   *handler.AdminUniversityHandler
	AccountHandler      *handler.AdminAccountHandler
	RecordHandler       *handler.RecordHandler
	SettingsHandler     *handler.SettingsHandler
	VerificationHandler *handler.VerificationHandler
	Gate                *middleware.Gate
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	// Platform admin surface.
	if deps.Gate != nil && deps.UniversityHandler != nil {
		admin := api.Group("/admin", deps.Gate.PlatformAdmin())
		deps.UniversityHandler.Register(admin)
		if deps.AccountHandler != nil {
			deps.AccountHandler.Register(admin)
		}
	}

	// University admin surface, scoped to the caller's tenant by the gate.
	if deps.Gate != nil && deps.RecordHandler != nil {
		universityAdmin := api.Group("/university-admin", deps.Gate.UniversityAdmin())
		deps.RecordHandler.Register(universityAdmin)
		if deps.SettingsHandler != nil {
			deps.SettingsHandler.Register(universityAdmin)
		}
	}

	// Anonymous verification surface.
	if deps.VerificationHandler != nil {
		deps.VerificationHandler.Register(api.Group("/verification"))
	}
}
