package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
	"github.com/acadverify/acadverify-api/internal/service"
)

func newRecordApp(t *testing.T, name string, permissions []string) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.University{},
		&models.AcademicProgram{},
		&models.GraduateRecord{},
		&models.AuditLogEntry{},
	))

	university := models.University{ID: uuid.NewString(), Name: "Coastal University", Email: "registrar@cu.example", IsActive: true}
	require.NoError(t, db.Create(&university).Error)

	audit := service.NewAuditService(repository.NewAuditLogRepository(db), 365, zerolog.Nop())
	records := service.NewRecordService(
		repository.NewRecordRepository(db),
		repository.NewProgramRepository(db),
		repository.NewUniversityRepository(db),
		stubStore{},
		audit,
		10,
		zerolog.Nop(),
	)

	app := fiber.New()
	group := app.Group("/api/v1/university-admin", func(c *fiber.Ctx) error {
		middleware.SetPrincipal(c, middleware.Principal{
			AccountID:    uuid.NewString(),
			Role:         models.RoleUniversityAdmin,
			UniversityID: university.ID,
			Permissions:  permissions,
		})
		return c.Next()
	})
	NewRecordHandler(records, zerolog.Nop()).Register(group)
	return app
}

func TestRecordRoutesEnforcePermissions(t *testing.T) {
	denied := newRecordApp(t, "handler_records_denied", []string{"courses:read"})

	res, err := denied.Test(httptest.NewRequest(http.MethodGet, "/api/v1/university-admin/records", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, err = denied.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/university-admin/records/"+uuid.NewString(), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, res.StatusCode)

	granted := newRecordApp(t, "handler_records_granted", []string{"students:read", "students:write"})

	res, err = granted.Test(httptest.NewRequest(http.MethodGet, "/api/v1/university-admin/records", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
}
