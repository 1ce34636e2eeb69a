package handler

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

var validate = validator.New()

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	principal, _ := middleware.GetPrincipal(c)
	return service.Actor{
		AccountID: principal.AccountID,
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// validationBadRequest renders the first field failure from a validator
// error, or a generic message for anything else.
func validationBadRequest(c *fiber.Ctx, err error) error {
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		field := fieldErrors[0]
		return utils.SendError(c, fiber.StatusBadRequest, "invalid value for field "+strings.ToLower(field.Field()))
	}
	return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
}
