package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/dto"
	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/utils"
)

// RecordHandler serves the university-admin graduate record endpoints. Every
// operation is scoped to the caller's university.
type RecordHandler struct {
	service service.RecordService
	logger  zerolog.Logger
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(recordService service.RecordService, logger zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		service: recordService,
		logger:  logger.With().Str("component", "record_handler").Logger(),
	}
}

// Register attaches routes. Each route is guarded by the permission its
// profile was granted at provisioning time.
func (h *RecordHandler) Register(router fiber.Router) {
	router.Get("/records", middleware.RequirePermission("students:read"), h.list)
	router.Post("/records", middleware.RequirePermission("students:write"), h.create)
	router.Get("/records/:id", middleware.RequirePermission("students:read"), h.get)
	router.Get("/records/:id/download", middleware.RequirePermission("students:read"), h.download)
	router.Get("/records/:id/preview/:kind", middleware.RequirePermission("students:read"), h.preview)
	router.Delete("/records/:id", middleware.RequirePermission("students:write"), h.delete)
}

func (h *RecordHandler) create(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	payload := dto.RecordCreateRequest{
		StudentFullName:    c.FormValue("student_full_name"),
		RegistrationNumber: c.FormValue("registration_number"),
		ProgramID:          c.FormValue("program_id"),
	}
	if year := c.FormValue("graduation_year"); year != "" {
		parsed, err := strconv.Atoi(year)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid graduation year")
		}
		payload.GraduationYear = parsed
	}
	if err := validate.Struct(payload); err != nil {
		return validationBadRequest(c, err)
	}

	// Both attachments are optional; a record without documents is valid.
	certificate, err := c.FormFile("certificate")
	if err != nil {
		certificate = nil
	}
	transcript, err := c.FormFile("transcript")
	if err != nil {
		transcript = nil
	}

	record, err := h.service.Create(c.UserContext(), actorFromContext(c), principal.UniversityID, payload, certificate, transcript)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "academic program not found")
		case errors.Is(err, service.ErrFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrFileTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to create graduate record")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create graduate record")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "graduate record created", record)
}

func (h *RecordHandler) list(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.List(c.UserContext(), principal.UniversityID, dto.RecordListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list graduate records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list graduate records")
	}

	return utils.SendSuccess(c, "graduate records retrieved", result)
}

func (h *RecordHandler) get(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	record, err := h.service.Get(c.UserContext(), principal.UniversityID, c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "graduate record not found")
		}
		h.logger.Error().Err(err).Msg("failed to load graduate record")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load graduate record")
	}

	return utils.SendSuccess(c, "graduate record retrieved", record)
}

func (h *RecordHandler) download(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	name, archive, err := h.service.DownloadArchive(c.UserContext(), principal.UniversityID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "graduate record not found")
		case errors.Is(err, service.ErrNoAttachments):
			return utils.SendError(c, fiber.StatusNotFound, "record has no attached documents")
		default:
			h.logger.Error().Err(err).Str("record_id", c.Params("id")).Msg("failed to build document archive")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to download documents")
		}
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(archive)
}

func (h *RecordHandler) preview(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	preview, err := h.service.PreviewURL(c.UserContext(), principal.UniversityID, c.Params("id"), c.Params("kind"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "graduate record not found")
		case errors.Is(err, service.ErrAttachmentMissing):
			return utils.SendError(c, fiber.StatusNotFound, "requested document is not attached")
		default:
			h.logger.Error().Err(err).Str("record_id", c.Params("id")).Msg("failed to build preview url")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build preview url")
		}
	}

	return utils.SendSuccess(c, "preview url generated", preview)
}

func (h *RecordHandler) delete(c *fiber.Ctx) error {
	principal, _ := middleware.GetPrincipal(c)

	report, err := h.service.Delete(c.UserContext(), actorFromContext(c), principal.UniversityID, c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "graduate record not found")
		}
		h.logger.Error().Err(err).Str("record_id", c.Params("id")).Msg("failed to delete graduate record")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete graduate record")
	}

	return utils.SendSuccess(c, "graduate record deleted", report)
}
