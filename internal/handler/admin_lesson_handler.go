package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/service"
	"github.com/skillroute/skillroute-api/internal/utils"
)

// AdminLessonHandler wires the lesson management routes.
type AdminLessonHandler struct {
	service service.LessonService
	logger  zerolog.Logger
}

// NewAdminLessonHandler constructs the handler.
func NewAdminLessonHandler(service service.LessonService, logger zerolog.Logger) *AdminLessonHandler {
	return &AdminLessonHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_lesson_handler").Logger(),
	}
}

// Register attaches lesson management endpoints to the router group.
func (h *AdminLessonHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/media/:kind", h.uploadMedia)
}

func (h *AdminLessonHandler) list(c *fiber.Ctx) error {
	lessons, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "lessons retrieved", lessons)
}

func (h *AdminLessonHandler) create(c *fiber.Ctx) error {
	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", lesson)
}

func (h *AdminLessonHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson updated", lesson)
}

func (h *AdminLessonHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson deleted", fiber.Map{"id": id})
}

func (h *AdminLessonHandler) uploadMedia(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	kind := c.Params("kind")

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "media file is required")
	}

	lesson, err := h.service.UploadMedia(c.Context(), id, kind, file)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMediaType) {
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson media uploaded", lesson)
}

func (h *AdminLessonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AdminLessonHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
