package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/service"
	"github.com/skillroute/skillroute-api/internal/utils"
)

// LessonHandler wires the student-facing lesson unlock and progress routes.
type LessonHandler struct {
	unlocks service.UnlockService
	logger  zerolog.Logger
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(unlocks service.UnlockService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		unlocks: unlocks,
		logger:  logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register attaches lesson endpoints to the router group.
func (h *LessonHandler) Register(router fiber.Router) {
	router.Get("/student/lessons", h.studentLessons)
	router.Put("/day/:day/progress", h.recordDayProgress)
	router.Put("/:id/progress", h.recordLessonProgress)
	router.Post("/day/:day/unlock", h.unlockSecret)
}

func (h *LessonHandler) studentLessons(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	states, err := h.unlocks.ListLessonStates(c.Context(), studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "lessons retrieved", dto.LessonStatesResponse{Lessons: states})
}

func (h *LessonHandler) recordDayProgress(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	day, err := parseDayParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RecordAccessRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.unlocks.RecordAccessByDay(c.Context(), studentID, day, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	// Missing lesson is not an error on this path: the track may be partially
	// provisioned, so the client gets a success envelope with null data.
	if progress == nil {
		return utils.SendNullData(c, "progress recorded")
	}

	return utils.SendSuccess(c, "progress recorded", progress)
}

func (h *LessonHandler) recordLessonProgress(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RecordAccessRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.unlocks.RecordAccessByLesson(c.Context(), studentID, lessonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	if progress == nil {
		return utils.SendNullData(c, "progress recorded")
	}

	return utils.SendSuccess(c, "progress recorded", progress)
}

func (h *LessonHandler) unlockSecret(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	day, err := parseDayParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.unlocks.UnlockSecret(c.Context(), studentID, day)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson unlocked", progress)
}

func (h *LessonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *LessonHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
