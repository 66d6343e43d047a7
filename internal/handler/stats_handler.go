package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/service"
	"github.com/skillroute/skillroute-api/internal/utils"
)

// StatsHandler wires the progress statistics routes.
type StatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches the student-facing stats endpoint.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/me", h.myStats)
}

// RegisterAdmin attaches the per-student lookup for teachers and admins.
func (h *StatsHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/students/:id", h.studentStats)
}

func (h *StatsHandler) myStats(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	stats, err := h.service.StudentStats(c.Context(), studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *StatsHandler) studentStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.StudentStats(c.Context(), id)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *StatsHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
