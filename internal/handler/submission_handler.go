package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/service"
	"github.com/skillroute/skillroute-api/internal/utils"
)

// SubmissionHandler wires the quiz submission and certification routes.
type SubmissionHandler struct {
	quizzes      service.QuizService
	certificates service.CertificateService
	logger       zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(quizzes service.QuizService, certificates service.CertificateService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		quizzes:      quizzes,
		certificates: certificates,
		logger:       logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches student submission endpoints to the router group. The
// answer route accepts both verbs; older clients send PUT.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/:id/submission", h.getSubmission)
	router.Post("/:id/submit", h.submitQuiz)
	router.Post("/:id/answer", h.saveAnswer)
	router.Put("/:id/answer", h.saveAnswer)
	router.Post("/:id/reset", h.resetQuiz)
	router.Get("/:id/certificate.png", h.certificate)
}

// RegisterAssignmentGrading attaches the grading endpoint addressed by
// assignment id. The submission to grade is named in the request body.
func (h *SubmissionHandler) RegisterAssignmentGrading(router fiber.Router) {
	router.Put("/:id/grade", h.gradeManually)
}

// RegisterGrading attaches the grading endpoint on the submissions group.
func (h *SubmissionHandler) RegisterGrading(router fiber.Router) {
	router.Post("/grade", h.gradeManually)
}

func (h *SubmissionHandler) getSubmission(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.quizzes.GetSubmission(c.Context(), studentID, assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) submitQuiz(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitQuizRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.quizzes.SubmitQuiz(c.Context(), studentID, assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz submitted", submission)
}

func (h *SubmissionHandler) saveAnswer(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SaveAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.quizzes.SaveAnswer(c.Context(), studentID, assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer saved", submission)
}

func (h *SubmissionHandler) resetQuiz(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.quizzes.ResetQuiz(c.Context(), studentID, assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz reset", submission)
}

func (h *SubmissionHandler) certificate(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload, err := h.certificates.RenderPNG(c.Context(), studentID, assignmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrCertificateNotEarned):
			return utils.SendError(c, fiber.StatusForbidden, "certificate not earned")
		default:
			h.logger.Error().Err(err).Msg("certificate rendering failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to render certificate")
		}
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(payload)
}

func (h *SubmissionHandler) gradeManually(c *fiber.Ctx) error {
	graderID := userIDFromContext(c)
	if graderID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.quizzes.GradeManually(c.Context(), payload, graderID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, "submission already graded")
	case errors.Is(err, service.ErrNotQuizAssignment):
		return utils.SendError(c, fiber.StatusBadRequest, "operation only supported for quiz assignments")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
