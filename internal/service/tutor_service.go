package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
	"github.com/skillroute/skillroute-api/pkg/ai"
)

// ErrTutorUnavailable indicates no AI provider is configured or the provider call failed.
var ErrTutorUnavailable = errors.New("tutor unavailable")

// tutorHistoryLimit caps how many prior turns are replayed to the model.
const tutorHistoryLimit = 20

// TutorService runs the AI tutor conversation for students.
type TutorService interface {
	Ask(ctx context.Context, studentID uint, payload dto.TutorAskRequest) (dto.TutorMessageResponse, error)
	History(ctx context.Context, studentID uint) ([]dto.TutorMessageResponse, error)
}

type tutorService struct {
	messages  repository.TutorRepository
	provider  ai.Provider
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTutorService constructs a TutorService. The provider may be nil when no
// AI backend is configured.
func NewTutorService(tutorRepo repository.TutorRepository, provider ai.Provider, validate *validator.Validate, logger zerolog.Logger) TutorService {
	return &tutorService{
		messages:  tutorRepo,
		provider:  provider,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "tutor_service").Logger(),
	}
}

func (s *tutorService) Ask(ctx context.Context, studentID uint, payload dto.TutorAskRequest) (dto.TutorMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	if s.provider == nil {
		return dto.TutorMessageResponse{}, ErrTutorUnavailable
	}

	question := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if question == "" {
		return dto.TutorMessageResponse{}, ErrTutorUnavailable
	}

	history, err := s.messages.ListByStudent(ctx, studentID, tutorHistoryLimit)
	if err != nil {
		return dto.TutorMessageResponse{}, err
	}

	turns := make([]ai.TutorTurn, 0, len(history))
	for _, message := range history {
		turns = append(turns, ai.TutorTurn{Role: message.Role, Content: message.Content})
	}

	answer, err := s.provider.Tutor(ctx, turns, question)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("tutor provider call failed")
		return dto.TutorMessageResponse{}, ErrTutorUnavailable
	}

	studentTurn := models.TutorMessage{
		StudentID: studentID,
		Role:      models.TutorRoleStudent,
		Content:   question,
	}
	if err := s.messages.Create(ctx, &studentTurn); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	assistantTurn := models.TutorMessage{
		StudentID: studentID,
		Role:      models.TutorRoleAssistant,
		Content:   answer,
	}
	if err := s.messages.Create(ctx, &assistantTurn); err != nil {
		return dto.TutorMessageResponse{}, err
	}

	return dto.NewTutorMessageResponse(assistantTurn), nil
}

func (s *tutorService) History(ctx context.Context, studentID uint) ([]dto.TutorMessageResponse, error) {
	history, err := s.messages.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}

	return dto.NewTutorMessageResponseSlice(history), nil
}
