package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
)

// ErrInvalidQuestionBank indicates the questions payload failed schema validation.
var ErrInvalidQuestionBank = errors.New("invalid question bank")

// questionBankSchema constrains the question array stored on quiz assignments.
// correctAnswer is deliberately untyped: it may be a string, number, boolean,
// or structured object.
const questionBankSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["prompt", "correctAnswer", "points"],
    "properties": {
      "id": {"type": "string"},
      "prompt": {"type": "string", "minLength": 1},
      "options": {"type": "array", "items": {"type": "string"}},
      "correctAnswer": {},
      "points": {"type": "integer", "minimum": 0}
    },
    "additionalProperties": false
  }
}`

// AssignmentService manages assignment definitions for teachers and admins.
type AssignmentService interface {
	List(ctx context.Context, filter repository.AssignmentFilter, includeQuestions bool) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint, includeQuestions bool) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	schema      *jsonschema.Schema
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	schema := jsonschema.MustCompileString("question_bank.json", questionBankSchema)

	return &assignmentService{
		assignments: assignmentRepo,
		validator:   validate,
		schema:      schema,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter, includeQuestions bool) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, includeQuestions), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, includeQuestions bool) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, includeQuestions), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	questions, err := s.validateQuestions(payload.Questions)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		LessonID:    payload.LessonID,
		Title:       payload.Title,
		Description: payload.Description,
		Type:        payload.Type,
		Questions:   questions,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("type", assignment.Type).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if len(payload.Questions) > 0 {
		questions, err := s.validateQuestions(payload.Questions)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Questions = questions
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, true), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

func (s *assignmentService) validateQuestions(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionBank, err)
	}

	if err := s.schema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionBank, err)
	}

	return datatypes.JSON(raw), nil
}
