package dto

import (
	"encoding/json"
	"time"

	"github.com/skillroute/skillroute-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	LessonID    *uint           `json:"lesson_id" validate:"omitempty,gt=0"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Type        string          `json:"type" validate:"required,oneof=quiz practical scenario"`
	Questions   json.RawMessage `json:"questions" validate:"omitempty"`
}

// AssignmentUpdateRequest describes a partial assignment update.
type AssignmentUpdateRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	Description *string         `json:"description"`
	Questions   json.RawMessage `json:"questions" validate:"omitempty"`
}

// AssignmentResponse serialises an assignment definition. The correct answers
// inside Questions are only included for teacher-facing listings.
type AssignmentResponse struct {
	ID          uint            `json:"id"`
	LessonID    *uint           `json:"lesson_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Questions   json.RawMessage `json:"questions,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment, includeQuestions bool) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		LessonID:    model.LessonID,
		Title:       model.Title,
		Description: model.Description,
		Type:        model.Type,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if includeQuestions && len(model.Questions) > 0 {
		response.Questions = json.RawMessage(model.Questions)
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, includeQuestions bool) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, includeQuestions))
	}

	return responses
}
