package dto

import (
	"time"

	"github.com/skillroute/skillroute-api/internal/models"
)

// TutorAskRequest is the body for asking the AI tutor a question.
type TutorAskRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// TutorMessageResponse serialises one turn of the tutor conversation.
type TutorMessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTutorMessageResponse converts a TutorMessage model into a DTO.
func NewTutorMessageResponse(model models.TutorMessage) TutorMessageResponse {
	return TutorMessageResponse{
		ID:        model.ID,
		Role:      model.Role,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewTutorMessageResponseSlice converts tutor messages into DTOs.
func NewTutorMessageResponseSlice(messages []models.TutorMessage) []TutorMessageResponse {
	responses := make([]TutorMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewTutorMessageResponse(message))
	}

	return responses
}
