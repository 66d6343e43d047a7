package dto

import (
	"time"

	"github.com/skillroute/skillroute-api/internal/models"
)

// StudentCreateRequest describes the payload for enrolling a student.
type StudentCreateRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	GroupID *uint  `json:"group_id" validate:"omitempty,gt=0"`
}

// StudentUpdateRequest describes a partial student update.
type StudentUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	GroupID *uint   `json:"group_id" validate:"omitempty,gt=0"`
}

// StudentResponse serialises a student profile.
type StudentResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Group     *GroupResponse `json:"group,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GroupCreateRequest describes the payload for creating a cohort group.
type GroupCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// GroupResponse serialises a cohort group.
type GroupResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	response := StudentResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	if model.Group != nil {
		group := NewGroupResponse(*model.Group)
		response.Group = &group
	}

	return response
}

// NewStudentResponseSlice converts student models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}

// NewGroupResponse converts a Group model into a DTO.
func NewGroupResponse(model models.Group) GroupResponse {
	return GroupResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}

// NewGroupResponseSlice converts group models into DTOs.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}

	return responses
}
