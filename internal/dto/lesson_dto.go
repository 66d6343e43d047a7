package dto

import (
	"time"

	"github.com/skillroute/skillroute-api/internal/models"
)

// LessonStateResponse reports the unlock state for one day of the track.
type LessonStateResponse struct {
	Day           int        `json:"day"`
	IsUnlocked    bool       `json:"isUnlocked"`
	UnlockTime    *time.Time `json:"unlockTime"`
	TimeRemaining *int64     `json:"timeRemaining"`
}

// LessonStatesResponse wraps the full seven-day unlock listing.
type LessonStatesResponse struct {
	Lessons []LessonStateResponse `json:"lessons"`
}

// RecordAccessRequest is the body for lesson access tracking calls.
type RecordAccessRequest struct {
	TimeSpent *int  `json:"timeSpent" validate:"omitempty,gte=0"`
	Completed *bool `json:"completed"`
}

// ProgressResponse serialises a student progress row.
type ProgressResponse struct {
	ID               uint       `json:"id"`
	StudentID        uint       `json:"student_id"`
	LessonID         uint       `json:"lesson_id"`
	ModuleID         string     `json:"module_id"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at"`
	LastAccessed     *time.Time `json:"last_accessed"`
	LessonUnlockTime *time.Time `json:"lesson_unlock_time"`
	TimeSpent        int        `json:"time_spent"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewProgressResponse converts a StudentProgress model into a DTO.
func NewProgressResponse(model models.StudentProgress) ProgressResponse {
	return ProgressResponse{
		ID:               model.ID,
		StudentID:        model.StudentID,
		LessonID:         model.LessonID,
		ModuleID:         model.ModuleID,
		Completed:        model.Completed,
		CompletedAt:      model.CompletedAt,
		LastAccessed:     model.LastAccessed,
		LessonUnlockTime: model.LessonUnlockTime,
		TimeSpent:        model.TimeSpent,
		UpdatedAt:        model.UpdatedAt,
	}
}

// LessonCreateRequest describes the payload for creating a lesson.
type LessonCreateRequest struct {
	ModuleID    string `json:"module_id" validate:"omitempty,max=64"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"required,gte=1,lte=7"`
	IsActive    *bool  `json:"is_active"`
}

// LessonUpdateRequest describes a partial lesson update.
type LessonUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,gte=1,lte=7"`
	IsActive    *bool   `json:"is_active"`
}

// LessonResponse serialises a lesson definition.
type LessonResponse struct {
	ID          uint      `json:"id"`
	ModuleID    string    `json:"module_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	VideoURL    string    `json:"video_url"`
	MaterialURL string    `json:"material_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewLessonResponse converts a Lesson model into a DTO.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:          model.ID,
		ModuleID:    model.ModuleID,
		Title:       model.Title,
		Description: model.Description,
		Order:       model.Order,
		IsActive:    model.IsActive,
		VideoURL:    model.VideoURL,
		MaterialURL: model.MaterialURL,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewLessonResponseSlice converts lesson models into DTOs.
func NewLessonResponseSlice(lessons []models.Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, NewLessonResponse(lesson))
	}

	return responses
}
