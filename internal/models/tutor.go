package models

import "time"

// Tutor message roles.
const (
	TutorRoleStudent   = "student"
	TutorRoleAssistant = "assistant"
)

// TutorMessage is one turn of a student's conversation with the AI tutor.
type TutorMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
