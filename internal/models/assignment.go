package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// Assignment types supported by the platform.
const (
	AssignmentTypeQuiz      = "quiz"
	AssignmentTypePractical = "practical"
	AssignmentTypeScenario  = "scenario"
)

// Assignment is a graded exercise attached to a lesson. Quiz assignments
// carry a question bank; practical and scenario assignments are free-form.
type Assignment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	LessonID    *uint          `gorm:"index" json:"lesson_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"size:32;not null" json:"type"`
	Questions   datatypes.JSON `json:"questions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Question is one entry of a quiz question bank.
type Question struct {
	ID            string      `json:"id"`
	Prompt        string      `json:"prompt"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer AnswerValue `json:"correctAnswer"`
	Points        int         `json:"points"`
}

// Key returns the identifier used to match submitted answers. Questions
// without an explicit id fall back to their position in the bank.
func (q Question) Key(index int) string {
	if q.ID != "" {
		return q.ID
	}
	return strconv.Itoa(index)
}

// IsQuiz reports whether the assignment is auto-scored.
func (a Assignment) IsQuiz() bool {
	return a.Type == AssignmentTypeQuiz
}

// DecodeQuestions parses the stored question bank.
func (a Assignment) DecodeQuestions() ([]Question, error) {
	if len(a.Questions) == 0 {
		return nil, nil
	}
	var questions []Question
	if err := json.Unmarshal(a.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
