package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission status state machine: pending -> submitted -> graded. Quiz
// auto-scoring jumps straight to graded; practical and scenario submissions
// wait for a teacher.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission is a student's answer set for one assignment. At most one row
// exists per (student, assignment) pair; resubmission overwrites it.
type Submission struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	AssignmentID        uint           `gorm:"not null;uniqueIndex:idx_student_assignment" json:"assignment_id"`
	StudentID           uint           `gorm:"not null;uniqueIndex:idx_student_assignment" json:"student_id"`
	Answers             datatypes.JSON `json:"answers"`
	Status              string         `gorm:"size:32;not null;default:pending" json:"status"`
	Score               *float64       `json:"score"`
	AIScore             *int           `gorm:"column:ai_score" json:"ai_score"`
	CorrectCount        *int           `json:"correct_count"`
	TotalQuestions      *int           `json:"total_questions"`
	Passed              bool           `gorm:"default:false" json:"passed"`
	HasPassed           bool           `gorm:"default:false" json:"has_passed"`
	CertificateNumber   string         `gorm:"size:64" json:"certificate_number"`
	CertificateIssuedAt *time.Time     `json:"certificate_issued_at"`
	AttemptsUsed        int            `gorm:"default:0" json:"attempts_used"`
	Feedback            string         `gorm:"type:text" json:"feedback"`
	TeacherFeedback     string         `gorm:"type:text" json:"teacher_feedback"`
	GradedBy            *uint          `json:"graded_by"`
	GradedAt            *time.Time     `json:"graded_at"`
	SubmittedAt         *time.Time     `json:"submitted_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	Assignment          Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student             Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// SubmittedAnswer is one element of the stored answers array.
type SubmittedAnswer struct {
	QuestionID string      `json:"questionId"`
	Answer     AnswerValue `json:"answer"`
}

// IsGraded reports whether the submission reached the terminal graded state.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// DecodeAnswers parses the stored answer array.
func (s Submission) DecodeAnswers() ([]SubmittedAnswer, error) {
	if len(s.Answers) == 0 {
		return nil, nil
	}
	var answers []SubmittedAnswer
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// EncodeAnswers serialises an answer array for storage.
func EncodeAnswers(answers []SubmittedAnswer) (datatypes.JSON, error) {
	if answers == nil {
		answers = []SubmittedAnswer{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
