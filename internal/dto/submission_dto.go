package dto

import (
	"time"

	"github.com/skillroute/skillroute-api/internal/models"
)

// AnswerPayload is one submitted answer. The answer itself may be a string,
// a number, a boolean, or a structured object.
type AnswerPayload struct {
	QuestionID string             `json:"questionId" validate:"required"`
	Answer     models.AnswerValue `json:"answer"`
}

// SubmitQuizRequest is the body for full quiz submission.
type SubmitQuizRequest struct {
	Answers []AnswerPayload `json:"answers" validate:"required,dive"`
}

// SaveAnswerRequest is the body for incremental single-answer saves.
type SaveAnswerRequest struct {
	QuestionID string             `json:"questionId" validate:"required"`
	Answer     models.AnswerValue `json:"answer"`
}

// GradeSubmissionRequest is the teacher payload for manual grading.
type GradeSubmissionRequest struct {
	SubmissionID uint    `json:"submissionId" validate:"required,gt=0"`
	Score        float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback     string  `json:"feedback" validate:"omitempty,max=4000"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                  uint                     `json:"id"`
	AssignmentID        uint                     `json:"assignment_id"`
	StudentID           uint                     `json:"student_id"`
	Answers             []models.SubmittedAnswer `json:"answers"`
	Status              string                   `json:"status"`
	Score               *float64                 `json:"score"`
	AIScore             *int                     `json:"ai_score"`
	CorrectCount        *int                     `json:"correct_count"`
	TotalQuestions      *int                     `json:"total_questions"`
	Passed              bool                     `json:"passed"`
	HasPassed           bool                     `json:"has_passed"`
	CertificateNumber   string                   `json:"certificate_number,omitempty"`
	CertificateIssuedAt *time.Time               `json:"certificate_issued_at,omitempty"`
	AttemptsUsed        int                      `json:"attempts_used"`
	Feedback            string                   `json:"feedback"`
	TeacherFeedback     string                   `json:"teacher_feedback"`
	GradedBy            *uint                    `json:"graded_by"`
	GradedAt            *time.Time               `json:"graded_at"`
	SubmittedAt         *time.Time               `json:"submitted_at"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	answers, err := model.DecodeAnswers()
	if err != nil {
		answers = nil
	}
	if answers == nil {
		answers = []models.SubmittedAnswer{}
	}

	return SubmissionResponse{
		ID:                  model.ID,
		AssignmentID:        model.AssignmentID,
		StudentID:           model.StudentID,
		Answers:             answers,
		Status:              model.Status,
		Score:               model.Score,
		AIScore:             model.AIScore,
		CorrectCount:        model.CorrectCount,
		TotalQuestions:      model.TotalQuestions,
		Passed:              model.Passed,
		HasPassed:           model.HasPassed,
		CertificateNumber:   model.CertificateNumber,
		CertificateIssuedAt: model.CertificateIssuedAt,
		AttemptsUsed:        model.AttemptsUsed,
		Feedback:            model.Feedback,
		TeacherFeedback:     model.TeacherFeedback,
		GradedBy:            model.GradedBy,
		GradedAt:            model.GradedAt,
		SubmittedAt:         model.SubmittedAt,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
