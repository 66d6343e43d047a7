package ai

import "context"

// GradingInput contains the artefacts needed to grade a free-form submission.
type GradingInput struct {
	AssignmentTitle string
	AssignmentType  string
	Description     string
	StudentAnswers  string
	AdditionalNotes string
}

// GradingResult is the structured feedback returned by the AI grader.
type GradingResult struct {
	Score    int                    `json:"score"`
	Feedback string                 `json:"feedback"`
	Raw      map[string]interface{} `json:"raw,omitempty"`
}

// TutorTurn is one prior turn of a tutoring conversation.
type TutorTurn struct {
	Role    string
	Content string
}

// Provider describes an AI model capable of grading submissions and tutoring
// students through the logistics curriculum.
type Provider interface {
	GradeSubmission(ctx context.Context, input GradingInput) (GradingResult, error)
	Tutor(ctx context.Context, history []TutorTurn, question string) (string, error)
}
