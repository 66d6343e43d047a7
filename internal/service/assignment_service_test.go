package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
)

func newTestAssignmentService(repo *fakeAssignmentRepo) AssignmentService {
	return NewAssignmentService(repo, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestAssignmentCreateValidatesQuestionBank(t *testing.T) {
	repo := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	svc := newTestAssignmentService(repo)

	resp, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		Title: "Final Quiz",
		Type:  models.AssignmentTypeQuiz,
		Questions: json.RawMessage(`[
			{"id":"q1","prompt":"Pick one","options":["A","B"],"correctAnswer":"A","points":1},
			{"prompt":"True or false","correctAnswer":true,"points":2}
		]`),
	})
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
	require.NotEmpty(t, resp.Questions)
}

func TestAssignmentCreateRejectsMalformedQuestions(t *testing.T) {
	repo := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	svc := newTestAssignmentService(repo)

	cases := []struct {
		name      string
		questions string
	}{
		{name: "not an array", questions: `{"prompt":"x"}`},
		{name: "missing prompt", questions: `[{"correctAnswer":"A","points":1}]`},
		{name: "negative points", questions: `[{"prompt":"x","correctAnswer":"A","points":-1}]`},
		{name: "unknown field", questions: `[{"prompt":"x","correctAnswer":"A","points":1,"hint":"no"}]`},
		{name: "invalid json", questions: `[{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
				Title:     "Broken",
				Type:      models.AssignmentTypeQuiz,
				Questions: json.RawMessage(tc.questions),
			})
			require.True(t, errors.Is(err, ErrInvalidQuestionBank))
		})
	}
}

func TestAssignmentCreateAllowsStructuredAnswers(t *testing.T) {
	repo := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	svc := newTestAssignmentService(repo)

	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		Title: "Matching",
		Type:  models.AssignmentTypeQuiz,
		Questions: json.RawMessage(`[
			{"prompt":"match pairs","correctAnswer":{"truck":"road","barge":"water"},"points":3}
		]`),
	})
	require.NoError(t, err)
}

func TestAssignmentUpdateMissing(t *testing.T) {
	svc := newTestAssignmentService(&fakeAssignmentRepo{assignments: map[uint]models.Assignment{}})

	title := "New title"
	_, err := svc.Update(context.Background(), 99, dto.AssignmentUpdateRequest{Title: &title})
	require.True(t, errors.Is(err, ErrAssignmentNotFound))
}

func TestAssignmentGetNotFound(t *testing.T) {
	svc := newTestAssignmentService(&fakeAssignmentRepo{assignments: map[uint]models.Assignment{}})

	_, err := svc.Get(context.Background(), 1, false)
	require.True(t, errors.Is(err, ErrAssignmentNotFound))
}
