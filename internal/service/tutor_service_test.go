package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/pkg/ai"
)

type fakeTutorRepo struct {
	messages []models.TutorMessage
}

func (f *fakeTutorRepo) Create(ctx context.Context, message *models.TutorMessage) error {
	message.ID = uint(len(f.messages) + 1)
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeTutorRepo) ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.TutorMessage, error) {
	var result []models.TutorMessage
	for _, message := range f.messages {
		if message.StudentID == studentID {
			result = append(result, message)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type fakeTutorProvider struct {
	answer      string
	err         error
	lastHistory []ai.TutorTurn
	lastPrompt  string
}

func (f *fakeTutorProvider) GradeSubmission(ctx context.Context, input ai.GradingInput) (ai.GradingResult, error) {
	return ai.GradingResult{}, errors.New("not implemented")
}

func (f *fakeTutorProvider) Tutor(ctx context.Context, history []ai.TutorTurn, question string) (string, error) {
	f.lastHistory = history
	f.lastPrompt = question
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestTutorService(repo *fakeTutorRepo, provider ai.Provider) TutorService {
	return NewTutorService(repo, provider, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestTutorAskPersistsBothTurns(t *testing.T) {
	repo := &fakeTutorRepo{}
	provider := &fakeTutorProvider{answer: "An incoterm defines delivery responsibility."}
	svc := newTestTutorService(repo, provider)

	resp, err := svc.Ask(context.Background(), 7, dto.TutorAskRequest{Message: "What is an incoterm?"})
	require.NoError(t, err)
	require.Equal(t, models.TutorRoleAssistant, resp.Role)
	require.Equal(t, provider.answer, resp.Content)

	require.Len(t, repo.messages, 2)
	require.Equal(t, models.TutorRoleStudent, repo.messages[0].Role)
	require.Equal(t, "What is an incoterm?", repo.messages[0].Content)
	require.Equal(t, models.TutorRoleAssistant, repo.messages[1].Role)
}

func TestTutorAskReplaysHistory(t *testing.T) {
	repo := &fakeTutorRepo{messages: []models.TutorMessage{
		{ID: 1, StudentID: 7, Role: models.TutorRoleStudent, Content: "Hi"},
		{ID: 2, StudentID: 7, Role: models.TutorRoleAssistant, Content: "Hello"},
		{ID: 3, StudentID: 9, Role: models.TutorRoleStudent, Content: "other student"},
	}}
	provider := &fakeTutorProvider{answer: "answer"}
	svc := newTestTutorService(repo, provider)

	_, err := svc.Ask(context.Background(), 7, dto.TutorAskRequest{Message: "Follow up"})
	require.NoError(t, err)

	require.Len(t, provider.lastHistory, 2)
	require.Equal(t, "Hi", provider.lastHistory[0].Content)
}

func TestTutorAskSanitisesPrompt(t *testing.T) {
	repo := &fakeTutorRepo{}
	provider := &fakeTutorProvider{answer: "answer"}
	svc := newTestTutorService(repo, provider)

	_, err := svc.Ask(context.Background(), 7, dto.TutorAskRequest{Message: `<img src=x onerror=alert(1)>freight question`})
	require.NoError(t, err)
	require.Equal(t, "freight question", provider.lastPrompt)
}

func TestTutorAskWithoutProvider(t *testing.T) {
	svc := newTestTutorService(&fakeTutorRepo{}, nil)

	_, err := svc.Ask(context.Background(), 7, dto.TutorAskRequest{Message: "anyone there?"})
	require.True(t, errors.Is(err, ErrTutorUnavailable))
}

func TestTutorAskProviderFailure(t *testing.T) {
	repo := &fakeTutorRepo{}
	svc := newTestTutorService(repo, &fakeTutorProvider{err: errors.New("rate limited")})

	_, err := svc.Ask(context.Background(), 7, dto.TutorAskRequest{Message: "question"})
	require.True(t, errors.Is(err, ErrTutorUnavailable))
	// Nothing is persisted when the provider call fails.
	require.Empty(t, repo.messages)
}
