package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillroute/skillroute-api/internal/models"
)

func TestSeedDisabled(t *testing.T) {
	svc := NewSeedService(&fakeLessonRepo{}, &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}, false, "", zerolog.Nop())

	_, err := svc.Seed(context.Background(), "")
	require.True(t, errors.Is(err, ErrSeedDisabled))
}

func TestSeedTokenMismatch(t *testing.T) {
	svc := NewSeedService(&fakeLessonRepo{}, &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}, true, "sekrit", zerolog.Nop())

	_, err := svc.Seed(context.Background(), "wrong")
	require.True(t, errors.Is(err, ErrSeedTokenMismatch))
}

func TestSeedCreatesTrackAndQuiz(t *testing.T) {
	lessons := &fakeLessonRepo{}
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	svc := NewSeedService(lessons, assignments, true, "sekrit", zerolog.Nop())

	result, err := svc.Seed(context.Background(), "sekrit")
	require.NoError(t, err)
	require.Equal(t, models.TrackLength, result.LessonsCreated)
	require.Equal(t, 1, result.AssignmentsCreated)
	require.Len(t, lessons.lessons, models.TrackLength)

	var quiz models.Assignment
	for _, assignment := range assignments.assignments {
		quiz = assignment
	}
	require.Equal(t, models.AssignmentTypeQuiz, quiz.Type)

	questions, err := quiz.DecodeQuestions()
	require.NoError(t, err)
	require.Len(t, questions, 40)
	for _, question := range questions {
		require.Equal(t, 1, question.Points)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	lessons := &fakeLessonRepo{}
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	svc := NewSeedService(lessons, assignments, true, "", zerolog.Nop())

	_, err := svc.Seed(context.Background(), "")
	require.NoError(t, err)

	second, err := svc.Seed(context.Background(), "")
	require.NoError(t, err)
	require.Zero(t, second.LessonsCreated)
	require.Zero(t, second.AssignmentsCreated)
	require.Len(t, lessons.lessons, models.TrackLength)
	require.Len(t, assignments.assignments, 1)
}
