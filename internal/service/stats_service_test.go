package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillroute/skillroute-api/internal/models"
)

func newTestStatsService(t *testing.T, progress *fakeProgressRepo, submissions *fakeSubmissionRepo) (*statsService, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewStatsService(progress, submissions, client, time.Minute, zerolog.Nop()).(*statsService)
	return svc, server
}

func TestStudentStatsAggregatesProgressAndSubmissions(t *testing.T) {
	progress := newFakeProgressRepo()
	submissions := newFakeSubmissionRepo()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	accessed := now.Add(-time.Hour)

	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID: 7, LessonID: 1, LastAccessed: &accessed, Completed: true, TimeSpent: 300,
	}))
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID: 7, LessonID: 2, TimeSpent: 100,
	}))

	issued := now.Add(-24 * time.Hour)
	submissions.rows[submissionKey{1, 7}] = models.Submission{
		ID: 1, AssignmentID: 1, StudentID: 7,
		Status: models.SubmissionStatusGraded, GradedAt: &now,
		HasPassed: true, CertificateNumber: "LC-2026-ABCDEF", CertificateIssuedAt: &issued,
		AttemptsUsed: 2,
	}

	svc, _ := newTestStatsService(t, progress, submissions)
	svc.now = func() time.Time { return now }

	stats, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, uint(7), stats.StudentID)
	require.Equal(t, 1, stats.LessonsUnlocked)
	require.Equal(t, 1, stats.LessonsCompleted)
	require.Equal(t, 400, stats.TotalTimeSpent)
	require.Equal(t, 1, stats.Submissions)
	require.Equal(t, 1, stats.GradedCount)
	require.Equal(t, 2, stats.AttemptsUsed)
	require.True(t, stats.HasCertificate)
	require.NotNil(t, stats.CertificateSince)
}

func TestStudentStatsServedFromCache(t *testing.T) {
	progress := newFakeProgressRepo()
	submissions := newFakeSubmissionRepo()
	svc, _ := newTestStatsService(t, progress, submissions)

	first, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 0, first.TotalTimeSpent)

	// Mutate the underlying data; the cached snapshot must still be served.
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID: 7, LessonID: 1, TimeSpent: 500,
	}))

	cached, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 0, cached.TotalTimeSpent)

	svc.Invalidate(context.Background(), 7)

	fresh, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 500, fresh.TotalTimeSpent)
}

func TestStudentStatsCacheExpires(t *testing.T) {
	progress := newFakeProgressRepo()
	submissions := newFakeSubmissionRepo()
	svc, server := newTestStatsService(t, progress, submissions)

	_, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, server.Exists("stats:student:7"))

	server.FastForward(2 * time.Minute)
	require.False(t, server.Exists("stats:student:7"))
}

func TestStudentStatsWithoutCacheClient(t *testing.T) {
	progress := newFakeProgressRepo()
	submissions := newFakeSubmissionRepo()
	svc := NewStatsService(progress, submissions, nil, time.Minute, zerolog.Nop())

	stats, err := svc.StudentStats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, uint(7), stats.StudentID)
}
