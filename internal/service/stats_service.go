package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/repository"
)

const statsCacheKeyPrefix = "stats:student:"

// StatsService aggregates per-student progress numbers, cached in Redis.
type StatsService interface {
	StudentStats(ctx context.Context, studentID uint) (dto.StudentStatsResponse, error)
	Invalidate(ctx context.Context, studentID uint)
}

type statsService struct {
	progress    repository.ProgressRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStatsService constructs a StatsService. The cache client may be nil, in
// which case every call recomputes from the database.
func NewStatsService(progressRepo repository.ProgressRepository, subRepo repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		progress:    progressRepo,
		submissions: subRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("component", "stats_service").Logger(),
		now:         time.Now,
	}
}

func statsCacheKey(studentID uint) string {
	return fmt.Sprintf("%s%d", statsCacheKeyPrefix, studentID)
}

func (s *statsService) StudentStats(ctx context.Context, studentID uint) (dto.StudentStatsResponse, error) {
	key := statsCacheKey(studentID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var stats dto.StudentStatsResponse
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("stats cache read failed")
		}
	}

	stats, err := s.compute(ctx, studentID)
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("stats cache write failed")
			}
		}
	}

	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, statsCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("stats cache invalidation failed")
	}
}

func (s *statsService) compute(ctx context.Context, studentID uint) (dto.StudentStatsResponse, error) {
	now := s.now()

	progressRows, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	stats := dto.StudentStatsResponse{
		StudentID:   studentID,
		GeneratedAt: now,
	}

	for _, row := range progressRows {
		if row.IsUnlocked(now) {
			stats.LessonsUnlocked++
		}
		if row.Completed {
			stats.LessonsCompleted++
		}
		stats.TotalTimeSpent += row.TimeSpent
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	for _, submission := range submissions {
		stats.Submissions++
		if submission.GradedAt != nil {
			stats.GradedCount++
		}
		stats.AttemptsUsed += submission.AttemptsUsed
		if submission.HasPassed && submission.CertificateNumber != "" {
			stats.HasCertificate = true
			if stats.CertificateSince == nil || (submission.CertificateIssuedAt != nil && submission.CertificateIssuedAt.Before(*stats.CertificateSince)) {
				stats.CertificateSince = submission.CertificateIssuedAt
			}
		}
	}

	return stats, nil
}
