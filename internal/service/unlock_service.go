package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/events"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/observability"
	"github.com/skillroute/skillroute-api/internal/repository"
)

// ErrLessonNotFound indicates no lesson exists for the requested day or id.
var ErrLessonNotFound = errors.New("lesson not found")

// UnlockService manages the per-student lesson unlock state machine for the
// seven-day track. Lesson 1 is always open; later days open either when their
// timed threshold passes or when the previous day is accessed, depending on
// the call path.
type UnlockService interface {
	ListLessonStates(ctx context.Context, studentID uint) ([]dto.LessonStateResponse, error)
	RecordAccessByDay(ctx context.Context, studentID uint, day int, payload dto.RecordAccessRequest) (*dto.ProgressResponse, error)
	RecordAccessByLesson(ctx context.Context, studentID, lessonID uint, payload dto.RecordAccessRequest) (*dto.ProgressResponse, error)
	UnlockSecret(ctx context.Context, studentID uint, day int) (dto.ProgressResponse, error)
}

type unlockService struct {
	lessons  repository.LessonRepository
	progress repository.ProgressRepository
	events   *events.Publisher
	stats    StatsService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewUnlockService constructs an UnlockService instance. stats may be nil, in
// which case cached aggregates simply age out on their TTL.
func NewUnlockService(lessonRepo repository.LessonRepository, progressRepo repository.ProgressRepository, publisher *events.Publisher, stats StatsService, logger zerolog.Logger) UnlockService {
	return &unlockService{
		lessons:  lessonRepo,
		progress: progressRepo,
		events:   publisher,
		stats:    stats,
		logger:   logger.With().Str("component", "unlock_service").Logger(),
		now:      time.Now,
	}
}

// invalidateStats drops the cached aggregates after a progress mutation.
func (s *unlockService) invalidateStats(ctx context.Context, studentID uint) {
	if s.stats == nil {
		return
	}
	s.stats.Invalidate(ctx, studentID)
}

func (s *unlockService) ListLessonStates(ctx context.Context, studentID uint) ([]dto.LessonStateResponse, error) {
	now := s.now()
	states := make([]dto.LessonStateResponse, 0, models.TrackLength)

	for day := 1; day <= models.TrackLength; day++ {
		lesson, err := s.lessons.GetByOrder(ctx, day)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				states = append(states, dto.LessonStateResponse{Day: day})
				continue
			}
			return nil, err
		}

		if day == 1 {
			if _, err := s.ensureFirstLessonProgress(ctx, studentID, lesson); err != nil {
				return nil, err
			}
			states = append(states, dto.LessonStateResponse{Day: day, IsUnlocked: true})
			continue
		}

		progress, err := s.progress.GetByStudentAndLesson(ctx, studentID, lesson.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				states = append(states, dto.LessonStateResponse{Day: day})
				continue
			}
			return nil, err
		}

		states = append(states, lessonState(day, progress, now))
	}

	return states, nil
}

func lessonState(day int, progress models.StudentProgress, now time.Time) dto.LessonStateResponse {
	state := dto.LessonStateResponse{Day: day}

	if progress.LastAccessed != nil {
		state.IsUnlocked = true
		return state
	}

	if progress.LessonUnlockTime != nil {
		unlockTime := *progress.LessonUnlockTime
		state.UnlockTime = &unlockTime
		if !now.Before(unlockTime) {
			state.IsUnlocked = true
		} else {
			remaining := unlockTime.Sub(now).Milliseconds()
			state.TimeRemaining = &remaining
		}
	}

	return state
}

// ensureFirstLessonProgress lazily creates the day-1 progress row. Duplicate
// key races with a concurrent first call resolve by re-reading the winner.
func (s *unlockService) ensureFirstLessonProgress(ctx context.Context, studentID uint, lesson models.Lesson) (models.StudentProgress, error) {
	progress, err := s.progress.GetByStudentAndLesson(ctx, studentID, lesson.ID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StudentProgress{}, err
	}

	created := models.StudentProgress{
		StudentID: studentID,
		LessonID:  lesson.ID,
		ModuleID:  lesson.ModuleID,
	}
	if err := s.progress.Create(ctx, &created); err != nil {
		if isDuplicateKey(err) {
			return s.progress.GetByStudentAndLesson(ctx, studentID, lesson.ID)
		}
		return models.StudentProgress{}, err
	}

	return created, nil
}

func (s *unlockService) RecordAccessByDay(ctx context.Context, studentID uint, day int, payload dto.RecordAccessRequest) (*dto.ProgressResponse, error) {
	lesson, err := s.lessons.GetByOrder(ctx, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Uint("student_id", studentID).Int("day", day).Msg("lesson missing for day progress, skipping")
			return nil, nil
		}
		return nil, err
	}

	progress, err := s.touchProgress(ctx, studentID, lesson, payload)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleNextUnlock(ctx, studentID, lesson); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, studentID)

	response := dto.NewProgressResponse(progress)
	return &response, nil
}

func (s *unlockService) RecordAccessByLesson(ctx context.Context, studentID, lessonID uint, payload dto.RecordAccessRequest) (*dto.ProgressResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Uint("student_id", studentID).Uint("lesson_id", lessonID).Msg("lesson missing for progress update, skipping")
			return nil, nil
		}
		return nil, err
	}

	progress, err := s.touchProgress(ctx, studentID, lesson, payload)
	if err != nil {
		return nil, err
	}

	if err := s.unlockNextImmediately(ctx, studentID, lesson); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, studentID)

	response := dto.NewProgressResponse(progress)
	return &response, nil
}

func (s *unlockService) UnlockSecret(ctx context.Context, studentID uint, day int) (dto.ProgressResponse, error) {
	lesson, err := s.lessons.GetByOrder(ctx, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrLessonNotFound
		}
		return dto.ProgressResponse{}, err
	}

	now := s.now()
	progress, err := s.upsertProgress(ctx, studentID, lesson, func(p *models.StudentProgress) {
		p.LastAccessed = &now
		p.LessonUnlockTime = nil
	})
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	observability.LessonUnlocks().WithLabelValues("secret").Inc()
	s.events.Publish(events.SubjectLessonUnlocked, map[string]interface{}{
		"student_id": studentID,
		"lesson_id":  lesson.ID,
		"day":        day,
		"mode":       "secret",
	})
	s.logger.Info().Uint("student_id", studentID).Int("day", day).Msg("lesson unlocked via override")

	s.invalidateStats(ctx, studentID)

	return dto.NewProgressResponse(progress), nil
}

// touchProgress marks the lesson as accessed now and applies the optional
// time-spent delta and completion flag.
func (s *unlockService) touchProgress(ctx context.Context, studentID uint, lesson models.Lesson, payload dto.RecordAccessRequest) (models.StudentProgress, error) {
	now := s.now()
	return s.upsertProgress(ctx, studentID, lesson, func(p *models.StudentProgress) {
		p.LastAccessed = &now
		if payload.TimeSpent != nil {
			p.TimeSpent += *payload.TimeSpent
		}
		if payload.Completed != nil && *payload.Completed && !p.Completed {
			p.Completed = true
			p.CompletedAt = &now
		}
	})
}

// scheduleNextUnlock is the timed variant: accessing day D arms day D+1 to
// open the next calendar day at 08:00 local, unless D+1 was already accessed.
func (s *unlockService) scheduleNextUnlock(ctx context.Context, studentID uint, lesson models.Lesson) error {
	if lesson.Order < 1 || lesson.Order >= models.TrackLength {
		return nil
	}

	next, err := s.lessons.GetByOrder(ctx, lesson.Order+1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	unlockAt := models.NextUnlockTime(s.now())
	_, err = s.upsertProgress(ctx, studentID, next, func(p *models.StudentProgress) {
		if p.LastAccessed != nil {
			return
		}
		p.LessonUnlockTime = &unlockAt
	})
	if err != nil {
		return err
	}

	observability.LessonUnlocks().WithLabelValues("timed").Inc()
	return nil
}

// unlockNextImmediately is the immediate variant: accessing day D opens day
// D+1 on the spot, skipping the timer, when D+1 has not been accessed yet.
func (s *unlockService) unlockNextImmediately(ctx context.Context, studentID uint, lesson models.Lesson) error {
	if lesson.Order < 1 || lesson.Order >= models.TrackLength {
		return nil
	}

	next, err := s.lessons.GetByOrder(ctx, lesson.Order+1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	now := s.now()
	_, err = s.upsertProgress(ctx, studentID, next, func(p *models.StudentProgress) {
		if p.LastAccessed != nil {
			return
		}
		p.LastAccessed = &now
	})
	if err != nil {
		return err
	}

	observability.LessonUnlocks().WithLabelValues("immediate").Inc()
	s.events.Publish(events.SubjectLessonUnlocked, map[string]interface{}{
		"student_id": studentID,
		"lesson_id":  next.ID,
		"day":        next.Order,
		"mode":       "immediate",
	})
	return nil
}

// upsertProgress fetches or creates the (student, lesson) row, applies
// mutate, and persists it. A duplicate-key race on create is resolved by one
// refetch of the winning row.
func (s *unlockService) upsertProgress(ctx context.Context, studentID uint, lesson models.Lesson, mutate func(*models.StudentProgress)) (models.StudentProgress, error) {
	progress, err := s.progress.GetByStudentAndLesson(ctx, studentID, lesson.ID)
	if err == nil {
		mutate(&progress)
		if err := s.progress.Update(ctx, &progress); err != nil {
			return models.StudentProgress{}, err
		}
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StudentProgress{}, err
	}

	progress = models.StudentProgress{
		StudentID: studentID,
		LessonID:  lesson.ID,
		ModuleID:  lesson.ModuleID,
	}
	mutate(&progress)

	if err := s.progress.Create(ctx, &progress); err != nil {
		if !isDuplicateKey(err) {
			return models.StudentProgress{}, err
		}
		existing, fetchErr := s.progress.GetByStudentAndLesson(ctx, studentID, lesson.ID)
		if fetchErr != nil {
			return models.StudentProgress{}, fetchErr
		}
		mutate(&existing)
		if err := s.progress.Update(ctx, &existing); err != nil {
			return models.StudentProgress{}, err
		}
		return existing, nil
	}

	return progress, nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") || strings.Contains(message, "unique constraint")
}
