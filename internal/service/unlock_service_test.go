package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
)

type fakeLessonRepo struct {
	lessons []models.Lesson
}

func (f *fakeLessonRepo) List(ctx context.Context) ([]models.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeLessonRepo) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.ID == id {
			return lesson, nil
		}
	}
	return models.Lesson{}, gorm.ErrRecordNotFound
}

func (f *fakeLessonRepo) GetByOrder(ctx context.Context, order int) (models.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.Order == order && lesson.IsActive {
			return lesson, nil
		}
	}
	return models.Lesson{}, gorm.ErrRecordNotFound
}

func (f *fakeLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	lesson.ID = uint(len(f.lessons) + 1)
	f.lessons = append(f.lessons, *lesson)
	return nil
}

func (f *fakeLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	for i, existing := range f.lessons {
		if existing.ID == lesson.ID {
			f.lessons[i] = *lesson
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLessonRepo) Delete(ctx context.Context, id uint) error {
	for i, existing := range f.lessons {
		if existing.ID == id {
			f.lessons = append(f.lessons[:i], f.lessons[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type progressKey struct {
	studentID uint
	lessonID  uint
}

type fakeProgressRepo struct {
	rows     map[progressKey]models.StudentProgress
	nextID   uint
	createFn func(*models.StudentProgress) error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[progressKey]models.StudentProgress)}
}

func (f *fakeProgressRepo) GetByStudentAndLesson(ctx context.Context, studentID, lessonID uint) (models.StudentProgress, error) {
	row, ok := f.rows[progressKey{studentID, lessonID}]
	if !ok {
		return models.StudentProgress{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeProgressRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentProgress, error) {
	var rows []models.StudentProgress
	for key, row := range f.rows {
		if key.studentID == studentID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeProgressRepo) Create(ctx context.Context, progress *models.StudentProgress) error {
	if f.createFn != nil {
		if err := f.createFn(progress); err != nil {
			return err
		}
	}
	key := progressKey{progress.StudentID, progress.LessonID}
	if _, exists := f.rows[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	progress.ID = f.nextID
	f.rows[key] = *progress
	return nil
}

func (f *fakeProgressRepo) Update(ctx context.Context, progress *models.StudentProgress) error {
	f.rows[progressKey{progress.StudentID, progress.LessonID}] = *progress
	return nil
}

func (f *fakeProgressRepo) DeleteByStudent(ctx context.Context, studentID uint) error {
	for key := range f.rows {
		if key.studentID == studentID {
			delete(f.rows, key)
		}
	}
	return nil
}

func trackLessons() []models.Lesson {
	lessons := make([]models.Lesson, 0, models.TrackLength)
	for day := 1; day <= models.TrackLength; day++ {
		lessons = append(lessons, models.Lesson{
			ID:       uint(day),
			ModuleID: "logistics",
			Title:    "Lesson",
			Order:    day,
			IsActive: true,
		})
	}
	return lessons
}

func newTestUnlockService(lessons *fakeLessonRepo, progress *fakeProgressRepo, now time.Time) *unlockService {
	svc := NewUnlockService(lessons, progress, nil, nil, zerolog.Nop()).(*unlockService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestListLessonStatesFirstDayAlwaysUnlocked(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestUnlockService(lessons, progress, now)

	states, err := svc.ListLessonStates(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, states, models.TrackLength)

	require.True(t, states[0].IsUnlocked)
	for _, state := range states[1:] {
		require.False(t, state.IsUnlocked)
	}

	// The listing itself creates the day-1 row.
	row, err := progress.GetByStudentAndLesson(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), row.LessonID)
}

func TestListLessonStatesMissingLessonReportsLocked(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()[:4]}
	progress := newFakeProgressRepo()
	svc := newTestUnlockService(lessons, progress, time.Now())

	states, err := svc.ListLessonStates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, states, models.TrackLength)
	require.False(t, states[5].IsUnlocked)
	require.Nil(t, states[5].UnlockTime)
}

func TestRecordAccessByDaySchedulesTimedUnlock(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC)
	svc := newTestUnlockService(lessons, progress, now)

	spent := 120
	resp, err := svc.RecordAccessByDay(context.Background(), 7, 2, dto.RecordAccessRequest{TimeSpent: &spent})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 120, resp.TimeSpent)
	require.NotNil(t, resp.LastAccessed)

	next, err := progress.GetByStudentAndLesson(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Nil(t, next.LastAccessed)
	require.NotNil(t, next.LessonUnlockTime)
	// Next calendar day at 08:00 local, even when access happens late evening.
	require.Equal(t, time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC), *next.LessonUnlockTime)
}

func TestRecordAccessByDayDoesNotRewindStickyUnlock(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	accessed := now.Add(-time.Hour)
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID:    7,
		LessonID:     3,
		LastAccessed: &accessed,
	}))

	svc := newTestUnlockService(lessons, progress, now)
	_, err := svc.RecordAccessByDay(context.Background(), 7, 2, dto.RecordAccessRequest{})
	require.NoError(t, err)

	// Day 3 was already accessed; the timed unlock must not be armed on it.
	row, err := progress.GetByStudentAndLesson(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Nil(t, row.LessonUnlockTime)
	require.NotNil(t, row.LastAccessed)
}

func TestRecordAccessByDayMissingLessonIsLenient(t *testing.T) {
	lessons := &fakeLessonRepo{}
	progress := newFakeProgressRepo()
	svc := newTestUnlockService(lessons, progress, time.Now())

	resp, err := svc.RecordAccessByDay(context.Background(), 7, 5, dto.RecordAccessRequest{})
	require.NoError(t, err)
	require.Nil(t, resp)
}

func TestRecordAccessByLessonUnlocksNextImmediately(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	svc := newTestUnlockService(lessons, progress, now)

	completed := true
	resp, err := svc.RecordAccessByLesson(context.Background(), 7, 4, dto.RecordAccessRequest{Completed: &completed})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.True(t, resp.Completed)

	next, err := progress.GetByStudentAndLesson(context.Background(), 7, 5)
	require.NoError(t, err)
	require.NotNil(t, next.LastAccessed)
	require.Equal(t, now, *next.LastAccessed)
	require.True(t, next.IsUnlocked(now))
}

func TestRecordAccessLastDayHasNoSuccessor(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	svc := newTestUnlockService(lessons, progress, time.Now())

	_, err := svc.RecordAccessByDay(context.Background(), 7, models.TrackLength, dto.RecordAccessRequest{})
	require.NoError(t, err)
	require.Len(t, progress.rows, 1)
}

func TestUnlockSecretMissingLessonIsHardError(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()[:2]}
	progress := newFakeProgressRepo()
	svc := newTestUnlockService(lessons, progress, time.Now())

	_, err := svc.UnlockSecret(context.Background(), 7, 6)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLessonNotFound))
}

func TestUnlockSecretClearsPendingTimer(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	future := now.Add(26 * time.Hour)
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID:        7,
		LessonID:         4,
		LessonUnlockTime: &future,
	}))

	svc := newTestUnlockService(lessons, progress, now)
	resp, err := svc.UnlockSecret(context.Background(), 7, 4)
	require.NoError(t, err)
	require.NotNil(t, resp.LastAccessed)
	require.Nil(t, resp.LessonUnlockTime)
}

func TestUpsertProgressResolvesDuplicateKeyRace(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// Simulate a concurrent insert winning between the read and the create.
	raced := false
	progress.createFn = func(p *models.StudentProgress) error {
		if !raced && p.LessonID == 2 {
			raced = true
			winner := models.StudentProgress{ID: 99, StudentID: 7, LessonID: 2}
			progress.rows[progressKey{7, 2}] = winner
		}
		return nil
	}

	svc := newTestUnlockService(lessons, progress, now)
	resp, err := svc.RecordAccessByDay(context.Background(), 7, 2, dto.RecordAccessRequest{})
	require.NoError(t, err)
	require.Equal(t, uint(99), resp.ID)
	require.NotNil(t, resp.LastAccessed)
}

func TestRecordAccessInvalidatesStatsCache(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()
	svc := newTestUnlockService(lessons, progress, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	stats := &fakeStatsRecorder{}
	svc.stats = stats

	_, err := svc.RecordAccessByDay(context.Background(), 7, 2, dto.RecordAccessRequest{})
	require.NoError(t, err)
	require.Equal(t, []uint{7}, stats.invalidated)

	_, err = svc.UnlockSecret(context.Background(), 7, 4)
	require.NoError(t, err)
	require.Equal(t, []uint{7, 7}, stats.invalidated)
}

func TestTimedUnlockStateTransitions(t *testing.T) {
	lessons := &fakeLessonRepo{lessons: trackLessons()}
	progress := newFakeProgressRepo()

	unlockAt := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{
		StudentID:        7,
		LessonID:         2,
		LessonUnlockTime: &unlockAt,
	}))

	before := unlockAt.Add(-2 * time.Hour)
	svc := newTestUnlockService(lessons, progress, before)
	states, err := svc.ListLessonStates(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, states[1].IsUnlocked)
	require.NotNil(t, states[1].TimeRemaining)
	require.Equal(t, (2 * time.Hour).Milliseconds(), *states[1].TimeRemaining)

	svc.now = func() time.Time { return unlockAt }
	states, err = svc.ListLessonStates(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, states[1].IsUnlocked)
	require.Nil(t, states[1].TimeRemaining)
}
