package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/models"
)

func setupRepoTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestLessonRepositoryGetByOrderSkipsInactive(t *testing.T) {
	db := setupRepoTestDB(t, &models.Lesson{})
	repo := NewLessonRepository(db)

	require.NoError(t, db.Create(&models.Lesson{Title: "Incoterms", Order: 2, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Lesson{Title: "Retired draft", Order: 3, IsActive: false}).Error)

	lesson, err := repo.GetByOrder(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "Incoterms", lesson.Title)

	_, err = repo.GetByOrder(context.Background(), 3)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestLessonRepositoryListOrdersByDay(t *testing.T) {
	db := setupRepoTestDB(t, &models.Lesson{})
	repo := NewLessonRepository(db)

	for _, order := range []int{3, 1, 2} {
		require.NoError(t, db.Create(&models.Lesson{Title: fmt.Sprintf("Day %d", order), Order: order, IsActive: true}).Error)
	}

	lessons, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	for i, lesson := range lessons {
		require.Equal(t, i+1, lesson.Order)
	}
}

func TestLessonRepositoryDeleteMissing(t *testing.T) {
	db := setupRepoTestDB(t, &models.Lesson{})
	repo := NewLessonRepository(db)

	err := repo.Delete(context.Background(), 99)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProgressRepositoryEnforcesOneRowPerStudentLesson(t *testing.T) {
	db := setupRepoTestDB(t, &models.Lesson{}, &models.StudentProgress{})
	repo := NewProgressRepository(db)

	accessed := time.Now()
	first := models.StudentProgress{StudentID: 7, LessonID: 1, LastAccessed: &accessed}
	require.NoError(t, repo.Create(context.Background(), &first))

	duplicate := models.StudentProgress{StudentID: 7, LessonID: 1}
	err := repo.Create(context.Background(), &duplicate)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	stored, err := repo.GetByStudentAndLesson(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID)
	require.NotNil(t, stored.LastAccessed)
}

func TestProgressRepositoryDeleteByStudent(t *testing.T) {
	db := setupRepoTestDB(t, &models.Lesson{}, &models.StudentProgress{})
	repo := NewProgressRepository(db)

	require.NoError(t, repo.Create(context.Background(), &models.StudentProgress{StudentID: 7, LessonID: 1}))
	require.NoError(t, repo.Create(context.Background(), &models.StudentProgress{StudentID: 7, LessonID: 2}))
	require.NoError(t, repo.Create(context.Background(), &models.StudentProgress{StudentID: 8, LessonID: 1}))

	require.NoError(t, repo.DeleteByStudent(context.Background(), 7))

	mine, err := repo.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, mine)

	theirs, err := repo.ListByStudent(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}
