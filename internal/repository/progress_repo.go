package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/models"
)

// ProgressRepository defines data operations for per-student lesson progress.
type ProgressRepository interface {
	GetByStudentAndLesson(ctx context.Context, studentID, lessonID uint) (models.StudentProgress, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentProgress, error)
	Create(ctx context.Context, progress *models.StudentProgress) error
	Update(ctx context.Context, progress *models.StudentProgress) error
	DeleteByStudent(ctx context.Context, studentID uint) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByStudentAndLesson(ctx context.Context, studentID, lessonID uint) (models.StudentProgress, error) {
	var progress models.StudentProgress
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("lesson_id = ?", lessonID).
		First(&progress).Error; err != nil {
		return models.StudentProgress{}, err
	}

	return progress, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentProgress, error) {
	var rows []models.StudentProgress
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("lesson_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *progressRepository) Create(ctx context.Context, progress *models.StudentProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *progressRepository) Update(ctx context.Context, progress *models.StudentProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *progressRepository) DeleteByStudent(ctx context.Context, studentID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.StudentProgress{}).Error
}
