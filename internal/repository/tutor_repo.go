package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/models"
)

// TutorRepository stores AI tutor conversation history.
type TutorRepository interface {
	Create(ctx context.Context, message *models.TutorMessage) error
	ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.TutorMessage, error)
}

type tutorRepository struct {
	db *gorm.DB
}

// NewTutorRepository instantiates the repository.
func NewTutorRepository(db *gorm.DB) TutorRepository {
	return &tutorRepository{db: db}
}

func (r *tutorRepository) Create(ctx context.Context, message *models.TutorMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *tutorRepository) ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.TutorMessage, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.TutorMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
