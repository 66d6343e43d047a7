package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the student could not be found.
	ErrStudentNotFound = errors.New("student not found")
	// ErrGroupNotFound indicates the group could not be found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// StudentService manages student enrolment and cohort groups.
type StudentService interface {
	List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
	ListGroups(ctx context.Context) ([]dto.GroupResponse, error)
	CreateGroup(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	groups      repository.GroupRepository
	progress    repository.ProgressRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(studentRepo repository.StudentRepository, groupRepo repository.GroupRepository, progressRepo repository.ProgressRepository, subRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:    studentRepo,
		groups:      groupRepo,
		progress:    progressRepo,
		submissions: subRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if payload.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *payload.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, ErrGroupNotFound
			}
			return dto.StudentResponse{}, err
		}
	}

	student := models.Student{
		Name:    payload.Name,
		Email:   payload.Email,
		GroupID: payload.GroupID,
	}

	if err := s.students.Create(ctx, &student); err != nil {
		if isDuplicateKey(err) {
			return dto.StudentResponse{}, ErrEmailTaken
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student enrolled")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	if payload.Name != nil {
		student.Name = *payload.Name
	}
	if payload.Email != nil {
		student.Email = *payload.Email
	}
	if payload.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *payload.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, ErrGroupNotFound
			}
			return dto.StudentResponse{}, err
		}
		student.GroupID = payload.GroupID
	}

	if err := s.students.Update(ctx, &student); err != nil {
		if isDuplicateKey(err) {
			return dto.StudentResponse{}, ErrEmailTaken
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

// Delete removes the student and then cleans up progress and submission rows
// best-effort. Cleanup failures are logged but never block the deletion.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if err := s.progress.DeleteByStudent(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", id).Msg("failed to clean up progress rows")
	}
	if err := s.submissions.DeleteByStudent(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", id).Msg("failed to clean up submissions")
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")

	return nil
}

func (s *studentService) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewGroupResponseSlice(groups), nil
}

func (s *studentService) CreateGroup(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.Group{
		Name:        payload.Name,
		Description: payload.Description,
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}
