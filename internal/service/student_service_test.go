package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
)

type fakeStudentRepo struct {
	students  map[uint]models.Student
	nextID    uint
	deleteErr error
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[uint]models.Student)}
}

func (f *fakeStudentRepo) List(ctx context.Context, filter repository.StudentFilter) ([]models.Student, error) {
	var result []models.Student
	for _, student := range f.students {
		if filter.GroupID != nil && (student.GroupID == nil || *student.GroupID != *filter.GroupID) {
			continue
		}
		result = append(result, student)
	}
	return result, nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	for _, existing := range f.students {
		if existing.Email == student.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	student.ID = f.nextID
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.students, id)
	return nil
}

type fakeGroupRepo struct {
	groups map[uint]models.Group
}

func (f *fakeGroupRepo) List(ctx context.Context) ([]models.Group, error) {
	var result []models.Group
	for _, group := range f.groups {
		result = append(result, group)
	}
	return result, nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id uint) (models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	return group, nil
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	group.ID = uint(len(f.groups) + 1)
	f.groups[group.ID] = *group
	return nil
}

func (f *fakeGroupRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.groups, id)
	return nil
}

func newTestStudentService(students *fakeStudentRepo, groups *fakeGroupRepo, progress *fakeProgressRepo, submissions *fakeSubmissionRepo) StudentService {
	return NewStudentService(students, groups, progress, submissions, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestStudentCreateRejectsDuplicateEmail(t *testing.T) {
	students := newFakeStudentRepo()
	svc := newTestStudentService(students, &fakeGroupRepo{groups: map[uint]models.Group{}}, newFakeProgressRepo(), newFakeSubmissionRepo())

	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.StudentCreateRequest{Name: "Ada Again", Email: "ada@example.com"})
	require.True(t, errors.Is(err, ErrEmailTaken))
}

func TestStudentCreateUnknownGroup(t *testing.T) {
	svc := newTestStudentService(newFakeStudentRepo(), &fakeGroupRepo{groups: map[uint]models.Group{}}, newFakeProgressRepo(), newFakeSubmissionRepo())

	groupID := uint(5)
	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{Name: "Ada", Email: "ada@example.com", GroupID: &groupID})
	require.True(t, errors.Is(err, ErrGroupNotFound))
}

func TestStudentDeleteCleansUpProgressAndSubmissions(t *testing.T) {
	students := newFakeStudentRepo()
	students.students[7] = models.Student{ID: 7, Name: "Ada", Email: "ada@example.com"}

	progress := newFakeProgressRepo()
	require.NoError(t, progress.Create(context.Background(), &models.StudentProgress{StudentID: 7, LessonID: 1}))

	submissions := newFakeSubmissionRepo()
	submissions.rows[submissionKey{1, 7}] = models.Submission{ID: 1, AssignmentID: 1, StudentID: 7}

	svc := newTestStudentService(students, &fakeGroupRepo{groups: map[uint]models.Group{}}, progress, submissions)

	require.NoError(t, svc.Delete(context.Background(), 7))
	require.Empty(t, progress.rows)
	require.Empty(t, submissions.rows)
}

func TestStudentDeleteMissing(t *testing.T) {
	svc := newTestStudentService(newFakeStudentRepo(), &fakeGroupRepo{groups: map[uint]models.Group{}}, newFakeProgressRepo(), newFakeSubmissionRepo())

	err := svc.Delete(context.Background(), 99)
	require.True(t, errors.Is(err, ErrStudentNotFound))
}

func TestStudentUpdateMovesGroup(t *testing.T) {
	students := newFakeStudentRepo()
	students.students[7] = models.Student{ID: 7, Name: "Ada", Email: "ada@example.com"}
	groups := &fakeGroupRepo{groups: map[uint]models.Group{2: {ID: 2, Name: "Cohort B"}}}

	svc := newTestStudentService(students, groups, newFakeProgressRepo(), newFakeSubmissionRepo())

	groupID := uint(2)
	resp, err := svc.Update(context.Background(), 7, dto.StudentUpdateRequest{GroupID: &groupID})
	require.NoError(t, err)
	require.Equal(t, "Ada", resp.Name)

	updated := students.students[7]
	require.NotNil(t, updated.GroupID)
	require.Equal(t, uint(2), *updated.GroupID)
}
