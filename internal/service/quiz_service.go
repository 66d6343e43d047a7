package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/events"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/observability"
	"github.com/skillroute/skillroute-api/internal/repository"
	"github.com/skillroute/skillroute-api/pkg/ai"
)

// PassingCorrectAnswers is the certification threshold: an absolute count of
// correct answers, not a percentage of the question bank.
const PassingCorrectAnswers = 30

var (
	// ErrAssignmentNotFound indicates the assignment could not be found.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionAlreadyGraded rejects mutation of a graded submission.
	ErrSubmissionAlreadyGraded = errors.New("submission already graded")
	// ErrNotQuizAssignment rejects quiz-only operations on other types.
	ErrNotQuizAssignment = errors.New("operation only supported for quiz assignments")
)

// QuizService runs the submission and certification workflows: auto-scoring
// quizzes, delegating practical/scenario grading to the AI provider, and
// issuing certificates on the first passing grade.
type QuizService interface {
	SubmitQuiz(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitQuizRequest) (dto.SubmissionResponse, error)
	SaveAnswer(ctx context.Context, studentID, assignmentID uint, payload dto.SaveAnswerRequest) (dto.SubmissionResponse, error)
	ResetQuiz(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error)
	GradeManually(ctx context.Context, payload dto.GradeSubmissionRequest, graderID uint) (dto.SubmissionResponse, error)
	GetSubmission(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error)
}

type quizService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	grader      ai.Provider
	events      *events.Publisher
	stats       StatsService
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewQuizService constructs a QuizService instance. grader may be nil, in
// which case practical/scenario submissions keep a null AI score. stats may
// be nil, in which case cached aggregates age out on their TTL.
func NewQuizService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, grader ai.Provider, publisher *events.Publisher, stats StatsService, logger zerolog.Logger) QuizService {
	return &quizService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		grader:      grader,
		events:      publisher,
		stats:       stats,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "quiz_service").Logger(),
		now:         time.Now,
	}
}

// invalidateStats drops the cached aggregates after a submission mutation.
func (s *quizService) invalidateStats(ctx context.Context, studentID uint) {
	if s.stats == nil {
		return
	}
	s.stats.Invalidate(ctx, studentID)
}

type scoringOutcome struct {
	score          float64
	correctCount   int
	totalQuestions int
	passed         bool
}

func (s *quizService) SubmitQuiz(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitQuizRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/skillroute/skillroute-api/internal/service/quiz")
	ctx, span := tracer.Start(ctx, "quiz.submit")
	span.SetAttributes(
		attribute.Int64("quiz.student_id", int64(studentID)),
		attribute.Int64("quiz.assignment_id", int64(assignmentID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	isUpdate := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}
	if isUpdate && existing.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	answers := make([]models.SubmittedAnswer, 0, len(payload.Answers))
	for _, answer := range payload.Answers {
		answers = append(answers, models.SubmittedAnswer{
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
		})
	}

	encoded, err := models.EncodeAnswers(answers)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to encode answers: %w", err)
	}

	now := s.now()
	submission := existing
	if !isUpdate {
		submission = models.Submission{
			AssignmentID: assignmentID,
			StudentID:    studentID,
		}
	}
	submission.Answers = encoded
	submission.SubmittedAt = &now

	if assignment.IsQuiz() {
		outcome, err := s.scoreQuiz(assignment, answers)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}

		submission.Status = models.SubmissionStatusGraded
		submission.Score = &outcome.score
		submission.CorrectCount = &outcome.correctCount
		submission.TotalQuestions = &outcome.totalQuestions
		submission.Passed = outcome.passed
		submission.GradedAt = &now
		submission.AttemptsUsed++

		if outcome.passed && !submission.HasPassed {
			s.certify(&submission, isUpdate, now)
		}

		observability.QuizSubmissions().WithLabelValues(fmt.Sprintf("%t", outcome.passed)).Inc()
		span.SetAttributes(
			attribute.Int("quiz.correct_count", outcome.correctCount),
			attribute.Bool("quiz.passed", outcome.passed),
		)
	} else {
		submission.Status = models.SubmissionStatusSubmitted
		submission.AIScore = s.gradeWithAI(ctx, assignment, answers)
	}

	if err := s.persistSubmission(ctx, &submission, isUpdate); err != nil {
		return dto.SubmissionResponse{}, err
	}

	saved, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.events.Publish(events.SubjectSubmissionGraded, map[string]interface{}{
		"submission_id": saved.ID,
		"student_id":    studentID,
		"assignment_id": assignmentID,
		"status":        saved.Status,
		"passed":        saved.Passed,
	})
	s.logger.Info().
		Uint("submission_id", saved.ID).
		Uint("student_id", studentID).
		Bool("passed", saved.Passed).
		Msg("submission processed")

	s.invalidateStats(ctx, studentID)

	return dto.NewSubmissionResponse(saved), nil
}

// scoreQuiz matches submitted answers against the question bank. Questions
// without an explicit id are keyed by their index in the bank.
func (s *quizService) scoreQuiz(assignment models.Assignment, answers []models.SubmittedAnswer) (scoringOutcome, error) {
	questions, err := assignment.DecodeQuestions()
	if err != nil {
		return scoringOutcome{}, fmt.Errorf("failed to decode question bank: %w", err)
	}

	bank := make(map[string]models.Question, len(questions))
	for index, question := range questions {
		bank[question.Key(index)] = question
	}

	outcome := scoringOutcome{totalQuestions: len(questions)}
	for _, answer := range answers {
		question, ok := bank[answer.QuestionID]
		if !ok {
			continue
		}
		if question.CorrectAnswer.Equal(answer.Answer) {
			outcome.score += float64(question.Points)
			outcome.correctCount++
		}
	}

	outcome.passed = outcome.correctCount >= PassingCorrectAnswers
	return outcome, nil
}

// certify flips the sticky pass flag and assigns the certificate exactly
// once. The serial format differs between the create and update paths; both
// formats already exist in issued certificates and must stay valid.
func (s *quizService) certify(submission *models.Submission, isUpdate bool, now time.Time) {
	submission.HasPassed = true
	if submission.CertificateIssuedAt == nil {
		issuedAt := now
		submission.CertificateIssuedAt = &issuedAt
	}

	if submission.CertificateNumber == "" {
		if isUpdate {
			submission.CertificateNumber = updatePathCertificateNumber(submission.ID)
		} else {
			submission.CertificateNumber = createPathCertificateNumber(now)
		}
	}

	observability.CertificatesIssued().Inc()
	s.events.Publish(events.SubjectCertificateIssued, map[string]interface{}{
		"student_id":         submission.StudentID,
		"assignment_id":      submission.AssignmentID,
		"certificate_number": submission.CertificateNumber,
	})
	s.logger.Info().
		Uint("student_id", submission.StudentID).
		Str("certificate_number", submission.CertificateNumber).
		Msg("certificate issued")
}

func createPathCertificateNumber(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("LC-%d-%s", now.Year(), random[:6])
}

func updatePathCertificateNumber(submissionID uint) string {
	id := fmt.Sprintf("%012X", submissionID)
	return "LC-" + id[len(id)-6:]
}

// gradeWithAI delegates practical/scenario scoring to the AI provider. A
// provider failure leaves the score null and never fails the submission.
func (s *quizService) gradeWithAI(ctx context.Context, assignment models.Assignment, answers []models.SubmittedAnswer) *int {
	if s.grader == nil {
		return nil
	}

	rendered, err := json.Marshal(answers)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to render answers for ai grading")
		return nil
	}

	result, err := s.grader.GradeSubmission(ctx, ai.GradingInput{
		AssignmentTitle: assignment.Title,
		AssignmentType:  assignment.Type,
		Description:     assignment.Description,
		StudentAnswers:  string(rendered),
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("ai grading failed, leaving score null")
		return nil
	}

	score := result.Score
	return &score
}

// persistSubmission writes the submission, resolving a duplicate-key race on
// first submit by re-reading the winning row and retrying as an update.
func (s *quizService) persistSubmission(ctx context.Context, submission *models.Submission, isUpdate bool) error {
	if isUpdate {
		return s.submissions.Update(ctx, submission)
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		if !isDuplicateKey(err) {
			return err
		}
		winner, fetchErr := s.submissions.GetByAssignmentAndStudent(ctx, submission.AssignmentID, submission.StudentID)
		if fetchErr != nil {
			return fetchErr
		}
		if winner.IsGraded() {
			return ErrSubmissionAlreadyGraded
		}
		submission.ID = winner.ID
		submission.CreatedAt = winner.CreatedAt
		return s.submissions.Update(ctx, submission)
	}

	return nil
}

func (s *quizService) SaveAnswer(ctx context.Context, studentID, assignmentID uint, payload dto.SaveAnswerRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !assignment.IsQuiz() {
		return dto.SubmissionResponse{}, ErrNotQuizAssignment
	}

	now := s.now()
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	isUpdate := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}
	if isUpdate && submission.IsGraded() {
		return dto.SubmissionResponse{}, ErrSubmissionAlreadyGraded
	}

	var answers []models.SubmittedAnswer
	if isUpdate {
		answers, err = submission.DecodeAnswers()
		if err != nil {
			return dto.SubmissionResponse{}, fmt.Errorf("failed to decode stored answers: %w", err)
		}
	} else {
		submission = models.Submission{
			AssignmentID: assignmentID,
			StudentID:    studentID,
		}
	}

	answers = upsertAnswer(answers, models.SubmittedAnswer{
		QuestionID: payload.QuestionID,
		Answer:     payload.Answer,
	})

	encoded, err := models.EncodeAnswers(answers)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to encode answers: %w", err)
	}

	submission.Answers = encoded
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &now

	if err := s.persistSubmission(ctx, &submission, isUpdate); err != nil {
		return dto.SubmissionResponse{}, err
	}

	saved, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidateStats(ctx, studentID)

	return dto.NewSubmissionResponse(saved), nil
}

func upsertAnswer(answers []models.SubmittedAnswer, incoming models.SubmittedAnswer) []models.SubmittedAnswer {
	for i, answer := range answers {
		if answer.QuestionID == incoming.QuestionID {
			answers[i] = incoming
			return answers
		}
	}
	return append(answers, incoming)
}

func (s *quizService) ResetQuiz(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !assignment.IsQuiz() {
		return dto.SubmissionResponse{}, ErrNotQuizAssignment
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	encoded, err := models.EncodeAnswers(nil)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// AttemptsUsed, HasPassed and the certificate fields survive a reset:
	// attempts keep counting across retakes and an issued certificate is
	// never revoked.
	submission.Answers = encoded
	submission.Status = models.SubmissionStatusPending
	submission.Score = nil
	submission.AIScore = nil
	submission.Feedback = ""
	submission.TeacherFeedback = ""
	submission.GradedBy = nil
	submission.GradedAt = nil
	submission.SubmittedAt = nil
	submission.CorrectCount = nil
	submission.TotalQuestions = nil
	submission.Passed = false

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	saved, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", saved.ID).Uint("student_id", studentID).Msg("quiz reset")

	s.invalidateStats(ctx, studentID)

	return dto.NewSubmissionResponse(saved), nil
}

func (s *quizService) GradeManually(ctx context.Context, payload dto.GradeSubmissionRequest, graderID uint) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/skillroute/skillroute-api/internal/service/quiz")
	ctx, span := tracer.Start(ctx, "quiz.grade_manual")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(payload.SubmissionID)),
		attribute.Int64("grading.grader_id", int64(graderID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	score := payload.Score
	submission.Score = &score
	submission.TeacherFeedback = s.sanitizer.Sanitize(payload.Feedback)
	submission.Status = models.SubmissionStatusGraded
	submission.GradedBy = &graderID
	submission.GradedAt = &now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	saved, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.events.Publish(events.SubjectSubmissionGraded, map[string]interface{}{
		"submission_id": saved.ID,
		"student_id":    saved.StudentID,
		"assignment_id": saved.AssignmentID,
		"status":        saved.Status,
		"graded_by":     graderID,
	})
	s.logger.Info().Uint("submission_id", saved.ID).Uint("graded_by", graderID).Msg("submission graded manually")

	s.invalidateStats(ctx, saved.StudentID)

	return dto.NewSubmissionResponse(saved), nil
}

func (s *quizService) GetSubmission(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}
