package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates seeding is switched off in configuration.
	ErrSeedDisabled = errors.New("seeding disabled")
	// ErrSeedTokenMismatch indicates the provided seed token is wrong.
	ErrSeedTokenMismatch = errors.New("invalid seed token")
)

// SeedResult summarises what a seed run created.
type SeedResult struct {
	LessonsCreated     int `json:"lessons_created"`
	AssignmentsCreated int `json:"assignments_created"`
}

// SeedService provisions the seven-day track and a sample final quiz. Runs are
// idempotent: existing lessons and assignments are left untouched.
type SeedService interface {
	Seed(ctx context.Context, token string) (SeedResult, error)
}

type seedService struct {
	lessons     repository.LessonRepository
	assignments repository.AssignmentRepository
	enabled     bool
	token       string
	logger      zerolog.Logger
}

// NewSeedService constructs a SeedService gated by configuration.
func NewSeedService(lessonRepo repository.LessonRepository, assignmentRepo repository.AssignmentRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		lessons:     lessonRepo,
		assignments: assignmentRepo,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

var seedLessonTitles = [models.TrackLength]string{
	"Foundations of Logistics",
	"Warehouse Operations",
	"Inventory Management",
	"Transportation Modes",
	"Freight Documentation",
	"Customs and Compliance",
	"Last-Mile Delivery",
}

func (s *seedService) Seed(ctx context.Context, token string) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if s.token != "" && token != s.token {
		return SeedResult{}, ErrSeedTokenMismatch
	}

	var result SeedResult

	for day := 1; day <= models.TrackLength; day++ {
		_, err := s.lessons.GetByOrder(ctx, day)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, err
		}

		lesson := models.Lesson{
			ModuleID:    fmt.Sprintf("logistics-day-%d", day),
			Title:       seedLessonTitles[day-1],
			Description: fmt.Sprintf("Day %d of the logistics training track.", day),
			Order:       day,
			IsActive:    true,
		}
		if err := s.lessons.Create(ctx, &lesson); err != nil {
			return result, err
		}
		result.LessonsCreated++
	}

	created, err := s.seedFinalQuiz(ctx)
	if err != nil {
		return result, err
	}
	if created {
		result.AssignmentsCreated++
	}

	s.logger.Info().
		Int("lessons_created", result.LessonsCreated).
		Int("assignments_created", result.AssignmentsCreated).
		Msg("seed run finished")

	return result, nil
}

func (s *seedService) seedFinalQuiz(ctx context.Context) (bool, error) {
	existing, err := s.assignments.List(ctx, repository.AssignmentFilter{Type: models.AssignmentTypeQuiz})
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	questions, err := buildSeedQuestions()
	if err != nil {
		return false, err
	}

	assignment := models.Assignment{
		Title:       "Logistics Certification Quiz",
		Description: "Final assessment covering the full seven-day track.",
		Type:        models.AssignmentTypeQuiz,
		Questions:   questions,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return false, err
	}

	return true, nil
}

// buildSeedQuestions generates a 40-question bank cycling through the track
// topics. Every question is worth one point so the pass threshold maps
// directly onto correct answers.
func buildSeedQuestions() (datatypes.JSON, error) {
	type seedQuestion struct {
		ID            string   `json:"id"`
		Prompt        string   `json:"prompt"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
		Points        int      `json:"points"`
	}

	topics := []string{
		"incoterms", "warehouse safety", "stock rotation", "freight classes",
		"bill of lading", "customs declarations", "route planning", "cold chain",
	}

	questions := make([]seedQuestion, 0, 40)
	for i := 0; i < 40; i++ {
		topic := topics[i%len(topics)]
		questions = append(questions, seedQuestion{
			ID:            fmt.Sprintf("q%d", i+1),
			Prompt:        fmt.Sprintf("Question %d: which statement about %s is correct?", i+1, topic),
			Options:       []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectAnswer: "Option A",
			Points:        1,
		})
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(payload), nil
}
