package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/dto"
	"github.com/skillroute/skillroute-api/internal/models"
	"github.com/skillroute/skillroute-api/internal/repository"
)

// ErrUnsupportedMediaType rejects lesson media outside the allowed formats.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Lesson media slots.
const (
	MediaKindVideo    = "video"
	MediaKindMaterial = "material"
)

// FileUploader pushes lesson media to object storage and returns a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// LessonService manages the lesson catalogue and its media.
type LessonService interface {
	List(ctx context.Context) ([]dto.LessonResponse, error)
	Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, id uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, id uint) error
	UploadMedia(ctx context.Context, id uint, kind string, file *multipart.FileHeader) (dto.LessonResponse, error)
}

type lessonService struct {
	lessons   repository.LessonRepository
	validator *validator.Validate
	uploader  FileUploader
	logger    zerolog.Logger
}

// NewLessonService constructs a LessonService instance.
func NewLessonService(lessonRepo repository.LessonRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) LessonService {
	return &lessonService{
		lessons:   lessonRepo,
		validator: validate,
		uploader:  uploader,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) List(ctx context.Context) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewLessonResponseSlice(lessons), nil
}

func (s *lessonService) Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		ModuleID:    payload.ModuleID,
		Title:       payload.Title,
		Description: payload.Description,
		Order:       payload.Order,
		IsActive:    true,
	}
	if payload.IsActive != nil {
		lesson.IsActive = *payload.IsActive
	}

	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Int("order", lesson.Order).Msg("lesson created")

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Update(ctx context.Context, id uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	if payload.Title != nil {
		lesson.Title = *payload.Title
	}
	if payload.Description != nil {
		lesson.Description = *payload.Description
	}
	if payload.Order != nil {
		lesson.Order = *payload.Order
	}
	if payload.IsActive != nil {
		lesson.IsActive = *payload.IsActive
	}

	if err := s.lessons.Update(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, id uint) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

func (s *lessonService) UploadMedia(ctx context.Context, id uint, kind string, file *multipart.FileHeader) (dto.LessonResponse, error) {
	if kind != MediaKindVideo && kind != MediaKindMaterial {
		return dto.LessonResponse{}, fmt.Errorf("unknown media kind: %s", kind)
	}

	if file == nil {
		return dto.LessonResponse{}, fmt.Errorf("media file is required")
	}

	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	if err := validateMediaType(file); err != nil {
		return dto.LessonResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.LessonResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	uploadURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.LessonResponse{}, fmt.Errorf("failed to upload media: %w", err)
	}

	switch kind {
	case MediaKindVideo:
		lesson.VideoURL = uploadURL
	case MediaKindMaterial:
		lesson.MaterialURL = uploadURL
	}

	if err := s.lessons.Update(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Str("kind", kind).Msg("lesson media uploaded")

	return dto.NewLessonResponse(lesson), nil
}

func validateMediaType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"video/mp4", "application/pdf", "image/png", "image/jpeg"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mime.String())
}
