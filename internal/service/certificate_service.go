package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillroute/skillroute-api/internal/repository"
	"github.com/skillroute/skillroute-api/pkg/certificate"
)

// ErrCertificateNotEarned indicates the student has not passed the quiz yet.
var ErrCertificateNotEarned = errors.New("certificate not earned")

// CertificateService renders earned certificates.
type CertificateService interface {
	RenderPNG(ctx context.Context, studentID, assignmentID uint) ([]byte, error)
}

type certificateService struct {
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewCertificateService constructs a CertificateService instance.
func NewCertificateService(subRepo repository.SubmissionRepository, logger zerolog.Logger) CertificateService {
	return &certificateService{
		submissions: subRepo,
		logger:      logger.With().Str("component", "certificate_service").Logger(),
	}
}

func (s *certificateService) RenderPNG(ctx context.Context, studentID, assignmentID uint) ([]byte, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if !submission.HasPassed || submission.CertificateNumber == "" {
		return nil, ErrCertificateNotEarned
	}

	issuedAt := time.Now()
	if submission.CertificateIssuedAt != nil {
		issuedAt = *submission.CertificateIssuedAt
	}

	payload, err := certificate.Render(certificate.Data{
		StudentName:       submission.Student.Name,
		CourseTitle:       submission.Assignment.Title,
		CertificateNumber: submission.CertificateNumber,
		IssuedAt:          issuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Str("certificate_number", submission.CertificateNumber).
		Msg("certificate rendered")

	return payload, nil
}
