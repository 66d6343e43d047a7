package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillroute/skillroute-api/internal/models"
)

func TestCertificateRenderRequiresPass(t *testing.T) {
	submissions := newFakeSubmissionRepo()
	submissions.rows[submissionKey{1, 7}] = models.Submission{
		ID: 1, AssignmentID: 1, StudentID: 7, Passed: false, HasPassed: false,
	}

	svc := NewCertificateService(submissions, zerolog.Nop())
	_, err := svc.RenderPNG(context.Background(), 7, 1)
	require.True(t, errors.Is(err, ErrCertificateNotEarned))
}

func TestCertificateRenderMissingSubmission(t *testing.T) {
	svc := NewCertificateService(newFakeSubmissionRepo(), zerolog.Nop())

	_, err := svc.RenderPNG(context.Background(), 7, 1)
	require.True(t, errors.Is(err, ErrSubmissionNotFound))
}

func TestCertificateRenderSucceedsAfterPass(t *testing.T) {
	issued := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	submissions := newFakeSubmissionRepo()
	submissions.rows[submissionKey{1, 7}] = models.Submission{
		ID: 1, AssignmentID: 1, StudentID: 7,
		HasPassed:           true,
		CertificateNumber:   "LC-2026-ABCDEF",
		CertificateIssuedAt: &issued,
		Student:             models.Student{ID: 7, Name: "Ada Lovelace"},
		Assignment:          models.Assignment{ID: 1, Title: "Logistics Certification Quiz"},
	}

	svc := NewCertificateService(submissions, zerolog.Nop())
	payload, err := svc.RenderPNG(context.Background(), 7, 1)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
}
