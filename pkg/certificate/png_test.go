package certificate

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderProducesDecodablePNG(t *testing.T) {
	payload, err := Render(Data{
		StudentName:       "Ada Lovelace",
		CourseTitle:       "Logistics Certification Quiz",
		CertificateNumber: "LC-2026-ABCDEF",
		IssuedAt:          time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(payload))
	require.NoError(t, err)

	bounds := img.Bounds()
	require.Equal(t, 1000, bounds.Dx())
	require.Equal(t, 700, bounds.Dy())
}

func TestRenderRequiresCertificateNumber(t *testing.T) {
	_, err := Render(Data{StudentName: "Ada"})
	require.Error(t, err)
}
