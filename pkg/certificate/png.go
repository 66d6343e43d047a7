package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth  = 1000
	canvasHeight = 700
	borderInset  = 24
)

// Data carries everything printed onto a certificate.
type Data struct {
	StudentName       string
	CourseTitle       string
	CertificateNumber string
	IssuedAt          time.Time
}

// Render produces a PNG certificate image for the given data.
func Render(data Data) ([]byte, error) {
	if data.CertificateNumber == "" {
		return nil, fmt.Errorf("certificate number is required")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))

	background := color.RGBA{R: 0xFB, G: 0xF8, B: 0xF0, A: 0xFF}
	accent := color.RGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF}
	ink := color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}

	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	drawBorder(canvas, accent)

	course := data.CourseTitle
	if course == "" {
		course = "Logistics Training Course"
	}

	lines := []struct {
		text    string
		y       int
		colored bool
	}{
		{"CERTIFICATE OF COMPLETION", 180, true},
		{course, 260, false},
		{"awarded to", 320, false},
		{data.StudentName, 380, true},
		{fmt.Sprintf("Certificate No. %s", data.CertificateNumber), 480, false},
		{fmt.Sprintf("Issued on %s", data.IssuedAt.Format("2 January 2006")), 530, false},
	}

	for _, line := range lines {
		textColor := ink
		if line.colored {
			textColor = accent
		}
		drawCentered(canvas, line.text, line.y, textColor)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}

	return buffer.Bytes(), nil
}

func drawBorder(canvas *image.RGBA, borderColor color.RGBA) {
	bounds := canvas.Bounds()
	for x := bounds.Min.X + borderInset; x < bounds.Max.X-borderInset; x++ {
		for _, y := range []int{bounds.Min.Y + borderInset, bounds.Max.Y - borderInset} {
			canvas.Set(x, y, borderColor)
			canvas.Set(x, y+1, borderColor)
		}
	}
	for y := bounds.Min.Y + borderInset; y < bounds.Max.Y-borderInset; y++ {
		for _, x := range []int{bounds.Min.X + borderInset, bounds.Max.X - borderInset} {
			canvas.Set(x, y, borderColor)
			canvas.Set(x+1, y, borderColor)
		}
	}
}

func drawCentered(canvas *image.RGBA, text string, y int, textColor color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	x := (canvasWidth - width) / 2

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  &image.Uniform{C: textColor},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
