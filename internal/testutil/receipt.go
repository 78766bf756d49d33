// Package testutil generates synthetic voucher images for tests:
// rendered receipt text, optional noise, skew and uneven lighting, so
// preprocessing and quality analysis can be exercised without a
// corpus of scanned paper.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ReceiptConfig controls synthetic receipt rendering.
type ReceiptConfig struct {
	Lines      []string
	Width      int
	Background uint8
	Foreground uint8
	// SkewDegrees rotates the rendered receipt, white-filled corners.
	SkewDegrees float64
	// NoiseAmount flips roughly this fraction of pixels to salt or
	// pepper. Zero keeps the render clean.
	NoiseAmount float64
	// Seed makes the noise reproducible.
	Seed int64
}

// DefaultReceiptConfig returns a clean, well-lit receipt render.
func DefaultReceiptConfig(lines ...string) ReceiptConfig {
	return ReceiptConfig{
		Lines:      lines,
		Width:      400,
		Background: 245,
		Foreground: 10,
	}
}

// SampleReceiptLines is a complete, arithmetically consistent voucher
// for end-to-end tests: items sum to the gross total and deductions
// reconcile with the net.
func SampleReceiptLines() []string {
	return []string{
		"SHRI GANESH TRADERS",
		"Voucher Number: 4521",
		"Date: 26/04/2024",
		"Supp Name: TK",
		"Rice Bags 10 50.00 500.00",
		"Wheat 20 17.00 340.00",
		"Total: 840.00",
		"Less:",
		"Comm 4 %",
		"L/F and Cash 58.40",
		"Net Total: 748.00",
	}
}

// GenerateReceipt renders the configured lines left-aligned in a
// fixed-width face, one per row, the way thermal printers lay out
// vouchers.
func GenerateReceipt(cfg ReceiptConfig) image.Image {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	height := lineHeight*(len(cfg.Lines)+2) + 10
	if height < 60 {
		height = 60
	}
	if cfg.Width <= 0 {
		cfg.Width = 400
	}

	img := image.NewGray(image.Rect(0, 0, cfg.Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: cfg.Background}), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: cfg.Foreground}),
		Face: face,
	}
	for i, line := range cfg.Lines {
		drawer.Dot = fixed.P(8, lineHeight*(i+1)+5)
		drawer.DrawString(line)
	}

	var out image.Image = img
	if cfg.NoiseAmount > 0 {
		out = saltAndPepper(img, cfg.NoiseAmount, cfg.Seed)
	}
	if cfg.SkewDegrees != 0 {
		out = imaging.Rotate(out, cfg.SkewDegrees, color.White)
	}
	return out
}

func saltAndPepper(img *image.Gray, amount float64, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	out := image.NewGray(img.Bounds())
	copy(out.Pix, img.Pix)
	n := int(float64(len(out.Pix)) * amount)
	for i := 0; i < n; i++ {
		idx := rng.Intn(len(out.Pix))
		if rng.Intn(2) == 0 {
			out.Pix[idx] = 0
		} else {
			out.Pix[idx] = 255
		}
	}
	return out
}

// WriteReceiptPNG renders a receipt and writes it under dir,
// returning the file path.
func WriteReceiptPNG(t *testing.T, dir, name string, cfg ReceiptConfig) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, GenerateReceipt(cfg)))
	return path
}
