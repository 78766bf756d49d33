package quality

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goodMetrics returns metrics that pass every predicate.
func goodMetrics() Metrics {
	return Metrics{
		Brightness: 150,
		Contrast:   60,
		Sharpness:  120,
		NoiseLevel: 10,
		SkewAngle:  0.5,
		Width:      1600,
		Height:     1200,
	}
}

func TestScorePerfect(t *testing.T) {
	m := goodMetrics()
	require.False(t, m.NeedsBrightnessAdjustment())
	require.False(t, m.NeedsContrastEnhancement())
	require.False(t, m.NeedsSharpening())
	require.False(t, m.NeedsDenoising())
	require.False(t, m.NeedsDeskewing())
	require.False(t, m.NeedsUpscaling())
	assert.Equal(t, 100, m.Score())
}

func TestScorePenaltyPerPredicate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Metrics)
		penalty int
	}{
		{"dark", func(m *Metrics) { m.Brightness = 40 }, 15},
		{"washed out", func(m *Metrics) { m.Brightness = 240 }, 15},
		{"flat", func(m *Metrics) { m.Contrast = 12 }, 20},
		{"blurry", func(m *Metrics) { m.Sharpness = 5 }, 15},
		{"noisy", func(m *Metrics) { m.NoiseLevel = 55 }, 20},
		{"skewed", func(m *Metrics) { m.SkewAngle = 4.2 }, 10},
		{"skewed negative", func(m *Metrics) { m.SkewAngle = -3.1 }, 10},
		{"small", func(m *Metrics) { m.Width = 640 }, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := goodMetrics()
			tt.mutate(&m)
			assert.Equal(t, 100-tt.penalty, m.Score())
		})
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	m := Metrics{Brightness: 10, Contrast: 1, Sharpness: 1, NoiseLevel: 90, SkewAngle: 12, Width: 300}
	assert.Equal(t, 10, m.Score()) // 100 - 15 - 20 - 15 - 20 - 10 - 10
	// All penalties sum to 90, so the floor only matters for future
	// weight changes, but the contract still holds.
	assert.GreaterOrEqual(t, m.Score(), 0)
}

func TestAnalyzeFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	m := Analyze(img)
	assert.InDelta(t, 128, m.Brightness, 0.01)
	assert.InDelta(t, 0, m.Contrast, 0.01)
	assert.InDelta(t, 0, m.Sharpness, 0.01)
	assert.InDelta(t, 0, m.NoiseLevel, 0.01)
	assert.Equal(t, 64, m.Width)
	assert.Equal(t, 64, m.Height)
}

func TestAnalyzeNilAndEmpty(t *testing.T) {
	assert.Equal(t, Metrics{}, Analyze(nil))
	assert.Equal(t, 0, Analyze(image.NewGray(image.Rect(0, 0, 0, 0))).Width)
}

func TestAnalyzeNoiseDetection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	clean := image.NewGray(image.Rect(0, 0, 128, 128))
	noisy := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range clean.Pix {
		clean.Pix[i] = 200
		noisy.Pix[i] = 200
	}
	// salt and pepper on the noisy copy
	for i := 0; i < len(noisy.Pix)/4; i++ {
		p := rng.Intn(len(noisy.Pix))
		if rng.Intn(2) == 0 {
			noisy.Pix[p] = 0
		} else {
			noisy.Pix[p] = 255
		}
	}
	assert.Greater(t, Analyze(noisy).NoiseLevel, Analyze(clean).NoiseLevel)
}

func TestAnalyzeColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	m := Analyze(img)
	assert.InDelta(t, 128, m.Brightness, 1.5)
}

func TestDetectSkewDefaultsToZero(t *testing.T) {
	// Uniform image: no edges, no lines, skew must default to 0.
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	m := Analyze(img)
	assert.Equal(t, 0.0, m.SkewAngle)
	assert.False(t, m.NeedsDeskewing())
}
