package testutil

import (
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptRendersText(t *testing.T) {
	img := GenerateReceipt(DefaultReceiptConfig("Voucher No: 1", "Total: 100.00"))

	gray, ok := img.(*image.Gray)
	require.True(t, ok)

	dark := 0
	for _, p := range gray.Pix {
		if p < 64 {
			dark++
		}
	}
	assert.Greater(t, dark, 50, "rendered glyphs should produce dark pixels")
}

func TestGenerateReceiptNoiseIsReproducible(t *testing.T) {
	cfg := DefaultReceiptConfig("Total: 100.00")
	cfg.NoiseAmount = 0.05
	cfg.Seed = 42

	a := GenerateReceipt(cfg).(*image.Gray)
	b := GenerateReceipt(cfg).(*image.Gray)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestGenerateReceiptSkewChangesBounds(t *testing.T) {
	cfg := DefaultReceiptConfig("Total: 100.00")
	straight := GenerateReceipt(cfg)

	cfg.SkewDegrees = 5
	skewed := GenerateReceipt(cfg)
	assert.NotEqual(t, straight.Bounds(), skewed.Bounds())
}

func TestWriteReceiptPNG(t *testing.T) {
	path := WriteReceiptPNG(t, t.TempDir(), "r.png", DefaultReceiptConfig(SampleReceiptLines()...))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
