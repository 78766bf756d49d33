package preprocess

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptworks/voucherscan/internal/quality"
)

func flatGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func writeTempPNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("a/b/scan.JPG"))
	assert.True(t, IsSupportedImage("scan.tiff"))
	assert.False(t, IsSupportedImage("scan.pdf"))
	assert.False(t, IsSupportedImage("scan"))
}

func TestLoadImageErrors(t *testing.T) {
	var imgErr *ImageError

	_, _, err := LoadImage("")
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "load", imgErr.Operation)

	_, _, err = LoadImage("missing.png")
	require.ErrorAs(t, err, &imgErr)

	_, _, err = LoadImage("doc.docx")
	require.ErrorAs(t, err, &imgErr)
	assert.Contains(t, err.Error(), "unsupported format")

	// garbage bytes with a good extension fail at decode
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))
	_, _, err = LoadImage(bad)
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "decode", imgErr.Operation)
}

func TestLoadImageMetadata(t *testing.T) {
	path := writeTempPNG(t, flatGray(120, 80, 200))
	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 120, meta.Width)
	assert.Equal(t, 80, meta.Height)
	assert.Positive(t, meta.SizeBytes)
}

func TestMedianRemovesSpeckle(t *testing.T) {
	img := flatGray(16, 16, 255)
	img.Pix[8*img.Stride+8] = 0
	out := Median(img, 3)
	assert.Equal(t, uint8(255), out.Pix[8*out.Stride+8])
}

func TestCLAHERaisesContrast(t *testing.T) {
	// Low-contrast ramp around mid-gray.
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.Pix[y*img.Stride+x] = uint8(118 + x/8)
		}
	}
	before := quality.Analyze(img).Contrast
	after := quality.Analyze(CLAHE(img, 2.0, 8, 8)).Contrast
	assert.Greater(t, after, before)
}

func TestBilateralPreservesEdges(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 16; x < 32; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	out := Bilateral(img, 2, 25)
	// The step edge survives: both sides keep values far apart.
	assert.Less(t, out.Pix[16*out.Stride+8], uint8(30))
	assert.Greater(t, out.Pix[16*out.Stride+24], uint8(225))
}

func TestDeskewWithinToleranceIsNoop(t *testing.T) {
	img := flatGray(64, 64, 128)
	assert.Same(t, img, Deskew(img, 1.5))
	assert.Same(t, img, Deskew(img, -1.9))
	assert.NotSame(t, img, Deskew(img, 5))
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"baseline", "conservative", "aggressive", "adaptive", "optimal"} {
		got, err := ParseStrategy(s)
		require.NoError(t, err)
		assert.Equal(t, Strategy(s), got)
	}
	_, err := ParseStrategy("turbo")
	assert.Error(t, err)
}

func TestProcessBaselineNoMetrics(t *testing.T) {
	p := New(DefaultConfig(), nil)
	out, m := p.Process(flatGray(1200, 100, 180), StrategyBaseline)
	require.NotNil(t, out)
	assert.Nil(t, m)
}

func TestProcessUpscalesNarrowImages(t *testing.T) {
	p := New(DefaultConfig(), nil)
	for _, s := range []Strategy{StrategyBaseline, StrategyConservative, StrategyAdaptive, StrategyOptimal} {
		out, _ := p.Process(flatGray(400, 50, 180), s)
		assert.Equal(t, 800, out.Bounds().Dx(), "strategy %s", s)
	}
	out, _ := p.Process(flatGray(1200, 50, 180), StrategyBaseline)
	assert.Equal(t, 1200, out.Bounds().Dx())
}

func TestProcessOptimalProducesBinaryImage(t *testing.T) {
	// Text-like strokes on paper background.
	img := flatGray(1100, 200, 210)
	for x := 100; x < 1000; x += 20 {
		for y := 50; y < 150; y++ {
			img.Pix[y*img.Stride+x] = 30
		}
	}
	p := New(DefaultConfig(), nil)
	out, m := p.Process(img, StrategyOptimal)
	require.NotNil(t, m)
	for _, px := range out.Pix {
		require.True(t, px == 0 || px == 255)
	}
}

func TestProcessAdaptivePassesCleanImageThrough(t *testing.T) {
	// High contrast, sharp, bright-but-not-blown image: adaptive must
	// not binarize or otherwise damage it.
	img := flatGray(1400, 400, 200)
	for y := 0; y < 400; y += 4 {
		for x := 0; x < 1400; x++ {
			img.Pix[y*img.Stride+x] = 20
		}
	}
	m := quality.Analyze(img)
	if m.NeedsContrastEnhancement() || m.NeedsBrightnessAdjustment() ||
		m.NeedsDenoising() || m.NeedsSharpening() {
		t.Skipf("synthetic image not clean enough: %+v", m)
	}
	p := New(DefaultConfig(), nil)
	out, _ := p.Process(img, StrategyAdaptive)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestProcessFilePropagatesLoadError(t *testing.T) {
	p := New(DefaultConfig(), nil)
	_, _, err := p.ProcessFile("nope.png", StrategyOptimal)
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
}

func TestProcessFileRoundTrip(t *testing.T) {
	img := flatGray(1100, 120, 220)
	path := writeTempPNG(t, img)
	p := New(DefaultConfig(), nil)
	out, m, err := p.ProcessFile(path, StrategyConservative)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, m)
	assert.Equal(t, 1100, m.Width)
}
