package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptworks/voucherscan/internal/engine"
)

type stubEngine struct {
	tokens engine.Tokens
	err    error
}

func (s *stubEngine) Run(_ context.Context, _ image.Image, _ engine.Params) (engine.Tokens, error) {
	if s.err != nil {
		return engine.Tokens{}, s.err
	}
	return s.tokens, nil
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	for i := range img.Pix {
		img.Pix[i] = 235
	}
	// a dark band so the frame is not perfectly flat
	for x := 10; x < 110; x++ {
		img.SetGray(x, 40, color.Gray{Y: 20})
	}
	path := filepath.Join(t.TempDir(), "voucher.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

const receiptText = `SHRI GANESH TRADERS
Voucher Number: 4521
Date: 26/04/2024
Supp Name: TK
Rice Bags 10 50.00 500.00
Wheat 20 17.00 340.00
Total: 840.00
Less:
Comm 4 %
L/F and Cash 58.40
Net Total: 748.00`

func tokensFor(text string, conf float64) engine.Tokens {
	return engine.Tokens{
		Text:  text,
		Words: []engine.Word{{Text: "w", Confidence: conf}},
	}
}

func TestProcessFileEndToEnd(t *testing.T) {
	eng := &stubEngine{tokens: tokensFor(receiptText, 91)}
	p := New(DefaultConfig(), eng, nil)

	res, err := p.ProcessFile(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	assert.False(t, res.OCR.Failed())
	assert.InDelta(t, 91, res.OCR.Confidence, 0.001)
	require.NotNil(t, res.Quality)

	require.NotNil(t, res.Voucher)
	assert.Equal(t, "4521", res.Voucher.Master.VoucherNumber)
	assert.Equal(t, "26-04-2024", res.Voucher.Master.VoucherDate)
	require.NotNil(t, res.Voucher.Master.NetTotal)
	assert.True(t, res.Voucher.Master.NetTotal.Equal(decimal.RequireFromString("748")))
	assert.Len(t, res.Voucher.Items, 2)
	assert.Len(t, res.Voucher.Deductions, 2)
	assert.Greater(t, res.Voucher.Metadata.ParseConfidence, 80)
}

func TestProcessFileCorrectsGarbledText(t *testing.T) {
	garbled := "Voucner Numb3r: 4521\nDat3: 26/04/2024\nNetTotal: 748.00"
	eng := &stubEngine{tokens: tokensFor(garbled, 60)}
	p := New(DefaultConfig(), eng, nil)

	res, err := p.ProcessFile(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	require.NotNil(t, res.Voucher)
	assert.Equal(t, "4521", res.Voucher.Master.VoucherNumber)
	assert.Equal(t, "26-04-2024", res.Voucher.Master.VoucherDate)
	require.NotNil(t, res.Voucher.Master.NetTotal)
	assert.Equal(t, garbled, res.OCR.RawText)
}

func TestProcessFileMissingFile(t *testing.T) {
	p := New(DefaultConfig(), &stubEngine{}, nil)
	_, err := p.ProcessFile(context.Background(), "/nonexistent/voucher.png")
	require.Error(t, err)
}

func TestEngineFailureProducesMarkerResult(t *testing.T) {
	eng := &stubEngine{err: errors.New("tesseract exploded")}
	p := New(DefaultConfig(), eng, nil)

	res, err := p.ProcessFile(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	assert.True(t, res.OCR.Failed())
	assert.Zero(t, res.OCR.Confidence)
	assert.Nil(t, res.Voucher)
}
