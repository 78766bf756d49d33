package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptworks/voucherscan/internal/config"
	"github.com/receiptworks/voucherscan/internal/pipeline"
	"github.com/receiptworks/voucherscan/internal/voucher"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "voucherscan")
}

func TestScanRejectsMissingFile(t *testing.T) {
	_, err := execute(t, "scan", "/nonexistent/voucher.png")
	require.Error(t, err)
}

func TestScanRejectsUnknownStrategy(t *testing.T) {
	_, err := execute(t, "scan", "voucher.png", "--strategy", "witchcraft")
	require.Error(t, err)
}

func sampleResult() *pipeline.Result {
	gross := decimal.RequireFromString("840.00")
	return &pipeline.Result{
		Path: "voucher.png",
		OCR:  voucher.OCRResult{Text: "x", RawText: "x", Confidence: 84.5, Method: "optimal"},
		Voucher: &voucher.Parsed{
			Master: voucher.MasterFields{
				VoucherNumber: "4521",
				VoucherDate:   "26-04-2024",
				GrossTotal:    &gross,
			},
			Items: []voucher.LineItem{
				{ItemName: "Rice Bags", Amount: decimal.RequireFromString("500.00")},
			},
			Metadata: voucher.Metadata{ParseConfidence: 62},
		},
	}
}

func TestRenderFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := render(buf, sampleResult(), config.OutputConfig{Format: "json", Pretty: true})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"voucher_number": "4521"`)
	})

	t.Run("yaml", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := render(buf, sampleResult(), config.OutputConfig{Format: "yaml"})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "voucher_number:")
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := render(buf, sampleResult(), config.OutputConfig{Format: "text"})
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "Voucher number: 4521")
		assert.Contains(t, out, "Rice Bags")
		assert.Contains(t, out, "Parse confidence: 62")
	})

	t.Run("unknown format errors", func(t *testing.T) {
		err := render(&bytes.Buffer{}, sampleResult(), config.OutputConfig{Format: "csv"})
		require.Error(t, err)
	})
}

func TestRenderTextForFailedOCR(t *testing.T) {
	res := &pipeline.Result{
		OCR: voucher.OCRResult{Text: voucher.OCRErrorMarker + " engine unavailable"},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, render(buf, res, config.OutputConfig{Format: "text"}))
	assert.True(t, strings.Contains(buf.String(), "OCR failed"))
}
