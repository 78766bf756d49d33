package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/receiptworks/voucherscan/internal/preprocess"
	"github.com/receiptworks/voucherscan/internal/voucher"
)

// Corrector cleans up raw OCR text before it reaches the parser.
type Corrector interface {
	Correct(text string) string
}

// Invoker drives the OCR engine with the per-strategy invocation
// policy and post-processes the raw text through the corrector.
type Invoker struct {
	engine    Engine
	corrector Corrector
	logger    *slog.Logger
}

// NewInvoker wires an engine and a text corrector together. Corrector
// may be nil, in which case raw text passes through unchanged.
func NewInvoker(e Engine, c Corrector, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{engine: e, corrector: c, logger: logger}
}

// Extract runs OCR over a preprocessed image. The optimal strategy
// performs two passes, one per page-segmentation assumption, and keeps
// the pass with the higher mean word confidence; ties go to the
// single-column pass. Engine failures never surface as errors: they
// come back as a sentinel result with zero confidence whose text
// starts with voucher.OCRErrorMarker.
func (inv *Invoker) Extract(ctx context.Context, img image.Image, strategy preprocess.Strategy) voucher.OCRResult {
	start := time.Now()

	var tokens Tokens
	var err error
	if strategy == preprocess.StrategyOptimal {
		tokens, err = inv.dualPass(ctx, img)
	} else {
		tokens, err = inv.engine.Run(ctx, img, Params{
			Whitelist: ReceiptWhitelist,
			PSM:       PSMSingleColumn,
			OEM:       EngineModeLSTM,
		})
	}
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		inv.logger.Error("ocr engine failed", "strategy", string(strategy), "error", err)
		msg := fmt.Sprintf("%s %v", voucher.OCRErrorMarker, err)
		return voucher.OCRResult{
			Text:             msg,
			RawText:          msg,
			Confidence:       0,
			Method:           string(strategy),
			ProcessingTimeMS: elapsed,
		}
	}

	text := tokens.Text
	if inv.corrector != nil {
		text = inv.corrector.Correct(text)
	}
	return voucher.OCRResult{
		Text:             text,
		RawText:          tokens.Text,
		Confidence:       tokens.MeanConfidence(),
		Method:           string(strategy),
		ProcessingTimeMS: elapsed,
	}
}

// dualPass runs single-column and single-block segmentation and keeps
// the more confident result.
func (inv *Invoker) dualPass(ctx context.Context, img image.Image) (Tokens, error) {
	column, err := inv.engine.Run(ctx, img, Params{
		Whitelist: ReceiptWhitelist,
		PSM:       PSMSingleColumn,
		OEM:       EngineModeLSTM,
	})
	if err != nil {
		return Tokens{}, err
	}
	block, err := inv.engine.Run(ctx, img, Params{
		Whitelist: ReceiptWhitelist,
		PSM:       PSMSingleBlock,
		OEM:       EngineModeLSTM,
	})
	if err != nil {
		// The column pass already succeeded; use it.
		inv.logger.Warn("block-segmentation pass failed, keeping column pass", "error", err)
		return column, nil
	}

	cc, bc := column.MeanConfidence(), block.MeanConfidence()
	inv.logger.Debug("dual-pass ocr", "column_confidence", cc, "block_confidence", bc)
	if bc > cc {
		return block, nil
	}
	return column, nil
}
