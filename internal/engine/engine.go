// Package engine wraps the external OCR engine behind a small
// interface and implements the invocation strategy on top of it: the
// default strategy runs the engine under two page-segmentation
// assumptions and keeps the pass with the higher mean word confidence.
package engine

import (
	"context"
	"image"
)

// PageSegMode mirrors the engine's page-segmentation parameter.
type PageSegMode int

const (
	// PSMSingleColumn assumes one column of variably sized text, the
	// usual shape of a till receipt.
	PSMSingleColumn PageSegMode = 4
	// PSMSingleBlock assumes one uniform block of text.
	PSMSingleBlock PageSegMode = 6
)

// EngineMode mirrors the engine's recognizer selection.
type EngineMode int

// EngineModeLSTM selects the neural line recognizer.
const EngineModeLSTM EngineMode = 1

// ReceiptWhitelist is the character set allowed during recognition of
// general receipt content: alphanumerics, common punctuation and
// currency marks. Easily confused glyphs (pipes, brackets, tildes) are
// deliberately absent.
const ReceiptWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"0123456789.,;:!?-/()&$₹£€ "

// Word is one recognized token with its confidence in [0,100].
type Word struct {
	Text       string
	Confidence float64
}

// Tokens is the raw output of one engine run.
type Tokens struct {
	Text  string
	Words []Word
}

// MeanConfidence averages the positive word confidences. Tokens with
// non-positive confidence are excluded from the mean rather than
// counted as zero; an empty set yields 0.
func (t Tokens) MeanConfidence() float64 {
	var sum float64
	n := 0
	for _, w := range t.Words {
		if w.Confidence > 0 {
			sum += w.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Params configures a single engine run.
type Params struct {
	Whitelist string
	PSM       PageSegMode
	OEM       EngineMode
}

// Engine is the boundary to the external OCR engine. Implementations
// must be safe for concurrent Run calls.
type Engine interface {
	Run(ctx context.Context, img image.Image, p Params) (Tokens, error)
}
