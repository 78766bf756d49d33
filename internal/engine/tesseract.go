package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig is the explicit engine configuration. It is passed
// in at construction so multiple engines with different settings can
// coexist; nothing here is process-wide state.
type TesseractConfig struct {
	// Languages passed to the engine, default ["eng"].
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	// TessdataPrefix overrides the trained-data directory when set.
	TessdataPrefix string `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix" json:"tessdata_prefix"`
}

// DefaultTesseractConfig returns the stock engine settings.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{Languages: []string{"eng"}}
}

// Tesseract runs OCR through the gosseract binding. A fresh client is
// created per call, which keeps Run safe for concurrent use from the
// batch worker pool.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a Tesseract engine with the given config.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &Tesseract{cfg: cfg}
}

// Run executes one recognition pass. The engine call itself is not
// interruptible; ctx is only honored before the call starts.
func (t *Tesseract) Run(ctx context.Context, img image.Image, p Params) (Tokens, error) {
	if err := ctx.Err(); err != nil {
		return Tokens{}, err
	}
	// gosseract fixes the recognizer when it initializes the API, and
	// tessedit_ocr_engine_mode set afterwards is ignored. The default
	// init gives the LSTM engine, so anything else cannot be honored.
	if p.OEM != 0 && p.OEM != EngineModeLSTM {
		return Tokens{}, fmt.Errorf("engine mode %d not supported, only LSTM is available", p.OEM)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Tokens{}, fmt.Errorf("encoding image for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.cfg.Languages...); err != nil {
		return Tokens{}, fmt.Errorf("setting ocr languages: %w", err)
	}
	if t.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			return Tokens{}, fmt.Errorf("setting tessdata prefix: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Tokens{}, fmt.Errorf("setting ocr image: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(p.PSM)); err != nil {
		return Tokens{}, fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if p.Whitelist != "" {
		if err := client.SetWhitelist(p.Whitelist); err != nil {
			return Tokens{}, fmt.Errorf("setting character whitelist: %w", err)
		}
	}
	text, err := client.Text()
	if err != nil {
		return Tokens{}, fmt.Errorf("ocr recognition: %w", err)
	}

	tokens := Tokens{Text: text}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text came back fine; deliver it without confidences rather
		// than failing the whole run.
		return tokens, nil
	}
	tokens.Words = make([]Word, 0, len(boxes))
	for _, box := range boxes {
		c := box.Confidence
		if c > 100 {
			c = 100
		}
		tokens.Words = append(tokens.Words, Word{Text: box.Word, Confidence: c})
	}
	return tokens, nil
}
