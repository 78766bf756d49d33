// Package pipeline wires the per-image processing chain: quality
// analysis and preprocessing, OCR invocation, text correction, field
// parsing and validation. One image in, one structured voucher out.
// The chain is strictly sequential per image and holds no shared
// state, so callers may run many pipelines concurrently.
package pipeline

import (
	"context"
	"image"
	"log/slog"

	"github.com/receiptworks/voucherscan/internal/engine"
	"github.com/receiptworks/voucherscan/internal/parser"
	"github.com/receiptworks/voucherscan/internal/preprocess"
	"github.com/receiptworks/voucherscan/internal/quality"
	"github.com/receiptworks/voucherscan/internal/textfix"
	"github.com/receiptworks/voucherscan/internal/validate"
	"github.com/receiptworks/voucherscan/internal/voucher"
)

// Config collects the per-stage settings for one pipeline instance.
type Config struct {
	Preprocess preprocess.Config `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Textfix    textfix.Config    `mapstructure:"textfix" yaml:"textfix" json:"textfix"`
	Parser     parser.Config     `mapstructure:"parser" yaml:"parser" json:"parser"`
	Validate   validate.Config   `mapstructure:"validate" yaml:"validate" json:"validate"`
}

// DefaultConfig returns the per-stage production defaults.
func DefaultConfig() Config {
	return Config{
		Preprocess: preprocess.DefaultConfig(),
		Textfix:    textfix.DefaultConfig(),
		Parser:     parser.DefaultConfig(),
		Validate:   validate.DefaultConfig(),
	}
}

// Result is the outcome of processing one image.
type Result struct {
	Path    string            `json:"path,omitempty" yaml:"path,omitempty"`
	OCR     voucher.OCRResult `json:"ocr" yaml:"ocr"`
	Voucher *voucher.Parsed   `json:"voucher,omitempty" yaml:"voucher,omitempty"`
	Quality *quality.Metrics  `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// Pipeline runs the full image-to-voucher chain.
type Pipeline struct {
	pre       *preprocess.Preprocessor
	invoker   *engine.Invoker
	parser    *parser.Parser
	validator *validate.Validator
	strategy  preprocess.Strategy
	logger    *slog.Logger
}

// New builds a pipeline around the given OCR engine. The engine is
// injected so tests can run the chain without a tesseract install.
func New(cfg Config, eng engine.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	strategy := cfg.Preprocess.Strategy
	if strategy == "" {
		strategy = preprocess.StrategyOptimal
	}
	return &Pipeline{
		pre:       preprocess.New(cfg.Preprocess, logger),
		invoker:   engine.NewInvoker(eng, textfix.New(cfg.Textfix), logger),
		parser:    parser.New(cfg.Parser, logger),
		validator: validate.New(cfg.Validate, logger),
		strategy:  strategy,
		logger:    logger,
	}
}

// ProcessFile loads, preprocesses and extracts one image file.
// The returned error covers load/decode failures only; an OCR engine
// failure is reported through the result's error-marker text so batch
// callers can record it per file.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	gray, metrics, err := p.pre.ProcessFile(path, p.strategy)
	if err != nil {
		return nil, err
	}
	res := p.ProcessImage(ctx, gray, metrics)
	res.Path = path
	p.logger.Info("processed voucher image",
		"path", path,
		"confidence", res.OCR.Confidence,
		"parse_confidence", parseConfidence(res.Voucher),
		"duration_ms", res.OCR.ProcessingTimeMS)
	return res, nil
}

// Process preprocesses an already-decoded image and runs the OCR
// chain on it. Used for PDF pages, which arrive decoded.
func (p *Pipeline) Process(ctx context.Context, img image.Image) *Result {
	gray, metrics := p.pre.Process(img, p.strategy)
	return p.ProcessImage(ctx, gray, metrics)
}

// ProcessImage runs OCR, correction, parsing and validation on an
// already-preprocessed image. When the OCR engine itself fails the
// result carries the error marker and no voucher.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image, metrics *quality.Metrics) *Result {
	res := &Result{Quality: metrics}
	res.OCR = p.invoker.Extract(ctx, img, p.strategy)
	if res.OCR.Failed() {
		p.logger.Warn("ocr failed, skipping parse", "text", res.OCR.Text)
		return res
	}

	parsed := p.parser.Parse(res.OCR.Text)
	p.validator.Validate(parsed)
	res.Voucher = parsed
	return res
}

func parseConfidence(v *voucher.Parsed) int {
	if v == nil {
		return 0
	}
	return v.Metadata.ParseConfidence
}
