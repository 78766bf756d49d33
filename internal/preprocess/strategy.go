// Package preprocess turns raw voucher scans into OCR-ready
// monochrome images. It offers a fixed baseline and several
// quality-aware strategies that gate each enhancement step on measured
// image properties, so clean scans pass through mostly untouched while
// bad ones get progressively heavier treatment.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/receiptworks/voucherscan/internal/binarize"
	"github.com/receiptworks/voucherscan/internal/quality"
)

// Strategy names a preprocessing pipeline variant.
type Strategy string

const (
	// StrategyBaseline is grayscale plus a fixed median filter. No
	// quality branching; the safe fallback when adaptive strategies
	// misbehave on an unusual scan.
	StrategyBaseline Strategy = "baseline"
	// StrategyConservative denoises and equalizes only when the
	// measured quality clearly demands it.
	StrategyConservative Strategy = "conservative"
	// StrategyAggressive uses looser trigger thresholds, sharpens,
	// and always finishes with a global Otsu binarization.
	StrategyAggressive Strategy = "aggressive"
	// StrategyAdaptive gates every step on its quality predicate; a
	// well-lit sharp image passes through unmodified.
	StrategyAdaptive Strategy = "adaptive"
	// StrategyOptimal extends adaptive with auto-selected
	// binarization and a morphological speckle cleanup.
	StrategyOptimal Strategy = "optimal"
)

// ParseStrategy validates a strategy name from config or CLI flags.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyBaseline, StrategyConservative, StrategyAggressive,
		StrategyAdaptive, StrategyOptimal:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown preprocessing strategy %q", s)
}

// Config holds the preprocessing tunables.
type Config struct {
	Strategy Strategy        `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
	Binarize binarize.Config `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyOptimal,
		Binarize: binarize.DefaultConfig(),
	}
}

// Preprocessor applies a named strategy to voucher scans.
type Preprocessor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Preprocessor. A nil logger falls back to the default.
func New(cfg Config, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyOptimal
	}
	return &Preprocessor{cfg: cfg, logger: logger}
}

// ProcessFile loads the scan at path and runs the strategy over it.
// Unreadable input surfaces as *ImageError; nothing after a successful
// load can fail.
func (p *Preprocessor) ProcessFile(path string, strategy Strategy) (*image.Gray, *quality.Metrics, error) {
	img, meta, err := LoadImage(path)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Debug("loaded scan",
		"path", meta.Path, "format", meta.Format,
		"width", meta.Width, "height", meta.Height)
	out, m := p.Process(img, strategy)
	return out, m, nil
}

// Process runs the strategy over an already-decoded image. The
// returned metrics are nil for the baseline strategy, which never
// measures. The source image is never modified.
func (p *Preprocessor) Process(img image.Image, strategy Strategy) (*image.Gray, *quality.Metrics) {
	if strategy == "" {
		strategy = p.cfg.Strategy
	}

	// Narrow sources lose too much stroke detail for OCR; upscale
	// before anything else looks at the pixels.
	if img.Bounds().Dx() < quality.MinWidth {
		img = Upscale(img, quality.UpscaleFactor)
	}
	gray := quality.ToGray(img)

	if strategy == StrategyBaseline {
		return Median(gray, 3), nil
	}

	m := quality.Analyze(gray)
	p.logger.Debug("quality analysis",
		"strategy", string(strategy), "score", m.Score(),
		"brightness", m.Brightness, "contrast", m.Contrast,
		"sharpness", m.Sharpness, "noise", m.NoiseLevel, "skew", m.SkewAngle)

	switch strategy {
	case StrategyConservative:
		gray = p.conservative(gray, m)
	case StrategyAggressive:
		gray = p.aggressive(gray, m)
	case StrategyAdaptive:
		gray = p.adaptive(gray, m, false)
	default: // optimal
		gray = p.adaptive(gray, m, true)
	}
	return gray, &m
}

func (p *Preprocessor) conservative(gray *image.Gray, m quality.Metrics) *image.Gray {
	if m.NeedsDenoising() {
		gray = Median(gray, 3)
	}
	if m.NeedsContrastEnhancement() {
		gray = CLAHE(gray, 2.0, 8, 8)
	}
	return gray
}

// aggressive triggers on roughly half-severity thresholds, so it
// touches most real-world scans, and always ends in a global
// binarization.
func (p *Preprocessor) aggressive(gray *image.Gray, m quality.Metrics) *image.Gray {
	if m.NoiseLevel > quality.MaxNoiseLevel/2 {
		gray = Bilateral(gray, 2, 30)
	}
	if m.Contrast < quality.MinContrast*1.7 {
		gray = CLAHE(gray, 2.5, 8, 8)
	}
	if m.Sharpness < quality.MinSharpness*2.5 {
		gray = Sharpen(gray, 1.0)
	}
	return binarize.Otsu(gray)
}

// adaptive gates each step on the matching quality predicate. With
// autoBinarize the binarization method is auto-selected and always
// applied, followed by a close+open pass to drop speckle.
func (p *Preprocessor) adaptive(gray *image.Gray, m quality.Metrics, autoBinarize bool) *image.Gray {
	if m.NeedsBrightnessAdjustment() {
		gamma := 1.5 // lighten a dark scan
		if m.Brightness > quality.MaxBrightness {
			gamma = 0.7
		}
		gray = AdjustGamma(gray, gamma)
	}
	if m.NeedsDenoising() {
		gray = Median(gray, 3)
	}
	if m.NeedsContrastEnhancement() {
		gray = CLAHE(gray, 2.0, 8, 8)
	}
	if m.NeedsDeskewing() {
		gray = Deskew(gray, m.SkewAngle)
	}
	if m.NeedsSharpening() {
		gray = Sharpen(gray, 1.0)
	}

	if autoBinarize {
		bin, method := binarize.AutoSelect(gray, &m, p.cfg.Binarize)
		p.logger.Debug("auto binarization", "method", string(method))
		bin = binarize.Morph(bin, binarize.MorphClose, 2, 2)
		return binarize.Morph(bin, binarize.MorphOpen, 2, 2)
	}
	if m.NeedsContrastEnhancement() || m.NeedsBrightnessAdjustment() {
		gray = binarize.Apply(gray, binarize.MethodOtsu, p.cfg.Binarize)
	}
	return gray
}
