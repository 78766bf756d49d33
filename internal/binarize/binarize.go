// Package binarize converts grayscale document images to black and
// white. It offers a global Otsu threshold, adaptive mean and Gaussian
// local thresholds, and a Sauvola local-statistics threshold, plus an
// auto-selector that picks a method from measured image quality.
package binarize

import (
	"image"
	"math"

	"github.com/receiptworks/voucherscan/internal/quality"
)

// Method identifies a thresholding algorithm.
type Method string

const (
	MethodOtsu             Method = "otsu"
	MethodAdaptiveMean     Method = "adaptive_mean"
	MethodAdaptiveGaussian Method = "adaptive_gaussian"
	MethodSauvola          Method = "sauvola"
)

// Config holds the tunables of the local thresholding methods.
type Config struct {
	// BlockSize is the neighborhood size for the adaptive methods.
	// Forced to the next odd value when even.
	BlockSize int `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	// C is subtracted from the local mean/weighted mean.
	C float64 `mapstructure:"c" yaml:"c" json:"c"`
	// SauvolaWindow is the Sauvola neighborhood size, forced odd.
	SauvolaWindow int `mapstructure:"sauvola_window" yaml:"sauvola_window" json:"sauvola_window"`
	// SauvolaK controls threshold sensitivity, usually 0.2-0.3.
	SauvolaK float64 `mapstructure:"sauvola_k" yaml:"sauvola_k" json:"sauvola_k"`
	// SauvolaR is the dynamic range of standard deviation.
	SauvolaR float64 `mapstructure:"sauvola_r" yaml:"sauvola_r" json:"sauvola_r"`
}

// DefaultConfig returns the defaults tuned for receipt scans.
func DefaultConfig() Config {
	return Config{
		BlockSize:     11,
		C:             2,
		SauvolaWindow: 15,
		SauvolaK:      0.2,
		SauvolaR:      128,
	}
}

// Apply binarizes gray with the given method. Unknown methods fall
// back to Otsu rather than failing; binarization must never abort a
// pipeline run.
func Apply(gray *image.Gray, method Method, cfg Config) *image.Gray {
	switch method {
	case MethodAdaptiveMean:
		return AdaptiveMean(gray, cfg.BlockSize, cfg.C)
	case MethodAdaptiveGaussian:
		return AdaptiveGaussian(gray, cfg.BlockSize, cfg.C)
	case MethodSauvola:
		return Sauvola(gray, cfg.SauvolaWindow, cfg.SauvolaK, cfg.SauvolaR)
	default:
		return Otsu(gray)
	}
}

// AutoSelect picks a thresholding method from quality metrics and
// applies it: very low contrast favors Sauvola (handles uneven
// lighting), extreme brightness favors adaptive Gaussian, and
// well-behaved images get the cheaper global Otsu. The chosen method
// is returned for diagnostics.
func AutoSelect(gray *image.Gray, m *quality.Metrics, cfg Config) (*image.Gray, Method) {
	var brightness, contrast float64
	if m != nil {
		brightness, contrast = m.Brightness, m.Contrast
	} else {
		brightness, contrast = grayStats(gray)
		// Raw statistics use slightly different cutoffs than the
		// analyzer's calibrated metrics.
		method := MethodOtsu
		switch {
		case contrast < 30:
			method = MethodSauvola
		case brightness < 100 || brightness > 180:
			method = MethodAdaptiveGaussian
		}
		return Apply(gray, method, cfg), method
	}

	method := MethodOtsu
	switch {
	case contrast < 25:
		method = MethodSauvola
	case brightness < 100 || brightness > 200:
		method = MethodAdaptiveGaussian
	}
	return Apply(gray, method, cfg), method
}

func grayStats(g *image.Gray) (mean, std float64) {
	n := len(g.Pix)
	if n == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, p := range g.Pix {
		v := float64(p)
		sum += v
		sumSq += v * v
	}
	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance > 0 {
		std = math.Sqrt(variance)
	}
	return mean, std
}

func oddAtLeast(v, min int) int {
	if v < min {
		v = min
	}
	if v%2 == 0 {
		v++
	}
	return v
}
