// Package quality measures how favorable an image is for OCR:
// brightness, contrast, sharpness, noise, skew and resolution, plus a
// composite 0-100 score. Analysis never fails; undetectable properties
// degrade to conservative defaults so a bad scan cannot abort a batch.
package quality

// Threshold defaults. An image outside these bounds trips the
// corresponding needs-X predicate and loses that predicate's penalty
// from the composite score.
const (
	MinBrightness   = 80.0
	MaxBrightness   = 220.0
	MinContrast     = 30.0
	MinSharpness    = 20.0
	MaxNoiseLevel   = 30.0
	MaxSkewDegrees  = 2.0
	MinWidth        = 1000
	UpscaleFactor   = 2
)

// Score penalties per failing predicate.
const (
	penaltyBrightness = 15
	penaltyContrast   = 20
	penaltySharpness  = 15
	penaltyNoise      = 20
	penaltySkew       = 10
	penaltyResolution = 10
)

// Metrics is an immutable measurement of one decoded image.
type Metrics struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Sharpness  float64 `json:"sharpness"`
	NoiseLevel float64 `json:"noise_level"`
	SkewAngle  float64 `json:"skew_angle"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// NeedsBrightnessAdjustment reports whether mean intensity falls
// outside the usable band.
func (m Metrics) NeedsBrightnessAdjustment() bool {
	return m.Brightness < MinBrightness || m.Brightness > MaxBrightness
}

// NeedsContrastEnhancement reports whether pixel spread is too flat.
func (m Metrics) NeedsContrastEnhancement() bool {
	return m.Contrast < MinContrast
}

// NeedsSharpening reports whether edge response is too weak.
func (m Metrics) NeedsSharpening() bool {
	return m.Sharpness < MinSharpness
}

// NeedsDenoising reports whether the noise estimate is too high.
func (m Metrics) NeedsDenoising() bool {
	return m.NoiseLevel > MaxNoiseLevel
}

// NeedsDeskewing reports whether the detected skew exceeds tolerance.
func (m Metrics) NeedsDeskewing() bool {
	return m.SkewAngle > MaxSkewDegrees || m.SkewAngle < -MaxSkewDegrees
}

// NeedsUpscaling reports whether the image is too narrow for reliable
// OCR.
func (m Metrics) NeedsUpscaling() bool {
	return m.Width < MinWidth
}

// Score summarizes the metrics as 0-100: each failing predicate
// subtracts its fixed penalty from 100, floored at 0.
func (m Metrics) Score() int {
	score := 100
	if m.NeedsBrightnessAdjustment() {
		score -= penaltyBrightness
	}
	if m.NeedsContrastEnhancement() {
		score -= penaltyContrast
	}
	if m.NeedsSharpening() {
		score -= penaltySharpness
	}
	if m.NeedsDenoising() {
		score -= penaltyNoise
	}
	if m.NeedsDeskewing() {
		score -= penaltySkew
	}
	if m.NeedsUpscaling() {
		score -= penaltyResolution
	}
	if score < 0 {
		score = 0
	}
	return score
}
