package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/receiptworks/voucherscan/internal/quality"
)

// Deskew rotates the image by the negated detected skew so text
// baselines end up horizontal. Revealed corners are filled white, the
// presumed paper color. Angles inside the tolerance are left alone.
func Deskew(gray *image.Gray, skewDegrees float64) *image.Gray {
	if skewDegrees <= quality.MaxSkewDegrees && skewDegrees >= -quality.MaxSkewDegrees {
		return gray
	}
	rotated := imaging.Rotate(gray, -skewDegrees, color.White)
	return quality.ToGray(rotated)
}
