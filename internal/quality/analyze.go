package quality

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Analyze measures a decoded image and returns its Metrics. It never
// returns an error: a nil or empty image yields zero metrics, and skew
// detection falls back to 0 degrees when no usable lines are found.
func Analyze(img image.Image) Metrics {
	if img == nil {
		return Metrics{}
	}
	gray := ToGray(img)
	b := gray.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Metrics{Width: b.Dx(), Height: b.Dy()}
	}

	mean, std := meanStd(gray)
	return Metrics{
		Brightness: mean,
		Contrast:   std,
		Sharpness:  laplacianVariance(gray),
		NoiseLevel: noiseEstimate(gray),
		SkewAngle:  detectSkew(gray),
		Width:      b.Dx(),
		Height:     b.Dy(),
	}
}

// ToGray converts any image to 8-bit grayscale using the standard
// luminance weights. Returns the input unchanged if already gray.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000
			gray.SetGray(x, y, color.Gray{Y: uint8(lum >> 8)})
		}
	}
	return gray
}

func meanStd(g *image.Gray) (float64, float64) {
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
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// laplacianVariance applies a 4-neighbor Laplacian and returns the
// variance of the response. Low variance means few edges, i.e. blur.
func laplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	var sum, sumSq float64
	n := 0
	for y := 1; y < h-1; y++ {
		row := y * g.Stride
		for x := 1; x < w-1; x++ {
			c := float64(g.Pix[row+x])
			lap := float64(g.Pix[row+x-1]) + float64(g.Pix[row+x+1]) +
				float64(g.Pix[row-g.Stride+x]) + float64(g.Pix[row+g.Stride+x]) - 4*c
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// noiseEstimate computes twice the median absolute deviation of the
// residual after a 3x3 median filter, capped at 100. Salt-and-pepper
// noise survives the subtraction; real content mostly cancels out.
func noiseEstimate(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	residuals := make([]float64, 0, (w-2)*(h-2))
	var window [9]uint8
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			k := 0
			for dy := -1; dy <= 1; dy++ {
				row := (y + dy) * g.Stride
				for dx := -1; dx <= 1; dx++ {
					window[k] = g.Pix[row+x+dx]
					k++
				}
			}
			med := median9(window)
			residuals = append(residuals, math.Abs(float64(g.Pix[y*g.Stride+x])-float64(med)))
		}
	}
	mad := medianFloat(residuals)
	noise := mad * 2
	if noise > 100 {
		noise = 100
	}
	return noise
}

func median9(w [9]uint8) uint8 {
	// insertion sort, fixed size
	for i := 1; i < 9; i++ {
		v := w[i]
		j := i - 1
		for j >= 0 && w[j] > v {
			w[j+1] = w[j]
			j--
		}
		w[j+1] = v
	}
	return w[4]
}

func medianFloat(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}
