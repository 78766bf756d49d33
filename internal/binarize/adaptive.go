package binarize

import (
	"image"
	"math"
)

// AdaptiveMean thresholds each pixel against the mean of its
// blockSize x blockSize neighborhood minus c. Effective when lighting
// varies gradually across the page.
func AdaptiveMean(gray *image.Gray, blockSize int, c float64) *image.Gray {
	blockSize = oddAtLeast(blockSize, 3)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	integ := integralImage(gray)
	half := blockSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(x-half, 0), maxInt(y-half, 0)
			x1, y1 := minInt(x+half, w-1), minInt(y+half, h-1)
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integ[(y1+1)*(w+1)+x1+1] - integ[y0*(w+1)+x1+1] -
				integ[(y1+1)*(w+1)+x0] + integ[y0*(w+1)+x0]
			mean := float64(sum) / area
			if float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > mean-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// AdaptiveGaussian thresholds each pixel against a Gaussian-weighted
// neighborhood mean minus c. The weighting makes it less sensitive to
// outlier pixels than the plain mean.
func AdaptiveGaussian(gray *image.Gray, blockSize int, c float64) *image.Gray {
	blockSize = oddAtLeast(blockSize, 3)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	kernel := gaussianKernel(blockSize)
	half := blockSize / 2

	// separable convolution, horizontal then vertical
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -half; k <= half; k++ {
				xx := clampInt(x+k, 0, w-1)
				acc += kernel[k+half] * float64(gray.GrayAt(b.Min.X+xx, b.Min.Y+y).Y)
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -half; k <= half; k++ {
				yy := clampInt(y+k, 0, h-1)
				acc += kernel[k+half] * tmp[yy*w+x]
			}
			if float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > acc-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// integralImage returns the (w+1)x(h+1) summed-area table of gray.
func integralImage(gray *image.Gray) []uint64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	integ := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integ[(y+1)*(w+1)+x+1] = integ[y*(w+1)+x+1] + rowSum
		}
	}
	return integ
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
