package binarize

import (
	"image"
	"math"
)

// Sauvola applies the Sauvola local threshold
//
//	T(x,y) = m(x,y) * (1 + k*(s(x,y)/r - 1))
//
// where m and s are the mean and standard deviation of the window
// around (x,y). It outperforms global thresholds on unevenly lit
// documents because dark regions get proportionally lower thresholds.
func Sauvola(gray *image.Gray, window int, k, r float64) *image.Gray {
	window = oddAtLeast(window, 3)
	if k <= 0 {
		k = 0.2
	}
	if r <= 0 {
		r = 128
	}
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	integ := integralImage(gray)
	integSq := integralSquares(gray)
	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(x-half, 0), maxInt(y-half, 0)
			x1, y1 := minInt(x+half, w-1), minInt(y+half, h-1)
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))

			sum := float64(integ[(y1+1)*(w+1)+x1+1] - integ[y0*(w+1)+x1+1] -
				integ[(y1+1)*(w+1)+x0] + integ[y0*(w+1)+x0])
			sumSq := float64(integSq[(y1+1)*(w+1)+x1+1] - integSq[y0*(w+1)+x1+1] -
				integSq[(y1+1)*(w+1)+x0] + integSq[y0*(w+1)+x0])

			mean := sum / area
			variance := sumSq/area - mean*mean
			if variance < 0 {
				variance = 0
			}
			std := math.Sqrt(variance)

			threshold := mean * (1 + k*(std/r-1))
			if float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > threshold {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func integralSquares(gray *image.Gray) []uint64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	integ := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			v := uint64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			rowSum += v * v
			integ[(y+1)*(w+1)+x+1] = integ[y*(w+1)+x+1] + rowSum
		}
	}
	return integ
}
