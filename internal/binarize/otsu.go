package binarize

import "image"

// OtsuThreshold computes the global threshold maximizing between-class
// variance over the intensity histogram.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	for _, p := range gray.Pix {
		hist[p]++
	}
	total := len(gray.Pix)
	if total == 0 {
		return 128
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var sumB, wB float64
	var best float64
	threshold := uint8(128)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Otsu binarizes gray with the global Otsu threshold.
func Otsu(gray *image.Gray) *image.Gray {
	t := OtsuThreshold(gray)
	b := gray.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray.GrayAt(x, y).Y > t {
				out.Pix[out.PixOffset(x, y)] = 255
			}
		}
	}
	return out
}
