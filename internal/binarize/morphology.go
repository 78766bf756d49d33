package binarize

import "image"

// MorphOp selects a morphological operation.
type MorphOp int

const (
	MorphDilate MorphOp = iota
	MorphErode
	MorphOpen
	MorphClose
)

// Morph applies the operation with a kw x kh rectangular kernel.
// On binarized images, close then open removes speckle while keeping
// stroke shapes intact.
func Morph(gray *image.Gray, op MorphOp, kw, kh int) *image.Gray {
	if kw < 1 {
		kw = 1
	}
	if kh < 1 {
		kh = 1
	}
	switch op {
	case MorphErode:
		return morphPass(gray, kw, kh, true)
	case MorphDilate:
		return morphPass(gray, kw, kh, false)
	case MorphOpen:
		return morphPass(morphPass(gray, kw, kh, true), kw, kh, false)
	case MorphClose:
		return morphPass(morphPass(gray, kw, kh, false), kw, kh, true)
	default:
		return gray
	}
}

// morphPass computes a windowed min (erode) or max (dilate).
func morphPass(gray *image.Gray, kw, kh int, erode bool) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	halfW, halfH := kw/2, kh/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var best uint8
			if erode {
				best = 255
			}
			y0, y1 := maxInt(y-halfH, 0), minInt(y-halfH+kh-1, h-1)
			x0, x1 := maxInt(x-halfW, 0), minInt(x-halfW+kw-1, w-1)
			for yy := y0; yy <= y1; yy++ {
				for xx := x0; xx <= x1; xx++ {
					v := gray.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y
					if erode {
						if v < best {
							best = v
						}
					} else if v > best {
						best = v
					}
				}
			}
			out.Pix[y*out.Stride+x] = best
		}
	}
	return out
}
