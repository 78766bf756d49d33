package preprocess

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/receiptworks/voucherscan/internal/quality"
)

// Median applies a size x size median filter, the workhorse against
// salt-and-pepper scanner noise. Size is forced odd.
func Median(gray *image.Gray, size int) *image.Gray {
	if size < 3 {
		size = 3
	}
	if size%2 == 0 {
		size++
	}
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	half := size / 2
	window := make([]uint8, 0, size*size)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -half; dy <= half; dy++ {
				yy := clamp(y+dy, 0, h-1)
				for dx := -half; dx <= half; dx++ {
					xx := clamp(x+dx, 0, w-1)
					window = append(window, gray.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[y*out.Stride+x] = window[len(window)/2]
		}
	}
	return out
}

// Bilateral applies an edge-preserving smoothing filter: spatial
// Gaussian weights damped by intensity difference, so strokes stay
// crisp while flat regions are averaged.
func Bilateral(gray *image.Gray, radius int, sigmaColor float64) *image.Gray {
	if radius < 1 {
		radius = 2
	}
	if sigmaColor <= 0 {
		sigmaColor = 25
	}
	sigmaSpace := float64(radius)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)

	spatial := make([]float64, (2*radius+1)*(2*radius+1))
	i := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[i] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
			i++
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			var sum, weight float64
			i = 0
			for dy := -radius; dy <= radius; dy++ {
				yy := clamp(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clamp(x+dx, 0, w-1)
					v := float64(gray.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y)
					diff := v - center
					wgt := spatial[i] * math.Exp(-diff*diff/(2*sigmaColor*sigmaColor))
					sum += wgt * v
					weight += wgt
					i++
				}
			}
			out.Pix[y*out.Stride+x] = uint8(sum/weight + 0.5)
		}
	}
	return out
}

// CLAHE performs contrast-limited adaptive histogram equalization over
// a grid of tiles with bilinear interpolation between tile mappings.
// ClipLimit is the multiple of the uniform histogram level at which
// bins are clipped; 2.0 is a safe default for receipts.
func CLAHE(gray *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	if tilesX < 1 {
		tilesX = 8
	}
	if tilesY < 1 {
		tilesY = 8
	}
	if clipLimit <= 0 {
		clipLimit = 2.0
	}
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}
	if tilesX > w {
		tilesX = w
	}
	if tilesY > h {
		tilesY = h
	}

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY

	// per-tile clipped-equalization lookup tables
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			n := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y]++
					n++
				}
			}
			if n == 0 {
				continue
			}

			clip := int(clipLimit * float64(n) / 256)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			// redistribute the clipped mass uniformly
			add := excess / 256
			for i := range hist {
				hist[i] += add
			}

			lut := &luts[ty*tilesX+tx]
			cum := 0
			for i := range hist {
				cum += hist[i]
				lut[i] = uint8(math.Round(255 * float64(cum) / float64(n)))
			}
		}
	}

	// bilinear interpolation between the four surrounding tile LUTs
	for y := 0; y < h; y++ {
		fy := (float64(y) - float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := clamp(int(math.Floor(fy)), 0, tilesY-1)
		ty1 := clamp(ty0+1, 0, tilesY-1)
		wy := fy - math.Floor(fy)
		if fy < 0 {
			ty0, ty1, wy = 0, 0, 0
		}
		for x := 0; x < w; x++ {
			fx := (float64(x) - float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := clamp(int(math.Floor(fx)), 0, tilesX-1)
			tx1 := clamp(tx0+1, 0, tilesX-1)
			wx := fx - math.Floor(fx)
			if fx < 0 {
				tx0, tx1, wx = 0, 0, 0
			}

			v := gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			v00 := float64(luts[ty0*tilesX+tx0][v])
			v01 := float64(luts[ty0*tilesX+tx1][v])
			v10 := float64(luts[ty1*tilesX+tx0][v])
			v11 := float64(luts[ty1*tilesX+tx1][v])
			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			out.Pix[y*out.Stride+x] = uint8(top*(1-wy) + bottom*wy + 0.5)
		}
	}
	return out
}

// AdjustGamma corrects over/under-exposed scans. Gamma > 1 lightens,
// < 1 darkens.
func AdjustGamma(gray *image.Gray, gamma float64) *image.Gray {
	return quality.ToGray(imaging.AdjustGamma(gray, gamma))
}

// Sharpen applies an unsharp mask with the given sigma.
func Sharpen(gray *image.Gray, sigma float64) *image.Gray {
	return quality.ToGray(imaging.Sharpen(gray, sigma))
}

// Upscale resizes by factor with Lanczos resampling.
func Upscale(img image.Image, factor int) image.Image {
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.Lanczos)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
