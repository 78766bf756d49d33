package quality

import (
	"image"
	"math"
	"sort"
)

const (
	houghAngleSpanDeg = 45  // search (-45, 45) degrees around horizontal
	houghAngleStepDeg = 0.5
	houghEdgeThresh   = 96.0 // gradient magnitude cutoff
	houghMaxEdges     = 20000
	houghVoteFraction = 0.3 // peak rows need this share of the max vote
)

// detectSkew estimates the page rotation in degrees from dominant text
// lines: Sobel edges feed a Hough accumulator restricted to near-
// horizontal angles, and the result is the median angle of the peak
// rows. Returns 0 when nothing line-like is found.
func detectSkew(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 8 || h < 8 {
		return 0
	}

	// Subsample large images; skew is a global property.
	step := 1
	for (w/step)*(h/step) > 1<<20 {
		step++
	}

	type point struct{ x, y int }
	edges := make([]point, 0, 4096)
	for y := step; y < h-step; y += step {
		row := y * g.Stride
		for x := step; x < w-step; x += step {
			gx := int(g.Pix[row+x+step]) - int(g.Pix[row+x-step])
			gy := int(g.Pix[row+step*g.Stride+x]) - int(g.Pix[row-step*g.Stride+x])
			if math.Hypot(float64(gx), float64(gy)) >= houghEdgeThresh {
				edges = append(edges, point{x, y})
				if len(edges) >= houghMaxEdges {
					break
				}
			}
		}
		if len(edges) >= houghMaxEdges {
			break
		}
	}
	if len(edges) < 32 {
		return 0
	}

	nAngles := int(2*houghAngleSpanDeg/houghAngleStepDeg) + 1
	diag := int(math.Hypot(float64(w), float64(h))) + 1
	// accumulator[angle][rho+diag]
	acc := make([][]int32, nAngles)
	sins := make([]float64, nAngles)
	coss := make([]float64, nAngles)
	for i := range acc {
		acc[i] = make([]int32, 2*diag+1)
		// Text baselines are near-horizontal: their Hough normal sits
		// near theta=90deg, offset by the skew we want to measure.
		theta := (90 + -houghAngleSpanDeg + float64(i)*houghAngleStepDeg) * math.Pi / 180
		sins[i] = math.Sin(theta)
		coss[i] = math.Cos(theta)
	}
	for _, p := range edges {
		for i := 0; i < nAngles; i++ {
			rho := int(float64(p.x)*coss[i] + float64(p.y)*sins[i])
			acc[i][rho+diag]++
		}
	}

	var maxVote int32
	for i := range acc {
		for _, v := range acc[i] {
			if v > maxVote {
				maxVote = v
			}
		}
	}
	if maxVote < 16 {
		return 0
	}

	cutoff := int32(float64(maxVote) * houghVoteFraction)
	angles := make([]float64, 0, 64)
	for i := range acc {
		for _, v := range acc[i] {
			if v >= cutoff {
				angles = append(angles, -houghAngleSpanDeg+float64(i)*houghAngleStepDeg)
			}
		}
	}
	if len(angles) == 0 {
		return 0
	}
	sort.Float64s(angles)
	skew := angles[len(angles)/2]
	if skew <= -houghAngleSpanDeg || skew >= houghAngleSpanDeg {
		return 0
	}
	return skew
}
