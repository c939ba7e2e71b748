package edge

import (
	"image"
	"math"
)

// Bilateral smooths g while keeping strong intensity steps. diameter is the
// neighbourhood size; only offsets inside the inscribed circle contribute.
// Borders are mirrored without repeating the edge pixel.
func Bilateral(g *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	radius := diameter / 2
	if radius < 1 {
		radius = 1
	}

	var colorWeight [256]float64
	gc := -0.5 / (sigmaColor * sigmaColor)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * gc)
	}

	type tap struct {
		dx, dy int
		w      float64
	}
	gs := -0.5 / (sigmaSpace * sigmaSpace)
	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r := math.Sqrt(float64(dx*dx + dy*dy))
			if r > float64(radius) {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(r * r * gs)})
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v0 := int(g.Pix[y*g.Stride+x])
			var sum, wsum float64
			for _, t := range taps {
				v := int(g.Pix[reflect101(y+t.dy, h)*g.Stride+reflect101(x+t.dx, w)])
				d := v - v0
				if d < 0 {
					d = -d
				}
				wt := t.w * colorWeight[d]
				sum += float64(v) * wt
				wsum += wt
			}
			out.Pix[y*out.Stride+x] = uint8(math.RoundToEven(sum / wsum))
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}
