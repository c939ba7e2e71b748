package edge

import (
	"image"
	"image/color"
)

// luma weights in 14-bit fixed point, rounding half up (OpenCV BGR2GRAY)
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
)

// Gray converts img to 8-bit luma, Y = 0.299R + 0.587G + 0.114B in fixed
// point, on the non-premultiplied channels. The result is anchored at (0,0).
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return g
	}
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x] = luma(c.R, c.G, c.B)
		}
	}
	return g
}

// Median is the median intensity; for an even pixel count it is the mean of
// the two middle values.
func Median(g *image.Gray) float64 {
	var hist [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			hist[v]++
		}
	}
	n := w * h
	if n == 0 {
		return 0
	}
	lo := nth(&hist, (n-1)/2)
	if n%2 == 1 {
		return float64(lo)
	}
	hi := nth(&hist, n/2)
	return (float64(lo) + float64(hi)) / 2
}

// nth returns the k-th (0-based) smallest value of the histogram.
func nth(hist *[256]int, k int) int {
	seen := 0
	for v, c := range hist {
		seen += c
		if seen > k {
			return v
		}
	}
	return 255
}

func luma(r, g, b uint8) uint8 {
	y := lumaR*int(r) + lumaG*int(g) + lumaB*int(b) + 1<<(lumaShift-1)
	return uint8(y >> lumaShift)
}
