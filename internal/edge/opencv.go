//go:build gocv

package edge

import (
	"image"

	"gocv.io/x/gocv"
)

func init() {
	backend = filters{name: "opencv", bilateral: bilateralCV, canny: cannyCV}
}

func toMat(g *image.Gray) (gocv.Mat, error) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	buf := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		buf = append(buf, g.Pix[y*g.Stride:y*g.Stride+w]...)
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
}

func bilateralCV(g *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	if g.Rect.Empty() {
		return Bilateral(g, diameter, sigmaColor, sigmaSpace)
	}
	src, err := toMat(g)
	if err != nil {
		return Bilateral(g, diameter, sigmaColor, sigmaSpace)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.BilateralFilter(src, &dst, diameter, sigmaColor, sigmaSpace)

	out := image.NewGray(image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()))
	copy(out.Pix, dst.ToBytes())
	return out
}

func cannyCV(g *image.Gray, low, high float64, l2 bool) []uint8 {
	if g.Rect.Empty() {
		return Canny(g, low, high, l2)
	}
	src, err := toMat(g)
	if err != nil {
		return Canny(g, low, high, l2)
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.CannyWithParams(src, &edges, float32(low), float32(high), 3, l2)
	return edges.ToBytes()
}
