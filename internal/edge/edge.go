// Package edge turns a decoded frame into a binary edge mask.
package edge

import (
	"image"
	"math"

	"github.com/1F47E/go-bezier-renderer/internal/logger"
)

// fixed thresholds policy
const (
	PlainLow  = 30
	PlainHigh = 200

	// adaptive thresholds are (1 ± Nudge) * median, median clamped first
	Nudge     = 0.33
	MedianMin = 10
	MedianMax = 245

	BilateralDiameter   = 5
	BilateralSigmaColor = 50
	BilateralSigmaSpace = 50
)

// filters are the image operations behind Extract. The pure Go set is the
// default; building with -tags gocv swaps in OpenCV.
type filters struct {
	name      string
	bilateral func(g *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray
	canny     func(g *image.Gray, low, high float64, l2 bool) []uint8
}

var backend = filters{name: "go", bilateral: Bilateral, canny: Canny}

// Backend names the filter implementation compiled in.
func Backend() string {
	return backend.name
}

type Options struct {
	// Bilateral smooths the frame and derives thresholds from its median.
	Bilateral bool
	// L2Gradient uses the euclidean gradient norm. Only applies with Bilateral.
	L2Gradient bool
}

// Observer is told about the size of every extracted frame.
type Observer interface {
	Observe(width, height int) int
}

// Mask is a W×H edge map, 255 on edges. Row 0 is the bottom row of the
// source image so y grows upwards like on the calculator canvas.
type Mask struct {
	W, H int
	Pix  []uint8
}

func (m *Mask) at(x, y int) uint8 {
	return m.Pix[y*m.W+x]
}

func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

type Extractor struct {
	opts     Options
	observer Observer
}

func NewExtractor(opts Options, observer Observer) *Extractor {
	return &Extractor{opts: opts, observer: observer}
}

func (e *Extractor) Extract(img image.Image) *Mask {
	log := logger.Scope("edge")

	gray := Gray(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()

	var edges []uint8
	if e.opts.Bilateral {
		low, high := Thresholds(Median(gray))
		filtered := backend.bilateral(gray, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace)
		edges = backend.canny(filtered, float64(low), float64(high), e.opts.L2Gradient)
		log.Debugf("adaptive thresholds %d/%d (%s)", low, high, backend.name)
	} else {
		edges = backend.canny(gray, PlainLow, PlainHigh, false)
	}

	if e.observer != nil {
		n := e.observer.Observe(w, h)
		log.Debugf("frame %d extracted (%dx%d)", n, w, h)
	}
	return flip(edges, w, h)
}

// Thresholds derives the hysteresis thresholds from the frame median.
func Thresholds(median float64) (low, high int) {
	nudge := Nudge
	m := math.Max(MedianMin, math.Min(MedianMax, median))
	low = int(math.Max(0, (1-nudge)*m))
	high = int(math.Min(255, (1+nudge)*m))
	return low, high
}

func flip(pix []uint8, w, h int) *Mask {
	m := &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		copy(m.Pix[y*w:(y+1)*w], pix[(h-1-y)*w:(h-y)*w])
	}
	return m
}
