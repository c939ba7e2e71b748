//go:build gocv

package edge

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCVBackend(t *testing.T) {
	assert.Equal(t, "opencv", Backend())
}

func TestOpenCVStepEdge(t *testing.T) {
	g := rect(10, 6, image.Rect(5, 0, 10, 6))
	for _, l2 := range []bool{false, true} {
		edges := cannyCV(g, PlainLow, PlainHigh, l2)
		require.Len(t, edges, 60)
		found := false
		for i, v := range edges {
			if v != 0 {
				found = true
				x := i % 10
				assert.True(t, x == 4 || x == 5, "l2=%v edge at x=%d", l2, x)
			}
		}
		assert.True(t, found, "l2=%v", l2)
	}
}

func TestOpenCVBilateralKeepsFlatImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 7, 5))
	for i := range g.Pix {
		g.Pix[i] = 120
	}
	out := bilateralCV(g, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace)
	assert.Equal(t, g.Pix, out.Pix)
}
