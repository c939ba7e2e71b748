package edge

import "image"

// tan(22.5°) in Q15
const tg22 = 13573

const (
	none uint8 = iota
	weak
	strong
)

// Canny marks edge pixels with 255. Gradients come from a 3x3 Sobel operator
// with replicated borders; the magnitude is |gx|+|gy|, or gx²+gy² compared
// against squared thresholds when l2 is set. Pixels above high seed the
// edges, pixels above low join them through 8-connected chains.
func Canny(g *image.Gray, low, high float64, l2 bool) []uint8 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if low > high {
		low, high = high, low
	}
	if l2 {
		low, high = low*low, high*high
	}
	lo, hi := int(low), int(high)

	px := func(x, y int) int {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return int(g.Pix[y*g.Stride+x])
	}

	gx := make([]int, w*h)
	gy := make([]int, w*h)
	mag := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			dy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			i := y*w + x
			gx[i], gy[i] = dx, dy
			if l2 {
				mag[i] = dx*dx + dy*dy
			} else {
				mag[i] = abs(dx) + abs(dy)
			}
		}
	}

	at := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= lo {
				continue
			}
			xs, ys := gx[i], gy[i]
			ax, ay := abs(xs), abs(ys)<<15
			tg22x := ax * tg22

			var keep bool
			if ay < tg22x {
				keep = m > at(x-1, y) && m >= at(x+1, y)
			} else if tg67x := tg22x + ax<<16; ay > tg67x {
				keep = m > at(x, y-1) && m >= at(x, y+1)
			} else {
				s := 1
				if (xs ^ ys) < 0 {
					s = -1
				}
				keep = m > at(x-s, y-1) && m > at(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > hi {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if j := ny*w + nx; state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	out := make([]uint8, w*h)
	for i, s := range state {
		if s == strong {
			out[i] = 255
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
