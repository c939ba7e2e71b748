package trace

import "math"

const infty = 10000000

func (p *path) calcSums() {
	p.x0, p.y0 = p.pt[0].x, p.pt[0].y
	p.sums = make([]sum, len(p.pt)+1)
	for i, q := range p.pt {
		x := float64(q.x - p.x0)
		y := float64(q.y - p.y0)
		s := p.sums[i]
		p.sums[i+1] = sum{
			x:  s.x + x,
			y:  s.y + y,
			xy: s.xy + x*y,
			x2: s.x2 + x*x,
			y2: s.y2 + y*y,
		}
	}
}

// calcLon sets lon[i] to the furthest point reachable from i by a straight
// subpath.
func (p *path) calcLon() {
	pt := p.pt
	n := len(pt)
	nc := make([]int, n)
	pivk := make([]int, n)
	p.lon = make([]int, n)

	// nc[i]: next corner after i; there is always a direction change at 0
	k := 0
	for i := n - 1; i >= 0; i-- {
		if pt[i].x != pt[k].x && pt[i].y != pt[k].y {
			k = i + 1
		}
		nc[i] = k
	}

	for i := n - 1; i >= 0; i-- {
		var ct [4]int
		var constraint [2]ipoint

		next := pt[mod(i+1, n)]
		ct[(3+3*(next.x-pt[i].x)+(next.y-pt[i].y))/2]++

		k := nc[i]
		k1 := i
		found := false
		for {
			ct[(3+3*isign(pt[k].x-pt[k1].x)+isign(pt[k].y-pt[k1].y))/2]++

			// all four directions seen
			if ct[0] > 0 && ct[1] > 0 && ct[2] > 0 && ct[3] > 0 {
				pivk[i] = k1
				found = true
				break
			}

			cur := ipoint{pt[k].x - pt[i].x, pt[k].y - pt[i].y}
			if xprod(constraint[0], cur) < 0 || xprod(constraint[1], cur) > 0 {
				break
			}

			if iabs(cur.x) > 1 || iabs(cur.y) > 1 {
				off := ipoint{
					cur.x + pm(cur.y >= 0 && (cur.y > 0 || cur.x < 0)),
					cur.y + pm(cur.x <= 0 && (cur.x < 0 || cur.y < 0)),
				}
				if xprod(constraint[0], off) >= 0 {
					constraint[0] = off
				}
				off = ipoint{
					cur.x + pm(cur.y <= 0 && (cur.y < 0 || cur.x < 0)),
					cur.y + pm(cur.x >= 0 && (cur.x > 0 || cur.y < 0)),
				}
				if xprod(constraint[1], off) <= 0 {
					constraint[1] = off
				}
			}
			k1 = k
			k = nc[k1]
			if !cyclic(k, i, k1) {
				break
			}
		}
		if found {
			continue
		}

		// k1 satisfied the constraint, k violates it: find the last point
		// between them that still satisfies it
		dk := ipoint{isign(pt[k].x - pt[k1].x), isign(pt[k].y - pt[k1].y)}
		cur := ipoint{pt[k1].x - pt[i].x, pt[k1].y - pt[i].y}
		a := xprod(constraint[0], cur)
		b := xprod(constraint[0], dk)
		c := xprod(constraint[1], cur)
		d := xprod(constraint[1], dk)

		j := infty
		if b < 0 {
			j = floordiv(a, -b)
		}
		if d > 0 {
			j = min(j, floordiv(-c, d))
		}
		pivk[i] = mod(k1+j, n)
	}

	j := pivk[n-1]
	p.lon[n-1] = j
	for i := n - 2; i >= 0; i-- {
		if cyclic(i+1, pivk[i], j) {
			j = pivk[i]
		}
		p.lon[i] = j
	}
	for i := n - 1; cyclic(mod(i+1, n), j, p.lon[i]); i-- {
		p.lon[i] = j
	}
}

// penalty3 is the cost of approximating pt[i..j] by one straight segment.
func (p *path) penalty3(i, j int) float64 {
	n := len(p.pt)
	pt, sums := p.pt, p.sums

	var x, y, xy, x2, y2, k float64
	if j >= n {
		j -= n
		x = sums[j+1].x - sums[i].x + sums[n].x
		y = sums[j+1].y - sums[i].y + sums[n].y
		x2 = sums[j+1].x2 - sums[i].x2 + sums[n].x2
		xy = sums[j+1].xy - sums[i].xy + sums[n].xy
		y2 = sums[j+1].y2 - sums[i].y2 + sums[n].y2
		k = float64(j + 1 - i + n)
	} else {
		x = sums[j+1].x - sums[i].x
		y = sums[j+1].y - sums[i].y
		x2 = sums[j+1].x2 - sums[i].x2
		xy = sums[j+1].xy - sums[i].xy
		y2 = sums[j+1].y2 - sums[i].y2
		k = float64(j + 1 - i)
	}

	px := float64(pt[i].x+pt[j].x)/2.0 - float64(pt[0].x)
	py := float64(pt[i].y+pt[j].y)/2.0 - float64(pt[0].y)
	ey := float64(pt[j].x - pt[i].x)
	ex := -float64(pt[j].y - pt[i].y)

	a := (x2-2*x*px)/k + px*px
	b := (xy-x*py-y*px)/k + px*py
	c := (y2-2*y*py)/k + py*py

	s := ex*ex*a + 2*ex*ey*b + ey*ey*c
	return math.Sqrt(s)
}

// bestPolygon picks the polygon with the fewest segments, then the lowest
// total penalty, among those using only straight subpaths.
func (p *path) bestPolygon() {
	n := len(p.pt)
	pen := make([]float64, n+1)
	prev := make([]int, n+1)
	clip0 := make([]int, n)
	clip1 := make([]int, n+1)
	seg0 := make([]int, n+1)
	seg1 := make([]int, n+1)

	for i := 0; i < n; i++ {
		c := mod(p.lon[mod(i-1, n)]-1, n)
		if c == i {
			c = mod(i+1, n)
		}
		if c < i {
			clip0[i] = n
		} else {
			clip0[i] = c
		}
	}

	j := 1
	for i := 0; i < n; i++ {
		for j <= clip0[i] {
			clip1[j] = i
			j++
		}
	}

	i := 0
	for j = 0; i < n; j++ {
		seg0[j] = i
		i = clip0[i]
	}
	seg0[j] = n
	m := j

	i = n
	for j = m; j > 0; j-- {
		seg1[j] = i
		i = clip1[i]
	}
	seg1[0] = 0

	pen[0] = 0
	for j = 1; j <= m; j++ {
		for i = seg1[j]; i <= seg0[j]; i++ {
			best := -1.0
			for k := seg0[j-1]; k >= clip1[i]; k-- {
				thispen := p.penalty3(k, i) + pen[k]
				if best < 0 || thispen < best {
					prev[i] = k
					best = thispen
				}
			}
			pen[i] = best
		}
	}

	p.po = make([]int, m)
	for i, j = n, m-1; i > 0; j-- {
		i = prev[i]
		p.po[j] = i
	}
}

func mod(a, n int) int {
	if a >= n {
		return a % n
	}
	if a >= 0 {
		return a
	}
	return n - 1 - (-1-a)%n
}

func floordiv(a, n int) int {
	if a >= 0 {
		return a / n
	}
	return -1 - (-1-a)/n
}

// cyclic reports a <= b < c in cyclic order.
func cyclic(a, b, c int) bool {
	if a <= c {
		return a <= b && b < c
	}
	return a <= b || b < c
}

func xprod(p1, p2 ipoint) int {
	return p1.x*p2.y - p1.y*p2.x
}

func isign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func pm(b bool) int {
	if b {
		return 1
	}
	return -1
}
