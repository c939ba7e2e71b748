package trace

import "math"

// cos(179°)
const cos179 = -0.999847695156391239157

type segTag uint8

const (
	tagCurve segTag = iota
	tagCorner
)

type privCurve struct {
	n      int
	tag    []segTag
	c      [][3]Point
	vertex []Point
	alpha  []float64
	alpha0 []float64
	beta   []float64
}

func newPrivCurve(n int) *privCurve {
	return &privCurve{
		n:      n,
		tag:    make([]segTag, n),
		c:      make([][3]Point, n),
		vertex: make([]Point, n),
		alpha:  make([]float64, n),
		alpha0: make([]float64, n),
		beta:   make([]float64, n),
	}
}

type quadForm [3][3]float64

func (q *quadForm) eval(w Point) float64 {
	v := [3]float64{w.X, w.Y, 1}
	s := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += v[i] * q[i][j] * v[j]
		}
	}
	return s
}

// pointSlope fits a line through pt[i..j] and returns its centre and unit
// direction.
func (p *path) pointSlope(i, j int) (ctr, dir Point) {
	n := len(p.pt)
	sums := p.sums

	r := 0
	for j >= n {
		j -= n
		r++
	}
	for i >= n {
		i -= n
		r--
	}
	for j < 0 {
		j += n
		r--
	}
	for i < 0 {
		i += n
		r++
	}

	rf := float64(r)
	x := sums[j+1].x - sums[i].x + rf*sums[n].x
	y := sums[j+1].y - sums[i].y + rf*sums[n].y
	x2 := sums[j+1].x2 - sums[i].x2 + rf*sums[n].x2
	xy := sums[j+1].xy - sums[i].xy + rf*sums[n].xy
	y2 := sums[j+1].y2 - sums[i].y2 + rf*sums[n].y2
	k := float64(j + 1 - i + r*n)

	ctr = Point{x / k, y / k}

	a := (x2 - x*x/k) / k
	b := (xy - x*y/k) / k
	c := (y2 - y*y/k) / k

	lambda2 := (a + c + math.Sqrt((a-c)*(a-c)+4*b*b)) / 2
	a -= lambda2
	c -= lambda2

	var l float64
	if math.Abs(a) >= math.Abs(c) {
		l = math.Sqrt(a*a + b*b)
		if l != 0 {
			dir = Point{-b / l, a / l}
		}
	} else {
		l = math.Sqrt(c*c + b*b)
		if l != 0 {
			dir = Point{-c / l, b / l}
		}
	}
	if l == 0 {
		dir = Point{}
	}
	return ctr, dir
}

// adjustVertices places each polygon corner at the point closest to both
// adjacent fitted lines, within half a pixel of the original corner.
func (p *path) adjustVertices() {
	m := len(p.po)
	po := p.po
	n := len(p.pt)
	x0, y0 := float64(p.x0), float64(p.y0)

	p.curve = newPrivCurve(m)

	ctr := make([]Point, m)
	dir := make([]Point, m)
	q := make([]quadForm, m)

	for i := 0; i < m; i++ {
		j := po[mod(i+1, m)]
		j = mod(j-po[i], n) + po[i]
		ctr[i], dir[i] = p.pointSlope(po[i], j)
	}

	for i := 0; i < m; i++ {
		d := dir[i].X*dir[i].X + dir[i].Y*dir[i].Y
		if d == 0 {
			continue
		}
		v := [3]float64{dir[i].Y, -dir[i].X, 0}
		v[2] = -v[1]*ctr[i].Y - v[0]*ctr[i].X
		for l := 0; l < 3; l++ {
			for k := 0; k < 3; k++ {
				q[i][l][k] = v[l] * v[k] / d
			}
		}
	}

	for i := 0; i < m; i++ {
		s := Point{float64(p.pt[po[i]].x) - x0, float64(p.pt[po[i]].y) - y0}
		j := mod(i-1, m)

		var Q quadForm
		for l := 0; l < 3; l++ {
			for k := 0; k < 3; k++ {
				Q[l][k] = q[j][l][k] + q[i][l][k]
			}
		}

		var w Point
		for {
			det := Q[0][0]*Q[1][1] - Q[0][1]*Q[1][0]
			if det != 0 {
				w.X = (-Q[0][2]*Q[1][1] + Q[1][2]*Q[0][1]) / det
				w.Y = (Q[0][2]*Q[1][0] - Q[1][2]*Q[0][0]) / det
				break
			}

			// degenerate: add a line through s
			var v [3]float64
			switch {
			case Q[0][0] > Q[1][1]:
				v[0], v[1] = -Q[0][1], Q[0][0]
			case Q[1][1] != 0:
				v[0], v[1] = -Q[1][1], Q[1][0]
			default:
				v[0], v[1] = 1, 0
			}
			d := v[0]*v[0] + v[1]*v[1]
			v[2] = -v[1]*s.Y - v[0]*s.X
			for l := 0; l < 3; l++ {
				for k := 0; k < 3; k++ {
					Q[l][k] += v[l] * v[k] / d
				}
			}
		}

		if math.Abs(w.X-s.X) <= 0.5 && math.Abs(w.Y-s.Y) <= 0.5 {
			p.curve.vertex[i] = Point{w.X + x0, w.Y + y0}
			continue
		}

		// the optimum lies outside the unit square around s: search its
		// boundary
		best := Q.eval(s)
		xmin, ymin := s.X, s.Y

		if Q[0][0] != 0 {
			for z := 0; z < 2; z++ {
				w.Y = s.Y - 0.5 + float64(z)
				w.X = -(Q[0][1]*w.Y + Q[0][2]) / Q[0][0]
				cand := Q.eval(w)
				if math.Abs(w.X-s.X) <= 0.5 && cand < best {
					best, xmin, ymin = cand, w.X, w.Y
				}
			}
		}
		if Q[1][1] != 0 {
			for z := 0; z < 2; z++ {
				w.X = s.X - 0.5 + float64(z)
				w.Y = -(Q[1][0]*w.X + Q[1][2]) / Q[1][1]
				cand := Q.eval(w)
				if math.Abs(w.Y-s.Y) <= 0.5 && cand < best {
					best, xmin, ymin = cand, w.X, w.Y
				}
			}
		}
		for l := 0; l < 2; l++ {
			for k := 0; k < 2; k++ {
				w = Point{s.X - 0.5 + float64(l), s.Y - 0.5 + float64(k)}
				cand := Q.eval(w)
				if cand < best {
					best, xmin, ymin = cand, w.X, w.Y
				}
			}
		}
		p.curve.vertex[i] = Point{xmin + x0, ymin + y0}
	}
}

func (c *privCurve) reverse() {
	for i, j := 0, c.n-1; i < j; i, j = i+1, j-1 {
		c.vertex[i], c.vertex[j] = c.vertex[j], c.vertex[i]
	}
}

// smooth turns every vertex into a corner or a curve segment depending on
// how sharp the polygon bends there.
func (c *privCurve) smooth(alphaMax float64) {
	m := c.n
	for i := 0; i < m; i++ {
		j := mod(i+1, m)
		k := mod(i+2, m)
		p4 := interval(0.5, c.vertex[k], c.vertex[j])

		var alpha float64
		if denom := ddenom(c.vertex[i], c.vertex[k]); denom != 0 {
			dd := math.Abs(dpara(c.vertex[i], c.vertex[j], c.vertex[k]) / denom)
			if dd > 1 {
				alpha = 1 - 1.0/dd
			}
			alpha /= 0.75
		} else {
			alpha = 4 / 3.0
		}
		c.alpha0[j] = alpha

		if alpha >= alphaMax {
			c.tag[j] = tagCorner
			c.c[j][1] = c.vertex[j]
			c.c[j][2] = p4
		} else {
			alpha = math.Min(math.Max(alpha, 0.55), 1)
			c.tag[j] = tagCurve
			c.c[j][0] = interval(0.5+0.5*alpha, c.vertex[i], c.vertex[j])
			c.c[j][1] = interval(0.5+0.5*alpha, c.vertex[k], c.vertex[j])
			c.c[j][2] = p4
		}
		c.alpha[j] = alpha
		c.beta[j] = 0.5
	}
}

type opti struct {
	pen   float64
	c     [2]Point
	t, s  float64
	alpha float64
}

// optiPenalty tries to replace segments i+1..j by a single curve. It
// returns false when that is not possible within tolerance.
func (c *privCurve) optiPenalty(i, j int, tolerance float64, convc []int, areac []float64) (opti, bool) {
	var res opti
	m := c.n
	if i == j {
		return res, false
	}

	i1 := mod(i+1, m)
	k1 := i1
	conv := convc[k1]
	if conv == 0 {
		return res, false
	}
	d := ddist(c.vertex[i], c.vertex[i1])
	for k := k1; k != j; k = k1 {
		k1 = mod(k+1, m)
		k2 := mod(k+2, m)
		if convc[k1] != conv {
			return res, false
		}
		if fsign(cprod(c.vertex[i], c.vertex[i1], c.vertex[k1], c.vertex[k2])) != conv {
			return res, false
		}
		if iprod1(c.vertex[i], c.vertex[i1], c.vertex[k1], c.vertex[k2]) < d*ddist(c.vertex[k1], c.vertex[k2])*cos179 {
			return res, false
		}
	}

	p0 := c.c[mod(i, m)][2]
	p1 := c.vertex[mod(i+1, m)]
	p2 := c.vertex[mod(j, m)]
	p3 := c.c[mod(j, m)][2]

	area := areac[j] - areac[i]
	area -= dpara(c.vertex[0], c.c[i][2], c.c[j][2]) / 2
	if i >= j {
		area += areac[m]
	}

	a1 := dpara(p0, p1, p2)
	a2 := dpara(p0, p1, p3)
	a3 := dpara(p0, p2, p3)
	a4 := a1 + a3 - a2

	if a2 == a1 {
		return res, false
	}

	t := a3 / (a3 - a4)
	s := a2 / (a2 - a1)
	A := a2 * t / 2.0
	if A == 0 {
		return res, false
	}

	R := area / A
	alpha := 2 - math.Sqrt(4-R/0.3)

	res.c[0] = interval(t*alpha, p0, p1)
	res.c[1] = interval(s*alpha, p3, p2)
	res.alpha = alpha
	res.t = t
	res.s = s

	p1, p2 = res.c[0], res.c[1]

	// the new curve must stay close to the polygon edges
	for k := mod(i+1, m); k != j; k = k1 {
		k1 = mod(k+1, m)
		t := tangent(p0, p1, p2, p3, c.vertex[k], c.vertex[k1])
		if t < -0.5 {
			return res, false
		}
		pt := bezier(t, p0, p1, p2, p3)
		d := ddist(c.vertex[k], c.vertex[k1])
		if d == 0 {
			return res, false
		}
		d1 := dpara(c.vertex[k], c.vertex[k1], pt) / d
		if math.Abs(d1) > tolerance {
			return res, false
		}
		if iprod(c.vertex[k], c.vertex[k1], pt) < 0 || iprod(c.vertex[k1], c.vertex[k], pt) < 0 {
			return res, false
		}
		res.pen += d1 * d1
	}

	// and close to the old curve's corners
	for k := i; k != j; k = k1 {
		k1 = mod(k+1, m)
		t := tangent(p0, p1, p2, p3, c.c[k][2], c.c[k1][2])
		if t < -0.5 {
			return res, false
		}
		pt := bezier(t, p0, p1, p2, p3)
		d := ddist(c.c[k][2], c.c[k1][2])
		if d == 0 {
			return res, false
		}
		d1 := dpara(c.c[k][2], c.c[k1][2], pt) / d
		d2 := dpara(c.c[k][2], c.c[k1][2], c.vertex[k1]) / d
		d2 *= 0.75 * c.alpha[k1]
		if d2 < 0 {
			d1, d2 = -d1, -d2
		}
		if d1 < d2-tolerance {
			return res, false
		}
		if d1 < d2 {
			res.pen += (d1 - d2) * (d1 - d2)
		}
	}
	return res, true
}

// optiCurve joins runs of curve segments into fewer Bezier segments.
func (c *privCurve) optiCurve(tolerance float64) *privCurve {
	m := c.n
	pt := make([]int, m+1)
	pen := make([]float64, m+1)
	length := make([]int, m+1)
	opt := make([]opti, m+1)
	convc := make([]int, m)
	areac := make([]float64, m+1)

	for i := 0; i < m; i++ {
		if c.tag[i] == tagCurve {
			convc[i] = fsign(dpara(c.vertex[mod(i-1, m)], c.vertex[i], c.vertex[mod(i+1, m)]))
		}
	}

	area := 0.0
	p0 := c.vertex[0]
	for i := 0; i < m; i++ {
		i1 := mod(i+1, m)
		if c.tag[i1] == tagCurve {
			alpha := c.alpha[i1]
			area += 0.3 * alpha * (4 - alpha) * dpara(c.c[i][2], c.vertex[i1], c.c[i1][2]) / 2
			area += dpara(p0, c.c[i][2], c.c[i1][2]) / 2
		}
		areac[i+1] = area
	}

	pt[0] = -1
	for j := 1; j <= m; j++ {
		pt[j] = j - 1
		pen[j] = pen[j-1]
		length[j] = length[j-1] + 1

		for i := j - 2; i >= 0; i-- {
			o, ok := c.optiPenalty(i, mod(j, m), tolerance, convc, areac)
			if !ok {
				break
			}
			if length[j] > length[i]+1 || (length[j] == length[i]+1 && pen[j] > pen[i]+o.pen) {
				pt[j] = i
				pen[j] = pen[i] + o.pen
				length[j] = length[i] + 1
				opt[j] = o
			}
		}
	}

	om := length[m]
	oc := newPrivCurve(om)
	s := make([]float64, om)
	t := make([]float64, om)

	j := m
	for i := om - 1; i >= 0; i-- {
		jm := mod(j, m)
		if pt[j] == j-1 {
			oc.tag[i] = c.tag[jm]
			oc.c[i] = c.c[jm]
			oc.vertex[i] = c.vertex[jm]
			oc.alpha[i] = c.alpha[jm]
			oc.alpha0[i] = c.alpha0[jm]
			oc.beta[i] = c.beta[jm]
			s[i], t[i] = 1, 1
		} else {
			oc.tag[i] = tagCurve
			oc.c[i][0] = opt[j].c[0]
			oc.c[i][1] = opt[j].c[1]
			oc.c[i][2] = c.c[jm][2]
			oc.vertex[i] = interval(opt[j].s, c.c[jm][2], c.vertex[jm])
			oc.alpha[i] = opt[j].alpha
			oc.alpha0[i] = opt[j].alpha
			s[i], t[i] = opt[j].s, opt[j].t
		}
		j = pt[j]
	}

	for i := 0; i < om; i++ {
		i1 := mod(i+1, om)
		oc.beta[i] = s[i] / (s[i] + t[i1])
	}
	return oc
}

func interval(lambda float64, a, b Point) Point {
	return Point{a.X + lambda*(b.X-a.X), a.Y + lambda*(b.Y-a.Y)}
}

// dpara is twice the signed area of the triangle p0 p1 p2.
func dpara(p0, p1, p2 Point) float64 {
	return (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
}

// ddenom is the l-infinity denominator used by smooth.
func ddenom(p0, p2 Point) float64 {
	ry := fsign(p2.X - p0.X)
	rx := -fsign(p2.Y - p0.Y)
	return float64(ry)*(p2.X-p0.X) - float64(rx)*(p2.Y-p0.Y)
}

func cprod(p0, p1, p2, p3 Point) float64 {
	return (p1.X-p0.X)*(p3.Y-p2.Y) - (p3.X-p2.X)*(p1.Y-p0.Y)
}

func iprod(p0, p1, p2 Point) float64 {
	return (p1.X-p0.X)*(p2.X-p0.X) + (p1.Y-p0.Y)*(p2.Y-p0.Y)
}

func iprod1(p0, p1, p2, p3 Point) float64 {
	return (p1.X-p0.X)*(p3.X-p2.X) + (p1.Y-p0.Y)*(p3.Y-p2.Y)
}

func ddist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func bezier(t float64, p0, p1, p2, p3 Point) Point {
	s := 1 - t
	return Point{
		X: s*s*s*p0.X + 3*(s*s*t)*p1.X + 3*(t*t*s)*p2.X + t*t*t*p3.X,
		Y: s*s*s*p0.Y + 3*(s*s*t)*p1.Y + 3*(t*t*s)*p2.Y + t*t*t*p3.Y,
	}
}

// tangent returns the parameter in [0,1] where the Bezier curve is parallel
// to q0q1, or -1 if there is none.
func tangent(p0, p1, p2, p3, q0, q1 Point) float64 {
	A := cprod(p0, p1, q0, q1)
	B := cprod(p1, p2, q0, q1)
	C := cprod(p2, p3, q0, q1)

	a := A - 2*B + C
	b := -2*A + 2*B
	c := A

	d := b*b - 4*a*c
	if a == 0 || d < 0 {
		return -1
	}

	s := math.Sqrt(d)
	r1 := (-b + s) / (2 * a)
	r2 := (-b - s) / (2 * a)
	switch {
	case r1 >= 0 && r1 <= 1:
		return r1
	case r2 >= 0 && r2 <= 1:
		return r2
	}
	return -1
}

func fsign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
