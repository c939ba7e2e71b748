package trace

type ipoint struct {
	x, y int
}

type sum struct {
	x, y, xy, x2, y2 float64
}

// path is one closed boundary between set and unset pixels.
type path struct {
	pt       []ipoint
	area     int
	positive bool

	x0, y0 int
	sums   []sum
	lon    []int
	po     []int
	curve  *privCurve

	minX, minY, maxX, maxY int
	children               []*path
}

// decompose finds all boundaries of bm, drops the ones enclosing at most
// turdSize pixels and returns the rest outer paths first, each followed by
// its holes.
func decompose(bm *Bitmap, turdSize int, policy TurnPolicy) []*path {
	work := bm.clone()
	var paths []*path

	x, y := 0, work.H-1
	for {
		var ok bool
		x, y, ok = work.findNext(x, y)
		if !ok {
			break
		}
		p := findPath(work, x, y+1, bm.Get(x, y), policy)
		work.xorPath(p)
		if p.area > turdSize {
			paths = append(paths, p)
		}
	}
	return arrange(paths)
}

// findPath walks the boundary starting at the upper left corner (x0, y0) of
// a set pixel, keeping set pixels on the left.
func findPath(bm *Bitmap, x0, y0 int, positive bool, policy TurnPolicy) *path {
	x, y := x0, y0
	dirx, diry := 0, -1
	p := &path{positive: positive, minX: x0, maxX: x0, minY: y0, maxY: y0}

	for {
		p.pt = append(p.pt, ipoint{x, y})
		p.minX, p.maxX = min(p.minX, x), max(p.maxX, x)
		p.minY, p.maxY = min(p.minY, y), max(p.maxY, y)

		x += dirx
		y += diry
		p.area += x * diry

		if x == x0 && y == y0 {
			break
		}

		c := bm.Get(x+(dirx+diry-1)/2, y+(diry-dirx-1)/2)
		d := bm.Get(x+(dirx-diry-1)/2, y+(diry+dirx-1)/2)

		switch {
		case c && !d:
			if turnRight(bm, policy, positive, x, y) {
				dirx, diry = diry, -dirx
			} else {
				dirx, diry = -diry, dirx
			}
		case c:
			dirx, diry = diry, -dirx
		case !d:
			dirx, diry = -diry, dirx
		}
	}
	return p
}

// turnRight resolves an ambiguous diagonal pixel pair.
func turnRight(bm *Bitmap, policy TurnPolicy, positive bool, x, y int) bool {
	switch policy {
	case TurnRight:
		return true
	case TurnBlack:
		return positive
	case TurnWhite:
		return !positive
	case TurnMajority:
		return majority(bm, x, y)
	case TurnMinority:
		return !majority(bm, x, y)
	}
	return false
}

// majority reports whether set pixels dominate around corner (x, y),
// checked on growing square rings until one colour wins.
func majority(bm *Bitmap, x, y int) bool {
	for i := 2; i < 5; i++ {
		ct := 0
		for a := -i + 1; a <= i-1; a++ {
			ct += vote(bm.Get(x+a, y+i-1))
			ct += vote(bm.Get(x+i-1, y+a-1))
			ct += vote(bm.Get(x+a-1, y-i))
			ct += vote(bm.Get(x-i, y+a))
		}
		if ct > 0 {
			return true
		} else if ct < 0 {
			return false
		}
	}
	return false
}

func vote(b bool) int {
	if b {
		return 1
	}
	return -1
}

// arrange builds the containment tree and flattens it: every outer path is
// followed by its holes, shapes inside holes come after their level.
func arrange(paths []*path) []*path {
	var roots []*path
	for i, p := range paths {
		px, py := p.pt[0].x, p.pt[0].y-1
		var parent *path
		for j, q := range paths {
			if i == j || px < q.minX || px >= q.maxX || py < q.minY || py >= q.maxY {
				continue
			}
			if (parent == nil || q.area < parent.area) && q.contains(px, py) {
				parent = q
			}
		}
		if parent == nil {
			roots = append(roots, p)
		} else {
			parent.children = append(parent.children, p)
		}
	}

	out := make([]*path, 0, len(paths))
	groups := [][]*path{roots}
	for len(groups) > 0 {
		group := groups[0]
		groups = groups[1:]
		for _, p := range group {
			out = append(out, p)
			for _, hole := range p.children {
				out = append(out, hole)
				if len(hole.children) > 0 {
					groups = append(groups, hole.children)
				}
			}
		}
	}
	return out
}

// contains tests pixel (px, py) by counting the boundary's vertical edges
// to its right on that row.
func (p *path) contains(px, py int) bool {
	inside := false
	n := len(p.pt)
	for k := 0; k < n; k++ {
		a, b := p.pt[k], p.pt[(k+1)%n]
		if a.x != b.x || a.x <= px {
			continue
		}
		if min(a.y, b.y) == py {
			inside = !inside
		}
	}
	return inside
}
