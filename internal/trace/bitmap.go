package trace

// Bitmap is a W×H bilevel image. (x, y) is the unit square [x,x+1]×[y,y+1];
// y grows upwards.
type Bitmap struct {
	W, H int
	bits []bool
}

func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, bits: make([]bool, w*h)}
}

// NewBitmapFrom builds a bitmap from row-major values, row 0 first. Every
// non-zero value is set; masks do not have to be strictly 0/1.
func NewBitmapFrom(w, h int, pix []uint8) *Bitmap {
	bm := NewBitmap(w, h)
	for i := 0; i < w*h && i < len(pix); i++ {
		bm.bits[i] = pix[i] > 0
	}
	return bm
}

// Get reports false outside the bitmap.
func (bm *Bitmap) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= bm.W || y >= bm.H {
		return false
	}
	return bm.bits[y*bm.W+x]
}

func (bm *Bitmap) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= bm.W || y >= bm.H {
		return
	}
	bm.bits[y*bm.W+x] = v
}

func (bm *Bitmap) flip(x, y int) {
	bm.bits[y*bm.W+x] = !bm.bits[y*bm.W+x]
}

func (bm *Bitmap) clone() *Bitmap {
	c := &Bitmap{W: bm.W, H: bm.H, bits: make([]bool, len(bm.bits))}
	copy(c.bits, bm.bits)
	return c
}

// findNext scans rows from y downwards, left to right, starting at (x, y).
func (bm *Bitmap) findNext(x, y int) (int, int, bool) {
	for ; y >= 0; y-- {
		for ; x < bm.W; x++ {
			if bm.bits[y*bm.W+x] {
				return x, y, true
			}
		}
		x = 0
	}
	return 0, 0, false
}

// xorPath inverts the interior of p.
func (bm *Bitmap) xorPath(p *path) {
	if len(p.pt) == 0 {
		return
	}
	y1 := p.pt[len(p.pt)-1].y
	xa := p.pt[0].x
	for _, q := range p.pt {
		if q.y == y1 {
			continue
		}
		row := min(q.y, y1)
		lo, hi := q.x, xa
		if lo > hi {
			lo, hi = hi, lo
		}
		for x := lo; x < hi; x++ {
			bm.flip(x, row)
		}
		y1 = q.y
	}
}
