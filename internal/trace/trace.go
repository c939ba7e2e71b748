// Package trace converts bilevel bitmaps into closed outlines made of
// straight corner segments and cubic Bezier segments.
package trace

import (
	"errors"
	"fmt"
)

// TurnPolicy decides how ambiguous diagonal pixel pairs are resolved while
// walking a boundary.
type TurnPolicy int

const (
	TurnBlack TurnPolicy = iota
	TurnWhite
	TurnLeft
	TurnRight
	TurnMinority
	TurnMajority
)

func (t TurnPolicy) String() string {
	switch t {
	case TurnBlack:
		return "black"
	case TurnWhite:
		return "white"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case TurnMinority:
		return "minority"
	case TurnMajority:
		return "majority"
	}
	return fmt.Sprintf("TurnPolicy(%d)", int(t))
}

type Params struct {
	// TurdSize drops outlines enclosing at most this many pixels.
	TurdSize   int
	TurnPolicy TurnPolicy
	// AlphaMax is the corner threshold; higher values give smoother
	// outlines.
	AlphaMax float64
	// OptiCurve joins adjacent curve segments when the result stays within
	// OptTolerance.
	OptiCurve    bool
	OptTolerance float64
}

var DefaultParams = Params{
	TurdSize:     2,
	TurnPolicy:   TurnMinority,
	AlphaMax:     1.0,
	OptiCurve:    true,
	OptTolerance: 0.5,
}

var ErrParams = errors.New("invalid trace parameters")

func (p Params) Validate() error {
	switch {
	case p.TurdSize < 0:
		return fmt.Errorf("%w: turd size %d", ErrParams, p.TurdSize)
	case p.TurnPolicy < TurnBlack || p.TurnPolicy > TurnMajority:
		return fmt.Errorf("%w: %s", ErrParams, p.TurnPolicy)
	case p.AlphaMax < 0:
		return fmt.Errorf("%w: alpha max %g", ErrParams, p.AlphaMax)
	case p.OptTolerance < 0:
		return fmt.Errorf("%w: tolerance %g", ErrParams, p.OptTolerance)
	}
	return nil
}

type Point struct {
	X, Y float64
}

// Segment ends at End. A corner segment goes straight to C and then to End,
// a curve segment is the cubic Bezier through C1 and C2.
type Segment struct {
	Corner bool
	C      Point
	C1, C2 Point
	End    Point
}

// Curve is closed: the last segment ends at Start.
type Curve struct {
	Start    Point
	Segments []Segment
	// Positive is false for holes.
	Positive bool
}

type Path struct {
	Curves []Curve
}

func (p Path) Empty() bool {
	return len(p.Curves) == 0
}

// Trace outlines every set region of bm. Outer curves come first, each
// followed by its holes.
func Trace(bm *Bitmap, params Params) (Path, error) {
	if err := params.Validate(); err != nil {
		return Path{}, err
	}
	if bm == nil || bm.W == 0 || bm.H == 0 {
		return Path{}, nil
	}

	var out Path
	for _, p := range decompose(bm, params.TurdSize, params.TurnPolicy) {
		p.calcSums()
		p.calcLon()
		p.bestPolygon()
		p.adjustVertices()
		if !p.positive {
			p.curve.reverse()
		}
		p.curve.smooth(params.AlphaMax)
		c := p.curve
		if params.OptiCurve {
			c = c.optiCurve(params.OptTolerance)
		}
		out.Curves = append(out.Curves, c.export(p.positive))
	}
	return out, nil
}

func (c *privCurve) export(positive bool) Curve {
	out := Curve{
		Start:    c.c[c.n-1][2],
		Segments: make([]Segment, c.n),
		Positive: positive,
	}
	for i := 0; i < c.n; i++ {
		if c.tag[i] == tagCorner {
			out.Segments[i] = Segment{Corner: true, C: c.c[i][1], End: c.c[i][2]}
		} else {
			out.Segments[i] = Segment{C1: c.c[i][0], C2: c.c[i][1], End: c.c[i][2]}
		}
	}
	return out
}
