// Package latex renders traced outlines as parametric expressions in t for
// the Desmos calculator.
package latex

import (
	"fmt"

	"github.com/1F47E/go-bezier-renderer/internal/trace"
)

// Lerp is the straight line from a to b.
func Lerp(a, b trace.Point) string {
	return fmt.Sprintf("((1-t)%f+t%f,(1-t)%f+t%f)", a.X, b.X, a.Y, b.Y)
}

// cubicSep separates the x and y halves of a cubic. Its 16 spaces are part of
// the established output and kept byte for byte; the calculator ignores them.
const cubicSep = ",                "

// Cubic is the Bezier curve p0 p1 p2 p3 written as nested linear
// interpolations.
func Cubic(p0, p1, p2, p3 trace.Point) string {
	return fmt.Sprintf("(%s"+cubicSep+"%s)",
		cubic1(p0.X, p1.X, p2.X, p3.X),
		cubic1(p0.Y, p1.Y, p2.Y, p3.Y))
}

func cubic1(a, b, c, d float64) string {
	return fmt.Sprintf("(1-t)((1-t)((1-t)%f+t%f)+t((1-t)%f+t%f))+t((1-t)((1-t)%f+t%f)+t((1-t)%f+t%f))",
		a, b, b, c, b, c, c, d)
}

// Format walks every curve from its start point. A corner segment yields
// two lines, a curve segment one cubic.
func Format(p trace.Path) []string {
	out := make([]string, 0, Count(p))
	for _, c := range p.Curves {
		cur := c.Start
		for _, s := range c.Segments {
			if s.Corner {
				out = append(out, Lerp(cur, s.C), Lerp(s.C, s.End))
			} else {
				out = append(out, Cubic(cur, s.C1, s.C2, s.End))
			}
			cur = s.End
		}
	}
	return out
}

// Count is the number of expressions Format returns for p.
func Count(p trace.Path) int {
	n := 0
	for _, c := range p.Curves {
		for _, s := range c.Segments {
			if s.Corner {
				n += 2
			} else {
				n++
			}
		}
	}
	return n
}
