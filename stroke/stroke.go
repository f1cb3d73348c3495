/*
Package stroke turns freehand screen gestures into motion path edits. A
gesture is a polyline of screen points; depending on the active tool it
drags a single key, reshapes a run of existing keys onto the drawn line,
or synthesizes a fresh evenly spaced run of keys.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package stroke

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'motionpath.stroke'
func tracer() tracing.Trace {
	return tracing.Select("motionpath.stroke")
}

// degenerate segment threshold, squared screen units
const segmentEpsilon = 1e-10

// Pt is a 2D screen point. Points are stored as complex numbers so that
// differences, lengths and distances fall out of complex arithmetic.
type Pt complex128

// P is a quick notation for constructing a point from floats.
func P(x, y float64) Pt {
	return Pt(complex(x, y))
}

// C returns the point as a complex number.
func (p Pt) C() complex128 {
	return complex128(p)
}

// X is the x-part of a point.
func (p Pt) X() float64 {
	return real(p)
}

// Y is the y-part of a point.
func (p Pt) Y() float64 {
	return imag(p)
}

// Pretty Stringer for points.
func (p Pt) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// Dist returns the euclidean distance to q.
func (p Pt) Dist(q Pt) float64 {
	return cmplx.Abs(q.C() - p.C())
}

// Dot returns the dot product of p and q taken as vectors.
func (p Pt) Dot(q Pt) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Normalized returns p scaled to unit length; ok is false for a (near)
// zero vector.
func (p Pt) Normalized() (Pt, bool) {
	l := cmplx.Abs(p.C())
	if l < 1e-12 {
		return p, false
	}
	return Pt(p.C() / complex(l, 0)), true
}

// meanDirection averages the directions from the stroke's first point to
// every later point. ok is false when the stroke is fully degenerate.
func meanDirection(points []Pt) (Pt, bool) {
	if len(points) < 2 {
		return 0, false
	}
	var sum complex128
	for _, p := range points[1:] {
		sum += p.C() - points[0].C()
	}
	return Pt(sum).Normalized()
}

// closestOnPolyline projects q onto the stroke polyline: per segment the
// clamped parametric foot point, keeping the global minimum. Degenerate
// segments contribute no candidate; a fully degenerate stroke collapses to
// its first point.
func closestOnPolyline(points []Pt, q Pt) Pt {
	best := points[0]
	bestD := math.Inf(1)
	found := false
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		seg := b.C() - a.C()
		sqrlen := real(seg)*real(seg) + imag(seg)*imag(seg)
		if sqrlen < segmentEpsilon {
			continue
		}
		t := Pt(q.C() - a.C()).Dot(Pt(seg)) / sqrlen
		t = math.Max(0, math.Min(1, t))
		foot := Pt(a.C() + seg*complex(t, 0))
		if d := q.Dist(foot); d < bestD {
			best, bestD = foot, d
			found = true
		}
	}
	if !found {
		return points[0]
	}
	return best
}

// arclengths returns the cumulative arclength at every stroke point.
func arclengths(points []Pt) []float64 {
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + points[i-1].Dist(points[i])
	}
	return cum
}

// pointAtArclength walks the polyline to the point at cumulative length s.
func pointAtArclength(points []Pt, cum []float64, s float64) Pt {
	if s <= 0 {
		return points[0]
	}
	for i := 1; i < len(points); i++ {
		if cum[i] < s {
			continue
		}
		seglen := cum[i] - cum[i-1]
		if seglen < 1e-12 {
			return points[i]
		}
		f := (s - cum[i-1]) / seglen
		return Pt(points[i-1].C() + (points[i].C()-points[i-1].C())*complex(f, 0))
	}
	return points[len(points)-1]
}

// spreadTargets distributes count target points evenly along the stroke's
// arclength. Target i sits at arclength (i+1)/count of the total, so the
// positions are strictly increasing and the last one lands on the stroke's
// end point. A zero-length stroke yields the stroke's single point for
// every target.
func spreadTargets(points []Pt, count int) []Pt {
	targets := make([]Pt, count)
	if count == 0 {
		return targets
	}
	cum := arclengths(points)
	total := cum[len(cum)-1]
	if total < 1e-12 {
		for i := range targets {
			targets[i] = points[0]
		}
		return targets
	}
	step := total / float64(count)
	for i := range targets {
		targets[i] = pointAtArclength(points, cum, float64(i+1)*step)
	}
	return targets
}
