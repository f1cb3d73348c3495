package render

import (
	"github.com/akavel/polyclip-go"

	"github.com/motiontools/motionpath"
	"github.com/motiontools/motionpath/projection"
)

// Marquee is a screen-space selection lasso. Points are appended as the
// rubber band is dragged; the polygon closes implicitly.
type Marquee struct {
	contour polyclip.Contour
}

// Add appends a screen point to the lasso outline.
func (m *Marquee) Add(x, y float64) {
	m.contour.Add(polyclip.Point{X: x, Y: y})
}

// Rect resets the marquee to an axis-aligned rectangle, the common case of
// a simple click-drag selection.
func (m *Marquee) Rect(x0, y0, x1, y1 float64) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	m.contour = polyclip.Contour{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}
}

// Len returns the number of lasso points.
func (m *Marquee) Len() int {
	return len(m.contour)
}

// KeysInMarquee returns the times of all aggregated keys whose screen hit
// quad intersects the lasso, in record id order. hitSize is the half side
// of the quad in pixels; keys that fail to project are skipped.
func KeysInMarquee(records []*motionpath.Keyframe, vp projection.Viewport, m *Marquee, hitSize float64) []float64 {
	if m.Len() < 3 {
		return nil
	}
	lasso := polyclip.Polygon{m.contour}
	var hits []float64
	for _, k := range records {
		x, y, ok := vp.WorldToScreen(k.WorldPosition)
		if !ok {
			continue
		}
		quad := polyclip.Polygon{{
			{X: x - hitSize, Y: y - hitSize},
			{X: x + hitSize, Y: y - hitSize},
			{X: x + hitSize, Y: y + hitSize},
			{X: x - hitSize, Y: y + hitSize},
		}}
		if len(quad.Construct(polyclip.INTERSECTION, lasso)) > 0 {
			hits = append(hits, k.Time)
		}
	}
	tracer().Debugf("marquee hit %d of %d keys", len(hits), len(records))
	return hits
}
