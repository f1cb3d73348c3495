package stroke

import (
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestClosestPointOnPolyline(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(0, 0), P(10, 0), P(20, 0)}
	got := closestOnPolyline(points, P(9, 1))
	assert.InDelta(t, 9.0, got.X(), 1e-9)
	assert.InDelta(t, 0.0, got.Y(), 1e-9)
}

func TestClosestPointIdempotentOnStroke(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(0, 0), P(10, 5), P(16, 5)}
	on := P(4, 2)
	got := closestOnPolyline(points, on)
	if got.Dist(on) > 1e-9 {
		t.Errorf("a point on the stroke must project onto itself, got %v", got)
	}
}

func TestClosestPointClampsToEndpoints(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(0, 0), P(10, 0)}
	got := closestOnPolyline(points, P(-5, 3))
	assert.Equal(t, P(0, 0), got)
	got = closestOnPolyline(points, P(15, -2))
	assert.Equal(t, P(10, 0), got)
}

func TestClosestPointDegenerateStroke(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(4, 4), P(4, 4), P(4, 4)}
	assert.Equal(t, P(4, 4), closestOnPolyline(points, P(100, 100)))
}

func TestSpreadOrdering(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(0, 0), P(10, 0), P(10, 10)}
	targets := spreadTargets(points, 4)
	cum := arclengths(points)
	total := cum[len(cum)-1]

	positions := make([]float64, len(targets))
	for i, tgt := range targets {
		// recover the arclength of each target on the L-shaped stroke
		if tgt.Y() == 0 {
			positions[i] = tgt.X()
		} else {
			positions[i] = 10 + tgt.Y()
		}
	}
	if !sort.Float64sAreSorted(positions) {
		t.Fatalf("spread positions must be increasing, got %v", positions)
	}
	for i := 1; i < len(positions); i++ {
		assert.Greater(t, positions[i], positions[i-1], "strictly increasing")
	}
	assert.Greater(t, positions[0], 0.0)
	assert.InDelta(t, total, positions[len(positions)-1], 1e-9, "last target lands on the stroke end")
}

func TestSpreadDegenerateStroke(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	points := []Pt{P(7, 7), P(7, 7)}
	for _, tgt := range spreadTargets(points, 3) {
		assert.Equal(t, P(7, 7), tgt)
	}
}

func TestMeanDirection(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	dir, ok := meanDirection([]Pt{P(0, 0), P(5, 0), P(10, 1), P(15, -1)})
	assert.True(t, ok)
	assert.Greater(t, dir.X(), 0.99, "stroke points mostly +x")

	_, ok = meanDirection([]Pt{P(3, 3), P(3, 3)})
	assert.False(t, ok, "coincident points have no direction")
}

func TestSynthIndexScenario(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// 10 stroke points, 3 synthesized keys
	assert.Equal(t, 3, synthIndex(0, 10, 3))
	assert.Equal(t, 5, synthIndex(1, 10, 3))
	assert.Equal(t, 7, synthIndex(2, 10, 3))
}

func TestSynthIndexClamps(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// never the stroke's own start point, never past the end
	assert.Equal(t, 1, synthIndex(0, 2, 5))
	assert.Equal(t, 1, synthIndex(0, 2, 1))
	for i := 0; i < 8; i++ {
		idx := synthIndex(i, 4, 8)
		assert.GreaterOrEqual(t, idx, 1)
		assert.LessOrEqual(t, idx, 3)
	}
}
