package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"

	"github.com/motiontools/motionpath/settings"
)

type flatViewport struct{}

func (flatViewport) WorldToScreen(p mgl64.Vec3) (float64, float64, bool) {
	return p.X(), p.Y(), true
}

func (flatViewport) ScreenRay(x, y float64) (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{x, y, 100}, mgl64.Vec3{0, 0, -1}
}

func (flatViewport) CameraMatrix() mgl64.Mat4 {
	return mgl64.Ident4()
}

func TestKeysInMarqueeRect(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := pathEntity()
	cfg := settings.Default()
	e.BuildKeyframes(cfg, nil, mgl64.Ident4())

	var m Marquee
	m.Rect(-1, -1, 5, 3)
	hits := KeysInMarquee(e.Keyframes().Records(), flatViewport{}, &m, 2)
	// keys sit at screen (0,0), (4,1) and (9,0)
	assert.Equal(t, []float64{1, 5}, hits)
}

func TestKeysInMarqueeLasso(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := pathEntity()
	cfg := settings.Default()
	e.BuildKeyframes(cfg, nil, mgl64.Ident4())

	// a triangle around the last key only
	var m Marquee
	m.Add(8, -1)
	m.Add(10.5, -1)
	m.Add(9, 2)
	hits := KeysInMarquee(e.Keyframes().Records(), flatViewport{}, &m, 0.5)
	assert.Equal(t, []float64{10}, hits)
}

func TestMarqueeTooFewPoints(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := pathEntity()
	cfg := settings.Default()
	e.BuildKeyframes(cfg, nil, mgl64.Ident4())

	var m Marquee
	m.Add(0, 0)
	m.Add(10, 10)
	assert.Nil(t, KeysInMarquee(e.Keyframes().Records(), flatViewport{}, &m, 2))
}
