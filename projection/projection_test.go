package projection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

// orthoViewport looks down -Z; screen (x,y) maps straight onto world (x,y).
type orthoViewport struct{}

func (orthoViewport) WorldToScreen(p mgl64.Vec3) (float64, float64, bool) {
	return p.X(), p.Y(), true
}

func (orthoViewport) ScreenRay(x, y float64) (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{x, y, 100}, mgl64.Vec3{0, 0, -1}
}

func (orthoViewport) CameraMatrix() mgl64.Mat4 {
	return mgl64.Ident4()
}

func TestScreenDeltaPreservesDepth(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	orig := mgl64.Vec3{2, 3, -7}
	delta, err := ScreenDeltaToWorldDelta(orthoViewport{}, orig, 10, 4)
	assert.NoError(t, err)
	moved := orig.Add(delta)
	assert.InDelta(t, 10.0, moved.X(), 1e-9)
	assert.InDelta(t, 4.0, moved.Y(), 1e-9)
	assert.InDelta(t, -7.0, moved.Z(), 1e-9, "depth must be preserved")
}

// sideViewport fires rays perpendicular to the view direction, so every
// plane intersection is degenerate.
type sideViewport struct{ orthoViewport }

func (sideViewport) ScreenRay(x, y float64) (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{x, y, 0}, mgl64.Vec3{1, 0, 0}
}

func TestScreenDeltaParallelRay(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := ScreenDeltaToWorldDelta(sideViewport{}, mgl64.Vec3{0, 0, 5}, 1, 1)
	assert.ErrorIs(t, err, ErrParallelRay)
}

// orbitCamera translates sideways over time.
type orbitCamera struct{}

func (orbitCamera) CameraWorldMatrixAt(t float64) (mgl64.Mat4, bool) {
	return mgl64.Translate3D(t, 0, 0), true
}

func TestCameraCacheMissFails(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cc := NewCameraCache(orbitCamera{}, 1000)
	if _, ok := cc.CameraMatrixAt(5); ok {
		t.Errorf("expected a miss on an empty cache")
	}
	cc.EnsureRange(1, 10)
	if _, ok := cc.CameraMatrixAt(5); !ok {
		t.Errorf("expected a hit after ensure")
	}
	if _, ok := cc.CameraMatrixAt(50); ok {
		t.Errorf("expected a miss outside the ensured range")
	}
	cc.Invalidate()
	if _, ok := cc.CameraMatrixAt(5); ok {
		t.Errorf("expected a miss after invalidate")
	}
}

func TestCameraRelativeRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cc := NewCameraCache(orbitCamera{}, 1000)
	cc.EnsureRange(1, 10)

	world := mgl64.Vec3{3, 1, -2}
	disp, ok := cc.ToCameraRelative(world, 4, 9)
	assert.True(t, ok)
	back, ok := cc.FromCameraRelative(disp, 4, 9)
	assert.True(t, ok)
	assert.InDelta(t, world.X(), back.X(), 1e-9)
	assert.InDelta(t, world.Y(), back.Y(), 1e-9)
	assert.InDelta(t, world.Z(), back.Z(), 1e-9)
}

func TestCameraRelativeAnchorsMovingCamera(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cc := NewCameraCache(orbitCamera{}, 1000)
	cc.EnsureRange(1, 10)

	// a point rigidly attached to the camera displays at the same spot
	// for every sample time
	attachedAt := func(tm float64) mgl64.Vec3 { return mgl64.Vec3{tm, 2, 0} }
	a, ok := cc.ToCameraRelative(attachedAt(3), 3, 8)
	assert.True(t, ok)
	b, ok := cc.ToCameraRelative(attachedAt(6), 6, 8)
	assert.True(t, ok)
	assert.InDelta(t, a.X(), b.X(), 1e-9)
	assert.InDelta(t, a.Y(), b.Y(), 1e-9)
}
