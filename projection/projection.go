/*
Package projection maps between world space and screen space for path
editing. It hosts the viewport collaborator interface, the screen-delta to
world-delta solver used by key dragging, and a camera matrix cache for
camera-relative display.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package projection

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'motionpath.projection'
func tracer() tracing.Trace {
	return tracing.Select("motionpath.projection")
}

// ErrParallelRay is returned when a screen ray runs parallel to the drag
// plane and no intersection exists.
var ErrParallelRay = errors.New("projection: ray parallel to drag plane")

// Viewport is the host's active view. Screen coordinates are in pixels
// with the origin at the lower left.
type Viewport interface {
	// WorldToScreen projects a world point. ok is false when the point is
	// behind the camera or otherwise unprojectable.
	WorldToScreen(p mgl64.Vec3) (x, y float64, ok bool)
	// ScreenRay returns the world-space pick ray through a screen point.
	ScreenRay(x, y float64) (origin, dir mgl64.Vec3)
	// CameraMatrix returns the current world-to-camera-parent transform.
	CameraMatrix() mgl64.Mat4
}

// ScreenDeltaToWorldDelta converts a screen-space drag into a world-space
// displacement of origWorld, preserving the point's distance from the
// camera. The new position is the intersection of the pick ray through
// (newX, newY) with the plane through origWorld perpendicular to the view
// direction.
func ScreenDeltaToWorldDelta(vp Viewport, origWorld mgl64.Vec3, newX, newY float64) (mgl64.Vec3, error) {
	origin, dir := vp.ScreenRay(newX, newY)
	normal := viewDirection(vp)

	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-12 {
		return mgl64.Vec3{}, ErrParallelRay
	}
	t := origWorld.Sub(origin).Dot(normal) / denom
	hit := origin.Add(dir.Mul(t))
	return hit.Sub(origWorld), nil
}

// viewDirection extracts the camera's forward axis in world space. The
// camera looks down its negative local Z.
func viewDirection(vp Viewport) mgl64.Vec3 {
	m := vp.CameraMatrix()
	d := mgl64.Vec3{-m.At(0, 2), -m.At(1, 2), -m.At(2, 2)}
	if l := d.Len(); l > 1e-12 {
		return d.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, -1}
}
