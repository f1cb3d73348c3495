package projection

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/motiontools/motionpath"
)

// CameraSource yields the host camera's world transform at a discrete
// time. ok is false when the camera cannot be evaluated at t.
type CameraSource interface {
	CameraWorldMatrixAt(t float64) (mgl64.Mat4, bool)
}

// cameraSampler adapts a CameraSource to the range cache. Camera-relative
// display needs the inverse camera transform per frame, so the compose
// step inverts. Inversion is pure arithmetic and parallel-safe.
type cameraSampler struct {
	src CameraSource
}

func (cs cameraSampler) CollectFrame(t float64) motionpath.FrameSample {
	s := motionpath.FrameSample{Time: t, Parent: mgl64.Ident4()}
	if cs.src != nil {
		if m, ok := cs.src.CameraWorldMatrixAt(t); ok {
			s.Parent = m
		}
	}
	return s
}

func (cs cameraSampler) ComposeFrame(s motionpath.FrameSample) mgl64.Mat4 {
	return s.Parent.Inv()
}

// CameraCache caches the per-frame inverse camera transforms used by
// camera-relative path display. It grows and invalidates with the same
// discipline as the entity transform cache and satisfies the core's
// CameraResolver.
type CameraCache struct {
	cache *motionpath.RangeCache
}

var _ motionpath.CameraResolver = &CameraCache{}

// NewCameraCache builds an empty cache over src.
func NewCameraCache(src CameraSource, parallelThreshold int) *CameraCache {
	return &CameraCache{
		cache: motionpath.NewRangeCache(cameraSampler{src: src}, parallelThreshold),
	}
}

// EnsureRange resolves every whole frame in [start, end].
func (cc *CameraCache) EnsureRange(start, end float64) {
	cc.cache.EnsureRange(start, end)
}

// Invalidate drops all cached camera matrices.
func (cc *CameraCache) Invalidate() {
	cc.cache.Invalidate()
}

// CameraMatrixAt returns the cached inverse camera transform for t. Unlike
// the entity cache this never resolves on a miss: camera-relative
// conversions must abort for frames the cache does not cover.
func (cc *CameraCache) CameraMatrixAt(t float64) (mgl64.Mat4, bool) {
	return cc.cache.Peek(t)
}

// ToCameraRelative converts a world point at time t into the camera-fixed
// display space anchored at the current frame now. ok is false when either
// frame is missing from the cache.
func (cc *CameraCache) ToCameraRelative(p mgl64.Vec3, t, now float64) (mgl64.Vec3, bool) {
	mt, ok := cc.cache.Peek(t)
	if !ok {
		return mgl64.Vec3{}, false
	}
	inv, ok := cc.currentCorrection(now)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return motionpath.TransformPoint(inv.Mul4(mt), p), true
}

// FromCameraRelative inverts ToCameraRelative for edits performed on the
// displayed, camera-anchored path.
func (cc *CameraCache) FromCameraRelative(p mgl64.Vec3, t, now float64) (mgl64.Vec3, bool) {
	mt, ok := cc.cache.Peek(t)
	if !ok {
		return mgl64.Vec3{}, false
	}
	inv, ok := cc.currentCorrection(now)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return motionpath.TransformPoint(inv.Mul4(mt).Inv(), p), true
}

// CurrentCorrection exposes the camera matrix applied after each sample's
// own camera transform, i.e. the camera's world transform at now.
func (cc *CameraCache) CurrentCorrection(now float64) (mgl64.Mat4, bool) {
	return cc.currentCorrection(now)
}

func (cc *CameraCache) currentCorrection(now float64) (mgl64.Mat4, bool) {
	m, ok := cc.cache.Peek(now)
	if !ok {
		return mgl64.Mat4{}, false
	}
	// Cached entries hold inverse camera transforms; the correction is the
	// camera transform itself.
	return m.Inv(), true
}
