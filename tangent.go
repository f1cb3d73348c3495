package motionpath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tangent value storage convention: weighted tangents keep the slope in the
// Y component scaled by 3 (the bezier control offset over one third of the
// segment); non-weighted tangents store angle and weight, with the slope
// being tan(angle)*weight.

// TangentComponent reads the local tangent component of key i on channel c
// in the curve's native units.
func TangentComponent(c Channel, i int, side TangentSide) float64 {
	if c == nil {
		return 0
	}
	tr, ok := c.Tangent(i, side)
	if !ok {
		return 0
	}
	if tr.Weighted {
		return tr.Y / 3.0
	}
	return math.Tan(tr.Angle) * tr.Weight
}

// SetTangentComponent writes a new local tangent component for the key at
// time t on channel c. The value is negated for the in side by convention.
// Channels with a single key or no key at t are left untouched.
func SetTangentComponent(c Channel, t float64, side TangentSide, value float64, rec ChangeRecorder) {
	if c == nil || c.NumKeys() <= 1 {
		return
	}
	i, ok := c.FindKeyAt(t)
	if !ok {
		return
	}
	if side == TangentIn {
		value = -value
	}
	old, ok := c.Tangent(i, side)
	if !ok {
		return
	}
	tr := old
	if !tr.Weighted {
		tr.Angle = math.Atan(value * tr.Weight)
	} else {
		tr.Y = value * 3.0
	}
	c.SetTangent(i, side, tr)
	if rec != nil {
		rec.TangentChanged(c, t, side, old, tr)
	}
}

// WorldTangentHandle computes the on-screen handle endpoint for one tangent
// side of a keyframe record.
//
// Weighted curves store a true tangent vector, so the handle is simply the
// raw world tangent. Non-weighted curves only store slope information; the
// handle direction is sampled numerically at time±delta and scaled back to
// the stored tangent length, keeping the drawn handle consistent with the
// authored magnitude.
func (e *Entity) worldTangentHandle(k *Keyframe, side TangentSide, weighted bool,
	delta float64, cam CameraResolver, camNow mgl64.Mat4, cameraRelative bool) (mgl64.Vec3, bool) {

	raw := k.InTangentWorld
	local := k.InTangent
	sampleTime := k.Time - delta
	if side == TangentOut {
		raw = k.OutTangentWorld
		local = k.OutTangent
		sampleTime = k.Time + delta
	}
	if weighted {
		return raw, true
	}

	e.Transforms.EnsureAt(sampleTime)
	neighbor := TransformPoint(e.Transforms.MatrixAt(sampleTime), e.CachedPos(sampleTime))
	if cameraRelative {
		if cam == nil {
			return mgl64.Vec3{}, false
		}
		m, ok := cam.CameraMatrixAt(sampleTime)
		if !ok {
			return mgl64.Vec3{}, false
		}
		neighbor = TransformPoint(camNow.Mul4(m), neighbor)
	}
	dir := neighbor.Sub(k.WorldPosition)
	if dir.Len() < 1e-12 {
		return k.WorldPosition, true
	}
	return dir.Normalize().Mul(local.Len()).Add(k.WorldPosition), true
}

// SetTangentWorldPosition points a key's tangent handle at a new world
// position, performing the inverse of the handle computation.
//
// For weighted curves the new local tangent is the direct inverse transform
// of the handle offset. For non-weighted curves the stored tangent vector
// is rotated by the rotation between its old and new normalized handle
// direction and scaled by the length ratio, then converted back into the
// curve's angle/weight representation.
func (e *Entity) SetTangentWorldPosition(position mgl64.Vec3, t float64, side TangentSide,
	toWorld mgl64.Mat4, rec ChangeRecorder) {

	k, ok := e.KeyframeAt(t)
	if !ok {
		return
	}

	e.Transforms.EnsureAt(t)
	parentInv := e.Transforms.MatrixAt(t).Inv()

	var local mgl64.Vec3
	if e.IsWeighted() {
		local = TransformVector(parentInv, position.Sub(k.WorldPosition))
	} else {
		handle := k.InHandle
		rawWorld := k.InTangentWorld
		if side == TangentOut {
			handle = k.OutHandle
			rawWorld = k.OutTangentWorld
		}

		newVec := position.Sub(k.WorldPosition)
		oldVec := handle.Sub(k.WorldPosition)
		if oldVec.Len() < 1e-12 || newVec.Len() < 1e-12 {
			return
		}
		lenMultiplier := newVec.Len() / oldVec.Len()
		rotation := mgl64.QuatBetweenVectors(oldVec.Normalize(), newVec.Normalize())

		tangentVector := rawWorld.Sub(TransformPoint(toWorld, k.WorldPosition))
		local = TransformVector(parentInv, rotation.Rotate(tangentVector)).Mul(lenMultiplier)
	}

	SetTangentComponent(e.TX, t, side, local.X(), rec)
	SetTangentComponent(e.TY, t, side, local.Y(), rec)
	SetTangentComponent(e.TZ, t, side, local.Z(), rec)
}
