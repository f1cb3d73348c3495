package motionpath

import "github.com/go-gl/mathgl/mgl64"

// Axis identifies one of the three spatial channels.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Keyframe is one aggregated per-time record of the display window. It is
// produced by a window rebuild and replaced wholesale by the next one;
// records never outlive their rebuild generation, so they reference keys
// by index, not by pointer.
type Keyframe struct {
	ID   int // sequential index within the current window, ascending time
	Time float64

	Position      mgl64.Vec3 // local position
	WorldPosition mgl64.Vec3

	// Local tangent components as authored on the curves.
	InTangent  mgl64.Vec3
	OutTangent mgl64.Vec3

	// Raw stored tangents mapped into world space.
	InTangentWorld  mgl64.Vec3
	OutTangentWorld mgl64.Vec3

	// On-screen handle endpoints, either the raw world tangent (weighted
	// curves) or a numerically sampled direction scaled to the stored
	// length (non-weighted curves).
	InHandle  mgl64.Vec3
	OutHandle mgl64.Vec3

	// Per-axis key indices; -1 means the axis has no key at this time.
	XKeyID, YKeyID, ZKeyID          int
	XRotKeyID, YRotKeyID, ZRotKeyID int

	TangentsLocked bool
	ShowInTangent  bool
	ShowOutTangent bool
	Selected       bool
}

func newKeyframe(t float64) *Keyframe {
	return &Keyframe{
		ID:             -1,
		Time:           t,
		XKeyID:         -1,
		YKeyID:         -1,
		ZKeyID:         -1,
		XRotKeyID:      -1,
		YRotKeyID:      -1,
		ZRotKeyID:      -1,
		TangentsLocked: true,
		ShowInTangent:  true,
		ShowOutTangent: true,
	}
}

// HasTranslationXYZ is a predicate: keys on all three translation axes?
func (k *Keyframe) HasTranslationXYZ() bool {
	return k.XKeyID != -1 && k.YKeyID != -1 && k.ZKeyID != -1
}

// HasRotationXYZ is a predicate: keys on all three rotation axes?
func (k *Keyframe) HasRotationXYZ() bool {
	return k.XRotKeyID != -1 && k.YRotKeyID != -1 && k.ZRotKeyID != -1
}

// TranslateAxes lists the translation axes keyed at this time. The set
// drives the record's color classification.
func (k *Keyframe) TranslateAxes() []Axis {
	var axes []Axis
	if k.XKeyID != -1 {
		axes = append(axes, AxisX)
	}
	if k.YKeyID != -1 {
		axes = append(axes, AxisY)
	}
	if k.ZKeyID != -1 {
		axes = append(axes, AxisZ)
	}
	return axes
}

// RotateAxes lists the rotation axes keyed at this time.
func (k *Keyframe) RotateAxes() []Axis {
	var axes []Axis
	if k.XRotKeyID != -1 {
		axes = append(axes, AxisX)
	}
	if k.YRotKeyID != -1 {
		axes = append(axes, AxisY)
	}
	if k.ZRotKeyID != -1 {
		axes = append(axes, AxisZ)
	}
	return axes
}

// KeyID returns the translation key index for one axis.
func (k *Keyframe) KeyID(axis Axis) int {
	switch axis {
	case AxisX:
		return k.XKeyID
	case AxisY:
		return k.YKeyID
	default:
		return k.ZKeyID
	}
}

func (k *Keyframe) setKeyID(id int, axis Axis) {
	switch axis {
	case AxisX:
		k.XKeyID = id
	case AxisY:
		k.YKeyID = id
	case AxisZ:
		k.ZKeyID = id
	}
}

func (k *Keyframe) setRotKeyID(id int, axis Axis) {
	switch axis {
	case AxisX:
		k.XRotKeyID = id
	case AxisY:
		k.YRotKeyID = id
	case AxisZ:
		k.ZRotKeyID = id
	}
}

func (k *Keyframe) setTangentComponent(value float64, axis Axis, side TangentSide) {
	v := &k.InTangent
	if side == TangentOut {
		v = &k.OutTangent
	}
	switch axis {
	case AxisX:
		*v = mgl64.Vec3{value, v.Y(), v.Z()}
	case AxisY:
		*v = mgl64.Vec3{v.X(), value, v.Z()}
	case AxisZ:
		*v = mgl64.Vec3{v.X(), v.Y(), value}
	}
}
