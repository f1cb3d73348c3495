package motionpath

import "github.com/go-gl/mathgl/mgl64"

// TangentSide distinguishes the in (arriving) and out (leaving) tangent of
// a key.
type TangentSide int

const (
	TangentIn TangentSide = iota
	TangentOut
)

// TangentRepr is the host representation of one tangent. Weighted channels
// store an explicit (time-scaled, value) vector; non-weighted channels
// store an angle and a scalar weight.
type TangentRepr struct {
	Weighted bool
	X, Y     float64 // weighted representation
	Angle    float64 // radians, non-weighted representation
	Weight   float64
}

// Channel is one scalar animation curve owned by the host. Key indices are
// positional: they shift when keys are added or removed, so callers must
// re-query after mutating. Times within a channel are strictly increasing.
type Channel interface {
	NumKeys() int
	TimeAt(i int) float64
	KeyValue(i int) float64
	ValueAt(t float64) float64
	FindKeyAt(t float64) (int, bool)

	AddKey(t, v float64) int
	RemoveKey(i int)
	SetKeyValue(i int, v float64)

	Tangent(i int, side TangentSide) (TangentRepr, bool)
	SetTangent(i int, side TangentSide, tr TangentRepr)

	IsWeighted() bool
	TangentsLocked(i int) bool
	WeightsLocked(i int) bool
	SetTangentsLocked(i int, locked bool)
	SetWeightsLocked(i int, locked bool)
}

// TransformSource resolves the hierarchy data of one entity at a discrete
// time. Implementations are not safely reentrant; all calls happen on the
// single control goroutine.
type TransformSource interface {
	// ParentMatrixAt returns the composed parent (or world, for constrained
	// entities) transform at time t. ok is false when the data is missing.
	ParentMatrixAt(t float64) (mgl64.Mat4, bool)
	// PivotAt returns the rotate-pivot offset at time t.
	PivotAt(t float64) (mgl64.Vec3, bool)
	// PivotTranslateAt returns the rotate-pivot-translate offset at time t.
	PivotTranslateAt(t float64) (mgl64.Vec3, bool)
}

// CameraResolver yields the camera-space transform used for camera-relative
// display at a sample's own time. ok is false when no cached matrix exists
// for t; callers must then abort the conversion for that sample.
type CameraResolver interface {
	CameraMatrixAt(t float64) (mgl64.Mat4, bool)
}

// ChangeRecorder receives every primitive curve edit performed by the core
// so the host can group them into one undoable transaction. A nil recorder
// is valid and records nothing.
type ChangeRecorder interface {
	KeyAdded(c Channel, t, v float64)
	KeyRemoved(c Channel, t, v float64, in, out TangentRepr)
	ValueChanged(c Channel, t, old, new float64)
	TangentChanged(c Channel, t float64, side TangentSide, old, new TangentRepr)
}

// channelValueAt evaluates a possibly missing channel; missing data reads
// as zero so partially animated entities still resolve a position.
func channelValueAt(c Channel, t float64) float64 {
	if c == nil {
		return 0
	}
	return c.ValueAt(t)
}

// channelKeyed is a predicate: does the channel exist and carry keys?
func channelKeyed(c Channel) bool {
	return c != nil && c.NumKeys() > 0
}
