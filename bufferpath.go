package motionpath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BufferPath is a frozen copy of an entity's motion path, used to display
// a ghost of the trajectory before an edit. It is immutable once taken.
type BufferPath struct {
	Start, End  float64
	FramePoints []mgl64.Vec3 // world position per whole frame, Start..End
	KeyPoints   []mgl64.Vec3 // world position per aggregated key
	KeyTimes    []float64
}

// SnapshotBufferPath freezes the entity's current world-space path over
// [start, end]. The entity's caches are populated as a side effect.
func SnapshotBufferPath(e *Entity, start, end float64) *BufferPath {
	if end < start {
		start, end = end, start
	}
	bp := &BufferPath{Start: start, End: end}

	e.Transforms.EnsureRange(start, end)
	for t := start; t <= end; t++ {
		bp.FramePoints = append(bp.FramePoints, e.WorldPositionAt(t))
	}
	for _, k := range e.Keyframes().Records() {
		if k.Time < start || k.Time > end {
			continue
		}
		bp.KeyPoints = append(bp.KeyPoints, k.WorldPosition)
		bp.KeyTimes = append(bp.KeyTimes, k.Time)
	}
	tracer().Debugf("buffered path [%g,%g]: %d frames, %d keys",
		start, end, len(bp.FramePoints), len(bp.KeyPoints))
	return bp
}
