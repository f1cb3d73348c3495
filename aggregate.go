package motionpath

import (
	"math"
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/motiontools/motionpath/settings"
)

// Aggregate is the unified time -> keyframe record map for one display
// window rebuild. Records are indexed both by time (ordered) and by their
// sequential id.
type Aggregate struct {
	byTime  *treemap.Map // float64 -> *Keyframe
	records []*Keyframe  // ascending time; index equals record id
}

func newAggregate() *Aggregate {
	return &Aggregate{byTime: treemap.NewWith(utils.Float64Comparator)}
}

// Len returns the number of aggregated records.
func (a *Aggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.records)
}

// At returns the record at time t.
func (a *Aggregate) At(t float64) (*Keyframe, bool) {
	if a == nil {
		return nil, false
	}
	v, found := a.byTime.Get(t)
	if !found {
		return nil, false
	}
	return v.(*Keyframe), true
}

// ByID returns the record with sequential id.
func (a *Aggregate) ByID(id int) (*Keyframe, bool) {
	if a == nil || id < 0 || id >= len(a.records) {
		return nil, false
	}
	return a.records[id], true
}

// Records returns the records in ascending time order.
func (a *Aggregate) Records() []*Keyframe {
	if a == nil {
		return nil
	}
	return a.records
}

// Times returns the aggregated key times in ascending order.
func (a *Aggregate) Times() []float64 {
	times := make([]float64, 0, a.Len())
	for _, k := range a.Records() {
		times = append(times, k.Time)
	}
	return times
}

func (a *Aggregate) recordAt(t float64) *Keyframe {
	if k, ok := a.At(t); ok {
		return k
	}
	k := newKeyframe(t)
	a.byTime.Put(t, k)
	return k
}

// BuildKeyframes rebuilds the entity's keyframe aggregate for the current
// display window. currentCamera is the camera correction applied after
// each sample's own camera matrix in camera-relative display; it is
// ignored in world space.
//
// Aggregation is skipped entirely when no translation channel carries any
// key: without translation geometry there is no position read path for a
// record to stand on, rotation keys or not.
func (e *Entity) BuildKeyframes(cfg settings.Settings, cam CameraResolver, currentCamera mgl64.Mat4) *Aggregate {
	agg := newAggregate()
	e.aggregate = agg

	if !channelKeyed(e.TX) && !channelKeyed(e.TY) && !channelKeyed(e.TZ) {
		return agg
	}

	activeEnd := e.window.End
	if e.drawing {
		activeEnd = e.endDrawingTime
	}

	e.expandTranslation(agg, e.TX, AxisX, activeEnd)
	e.expandTranslation(agg, e.TY, AxisY, activeEnd)
	e.expandTranslation(agg, e.TZ, AxisZ, activeEnd)

	if cfg.ShowRotationKeyFrames {
		e.expandRotation(agg, e.RX, AxisX, activeEnd)
		e.expandRotation(agg, e.RY, AxisY, activeEnd)
		e.expandRotation(agg, e.RZ, AxisZ, activeEnd)
	}

	e.markBoundaryTangents(agg, activeEnd)

	cameraRelative := cfg.DrawMode == settings.CameraSpace
	weighted := e.IsWeighted()

	id := 0
	it := agg.byTime.Iterator()
	for it.Next() {
		k := it.Value().(*Keyframe)
		k.ID = id
		id++
		agg.records = append(agg.records, k)

		if e.selectedKeyTimes[k.Time] {
			k.Selected = true
		}
		if e.drawing {
			k.ShowInTangent = false
			k.ShowOutTangent = false
		}

		e.Transforms.EnsureAt(k.Time)
		parent := e.Transforms.MatrixAt(k.Time)

		if e.drawing {
			k.Position = e.Pos(k.Time)
		} else {
			k.Position = e.CachedPos(k.Time)
		}
		k.WorldPosition = TransformPoint(parent, k.Position)
		if cameraRelative {
			if cam == nil {
				continue
			}
			m, ok := cam.CameraMatrixAt(k.Time)
			if !ok {
				continue
			}
			k.WorldPosition = TransformPoint(currentCamera.Mul4(m), k.WorldPosition)
		}

		k.InTangentWorld = TransformPoint(parent, k.Position.Sub(k.InTangent))
		k.OutTangentWorld = TransformPoint(parent, k.Position.Add(k.OutTangent))

		// Weighted tangent geometry cannot be displayed meaningfully in
		// camera-relative space; the raw vectors live in world space.
		if cameraRelative && weighted {
			k.ShowInTangent = false
			k.ShowOutTangent = false
		}

		if k.ShowInTangent {
			h, ok := e.worldTangentHandle(k, TangentIn, weighted, cfg.TangentTimeDelta, cam, currentCamera, cameraRelative)
			if ok {
				k.InHandle = h
			} else {
				k.ShowInTangent = false
			}
		}
		if k.ShowOutTangent {
			h, ok := e.worldTangentHandle(k, TangentOut, weighted, cfg.TangentTimeDelta, cam, currentCamera, cameraRelative)
			if ok {
				k.OutHandle = h
			} else {
				k.ShowOutTangent = false
			}
		}
	}
	tracer().Debugf("aggregated %d keyframes in window [%g,%g]", agg.Len(), e.window.Start, e.window.End)
	return agg
}

// expandTranslation merges one translation channel's keys into the
// aggregate: tangent components, key index and the conservative tangent
// lock (once a key reports broken tangents the record stays broken).
func (e *Entity) expandTranslation(agg *Aggregate, c Channel, axis Axis, activeEnd float64) {
	if c == nil {
		return
	}
	for i := 0; i < c.NumKeys(); i++ {
		t := c.TimeAt(i)
		if t < e.window.Start {
			continue
		}
		if t > activeEnd {
			break
		}
		k := agg.recordAt(t)
		k.setTangentComponent(TangentComponent(c, i, TangentIn), axis, TangentIn)
		k.setTangentComponent(TangentComponent(c, i, TangentOut), axis, TangentOut)
		k.setKeyID(i, axis)
		if k.TangentsLocked {
			k.TangentsLocked = c.TangentsLocked(i)
		}
	}
}

// expandRotation records rotation key presence only. Rotation keys carry
// no tangent geometry; a time keyed solely on rotation still yields a
// record so it stays visible on the path.
func (e *Entity) expandRotation(agg *Aggregate, c Channel, axis Axis, activeEnd float64) {
	if c == nil {
		return
	}
	for i := 0; i < c.NumKeys(); i++ {
		t := c.TimeAt(i)
		if t < e.window.Start {
			continue
		}
		if t > activeEnd {
			break
		}
		k := agg.recordAt(t)
		k.setRotKeyID(i, axis)
	}
}

// markBoundaryTangents hides the dangling tangent handle at the first and
// last key of each translation channel inside the window, unless a sibling
// channel continues past it. The pass only touches records the channel
// expansion already produced, so nothing past activeEnd appears here.
func (e *Entity) markBoundaryTangents(agg *Aggregate, activeEnd float64) {
	if !channelKeyed(e.TX) && !channelKeyed(e.TY) && !channelKeyed(e.TZ) {
		return
	}
	bounds := func(c Channel) (float64, float64) {
		if !channelKeyed(c) {
			return math.NaN(), math.NaN()
		}
		return c.TimeAt(0), c.TimeAt(c.NumKeys() - 1)
	}
	minX, maxX := bounds(e.TX)
	minY, maxY := bounds(e.TY)
	minZ, maxZ := bounds(e.TZ)

	show := func(t float64, firstID int, firstTime float64, secondID int, secondTime float64) bool {
		return !((firstID == -1 && secondID == -1) || (t == firstTime && t == secondTime))
	}
	inWindow := func(t float64) bool {
		return t >= e.window.Start && t <= activeEnd
	}

	if inWindow(minX) {
		if k, ok := agg.At(minX); ok {
			k.ShowInTangent = show(minX, k.YKeyID, minY, k.ZKeyID, minZ)
		}
	}
	if inWindow(minY) {
		if k, ok := agg.At(minY); ok {
			k.ShowInTangent = show(minY, k.XKeyID, minX, k.ZKeyID, minZ)
		}
	}
	if inWindow(minZ) {
		if k, ok := agg.At(minZ); ok {
			k.ShowInTangent = show(minZ, k.XKeyID, minX, k.YKeyID, minY)
		}
	}
	if inWindow(maxX) {
		if k, ok := agg.At(maxX); ok {
			k.ShowOutTangent = show(maxX, k.YKeyID, maxY, k.ZKeyID, maxZ)
		}
	}
	if inWindow(maxY) {
		if k, ok := agg.At(maxY); ok {
			k.ShowOutTangent = show(maxY, k.XKeyID, maxX, k.ZKeyID, maxZ)
		}
	}
	if inWindow(maxZ) {
		if k, ok := agg.At(maxZ); ok {
			k.ShowOutTangent = show(maxZ, k.XKeyID, maxX, k.YKeyID, maxY)
		}
	}
}

// --- aggregate queries on the entity ------------------------------------

// Keyframes returns the aggregate built by the last BuildKeyframes.
func (e *Entity) Keyframes() *Aggregate {
	return e.aggregate
}

// KeyframeAt returns the aggregated record at time t, if any.
func (e *Entity) KeyframeAt(t float64) (*Keyframe, bool) {
	return e.aggregate.At(t)
}

// Keys returns the aggregated key times in ascending order.
func (e *Entity) Keys() []float64 {
	return e.aggregate.Times()
}

// TimeOfKeyID maps a sequential record id back to its time.
func (e *Entity) TimeOfKeyID(id int) (float64, bool) {
	k, ok := e.aggregate.ByID(id)
	if !ok {
		return 0, false
	}
	return k.Time, true
}

// Boundaries returns the key times immediately before and after t within
// the aggregate. ok flags report whether such a neighbor exists.
func (e *Entity) Boundaries(t float64) (before float64, hasBefore bool, after float64, hasAfter bool) {
	for _, k := range e.aggregate.Records() {
		if k.Time == t {
			continue
		}
		if k.Time < t && (!hasBefore || k.Time > before) {
			before, hasBefore = k.Time, true
		}
		if k.Time > t && (!hasAfter || k.Time < after) {
			after, hasAfter = k.Time, true
		}
	}
	return
}

func sortedTimes(set map[float64]bool) []float64 {
	times := make([]float64, 0, len(set))
	for t := range set {
		times = append(times, t)
	}
	sort.Float64s(times)
	return times
}
