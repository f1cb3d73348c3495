package motionpath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Window is the currently visualized time range.
type Window struct {
	Start float64
	End   float64
}

// Entity is one tracked animated object. It owns the transform and
// position caches for that object and the per-window keyframe aggregate.
// An entity is created when the tool starts tracking a selection and
// dropped when the object is deselected.
type Entity struct {
	// Translation channels. A nil channel means the axis is not animated.
	TX, TY, TZ Channel
	// Rotation channels, optional.
	RX, RY, RZ Channel

	Source TransformSource

	// Constrained entities take raw positions from the resolved parent
	// transform only; their channels are driven by constraints and must
	// not be read directly.
	Constrained bool

	Transforms *RangeCache
	Positions  *PositionCache

	window Window

	selectedKeyTimes map[float64]bool

	// In-progress edit gesture state. While drawing, aggregation stops at
	// endDrawingTime and positions are read directly from the channels.
	drawing        bool
	endDrawingTime float64

	aggregate *Aggregate
}

// NewEntity creates an entity over its channels and transform source.
// parallelThreshold bounds when full cache rebuilds go parallel.
func NewEntity(src TransformSource, usePivots bool, parallelThreshold int) *Entity {
	e := &Entity{
		Source:           src,
		selectedKeyTimes: make(map[float64]bool),
		Positions:        NewPositionCache(),
	}
	e.Transforms = NewRangeCache(TransformResolver{Source: src, UsePivots: usePivots}, parallelThreshold)
	return e
}

// SetDrawing marks an edit gesture in progress, bounding aggregation at t.
func (e *Entity) SetDrawing(drawing bool, t float64) {
	e.drawing = drawing
	e.endDrawingTime = t
}

// Drawing reports whether an edit gesture is currently in progress.
func (e *Entity) Drawing() bool {
	return e.drawing
}

// Window returns the display window set by the last SetDisplayWindow.
func (e *Entity) Window() Window {
	return e.window
}

// SetDisplayWindow clamps the requested range to the entity's keyed range
// and to the playback bounds, then stores it. The keyed range only applies
// when all three translation channels carry keys; otherwise the playback
// bounds stand in.
func (e *Entity) SetDisplayWindow(start, end, playStart, playEnd float64) {
	minFrame, maxFrame := playStart, playEnd
	if channelKeyed(e.TX) && channelKeyed(e.TY) && channelKeyed(e.TZ) {
		minFrame = minKeyedTime(e.TX, e.TY, e.TZ)
		maxFrame = maxKeyedTime(e.TX, e.TY, e.TZ)
	}
	if start > maxFrame {
		start = maxFrame
	}
	if end < minFrame {
		end = minFrame
	}
	if start > end {
		start, end = end, start
	}
	e.window = Window{Start: max(start, minFrame), End: min(end, maxFrame)}
}

func minKeyedTime(cx, cy, cz Channel) float64 {
	m := cx.TimeAt(0)
	if t := cy.TimeAt(0); t < m {
		m = t
	}
	if t := cz.TimeAt(0); t < m {
		m = t
	}
	return m
}

func maxKeyedTime(cx, cy, cz Channel) float64 {
	m := cx.TimeAt(cx.NumKeys() - 1)
	if t := cy.TimeAt(cy.NumKeys() - 1); t > m {
		m = t
	}
	if t := cz.TimeAt(cz.NumKeys() - 1); t > m {
		m = t
	}
	return m
}

// IsWeighted reports whether any translation channel stores weighted
// tangents. Weighted and non-weighted tangent handling differ throughout.
func (e *Entity) IsWeighted() bool {
	for _, c := range []Channel{e.TX, e.TY, e.TZ} {
		if c != nil && c.IsWeighted() {
			return true
		}
	}
	return false
}

// Pos reads the raw local position at t. Constrained entities read nothing
// from their channels; their position comes from the transform cache.
func (e *Entity) Pos(t float64) mgl64.Vec3 {
	if e.Constrained {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{
		channelValueAt(e.TX, t),
		channelValueAt(e.TY, t),
		channelValueAt(e.TZ, t),
	}
}

// CachedPos reads the local position at t through the per-pass position
// cache, falling back to a direct channel read on a miss.
func (e *Entity) CachedPos(t float64) mgl64.Vec3 {
	return e.Positions.Lookup(t, e.Pos)
}

// CachePositions primes the position cache for one pass over [start, end].
func (e *Entity) CachePositions(start, end float64) {
	if e.Constrained {
		return
	}
	e.Positions.Rebuild(start, end, e.Pos)
}

// WorldPositionAt composes the local position at t with the cached parent
// transform.
func (e *Entity) WorldPositionAt(t float64) mgl64.Vec3 {
	e.Transforms.EnsureAt(t)
	m := e.Transforms.MatrixAt(t)
	if e.Constrained {
		return MatrixTranslation(m)
	}
	return TransformPoint(m, e.Pos(t))
}

// --- key selection -------------------------------------------------------

// SelectKeyAt marks the key at time t as selected by the tool.
func (e *Entity) SelectKeyAt(t float64) {
	e.selectedKeyTimes[t] = true
}

// DeselectKeyAt clears the selection mark at time t.
func (e *Entity) DeselectKeyAt(t float64) {
	delete(e.selectedKeyTimes, t)
}

// DeselectAllKeys clears the whole key selection.
func (e *Entity) DeselectAllKeys() {
	e.selectedKeyTimes = make(map[float64]bool)
}

// IsKeySelected reports whether the key at time t is selected.
func (e *Entity) IsKeySelected(t float64) bool {
	return e.selectedKeyTimes[t]
}

// SelectedKeyTimes returns the selected key times in ascending order.
func (e *Entity) SelectedKeyTimes() []float64 {
	return sortedTimes(e.selectedKeyTimes)
}

// --- key mutation --------------------------------------------------------

// AddKeyAt adds (or moves) a key at time t on all three translation
// channels. When worldPosition is non-nil it is mapped through the inverse
// parent transform at t; otherwise the current evaluated position keys the
// curves in place.
func (e *Entity) AddKeyAt(t float64, worldPosition *mgl64.Vec3, rec ChangeRecorder) {
	var pos mgl64.Vec3
	if worldPosition == nil {
		pos = e.Pos(t)
	} else {
		e.Transforms.EnsureAt(t)
		pos = TransformPoint(e.Transforms.MatrixAt(t).Inv(), *worldPosition)
	}
	addOrSetKey(e.TX, t, pos.X(), rec)
	addOrSetKey(e.TY, t, pos.Y(), rec)
	addOrSetKey(e.TZ, t, pos.Z(), rec)
}

func addOrSetKey(c Channel, t, v float64, rec ChangeRecorder) {
	if c == nil {
		return
	}
	if i, ok := c.FindKeyAt(t); ok {
		old := c.KeyValue(i)
		c.SetKeyValue(i, v)
		if rec != nil {
			rec.ValueChanged(c, t, old, v)
		}
		return
	}
	c.AddKey(t, v)
	if rec != nil {
		rec.KeyAdded(c, t, v)
	}
}

// RemoveKeyAt deletes the keys at time t from all translation and rotation
// channels.
func (e *Entity) RemoveKeyAt(t float64, rec ChangeRecorder) {
	for _, c := range []Channel{e.TX, e.TY, e.TZ, e.RX, e.RY, e.RZ} {
		removeKeyAtTime(c, t, rec)
	}
}

func removeKeyAtTime(c Channel, t float64, rec ChangeRecorder) {
	if c == nil {
		return
	}
	i, ok := c.FindKeyAt(t)
	if !ok {
		return
	}
	if rec != nil {
		v := c.KeyValue(i)
		in, _ := c.Tangent(i, TangentIn)
		out, _ := c.Tangent(i, TangentOut)
		rec.KeyRemoved(c, t, v, in, out)
	}
	c.RemoveKey(i)
}

// RemoveKeysInRange deletes all keys with time in (start, end], excluding
// the start boundary, from every channel.
func (e *Entity) RemoveKeysInRange(start, end float64, rec ChangeRecorder) {
	for _, c := range []Channel{e.TX, e.TY, e.TZ, e.RX, e.RY, e.RZ} {
		if c == nil {
			continue
		}
		for i := c.NumKeys() - 1; i >= 0; i-- {
			t := c.TimeAt(i)
			if t > start && t <= end {
				removeKeyAtTime(c, t, rec)
			}
		}
	}
}

// SetKeyWorldPosition moves the key at time t so that its world position
// becomes position. Only axes that actually carry a key are written.
func (e *Entity) SetKeyWorldPosition(position mgl64.Vec3, t float64, rec ChangeRecorder) {
	k, ok := e.KeyframeAt(t)
	if !ok {
		return
	}
	e.Transforms.EnsureAt(t)
	local := TransformPoint(e.Transforms.MatrixAt(t).Inv(), position)

	if k.XKeyID != -1 {
		setKeyValueAt(e.TX, k.XKeyID, t, local.X(), rec)
	}
	if k.YKeyID != -1 {
		setKeyValueAt(e.TY, k.YKeyID, t, local.Y(), rec)
	}
	if k.ZKeyID != -1 {
		setKeyValueAt(e.TZ, k.ZKeyID, t, local.Z(), rec)
	}
}

func setKeyValueAt(c Channel, i int, t, v float64, rec ChangeRecorder) {
	if c == nil {
		return
	}
	old := c.KeyValue(i)
	c.SetKeyValue(i, v)
	if rec != nil {
		rec.ValueChanged(c, t, old, v)
	}
}

// OffsetWorldPosition shifts the key at time t by a world-space offset.
func (e *Entity) OffsetWorldPosition(offset mgl64.Vec3, t float64, rec ChangeRecorder) {
	k, ok := e.KeyframeAt(t)
	if !ok {
		return
	}
	if k.XKeyID != -1 {
		setKeyValueAt(e.TX, k.XKeyID, t, e.TX.ValueAt(t)+offset.X(), rec)
	}
	if k.YKeyID != -1 {
		setKeyValueAt(e.TY, k.YKeyID, t, e.TY.ValueAt(t)+offset.Y(), rec)
	}
	if k.ZKeyID != -1 {
		setKeyValueAt(e.TZ, k.ZKeyID, t, e.TZ.ValueAt(t)+offset.Z(), rec)
	}
}
