package stroke

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/motiontools/motionpath"
	"github.com/motiontools/motionpath/projection"
	"github.com/motiontools/motionpath/settings"
)

// ErrGestureActive is returned when a gesture begins while another one is
// still in flight.
var ErrGestureActive = errors.New("stroke: another gesture is active")

// ErrNoKeyAtAnchor is returned when the anchor time carries no keyframe.
var ErrNoKeyAtAnchor = errors.New("stroke: no keyframe at anchor time")

// State is the session's gesture state.
type State int

const (
	// Idle means no gesture is in flight.
	Idle State = iota
	// SingleDrag moves one key directly with the pointer.
	SingleDrag
	// StrokeRemap collects a stroke and reshapes a run of existing keys.
	StrokeRemap
	// FreehandSynth collects a stroke and synthesizes a new run of keys.
	FreehandSynth
)

// Session owns the state of one edit gesture: the accumulated stroke
// points, the anchor key, and the collaborators needed to resolve the
// gesture into curve edits on release. Stroke state is cleared on release
// or cancel; a session is reusable across gestures.
type Session struct {
	entity  *motionpath.Entity
	view    projection.Viewport
	cameras *projection.CameraCache
	cfg     settings.Settings
	rec     motionpath.ChangeRecorder

	state      State
	points     []Pt
	anchorTime float64
	anchorDisp mgl64.Vec3 // anchor position in display space
	now        float64    // current frame, anchors camera-relative display
}

// NewSession creates an idle session for one entity and viewport.
func NewSession(e *motionpath.Entity, vp projection.Viewport, cfg settings.Settings) *Session {
	return &Session{entity: e, view: vp, cfg: cfg.Sanitized()}
}

// UseCameras wires the camera cache needed for camera-relative display.
func (s *Session) UseCameras(cc *projection.CameraCache) *Session {
	s.cameras = cc
	return s
}

// Record wires the undo recorder all gesture edits are reported to.
func (s *Session) Record(rec motionpath.ChangeRecorder) *Session {
	s.rec = rec
	return s
}

// State returns the current gesture state.
func (s *Session) State() State {
	return s.state
}

// Points returns the stroke points collected so far.
func (s *Session) Points() []Pt {
	return s.points
}

// BeginDrag starts a single-key drag on the key at anchorTime.
func (s *Session) BeginDrag(anchorTime, now, x, y float64) error {
	return s.begin(SingleDrag, anchorTime, now, x, y)
}

// BeginRemap starts collecting a stroke that will reshape the run of keys
// reachable from the key at anchorTime.
func (s *Session) BeginRemap(anchorTime, now, x, y float64) error {
	return s.begin(StrokeRemap, anchorTime, now, x, y)
}

// BeginSynth starts collecting a stroke that will synthesize a new run of
// keys after anchorTime. While collecting, the entity's aggregation is
// truncated at the anchor so the keys about to be replaced disappear from
// display.
func (s *Session) BeginSynth(anchorTime, now, x, y float64) error {
	if err := s.begin(FreehandSynth, anchorTime, now, x, y); err != nil {
		return err
	}
	s.entity.SetDrawing(true, anchorTime)
	return nil
}

func (s *Session) begin(state State, anchorTime, now, x, y float64) error {
	if s.state != Idle {
		return ErrGestureActive
	}
	k, ok := s.entity.KeyframeAt(anchorTime)
	if !ok {
		return ErrNoKeyAtAnchor
	}
	s.state = state
	s.anchorTime = anchorTime
	s.anchorDisp = k.WorldPosition
	s.now = now
	s.points = append(s.points[:0], P(x, y))
	return nil
}

// Move feeds a pointer position into the active gesture. A single drag
// writes through immediately; stroke gestures append the point if it is
// far enough from the previously collected one.
func (s *Session) Move(x, y float64) {
	switch s.state {
	case Idle:
		return
	case SingleDrag:
		s.dragTo(x, y)
	default:
		last := s.points[len(s.points)-1]
		if last.Dist(P(x, y)) >= s.cfg.StrokeSpacing {
			s.points = append(s.points, P(x, y))
		}
	}
}

// Release ends the gesture, resolving stroke gestures into curve edits.
// Strokes with fewer than 2 points resolve to a no-op.
func (s *Session) Release() error {
	defer s.reset()
	switch s.state {
	case StrokeRemap:
		return s.resolveRemap()
	case FreehandSynth:
		return s.resolveSynth()
	}
	return nil
}

// Cancel drops the gesture without resolving it. Single-drag edits already
// written through are the recorder's to roll back.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	if s.state == FreehandSynth {
		s.entity.SetDrawing(false, 0)
	}
	s.state = Idle
	s.points = s.points[:0]
}

// dragTo writes the pointer position through to the anchor key. A failed
// plane intersection or camera bridge leaves the key where it was.
func (s *Session) dragTo(x, y float64) {
	delta, err := projection.ScreenDeltaToWorldDelta(s.view, s.anchorDisp, x, y)
	if err != nil {
		return
	}
	disp := s.anchorDisp.Add(delta)
	world, ok := s.worldFromDisplayed(disp, s.anchorTime)
	if !ok {
		return
	}
	s.entity.SetKeyWorldPosition(world, s.anchorTime, s.rec)
	s.anchorDisp = disp
	s.entity.Positions.Clear()
}

// worldFromDisplayed maps a display-space position back to world space.
// In world display mode this is the identity; camera-relative display
// bridges through the camera cache and can fail for uncached frames.
func (s *Session) worldFromDisplayed(p mgl64.Vec3, t float64) (mgl64.Vec3, bool) {
	if s.cfg.DrawMode != settings.CameraSpace {
		return p, true
	}
	if s.cameras == nil {
		return mgl64.Vec3{}, false
	}
	return s.cameras.FromCameraRelative(p, t, s.now)
}

// screenOf projects an aggregated key into screen space.
func (s *Session) screenOf(k *motionpath.Keyframe) (Pt, bool) {
	x, y, ok := s.view.WorldToScreen(k.WorldPosition)
	return P(x, y), ok
}

// resolveRemap reshapes the walked run of keys onto the stroke.
func (s *Session) resolveRemap() error {
	if len(s.points) < 2 {
		return nil
	}
	records := s.entity.Keyframes().Records()
	anchorIdx := -1
	for i, k := range records {
		if k.Time == s.anchorTime {
			anchorIdx = i
			break
		}
	}
	if anchorIdx < 0 {
		return ErrNoKeyAtAnchor
	}

	dir := s.walkDirection(records, anchorIdx)
	if dir == 0 {
		tracer().Debugf("ambiguous stroke direction, remap skipped")
		return nil
	}
	run := s.walkRun(records, anchorIdx, dir)

	// Stage all conversions before touching the curves: a sample that
	// fails to convert stays untouched, everything else commits.
	type staged struct {
		time  float64
		world mgl64.Vec3
	}
	var commits []staged

	var targets []Pt
	if s.cfg.StrokeMode == settings.StrokeSpread {
		targets = spreadTargets(s.points, len(run))
	}
	for i, k := range run {
		oldScreen, ok := s.screenOf(k)
		if !ok {
			continue
		}
		var target Pt
		if s.cfg.StrokeMode == settings.StrokeSpread {
			target = targets[i]
		} else {
			target = closestOnPolyline(s.points, oldScreen)
		}
		delta, err := projection.ScreenDeltaToWorldDelta(s.view, k.WorldPosition, target.X(), target.Y())
		if err != nil {
			continue
		}
		world, ok := s.worldFromDisplayed(k.WorldPosition.Add(delta), k.Time)
		if !ok {
			continue
		}
		commits = append(commits, staged{time: k.Time, world: world})
	}

	// Delete and re-add so the curves recompute tangents for the new
	// geometry instead of keeping stale handles.
	for _, c := range commits {
		s.entity.RemoveKeyAt(c.time, s.rec)
	}
	for _, c := range commits {
		world := c.world
		s.entity.AddKeyAt(c.time, &world, s.rec)
	}
	if len(commits) > 0 {
		s.entity.Positions.Clear()
	}
	tracer().Debugf("remapped %d of %d keys in run", len(commits), len(run))
	return nil
}

// walkDirection picks the time direction the stroke points in: the mean
// stroke direction is compared against the screen vectors from the anchor
// to its two time neighbors, and the better aligned neighbor wins. Both
// non-positive means the stroke is ambiguous and resolves to no direction.
func (s *Session) walkDirection(records []*motionpath.Keyframe, anchorIdx int) int {
	mean, ok := meanDirection(s.points)
	if !ok {
		return 0
	}
	anchorScreen, ok := s.screenOf(records[anchorIdx])
	if !ok {
		return 0
	}
	align := func(idx int) float64 {
		if idx < 0 || idx >= len(records) {
			return -1
		}
		p, ok := s.screenOf(records[idx])
		if !ok {
			return -1
		}
		v, ok := Pt(p.C() - anchorScreen.C()).Normalized()
		if !ok {
			return -1
		}
		return mean.Dot(v)
	}
	backward := align(anchorIdx - 1)
	forward := align(anchorIdx + 1)
	if backward <= 0 && forward <= 0 {
		return 0
	}
	if forward >= backward {
		return 1
	}
	return -1
}

// walkRun collects the keys belonging to the stroke by walking outward
// from the anchor while the distance to the stroke's end point keeps
// shrinking. The anchor itself only seeds the walk and is never part of
// the run: the key the user grabbed stays pinned. A bounded number of
// consecutive worse steps is tolerated; when the distance recovers within
// the bound the buffered keys splice back into the run, otherwise the
// walk stops before them.
func (s *Session) walkRun(records []*motionpath.Keyframe, anchorIdx, dir int) []*motionpath.Keyframe {
	last := s.points[len(s.points)-1]
	var run []*motionpath.Keyframe
	best := math.Inf(1)
	if p, ok := s.screenOf(records[anchorIdx]); ok {
		best = last.Dist(p)
	}

	var buffered []*motionpath.Keyframe
	worse := 0
	for i := anchorIdx + dir; i >= 0 && i < len(records); i += dir {
		p, ok := s.screenOf(records[i])
		if !ok {
			break
		}
		d := last.Dist(p)
		if d <= best {
			run = append(run, buffered...)
			run = append(run, records[i])
			buffered = buffered[:0]
			worse = 0
			best = d
			continue
		}
		buffered = append(buffered, records[i])
		worse++
		if worse > s.cfg.StrokeTolerance {
			break
		}
	}
	return run
}

// resolveSynth replaces the keys after the anchor with a run sampled off
// the stroke at even frame spacing.
func (s *Session) resolveSynth() error {
	n := len(s.points)
	if n < 2 {
		return nil
	}
	count := s.cfg.DrawKeyCount
	spacing := float64(s.cfg.DrawKeySpacing)
	if count < 1 {
		return nil
	}
	if spacing <= 0 {
		spacing = 1
	}

	type staged struct {
		time  float64
		world mgl64.Vec3
	}
	var commits []staged
	for i := 0; i < count; i++ {
		idx := synthIndex(i, n, count)
		t := s.anchorTime + float64(i+1)*spacing
		p := s.points[idx]
		delta, err := projection.ScreenDeltaToWorldDelta(s.view, s.anchorDisp, p.X(), p.Y())
		if err != nil {
			continue
		}
		world, ok := s.worldFromDisplayed(s.anchorDisp.Add(delta), t)
		if !ok {
			continue
		}
		commits = append(commits, staged{time: t, world: world})
	}
	if len(commits) == 0 {
		return nil
	}

	s.entity.RemoveKeysInRange(s.anchorTime, s.anchorTime+float64(count)*spacing, s.rec)
	for _, c := range commits {
		world := c.world
		s.entity.AddKeyAt(c.time, &world, s.rec)
	}
	s.entity.Positions.Clear()
	tracer().Debugf("synthesized %d keys after frame %g", len(commits), s.anchorTime)
	return nil
}

// synthIndex maps target key i of count onto a stroke point index. The
// stroke's own first point coincides with the anchor and is always
// skipped.
func synthIndex(i, pointCount, count int) int {
	idx := ceilDiv((i+1)*(pointCount-1), count+1)
	if idx < 1 {
		idx = 1
	}
	if idx > pointCount-1 {
		idx = pointCount - 1
	}
	return idx
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
