package motionpath

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrEmptyClipboard is returned by Paste when nothing has been copied.
var ErrEmptyClipboard = errors.New("motionpath: clipboard is empty")

// KeyCopy is one copied key, stored relative to the first copied key so a
// paste can re-anchor the block at any target time. Tangents are kept as
// the per-axis curve components, independent of any parent transform.
type KeyCopy struct {
	TimeDelta      float64 // time offset from the first copied key
	WorldPosition  mgl64.Vec3
	InTangent      mgl64.Vec3
	OutTangent     mgl64.Vec3
	TranslateAxes  [3]bool
	TangentsLocked bool
}

// Clipboard holds copied keys between edit operations. The zero value is
// an empty clipboard ready for use.
type Clipboard struct {
	keys []KeyCopy
	span float64 // TimeDelta of the last copied key
}

// Len returns the number of copied keys.
func (cb *Clipboard) Len() int { return len(cb.keys) }

// Clear drops the copied keys.
func (cb *Clipboard) Clear() {
	cb.keys = nil
	cb.span = 0
}

// CopySelected snapshots the entity's selected keys. Keys are copied in
// time order; an empty selection leaves the clipboard untouched and
// returns 0.
func (cb *Clipboard) CopySelected(e *Entity) int {
	times := e.SelectedKeyTimes()
	if len(times) == 0 {
		return 0
	}
	cb.Clear()
	anchor := times[0]
	for _, t := range times {
		k, ok := e.KeyframeAt(t)
		if !ok {
			continue
		}
		kc := KeyCopy{
			TimeDelta:      t - anchor,
			WorldPosition:  k.WorldPosition,
			InTangent:      k.InTangent,
			OutTangent:     k.OutTangent,
			TangentsLocked: k.TangentsLocked,
		}
		kc.TranslateAxes[AxisX] = k.XKeyID != -1
		kc.TranslateAxes[AxisY] = k.YKeyID != -1
		kc.TranslateAxes[AxisZ] = k.ZKeyID != -1
		cb.keys = append(cb.keys, kc)
		cb.span = kc.TimeDelta
	}
	tracer().Debugf("copied %d keys spanning %g frames", len(cb.keys), cb.span)
	return len(cb.keys)
}

// Paste re-creates the copied keys starting at time t. Existing keys in the
// covered time range are removed first. With offset set, the block keeps
// its shape but is anchored at the entity's current position at t instead
// of the copied absolute world positions.
func (cb *Clipboard) Paste(e *Entity, t float64, offset bool, rec ChangeRecorder) error {
	if len(cb.keys) == 0 {
		return ErrEmptyClipboard
	}
	var shift mgl64.Vec3
	if offset {
		shift = e.WorldPositionAt(t).Sub(cb.keys[0].WorldPosition)
	}

	// (t, t+span] is cleared; a key exactly at t is overwritten by AddKeyAt.
	if cb.span > 0 {
		e.RemoveKeysInRange(t, t+cb.span, rec)
	}

	// Keys first, tangents second: curve backends recompute neighboring
	// auto tangents on insert, which would stomp restored handles.
	for _, kc := range cb.keys {
		world := kc.WorldPosition.Add(shift)
		e.AddKeyAt(t+kc.TimeDelta, &world, rec)
	}
	for _, kc := range cb.keys {
		target := t + kc.TimeDelta
		// SetTangentComponent negates in-side input, so feed it the
		// handle-direction value to store the component unchanged.
		SetTangentComponent(e.TX, target, TangentIn, -kc.InTangent.X(), rec)
		SetTangentComponent(e.TY, target, TangentIn, -kc.InTangent.Y(), rec)
		SetTangentComponent(e.TZ, target, TangentIn, -kc.InTangent.Z(), rec)
		SetTangentComponent(e.TX, target, TangentOut, kc.OutTangent.X(), rec)
		SetTangentComponent(e.TY, target, TangentOut, kc.OutTangent.Y(), rec)
		SetTangentComponent(e.TZ, target, TangentOut, kc.OutTangent.Z(), rec)
	}
	e.Transforms.Invalidate()
	return nil
}
