/*
Package render produces the drawable state of a motion path for one frame.
A Pass walks the entity's caches and aggregate and emits primitives in a
fixed order through a Sink, leaving the actual drawing to the host's
viewport implementation.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package render

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"

	"github.com/motiontools/motionpath"
	"github.com/motiontools/motionpath/settings"
)

// tracer writes to trace with key 'motionpath.render'
func tracer() tracing.Trace {
	return tracing.Select("motionpath.render")
}

// Sink receives draw primitives in world coordinates. Implementations
// translate them into whatever the host viewport draws with; the pass
// itself never cares which sink variant it feeds.
type Sink interface {
	Line(from, to mgl64.Vec3, color settings.Color, width float64)
	Point(p mgl64.Vec3, color settings.Color, size float64)
	Label(p mgl64.Vec3, text string, color settings.Color, size float64)
}

// LegacySink marks a sink drawing through an immediate-mode pipeline.
// Immediate-mode hosts bracket the pass with their own state push/pop.
type LegacySink interface {
	Sink
	BeginImmediate()
	EndImmediate()
}

// OverlaySink marks a sink that batches primitives into retained overlay
// geometry owned by the host.
type OverlaySink interface {
	Sink
	Commit() error
}

// Pass renders one entity's motion path state for one frame.
type Pass struct {
	Entity  *motionpath.Entity
	Cameras motionpath.CameraResolver // nil outside camera-relative display
	Config  settings.Settings
	Now     float64 // current frame
}

// Render emits the full path state: path polyline, buffer paths are the
// caller's to draw, key points, tangent handles, the current frame marker
// and labels, in that order. All reads come from the caches and the
// aggregate as rebuilt by the caller for this window snapshot.
func (p Pass) Render(sink Sink) {
	if l, ok := sink.(LegacySink); ok {
		l.BeginImmediate()
		defer l.EndImmediate()
	}

	cfg := p.Config
	window := p.Entity.Window()

	if cfg.ShowPath {
		p.renderPath(sink, window)
	}
	if cfg.ShowKeyFrames {
		p.renderKeys(sink)
	}
	if cfg.ShowTangents {
		p.renderTangents(sink)
	}
	p.renderCurrentFrame(sink)
	if cfg.ShowFrameNumbers || cfg.ShowKeyFrameNumbers {
		p.renderLabels(sink, window)
	}

	if o, ok := sink.(OverlaySink); ok {
		if err := o.Commit(); err != nil {
			tracer().Errorf("overlay commit failed: %v", err)
		}
	}
}

// displayed maps a world position into display space; camera-relative
// display bridges through the camera cache and reports failure for frames
// it does not cover.
func (p Pass) displayed(world mgl64.Vec3, t float64) (mgl64.Vec3, bool) {
	if p.Config.DrawMode != settings.CameraSpace {
		return world, true
	}
	if p.Cameras == nil {
		return mgl64.Vec3{}, false
	}
	mt, ok := p.Cameras.CameraMatrixAt(t)
	if !ok {
		return mgl64.Vec3{}, false
	}
	mnow, ok := p.Cameras.CameraMatrixAt(p.Now)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return motionpath.TransformPoint(mnow.Inv().Mul4(mt), world), true
}

func (p Pass) pathColor() settings.Color {
	if p.Entity.IsWeighted() {
		return p.Config.WeightedPathColor
	}
	return p.Config.PathColor
}

func (p Pass) renderPath(sink Sink, window motionpath.Window) {
	cfg := p.Config
	color := p.pathColor()
	alt := color.Scaled(0.55)

	var prev mgl64.Vec3
	havePrev := false
	i := 0
	for t := window.Start; t <= window.End; t += cfg.DrawTimeInterval {
		pos, ok := p.displayed(p.Entity.WorldPositionAt(t), t)
		if !ok {
			havePrev = false
			continue
		}
		if havePrev {
			c := color
			if cfg.AlternatingFrames && i%2 == 1 {
				c = alt
			}
			sink.Line(prev, pos, c, cfg.PathSize)
		}
		prev, havePrev = pos, true
		i++
	}
}

// keyColor classifies a record: fully keyed translations draw in the
// keyframe color, partially keyed or rotation-only records in the partial
// color, selected keys always in the selection color.
func (p Pass) keyColor(k *motionpath.Keyframe) settings.Color {
	switch {
	case k.Selected:
		return p.Config.SelectedKeyColor
	case k.HasTranslationXYZ():
		return p.Config.KeyframeColor
	default:
		return p.Config.PartialKeyColor
	}
}

func (p Pass) renderKeys(sink Sink) {
	cfg := p.Config
	for _, k := range p.Entity.Keyframes().Records() {
		size := cfg.FrameSize * settings.KeyframeSizeMultiplier
		if k.Selected {
			size *= settings.SelectedKeySizeMultiplier
		}
		sink.Point(k.WorldPosition, p.keyColor(k), size)
	}
}

func (p Pass) tangentColor(k *motionpath.Keyframe) settings.Color {
	switch {
	case p.Entity.IsWeighted():
		return p.Config.WeightedTangentCol
	case !k.TangentsLocked:
		return p.Config.BrokenTangentColor
	default:
		return p.Config.TangentColor
	}
}

func (p Pass) renderTangents(sink Sink) {
	cfg := p.Config
	for _, k := range p.Entity.Keyframes().Records() {
		color := p.tangentColor(k)
		if k.ShowInTangent {
			sink.Line(k.WorldPosition, k.InHandle, color, cfg.PathSize)
			sink.Point(k.InHandle, color, cfg.FrameSize)
		}
		if k.ShowOutTangent {
			sink.Line(k.WorldPosition, k.OutHandle, color, cfg.PathSize)
			sink.Point(k.OutHandle, color, cfg.FrameSize)
		}
	}
}

func (p Pass) renderCurrentFrame(sink Sink) {
	window := p.Entity.Window()
	if p.Now < window.Start || p.Now > window.End {
		return
	}
	pos, ok := p.displayed(p.Entity.WorldPositionAt(p.Now), p.Now)
	if !ok {
		return
	}
	sink.Point(pos, p.Config.CurrentFrameColor,
		p.Config.FrameSize*settings.CurrentFrameSizeMultiplier)
}

func (p Pass) renderLabels(sink Sink, window motionpath.Window) {
	cfg := p.Config
	if cfg.ShowFrameNumbers {
		step := float64(cfg.DrawFrameInterval)
		for t := math.Ceil(window.Start); t <= window.End; t += step {
			pos, ok := p.displayed(p.Entity.WorldPositionAt(t), t)
			if !ok {
				continue
			}
			sink.Label(pos, formatFrame(t), cfg.FrameLabelColor, cfg.FrameLabelSize)
		}
	}
	if cfg.ShowKeyFrameNumbers {
		for _, k := range p.Entity.Keyframes().Records() {
			sink.Label(k.WorldPosition, formatFrame(k.Time),
				cfg.KeyframeLabelColor, cfg.KeyframeLabelSize)
		}
	}
}

// RenderBufferPath draws a frozen path ghost using the pass's sink
// conventions. Buffer paths are world-space snapshots and never bridge
// through the camera.
func (p Pass) RenderBufferPath(sink Sink, bp *motionpath.BufferPath) {
	if bp == nil || len(bp.FramePoints) == 0 {
		return
	}
	cfg := p.Config
	for i := 1; i < len(bp.FramePoints); i++ {
		sink.Line(bp.FramePoints[i-1], bp.FramePoints[i], cfg.BufferPathColor, cfg.PathSize)
	}
	for _, kp := range bp.KeyPoints {
		sink.Point(kp, cfg.BufferPathColor, cfg.FrameSize*settings.KeyframeSizeMultiplier)
	}
}

func formatFrame(t float64) string {
	if t == math.Trunc(t) {
		return fmt.Sprintf("%d", int64(t))
	}
	return fmt.Sprintf("%.2f", t)
}
