package motionpath

import "github.com/go-gl/mathgl/mgl64"

// FrameSample holds the raw per-frame inputs collected from a
// TransformSource before any composition happens. Collecting and composing
// are split so a cache rebuild can farm the pure arithmetic out to worker
// goroutines while all source queries stay on the control goroutine.
type FrameSample struct {
	Time           float64
	Parent         mgl64.Mat4
	Pivot          mgl64.Vec3
	PivotTranslate mgl64.Vec3
	UsePivots      bool
}

// FrameSampler splits transform resolution into a sequential collect step
// and a parallel-safe compose step.
type FrameSampler interface {
	// CollectFrame queries the external source; control goroutine only.
	CollectFrame(t float64) FrameSample
	// ComposeFrame is pure arithmetic over an already collected sample and
	// may run on any goroutine.
	ComposeFrame(s FrameSample) mgl64.Mat4
}

// TransformResolver resolves the composed parent transform of one entity
// at a discrete time, optionally folding in pivot offsets.
type TransformResolver struct {
	Source    TransformSource
	UsePivots bool
}

var _ FrameSampler = TransformResolver{}

// CollectFrame reads the parent matrix and pivot vectors at t. Missing
// data degrades to identity/zero; an entity with a broken hierarchy must
// still render something.
func (r TransformResolver) CollectFrame(t float64) FrameSample {
	s := FrameSample{Time: t, Parent: mgl64.Ident4(), UsePivots: r.UsePivots}
	if r.Source == nil {
		return s
	}
	if m, ok := r.Source.ParentMatrixAt(t); ok {
		s.Parent = m
	}
	if !r.UsePivots {
		return s
	}
	if p, ok := r.Source.PivotAt(t); ok {
		s.Pivot = p
	}
	if p, ok := r.Source.PivotTranslateAt(t); ok {
		s.PivotTranslate = p
	}
	return s
}

// ComposeFrame folds the pivot offsets into the parent transform. Both
// pivot terms are pure translations, applied before the parent.
func (r TransformResolver) ComposeFrame(s FrameSample) mgl64.Mat4 {
	if !s.UsePivots {
		return s.Parent
	}
	off := s.Pivot.Add(s.PivotTranslate)
	return s.Parent.Mul4(mgl64.Translate3D(off.X(), off.Y(), off.Z()))
}

// Resolve collects and composes in one step, for single-frame lookups.
func (r TransformResolver) Resolve(t float64) mgl64.Mat4 {
	return r.ComposeFrame(r.CollectFrame(t))
}

// TransformPoint applies m to a position (w = 1).
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformVector applies m to a direction (w = 0, no translation).
func TransformVector(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// MatrixTranslation extracts the translation column of m.
func MatrixTranslation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}
