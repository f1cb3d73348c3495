package motionpath_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"

	"github.com/motiontools/motionpath"
	"github.com/motiontools/motionpath/settings"
)

func TestWeightedTangentComponentRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(true)

	motionpath.SetTangentComponent(e.TX, 10, motionpath.TangentOut, 1.5, nil)
	i, _ := e.TX.FindKeyAt(10)
	assert.InDelta(t, 1.5, motionpath.TangentComponent(e.TX, i, motionpath.TangentOut), 1e-9)

	// in-side values store negated: the caller hands in the handle
	// direction, the curve keeps the forward component
	motionpath.SetTangentComponent(e.TX, 10, motionpath.TangentIn, 2.0, nil)
	assert.InDelta(t, -2.0, motionpath.TangentComponent(e.TX, i, motionpath.TangentIn), 1e-9)
}

func TestNonWeightedTangentComponentRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	// weight stays 1 for auto tangents, so angle/weight round-trips exactly
	motionpath.SetTangentComponent(e.TY, 10, motionpath.TangentOut, 0.75, nil)
	i, _ := e.TY.FindKeyAt(10)
	assert.InDelta(t, 0.75, motionpath.TangentComponent(e.TY, i, motionpath.TangentOut), 1e-9)
}

func TestSetTangentWorldPosition(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(true)
	buildAggregate(e, settings.Default())

	k, _ := e.KeyframeAt(10)
	target := k.WorldPosition.Add(mgl64.Vec3{3, 1, 0})
	e.SetTangentWorldPosition(target, 10, motionpath.TangentOut, mgl64.Ident4(), nil)

	agg := buildAggregate(e, settings.Default())
	k, _ = agg.At(10)
	assert.InDelta(t, target.X(), k.OutTangentWorld.X(), 1e-9)
	assert.InDelta(t, target.Y(), k.OutTangentWorld.Y(), 1e-9)
	assert.InDelta(t, target.Z(), k.OutTangentWorld.Z(), 1e-9)
}

func TestSetTangentWorldPositionInSide(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(true)
	buildAggregate(e, settings.Default())

	k, _ := e.KeyframeAt(10)
	target := k.WorldPosition.Add(mgl64.Vec3{-2, 0.5, 0})
	e.SetTangentWorldPosition(target, 10, motionpath.TangentIn, mgl64.Ident4(), nil)

	agg := buildAggregate(e, settings.Default())
	k, _ = agg.At(10)
	assert.InDelta(t, target.X(), k.InTangentWorld.X(), 1e-9)
	assert.InDelta(t, target.Y(), k.InTangentWorld.Y(), 1e-9)
}

func TestTangentLockAggregation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	// break one axis at time 10; the record must report broken tangents
	// no matter how the other axes are locked
	i, _ := e.TY.FindKeyAt(10)
	e.TY.SetTangentsLocked(i, false)
	agg := buildAggregate(e, settings.Default())
	k, _ := agg.At(10)
	assert.False(t, k.TangentsLocked)

	k, _ = agg.At(1)
	assert.True(t, k.TangentsLocked)
}
