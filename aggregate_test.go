package motionpath_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"

	"github.com/motiontools/motionpath"
	"github.com/motiontools/motionpath/memcurve"
	"github.com/motiontools/motionpath/settings"
)

func newTestEntity(weighted bool) *motionpath.Entity {
	e := motionpath.NewEntity(nil, false, 1000)
	e.TX = memcurve.NewKeyed(weighted, []float64{1, 10, 20}, []float64{0, 9, 19})
	e.TY = memcurve.NewKeyed(weighted, []float64{1, 10}, []float64{0, 5})
	e.TZ = memcurve.NewKeyed(weighted, []float64{1, 20}, []float64{0, 2})
	e.SetDisplayWindow(1, 20, 1, 200)
	return e
}

func buildAggregate(e *motionpath.Entity, cfg settings.Settings) *motionpath.Aggregate {
	return e.BuildKeyframes(cfg, nil, mgl64.Ident4())
}

func TestAggregationCompleteness(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	agg := buildAggregate(e, settings.Default())

	assert.Equal(t, 3, agg.Len())
	for _, tm := range []float64{1, 10, 20} {
		if _, ok := agg.At(tm); !ok {
			t.Errorf("expected a record at keyed time %g", tm)
		}
	}
	k, _ := agg.At(10)
	assert.NotEqual(t, -1, k.XKeyID)
	assert.NotEqual(t, -1, k.YKeyID)
	assert.Equal(t, -1, k.ZKeyID, "z is not keyed at 10")
	assert.False(t, k.HasTranslationXYZ())

	k, _ = agg.At(1)
	assert.True(t, k.HasTranslationXYZ())

	// ids are sequential in time order
	for i, rec := range agg.Records() {
		assert.Equal(t, i, rec.ID)
	}
}

func TestAggregationRotationOnlyRecord(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	e.RX = memcurve.NewKeyed(false, []float64{15}, []float64{90})

	cfg := settings.Default()
	cfg.ShowRotationKeyFrames = true
	agg := buildAggregate(e, cfg)

	k, ok := agg.At(15)
	if !ok {
		t.Fatalf("expected a record for the rotation-only key at 15")
	}
	assert.Equal(t, -1, k.XKeyID)
	assert.NotEqual(t, -1, k.XRotKeyID)
	assert.Equal(t, []motionpath.Axis{motionpath.AxisX}, k.RotateAxes())

	// without the toggle the record disappears
	cfg.ShowRotationKeyFrames = false
	agg = buildAggregate(e, cfg)
	if _, ok := agg.At(15); ok {
		t.Errorf("rotation keys must not aggregate when the toggle is off")
	}
}

func TestAggregationSkippedWithoutTranslationKeys(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := motionpath.NewEntity(nil, false, 1000)
	e.RX = memcurve.NewKeyed(false, []float64{5}, []float64{45})
	cfg := settings.Default()
	cfg.ShowRotationKeyFrames = true
	agg := buildAggregate(e, cfg)
	assert.Equal(t, 0, agg.Len())
}

func TestAggregationWindowBounds(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	e.SetDisplayWindow(5, 15, 1, 200)
	agg := buildAggregate(e, settings.Default())
	assert.Equal(t, []float64{10}, agg.Times(), "only keys inside the window aggregate")
}

func TestAggregationDrawingTruncatesAtAnchor(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	e.SetDrawing(true, 10)
	agg := buildAggregate(e, settings.Default())
	assert.Equal(t, []float64{1, 10}, agg.Times())
	for _, k := range agg.Records() {
		assert.False(t, k.ShowInTangent, "tangents hide while drawing")
		assert.False(t, k.ShowOutTangent)
	}
	e.SetDrawing(false, 0)
	agg = buildAggregate(e, settings.Default())
	assert.Equal(t, []float64{1, 10, 20}, agg.Times())
}

func TestAggregationBoundaryTangents(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// all channels share first/last key times, so the boundary handles hide
	e := motionpath.NewEntity(nil, false, 1000)
	e.TX = memcurve.NewKeyed(false, []float64{1, 10, 20}, []float64{0, 1, 2})
	e.TY = memcurve.NewKeyed(false, []float64{1, 10, 20}, []float64{0, 1, 2})
	e.TZ = memcurve.NewKeyed(false, []float64{1, 10, 20}, []float64{0, 1, 2})
	e.SetDisplayWindow(1, 20, 1, 200)
	agg := buildAggregate(e, settings.Default())

	first, _ := agg.At(1)
	mid, _ := agg.At(10)
	last, _ := agg.At(20)
	assert.False(t, first.ShowInTangent)
	assert.True(t, first.ShowOutTangent)
	assert.True(t, mid.ShowInTangent)
	assert.True(t, mid.ShowOutTangent)
	assert.True(t, last.ShowInTangent)
	assert.False(t, last.ShowOutTangent)
}

func TestAggregationBoundaryTangentsPartialChannels(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// only x and y carry keys; the boundary pass still applies per channel
	e := motionpath.NewEntity(nil, false, 1000)
	e.TX = memcurve.NewKeyed(false, []float64{1, 20}, []float64{0, 2})
	e.TY = memcurve.NewKeyed(false, []float64{1, 10}, []float64{0, 1})
	e.SetDisplayWindow(1, 20, 1, 200)
	agg := buildAggregate(e, settings.Default())

	first, _ := agg.At(1)
	mid, _ := agg.At(10)
	last, _ := agg.At(20)
	// both channels start together but continue past each other's boundary
	assert.True(t, first.ShowInTangent)
	assert.False(t, mid.ShowOutTangent, "y dangles alone at 10")
	assert.False(t, last.ShowOutTangent, "x dangles alone at 20")
	assert.True(t, last.ShowInTangent)
}

func TestAggregationSelectionMarking(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	e.SelectKeyAt(10)
	agg := buildAggregate(e, settings.Default())
	k, _ := agg.At(10)
	assert.True(t, k.Selected)
	k, _ = agg.At(1)
	assert.False(t, k.Selected)

	assert.Equal(t, []float64{10}, e.SelectedKeyTimes())
	e.DeselectAllKeys()
	assert.Empty(t, e.SelectedKeyTimes())
}

func TestKeyIDLookups(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := newTestEntity(false)
	buildAggregate(e, settings.Default())

	tm, ok := e.TimeOfKeyID(1)
	assert.True(t, ok)
	assert.Equal(t, 10.0, tm)

	before, hasBefore, after, hasAfter := e.Boundaries(10)
	assert.True(t, hasBefore)
	assert.True(t, hasAfter)
	assert.Equal(t, 1.0, before)
	assert.Equal(t, 20.0, after)

	_, hasBefore, _, _ = e.Boundaries(1)
	assert.False(t, hasBefore)
}
