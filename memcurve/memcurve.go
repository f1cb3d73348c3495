/*
Package memcurve provides an in-memory animation curve implementing the
core's Channel contract: strictly increasing key times, cubic hermite
evaluation between keys, and tangents stored in either the weighted or the
angle/weight representation.

Hosts embedding the core bring their own curve backend; memcurve is the
reference collaborator used by the test suite and by standalone tools.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package memcurve

import (
	"math"
	"sort"

	"github.com/motiontools/motionpath"
)

// timeEpsilon is the tolerance for matching key times exactly.
const timeEpsilon = 1e-9

type key struct {
	time  float64
	value float64
	in    motionpath.TangentRepr
	out   motionpath.TangentRepr

	tangentsLocked bool
	weightsLocked  bool
}

// Curve is one scalar in-memory animation curve.
type Curve struct {
	keys     []key
	weighted bool
}

var _ motionpath.Channel = &Curve{}

// New creates an empty curve. weighted selects the tangent representation
// for the whole curve.
func New(weighted bool) *Curve {
	return &Curve{weighted: weighted}
}

// NewKeyed creates a curve pre-populated with keys at times[i] -> values[i].
// Both slices must have equal length; times need not be sorted.
func NewKeyed(weighted bool, times, values []float64) *Curve {
	c := New(weighted)
	for i := range times {
		c.AddKey(times[i], values[i])
	}
	return c
}

// NumKeys returns the number of keys.
func (c *Curve) NumKeys() int {
	return len(c.keys)
}

// TimeAt returns the time of key i.
func (c *Curve) TimeAt(i int) float64 {
	return c.keys[i].time
}

// KeyValue returns the value of key i.
func (c *Curve) KeyValue(i int) float64 {
	return c.keys[i].value
}

// FindKeyAt returns the index of the key at time t, if one exists.
func (c *Curve) FindKeyAt(t float64) (int, bool) {
	i := sort.Search(len(c.keys), func(i int) bool {
		return c.keys[i].time >= t-timeEpsilon
	})
	if i < len(c.keys) && math.Abs(c.keys[i].time-t) <= timeEpsilon {
		return i, true
	}
	return 0, false
}

// ValueAt evaluates the curve at time t. Before the first and after the
// last key the end value holds; between keys a cubic hermite segment
// honoring the stored tangent slopes interpolates.
func (c *Curve) ValueAt(t float64) float64 {
	n := len(c.keys)
	if n == 0 {
		return 0
	}
	if t <= c.keys[0].time {
		return c.keys[0].value
	}
	if t >= c.keys[n-1].time {
		return c.keys[n-1].value
	}
	i := sort.Search(n, func(i int) bool { return c.keys[i].time > t }) - 1
	k0, k1 := c.keys[i], c.keys[i+1]

	h := k1.time - k0.time
	s := (t - k0.time) / h
	m0 := slope(k0.out)
	m1 := slope(k1.in)

	s2 := s * s
	s3 := s2 * s
	return (2*s3-3*s2+1)*k0.value +
		(s3-2*s2+s)*h*m0 +
		(-2*s3+3*s2)*k1.value +
		(s3-s2)*h*m1
}

// slope converts a stored tangent into value change per frame.
func slope(tr motionpath.TangentRepr) float64 {
	if tr.Weighted {
		return tr.Y / 3.0
	}
	return math.Tan(tr.Angle) * tr.Weight
}

// AddKey inserts a key at time t with value v and returns its index. An
// existing key at t is overwritten in place. The new key and its two
// neighbors receive automatic Catmull-Rom slopes, so re-adding a deleted
// key recomputes clean tangents around it.
func (c *Curve) AddKey(t, v float64) int {
	if i, ok := c.FindKeyAt(t); ok {
		c.keys[i].value = v
		c.autoTangents(i)
		return i
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].time > t })
	k := key{time: t, value: v, tangentsLocked: true}
	k.in = c.flatTangent()
	k.out = c.flatTangent()
	c.keys = append(c.keys, key{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = k
	for _, j := range []int{i - 1, i, i + 1} {
		if j >= 0 && j < len(c.keys) {
			c.autoTangents(j)
		}
	}
	return i
}

func (c *Curve) flatTangent() motionpath.TangentRepr {
	if c.weighted {
		return motionpath.TangentRepr{Weighted: true, X: 1}
	}
	return motionpath.TangentRepr{Weight: 1}
}

// autoTangents gives key i a smooth slope derived from its neighbors.
func (c *Curve) autoTangents(i int) {
	var m float64
	switch {
	case len(c.keys) < 2:
		m = 0
	case i == 0:
		m = localSlope(c.keys[0], c.keys[1])
	case i == len(c.keys)-1:
		m = localSlope(c.keys[i-1], c.keys[i])
	default:
		m = localSlope(c.keys[i-1], c.keys[i+1])
	}
	c.setSlope(i, motionpath.TangentIn, m)
	c.setSlope(i, motionpath.TangentOut, m)
}

func localSlope(a, b key) float64 {
	if dt := b.time - a.time; dt > timeEpsilon {
		return (b.value - a.value) / dt
	}
	return 0
}

func (c *Curve) setSlope(i int, side motionpath.TangentSide, m float64) {
	tr := c.flatTangent()
	if c.weighted {
		tr.Y = m * 3.0
	} else {
		tr.Angle = math.Atan(m)
	}
	if side == motionpath.TangentIn {
		c.keys[i].in = tr
	} else {
		c.keys[i].out = tr
	}
}

// RemoveKey deletes key i.
func (c *Curve) RemoveKey(i int) {
	c.keys = append(c.keys[:i], c.keys[i+1:]...)
}

// SetKeyValue overwrites the value of key i, keeping its tangents.
func (c *Curve) SetKeyValue(i int, v float64) {
	c.keys[i].value = v
}

// Tangent returns the stored tangent of key i.
func (c *Curve) Tangent(i int, side motionpath.TangentSide) (motionpath.TangentRepr, bool) {
	if i < 0 || i >= len(c.keys) {
		return motionpath.TangentRepr{}, false
	}
	if side == motionpath.TangentIn {
		return c.keys[i].in, true
	}
	return c.keys[i].out, true
}

// SetTangent overwrites the stored tangent of key i. The representation
// follows the curve, not the passed value.
func (c *Curve) SetTangent(i int, side motionpath.TangentSide, tr motionpath.TangentRepr) {
	if i < 0 || i >= len(c.keys) {
		return
	}
	tr.Weighted = c.weighted
	if side == motionpath.TangentIn {
		c.keys[i].in = tr
	} else {
		c.keys[i].out = tr
	}
}

// IsWeighted reports the curve's tangent representation.
func (c *Curve) IsWeighted() bool {
	return c.weighted
}

// TangentsLocked reports whether key i's tangent pair moves as one.
func (c *Curve) TangentsLocked(i int) bool {
	return c.keys[i].tangentsLocked
}

// WeightsLocked reports whether key i's tangent weights are linked.
func (c *Curve) WeightsLocked(i int) bool {
	return c.keys[i].weightsLocked
}

// SetTangentsLocked sets key i's tangent lock.
func (c *Curve) SetTangentsLocked(i int, locked bool) {
	c.keys[i].tangentsLocked = locked
}

// SetWeightsLocked sets key i's weight lock.
func (c *Curve) SetWeightsLocked(i int, locked bool) {
	c.keys[i].weightsLocked = locked
}
