package motionpath

import (
	"runtime"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// RangeCache is a time-indexed transform cache with a validated contiguous
// range invariant: after EnsureRange(a, b) every whole frame in [a, b] is
// resolved and [rangeStart, rangeEnd] covers [a, b]. Lookups outside the
// range grow the cache incrementally; only Invalidate forces a full
// rebuild. Entries are keyed by frame time and ordered, so window sweeps
// iterate in time order.
type RangeCache struct {
	sampler FrameSampler
	entries *treemap.Map // float64 -> mgl64.Mat4

	valid      bool
	rangeStart float64
	rangeEnd   float64

	// ParallelThreshold is the minimum number of frames a full rebuild must
	// cover before the compose phase fans out to worker goroutines. Below
	// it, dispatch overhead exceeds the saved time.
	ParallelThreshold int
}

// NewRangeCache creates an empty, invalid cache over the given sampler.
func NewRangeCache(sampler FrameSampler, parallelThreshold int) *RangeCache {
	if parallelThreshold < 2 {
		parallelThreshold = 2
	}
	return &RangeCache{
		sampler:           sampler,
		entries:           treemap.NewWith(utils.Float64Comparator),
		ParallelThreshold: parallelThreshold,
	}
}

// Valid reports whether the cache currently holds a validated range.
func (rc *RangeCache) Valid() bool {
	return rc.valid && rc.entries.Size() > 0
}

// Range returns the validated contiguous range. Meaningless unless Valid.
func (rc *RangeCache) Range() (start, end float64) {
	return rc.rangeStart, rc.rangeEnd
}

// Len returns the number of cached frames.
func (rc *RangeCache) Len() int {
	return rc.entries.Size()
}

// Invalidate drops all entries and marks the valid range empty. Called
// whenever hierarchy or pivot data may have changed out-of-band.
func (rc *RangeCache) Invalidate() {
	rc.entries.Clear()
	rc.valid = false
}

// EnsureAt resolves and inserts the transform at t unless already cached.
func (rc *RangeCache) EnsureAt(t float64) {
	if _, found := rc.entries.Get(t); found {
		return
	}
	rc.entries.Put(t, rc.sampler.ComposeFrame(rc.sampler.CollectFrame(t)))
}

// Peek returns the cached transform at t without resolving on a miss.
func (rc *RangeCache) Peek(t float64) (mgl64.Mat4, bool) {
	v, found := rc.entries.Get(t)
	if !found {
		return mgl64.Mat4{}, false
	}
	return v.(mgl64.Mat4), true
}

// MatrixAt returns the cached transform at t, resolving it on a miss.
func (rc *RangeCache) MatrixAt(t float64) mgl64.Mat4 {
	if v, found := rc.entries.Get(t); found {
		return v.(mgl64.Mat4)
	}
	rc.EnsureAt(t)
	v, _ := rc.entries.Get(t)
	return v.(mgl64.Mat4)
}

// EnsureRange makes every whole frame in [start, end] resolved.
//
// Cache hit: the range is already covered, nothing happens. Partially
// valid: only the missing prefix and suffix frames are resolved and the
// range widens. Invalid: a full rebuild runs, split into a sequential
// collect phase, an optionally parallel compose phase and a sequential
// write-back.
func (rc *RangeCache) EnsureRange(start, end float64) {
	if end < start {
		start, end = end, start
	}
	if rc.Valid() {
		if rc.rangeStart <= start && rc.rangeEnd >= end {
			return
		}
		for t := start; t < rc.rangeStart && t <= end; t++ {
			rc.EnsureAt(t)
		}
		for t := rc.rangeEnd + 1; t <= end; t++ {
			rc.EnsureAt(t)
		}
		if start < rc.rangeStart {
			rc.rangeStart = start
		}
		if end > rc.rangeEnd {
			rc.rangeEnd = end
		}
		return
	}
	rc.rebuild(start, end)
	rc.rangeStart = start
	rc.rangeEnd = end
	rc.valid = true
}

func (rc *RangeCache) rebuild(start, end float64) {
	n := int(end-start) + 1
	if n < 1 {
		n = 1
	}
	if n < rc.ParallelThreshold {
		for t := start; t <= end; t++ {
			rc.EnsureAt(t)
		}
		return
	}

	// Phase 1: collect raw inputs on the control goroutine. The external
	// source is the only thing here that is not goroutine-safe.
	samples := make([]FrameSample, n)
	for i := range samples {
		samples[i] = rc.sampler.CollectFrame(start + float64(i))
	}

	// Phase 2: compose in parallel. Pure arithmetic over disjoint slots.
	matrices := make([]mgl64.Mat4, n)
	parallelFor(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			matrices[i] = rc.sampler.ComposeFrame(samples[i])
		}
	})

	// Phase 3: write back sequentially.
	for i := range matrices {
		rc.entries.Put(samples[i].Time, matrices[i])
	}
	tracer().Debugf("range cache rebuilt %d frames [%g,%g]", n, start, end)
}

// parallelFor splits [0, n) into per-worker chunks and joins before
// returning. No shared mutable state beyond the disjoint output slots.
func parallelFor(n int, chunk func(lo, hi int)) {
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 2 {
		chunk(0, n)
		return
	}
	var wg sync.WaitGroup
	size := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			chunk(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// PositionCache amortizes raw channel reads across one redraw or edit
// pass. It is rebuilt wholesale by CachePositions and consulted through
// CachedPos, which falls back to a direct read on a miss.
type PositionCache struct {
	positions map[float64]mgl64.Vec3
}

// NewPositionCache returns an empty position cache.
func NewPositionCache() *PositionCache {
	return &PositionCache{positions: make(map[float64]mgl64.Vec3)}
}

// Rebuild clears the cache and stores one position per whole frame in
// [start, end] using the read function.
func (pc *PositionCache) Rebuild(start, end float64, read func(t float64) mgl64.Vec3) {
	pc.positions = make(map[float64]mgl64.Vec3, int(end-start)+1)
	for t := start; t <= end; t++ {
		pc.positions[t] = read(t)
	}
}

// Lookup returns the cached position at t, falling back to read on a miss.
func (pc *PositionCache) Lookup(t float64, read func(t float64) mgl64.Vec3) mgl64.Vec3 {
	if p, ok := pc.positions[t]; ok {
		return p
	}
	return read(t)
}

// Clear drops all entries.
func (pc *PositionCache) Clear() {
	pc.positions = make(map[float64]mgl64.Vec3)
}
