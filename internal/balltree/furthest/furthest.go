// Package furthest implements the local two-pass approximate furthest-pair
// heuristic used to orient a ball-tree node's splitting line. It is a
// standard diameter approximation, not an exact algorithm: given a
// deterministic starting point it returns a deterministic pair, but the
// pair is not guaranteed to be the true diameter of the range.
package furthest

import "github.com/ballalg/ballalg/internal/balltree/vector"

// Shard is the minimal view furthest-pair needs over a process's local
// point range: indexed access into the coordinate buffer through the
// index array, without exposing the index array's storage.
type Shard interface {
	// Point returns the d-dimensional point at shard position i.
	Point(i int) []float64
}

// Local finds an approximate furthest pair within the inclusive range
// [l, r] of shard. b starts at points[l], matching the original MPI/OMP
// sources; a first pass selects a as the point farthest from b, a second
// pass reselects b as the point farthest from the (now fixed) a.
func Local(shard Shard, l, r int) (aIdx, bIdx int) {
	bIdx = l
	b := shard.Point(bIdx)

	aIdx = l
	maxDist := -1.0
	for i := l; i <= r; i++ {
		d := vector.QuickDistance(shard.Point(i), b)
		if d > maxDist {
			maxDist = d
			aIdx = i
		}
	}

	a := shard.Point(aIdx)
	maxDist = -1.0
	for i := l; i <= r; i++ {
		d := vector.QuickDistance(shard.Point(i), a)
		if d > maxDist {
			maxDist = d
			bIdx = i
		}
	}

	return aIdx, bIdx
}
