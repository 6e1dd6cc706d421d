// Package selection implements the quickselect used to find the k-th
// element of a projection array under a caller-supplied order, reordering a
// parallel point-index array so the permutation between the two stays
// consistent. The main loop is iterative, not recursive, to bound stack
// depth on adversarial inputs; it is driven off an explicit frame stack
// rather than language-level recursion.
package selection

import (
	"math/rand"

	"github.com/ballalg/ballalg/pkg/collections"
	"github.com/ballalg/ballalg/pkg/errors"
)

// Interface is the minimal surface selection needs over a projection array:
// a total order via Less and an in-place Swap that also permutes whatever
// parallel array (point indices, full point slices) rides alongside it.
type Interface interface {
	Len() int
	Less(i, j int) bool
	Swap(i, j int)
}

// Pivot chooses the strategy used to pick a pivot within [l, r].
type Pivot int

const (
	// PivotMedianOfThree pivots on the median of the range's first, middle
	// and last elements. No builder in this repository selects it: the
	// distributed phase orders its projections with psrs.Sort instead.
	PivotMedianOfThree Pivot = iota
	// PivotRandom is used by the shared-memory-phase variant.
	PivotRandom
)

type frame struct {
	l, r, k int
}

// Select reorders data[l:r+1] in place so that data[k] holds the element
// that would appear at position k if the range were fully sorted under
// Less, with every element left of k comparing Less and every element
// right of k comparing !Less against it. l and r are inclusive.
func Select(data Interface, l, r, k int, pivot Pivot, rng *rand.Rand) error {
	if r < l {
		return errors.Wrap(errors.CodeInvariantViolation, "selection range invalid", nil)
	}
	if k < l || k > r {
		return errors.Wrap(errors.CodeInvariantViolation, "selection target out of range", nil)
	}

	frames := collections.NewStack[frame](8)
	frames.Push(frame{l: l, r: r, k: k})

	for frames.Len() > 0 {
		f, _ := frames.Pop()
		if f.l == f.r {
			continue
		}

		p := choosePivot(data, f.l, f.r, pivot, rng)
		data.Swap(p, f.r)
		storeIdx := f.l
		for i := f.l; i < f.r; i++ {
			if data.Less(i, f.r) {
				data.Swap(i, storeIdx)
				storeIdx++
			}
		}
		data.Swap(storeIdx, f.r)

		switch {
		case f.k == storeIdx:
			// Target found; nothing left to push.
		case f.k < storeIdx:
			frames.Push(frame{l: f.l, r: storeIdx - 1, k: f.k})
		default:
			frames.Push(frame{l: storeIdx + 1, r: f.r, k: f.k})
		}
	}
	return nil
}

// choosePivot returns an index within [l, r] to use as the partition pivot.
func choosePivot(data Interface, l, r int, pivot Pivot, rng *rand.Rand) int {
	if pivot == PivotRandom {
		return l + rng.Intn(r-l+1)
	}
	return medianOfThree(data, l, r)
}

// medianOfThree returns the index, among l, mid and r, holding the middle
// value under Less.
func medianOfThree(data Interface, l, r int) int {
	mid := l + (r-l)/2
	a, b, c := l, mid, r
	if data.Less(b, a) {
		a, b = b, a
	}
	if data.Less(c, b) {
		b, c = c, b
	}
	if data.Less(b, a) {
		a, b = b, a
	}
	return b
}

// Median wraps Select to locate the median of data[l:r+1]. For an odd
// count it returns kIdx as the median position, kMinus1Idx=0 and
// even=false. For an even count it additionally scans the now-partitioned left
// half to recover the predecessor of kIdx, so the caller can average the
// two central elements.
func Median(data Interface, l, r int, pivot Pivot, rng *rand.Rand) (kIdx int, kMinus1Idx int, even bool, err error) {
	count := r - l + 1
	k := l + count/2
	if err := Select(data, l, r, k, pivot, rng); err != nil {
		return 0, 0, false, err
	}
	if count%2 != 0 {
		return k, 0, false, nil
	}

	// count is even: k-1 is the predecessor of k in sorted order, found by
	// taking the maximum of the left partition [l, k-1].
	maxIdx := l
	for i := l + 1; i < k; i++ {
		if data.Less(maxIdx, i) {
			maxIdx = i
		}
	}
	return k, maxIdx, true, nil
}
