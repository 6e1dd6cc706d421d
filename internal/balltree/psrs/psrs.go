// Package psrs implements Parallel Sort by Regular Sampling (§4.6): a
// distributed sort of projection scalars, each carrying its full
// d-dimensional projected point along for the ride so the distributed
// median locator can later recover real points at the globally sorted
// positions it needs.
package psrs

import (
	"sort"

	"github.com/ballalg/ballalg/internal/balltree/team"
)

const psrsLeader = 0

// sampleFactor is the oversampling multiplier applied on top of the
// per-rank regular sample count (BuildConfig.PSRSSampleFactor), smoothing
// pivot selection on skewed projection distributions. 1 reproduces plain
// regular sampling.
var sampleFactor = 1

// ConfigureSampling sets the oversampling factor used by every subsequent
// Sort call. Must be called before Sort, not concurrently with it.
func ConfigureSampling(factor int) {
	if factor < 1 {
		factor = 1
	}
	sampleFactor = factor
}

// Pair couples a projection scalar (the sort key) with its full projected
// point.
type Pair struct {
	Scalar float64
	Point  []float64
}

// Sort runs PSRS across t, sorting local (this rank's shard of Pairs) by
// Scalar and returning this rank's contiguous slice of the team-wide
// sorted order. Every rank must call Sort with its own local data.
func Sort(t *team.Team, local []Pair) ([]Pair, error) {
	sortPairs(local)

	k := t.Size()
	samples := regularSamples(local, k*sampleFactor)

	gathered, err := t.Gather(psrsLeader, samples)
	if err != nil {
		return nil, err
	}

	var pivots []float64
	if t.Rank() == psrsLeader {
		var all []float64
		for _, g := range gathered {
			all = append(all, g.([]float64)...)
		}
		sort.Float64s(all)
		pivots = globalPivots(all, k, sampleFactor)
	}
	pivotsVal, err := t.Broadcast(psrsLeader, pivots)
	if err != nil {
		return nil, err
	}
	pivots = pivotsVal.([]float64)

	bands := bucketize(local, pivots, k)
	received, err := t.AllToAll(bandsToPayload(bands))
	if err != nil {
		return nil, err
	}

	var merged []Pair
	for _, r := range received {
		merged = append(merged, r.([]Pair)...)
	}
	sortPairs(merged)
	return merged, nil
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Scalar < pairs[j].Scalar })
}

// regularSamples picks n evenly spaced scalars from the already-sorted
// local slice (n = k * sampleFactor: k plain regular samples, oversampled
// by sampleFactor).
func regularSamples(sorted []Pair, n int) []float64 {
	count := len(sorted)
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := i * count / n
		if idx >= count {
			idx = count - 1
		}
		samples[i] = sorted[idx].Scalar
	}
	return samples
}

// globalPivots takes the k-1 global pivots from the leader's sorted
// sample pool (length k*k*factor), one at every k*factor-th position.
func globalPivots(sortedSamples []float64, k, factor int) []float64 {
	if k <= 1 {
		return nil
	}
	step := k * factor
	pivots := make([]float64, k-1)
	for i := 0; i < k-1; i++ {
		idx := (i+1)*step - 1
		if idx >= len(sortedSamples) {
			idx = len(sortedSamples) - 1
		}
		pivots[i] = sortedSamples[idx]
	}
	return pivots
}

// bucketize partitions the local sorted slice into k bands by the global
// pivots: band i holds scalars in [pivots[i-1], pivots[i]), with open ends
// for the first and last bands.
func bucketize(sorted []Pair, pivots []float64, k int) [][]Pair {
	bands := make([][]Pair, k)
	bi := 0
	for _, p := range sorted {
		for bi < k-1 && p.Scalar >= pivots[bi] {
			bi++
		}
		bands[bi] = append(bands[bi], p)
	}
	return bands
}

func bandsToPayload(bands [][]Pair) []any {
	out := make([]any, len(bands))
	for i, b := range bands {
		out[i] = b
	}
	return out
}
