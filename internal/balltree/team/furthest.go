package team

import "github.com/ballalg/ballalg/internal/balltree/vector"

// candidate is one rank's locally-farthest point from a reference point,
// gathered at the leader to find the communicator-wide farthest point.
type candidate struct {
	Point []float64
	Dist  float64
}

const furthestLeader = 0

// DistributedFurthest runs the communicator-wide two-pass approximate
// furthest-pair heuristic of §4.5 across t, operating on this rank's
// local shard.
//
// The leader broadcasts its local point 0 as the initial b; each rank
// finds its local farthest point from b and the candidates are gathered
// and reduced at the leader to choose a, which is broadcast; the same
// happens once more from a to choose the final b.
func DistributedFurthest(t *Team, shard [][]float64) (a, b []float64, err error) {
	var initB []float64
	if t.Rank() == furthestLeader {
		initB = shard[0]
	}
	bVal, err := t.Broadcast(furthestLeader, initB)
	if err != nil {
		return nil, nil, err
	}
	b = bVal.([]float64)

	a, err = distributedFarthestFrom(t, shard, b)
	if err != nil {
		return nil, nil, err
	}

	b, err = distributedFarthestFrom(t, shard, a)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// distributedFarthestFrom finds the communicator-wide point farthest from
// the given reference point. Cross-rank candidates are compared with >=
// so the last-gathered tie wins deterministically, matching §4.5's
// tie-break note; the purely local pass within each rank's own shard uses
// a strict >.
func distributedFarthestFrom(t *Team, shard [][]float64, from []float64) ([]float64, error) {
	local := localFarthest(shard, from)
	gathered, err := t.Gather(furthestLeader, local)
	if err != nil {
		return nil, err
	}

	var chosen []float64
	if t.Rank() == furthestLeader {
		best := gathered[0].(candidate)
		for i := 1; i < len(gathered); i++ {
			c := gathered[i].(candidate)
			if c.Dist >= best.Dist {
				best = c
			}
		}
		chosen = best.Point
	}

	result, err := t.Broadcast(furthestLeader, chosen)
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// localFarthest finds the point in shard with maximum squared distance
// from "from", using a strict > so the first maximum found wins.
func localFarthest(shard [][]float64, from []float64) candidate {
	best := candidate{Point: shard[0], Dist: vector.QuickDistance(shard[0], from)}
	for i := 1; i < len(shard); i++ {
		d := vector.QuickDistance(shard[i], from)
		if d > best.Dist {
			best = candidate{Point: shard[i], Dist: d}
		}
	}
	return best
}
