package team

import "github.com/ballalg/ballalg/internal/balltree/vector"

const (
	medianLeader   = 0
	tagOffsetChain = 0
)

// medianContribution is what a rank sends to the leader once it has
// determined whether its slice of the globally sorted projections owns
// the target median index (or indices, for an even total count).
type medianContribution struct {
	HasMid  bool
	Mid     []float64
	HasPred bool
	Pred    []float64
}

// LocateMedian implements §4.7: given this rank's contiguous slice of the
// team-wide sorted projected points (see psrs.Sort) and the total point
// count across the team, it reconstructs the ball center and broadcasts
// it to every rank.
//
// Each rank first learns its slice's global base offset via a
// left-to-right chain of point-to-point messages carrying the running
// cumulative count, then whichever rank(s) own the needed index (or pair
// of indices, if totalCount is even) send their projected point to the
// leader, which averages or copies it and broadcasts the result.
func LocateMedian(t *Team, sorted [][]float64, totalCount int) ([]float64, error) {
	base, err := chainOffset(t, len(sorted))
	if err != nil {
		return nil, err
	}
	localEnd := base + len(sorted)

	mid := totalCount / 2
	var c medianContribution
	if mid >= base && mid < localEnd {
		c.HasMid = true
		c.Mid = sorted[mid-base]
	}
	if totalCount%2 == 0 {
		predIdx := mid - 1
		if predIdx >= base && predIdx < localEnd {
			c.HasPred = true
			c.Pred = sorted[predIdx-base]
		}
	}

	gathered, err := t.Gather(medianLeader, c)
	if err != nil {
		return nil, err
	}

	var center []float64
	if t.Rank() == medianLeader {
		var midPoint, predPoint []float64
		for _, g := range gathered {
			cc := g.(medianContribution)
			if cc.HasMid {
				midPoint = cc.Mid
			}
			if cc.HasPred {
				predPoint = cc.Pred
			}
		}
		if totalCount%2 != 0 {
			center = append([]float64(nil), midPoint...)
		} else {
			center = make([]float64, len(midPoint))
			vector.Midpoint(center, midPoint, predPoint)
		}
	}

	result, err := t.Broadcast(medianLeader, center)
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// chainOffset learns this rank's global base offset into the team-wide
// sorted order by relaying the running cumulative count from rank 0
// through to rank Size()-1.
func chainOffset(t *Team, localLen int) (int, error) {
	var base int
	if t.Rank() > 0 {
		v, err := t.RecvFrom(t.Rank()-1, tagOffsetChain)
		if err != nil {
			return 0, err
		}
		base = v.(int)
	}
	if t.Rank() < t.Size()-1 {
		t.SendTo(t.Rank()+1, tagOffsetChain, base+localLen)
	}
	return base, nil
}
