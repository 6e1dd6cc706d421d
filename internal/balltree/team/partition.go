package team

// PartitionAndRedistribute implements §4.8. Each rank partitions its local
// shard into a left prefix (points whose projection scalar is strictly
// less than the center's first coordinate) and a right suffix, the team is
// split in half by rank, and the two halves independently gather their
// halves' prefixes/suffixes at their new leader and scatter them back out
// evenly, per §4.8's gather-then-scatter redistribution.
//
// shard and projScalars are parallel: projScalars[i] is the first
// coordinate of shard[i]'s projection onto the node's splitting line.
// teamSet is the team-wide point count held across the pre-split
// communicator. It returns this rank's new shard, the sub-team it now
// belongs to, and the new team-wide point count.
func PartitionAndRedistribute(
	t *Team,
	shard [][]float64,
	projScalars []float64,
	centerFirstCoord float64,
	teamSet int,
) (newShard [][]float64, sub *Team, newTeamSet int, err error) {
	var left, right [][]float64
	for i, p := range shard {
		if projScalars[i] < centerFirstCoord {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	sub, err = t.Split()
	if err != nil {
		return nil, nil, 0, err
	}

	half := t.Size() / 2
	if t.Rank() < half {
		newTeamSet = ceilDiv(teamSet, 2)
		newShard, err = gatherScatterHalf(sub, left, newTeamSet)
	} else {
		newTeamSet = teamSet - ceilDiv(teamSet, 2)
		newShard, err = gatherScatterHalf(sub, right, newTeamSet)
	}
	if err != nil {
		return nil, nil, 0, err
	}
	return newShard, sub, newTeamSet, nil
}

const redistributeLeader = 0

// gatherScatterHalf gathers every rank's partitioned slice at the new
// sub-team's leader, concatenates them, and scatters new evenly-sized
// shards back out: ceil(newTeamSet/size) on the first newTeamSet mod size
// ranks, floor on the rest.
func gatherScatterHalf(sub *Team, localPart [][]float64, newTeamSet int) ([][]float64, error) {
	gathered, err := sub.Gather(redistributeLeader, localPart)
	if err != nil {
		return nil, err
	}

	var scatterPayload []any
	if sub.Rank() == redistributeLeader {
		var all [][]float64
		for _, g := range gathered {
			all = append(all, g.([][]float64)...)
		}
		sizes := evenShardSizes(newTeamSet, sub.Size())
		scatterPayload = make([]any, sub.Size())
		offset := 0
		for i, sz := range sizes {
			scatterPayload[i] = all[offset : offset+sz]
			offset += sz
		}
	}

	val, err := sub.Scatter(redistributeLeader, scatterPayload)
	if err != nil {
		return nil, err
	}
	return val.([][]float64), nil
}

// evenShardSizes returns the per-rank shard sizes for distributing
// teamSet points evenly across size ranks: ceil(teamSet/size) on the
// first teamSet mod size ranks, floor on the rest (§4.8).
func evenShardSizes(teamSet, size int) []int {
	base := teamSet / size
	rem := teamSet % size
	sizes := make([]int, size)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
