// Package distributed implements the distributed recursive phase (§4.10):
// the half of ball-tree construction that runs across a simulated team of
// worker ranks, recursively halving the communicator until a rank finds
// itself alone, at which point it hands off to the shared-memory builder.
package distributed

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ballalg/ballalg/internal/balltree/node"
	"github.com/ballalg/ballalg/internal/balltree/psrs"
	"github.com/ballalg/ballalg/internal/balltree/sharedmem"
	"github.com/ballalg/ballalg/internal/balltree/team"
	"github.com/ballalg/ballalg/internal/balltree/vector"
	"github.com/ballalg/ballalg/pkg/collections"
)

var tracer = otel.Tracer("ballalg/distributed")

// scratchPool recycles the per-frame projection-basis buffers (b_a, cf,
// the projection diff scratch) the same way the shared-memory phase does;
// every distributed recursion level allocates and discards one set of
// these per rank.
var scratchPool = collections.NewSlicePool[float64](8)

// ConfigurePools rebuilds the scratch pool with the given initial capacity
// hint (typically the input dimensionality, from BuildConfig's
// projection_pool_initial_cap). Must be called before Build, not
// concurrently with it.
func ConfigurePools(initialCap int) {
	scratchPool = collections.NewSlicePool[float64](initialCap)
}

func getScratch(d int) []float64 {
	s := scratchPool.Get()
	if cap(*s) < d {
		*s = make([]float64, d)
	} else {
		*s = (*s)[:d]
	}
	return *s
}

func putScratch(buf []float64) {
	s := buf[:0]
	scratchPool.Put(&s)
}

const reduceLeader = 0

// Build recurses over t's shard of the team-wide point set, emitting one
// node per recursion level to sink. nodeID is this frame's deterministic,
// positional id (§3); teamSet is the point count held across the whole of
// t, not just this rank's local shard. sm builds the shared-memory phase
// once a rank ends up alone in its team.
func Build(ctx context.Context, t *team.Team, shard [][]float64, teamSet, nodeID int, sink *node.Sink, sm *sharedmem.Builder) error {
	ctx, span := tracer.Start(ctx, "recursion_level")
	span.SetAttributes(
		attribute.Int("ballalg.node_id", nodeID),
		attribute.Int("ballalg.team_set", teamSet),
		attribute.Int("ballalg.team_size", t.Size()),
	)
	defer span.End()

	if t.Alone() {
		return sm.Build(ctx, shard, 0, len(shard)-1, nodeID, 0)
	}

	a, b, err := team.DistributedFurthest(t, shard)
	if err != nil {
		return err
	}

	d := len(a)
	bA := getScratch(d)
	vector.Sub(bA, b, a)
	denom := vector.Dot(bA, bA)
	cf := getScratch(d)
	if denom != 0 {
		vector.Scale(cf, bA, 1/denom)
	}

	// Each projected point pt is handed off through psrs.Sort and
	// team.LocateMedian and may end up retained as the node's center, so
	// unlike bA/cf/diffBuf it is never returned to the scratch pool.
	projScalars := make([]float64, len(shard))
	diffBuf := getScratch(d)
	pairs := make([]psrs.Pair, len(shard))
	for i, p := range shard {
		pt := make([]float64, d)
		vector.Project(pt, diffBuf, p, a, bA, cf)
		projScalars[i] = pt[0]
		pairs[i] = psrs.Pair{Scalar: pt[0], Point: pt}
	}
	putScratch(bA)
	putScratch(cf)
	putScratch(diffBuf)

	sorted, err := psrs.Sort(t, pairs)
	if err != nil {
		return err
	}
	sortedPoints := make([][]float64, len(sorted))
	for i, p := range sorted {
		sortedPoints[i] = p.Point
	}

	center, err := team.LocateMedian(t, sortedPoints, teamSet)
	if err != nil {
		return err
	}

	radius, err := reduceRadius(t, shard, center)
	if err != nil {
		return err
	}

	leftSize := ceilDiv(teamSet, 2)
	leftID := nodeID + 1
	rightID := nodeID + 2*leftSize
	if t.Rank() == reduceLeader {
		sink.Append(&node.Node{ID: nodeID, LeftID: leftID, RightID: rightID, Center: center, Radius: radius})
	}

	wasLeft := t.Rank() < t.Size()/2

	newShard, sub, newTeamSet, err := team.PartitionAndRedistribute(t, shard, projScalars, center[0], teamSet)
	if err != nil {
		return err
	}

	childID := rightID
	if wasLeft {
		childID = leftID
	}
	return Build(ctx, sub, newShard, newTeamSet, childID, sink, sm)
}

// reduceRadius finds the team-wide maximum distance from center to any
// point in the team's combined shard, gathering each rank's local maximum
// at the leader and broadcasting the result.
func reduceRadius(t *team.Team, shard [][]float64, center []float64) (float64, error) {
	var local float64
	for _, p := range shard {
		dist := vector.Distance(p, center)
		if dist > local {
			local = dist
		}
	}

	gathered, err := t.Gather(reduceLeader, local)
	if err != nil {
		return 0, err
	}

	var global float64
	if t.Rank() == reduceLeader {
		for _, g := range gathered {
			v := g.(float64)
			if v > global {
				global = v
			}
		}
	}

	result, err := t.Broadcast(reduceLeader, global)
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
