// Package sharedmem implements the single-process recursive ball-tree
// builder (§4.9), invoked once a distributed-phase rank finds itself alone
// in its team. Recursion forks into independent tasks down to a
// precomputed depth derived from the thread pool size, after which it
// continues sequentially; node emission is serialized through the sink's
// own lock rather than a second lock owned by this package.
package sharedmem

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/ballalg/ballalg/internal/balltree/furthest"
	"github.com/ballalg/ballalg/internal/balltree/node"
	"github.com/ballalg/ballalg/internal/balltree/order"
	"github.com/ballalg/ballalg/internal/balltree/selection"
	"github.com/ballalg/ballalg/internal/balltree/vector"
	"github.com/ballalg/ballalg/pkg/collections"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ballalg/sharedmem")

// projPool recycles the []float64 scratch buffers each recursion frame
// needs for its projection basis and projected points, since every frame
// below the top of the tree allocates and discards one of these per node.
var projPool = collections.NewSlicePool[float64](8)

// ConfigurePools rebuilds the scratch pool with the given initial capacity
// hint (typically the input dimensionality, from BuildConfig's
// projection_pool_initial_cap). Must be called before Build, not
// concurrently with it.
func ConfigurePools(initialCap int) {
	projPool = collections.NewSlicePool[float64](initialCap)
}

func getScratch(d int) []float64 {
	s := projPool.Get()
	if cap(*s) < d {
		*s = make([]float64, d)
	} else {
		*s = (*s)[:d]
	}
	return *s
}

func putScratch(buf []float64) {
	s := buf[:0]
	projPool.Put(&s)
}

// Builder recursively constructs ball-tree nodes over a single process's
// local point shard, using conc's fork/join pool to model the original
// OpenMP task group: max_depth caps how many recursion levels launch
// tasks, and slack lets a few branches go one level deeper when the
// thread count T is not a power of two.
type Builder struct {
	sink     *node.Sink
	maxDepth int
	slack    atomic.Int32
	baseSeed int64
}

// New creates a Builder that appends completed nodes to sink, forking
// tasks up to a depth derived from threads (the shared-memory task pool
// size). baseSeed drives the random pivot choice deterministically per
// node id, so repeated runs with the same seed produce the same tree.
func New(sink *node.Sink, threads int, baseSeed int64) *Builder {
	if threads < 1 {
		threads = 1
	}
	maxDepth := int(math.Log2(float64(threads)))
	b := &Builder{sink: sink, maxDepth: maxDepth, baseSeed: baseSeed}
	b.slack.Store(int32(threads - (1 << maxDepth)))
	return b
}

// pointSlice adapts a shard sub-slice and its parallel projected points to
// selection.Interface, comparing under the full lexicographic order since
// the shared-memory phase's selection operates on complete projected
// points rather than a single scalar (distinguishing it from the
// distributed phase's PSRS, which sorts by first coordinate only).
type pointSlice struct {
	points [][]float64
	proj   [][]float64
}

func (ps *pointSlice) Len() int { return len(ps.points) }
func (ps *pointSlice) Less(i, j int) bool {
	return order.Less(ps.proj[i], ps.proj[j])
}
func (ps *pointSlice) Swap(i, j int) {
	ps.points[i], ps.points[j] = ps.points[j], ps.points[i]
	ps.proj[i], ps.proj[j] = ps.proj[j], ps.proj[i]
}

type localShard [][]float64

func (s localShard) Point(i int) []float64 { return s[i] }

// Build recurses over shard[l:r+1], appending one node per frame to the
// sink. nodeID is this frame's deterministic, positional id (§3); depth is
// the recursion depth from the call that first went alone-in-team.
func (b *Builder) Build(ctx context.Context, shard [][]float64, l, r, nodeID, depth int) error {
	if depth < b.maxDepth {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "task")
		defer span.End()
	}

	if r == l {
		center := append([]float64(nil), shard[l]...)
		b.sink.Append(&node.Node{ID: nodeID, LeftID: node.NoChild, RightID: node.NoChild, Center: center, Radius: 0})
		return nil
	}

	aIdx, bIdx := furthest.Local(localShard(shard), l, r)
	a := shard[aIdx]
	bPt := shard[bIdx]

	d := len(a)
	bA := getScratch(d)
	vector.Sub(bA, bPt, a)
	denom := vector.Dot(bA, bA)
	cf := getScratch(d)
	if denom != 0 {
		vector.Scale(cf, bA, 1/denom)
	}

	count := r - l + 1
	proj := make([][]float64, count)
	diffBuf := getScratch(d)
	for i := 0; i < count; i++ {
		p := getScratch(d)
		vector.Project(p, diffBuf, shard[l+i], a, bA, cf)
		proj[i] = p
	}
	putScratch(bA)
	putScratch(cf)
	putScratch(diffBuf)

	rng := rand.New(rand.NewSource(b.baseSeed ^ int64(nodeID)))
	ps := &pointSlice{points: shard[l : r+1], proj: proj}
	k, kMinus1, even, err := selection.Median(ps, 0, count-1, selection.PivotRandom, rng)
	if err != nil {
		return err
	}

	var center []float64
	if even {
		center = make([]float64, d)
		vector.Midpoint(center, proj[kMinus1], proj[k])
	} else {
		center = append([]float64(nil), proj[k]...)
	}

	var radius float64
	for i := l; i <= r; i++ {
		dist := vector.Distance(shard[i], center)
		if dist > radius {
			radius = dist
		}
	}
	for _, p := range proj {
		putScratch(p)
	}

	// Left subtree always takes ceil(count/2) points (including the
	// median itself when count is odd), matching the distributed
	// phase's v + 2*ceil(m/2) id-offset convention exactly; Select's
	// partition already placed every point belonging to that half at
	// relative positions [0, leftSize-1].
	leftSize := (count + 1) / 2
	splitIndex := leftSize - 1

	leftID := nodeID + 1
	rightID := nodeID + 2*leftSize
	b.sink.Append(&node.Node{ID: nodeID, LeftID: leftID, RightID: rightID, Center: center, Radius: radius})

	leftL, leftR := l, l+splitIndex
	rightL, rightR := l+splitIndex+1, r

	if b.shouldSpawn(depth) {
		p := pool.New().WithErrors()
		p.Go(func() error { return b.Build(ctx, shard, leftL, leftR, leftID, depth+1) })
		p.Go(func() error { return b.Build(ctx, shard, rightL, rightR, rightID, depth+1) })
		return p.Wait()
	}

	if err := b.Build(ctx, shard, leftL, leftR, leftID, depth+1); err != nil {
		return err
	}
	return b.Build(ctx, shard, rightL, rightR, rightID, depth+1)
}

// shouldSpawn reports whether the recursion at depth should fork two
// independent tasks rather than continue sequentially: always below
// maxDepth, and at exactly maxDepth for the first diff branches to claim
// the remaining slack.
func (b *Builder) shouldSpawn(depth int) bool {
	if depth < b.maxDepth {
		return true
	}
	if depth == b.maxDepth {
		if b.slack.Add(-1) >= 0 {
			return true
		}
		b.slack.Add(1)
	}
	return false
}
