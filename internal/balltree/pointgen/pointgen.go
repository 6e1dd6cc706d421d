// Package pointgen implements the point generator contract of §6: given
// dimensionality, point count, and a seed, it deterministically produces a
// synthetic shard of points. It stands in for the external random-point
// generator the specification names as an out-of-scope collaborator — the
// benchmark harness needs some concrete generator to drive the build
// command, and this one is seeded so runs are reproducible across
// processes and across repeated CLI invocations with the same arguments.
package pointgen

import (
	"context"
	"math/rand"

	"github.com/ballalg/ballalg/pkg/parallel"
)

// pointSeed mixes the run seed with a point index using a splitmix64-style
// finalizer, so each point's coordinates depend only on (seed, index) and
// never on how many workers generated it.
func pointSeed(seed int64, index int) int64 {
	z := uint64(seed) + uint64(index)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

func genPoint(nDims int, seed int64, index int) []float64 {
	rng := rand.New(rand.NewSource(pointSeed(seed, index)))
	p := make([]float64, nDims)
	for j := range p {
		p[j] = rng.Float64()
	}
	return p
}

// Generate returns nPoints freshly allocated points, each of length nDims,
// with coordinates drawn uniformly from [0, 1). Calling Generate twice
// with the same arguments yields identical output.
func Generate(nDims, nPoints int, seed int64) [][]float64 {
	points := make([][]float64, nPoints)
	for i := range points {
		points[i] = genPoint(nDims, seed, i)
	}
	return points
}

// GenerateParallel is equivalent to Generate but spreads point generation
// across workers workers using the shared worker-pool chunk processor:
// since each point's coordinates depend only on (seed, index), splitting
// the index range across chunks never changes the result, only how many
// goroutines compute it.
func GenerateParallel(nDims, nPoints int, seed int64, workers int) [][]float64 {
	return GenerateParallelBuffered(nDims, nPoints, seed, workers, 0)
}

// GenerateParallelBuffered is GenerateParallel with an explicit task
// channel buffer size (bufferSize <= 0 keeps the pool's default), wired
// to BuildConfig.PoolBufferSize. The size is only set on the pool config:
// ChunkProcessor has no task channel, so it changes neither the result nor
// how it is computed.
func GenerateParallelBuffered(nDims, nPoints int, seed int64, workers, bufferSize int) [][]float64 {
	indices := make([]int, nPoints)
	for i := range indices {
		indices[i] = i
	}

	cfg := parallel.DefaultPoolConfig().WithWorkers(workers)
	if bufferSize > 0 {
		cfg.TaskBufferSize = bufferSize
	}
	cp := parallel.NewChunkProcessor[int, [][]float64](cfg)

	return cp.ProcessChunks(
		context.Background(),
		indices,
		func(_ context.Context, chunk []int, _ int) [][]float64 {
			out := make([][]float64, len(chunk))
			for i, idx := range chunk {
				out[i] = genPoint(nDims, seed, idx)
			}
			return out
		},
		func(results [][][]float64) [][]float64 {
			var all [][]float64
			for _, r := range results {
				all = append(all, r...)
			}
			return all
		},
	)
}

// Shard returns the contiguous slice of points belonging to rank r out of
// size ranks, following the same even-split convention used throughout
// the distributed phase (§4.8): ceil(n/size) points on the first n mod
// size ranks, floor on the rest.
func Shard(points [][]float64, rank, size int) [][]float64 {
	n := len(points)
	base := n / size
	rem := n % size
	start := rank*base + min(rank, rem)
	count := base
	if rank < rem {
		count++
	}
	return points[start : start+count]
}
