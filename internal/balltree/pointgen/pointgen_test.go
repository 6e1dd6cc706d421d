package pointgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_DeterministicForSameSeed(t *testing.T) {
	a := Generate(3, 10, 42)
	b := Generate(3, 10, 42)
	assert.Equal(t, a, b)
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a := Generate(3, 10, 42)
	b := Generate(3, 10, 43)
	assert.NotEqual(t, a, b)
}

func TestGenerate_Shape(t *testing.T) {
	pts := Generate(4, 7, 1)
	assert.Len(t, pts, 7)
	for _, p := range pts {
		assert.Len(t, p, 4)
	}
}

func TestShard_EvenSplit(t *testing.T) {
	pts := Generate(2, 8, 1)
	s0 := Shard(pts, 0, 4)
	s1 := Shard(pts, 1, 4)
	assert.Len(t, s0, 2)
	assert.Len(t, s1, 2)
}

func TestShard_UnevenSplitFrontLoaded(t *testing.T) {
	pts := Generate(2, 10, 1)
	sizes := make([]int, 3)
	for r := 0; r < 3; r++ {
		sizes[r] = len(Shard(pts, r, 3))
	}
	assert.Equal(t, []int{4, 3, 3}, sizes)
}

func TestGenerateParallel_MatchesSerialRegardlessOfWorkerCount(t *testing.T) {
	serial := Generate(3, 37, 99)
	for _, workers := range []int{1, 3, 8} {
		parallelPoints := GenerateParallel(3, 37, 99, workers)
		assert.Equal(t, serial, parallelPoints, "worker count %d changed output", workers)
	}
}

func TestShard_Contiguous(t *testing.T) {
	pts := Generate(1, 9, 1)
	var reassembled [][]float64
	for r := 0; r < 4; r++ {
		reassembled = append(reassembled, Shard(pts, r, 4)...)
	}
	assert.Equal(t, pts, reassembled)
}
