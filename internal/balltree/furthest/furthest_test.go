package furthest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceShard [][]float64

func (s sliceShard) Point(i int) []float64 { return s[i] }

func TestLocal_TwoPoints(t *testing.T) {
	shard := sliceShard{{0, 0}, {3, 4}}
	a, b := Local(shard, 0, 1)
	assert.ElementsMatch(t, []int{0, 1}, []int{a, b})
}

func TestLocal_StartsFromRangeStart(t *testing.T) {
	// b starts at points[l]; with a single far outlier at the end, the
	// first pass must pick it as a.
	shard := sliceShard{{0, 0}, {1, 0}, {1, 1}, {100, 100}}
	a, b := Local(shard, 0, 3)
	assert.Equal(t, 3, a)
	assert.NotEqual(t, a, b)
}

func TestLocal_SinglePoint(t *testing.T) {
	shard := sliceShard{{5, 5}}
	a, b := Local(shard, 0, 0)
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, b)
}
