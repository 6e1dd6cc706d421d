package team

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionAndRedistribute(t *testing.T) {
	// Four ranks, each holding two points. Projection scalars equal the
	// point's own first coordinate for simplicity. Center first coord is
	// 4.5, splitting points [0..3] left and [5..8] right (8 points total,
	// 4 left / 4 right).
	shards := [][][]float64{
		{{0, 0}, {1, 0}},
		{{2, 0}, {3, 0}},
		{{5, 0}, {6, 0}},
		{{7, 0}, {8, 0}},
	}
	projScalars := [][]float64{
		{0, 1},
		{2, 3},
		{5, 6},
		{7, 8},
	}
	views := New(4)

	var wg sync.WaitGroup
	newShards := make([][][]float64, 4)
	newSizes := make([]int, 4)
	var newTeamSets [4]int
	for i, v := range views {
		wg.Add(1)
		go func(i int, v *Team) {
			defer wg.Done()
			ns, sub, newTeamSet, err := PartitionAndRedistribute(v, shards[i], projScalars[i], 4.5, 8)
			require.NoError(t, err)
			newShards[i] = ns
			newSizes[i] = len(ns)
			newTeamSets[i] = newTeamSet
			assert.Equal(t, 2, sub.Size())
		}(i, v)
	}
	wg.Wait()

	// Left half is ranks 0,1 (old), right half is ranks 2,3 (old).
	assert.Equal(t, 4, newTeamSets[0])
	assert.Equal(t, 4, newTeamSets[1])
	assert.Equal(t, 4, newTeamSets[2])
	assert.Equal(t, 4, newTeamSets[3])

	// Total points preserved, evenly split 2/2 within each half.
	assert.Equal(t, 2, newSizes[0])
	assert.Equal(t, 2, newSizes[1])
	assert.Equal(t, 2, newSizes[2])
	assert.Equal(t, 2, newSizes[3])

	var leftXs, rightXs []float64
	for _, p := range newShards[0] {
		leftXs = append(leftXs, p[0])
	}
	for _, p := range newShards[1] {
		leftXs = append(leftXs, p[0])
	}
	for _, p := range newShards[2] {
		rightXs = append(rightXs, p[0])
	}
	for _, p := range newShards[3] {
		rightXs = append(rightXs, p[0])
	}
	sort.Float64s(leftXs)
	sort.Float64s(rightXs)
	assert.Equal(t, []float64{0, 1, 2, 3}, leftXs)
	assert.Equal(t, []float64{5, 6, 7, 8}, rightXs)
}
