package team

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateMedian_OddTotal(t *testing.T) {
	// Globally sorted projected points, split across 2 ranks: rank0 owns
	// indices [0,2), rank1 owns [2,5). Total count 5, median index 2,
	// owned by rank1 at local index 0.
	slices := [][][]float64{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}, {4, 4}},
	}
	views := New(2)

	var wg sync.WaitGroup
	centers := make([][]float64, 2)
	for i, v := range views {
		wg.Add(1)
		go func(i int, v *Team) {
			defer wg.Done()
			c, err := LocateMedian(v, slices[i], 5)
			require.NoError(t, err)
			centers[i] = c
		}(i, v)
	}
	wg.Wait()

	assert.Equal(t, []float64{2, 2}, centers[0])
	assert.Equal(t, []float64{2, 2}, centers[1])
}

func TestLocateMedian_EvenTotal(t *testing.T) {
	// Total count 4, indices 1 and 2 (both owned across ranks) average to
	// the center.
	slices := [][][]float64{
		{{0, 0}, {2, 2}},
		{{4, 4}, {6, 6}},
	}
	views := New(2)

	var wg sync.WaitGroup
	centers := make([][]float64, 2)
	for i, v := range views {
		wg.Add(1)
		go func(i int, v *Team) {
			defer wg.Done()
			c, err := LocateMedian(v, slices[i], 4)
			require.NoError(t, err)
			centers[i] = c
		}(i, v)
	}
	wg.Wait()

	assert.Equal(t, []float64{3, 3}, centers[0])
	assert.Equal(t, []float64{3, 3}, centers[1])
}
