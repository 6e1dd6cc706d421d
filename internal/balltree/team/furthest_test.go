package team

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributedFurthest(t *testing.T) {
	shards := [][][]float64{
		{{0, 0}, {1, 0}},
		{{10, 10}, {0, 1}},
	}
	views := New(2)

	var wg sync.WaitGroup
	as := make([][]float64, 2)
	bs := make([][]float64, 2)
	for i, v := range views {
		wg.Add(1)
		go func(i int, v *Team) {
			defer wg.Done()
			a, b, err := DistributedFurthest(v, shards[i])
			require.NoError(t, err)
			as[i] = a
			bs[i] = b
		}(i, v)
	}
	wg.Wait()

	assert.Equal(t, as[0], as[1])
	assert.Equal(t, bs[0], bs[1])
	assert.Equal(t, []float64{10, 10}, as[0])
}
