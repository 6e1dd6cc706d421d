package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLess(t *testing.T) {
	assert.True(t, Less([]float64{1, 2}, []float64{1, 3}))
	assert.False(t, Less([]float64{1, 3}, []float64{1, 2}))
	assert.True(t, Less([]float64{0, 9}, []float64{1, 0}))
	assert.False(t, Less([]float64{1, 1}, []float64{1, 1}))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.False(t, Equal([]float64{1, 2, 3}, []float64{1, 2, 4}))
}
