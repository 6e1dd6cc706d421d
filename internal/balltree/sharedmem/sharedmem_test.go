package sharedmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballalg/ballalg/internal/balltree/node"
	"github.com/ballalg/ballalg/internal/testutil"
)

func TestBuild_SinglePoint(t *testing.T) {
	sink := node.NewSink(1)
	b := New(sink, 1, 42)

	shard := [][]float64{{1, 2}}
	require.NoError(t, b.Build(context.Background(), shard, 0, 0, 0, 0))

	nodes := sink.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, []float64{1, 2}, nodes[0].Center)
	assert.Equal(t, 0.0, nodes[0].Radius)
	assert.True(t, nodes[0].IsLeaf())
}

func TestBuild_TwoPoints(t *testing.T) {
	sink := node.NewSink(3)
	b := New(sink, 1, 42)

	shard := [][]float64{{0, 0}, {2, 0}}
	require.NoError(t, b.Build(context.Background(), shard, 0, 1, 0, 0))

	nodes := sink.Nodes()
	require.Len(t, nodes, 3)

	var root *node.Node
	var leaves []*node.Node
	for _, n := range nodes {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		} else {
			root = n
		}
	}
	require.NotNil(t, root)
	require.Len(t, leaves, 2)

	assert.InDelta(t, 1.0, root.Center[0], 1e-9)
	assert.InDelta(t, 0.0, root.Center[1], 1e-9)
	assert.InDelta(t, 1.0, root.Radius, 1e-9)
	assert.Equal(t, 0, root.ID)
	assert.Equal(t, 1, root.LeftID)
}

func TestBuild_NodeCountAndIDsForEightPoints(t *testing.T) {
	shard := testutil.GridPoints(8)
	want := testutil.ExpectedNodeCount(len(shard))

	sink := node.NewSink(want)
	b := New(sink, 4, 99)

	require.NoError(t, b.Build(context.Background(), shard, 0, len(shard)-1, 0, 0))

	nodes := sink.Nodes()
	assert.Len(t, nodes, want)

	ids := make(map[int]bool, want)
	for _, n := range nodes {
		ids[n.ID] = true
	}
	assert.Len(t, ids, want)
	for i := 0; i < want; i++ {
		assert.True(t, ids[i], "missing id %d", i)
	}
}

func TestBuild_EveryPointIsALeaf(t *testing.T) {
	shard := testutil.TwoClusters()
	sink := node.NewSink(testutil.ExpectedNodeCount(len(shard)))
	b := New(sink, 2, 7)

	require.NoError(t, b.Build(context.Background(), shard, 0, len(shard)-1, 0, 0))

	leafCenters := make(map[[2]float64]bool)
	for _, n := range sink.Nodes() {
		if n.IsLeaf() {
			leafCenters[[2]float64{n.Center[0], n.Center[1]}] = true
		}
	}
	for _, p := range shard {
		assert.True(t, leafCenters[[2]float64{p[0], p[1]}], "point %v missing from leaves", p)
	}
}
