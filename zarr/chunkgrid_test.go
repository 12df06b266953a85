package zarr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegularGridShape(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	require.Equal(t, []int64{4, 3}, g.GridShape([]int64{10, 9}))
}

func TestRegularGridChunkShapeAlwaysFull(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	shape, ok := g.ChunkShape([]int64{3, 2}, []int64{10, 9})
	require.True(t, ok)
	require.Equal(t, []int64{3, 3}, shape)
}

func TestRegularGridChunkShapeRejectsOutOfRangeCoord(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	_, ok := g.ChunkShape([]int64{4, 0}, []int64{10, 9})
	require.False(t, ok)
}

func TestRegularGridSubset(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	s, ok := g.Subset([]int64{1, 0}, []int64{10, 9})
	require.True(t, ok)
	require.Equal(t, []int64{3, 0}, s.Start)
	require.Equal(t, []int64{3, 3}, s.Shape)
}

func TestRegularGridChunkIndices(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	idx, ok := g.ChunkIndices([]int64{7, 8}, []int64{10, 9})
	require.True(t, ok)
	require.Equal(t, []int64{2, 2}, idx)
}

func TestRegularGridChunkIndicesRejectsOutOfBounds(t *testing.T) {
	g := NewRegularGrid([]int64{3, 3})
	_, ok := g.ChunkIndices([]int64{10, 0}, []int64{10, 9})
	require.False(t, ok)
}
