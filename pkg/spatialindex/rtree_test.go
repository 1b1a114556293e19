package spatialindex_test

import (
	"math"
	"testing"

	"lintang/racemap/pkg/spatialindex"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(n int) []orb.LineString {
	lines := make([]orb.LineString, 0, n)
	for i := 0; i < n; i++ {
		y := float64(i * 100)
		lines = append(lines, orb.LineString{{0, y}, {1000, y}})
	}
	return lines
}

func TestIndexNearest(t *testing.T) {
	idx := spatialindex.NewIndex()
	assert.Empty(t, idx.Nearest(0, 0, 3))

	idx.SetRoads(grid(120))
	assert.Equal(t, 120, idx.Len())

	got := idx.Nearest(500, 1030, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 10, got[0].Index)
	assert.InDelta(t, 30, got[0].Dist, 1e-9)
	assert.Equal(t, orb.Point{500, 1000}, got[0].Nearest)
	assert.Equal(t, 11, got[1].Index)
	assert.Equal(t, 9, got[2].Index)

	t.Run("k larger than the set", func(t *testing.T) {
		small := spatialindex.NewIndex()
		small.SetRoads(grid(2))
		assert.Len(t, small.Nearest(0, 0, 10), 2)
	})

	t.Run("invalid input", func(t *testing.T) {
		assert.Empty(t, idx.Nearest(math.NaN(), 0, 3))
		assert.Empty(t, idx.Nearest(0, 0, 0))
	})
}

func TestIndexNearestLongDiagonals(t *testing.T) {
	// diagonals x+y=c have bounding boxes around the origin but lie 70..85 m away
	var lines []orb.LineString
	for _, c := range []float64{100, 105, 110, 120} {
		lines = append(lines, orb.LineString{{-1000, c + 1000}, {1000, c - 1000}})
	}
	lines = append(lines, orb.LineString{{10, -5}, {10, 5}})

	idx := spatialindex.NewIndex()
	idx.SetRoads(lines)

	got := idx.Nearest(0, 0, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Index)
	assert.InDelta(t, 10, got[0].Dist, 1e-9)
	assert.Equal(t, orb.Point{10, 0}, got[0].Nearest)

	got = idx.Nearest(0, 0, 2)
	require.Len(t, got, 2)
	assert.Equal(t, []int{4, 0}, []int{got[0].Index, got[1].Index})
	assert.InDelta(t, 100/math.Sqrt2, got[1].Dist, 1e-9)
}

func TestIndexSkipsUnusableLines(t *testing.T) {
	idx := spatialindex.NewIndex()
	idx.SetRoads([]orb.LineString{
		{{0, 0}},
		{{math.Inf(1), 0}, {1, 1}},
		{{5, 5}, {5, 5}},
	})
	assert.Equal(t, 1, idx.Len())
	got := idx.Nearest(0, 0, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Index)
}

func TestIndexWithin(t *testing.T) {
	idx := spatialindex.NewIndex()
	idx.SetRoads(grid(10))

	got := idx.Within(500, 420, 50)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Index)

	got = idx.Within(500, 450, 60)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Index)
	assert.Equal(t, 5, got[1].Index)

	assert.Empty(t, idx.Within(500, 450, 10))
	assert.Empty(t, idx.Within(500, 450, -1))
}
