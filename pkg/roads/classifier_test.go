package roads_test

import (
	"testing"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/mvt"
	"lintang/racemap/pkg/mvt/mvttest"
	"lintang/racemap/pkg/roads"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTile(t *testing.T, layers ...mvttest.Layer) *mvt.Tile {
	t.Helper()
	tile, err := mvt.DecodeTile(mvttest.Tile(layers...))
	require.NoError(t, err)
	return tile
}

func TestExtractRoads(t *testing.T) {
	t.Run("footway yields nothing", func(t *testing.T) {
		lines, err := roads.ExtractRoads(decodeTile(t, mvttest.RoadLayer("footway")))
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("primary yields its geometry", func(t *testing.T) {
		lines, err := roads.ExtractRoads(decodeTile(t, mvttest.RoadLayer("primary")))
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}}, lines[0])
	})

	t.Run("mixed classes keep feature order", func(t *testing.T) {
		lines, err := roads.ExtractRoads(decodeTile(t, mvttest.RoadLayer("residential", "steps", "motorway_link", "rail")))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}}, lines[0])
		assert.Equal(t, orb.LineString{{0, 200.0 / 4096}, {1, 200.0 / 4096}}, lines[1])
	})

	t.Run("missing layer", func(t *testing.T) {
		lines, err := roads.ExtractRoads(decodeTile(t, mvttest.Layer{Name: "water"}))
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("custom layer name", func(t *testing.T) {
		layer := mvttest.RoadLayer("primary")
		layer.Name = "road"
		tile := decodeTile(t, layer)

		lines, err := roads.NewClassifier("road").ExtractRoads(tile)
		require.NoError(t, err)
		assert.Len(t, lines, 1)

		lines, err = roads.ExtractRoads(tile)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("only line features count", func(t *testing.T) {
		layer := mvttest.RoadLayer("primary", "primary")
		layer.Features[1].Type = 3
		lines, err := roads.ExtractRoads(decodeTile(t, layer))
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("single point line is dropped", func(t *testing.T) {
		layer := mvttest.RoadLayer("primary")
		layer.Features[0].Geometry = mvttest.LineGeometry([2]int32{5, 5})
		lines, err := roads.ExtractRoads(decodeTile(t, layer))
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("broken geometry fails the tile", func(t *testing.T) {
		layer := mvttest.RoadLayer("primary")
		layer.Features[0].Geometry = []uint32{mvttest.Command(1, 1), mvttest.Param(1)}
		_, err := roads.ExtractRoads(decodeTile(t, layer))
		assert.True(t, errors.Is(err, mvt.ErrMalformedTile))
	})
}

func TestClassify(t *testing.T) {
	c := roads.NewClassifier("")
	assert.Equal(t, roads.DefaultLayer, c.LayerName)

	cases := []struct {
		name string
		tags map[string]mvt.Value
		want roads.Decision
	}{
		{"drivable class", map[string]mvt.Value{"class": mvt.StringValue("trunk")}, roads.Accept},
		{"generic minor", map[string]mvt.Value{"class": mvt.StringValue("minor")}, roads.Accept},
		{"excluded subclass wins over drivable class", map[string]mvt.Value{
			"class": mvt.StringValue("service"), "subclass": mvt.StringValue("sidewalk"),
		}, roads.Reject},
		{"drivable subclass", map[string]mvt.Value{
			"class": mvt.StringValue("transit"), "subclass": mvt.StringValue("living_street"),
		}, roads.Accept},
		{"excluded class", map[string]mvt.Value{"class": mvt.StringValue("cycleway")}, roads.Reject},
		{"unknown class", map[string]mvt.Value{"class": mvt.StringValue("rail")}, roads.Reject},
		{"non string class", map[string]mvt.Value{"class": mvt.IntValue(1)}, roads.Reject},
		{"no tags", nil, roads.Reject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.tags))
		})
	}
}

func TestFromBytes(t *testing.T) {
	id := maptile.New(13215, 8547, 14)
	c := roads.NewClassifier(roads.DefaultLayer)

	lines, err := c.FromBytes(mvttest.Tile(mvttest.RoadLayer("primary")), id)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, geo.NormalizedToProjected(id, orb.Point{0, 0}), lines[0][0])
	assert.Equal(t, geo.NormalizedToProjected(id, orb.Point{1, 0}), lines[0][1])

	_, err = c.FromBytes(mvttest.Tile(mvttest.RoadLayer("primary"))[:10], id)
	assert.True(t, errors.Is(err, mvt.ErrTruncatedInput))
}
