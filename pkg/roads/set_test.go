package roads_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/mvt/mvttest"
	"lintang/racemap/pkg/roads"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]orb.LineString
}

func (r *recorder) SetRoads(lines []orb.LineString) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, lines)
}

func (r *recorder) last() []orb.LineString {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func line(v float64) orb.LineString {
	return orb.LineString{{v, v}, {v + 1, v}}
}

func TestSet(t *testing.T) {
	rec := &recorder{}
	set := roads.NewSet(rec)

	a := maptile.New(2, 1, 14)
	b := maptile.New(1, 5, 14)
	c := maptile.New(1, 3, 14)

	set.Put(a, []orb.LineString{line(1), line(2)})
	set.Put(b, []orb.LineString{line(3)})
	set.Put(c, []orb.LineString{line(4)})

	t.Run("ordered by tile then insertion", func(t *testing.T) {
		want := []orb.LineString{line(4), line(3), line(1), line(2)}
		assert.Equal(t, want, set.Polylines())
		assert.Equal(t, want, rec.last())
		assert.Equal(t, []maptile.Tile{c, b, a}, set.Tiles())
		assert.Equal(t, 4, set.Len())
		assert.Len(t, rec.calls, 3)
	})

	t.Run("published slices are not modified later", func(t *testing.T) {
		before := rec.last()
		set.Put(b, []orb.LineString{line(9)})
		assert.Equal(t, []orb.LineString{line(4), line(3), line(1), line(2)}, before)
		assert.Equal(t, []orb.LineString{line(4), line(9), line(1), line(2)}, rec.last())
	})

	t.Run("evict", func(t *testing.T) {
		assert.True(t, set.Evict(c))
		assert.False(t, set.Evict(c))
		assert.Equal(t, []orb.LineString{line(9), line(1), line(2)}, rec.last())
	})

	t.Run("replace drops everything else", func(t *testing.T) {
		set.Replace(map[maptile.Tile][]orb.LineString{c: {line(7)}})
		assert.Equal(t, []orb.LineString{line(7)}, set.Polylines())
		assert.Equal(t, []maptile.Tile{c}, set.Tiles())

		set.Replace(nil)
		assert.Empty(t, set.Polylines())
		assert.Empty(t, rec.last())
	})
}

type fakeSource struct {
	mu    sync.Mutex
	fail  map[maptile.Tile]error
	data  map[maptile.Tile][]byte
	def   []byte
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.fail[tile]; ok {
		return nil, err
	}
	if d, ok := f.data[tile]; ok {
		return d, nil
	}
	return f.def, nil
}

func TestLoaderLoadRegion(t *testing.T) {
	origin := maptile.New(13215, 8547, 14)
	lon, lat := geo.NormalizedTileToGeo(origin, orb.Point{0.02, 0.02})
	opts := roads.LoaderOptions{Zoom: 14, RadiusKm: 0.7, Workers: 3}
	tiles := geo.TilesInRadius(lon, lat, opts.Zoom, opts.RadiusKm)
	require.Greater(t, len(tiles), 1)

	t.Run("failing tiles are skipped", func(t *testing.T) {
		src := &fakeSource{
			def:  mvttest.Tile(mvttest.RoadLayer("primary", "footway")),
			fail: map[maptile.Tile]error{origin: errors.New("boom")},
			data: map[maptile.Tile][]byte{tiles[0]: {0x1a, 0xff}},
		}
		require.NotEqual(t, origin, tiles[0])
		rec := &recorder{}
		set := roads.NewSet(rec)
		loader := roads.NewLoader(src, roads.NewClassifier(""), set, opts)

		res, err := loader.LoadRegion(context.Background(), lon, lat)
		require.NoError(t, err)
		assert.Equal(t, len(tiles), res.Tiles)
		assert.Equal(t, 2, res.Failed)
		assert.Equal(t, len(tiles)-2, res.Polylines)
		assert.Equal(t, len(tiles), src.calls)
		assert.Len(t, set.Polylines(), len(tiles)-2)
		assert.NotContains(t, set.Tiles(), origin)
		assert.Len(t, rec.calls, 1)
	})

	t.Run("canceled context keeps the previous set", func(t *testing.T) {
		set := roads.NewSet()
		prev := maptile.New(0, 0, 14)
		set.Put(prev, []orb.LineString{line(1)})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		loader := roads.NewLoader(&fakeSource{def: mvttest.Tile(mvttest.RoadLayer("primary"))}, roads.NewClassifier(""), set, opts)
		_, err := loader.LoadRegion(ctx, lon, lat)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, []maptile.Tile{prev}, set.Tiles())
	})

	t.Run("non finite center", func(t *testing.T) {
		loader := roads.NewLoader(&fakeSource{}, roads.NewClassifier(""), roads.NewSet(), opts)
		_, err := loader.LoadRegion(context.Background(), lon, math.NaN())
		assert.Error(t, err)
	})
}
