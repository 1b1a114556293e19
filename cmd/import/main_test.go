package main

import (
	"context"
	"testing"

	"lintang/racemap/pkg/kv"
	"lintang/racemap/pkg/tilesource"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[maptile.Tile][]byte

func (s mapSource) Fetch(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	if tile.X == 3 {
		return nil, errors.New("connection reset")
	}
	data, ok := s[tile]
	if !ok {
		return nil, errors.Wrap(tilesource.ErrTileNotFound, "stub")
	}
	return data, nil
}

func TestImportTiles(t *testing.T) {
	archive, err := kv.Open("racemapDB", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer archive.Close()

	src := mapSource{
		maptile.New(0, 0, 14): []byte("a"),
		maptile.New(1, 0, 14): []byte("b"),
	}
	tiles := []maptile.Tile{
		maptile.New(0, 0, 14),
		maptile.New(1, 0, 14),
		maptile.New(2, 0, 14),
		maptile.New(3, 0, 14),
	}

	res, err := importTiles(context.Background(), src, archive, tiles, 2)
	require.NoError(t, err)
	assert.Equal(t, importResult{Saved: 2, Failed: 2}, res)

	got, err := archive.Get(maptile.New(1, 0, 14))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
	assert.False(t, archive.Has(maptile.New(2, 0, 14)))

	assert.Equal(t, []maptile.Tile{maptile.New(2, 0, 14), maptile.New(3, 0, 14)}, missingTiles(archive, tiles))

	t.Run("canceled context saves nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := importTiles(ctx, src, archive, []maptile.Tile{maptile.New(5, 5, 14)}, 1)
		require.NoError(t, err)
		assert.Equal(t, importResult{Failed: 1}, res)
		assert.False(t, archive.Has(maptile.New(5, 5, 14)))
	})
}
