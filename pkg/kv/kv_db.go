package kv

import (
	"fmt"
	"strconv"
	"strings"

	"lintang/racemap/pkg/concurrent"

	"github.com/cockroachdb/pebble"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("tile not found in archive")

// TileArchive stores raw vector tile bytes in pebble, zstd compressed, keyed by "z/x/y".
type TileArchive struct {
	db *pebble.DB
}

func NewTileArchive(db *pebble.DB) *TileArchive {
	return &TileArchive{db}
}

// Open opens (or creates) a pebble archive at path. opts may be nil.
func Open(path string, opts *pebble.Options) (*TileArchive, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open tile archive %s", path)
	}
	return NewTileArchive(db), nil
}

func TileKey(t maptile.Tile) []byte {
	return []byte(fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y))
}

func ParseTileKey(key []byte) (maptile.Tile, error) {
	parts := strings.Split(string(key), "/")
	if len(parts) != 3 {
		return maptile.Tile{}, errors.Errorf("invalid tile key %q", key)
	}
	var vals [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return maptile.Tile{}, errors.Wrapf(err, "invalid tile key %q", key)
		}
		vals[i] = v
	}
	return maptile.New(uint32(vals[1]), uint32(vals[2]), maptile.Zoom(vals[0])), nil
}

func (k *TileArchive) Put(t maptile.Tile, data []byte) error {
	val, err := Compress(data)
	if err != nil {
		return errors.Wrap(err, "compress tile")
	}
	if err := k.db.Set(TileKey(t), val, pebble.Sync); err != nil {
		return errors.Wrapf(err, "save tile %s", TileKey(t))
	}
	return nil
}

func (k *TileArchive) Get(t maptile.Tile) ([]byte, error) {
	val, closer, err := k.db.Get(TileKey(t))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get tile %s", TileKey(t))
	}
	defer closer.Close()

	bb, err := Decompress(val)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress tile %s", TileKey(t))
	}
	return bb, nil
}

func (k *TileArchive) Has(t maptile.Tile) bool {
	_, closer, err := k.db.Get(TileKey(t))
	if err != nil {
		return false
	}
	closer.Close()
	return true
}

func (k *TileArchive) Delete(t maptile.Tile) error {
	return errors.Wrapf(k.db.Delete(TileKey(t), pebble.Sync), "delete tile %s", TileKey(t))
}

// Tiles lists every archived tile in key order.
func (k *TileArchive) Tiles() ([]maptile.Tile, error) {
	iter, err := k.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "iterate tile archive")
	}
	defer iter.Close()

	var tiles []maptile.Tile
	for iter.First(); iter.Valid(); iter.Next() {
		t, err := ParseTileKey(iter.Key())
		if err != nil {
			log.Warnf("skipping archive entry: %v", err)
			continue
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

type TileItem struct {
	Tile maptile.Tile
	Data []byte
}

// PutAll saves tiles with a pool of writers. The first error is returned, the other tiles are
// still attempted.
func (k *TileArchive) PutAll(items []TileItem, workers int) error {
	errs := concurrent.Run(workers, items, func(item TileItem) error {
		return k.Put(item.Tile, item.Data)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (k *TileArchive) Close() error {
	return k.db.Close()
}
