// Package tilesource fetches raw vector tile bytes over HTTP or from the local archive.
package tilesource

import (
	"bytes"
	"context"
	"io"

	"lintang/racemap/pkg/kv"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
)

var ErrTileNotFound = errors.New("tile not found")

type Source interface {
	Fetch(ctx context.Context, tile maptile.Tile) ([]byte, error)
}

// Gunzip returns data decompressed when it starts with the gzip magic, otherwise data as is.
// Tile servers commonly serve pbf tiles gzipped without a Content-Encoding header.
func Gunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip header")
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "gunzip tile")
	}
	return out, nil
}

type tileArchive interface {
	Get(t maptile.Tile) ([]byte, error)
}

// ArchiveSource serves tiles stored by the importer.
type ArchiveSource struct {
	archive tileArchive
}

func NewArchiveSource(archive tileArchive) *ArchiveSource {
	return &ArchiveSource{archive: archive}
}

func (s *ArchiveSource) Fetch(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.archive.Get(tile)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, errors.Wrapf(ErrTileNotFound, "archive %d/%d/%d", tile.Z, tile.X, tile.Y)
	}
	if err != nil {
		return nil, err
	}
	return Gunzip(data)
}
