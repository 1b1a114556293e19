package roads

import (
	"context"
	"time"

	"lintang/racemap/pkg/concurrent"
	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/tilesource"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type LoaderOptions struct {
	Zoom     maptile.Zoom
	RadiusKm float64
	Workers  int
}

// Loader fetches, decodes and classifies the tiles around a point and hands the result to a Set.
type Loader struct {
	source     tilesource.Source
	classifier *Classifier
	set        *Set
	opts       LoaderOptions
}

func NewLoader(source tilesource.Source, classifier *Classifier, set *Set, opts LoaderOptions) *Loader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Loader{source: source, classifier: classifier, set: set, opts: opts}
}

type TileResult struct {
	Tile  maptile.Tile
	Lines []orb.LineString
	Err   error
}

type RegionResult struct {
	Tiles     int
	Failed    int
	Polylines int
	Duration  time.Duration
}

// LoadTile fetches and extracts a single tile without touching the set.
func (l *Loader) LoadTile(ctx context.Context, tile maptile.Tile) ([]orb.LineString, error) {
	data, err := l.source.Fetch(ctx, tile)
	if err != nil {
		return nil, err
	}
	return l.classifier.FromBytes(data, tile)
}

// LoadRegion loads every tile covering RadiusKm around lon/lat and replaces the whole road set.
// Tiles that fail are logged and left out. When ctx is done the partial result is discarded and
// the set keeps its previous content.
func (l *Loader) LoadRegion(ctx context.Context, lon, lat float64) (RegionResult, error) {
	start := time.Now()
	if !geo.IsFinite(lon, lat) {
		return RegionResult{}, errors.Errorf("invalid region center %v,%v", lon, lat)
	}
	tiles := geo.TilesInRadius(lon, lat, l.opts.Zoom, l.opts.RadiusKm)

	results := concurrent.Run(l.opts.Workers, tiles, func(tile maptile.Tile) TileResult {
		if err := ctx.Err(); err != nil {
			return TileResult{Tile: tile, Err: err}
		}
		lines, err := l.LoadTile(ctx, tile)
		return TileResult{Tile: tile, Lines: lines, Err: err}
	})

	if err := ctx.Err(); err != nil {
		return RegionResult{}, errors.Wrap(err, "load region")
	}

	res := RegionResult{Tiles: len(tiles)}
	loaded := make(map[maptile.Tile][]orb.LineString, len(results))
	for _, r := range results {
		if r.Err != nil {
			res.Failed++
			log.WithFields(log.Fields{"z": r.Tile.Z, "x": r.Tile.X, "y": r.Tile.Y}).Warnf("skip tile: %v", r.Err)
			continue
		}
		loaded[r.Tile] = r.Lines
		res.Polylines += len(r.Lines)
	}
	l.set.Replace(loaded)
	res.Duration = time.Since(start)

	log.WithFields(log.Fields{
		"tiles":     res.Tiles,
		"failed":    res.Failed,
		"polylines": res.Polylines,
		"took":      res.Duration,
	}).Info("region loaded")
	return res, nil
}
