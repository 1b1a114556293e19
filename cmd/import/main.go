package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"lintang/racemap/pkg/concurrent"
	"lintang/racemap/pkg/config"
	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/kv"
	"lintang/racemap/pkg/tilesource"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default config")
	lon        = flag.Float64("lon", 110.8245, "longitude pusat region")
	lat        = flag.Float64("lat", -7.5666, "latitude pusat region")
	radius     = flag.Float64("radius", 0, "radius region dalam km, 0 = region.radius_km dari config")
	skip       = flag.Bool("skip-existing", true, "jangan fetch tile yang sudah ada di archive")
)

type fetched struct {
	tile maptile.Tile
	data []byte
	err  error
}

type importResult struct {
	Saved  int
	Failed int
}

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// semua defer ada di run, log.Fatal baru dipanggil setelah run selesai
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Tiles.URLTemplate == "" {
		return errors.New("tiles.url_template is required to import tiles")
	}
	radiusKm := cfg.Region.RadiusKm
	if *radius > 0 {
		radiusKm = *radius
	}

	archive, err := kv.Open(cfg.Archive.Path, &pebble.Options{})
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tiles := geo.TilesInRadius(*lon, *lat, cfg.Zoom(), radiusKm)
	if *skip {
		tiles = missingTiles(archive, tiles)
	}
	if len(tiles) == 0 {
		log.Info("semua tile sudah ada di archive")
		return nil
	}

	source := tilesource.NewHTTPSource(cfg.Tiles.URLTemplate,
		tilesource.WithTimeout(cfg.TileTimeout()),
		tilesource.WithRetries(cfg.Tiles.Retries),
	)
	res, err := importTiles(ctx, source, archive, tiles, cfg.Tiles.Workers)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"tiles":   len(tiles),
		"saved":   res.Saved,
		"failed":  res.Failed,
		"archive": cfg.Archive.Path,
	}).Info("import selesai")
	if ctx.Err() != nil {
		log.Warn("import dibatalkan")
	}
	return nil
}

func missingTiles(archive *kv.TileArchive, tiles []maptile.Tile) []maptile.Tile {
	out := make([]maptile.Tile, 0, len(tiles))
	for _, t := range tiles {
		if !archive.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// importTiles fetches tiles on a worker pool and saves the successful ones with PutAll. Tiles
// the server does not have or that fail to fetch are counted in Failed.
func importTiles(ctx context.Context, source tilesource.Source, archive *kv.TileArchive,
	tiles []maptile.Tile, workers int) (importResult, error) {
	bar := progressbar.NewOptions(len(tiles),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()), //you should install "github.com/k0kubun/go-ansi"
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][1/2][reset] Fetch %d vector tiles...", len(tiles))),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	wp := concurrent.NewWorkerPool[maptile.Tile, fetched](workers, len(tiles))
	for _, t := range tiles {
		wp.AddJob(t)
	}
	wp.Close()
	wp.Start(func(t maptile.Tile) fetched {
		if err := ctx.Err(); err != nil {
			return fetched{tile: t, err: err}
		}
		data, err := source.Fetch(ctx, t)
		return fetched{tile: t, data: data, err: err}
	})
	go wp.Wait()

	var res importResult
	items := make([]kv.TileItem, 0, len(tiles))
	for f := range wp.CollectResults() {
		bar.Add(1)
		switch {
		case errors.Is(f.err, tilesource.ErrTileNotFound):
			log.Debugf("tile %d/%d/%d kosong di server", f.tile.Z, f.tile.X, f.tile.Y)
			res.Failed++
		case f.err != nil:
			log.WithFields(log.Fields{"z": f.tile.Z, "x": f.tile.X, "y": f.tile.Y}).Warnf("fetch tile: %v", f.err)
			res.Failed++
		default:
			items = append(items, kv.TileItem{Tile: f.tile, Data: f.data})
		}
	}
	fmt.Println()

	log.Infof("[2/2] simpan %d tiles ke archive", len(items))
	if err := archive.PutAll(items, workers); err != nil {
		return res, errors.Wrap(err, "save tiles")
	}
	res.Saved = len(items)
	return res, nil
}
