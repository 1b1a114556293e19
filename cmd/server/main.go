package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	_ "lintang/racemap/docs"
	"lintang/racemap/pkg/config"
	"lintang/racemap/pkg/kv"
	"lintang/racemap/pkg/roads"
	"lintang/racemap/pkg/server/rest"
	"lintang/racemap/pkg/server/rest/service"
	"lintang/racemap/pkg/snap"
	"lintang/racemap/pkg/spatialindex"
	"lintang/racemap/pkg/terrain"
	"lintang/racemap/pkg/tilesource"
	"lintang/racemap/pkg/vehicle"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default config")
	listenAddr = flag.String("listenaddr", "", "server listen address, override server.listen_addr")
	startLon   = flag.Float64("lon", 110.8245, "longitude awal kendaraan")
	startLat   = flag.Float64("lat", -7.5666, "latitude awal kendaraan")
	preload    = flag.Bool("preload", false, "load jalan di sekitar posisi awal saat start")
)

//	@title			racemap lintangbs API
//	@version		1.0
//	@description	vector tile road extraction and road snapping demo server in go

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	flag.Parse()

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
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogger(cfg.LogLevel)

	var source tilesource.Source
	switch cfg.Tiles.Source {
	case "archive":
		archive, err := kv.Open(cfg.Archive.Path, &pebble.Options{})
		if err != nil {
			return err
		}
		defer archive.Close()
		source = tilesource.NewArchiveSource(archive)
	default:
		source = tilesource.NewHTTPSource(cfg.Tiles.URLTemplate,
			tilesource.WithTimeout(cfg.TileTimeout()),
			tilesource.WithRetries(cfg.Tiles.Retries),
		)
	}

	snapper, err := snap.NewSnapper(snap.WithStrength(cfg.SnapStrength()))
	if err != nil {
		return err
	}
	index := spatialindex.NewIndex()
	set := roads.NewSet(snapper, index)
	classifier := roads.NewClassifier(cfg.Tiles.Layer)
	loader := roads.NewLoader(source, classifier, set, roads.LoaderOptions{
		Zoom:     cfg.Zoom(),
		RadiusKm: cfg.Region.RadiusKm,
		Workers:  cfg.Tiles.Workers,
	})

	smoother := terrain.NewSmoother(terrain.Flat, terrain.DefaultSmoothFactor)
	car := vehicle.NewController(snapper, smoother, *startLon, *startLat, vehicle.DefaultOptions())

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost"+cfg.Server.ListenAddr+"/swagger/doc.json"),
	))

	racemapSvc := service.NewRacemapService(loader, classifier, set, snapper, index, car)
	rest.RacemapRouter(r, racemapSvc, m)

	if *preload {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := loader.LoadRegion(ctx, *startLon, *startLat); err != nil {
				log.Warnf("preload region: %v", err)
			}
		}()
	}

	log.WithFields(log.Fields{
		"addr":   cfg.Server.ListenAddr,
		"source": cfg.Tiles.Source,
		"zoom":   cfg.Tiles.Zoom,
	}).Info("server started")
	return http.ListenAndServe(cfg.Server.ListenAddr, r)
}

func setupLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
