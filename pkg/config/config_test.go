package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"lintang/racemap/pkg/config"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults fill missing fields", func(t *testing.T) {
		cfg, err := config.Parse([]byte("tiles:\n  url_template: https://tiles.example.com/{z}/{x}/{y}.pbf\n"))
		require.NoError(t, err)
		assert.Equal(t, ":5000", cfg.Server.ListenAddr)
		assert.Equal(t, maptile.Zoom(14), cfg.Zoom())
		assert.Equal(t, "transportation", cfg.Tiles.Layer)
		assert.Equal(t, "http", cfg.Tiles.Source)
		assert.Equal(t, 2000*time.Millisecond, cfg.TileTimeout())
		assert.Equal(t, 0.85, cfg.SnapStrength())
		assert.Equal(t, 0.7, cfg.Region.RadiusKm)
		assert.Equal(t, "racemapDB", cfg.Archive.Path)
	})

	t.Run("zero snap strength is kept", func(t *testing.T) {
		cfg, err := config.Parse([]byte("tiles:\n  source: archive\nsnap:\n  strength: 0\n"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.SnapStrength())
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := map[string]string{
			"strength above one":    "tiles:\n  source: archive\nsnap:\n  strength: 1.5\n",
			"zoom out of range":     "tiles:\n  source: archive\n  zoom: 23\n",
			"unknown source":        "tiles:\n  source: ftp\n",
			"http without template": "tiles:\n  source: http\n",
			"unknown log level":     "tiles:\n  source: archive\nlog_level: loud\n",
			"broken yaml":           "tiles: [",
		}
		for name, data := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := config.Parse([]byte(data))
				assert.Error(t, err)
			})
		}
	})
}

func TestDefaultValidate(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URLTemplate")

	cfg.Tiles.URLTemplate = "https://tiles.example.com/{z}/{x}/{y}.pbf"
	assert.NoError(t, cfg.Validate())

	archive := config.Default()
	archive.Tiles.Source = "archive"
	assert.NoError(t, archive.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":6000\"\ntiles:\n  source: archive\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.ListenAddr)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestTileURL(t *testing.T) {
	tile := maptile.New(13215, 8547, 14)
	assert.Equal(t, "https://tiles.example.com/14/13215/8547.pbf",
		config.TileURL("https://tiles.example.com/{z}/{x}/{y}.pbf", tile))
	assert.Equal(t, "/static", config.TileURL("/static", tile))
}
