package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" validate:"required"`
}

type TilesConfig struct {
	// URLTemplate berisi placeholder {z}, {x}, {y}.
	URLTemplate string `yaml:"url_template" validate:"required_if=Source http"`
	Zoom        int    `yaml:"zoom" validate:"gte=0,lte=22"`
	Layer       string `yaml:"layer" validate:"required"`
	Source      string `yaml:"source" validate:"oneof=http archive"`
	TimeoutMs   int    `yaml:"timeout_ms" validate:"gt=0"`
	Retries     int    `yaml:"retries" validate:"gte=0,lte=10"`
	Workers     int    `yaml:"workers" validate:"gte=1,lte=64"`
}

type ArchiveConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type SnapConfig struct {
	Strength *float64 `yaml:"strength" validate:"omitempty,gte=0,lte=1"`
}

type RegionConfig struct {
	RadiusKm float64 `yaml:"radius_km" validate:"gte=0,lte=50"`
}

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Tiles    TilesConfig   `yaml:"tiles"`
	Archive  ArchiveConfig `yaml:"archive"`
	Snap     SnapConfig    `yaml:"snap"`
	Region   RegionConfig  `yaml:"region"`
	LogLevel string        `yaml:"log_level" validate:"oneof=trace debug info warn warning error"`
}

const DefaultSnapStrength = 0.85

func Default() Config {
	strength := DefaultSnapStrength
	return Config{
		Server: ServerConfig{ListenAddr: ":5000"},
		Tiles: TilesConfig{
			Zoom:      14,
			Layer:     "transportation",
			Source:    "http",
			TimeoutMs: 2000,
			Retries:   2,
			Workers:   4,
		},
		Archive:  ArchiveConfig{Path: "racemapDB"},
		Snap:     SnapConfig{Strength: &strength},
		Region:   RegionConfig{RadiusKm: 0.7},
		LogLevel: "info",
	}
}

// Load reads a yaml file on top of Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if cfg.Snap.Strength == nil {
		strength := DefaultSnapStrength
		cfg.Snap.Strength = &strength
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func (c Config) SnapStrength() float64 {
	if c.Snap.Strength == nil {
		return DefaultSnapStrength
	}
	return *c.Snap.Strength
}

func (c Config) TileTimeout() time.Duration {
	return time.Duration(c.Tiles.TimeoutMs) * time.Millisecond
}

func (c Config) Zoom() maptile.Zoom {
	return maptile.Zoom(c.Tiles.Zoom)
}

// TileURL fills the {z}, {x} and {y} placeholders of template.
func TileURL(template string, tile maptile.Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(tile.Z), 10),
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
	).Replace(template)
}
