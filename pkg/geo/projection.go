package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// EarthRadius is the spherical mercator radius in meters.
const EarthRadius = 6378137.0

const (
	d2r = math.Pi / 180.0
	r2d = 180.0 / math.Pi
)

// Non-finite input gives non-finite output here, callers check IsFinite before using the result.

// GeoToProjected projects lon/lat degrees into spherical mercator meters.
func GeoToProjected(lon, lat float64) (x, y float64) {
	x = EarthRadius * lon * d2r
	y = EarthRadius * math.Log(math.Tan(math.Pi/4+lat*d2r/2))
	return x, y
}

// ProjectedToGeo is the inverse of GeoToProjected.
func ProjectedToGeo(x, y float64) (lon, lat float64) {
	lon = x * r2d / EarthRadius
	lat = (math.Atan(math.Exp(y/EarthRadius)) - math.Pi/4) * 2 * r2d
	return lon, lat
}

// GeoToTileFraction returns real valued slippy map tile coordinates at zoom. The integer part is
// the tile index, the fractional part the offset inside the tile.
func GeoToTileFraction(lon, lat float64, zoom maptile.Zoom) (tx, ty float64) {
	s := float64(uint64(1) << zoom)
	latRad := lat * d2r
	tx = (lon + 180) / 360 * s
	ty = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * s
	return tx, ty
}

// TileFractionToGeo is the inverse of GeoToTileFraction.
func TileFractionToGeo(tx, ty float64, zoom maptile.Zoom) (lon, lat float64) {
	s := float64(uint64(1) << zoom)
	lon = tx/s*360 - 180
	n := math.Pi - 2*math.Pi*ty/s
	lat = r2d * math.Atan(0.5*(math.Exp(n)-math.Exp(-n)))
	return lon, lat
}

// NormalizePointInTile splits a geographic point into the tile containing it and the [0,1) offset
// inside that tile.
func NormalizePointInTile(lon, lat float64, zoom maptile.Zoom) (maptile.Tile, orb.Point) {
	tx, ty := GeoToTileFraction(lon, lat, zoom)
	fx, fy := math.Floor(tx), math.Floor(ty)
	tile := maptile.Tile{X: uint32(clampIndex(fx, zoom)), Y: uint32(clampIndex(fy, zoom)), Z: zoom}
	return tile, orb.Point{tx - fx, ty - fy}
}

func clampIndex(v float64, zoom maptile.Zoom) float64 {
	max := float64(uint64(1)<<zoom) - 1
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// NormalizedTileToGeo combines a tile index with an in-tile offset and returns lon/lat.
func NormalizedTileToGeo(tile maptile.Tile, p orb.Point) (lon, lat float64) {
	return TileFractionToGeo(float64(tile.X)+p[0], float64(tile.Y)+p[1], tile.Z)
}

// NormalizedToProjected maps a tile-local normalized point straight into projected space.
func NormalizedToProjected(tile maptile.Tile, p orb.Point) orb.Point {
	lon, lat := NormalizedTileToGeo(tile, p)
	x, y := GeoToProjected(lon, lat)
	return orb.Point{x, y}
}

// ProjectLine maps a tile-local line string into projected space. The input is not modified.
func ProjectLine(tile maptile.Tile, ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = NormalizedToProjected(tile, p)
	}
	return out
}

func IsFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
