package geo

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
	"github.com/uber/h3-go/v4"
)

const (
	earthRadiusKM = 6371.0
	h3Resolution  = 9
)

/*
Bearing menghitung sudut bearing dari titik 1 ke titik 2, 0..360 derajat searah jarum jam dari utara.
https://www.movable-type.co.uk/scripts/latlong.html
*/
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1LatRad := lat1 * d2r
	p2LatRad := lat2 * d2r
	diffLon := (lon2 - lon1) * d2r

	y := math.Sin(diffLon) * math.Cos(p2LatRad)
	x := math.Cos(p1LatRad)*math.Sin(p2LatRad) - math.Sin(p1LatRad)*math.Cos(p2LatRad)*math.Cos(diffLon)
	theta := math.Atan2(y, x)

	return math.Mod((theta*r2d)+360, 360)
}

// HeadingDegrees converts a projected direction vector (x east, y north) to a compass heading.
func HeadingDegrees(dx, dy float64) float64 {
	return math.Mod(math.Atan2(dx, dy)*r2d+360, 360)
}

// DistanceMeters is the great-circle distance between two lon/lat points.
func DistanceMeters(lon1, lat1, lon2, lat2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * earthRadiusKM * 1000
}

// Cell returns the h3 cell (resolution 9) containing a point.
func Cell(lon, lat float64) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)
}

// TilesInRadius returns every tile at zoom that intersects the disk of radiusKm around lon/lat,
// origin tile included. Candidates come from the bounding box of the disk and are kept when the
// closest point of the tile bound is inside the radius.
func TilesInRadius(lon, lat float64, zoom maptile.Zoom, radiusKm float64) []maptile.Tile {
	originTile, _ := NormalizePointInTile(lon, lat, zoom)
	if !IsFinite(lon, lat, radiusKm) || radiusKm <= 0 {
		return []maptile.Tile{originTile}
	}

	dLat := radiusKm / earthRadiusKM * r2d
	dLon := 180.0
	if c := math.Cos(lat * d2r); c > 1e-9 {
		dLon = math.Min(dLat/c, 180)
	}
	bound := orb.Bound{
		Min: orb.Point{clampLon(lon - dLon), clampLat(lat - dLat)},
		Max: orb.Point{clampLon(lon + dLon), clampLat(lat + dLat)},
	}

	// nearest point is clamped in lon/lat, 1% slack covers the difference to the true nearest point
	limit := radiusKm * 1000 * 1.01
	seen := map[maptile.Tile]struct{}{originTile: {}}
	for t := range tilecover.Bound(bound, zoom) {
		b := t.Bound()
		nearLon := math.Max(b.Min[0], math.Min(lon, b.Max[0]))
		nearLat := math.Max(b.Min[1], math.Min(lat, b.Max[1]))
		if DistanceMeters(lon, lat, nearLon, nearLat) <= limit {
			seen[t] = struct{}{}
		}
	}

	tiles := make([]maptile.Tile, 0, len(seen))
	for t := range seen {
		tiles = append(tiles, t)
	}
	SortTiles(tiles)
	return tiles
}

const maxMercatorLat = 85.05112878

func clampLat(lat float64) float64 {
	return math.Max(-maxMercatorLat, math.Min(lat, maxMercatorLat))
}

// lon 180 maps to tile index 2^z, keep it just inside the last column
func clampLon(lon float64) float64 {
	return math.Max(-180, math.Min(lon, 180-1e-9))
}

// SortTiles orders tiles by z, x, y.
func SortTiles(tiles []maptile.Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		return TileLess(tiles[i], tiles[j])
	})
}

func TileLess(a, b maptile.Tile) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
