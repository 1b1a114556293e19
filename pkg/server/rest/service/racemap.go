package service

import (
	"context"

	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/roads"
	"lintang/racemap/pkg/server"
	"lintang/racemap/pkg/snap"
	"lintang/racemap/pkg/spatialindex"
	"lintang/racemap/pkg/vehicle"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/twpayne/go-polyline"
)

type RegionLoader interface {
	LoadRegion(ctx context.Context, lon, lat float64) (roads.RegionResult, error)
}

type TileExtractor interface {
	FromBytes(data []byte, id maptile.Tile) ([]orb.LineString, error)
}

type RoadSet interface {
	Put(tile maptile.Tile, lines []orb.LineString)
	Polylines() []orb.LineString
	Tiles() []maptile.Tile
}

type Snapper interface {
	SnapPosition(x, y float64) (snap.Result, error)
}

type NearbyIndex interface {
	Nearest(x, y float64, k int) []spatialindex.Nearby
}

type Vehicle interface {
	Step(ctl vehicle.Controls) (vehicle.State, vehicle.Outcome)
	Reset(lon, lat float64) vehicle.State
	State() vehicle.State
}

type RacemapService struct {
	loader    RegionLoader
	extractor TileExtractor
	set       RoadSet
	snapper   Snapper
	index     NearbyIndex
	vehicle   Vehicle
}

func NewRacemapService(loader RegionLoader, extractor TileExtractor, set RoadSet, snapper Snapper,
	index NearbyIndex, v Vehicle) *RacemapService {
	return &RacemapService{loader: loader, extractor: extractor, set: set, snapper: snapper, index: index, vehicle: v}
}

type RegionResult struct {
	Tiles     int
	Failed    int
	Polylines int
}

func (uc *RacemapService) LoadRegion(ctx context.Context, lon, lat float64) (RegionResult, error) {
	res, err := uc.loader.LoadRegion(ctx, lon, lat)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return RegionResult{}, server.WrapErrorf(err, server.ErrConflict, "region load canceled")
		}
		return RegionResult{}, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	if res.Tiles > 0 && res.Failed == res.Tiles {
		return RegionResult{}, server.WrapErrorf(err, server.ErrNotFound, "no tile around %.6f,%.6f could be loaded", lon, lat)
	}
	return RegionResult{Tiles: res.Tiles, Failed: res.Failed, Polylines: res.Polylines}, nil
}

// PutTile decodes one raw tile and stores its roads. Returns the number of road polylines.
func (uc *RacemapService) PutTile(ctx context.Context, tile maptile.Tile, data []byte) (int, error) {
	lines, err := uc.extractor.FromBytes(data, tile)
	if err != nil {
		return 0, server.WrapErrorf(err, server.ErrBadParamInput, "invalid vector tile: %v", err)
	}
	uc.set.Put(tile, lines)
	return len(lines), nil
}

// Roads returns every loaded road as an encoded polyline of lat/lon points.
func (uc *RacemapService) Roads(ctx context.Context) ([]string, int, error) {
	lines := uc.set.Polylines()
	out := make([]string, 0, len(lines))
	for _, ls := range lines {
		out = append(out, EncodeProjected(ls))
	}
	return out, len(uc.set.Tiles()), nil
}

type NearbyRoad struct {
	Index          int
	Polyline       string
	DistanceMeters float64
	NearestLon     float64
	NearestLat     float64
}

func (uc *RacemapService) Nearby(ctx context.Context, lon, lat float64, k int) ([]NearbyRoad, error) {
	x, y := geo.GeoToProjected(lon, lat)
	if !geo.IsFinite(x, y) {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "location %v,%v cannot be projected", lon, lat)
	}
	hits := uc.index.Nearest(x, y, k)
	if len(hits) == 0 {
		return nil, server.WrapErrorf(nil, server.ErrNotFound, "no road loaded around %.6f,%.6f", lon, lat)
	}
	out := make([]NearbyRoad, 0, len(hits))
	for _, h := range hits {
		nLon, nLat := geo.ProjectedToGeo(h.Nearest[0], h.Nearest[1])
		out = append(out, NearbyRoad{
			Index:          h.Index,
			Polyline:       EncodeProjected(h.Polyline),
			DistanceMeters: geo.DistanceMeters(lon, lat, nLon, nLat),
			NearestLon:     nLon,
			NearestLat:     nLat,
		})
	}
	return out, nil
}

type SnapResult struct {
	Lon, Lat       float64
	HeadingDegrees float64
	OffsetMeters   float64
	Snapped        bool
}

func (uc *RacemapService) Snap(ctx context.Context, lon, lat float64) (SnapResult, error) {
	x, y := geo.GeoToProjected(lon, lat)
	if !geo.IsFinite(x, y) {
		return SnapResult{}, server.WrapErrorf(nil, server.ErrBadParamInput, "location %v,%v cannot be projected", lon, lat)
	}
	res, err := uc.snapper.SnapPosition(x, y)
	if err != nil {
		return SnapResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "road data is corrupt, snap failed")
	}
	sLon, sLat := geo.ProjectedToGeo(res.Point[0], res.Point[1])
	return SnapResult{
		Lon:            sLon,
		Lat:            sLat,
		HeadingDegrees: geo.HeadingDegrees(res.Direction[0], res.Direction[1]),
		OffsetMeters:   geo.DistanceMeters(lon, lat, sLon, sLat),
		Snapped:        res.Snapped,
	}, nil
}

func (uc *RacemapService) VehicleStep(ctx context.Context, ctl vehicle.Controls) (vehicle.State, vehicle.Outcome) {
	return uc.vehicle.Step(ctl)
}

func (uc *RacemapService) VehicleReset(ctx context.Context, lon, lat float64) vehicle.State {
	return uc.vehicle.Reset(lon, lat)
}

func (uc *RacemapService) VehicleState(ctx context.Context) vehicle.State {
	return uc.vehicle.State()
}

// EncodeProjected encodes a projected line as a google polyline of lat/lon pairs.
func EncodeProjected(ls orb.LineString) string {
	coords := make([][]float64, 0, len(ls))
	for _, p := range ls {
		lon, lat := geo.ProjectedToGeo(p[0], p[1])
		coords = append(coords, []float64{lat, lon})
	}
	return string(polyline.EncodeCoords(coords))
}
