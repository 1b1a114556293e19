package roads

import (
	"lintang/racemap/pkg/geo"
	"lintang/racemap/pkg/mvt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
)

const DefaultLayer = "transportation"

var (
	// jalan kaki / sepeda / tangga, tidak bisa dilewati mobil.
	excludeClasses = map[string]struct{}{
		"footway":    {},
		"pedestrian": {},
		"cycleway":   {},
		"path":       {},
		"steps":      {},
		"bridleway":  {},
		"corridor":   {},
		"sidewalk":   {},
		"crossing":   {},
		"platform":   {},
	}

	drivableClasses = map[string]struct{}{
		"motorway":       {},
		"motorway_link":  {},
		"trunk":          {},
		"trunk_link":     {},
		"primary":        {},
		"primary_link":   {},
		"secondary":      {},
		"secondary_link": {},
		"tertiary":       {},
		"tertiary_link":  {},
		"residential":    {},
		"service":        {},
		"living_street":  {},
		"unclassified":   {},
		"track":          {},
		"road":           {},
		"minor":          {},
	}
)

type Decision int

const (
	Reject Decision = iota
	Accept
)

// Classifier selects drivable line features from one layer of a tile.
type Classifier struct {
	LayerName string
}

func NewClassifier(layerName string) *Classifier {
	if layerName == "" {
		layerName = DefaultLayer
	}
	return &Classifier{LayerName: layerName}
}

// Classify decides on resolved tags. Exclusion is checked before the drivable set, so a feature
// with a drivable class but an excluded subclass is rejected.
func (c *Classifier) Classify(tags map[string]mvt.Value) Decision {
	class, _ := mvt.AsString(tags["class"])
	subclass, _ := mvt.AsString(tags["subclass"])

	if isExcluded(class) || isExcluded(subclass) {
		return Reject
	}
	if isDrivable(class) || isDrivable(subclass) {
		return Accept
	}
	return Reject
}

func isExcluded(v string) bool {
	if v == "" {
		return false
	}
	_, ok := excludeClasses[v]
	return ok
}

func isDrivable(v string) bool {
	if v == "" {
		return false
	}
	_, ok := drivableClasses[v]
	return ok
}

// ExtractRoads returns the drivable line strings of the tile in tile-local normalized coordinates.
// A tile without the road layer yields no lines and no error.
func (c *Classifier) ExtractRoads(tile *mvt.Tile) ([]orb.LineString, error) {
	layer, ok := tile.Layer(c.LayerName)
	if !ok {
		return nil, nil
	}

	var out []orb.LineString
	for i, f := range layer.Features {
		if f.Type != mvt.GeomLineString {
			continue
		}
		if c.Classify(layer.ResolveTags(f)) != Accept {
			continue
		}
		lines, err := layer.DecodeLines(f)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %q feature %d", layer.Name, i)
		}
		for _, ls := range lines {
			if len(ls) >= 2 {
				out = append(out, ls)
			}
		}
	}
	return out, nil
}

// ExtractRoads classifies with the default transportation layer.
func ExtractRoads(tile *mvt.Tile) ([]orb.LineString, error) {
	return NewClassifier(DefaultLayer).ExtractRoads(tile)
}

// FromTile extracts the roads of a decoded tile and projects them into mercator meters.
func (c *Classifier) FromTile(tile *mvt.Tile, id maptile.Tile) ([]orb.LineString, error) {
	lines, err := c.ExtractRoads(tile)
	if err != nil {
		return nil, err
	}
	projected := make([]orb.LineString, 0, len(lines))
	for _, ls := range lines {
		projected = append(projected, geo.ProjectLine(id, ls))
	}
	return projected, nil
}

// FromBytes decodes raw tile bytes and returns its projected roads.
func (c *Classifier) FromBytes(data []byte, id maptile.Tile) ([]orb.LineString, error) {
	tile, err := mvt.DecodeTile(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode tile %d/%d/%d", id.Z, id.X, id.Y)
	}
	return c.FromTile(tile, id)
}
