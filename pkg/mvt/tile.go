package mvt

import (
	"math"

	"lintang/racemap/pkg/pbf"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	DefaultExtent  = 4096
	DefaultVersion = 1
)

var (
	ErrTruncatedInput  = pbf.ErrTruncatedInput
	ErrMalformedTile   = pbf.ErrMalformedTile
	ErrInvalidEncoding = pbf.ErrInvalidEncoding
)

type GeomType uint8

const (
	GeomUnknown GeomType = iota
	GeomPoint
	GeomLineString
	GeomPolygon
)

func (g GeomType) String() string {
	switch g {
	case GeomPoint:
		return "Point"
	case GeomLineString:
		return "LineString"
	case GeomPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// TagRef is one raw (key index, value index) pair of a feature, not yet resolved against the layer tables.
type TagRef struct {
	Key   uint32
	Value uint32
}

type Feature struct {
	ID       uint64
	HasID    bool
	Tags     []TagRef
	Type     GeomType
	Geometry []uint32 // raw command stream
}

type Layer struct {
	Name     string
	Version  uint32
	Extent   uint32
	Keys     []string
	Values   []Value
	Features []*Feature
}

// Tile maps layer name -> layer. Immutable after DecodeTile returns.
type Tile struct {
	Layers map[string]*Layer
}

func (t *Tile) Layer(name string) (*Layer, bool) {
	if t == nil {
		return nil, false
	}
	l, ok := t.Layers[name]
	return l, ok
}

// tile message fields
const (
	tileLayers protowire.Number = 3
)

// layer message fields
const (
	layerName     protowire.Number = 1
	layerFeatures protowire.Number = 2
	layerKeys     protowire.Number = 3
	layerValues   protowire.Number = 4
	layerExtent   protowire.Number = 5
	layerVersion  protowire.Number = 15
)

// feature message fields
const (
	featureID       protowire.Number = 1
	featureTags     protowire.Number = 2
	featureType     protowire.Number = 3
	featureGeometry protowire.Number = 4
)

// value message fields
const (
	valueString protowire.Number = iota + 1
	valueFloat
	valueDouble
	valueInt
	valueUint
	valueSint
	valueBool
)

// DecodeTile decodes an uncompressed vector tile. Unknown fields are skipped at every level.
func DecodeTile(data []byte) (*Tile, error) {
	tile := &Tile{Layers: make(map[string]*Layer)}
	r := pbf.NewReader(data)
	err := r.ReadFields(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
		if num != tileLayers {
			return r.Skip(typ)
		}
		if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
			return err
		}
		layer, err := readLayer(r)
		if err != nil {
			return err
		}
		if _, dup := tile.Layers[layer.Name]; dup {
			log.WithField("layer", layer.Name).Warn("duplicate layer name in tile, keeping the last one")
		}
		tile.Layers[layer.Name] = layer
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode tile")
	}
	return tile, nil
}

func readLayer(r *pbf.Reader) (*Layer, error) {
	layer := &Layer{Version: DefaultVersion, Extent: DefaultExtent}
	err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
		switch num {
		case layerName:
			if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
				return err
			}
			s, err := r.ReadLengthDelimitedString()
			if err != nil {
				return err
			}
			layer.Name = s
		case layerFeatures:
			if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
				return err
			}
			f, err := readFeature(r)
			if err != nil {
				return err
			}
			layer.Features = append(layer.Features, f)
		case layerKeys:
			if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
				return err
			}
			s, err := r.ReadLengthDelimitedString()
			if err != nil {
				return err
			}
			layer.Keys = append(layer.Keys, s)
		case layerValues:
			if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
				return err
			}
			v, err := readValue(r)
			if err != nil {
				return err
			}
			layer.Values = append(layer.Values, v)
		case layerExtent:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			if v == 0 || v > 1<<31 {
				return errors.Wrapf(ErrMalformedTile, "layer extent %d", v)
			}
			layer.Extent = uint32(v)
		case layerVersion:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			layer.Version = uint32(v)
		default:
			return r.Skip(typ)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q", layer.Name)
	}
	return layer, nil
}

func readFeature(r *pbf.Reader) (*Feature, error) {
	f := &Feature{}
	var rawTags, rawGeom []uint64
	err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
		var err error
		switch num {
		case featureID:
			if err = pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			f.ID, err = r.ReadVarint()
			f.HasID = err == nil
			return err
		case featureTags:
			rawTags, err = r.ReadPackedVarints(typ, rawTags)
			return err
		case featureType:
			if err = pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			if v > uint64(GeomPolygon) {
				v = uint64(GeomUnknown)
			}
			f.Type = GeomType(v)
			return nil
		case featureGeometry:
			rawGeom, err = r.ReadPackedVarints(typ, rawGeom)
			return err
		default:
			return r.Skip(typ)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "feature")
	}

	if len(rawTags)%2 != 0 {
		return nil, errors.Wrapf(ErrMalformedTile, "feature %d: odd tag array length %d", f.ID, len(rawTags))
	}
	if i := firstAbove32(rawTags); i >= 0 {
		return nil, errors.Wrapf(ErrMalformedTile, "feature %d: tag index %d does not fit in 32 bits", f.ID, rawTags[i])
	}
	if i := firstAbove32(rawGeom); i >= 0 {
		return nil, errors.Wrapf(ErrMalformedTile, "feature %d: geometry integer %d at %d does not fit in 32 bits", f.ID, rawGeom[i], i)
	}
	f.Tags = make([]TagRef, 0, len(rawTags)/2)
	for i := 0; i < len(rawTags); i += 2 {
		f.Tags = append(f.Tags, TagRef{Key: uint32(rawTags[i]), Value: uint32(rawTags[i+1])})
	}
	f.Geometry = make([]uint32, len(rawGeom))
	for i, g := range rawGeom {
		f.Geometry[i] = uint32(g)
	}
	return f, nil
}

func firstAbove32(vs []uint64) int {
	for i, v := range vs {
		if v > math.MaxUint32 {
			return i
		}
	}
	return -1
}

// readValue decodes a Value sub-message. When more than one variant is present the last one wins,
// so a Value always carries at most one payload.
func readValue(r *pbf.Reader) (Value, error) {
	var val Value = NoValue{}
	err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
		switch num {
		case valueString:
			if err := pbf.ExpectType(num, typ, protowire.BytesType); err != nil {
				return err
			}
			s, err := r.ReadLengthDelimitedString()
			if err != nil {
				return err
			}
			val = StringValue(s)
		case valueFloat:
			if err := pbf.ExpectType(num, typ, protowire.Fixed32Type); err != nil {
				return err
			}
			v, err := r.ReadFixedFloat32()
			if err != nil {
				return err
			}
			val = FloatValue(v)
		case valueDouble:
			if err := pbf.ExpectType(num, typ, protowire.Fixed64Type); err != nil {
				return err
			}
			v, err := r.ReadFixedFloat64()
			if err != nil {
				return err
			}
			val = DoubleValue(v)
		case valueInt:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			val = IntValue(int64(v))
		case valueUint:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			val = UintValue(v)
		case valueSint:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadSignedZigZag()
			if err != nil {
				return err
			}
			val = SintValue(v)
		case valueBool:
			if err := pbf.ExpectType(num, typ, protowire.VarintType); err != nil {
				return err
			}
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}
			val = BoolValue(v != 0)
		default:
			return r.Skip(typ)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}
	return val, nil
}

// ResolveTags turns the raw index pairs of f into a key -> value mapping. Out of range indices and
// absent values are skipped; a later duplicate key overrides an earlier one.
func (l *Layer) ResolveTags(f *Feature) map[string]Value {
	tags := make(map[string]Value, len(f.Tags))
	for _, ref := range f.Tags {
		if int(ref.Key) >= len(l.Keys) || int(ref.Value) >= len(l.Values) {
			continue
		}
		v := l.Values[ref.Value]
		if IsAbsent(v) {
			continue
		}
		tags[l.Keys[ref.Key]] = v
	}
	return tags
}
