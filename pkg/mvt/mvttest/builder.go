// Package mvttest builds vector tile bytes by hand for tests.
package mvttest

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

type Value struct {
	Kind   int // 1 string, 2 float, 3 double, 4 int, 5 uint, 6 sint, 7 bool, 0 empty
	String string
	Float  float64
	Int    int64
	Uint   uint64
	Bool   bool
}

func String(s string) Value  { return Value{Kind: 1, String: s} }
func Float(f float32) Value  { return Value{Kind: 2, Float: float64(f)} }
func Double(f float64) Value { return Value{Kind: 3, Float: f} }
func Int(i int64) Value      { return Value{Kind: 4, Int: i} }
func Uint(u uint64) Value    { return Value{Kind: 5, Uint: u} }
func Sint(i int64) Value     { return Value{Kind: 6, Int: i} }
func Bool(b bool) Value      { return Value{Kind: 7, Bool: b} }
func Empty() Value           { return Value{} }

type Feature struct {
	ID       *uint64
	Tags     []uint32
	Type     uint64
	Geometry []uint32
}

type Layer struct {
	Name     string
	Extent   uint32 // 0 = field omitted
	Version  uint32 // 0 = field omitted
	Keys     []string
	Values   []Value
	Features []Feature
}

// Command packs a geometry command id and repeat count.
func Command(id, count uint32) uint32 {
	return id&0x7 | count<<3
}

// Param zig-zag encodes one delta coordinate.
func Param(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// LineGeometry encodes a single line string as MoveTo + LineTo with absolute tile coordinates.
func LineGeometry(pts ...[2]int32) []uint32 {
	if len(pts) == 0 {
		return nil
	}
	var x, y int32
	geom := []uint32{Command(1, 1), Param(pts[0][0]), Param(pts[0][1])}
	x, y = pts[0][0], pts[0][1]
	if len(pts) > 1 {
		geom = append(geom, Command(2, uint32(len(pts)-1)))
		for _, p := range pts[1:] {
			geom = append(geom, Param(p[0]-x), Param(p[1]-y))
			x, y = p[0], p[1]
		}
	}
	return geom
}

func Tile(layers ...Layer) []byte {
	var b []byte
	for _, l := range layers {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, EncodeLayer(l))
	}
	return b
}

func EncodeLayer(l Layer) []byte {
	var b []byte
	if l.Version != 0 {
		b = protowire.AppendTag(b, 15, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Version))
	}
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, l.Name)
	for _, f := range l.Features {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, EncodeFeature(f))
	}
	for _, k := range l.Keys {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	for _, v := range l.Values {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, EncodeValue(v))
	}
	if l.Extent != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Extent))
	}
	return b
}

func EncodeFeature(f Feature) []byte {
	var b []byte
	if f.ID != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, *f.ID)
	}
	if len(f.Tags) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, packed(f.Tags))
	}
	if f.Type != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, f.Type)
	}
	if len(f.Geometry) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, packed(f.Geometry))
	}
	return b
}

func EncodeValue(v Value) []byte {
	var b []byte
	switch v.Kind {
	case 1:
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, v.String)
	case 2:
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(float32(v.Float)))
	case 3:
		b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.Float))
	case 4:
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.Int))
	case 5:
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, v.Uint)
	case 6:
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int))
	case 7:
		b = protowire.AppendTag(b, 7, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(v.Bool))
	}
	return b
}

func packed(vs []uint32) []byte {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

// RoadLayer is a "transportation" layer with one line feature per class value.
func RoadLayer(classes ...string) Layer {
	l := Layer{Name: "transportation", Extent: 4096, Version: 2, Keys: []string{"class"}}
	for i, c := range classes {
		l.Values = append(l.Values, String(c))
		l.Features = append(l.Features, Feature{
			Tags:     []uint32{0, uint32(i)},
			Type:     2,
			Geometry: LineGeometry([2]int32{0, int32(i) * 100}, [2]int32{4096, int32(i) * 100}),
		})
	}
	return l
}

func U64(v uint64) *uint64 { return &v }
