package mvt

import (
	"strconv"
)

// Value is one entry of a layer value table. It is a closed sum type: exactly one of
// StringValue, FloatValue, DoubleValue, IntValue, UintValue, SintValue, BoolValue or NoValue.
type Value interface {
	isValue()
	String() string
}

// NoValue is a Value message without any populated variant (unknown value type). It is treated
// as absent when resolving tags.
type NoValue struct{}

type StringValue string

type FloatValue float32

type DoubleValue float64

type IntValue int64

type UintValue uint64

// SintValue is a zig-zag encoded signed integer on the wire.
type SintValue int64

type BoolValue bool

func (NoValue) isValue()     {}
func (StringValue) isValue() {}
func (FloatValue) isValue()  {}
func (DoubleValue) isValue() {}
func (IntValue) isValue()    {}
func (UintValue) isValue()   {}
func (SintValue) isValue()   {}
func (BoolValue) isValue()   {}

func (NoValue) String() string       { return "" }
func (v StringValue) String() string { return string(v) }
func (v FloatValue) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v DoubleValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v IntValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v UintValue) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v SintValue) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }

// IsAbsent reports whether v carries no payload.
func IsAbsent(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NoValue)
	return ok
}

// AsString returns the payload of a string value. Other kinds are not converted.
func AsString(v Value) (string, bool) {
	s, ok := v.(StringValue)
	return string(s), ok
}
