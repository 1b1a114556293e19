package pbf

import (
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrTruncatedInput buffer habis di tengah field.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrMalformedTile structural violation: message length mismatch, bad wire type, odd tag array, ...
	ErrMalformedTile = errors.New("malformed tile")
	// ErrInvalidEncoding string field is not valid utf-8
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// FieldFunc is called once per field inside a message. The reader is positioned right after
// the field tag; the callback must consume the field value (or call Skip).
type FieldFunc func(num protowire.Number, typ protowire.Type, r *Reader) error

// Reader is a read cursor over an immutable protobuf encoded buffer.
// end is the boundary of the message currently being read; reads never cross it.
type Reader struct {
	buf []byte
	pos int
	end int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, end: len(buf)}
}

// Pos returns the absolute cursor position in the buffer.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of bytes left before the current message boundary.
func (r *Reader) Remaining() int {
	return r.end - r.pos
}

func (r *Reader) EOF() bool {
	return r.pos >= r.end
}

// boundaryErr classifies a read that ran past r.end: past the end of the buffer it is truncated input,
// inside the buffer it overruns the enclosing message.
func (r *Reader) boundaryErr(want int) error {
	if r.pos+want > len(r.buf) {
		return errors.Wrapf(ErrTruncatedInput, "need %d bytes at offset %d, buffer has %d", want, r.pos, len(r.buf))
	}
	return errors.Wrapf(ErrMalformedTile, "field at offset %d overruns message boundary %d", r.pos, r.end)
}

func (r *Reader) consumeErr(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return r.boundaryErr(r.Remaining() + 1)
	}
	return errors.Wrapf(ErrMalformedTile, "offset %d: %v", r.pos, err)
}

// ReadVarint decodes a base-128 little-endian varint.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:r.end])
	if n < 0 {
		return 0, r.consumeErr(n)
	}
	r.pos += n
	return v, nil
}

// ReadSignedZigZag decodes a varint and un-zigzags it: (n >> 1) ^ -(n & 1).
func (r *Reader) ReadSignedZigZag() (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(v), nil
}

func (r *Reader) ReadFixedFloat32() (float32, error) {
	v, n := protowire.ConsumeFixed32(r.buf[r.pos:r.end])
	if n < 0 {
		return 0, r.boundaryErr(4)
	}
	r.pos += n
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadFixedFloat64() (float64, error) {
	v, n := protowire.ConsumeFixed64(r.buf[r.pos:r.end])
	if n < 0 {
		return 0, r.boundaryErr(8)
	}
	r.pos += n
	return math.Float64frombits(v), nil
}

// ReadLength reads the varint length prefix of a length-delimited field and checks it fits in the
// current message.
func (r *Reader) ReadLength() (int, error) {
	l, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	if l > uint64(r.Remaining()) {
		return 0, r.boundaryErr(int(min(l, math.MaxInt32)))
	}
	return int(l), nil
}

// ReadBytes returns the next n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.boundaryErr(n)
	}
	b := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadString returns the next n bytes as a utf-8 string.
func (r *Reader) ReadString(n int) (string, error) {
	start := r.pos
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.Wrapf(ErrInvalidEncoding, "string at offset %d", start)
	}
	return string(b), nil
}

// ReadLengthDelimitedString reads a length prefix followed by a utf-8 string.
func (r *Reader) ReadLengthDelimitedString() (string, error) {
	n, err := r.ReadLength()
	if err != nil {
		return "", err
	}
	return r.ReadString(n)
}

// ReadTag reads a field key: field number = varint >> 3, wire type = low 3 bits.
func (r *Reader) ReadTag() (protowire.Number, protowire.Type, error) {
	start := r.pos
	v, err := r.ReadVarint()
	if err != nil {
		return 0, 0, err
	}
	num, typ := protowire.DecodeTag(v)
	if num < protowire.MinValidNumber || num > protowire.MaxValidNumber {
		return 0, 0, errors.Wrapf(ErrMalformedTile, "invalid field number %d at offset %d", num, start)
	}
	return num, typ, nil
}

// Skip consumes the value of a field with the given wire type. Unknown fields are skipped this way.
func (r *Reader) Skip(typ protowire.Type) error {
	switch typ {
	case protowire.VarintType:
		_, err := r.ReadVarint()
		return err
	case protowire.Fixed32Type:
		_, err := r.ReadBytes(4)
		return err
	case protowire.Fixed64Type:
		_, err := r.ReadBytes(8)
		return err
	case protowire.BytesType:
		n, err := r.ReadLength()
		if err != nil {
			return err
		}
		_, err = r.ReadBytes(n)
		return err
	default:
		return errors.Wrapf(ErrMalformedTile, "unsupported wire type %d at offset %d", typ, r.pos)
	}
}

// ReadBoundedMessage reads fields until exactly length bytes have been consumed. Landing anywhere
// other than the boundary is a decode error.
func (r *Reader) ReadBoundedMessage(length int, fn FieldFunc) error {
	if length < 0 || length > r.Remaining() {
		return r.boundaryErr(length)
	}
	parentEnd := r.end
	r.end = r.pos + length
	defer func() { r.end = parentEnd }()

	for r.pos < r.end {
		num, typ, err := r.ReadTag()
		if err != nil {
			return err
		}
		if err := fn(num, typ, r); err != nil {
			return err
		}
	}
	if r.pos != r.end {
		return errors.Wrapf(ErrMalformedTile, "message ended at offset %d, expected %d", r.pos, r.end)
	}
	return nil
}

// ReadMessage reads a length prefix then the bounded sub-message.
func (r *Reader) ReadMessage(fn FieldFunc) error {
	n, err := r.ReadLength()
	if err != nil {
		return err
	}
	return r.ReadBoundedMessage(n, fn)
}

// ReadFields reads every field up to the end of the buffer (top-level message).
func (r *Reader) ReadFields(fn FieldFunc) error {
	return r.ReadBoundedMessage(r.Remaining(), fn)
}

// ReadPackedVarints reads a repeated varint field in either packed (length-delimited) or unpacked
// (single varint) form and appends the values to dst.
func (r *Reader) ReadPackedVarints(typ protowire.Type, dst []uint64) ([]uint64, error) {
	switch typ {
	case protowire.VarintType:
		v, err := r.ReadVarint()
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	case protowire.BytesType:
		n, err := r.ReadLength()
		if err != nil {
			return dst, err
		}
		parentEnd := r.end
		r.end = r.pos + n
		for r.pos < r.end {
			v, err := r.ReadVarint()
			if err != nil {
				r.end = parentEnd
				return dst, err
			}
			dst = append(dst, v)
		}
		r.end = parentEnd
		return dst, nil
	default:
		return dst, errors.Wrapf(ErrMalformedTile, "wire type %d for packed varints", typ)
	}
}

// ExpectType fails with ErrMalformedTile when a known field carries the wrong wire type.
func ExpectType(num protowire.Number, got, want protowire.Type) error {
	if got != want {
		return errors.Wrapf(ErrMalformedTile, "field %d: wire type %d, want %d", num, got, want)
	}
	return nil
}
