package pbf_test

import (
	"math"
	"testing"

	"lintang/racemap/pkg/pbf"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestReadVarint(t *testing.T) {
	t.Run("known encodings", func(t *testing.T) {
		cases := []struct {
			in   []byte
			want uint64
		}{
			{[]byte{0x00}, 0},
			{[]byte{0x01}, 1},
			{[]byte{0x7f}, 127},
			{[]byte{0x80, 0x01}, 128},
			{[]byte{0xac, 0x02}, 300},
			{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, math.MaxUint32},
		}
		for _, c := range cases {
			r := pbf.NewReader(c.in)
			v, err := r.ReadVarint()
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
			assert.True(t, r.EOF())
		}
	})

	t.Run("re-encoding reproduces the bytes for 32 bit values", func(t *testing.T) {
		values := []uint64{0, 1, 2, 127, 128, 255, 256, 16383, 16384, 2097151, 2097152, 268435455, 268435456, math.MaxUint32}
		for v := uint64(1); v <= math.MaxUint32; v = v*3 + 7 {
			values = append(values, v)
		}
		for _, v := range values {
			enc := protowire.AppendVarint(nil, v)
			r := pbf.NewReader(enc)
			got, err := r.ReadVarint()
			require.NoError(t, err)
			assert.Equal(t, enc, protowire.AppendVarint(nil, got))
			assert.Equal(t, len(enc), r.Pos())
		}
	})

	t.Run("missing terminating byte is truncated input", func(t *testing.T) {
		r := pbf.NewReader([]byte{0x80, 0x80})
		_, err := r.ReadVarint()
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))
	})

	t.Run("empty buffer is truncated input", func(t *testing.T) {
		_, err := pbf.NewReader(nil).ReadVarint()
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))
	})
}

func TestReadSignedZigZag(t *testing.T) {
	cases := []struct {
		raw  uint64
		want int64
	}{
		{0, 0}, {1, -1}, {2, 1}, {3, -2}, {4, 2}, {4294967294, 2147483647}, {4294967295, -2147483648},
	}
	for _, c := range cases {
		r := pbf.NewReader(protowire.AppendVarint(nil, c.raw))
		v, err := r.ReadSignedZigZag()
		require.NoError(t, err)
		assert.Equal(t, c.want, v)
		assert.Equal(t, int64(c.raw>>1)^-int64(c.raw&1), v)
	}
}

func TestReadFixed(t *testing.T) {
	t.Run("float32 and float64 little endian", func(t *testing.T) {
		buf := protowire.AppendFixed32(nil, math.Float32bits(1.5))
		buf = protowire.AppendFixed64(buf, math.Float64bits(-2.25))
		r := pbf.NewReader(buf)

		f, err := r.ReadFixedFloat32()
		require.NoError(t, err)
		assert.Equal(t, float32(1.5), f)

		d, err := r.ReadFixedFloat64()
		require.NoError(t, err)
		assert.Equal(t, -2.25, d)
		assert.True(t, r.EOF())
	})

	t.Run("insufficient bytes", func(t *testing.T) {
		_, err := pbf.NewReader([]byte{1, 2, 3}).ReadFixedFloat32()
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))

		_, err = pbf.NewReader([]byte{1, 2, 3, 4, 5, 6, 7}).ReadFixedFloat64()
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))
	})
}

func TestReadString(t *testing.T) {
	t.Run("utf8", func(t *testing.T) {
		r := pbf.NewReader(protowire.AppendString(nil, "jalan raya"))
		s, err := r.ReadLengthDelimitedString()
		require.NoError(t, err)
		assert.Equal(t, "jalan raya", s)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		r := pbf.NewReader(protowire.AppendBytes(nil, []byte{0xff, 0xfe}))
		_, err := r.ReadLengthDelimitedString()
		assert.True(t, errors.Is(err, pbf.ErrInvalidEncoding))
	})

	t.Run("length longer than buffer", func(t *testing.T) {
		r := pbf.NewReader([]byte{0x05, 'a', 'b'})
		_, err := r.ReadLengthDelimitedString()
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))
	})

	t.Run("raw bytes are not validated", func(t *testing.T) {
		r := pbf.NewReader([]byte{0xff, 0xfe})
		b, err := r.ReadBytes(2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xfe}, b)
	})
}

func TestReadBoundedMessage(t *testing.T) {
	t.Run("dispatches every field and lands on the boundary", func(t *testing.T) {
		var msg []byte
		msg = protowire.AppendTag(msg, 1, protowire.VarintType)
		msg = protowire.AppendVarint(msg, 42)
		msg = protowire.AppendTag(msg, 2, protowire.BytesType)
		msg = protowire.AppendString(msg, "abc")
		buf := protowire.AppendBytes(nil, msg)
		buf = append(buf, 0x08, 0x07) // trailing field outside the sub-message

		r := pbf.NewReader(buf)
		var gotInt uint64
		var gotStr string
		err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			switch num {
			case 1:
				v, err := r.ReadVarint()
				gotInt = v
				return err
			case 2:
				s, err := r.ReadLengthDelimitedString()
				gotStr = s
				return err
			}
			return r.Skip(typ)
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(42), gotInt)
		assert.Equal(t, "abc", gotStr)
		assert.Equal(t, len(msg)+1, r.Pos())
		assert.Equal(t, 2, r.Remaining())
	})

	t.Run("field value overrunning the boundary is malformed", func(t *testing.T) {
		// sub-message declares 2 bytes but its string field claims 3
		buf := []byte{0x02, 0x12, 0x03, 'a', 'b', 'c'}
		r := pbf.NewReader(buf)
		err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			_, err := r.ReadLengthDelimitedString()
			return err
		})
		assert.True(t, errors.Is(err, pbf.ErrMalformedTile))
	})

	t.Run("varint crossing the boundary is malformed", func(t *testing.T) {
		buf := []byte{0x02, 0x08, 0x80, 0x01}
		r := pbf.NewReader(buf)
		err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			_, err := r.ReadVarint()
			return err
		})
		assert.True(t, errors.Is(err, pbf.ErrMalformedTile))
	})

	t.Run("length past the buffer is truncated", func(t *testing.T) {
		r := pbf.NewReader([]byte{0x0a, 0x08})
		err := r.ReadMessage(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			return r.Skip(typ)
		})
		assert.True(t, errors.Is(err, pbf.ErrTruncatedInput))
	})

	t.Run("field reader that consumes nothing past tags still lands exactly", func(t *testing.T) {
		var msg []byte
		msg = protowire.AppendTag(msg, 9, protowire.Fixed32Type)
		msg = protowire.AppendFixed32(msg, 1)
		msg = protowire.AppendTag(msg, 10, protowire.Fixed64Type)
		msg = protowire.AppendFixed64(msg, 2)
		r := pbf.NewReader(msg)
		err := r.ReadFields(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			return r.Skip(typ)
		})
		require.NoError(t, err)
		assert.True(t, r.EOF())
	})

	t.Run("group wire type is malformed", func(t *testing.T) {
		r := pbf.NewReader(protowire.AppendTag(nil, 1, protowire.StartGroupType))
		err := r.ReadFields(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			return r.Skip(typ)
		})
		assert.True(t, errors.Is(err, pbf.ErrMalformedTile))
	})

	t.Run("field number zero is malformed", func(t *testing.T) {
		r := pbf.NewReader([]byte{0x00, 0x01})
		err := r.ReadFields(func(num protowire.Number, typ protowire.Type, r *pbf.Reader) error {
			return r.Skip(typ)
		})
		assert.True(t, errors.Is(err, pbf.ErrMalformedTile))
	})
}

func TestReadPackedVarints(t *testing.T) {
	t.Run("packed", func(t *testing.T) {
		var packed []byte
		for _, v := range []uint64{9, 300, 0} {
			packed = protowire.AppendVarint(packed, v)
		}
		r := pbf.NewReader(protowire.AppendBytes(nil, packed))
		got, err := r.ReadPackedVarints(protowire.BytesType, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint64{9, 300, 0}, got)
	})

	t.Run("unpacked appends one value", func(t *testing.T) {
		r := pbf.NewReader(protowire.AppendVarint(nil, 5))
		got, err := r.ReadPackedVarints(protowire.VarintType, []uint64{1})
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 5}, got)
	})

	t.Run("wrong wire type", func(t *testing.T) {
		r := pbf.NewReader([]byte{0, 0, 0, 0})
		_, err := r.ReadPackedVarints(protowire.Fixed32Type, nil)
		assert.True(t, errors.Is(err, pbf.ErrMalformedTile))
	})
}
