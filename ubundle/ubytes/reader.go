package ubytes

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"prefab-bundler/ds"
)

func NewReader(bs []byte, order binary.ByteOrder) *Reader {
	return &Reader{
		Reader: *bytes.NewReader(bs),
		order:  order,
	}
}

func NewBigEndianReader(bs []byte) *Reader {
	return NewReader(bs, binary.BigEndian)
}

func NewLittleEndianReader(bs []byte) *Reader {
	return NewReader(bs, binary.LittleEndian)
}

func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

func (r *Reader) Position() int {
	return int(r.Size()) - r.Len()
}

func (r *Reader) Remaining() int {
	return r.Len()
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	// lengths come from the data itself, so they are checked before anything is allocated
	if n < 0 || n > r.Len() {
		err := errors.Wrapf(
			io.ErrUnexpectedEOF,
			"ReadBytes error reading %d bytes at position %d with %d remaining",
			n, r.Position(), r.Len(),
		)
		return nil, err
	}
	bs := make([]byte, n)
	// a zero-length read at the end of the data is not an EOF
	if n == 0 {
		return bs, nil
	}
	if _, err := io.ReadFull(r, bs); err != nil {
		return nil, errors.Wrap(err, "ReadBytes error")
	}
	return bs, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	bs, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	bs, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(bs), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	bs, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(bs), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	bs, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(bs), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadCString reads up to and including the next zero byte and returns the bytes before it.
func (r *Reader) ReadCString() (string, error) {
	bs := make([]byte, 0, 16)
	for {
		b, err := r.ReadByte()
		if err != nil {
			err := errors.Wrapf(io.ErrUnexpectedEOF, "ReadCString error: no terminator after %q", string(bs))
			return "", err
		}
		if b == 0 {
			return string(bs), nil
		}
		bs = append(bs, b)
	}
}

func (r *Reader) ReadAlignedString() (string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", errors.Wrap(err, "ReadAlignedString error reading length")
	}
	bs, err := r.ReadBytes(int(n))
	if err != nil {
		return "", errors.Wrap(err, "ReadAlignedString error reading content")
	}
	if err := r.Align(DefaultAlignment); err != nil {
		return "", errors.Wrap(err, "ReadAlignedString error")
	}
	return string(bs), nil
}

// Align skips forward to the next multiple of m, relative to the start of the reader.
func (r *Reader) Align(m int) error {
	target := ds.NearestDivisibleByM(r.Position(), m)
	if target > int(r.Size()) {
		err := errors.Wrapf(
			io.ErrUnexpectedEOF,
			"Align error: aligning position %d to %d passes the end at %d",
			r.Position(), m, r.Size(),
		)
		return err
	}
	_, err := r.Seek(int64(target), io.SeekStart)
	return err
}
