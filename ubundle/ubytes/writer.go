package ubytes

import (
	"encoding/binary"
	"math"

	"prefab-bundler/ds"
)

func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{order: order}
}

func NewBigEndianWriter() *Writer {
	return NewWriter(binary.BigEndian)
}

func NewLittleEndianWriter() *Writer {
	return NewWriter(binary.LittleEndian)
}

func (w *Writer) Order() binary.ByteOrder {
	return w.order
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the written bytes. The slice aliases the writer's buffer until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteBytes(bs []byte) {
	w.buf.Write(bs)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

func (w *Writer) WriteUint16(v uint16) {
	bs := make([]byte, 2)
	w.order.PutUint16(bs, v)
	w.buf.Write(bs)
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	bs := make([]byte, 4)
	w.order.PutUint32(bs, v)
	w.buf.Write(bs)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	bs := make([]byte, 8)
	w.order.PutUint64(bs, v)
	w.buf.Write(bs)
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteCString writes the raw UTF-8 bytes followed by a zero byte. No padding.
func (w *Writer) WriteCString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteAlignedString writes an int32 length prefix, the raw bytes, then zero padding
// up to the next 4-byte boundary.
func (w *Writer) WriteAlignedString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf.WriteString(s)
	w.Align(DefaultAlignment)
}

// Align pads with zeroes until Len is a multiple of m. Offsets are relative to the writer's start,
// so sections must themselves begin on an m-aligned absolute offset.
func (w *Writer) Align(m int) {
	padding := ds.PaddingToM(w.Len(), m)
	w.buf.Write(ds.Repeat(padding, byte(0)))
}
