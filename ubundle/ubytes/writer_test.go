package ubytes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_ByteOrder(t *testing.T) {
	big := NewBigEndianWriter()
	big.WriteUint32(0x01020304)
	big.WriteInt16(-2)
	assert.Equal(t, []byte{1, 2, 3, 4, 0xFF, 0xFE}, big.Bytes())

	little := NewLittleEndianWriter()
	little.WriteUint32(0x01020304)
	little.WriteInt16(-2)
	assert.Equal(t, []byte{4, 3, 2, 1, 0xFE, 0xFF}, little.Bytes())
}

func TestWriter_WriteCString(t *testing.T) {
	w := NewBigEndianWriter()
	w.WriteCString("UnityFS")
	assert.Equal(t, []byte("UnityFS\x00"), w.Bytes())

	w = NewBigEndianWriter()
	w.WriteCString("5.x.x")
	assert.Equal(t, []byte("5.x.x\x00"), w.Bytes())
	assert.Equal(t, 6, w.Len())
}

func TestWriter_WriteAlignedString(t *testing.T) {
	w := NewLittleEndianWriter()
	w.WriteAlignedString("object")
	assert.Equal(
		t,
		[]byte{6, 0, 0, 0, 'o', 'b', 'j', 'e', 'c', 't', 0, 0},
		w.Bytes(),
	)

	w = NewLittleEndianWriter()
	w.WriteAlignedString("")
	assert.Equal(t, []byte{0, 0, 0, 0}, w.Bytes())
}

func TestWriter_Align(t *testing.T) {
	w := NewLittleEndianWriter()
	w.WriteUint8(1)
	w.Align(4)
	assert.Equal(t, 4, w.Len())
	w.Align(4)
	assert.Equal(t, 4, w.Len())
	w.Align(16)
	assert.Equal(t, 16, w.Len())
}

func TestWriter_WriteFloat32(t *testing.T) {
	w := NewLittleEndianWriter()
	w.WriteFloat32(1)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3F}, w.Bytes())
}
