package ubytes

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadInt32(t *testing.T) {
	reader := NewLittleEndianReader(
		[]byte{
			3, 1, 4, 3,
			12, 34, 56, 78,
		},
	)

	resultInt1, err := reader.ReadInt32()
	assert.NoError(t, err)
	assert.Equal(t, int32(50594051), resultInt1)

	resultInt2, err := reader.ReadInt32()
	assert.NoError(t, err)
	assert.Equal(t, int32(1312301580), resultInt2)

	_, err = reader.ReadInt32()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReader_ReadsWhatWriterWrote(t *testing.T) {
	w := NewBigEndianWriter()
	w.WriteCString("2019.4.24f1")
	w.WriteInt64(-42)
	w.WriteAlignedString("abc")
	w.WriteFloat64(0.5)
	w.WriteBool(true)

	r := NewBigEndianReader(w.Bytes())
	s, err := r.ReadCString()
	require.NoError(t, err)
	assert.Equal(t, "2019.4.24f1", s)

	i, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i)

	s, err = r.ReadAlignedString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	f, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_ReadCString_Unterminated(t *testing.T) {
	r := NewBigEndianReader([]byte("UnityFS"))
	_, err := r.ReadCString()
	assert.Error(t, err)
}

func TestReader_Align(t *testing.T) {
	r := NewLittleEndianReader(make([]byte, 6))
	_, err := r.ReadUint8()
	require.NoError(t, err)
	require.NoError(t, r.Align(4))
	assert.Equal(t, 4, r.Position())
	assert.Error(t, r.Align(8))
}

func TestReader_RejectsImpossibleLengths(t *testing.T) {
	reader := NewLittleEndianReader([]byte{1, 2, 3})
	for _, n := range []int{-1, 4, 1 << 30} {
		assert.NotPanics(t, func() {
			_, err := reader.ReadBytes(n)
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "n = %d", n)
		})
	}
	assert.Equal(t, 0, reader.Position())

	reader = NewLittleEndianReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 'a', 'b', 'c', 'd'})
	assert.NotPanics(t, func() {
		_, err := reader.ReadAlignedString()
		assert.Error(t, err)
	})
}
