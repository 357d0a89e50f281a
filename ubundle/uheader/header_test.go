package uheader

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"prefab-bundler/ubundle/ubytes"
)

func createHeader() Header {
	return Header{
		Signature:                  Signature,
		Version:                    FormatVersion,
		PlayerVersion:              DefaultPlayerVersion,
		EngineVersion:              DefaultEngineVersion,
		Size:                       0x1234,
		CompressedBlocksInfoSize:   0x41,
		UncompressedBlocksInfoSize: 0x5B,
		Flags:                      2 | FlagBlocksAndDirectoryInfoCombined,
	}
}

func TestEncodeHeader(t *testing.T) {
	header := createHeader()
	bs := EncodeHeader(header)

	// "UnityFS\0" + version + "5.x.x\0" + "2019.4.24f1\0" + size + two block info sizes + flags
	unpadded := 8 + 4 + 6 + 12 + 8 + 4 + 4 + 4
	assert.Len(t, bs, 64)
	assert.Zero(t, len(bs)%HeaderAlignment)
	assert.GreaterOrEqual(t, len(bs), unpadded)
	assert.Equal(t, len(bs), EncodedHeaderSize(header))
	assert.True(t, IsValidSignature(bs))
	assert.Equal(t, uint32(FormatVersion), binary.BigEndian.Uint32(bs[8:12]))
	assert.Equal(t, uint64(0x1234), binary.BigEndian.Uint64(bs[30:38]))

	decoded, err := DecodeHeader(ubytes.NewBigEndianReader(bs))
	require.NoError(t, err)
	assert.Equal(t, header, *decoded)
}

func TestEncodeHeader_OldVersionIsNotPadded(t *testing.T) {
	header := createHeader()
	header.Version = 6
	assert.Len(t, EncodeHeader(header), 8+4+6+12+8+4+4+4)
}

func TestDecodeHeader_Rejects(t *testing.T) {
	bs := EncodeHeader(createHeader())

	wrong := append([]byte{}, bs...)
	copy(wrong, "UnityWeb")
	_, err := DecodeHeader(ubytes.NewBigEndianReader(wrong))
	assert.True(t, errors.Is(err, ErrInvalidSignature))
	assert.False(t, IsValidSignature(wrong))

	_, err = DecodeHeader(ubytes.NewBigEndianReader(bs[:20]))
	assert.Error(t, err)
}

func TestBlocksInfo_RoundTrip(t *testing.T) {
	info := BlocksInfo{
		Blocks: []StorageBlock{
			{UncompressedSize: 1000, CompressedSize: 300, Flags: 1},
		},
		Nodes: []Node{
			{Offset: 0, Size: 1000, Flags: NodeFlagSerializedFile, Path: "CAB-00112233445566778899aabbccddeeff"},
		},
	}
	bs, err := EncodeBlocksInfo(info)
	require.NoError(t, err)

	assert.Len(t, bs, 16+4+DefaultStorageBlockSize+4+8+8+4+len(info.Nodes[0].Path)+1)
	assert.Equal(t, make([]byte, 16), bs[:16])
	assert.Equal(t, []byte{0, 0, 0, 1}, bs[16:20])
	assert.Equal(t, []byte{0, 0, 0x03, 0xE8, 0, 0, 0x01, 0x2C, 0, 1}, bs[20:30])

	decoded, err := DecodeBlocksInfo(bs)
	require.NoError(t, err)
	assert.Equal(t, info, *decoded)
}

func TestDecodeBlocksInfo_Rejects(t *testing.T) {
	bs, err := EncodeBlocksInfo(BlocksInfo{
		Blocks: []StorageBlock{{UncompressedSize: 1, CompressedSize: 1}},
		Nodes:  []Node{{Path: "CAB-x"}},
	})
	require.NoError(t, err)

	_, err = DecodeBlocksInfo(bs[:len(bs)-1])
	assert.Error(t, err)

	huge := append([]byte{}, bs...)
	binary.BigEndian.PutUint32(huge[16:20], 1<<30)
	_, err = DecodeBlocksInfo(huge)
	assert.Error(t, err)
}
