package uheader

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"
	"prefab-bundler/ubundle/ubytes"
)

// EncodeHeader writes the header, padded to HeaderAlignment for version 7 and later.
func EncodeHeader(header Header) []byte {
	w := ubytes.NewBigEndianWriter()
	w.WriteCString(header.Signature)
	w.WriteUint32(header.Version)
	w.WriteCString(header.PlayerVersion)
	w.WriteCString(header.EngineVersion)
	w.WriteInt64(header.Size)
	w.WriteUint32(header.CompressedBlocksInfoSize)
	w.WriteUint32(header.UncompressedBlocksInfoSize)
	w.WriteUint32(header.Flags)
	if header.Version >= 7 {
		w.Align(HeaderAlignment)
	}
	return w.Bytes()
}

// EncodedHeaderSize is the length EncodeHeader will produce; it does not depend on the size fields.
func EncodedHeaderSize(header Header) int {
	return len(EncodeHeader(header))
}

func EncodeBlocksInfo(info BlocksInfo) ([]byte, error) {
	w := ubytes.NewBigEndianWriter()
	w.WriteBytes(info.Hash[:])

	w.WriteInt32(int32(len(info.Blocks)))
	for i := range info.Blocks {
		packed, err := restruct.Pack(binary.BigEndian, &info.Blocks[i])
		if err != nil {
			return nil, errors.Wrapf(err, "EncodeBlocksInfo error packing block %d", i)
		}
		w.WriteBytes(packed)
	}

	w.WriteInt32(int32(len(info.Nodes)))
	for _, node := range info.Nodes {
		w.WriteInt64(node.Offset)
		w.WriteInt64(node.Size)
		w.WriteUint32(node.Flags)
		w.WriteCString(node.Path)
	}
	return w.Bytes(), nil
}
