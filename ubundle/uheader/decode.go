package uheader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"
	"prefab-bundler/ubundle/ubytes"
)

var ErrInvalidSignature = errors.New("uheader: not a UnityFS file")

func IsValidSignature(bs []byte) bool {
	return bytes.HasPrefix(bs, SignatureBytes)
}

// DecodeHeader reads the header and, for version 7 and later, skips the alignment padding.
func DecodeHeader(reader *ubytes.Reader) (*Header, error) {
	header := Header{}
	signature, err := reader.ReadCString()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeHeader error reading signature")
	}
	if signature != Signature {
		return nil, errors.Wrapf(ErrInvalidSignature, "DecodeHeader error: got signature %q", signature)
	}
	header.Signature = signature

	fields := []struct {
		name string
		read func() error
	}{
		{"version", func() (err error) { header.Version, err = reader.ReadUint32(); return }},
		{"player_version", func() (err error) { header.PlayerVersion, err = reader.ReadCString(); return }},
		{"engine_version", func() (err error) { header.EngineVersion, err = reader.ReadCString(); return }},
		{"size", func() (err error) { header.Size, err = reader.ReadInt64(); return }},
		{"compressed_blocks_info_size", func() (err error) { header.CompressedBlocksInfoSize, err = reader.ReadUint32(); return }},
		{"uncompressed_blocks_info_size", func() (err error) { header.UncompressedBlocksInfoSize, err = reader.ReadUint32(); return }},
		{"flags", func() (err error) { header.Flags, err = reader.ReadUint32(); return }},
	}
	for _, field := range fields {
		if err := field.read(); err != nil {
			return nil, errors.Wrapf(err, "DecodeHeader error reading %q", field.name)
		}
	}

	if header.Version >= 7 {
		if err := reader.Align(HeaderAlignment); err != nil {
			return nil, errors.Wrap(err, "DecodeHeader error skipping alignment")
		}
	}
	return &header, nil
}

func DecodeBlocksInfo(bs []byte) (*BlocksInfo, error) {
	reader := ubytes.NewBigEndianReader(bs)
	info := BlocksInfo{}

	hash, err := reader.ReadBytes(len(info.Hash))
	if err != nil {
		return nil, errors.Wrap(err, "DecodeBlocksInfo error reading hash")
	}
	copy(info.Hash[:], hash)

	numBlocks, err := readCount(reader, "blocks", DefaultStorageBlockSize)
	if err != nil {
		return nil, err
	}
	info.Blocks = make([]StorageBlock, numBlocks)
	for i := range info.Blocks {
		packed, err := reader.ReadBytes(DefaultStorageBlockSize)
		if err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error reading block %d", i)
		}
		if err := restruct.Unpack(packed, binary.BigEndian, &info.Blocks[i]); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error unpacking block %d", i)
		}
	}

	// offset, size, flags and at least the path terminator
	numNodes, err := readCount(reader, "nodes", 8+8+4+1)
	if err != nil {
		return nil, err
	}
	info.Nodes = make([]Node, numNodes)
	for i := range info.Nodes {
		node := &info.Nodes[i]
		if node.Offset, err = reader.ReadInt64(); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error reading offset of node %d", i)
		}
		if node.Size, err = reader.ReadInt64(); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error reading size of node %d", i)
		}
		if node.Flags, err = reader.ReadUint32(); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error reading flags of node %d", i)
		}
		if node.Path, err = reader.ReadCString(); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlocksInfo error reading path of node %d", i)
		}
	}
	return &info, nil
}

func readCount(reader *ubytes.Reader, what string, minElementSize int) (int, error) {
	n, err := reader.ReadInt32()
	if err != nil {
		return 0, errors.Wrapf(err, "DecodeBlocksInfo error reading %s count", what)
	}
	if n < 0 || int(n) > reader.Remaining()/minElementSize {
		msg := fmt.Sprintf("DecodeBlocksInfo error: implausible %s count %d", what, n)
		return 0, errors.New(msg)
	}
	return int(n), nil
}
