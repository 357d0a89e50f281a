package ubundle

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"prefab-bundler/config"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/ucompress"
	"prefab-bundler/ubundle/ufile"
	"prefab-bundler/ubundle/ugraph"
	"prefab-bundler/ubundle/uheader"
)

// bundlesBuilt counts Build calls for the lifetime of the process. Each build takes the next
// value, so two bundles of the same prefab still get distinct internal names.
var bundlesBuilt atomic.Int64

func BundlesBuilt() int64 {
	return bundlesBuilt.Load()
}

// CABName derives the internal serialized file name from the prefab name and a build number.
func CABName(prefabName string, buildNumber int64) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s#%d", prefabName, buildNumber)))
	return CABNamePrefix + hex.EncodeToString(sum[:CABNameHexSize/2])
}

// Build finalizes the prefab and returns the complete bundle bytes.
// The prefab is frozen afterwards; a second Build of the same prefab fails.
func Build(prefab *ugraph.Prefab, profile config.Profile) ([]byte, error) {
	if err := profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "Build error")
	}
	compression, err := profile.CompressionType()
	if err != nil {
		return nil, errors.Wrap(err, "Build error")
	}
	opts, err := profile.FileOptions()
	if err != nil {
		return nil, errors.Wrap(err, "Build error")
	}

	cabName := CABName(prefab.Name, bundlesBuilt.Add(1))
	if _, err := prefab.Finalize(strings.ToLower(prefab.Name)); err != nil {
		return nil, errors.Wrap(err, "Build error")
	}
	serialized, err := ufile.Encode(prefab.Arena(), opts)
	if err != nil {
		return nil, errors.Wrap(err, "Build error")
	}

	blocks, storageBlocks, err := compressBlocks(serialized, compression)
	if err != nil {
		return nil, errors.Wrap(err, "Build error")
	}
	blocksInfo, err := uheader.EncodeBlocksInfo(uheader.BlocksInfo{
		Blocks: storageBlocks,
		Nodes: []uheader.Node{
			{
				Offset: 0,
				Size:   int64(len(serialized)),
				Flags:  uheader.NodeFlagSerializedFile,
				Path:   cabName,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "Build error")
	}
	compressedBlocksInfo, err := ucompress.CompressLZ4(blocksInfo)
	if err != nil {
		return nil, errors.Wrap(err, "Build error compressing the block info")
	}

	header := uheader.Header{
		Signature:                  uheader.Signature,
		Version:                    uheader.FormatVersion,
		PlayerVersion:              profile.PlayerVersion,
		EngineVersion:              profile.EngineVersion,
		CompressedBlocksInfoSize:   uint32(len(compressedBlocksInfo)),
		UncompressedBlocksInfoSize: uint32(len(blocksInfo)),
		Flags:                      uint32(ucompress.TypeLZ4) | uheader.FlagBlocksAndDirectoryInfoCombined,
	}
	// the size field is fixed width, so the header length does not depend on its value
	header.Size = int64(uheader.EncodedHeaderSize(header) + len(compressedBlocksInfo) + len(blocks))

	bs := make([]byte, 0, header.Size)
	bs = append(bs, uheader.EncodeHeader(header)...)
	bs = append(bs, compressedBlocksInfo...)
	bs = append(bs, blocks...)
	return bs, nil
}

// compressBlocks splits data into storage blocks and compresses each one. LZ4 data is cut into
// ChunkSize pieces so a reader can decompress it block by block; LZMA data stays one block.
func compressBlocks(data []byte, compression ucompress.Type) ([]byte, []uheader.StorageBlock, error) {
	chunks := [][]byte{data}
	if compression == ucompress.TypeLZ4 || compression == ucompress.TypeLZ4HC {
		chunks = ds.MakeChunks(data, ChunkSize)
	}

	compressed := make([]byte, 0, len(data))
	storageBlocks := make([]uheader.StorageBlock, 0, len(chunks))
	for i, chunk := range chunks {
		block, err := ucompress.Compress(chunk, compression)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "compressBlocks error for block %d", i)
		}
		compressed = append(compressed, block...)
		storageBlocks = append(storageBlocks, uheader.StorageBlock{
			UncompressedSize: uint32(len(chunk)),
			CompressedSize:   uint32(len(block)),
			Flags:            uint16(compression),
		})
	}
	return compressed, storageBlocks, nil
}
