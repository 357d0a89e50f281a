// Package uheader reads and writes the big-endian UnityFS envelope: the file header and the
// block-info section that lists storage blocks and the directory of nodes inside them.
package uheader

import (
	"prefab-bundler/ubundle/uclass"
)

type (
	Header struct {
		Signature                  string `json:"signature"`
		Version                    uint32 `json:"version"`
		PlayerVersion              string `json:"player_version"`
		EngineVersion              string `json:"engine_version"`
		Size                       int64  `json:"size"`
		CompressedBlocksInfoSize   uint32 `json:"compressed_blocks_info_size"`
		UncompressedBlocksInfoSize uint32 `json:"uncompressed_blocks_info_size"`
		Flags                      uint32 `json:"flags"`
	}

	// StorageBlock is packed as-is: 10 bytes big-endian.
	StorageBlock struct {
		UncompressedSize uint32 `json:"uncompressed_size"`
		CompressedSize   uint32 `json:"compressed_size"`
		Flags            uint16 `json:"flags"`
	}

	Node struct {
		Offset int64  `json:"offset"`
		Size   int64  `json:"size"`
		Flags  uint32 `json:"flags"`
		Path   string `json:"path"`
	}

	BlocksInfo struct {
		// Hash is written as zeroes; nothing computes or checks it.
		Hash   uclass.Hash128 `json:"hash"`
		Blocks []StorageBlock `json:"blocks"`
		Nodes  []Node         `json:"nodes"`
	}
)

const (
	Signature            = "UnityFS"
	FormatVersion        = 7
	DefaultPlayerVersion = "5.x.x"
	DefaultEngineVersion = "2019.4.24f1"

	FlagBlocksAndDirectoryInfoCombined = 0x40
	FlagBlocksInfoAtTheEnd             = 0x80
	FlagOldWebPluginCompatibility      = 0x100
	FlagBlockInfoNeedPaddingAtStart    = 0x200

	NodeFlagSerializedFile = 0x4

	// HeaderAlignment applies after the header from format version 7 on.
	HeaderAlignment         = 16
	DefaultStorageBlockSize = 10
)

var SignatureBytes = append([]byte(Signature), 0)
