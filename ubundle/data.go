// Package ubundle builds UnityFS bundles that carry a single prefab and reads them back.
//
// A bundle is a big-endian envelope: the UnityFS header, an LZ4 compressed block info section
// and one data block holding a single serialized file node. The node's serialized file lists
// the prefab's objects followed by the AssetBundle manifest that names the prefab.
package ubundle

import (
	"prefab-bundler/ubundle/ufile"
	"prefab-bundler/ubundle/uheader"
)

type (
	Node struct {
		uheader.Node
		// File is nil for nodes that are not serialized files.
		File *ufile.File `json:"file,omitempty"`
		Data []byte      `json:"-"`
	}

	Bundle struct {
		Header     uheader.Header     `json:"header"`
		BlocksInfo uheader.BlocksInfo `json:"blocks_info"`
		Nodes      []Node             `json:"nodes"`
	}
)

const (
	// CABNamePrefix starts every internal serialized file name; 16 hashed bytes in hex follow.
	CABNamePrefix  = "CAB-"
	CABNameHexSize = 32

	// ChunkSize is the uncompressed size of each LZ4 storage block.
	ChunkSize = 0x20000
)
