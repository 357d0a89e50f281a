package ubundle

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/ucompress"
	"prefab-bundler/ubundle/ufile"
	"prefab-bundler/ubundle/ugraph"
	"prefab-bundler/ubundle/uheader"
	"prefab-bundler/ubundle/uobject"
)

var (
	ErrInvalidSignature = uheader.ErrInvalidSignature
	ErrNoPrefab         = errors.New("ubundle: bundle has no prefab container entry")
)

func IsUnityFS(bs []byte) bool {
	return uheader.IsValidSignature(bs)
}

// Decode reads a bundle: the envelope, the block info, every data block and every node.
// Serialized file nodes are decoded into object arenas.
func Decode(bs []byte) (*Bundle, error) {
	reader := ubytes.NewBigEndianReader(bs)
	header, err := uheader.DecodeHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}
	if header.Size > int64(len(bs)) {
		return nil, errors.Errorf("Decode error: header claims %d bytes, got %d", header.Size, len(bs))
	}

	infoStart := reader.Position()
	if header.Flags&uheader.FlagBlocksInfoAtTheEnd != 0 {
		infoStart = int(header.Size) - int(header.CompressedBlocksInfoSize)
	}
	infoEnd := infoStart + int(header.CompressedBlocksInfoSize)
	if infoStart < reader.Position() || infoEnd > len(bs) {
		return nil, errors.Errorf("Decode error: block info [%d, %d) is out of bounds", infoStart, infoEnd)
	}
	infoBytes, err := ucompress.Decompress(
		bs[infoStart:infoEnd],
		ucompress.TypeFromFlags(header.Flags),
		int(header.UncompressedBlocksInfoSize),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error decompressing the block info")
	}
	info, err := uheader.DecodeBlocksInfo(infoBytes)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}

	dataStart := reader.Position()
	if header.Flags&uheader.FlagBlocksInfoAtTheEnd == 0 {
		dataStart = infoEnd
	}
	if header.Flags&uheader.FlagBlockInfoNeedPaddingAtStart != 0 {
		dataStart = ds.NearestDivisibleByM(dataStart, uheader.HeaderAlignment)
	}
	data, err := decodeBlocks(bs, dataStart, info.Blocks)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}

	nodes := make([]Node, 0, len(info.Nodes))
	for _, n := range info.Nodes {
		// compared as a remainder so offset + size cannot overflow
		if n.Offset < 0 || n.Size < 0 || n.Offset > int64(len(data)) || n.Size > int64(len(data))-n.Offset {
			return nil, errors.Errorf("Decode error: node %q at %d with size %d exceeds %d bytes", n.Path, n.Offset, n.Size, len(data))
		}
		node := Node{Node: n, Data: data[n.Offset : n.Offset+n.Size]}
		if n.Flags&uheader.NodeFlagSerializedFile != 0 {
			node.File, err = ufile.Decode(node.Data)
			if err != nil {
				return nil, errors.Wrapf(err, "Decode error for node %q", n.Path)
			}
		}
		nodes = append(nodes, node)
	}

	return &Bundle{
		Header:     *header,
		BlocksInfo: *info,
		Nodes:      nodes,
	}, nil
}

// decodeBlocks decompresses the storage blocks laid out back to back from start and joins them.
func decodeBlocks(bs []byte, start int, blocks []uheader.StorageBlock) ([]byte, error) {
	buf := bytes.Buffer{}
	offset := start
	for i, block := range blocks {
		end := offset + int(block.CompressedSize)
		if end > len(bs) {
			return nil, errors.Errorf("decodeBlocks error: block %d spans [%d, %d) of %d bytes", i, offset, end, len(bs))
		}
		decompressed, err := ucompress.Decompress(
			bs[offset:end],
			ucompress.TypeFromFlags(uint32(block.Flags)),
			int(block.UncompressedSize),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "decodeBlocks error for block %d", i)
		}
		buf.Write(decompressed)
		offset = end
	}
	return buf.Bytes(), nil
}

// SerializedFile returns the first serialized file node, which is the only one Build writes.
func (b *Bundle) SerializedFile() (*ufile.File, error) {
	for _, n := range b.Nodes {
		if n.File != nil {
			return n.File, nil
		}
	}
	return nil, errors.New("SerializedFile error: bundle has no serialized file node")
}

func (b *Bundle) AssetBundle() (*uobject.AssetBundle, error) {
	file, err := b.SerializedFile()
	if err != nil {
		return nil, errors.Wrap(err, "AssetBundle error")
	}
	for _, o := range file.Arena.Objects() {
		if bundle, ok := o.(*uobject.AssetBundle); ok {
			return bundle, nil
		}
	}
	return nil, errors.New("AssetBundle error: no AssetBundle object")
}

// Asset looks up a container entry by path and returns the object it points at.
func (b *Bundle) Asset(path string) (uobject.Object, error) {
	manifest, err := b.AssetBundle()
	if err != nil {
		return nil, errors.Wrap(err, "Asset error")
	}
	info, ok := manifest.ContainerMap().Get(path)
	if !ok {
		return nil, errors.Errorf("Asset error: no container entry %q", path)
	}
	target := info.Asset.Target()
	if target == nil {
		return nil, errors.Errorf("Asset error: entry %q points outside this file", path)
	}
	return target, nil
}

// Prefab returns the container path of the first prefab entry and its root GameObject.
func (b *Bundle) Prefab() (string, *uobject.GameObject, error) {
	manifest, err := b.AssetBundle()
	if err != nil {
		return "", nil, errors.Wrap(err, "Prefab error")
	}
	for _, path := range manifest.ContainerMap().Keys() {
		if !strings.HasSuffix(path, ugraph.ContainerPathSuffix) {
			continue
		}
		asset, err := b.Asset(path)
		if err != nil {
			continue
		}
		if root, ok := asset.(*uobject.GameObject); ok {
			return path, root, nil
		}
	}
	return "", nil, errors.Wrap(ErrNoPrefab, "Prefab error")
}
