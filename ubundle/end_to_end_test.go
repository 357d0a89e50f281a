package ubundle

import (
	"encoding/json"
	"math"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"prefab-bundler/config"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/ucompress"
	"prefab-bundler/ubundle/ugraph"
	"prefab-bundler/ubundle/uheader"
	"prefab-bundler/ubundle/uobject"
)

type EndToEndTestSuite struct {
	BundleBytes []byte
	Bundle      *Bundle
	R           *require.Assertions
	suite.Suite
}

func (suite *EndToEndTestSuite) build(prefab *ugraph.Prefab, profile config.Profile) ([]byte, *Bundle) {
	bs, err := Build(prefab, profile)
	suite.R.NoError(err)
	bundle, err := Decode(bs)
	suite.R.NoError(err)
	return bs, bundle
}

func (suite *EndToEndTestSuite) SetupSuite() {
	suite.R = suite.Require()
	suite.BundleBytes, suite.Bundle = suite.build(ugraph.NewPrefab("object"), config.Default())
}

func (suite *EndToEndTestSuite) TestHeader() {
	header := suite.Bundle.Header
	suite.True(IsUnityFS(suite.BundleBytes))
	suite.Equal(uheader.Signature, header.Signature)
	suite.Equal(uint32(uheader.FormatVersion), header.Version)
	suite.Equal("5.x.x", header.PlayerVersion)
	suite.Equal("2019.4.24f1", header.EngineVersion)
	suite.Equal(uint32(2|0x40), header.Flags)
}

func (suite *EndToEndTestSuite) TestSizeFieldsMatchLengths() {
	header := suite.Bundle.Header
	bs := suite.BundleBytes
	suite.Equal(int64(len(bs)), header.Size)

	headerSize := uheader.EncodedHeaderSize(header)
	infoEnd := headerSize + int(header.CompressedBlocksInfoSize)
	info, err := ucompress.DecompressLZ4(bs[headerSize:infoEnd], int(header.UncompressedBlocksInfoSize))
	suite.R.NoError(err)
	suite.Len(info, int(header.UncompressedBlocksInfoSize))

	blocks := suite.Bundle.BlocksInfo.Blocks
	suite.R.Len(blocks, 1)
	suite.Equal(len(bs), infoEnd+int(blocks[0].CompressedSize))
	suite.Equal(uint16(ucompress.TypeLZMA), blocks[0].Flags)

	// LZMA blocks open with the lc/lp/pb byte and the 2^23 dictionary size
	suite.Equal([]byte{0x5D, 0x00, 0x00, 0x80, 0x00}, bs[infoEnd:infoEnd+5])

	nodes := suite.Bundle.Nodes
	suite.R.Len(nodes, 1)
	suite.Equal(int64(blocks[0].UncompressedSize), nodes[0].Size)
	suite.Equal(uint32(uheader.NodeFlagSerializedFile), nodes[0].Flags)
	suite.Regexp(regexp.MustCompile(`^CAB-[0-9a-f]{32}$`), nodes[0].Path)
}

func (suite *EndToEndTestSuite) TestDeclaredObjectSizesMatchBytes() {
	node := suite.Bundle.Nodes[0]
	file := node.File
	suite.R.NotNil(file)
	suite.Equal(int(file.Header.FileSize), len(node.Data))

	for i, info := range file.Metadata.Objects {
		o, err := file.Arena.At(uobject.Handle(i))
		suite.R.NoError(err)
		w := ubytes.NewLittleEndianWriter()
		suite.R.NoError(o.Serialize(w, file.Arena))
		start := file.Header.DataOffset + info.ByteStart
		suite.Equal(node.Data[start:start+info.ByteSize], w.Bytes())
	}
}

func (suite *EndToEndTestSuite) TestPrefab() {
	manifest, err := suite.Bundle.AssetBundle()
	suite.R.NoError(err)
	suite.Len(manifest.PreloadTable, 2)
	suite.R.Len(manifest.Container, 1)
	suite.Equal("assets/object.prefab", manifest.Container[0].Path)
	suite.Equal(int32(0), manifest.Container[0].Info.PreloadIndex)
	suite.Equal(int32(2), manifest.Container[0].Info.PreloadSize)
	suite.True(manifest.MainAsset.Asset.IsNull())

	path, root, err := suite.Bundle.Prefab()
	suite.R.NoError(err)
	suite.Equal("assets/object.prefab", path)
	suite.Equal("object", root.Name)
	suite.R.Len(root.Components, 1)
	transform, ok := root.Components[0].Component.Target().(*uobject.Transform)
	suite.R.True(ok)
	suite.Empty(transform.Children)
	suite.True(transform.Father.IsNull())
	suite.Same(root, transform.GameObject.Target())

	asset, err := suite.Bundle.Asset("assets/object.prefab")
	suite.R.NoError(err)
	suite.Same(root, asset)
	_, err = suite.Bundle.Asset("assets/missing.prefab")
	suite.Error(err)
}

func (suite *EndToEndTestSuite) TestPreloadTableRoundTrip() {
	file, err := suite.Bundle.SerializedFile()
	suite.R.NoError(err)
	manifest, err := suite.Bundle.AssetBundle()
	suite.R.NoError(err)

	for i, r := range manifest.PreloadTable {
		o, err := file.Arena.Get(r.PPtr())
		suite.R.NoError(err)
		suite.Equal(r.PPtr(), file.Arena.CreatePPtr(o))
		suite.Equal(int64(i+uobject.FirstPathID), r.PPtr().PathID)
	}
}

func (suite *EndToEndTestSuite) TestUniqueCABNames() {
	before := BundlesBuilt()
	_, first := suite.build(ugraph.NewPrefab("object"), config.Default())
	_, second := suite.build(ugraph.NewPrefab("object"), config.Default())

	suite.NotEqual(first.Nodes[0].Path, second.Nodes[0].Path)
	suite.NotEqual(suite.Bundle.Nodes[0].Path, first.Nodes[0].Path)
	suite.GreaterOrEqual(BundlesBuilt(), before+2)
}

func (suite *EndToEndTestSuite) TestMonoBehaviour() {
	prefab := ugraph.NewPrefab("Sigil")
	behaviour := uobject.NewMonoBehaviour(uobject.NewMonoScript("Mod", "SigilBehaviour", "Mod.dll"))
	behaviour.Payload = []byte{7, 0, 0, 0}
	suite.R.NoError(prefab.AddComponent(behaviour))
	_, bundle := suite.build(prefab, config.Default())

	path, root, err := bundle.Prefab()
	suite.R.NoError(err)
	suite.Equal("assets/sigil.prefab", path)
	suite.R.Len(root.Components, 2)
	decoded, ok := root.Components[1].Component.Target().(*uobject.MonoBehaviour)
	suite.R.True(ok)
	suite.Equal([]byte{7, 0, 0, 0}, decoded.Payload)
	script, ok := decoded.Script.Target().(*uobject.MonoScript)
	suite.R.True(ok)
	suite.Equal("Mod.SigilBehaviour", script.FullName())

	file, err := bundle.SerializedFile()
	suite.R.NoError(err)
	suite.Len(file.Metadata.Scripts, 1)

	manifest, err := bundle.AssetBundle()
	suite.R.NoError(err)
	suite.Len(manifest.PreloadTable, 4)
}

func (suite *EndToEndTestSuite) TestLZ4Profile() {
	profile := config.Default()
	profile.Compression = "lz4"
	profile.EngineVersion = "2021.3.5f1"
	_, bundle := suite.build(ugraph.NewPrefab("object"), profile)

	suite.Equal(uint16(ucompress.TypeLZ4), bundle.BlocksInfo.Blocks[0].Flags)
	suite.Equal("2021.3.5f1", bundle.Header.EngineVersion)
	file, err := bundle.SerializedFile()
	suite.R.NoError(err)
	suite.Equal("2021.3.5f1", file.Metadata.UnityVersion)
}

func (suite *EndToEndTestSuite) TestLZ4ChunksLargeFiles() {
	profile := config.Default()
	profile.Compression = "lz4"
	prefab := ugraph.NewPrefab("object")
	behaviour := uobject.NewMonoBehaviour(uobject.NewMonoScript("", "Big", "Mod.dll"))
	behaviour.Payload = make([]byte, ChunkSize+ChunkSize/2)
	for i := range behaviour.Payload {
		behaviour.Payload[i] = byte(i * 7)
	}
	suite.R.NoError(prefab.AddComponent(behaviour))
	_, bundle := suite.build(prefab, profile)

	blocks := bundle.BlocksInfo.Blocks
	suite.R.Len(blocks, 2)
	suite.Equal(uint32(ChunkSize), blocks[0].UncompressedSize)
	suite.Equal(
		bundle.Nodes[0].Size,
		int64(blocks[0].UncompressedSize)+int64(blocks[1].UncompressedSize),
	)
	_, root, err := bundle.Prefab()
	suite.R.NoError(err)
	decoded, ok := root.Components[1].Component.Target().(*uobject.MonoBehaviour)
	suite.R.True(ok)
	suite.Equal(behaviour.Payload, decoded.Payload)
}

func (suite *EndToEndTestSuite) TestBuildTwiceFails() {
	prefab := ugraph.NewPrefab("object")
	_, err := Build(prefab, config.Default())
	suite.R.NoError(err)
	_, err = Build(prefab, config.Default())
	suite.True(errors.Is(err, ugraph.ErrFinalized))
}

func (suite *EndToEndTestSuite) TestToOrderedMap() {
	lhm, err := ToOrderedMap(suite.Bundle)
	suite.R.NoError(err)
	suite.Equal([]string{"header", "blocks_info", "nodes", "objects", "container", "prefab"}, lhm.Keys())

	bs, err := json.Marshal(lhm)
	suite.R.NoError(err)
	suite.Contains(string(bs), `"prefab":"assets/object.prefab"`)
	suite.Contains(string(bs), `"class":"GameObject"`)
}

func (suite *EndToEndTestSuite) TestDecodeRejects() {
	wrong := append([]byte{}, suite.BundleBytes...)
	copy(wrong, "UnityWeb")
	_, err := Decode(wrong)
	suite.True(errors.Is(err, ErrInvalidSignature))
	suite.False(IsUnityFS(wrong))

	_, err = Decode(suite.BundleBytes[:len(suite.BundleBytes)-1])
	suite.Error(err)

	data := []byte("serialized")
	info, err := uheader.EncodeBlocksInfo(uheader.BlocksInfo{
		Blocks: []uheader.StorageBlock{
			{UncompressedSize: uint32(len(data)), CompressedSize: uint32(len(data))},
		},
		Nodes: []uheader.Node{
			{Offset: 1, Size: math.MaxInt64, Flags: uheader.NodeFlagSerializedFile, Path: "CAB-x"},
		},
	})
	suite.R.NoError(err)
	header := uheader.Header{
		Signature:                  uheader.Signature,
		Version:                    uheader.FormatVersion,
		PlayerVersion:              uheader.DefaultPlayerVersion,
		EngineVersion:              uheader.DefaultEngineVersion,
		CompressedBlocksInfoSize:   uint32(len(info)),
		UncompressedBlocksInfoSize: uint32(len(info)),
		Flags:                      uheader.FlagBlocksAndDirectoryInfoCombined,
	}
	header.Size = int64(uheader.EncodedHeaderSize(header) + len(info) + len(data))
	overflowing := append(append(uheader.EncodeHeader(header), info...), data...)
	suite.NotPanics(func() {
		_, err = Decode(overflowing)
	})
	suite.Error(err)
}

func TestEndToEndTestSuite(t *testing.T) {
	suite.Run(t, new(EndToEndTestSuite))
}
