package uobject

import (
	"github.com/pkg/errors"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

type (
	// AssetInfo locates one container entry: its slice of the preload table and the asset itself.
	AssetInfo struct {
		PreloadIndex int32 `json:"preload_index"`
		PreloadSize  int32 `json:"preload_size"`
		Asset        Ref   `json:"asset"`
	}
	ContainerEntry struct {
		Path string    `json:"path"`
		Info AssetInfo `json:"info"`
	}
	SceneHash struct {
		Scene string `json:"scene"`
		Hash  string `json:"hash"`
	}

	// AssetBundle is the manifest object. It is always the last object of a bundle's file.
	AssetBundle struct {
		Name                       string           `json:"name"`
		PreloadTable               []Ref            `json:"preload_table"`
		Container                  []ContainerEntry `json:"container"`
		MainAsset                  AssetInfo        `json:"main_asset"`
		RuntimeCompatibility       uint32           `json:"runtime_compatibility"`
		AssetBundleName            string           `json:"asset_bundle_name"`
		Dependencies               []string         `json:"dependencies"`
		IsStreamedSceneAssetBundle bool             `json:"is_streamed_scene_asset_bundle"`
		ExplicitDataLayout         int32            `json:"explicit_data_layout"`
		PathFlags                  int32            `json:"path_flags"`
		SceneHashes                []SceneHash      `json:"scene_hashes"`
	}
)

const (
	DefaultRuntimeCompatibility = 1
	// DefaultPathFlags marks container paths as full asset paths.
	DefaultPathFlags = 7
)

func NewAssetBundle(name string) *AssetBundle {
	return &AssetBundle{
		Name:                 name,
		PreloadTable:         []Ref{},
		Container:            []ContainerEntry{},
		RuntimeCompatibility: DefaultRuntimeCompatibility,
		AssetBundleName:      name,
		Dependencies:         []string{},
		PathFlags:            DefaultPathFlags,
		SceneHashes:          []SceneHash{},
	}
}

func (b *AssetBundle) ClassID() uclass.ID {
	return uclass.IDAssetBundle
}

func (b *AssetBundle) ObjectName() string {
	return b.Name
}

func (b *AssetBundle) OutgoingReferences() []*Ref {
	refs := make([]*Ref, 0, len(b.PreloadTable)+len(b.Container)+1)
	for i := range b.PreloadTable {
		refs = append(refs, &b.PreloadTable[i])
	}
	for i := range b.Container {
		refs = append(refs, &b.Container[i].Info.Asset)
	}
	return append(refs, &b.MainAsset.Asset)
}

// ContainerMap indexes the container by path, keeping the on-disk order.
func (b *AssetBundle) ContainerMap() *ds.LinkedHashMap[string, AssetInfo] {
	lhm := ds.NewLinkedHashMap[string, AssetInfo]()
	for _, entry := range b.Container {
		lhm.Put(entry.Path, entry.Info)
	}
	return lhm
}

func writeAssetInfo(w *ubytes.Writer, arena *Arena, info *AssetInfo) error {
	w.WriteInt32(info.PreloadIndex)
	w.WriteInt32(info.PreloadSize)
	return writeRef(w, arena, &info.Asset)
}

func (b *AssetBundle) Serialize(w *ubytes.Writer, arena *Arena) error {
	w.WriteAlignedString(b.Name)

	w.WriteInt32(int32(len(b.PreloadTable)))
	for i := range b.PreloadTable {
		if err := writeRef(w, arena, &b.PreloadTable[i]); err != nil {
			return errors.Wrapf(err, "AssetBundle.Serialize error writing preload entry %d", i)
		}
	}

	w.WriteInt32(int32(len(b.Container)))
	for i := range b.Container {
		entry := &b.Container[i]
		w.WriteAlignedString(entry.Path)
		if err := writeAssetInfo(w, arena, &entry.Info); err != nil {
			return errors.Wrapf(err, "AssetBundle.Serialize error writing container entry %q", entry.Path)
		}
	}

	if err := writeAssetInfo(w, arena, &b.MainAsset); err != nil {
		return errors.Wrap(err, "AssetBundle.Serialize error writing m_MainAsset")
	}
	w.WriteUint32(b.RuntimeCompatibility)
	w.WriteAlignedString(b.AssetBundleName)

	w.WriteInt32(int32(len(b.Dependencies)))
	for _, dependency := range b.Dependencies {
		w.WriteAlignedString(dependency)
	}

	w.WriteBool(b.IsStreamedSceneAssetBundle)
	w.Align(ubytes.DefaultAlignment)
	w.WriteInt32(b.ExplicitDataLayout)
	w.WriteInt32(b.PathFlags)

	w.WriteInt32(int32(len(b.SceneHashes)))
	for _, sceneHash := range b.SceneHashes {
		w.WriteAlignedString(sceneHash.Scene)
		w.WriteAlignedString(sceneHash.Hash)
	}
	return nil
}

func readAssetInfo(f *fieldReader, field string) AssetInfo {
	return AssetInfo{
		PreloadIndex: f.int32(field),
		PreloadSize:  f.int32(field),
		Asset:        f.ref(field),
	}
}

func decodeAssetBundle(f *fieldReader) *AssetBundle {
	b := &AssetBundle{}
	b.Name = f.string("m_Name")

	n := f.count("m_PreloadTable", DefaultPPtrSize)
	b.PreloadTable = make([]Ref, 0, n)
	for i := 0; i < n; i++ {
		b.PreloadTable = append(b.PreloadTable, f.ref("m_PreloadTable"))
	}

	n = f.count("m_Container", 4+8+DefaultPPtrSize)
	b.Container = make([]ContainerEntry, 0, n)
	for i := 0; i < n; i++ {
		path := f.string("m_Container")
		b.Container = append(b.Container, ContainerEntry{Path: path, Info: readAssetInfo(f, "m_Container")})
	}

	b.MainAsset = readAssetInfo(f, "m_MainAsset")
	b.RuntimeCompatibility = f.uint32("m_RuntimeCompatibility")
	b.AssetBundleName = f.string("m_AssetBundleName")

	n = f.count("m_Dependencies", 4)
	b.Dependencies = make([]string, 0, n)
	for i := 0; i < n; i++ {
		b.Dependencies = append(b.Dependencies, f.string("m_Dependencies"))
	}

	b.IsStreamedSceneAssetBundle = f.bool("m_IsStreamedSceneAssetBundle")
	f.align("m_IsStreamedSceneAssetBundle")
	b.ExplicitDataLayout = f.int32("m_ExplicitDataLayout")
	b.PathFlags = f.int32("m_PathFlags")

	n = f.count("m_SceneHashes", 8)
	b.SceneHashes = make([]SceneHash, 0, n)
	for i := 0; i < n; i++ {
		b.SceneHashes = append(b.SceneHashes, SceneHash{
			Scene: f.string("m_SceneHashes"),
			Hash:  f.string("m_SceneHashes"),
		})
	}
	return b
}
