// Package ufile writes and reads the serialized file a bundle node carries: a fixed big-endian
// header, a little-endian metadata section with the type, object and script tables, and the
// object data itself.
package ufile

import (
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/uobject"
)

type (
	// Header is packed with restruct in field order.
	Header struct {
		MetadataSize uint32  `json:"metadata_size"`
		FileSize     uint32  `json:"file_size"`
		Version      uint32  `json:"version"`
		DataOffset   uint32  `json:"data_offset"`
		Endianness   uint8   `json:"endianness"`
		Reserved     [3]byte `json:"reserved"`
	}

	SerializedType struct {
		ClassID    uclass.ID `json:"class_id"`
		IsStripped bool      `json:"is_stripped"`
		// ScriptTypeIndex points into Metadata.Scripts, -1 for non-script types.
		ScriptTypeIndex int16          `json:"script_type_index"`
		ScriptID        uclass.Hash128 `json:"script_id"`
		OldTypeHash     uclass.Hash128 `json:"old_type_hash"`
	}

	ObjectInfo struct {
		PathID int64 `json:"path_id"`
		// ByteStart is relative to Header.DataOffset.
		ByteStart uint32 `json:"byte_start"`
		ByteSize  uint32 `json:"byte_size"`
		TypeIndex int32  `json:"type_index"`
	}

	ScriptIdentifier struct {
		FileIndex int32 `json:"file_index"`
		PathID    int64 `json:"path_id"`
	}

	Metadata struct {
		UnityVersion    string             `json:"unity_version"`
		TargetPlatform  int32              `json:"target_platform"`
		EnableTypeTree  bool               `json:"enable_type_tree"`
		Types           []SerializedType   `json:"types"`
		Objects         []ObjectInfo       `json:"objects"`
		Scripts         []ScriptIdentifier `json:"scripts"`
		NumExternals    int32              `json:"num_externals"`
		NumRefTypes     int32              `json:"num_ref_types"`
		UserInformation string             `json:"user_information"`
	}

	File struct {
		Header   Header         `json:"header"`
		Metadata Metadata       `json:"metadata"`
		Arena    *uobject.Arena `json:"-"`
	}

	Options struct {
		UnityVersion   string
		TargetPlatform int32
		// TypeHashes overrides the old type hash per class; missing classes get a zero hash.
		TypeHashes map[uclass.ID]uclass.Hash128
	}
)

const (
	DefaultHeaderSize = 20
	FormatVersion     = 21
	// MinFormatVersion is the oldest layout Decode understands: stripped flags and script type
	// indices are present from here on.
	MinFormatVersion = 17

	ObjectAlignment = 8
	DataAlignment   = 16

	EndiannessLittle = 0
	EndiannessBig    = 1

	DefaultUnityVersion = "2019.4.24f1"
	// DefaultTargetPlatform is StandaloneWindows64.
	DefaultTargetPlatform = 19
)

func DefaultOptions() Options {
	return Options{
		UnityVersion:   DefaultUnityVersion,
		TargetPlatform: DefaultTargetPlatform,
		TypeHashes:     map[uclass.ID]uclass.Hash128{},
	}
}
