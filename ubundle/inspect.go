package ubundle

import (
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/ufile"
	"prefab-bundler/ubundle/uobject"
)

// ObjectEntry is one row of a serialized file's object table joined with the decoded object.
type ObjectEntry struct {
	PathID   int64          `json:"path_id"`
	Class    uclass.ID      `json:"class"`
	Name     string         `json:"name"`
	ByteSize uint32         `json:"byte_size"`
	Object   uobject.Object `json:"object"`
}

func (b *Bundle) ObjectEntries() ([]ObjectEntry, error) {
	file, err := b.SerializedFile()
	if err != nil {
		return nil, errors.Wrap(err, "ObjectEntries error")
	}
	objects := file.Arena.Objects()
	return lo.Map(
		file.Metadata.Objects,
		func(info ufile.ObjectInfo, i int) ObjectEntry {
			o := objects[i]
			entry := ObjectEntry{
				PathID:   info.PathID,
				Class:    o.ClassID(),
				ByteSize: info.ByteSize,
				Object:   o,
			}
			if named, ok := o.(uobject.Named); ok {
				entry.Name = named.ObjectName()
			}
			return entry
		},
	), nil
}

// ToOrderedMap renders the bundle for JSON output with a stable key order.
func ToOrderedMap(b *Bundle) (*orderedmap.OrderedMap, error) {
	lhm := orderedmap.New()
	lhm.Set("header", b.Header)
	lhm.Set("blocks_info", b.BlocksInfo)

	nodes := make([]*orderedmap.OrderedMap, 0, len(b.Nodes))
	for _, n := range b.Nodes {
		node := orderedmap.New()
		node.Set("path", n.Path)
		node.Set("offset", n.Offset)
		node.Set("size", n.Size)
		node.Set("flags", n.Flags)
		if n.File != nil {
			node.Set("serialized_file_header", n.File.Header)
			node.Set("metadata", n.File.Metadata)
		}
		nodes = append(nodes, node)
	}
	lhm.Set("nodes", nodes)

	entries, err := b.ObjectEntries()
	if err != nil {
		return nil, errors.Wrap(err, "ToOrderedMap error")
	}
	objects := lo.Map(
		entries,
		func(entry ObjectEntry, _ int) *orderedmap.OrderedMap {
			object := orderedmap.New()
			object.Set("path_id", entry.PathID)
			object.Set("class", entry.Class.String())
			object.Set("name", entry.Name)
			object.Set("byte_size", entry.ByteSize)
			object.Set("fields", entry.Object)
			return object
		},
	)
	lhm.Set("objects", objects)

	if manifest, err := b.AssetBundle(); err == nil {
		lhm.Set("container", manifest.ContainerMap())
	}
	if path, _, err := b.Prefab(); err == nil {
		lhm.Set("prefab", path)
	}
	return lhm, nil
}
