package ufile

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/uobject"
)

type typeKey struct {
	classID uclass.ID
	script  uobject.Handle
}

// Layout serializes every arena object and builds the tables that describe them.
// The returned blobs are in arena order and match file.Metadata.Objects one to one.
func Layout(arena *uobject.Arena, opts Options) (*File, [][]byte, error) {
	objects := arena.Objects()
	blobs := make([][]byte, 0, len(objects))
	for i, o := range objects {
		w := ubytes.NewLittleEndianWriter()
		if err := o.Serialize(w, arena); err != nil {
			return nil, nil, errors.Wrapf(err, "Layout error serializing object %d (%s)", i, o.ClassID())
		}
		blobs = append(blobs, w.Bytes())
	}

	meta := Metadata{
		UnityVersion:   opts.UnityVersion,
		TargetPlatform: opts.TargetPlatform,
		EnableTypeTree: false,
		Types:          []SerializedType{},
		Objects:        make([]ObjectInfo, 0, len(objects)),
		Scripts:        []ScriptIdentifier{},
	}
	typeIndices := map[typeKey]int32{}
	scriptIndices := map[uobject.Handle]int16{}

	byteStart := 0
	for i, o := range objects {
		key, serializedType, err := describeType(arena, o, opts, &meta, scriptIndices)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Layout error describing object %d", i)
		}
		typeIndex, ok := typeIndices[key]
		if !ok {
			typeIndex = int32(len(meta.Types))
			typeIndices[key] = typeIndex
			meta.Types = append(meta.Types, serializedType)
		}

		byteStart = ds.NearestDivisibleByM(byteStart, ObjectAlignment)
		meta.Objects = append(meta.Objects, ObjectInfo{
			PathID:    arena.PathIDOf(uobject.Handle(i)),
			ByteStart: uint32(byteStart),
			ByteSize:  uint32(len(blobs[i])),
			TypeIndex: typeIndex,
		})
		byteStart += len(blobs[i])
	}

	metadataSize := len(EncodeMetadata(meta))
	dataOffset := ds.NearestDivisibleByM(DefaultHeaderSize+metadataSize, DataAlignment)
	file := File{
		Header: Header{
			MetadataSize: uint32(metadataSize),
			FileSize:     uint32(dataOffset + byteStart),
			Version:      FormatVersion,
			DataOffset:   uint32(dataOffset),
			Endianness:   EndiannessLittle,
		},
		Metadata: meta,
		Arena:    arena,
	}
	return &file, blobs, nil
}

// describeType returns the type table entry for o. A MonoBehaviour gets one entry per script,
// and its script is registered in the script table on first sight.
func describeType(
	arena *uobject.Arena,
	o uobject.Object,
	opts Options,
	meta *Metadata,
	scriptIndices map[uobject.Handle]int16,
) (typeKey, SerializedType, error) {
	classID := o.ClassID()
	key := typeKey{classID: classID, script: -1}
	serializedType := SerializedType{
		ClassID:         classID,
		ScriptTypeIndex: -1,
		OldTypeHash:     opts.TypeHashes[classID],
	}

	mb, ok := o.(*uobject.MonoBehaviour)
	if !ok || mb.Script.IsNull() {
		return key, serializedType, nil
	}
	handle, ok := mb.Script.Handle()
	if !ok {
		return key, serializedType, errors.Wrap(uobject.ErrUnboundTarget, "describeType error for m_Script")
	}
	target, err := arena.At(handle)
	if err != nil {
		return key, serializedType, errors.Wrap(err, "describeType error")
	}
	script, ok := target.(*uobject.MonoScript)
	if !ok {
		return key, serializedType, errors.Errorf("describeType error: m_Script points at %s", target.ClassID())
	}

	scriptIndex, ok := scriptIndices[handle]
	if !ok {
		scriptIndex = int16(len(meta.Scripts))
		scriptIndices[handle] = scriptIndex
		meta.Scripts = append(meta.Scripts, ScriptIdentifier{
			FileIndex: 0,
			PathID:    arena.PathIDOf(handle),
		})
	}
	key.script = handle
	serializedType.ScriptTypeIndex = scriptIndex
	serializedType.ScriptID = script.PropertiesHash
	return key, serializedType, nil
}

func EncodeHeader(header Header) ([]byte, error) {
	bs, err := restruct.Pack(binary.BigEndian, &header)
	if err != nil {
		return nil, errors.Wrap(err, "EncodeHeader error")
	}
	return bs, nil
}

func EncodeMetadata(meta Metadata) []byte {
	w := ubytes.NewLittleEndianWriter()
	w.WriteCString(meta.UnityVersion)
	w.WriteInt32(meta.TargetPlatform)
	w.WriteBool(meta.EnableTypeTree)

	w.WriteInt32(int32(len(meta.Types)))
	for _, t := range meta.Types {
		encodeType(w, t)
	}

	w.WriteInt32(int32(len(meta.Objects)))
	for _, info := range meta.Objects {
		// relative to the metadata start, which sits on a 4 byte boundary of the file
		w.Align(ubytes.DefaultAlignment)
		w.WriteInt64(info.PathID)
		w.WriteUint32(info.ByteStart)
		w.WriteUint32(info.ByteSize)
		w.WriteInt32(info.TypeIndex)
	}

	w.WriteInt32(int32(len(meta.Scripts)))
	for _, script := range meta.Scripts {
		w.WriteInt32(script.FileIndex)
		w.Align(ubytes.DefaultAlignment)
		w.WriteInt64(script.PathID)
	}

	w.WriteInt32(0) // externals
	w.WriteInt32(0) // ref types
	w.WriteCString(meta.UserInformation)
	return w.Bytes()
}

func encodeType(w *ubytes.Writer, t SerializedType) {
	w.WriteInt32(int32(t.ClassID))
	w.WriteBool(t.IsStripped)
	w.WriteInt16(t.ScriptTypeIndex)
	if t.ClassID == uclass.IDMonoBehaviour {
		w.WriteBytes(t.ScriptID[:])
	}
	w.WriteBytes(t.OldTypeHash[:])
}

// EncodeFile lays out header, metadata and the object blobs at the offsets recorded in file.
func EncodeFile(file *File, blobs [][]byte) ([]byte, error) {
	if len(blobs) != len(file.Metadata.Objects) {
		return nil, errors.Errorf(
			"EncodeFile error: %d blobs for %d objects",
			len(blobs), len(file.Metadata.Objects),
		)
	}
	header, err := EncodeHeader(file.Header)
	if err != nil {
		return nil, errors.Wrap(err, "EncodeFile error")
	}

	bs := make([]byte, file.Header.FileSize)
	copy(bs, header)
	copy(bs[DefaultHeaderSize:], EncodeMetadata(file.Metadata))
	for i, info := range file.Metadata.Objects {
		start := int(file.Header.DataOffset) + int(info.ByteStart)
		if int(info.ByteSize) != len(blobs[i]) || start+len(blobs[i]) > len(bs) {
			return nil, errors.Errorf("EncodeFile error: object %d does not fit its declared range", i)
		}
		copy(bs[start:], blobs[i])
	}
	return bs, nil
}

func Encode(arena *uobject.Arena, opts Options) ([]byte, error) {
	file, blobs, err := Layout(arena, opts)
	if err != nil {
		return nil, errors.Wrap(err, "Encode error")
	}
	return EncodeFile(file, blobs)
}
