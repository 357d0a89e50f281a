package ufile

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/uobject"
)

var (
	ErrUnsupportedVersion = errors.New("ufile: unsupported serialized file version")
	ErrTypeTree           = errors.New("ufile: files with type trees are not supported")
)

// metadataReader keeps the first error and turns every later read into a no-op.
type metadataReader struct {
	r   *ubytes.Reader
	err error
}

func (m *metadataReader) fail(field string, err error) {
	if m.err == nil {
		m.err = errors.Wrapf(err, "DecodeMetadata error reading %q at %d", field, m.r.Position())
	}
}

func (m *metadataReader) bool(field string) bool {
	if m.err != nil {
		return false
	}
	v, err := m.r.ReadBool()
	if err != nil {
		m.fail(field, err)
	}
	return v
}

func (m *metadataReader) int16(field string) int16 {
	if m.err != nil {
		return 0
	}
	v, err := m.r.ReadInt16()
	if err != nil {
		m.fail(field, err)
	}
	return v
}

func (m *metadataReader) int32(field string) int32 {
	if m.err != nil {
		return 0
	}
	v, err := m.r.ReadInt32()
	if err != nil {
		m.fail(field, err)
	}
	return v
}

func (m *metadataReader) uint32(field string) uint32 {
	return uint32(m.int32(field))
}

func (m *metadataReader) int64(field string) int64 {
	if m.err != nil {
		return 0
	}
	v, err := m.r.ReadInt64()
	if err != nil {
		m.fail(field, err)
	}
	return v
}

func (m *metadataReader) cstring(field string) string {
	if m.err != nil {
		return ""
	}
	v, err := m.r.ReadCString()
	if err != nil {
		m.fail(field, err)
	}
	return v
}

func (m *metadataReader) hash128(field string) uclass.Hash128 {
	h := uclass.Hash128{}
	if m.err != nil {
		return h
	}
	bs, err := m.r.ReadBytes(len(h))
	if err != nil {
		m.fail(field, err)
		return h
	}
	copy(h[:], bs)
	return h
}

func (m *metadataReader) align(field string) {
	if m.err != nil {
		return
	}
	if err := m.r.Align(ubytes.DefaultAlignment); err != nil {
		m.fail(field, err)
	}
}

// count reads a table length and rejects values the remaining bytes cannot hold.
func (m *metadataReader) count(field string, minElementSize int) int {
	n := m.int32(field)
	if m.err != nil {
		return 0
	}
	if n < 0 || int(n) > m.r.Remaining()/minElementSize {
		m.fail(field, errors.Errorf("implausible count %d", n))
		return 0
	}
	return int(n)
}

func DecodeHeader(bs []byte) (*Header, error) {
	if len(bs) < DefaultHeaderSize {
		return nil, errors.Errorf("DecodeHeader error: need %d bytes, got %d", DefaultHeaderSize, len(bs))
	}
	header := Header{}
	if err := restruct.Unpack(bs[:DefaultHeaderSize], binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "DecodeHeader error")
	}
	if header.Version < MinFormatVersion || header.Version > FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "DecodeHeader error: version %d", header.Version)
	}
	return &header, nil
}

func (h Header) ByteOrder() binary.ByteOrder {
	if h.Endianness == EndiannessLittle {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func DecodeMetadata(bs []byte, version uint32, order binary.ByteOrder) (*Metadata, error) {
	m := &metadataReader{r: ubytes.NewReader(bs, order)}
	meta := Metadata{}

	meta.UnityVersion = m.cstring("unity_version")
	meta.TargetPlatform = m.int32("target_platform")
	meta.EnableTypeTree = m.bool("enable_type_tree")
	if m.err == nil && meta.EnableTypeTree {
		return nil, errors.Wrap(ErrTypeTree, "DecodeMetadata error")
	}

	// class id, stripped flag, script type index and the old type hash
	meta.Types = make([]SerializedType, m.count("types", 4+1+2+16))
	for i := range meta.Types {
		t := &meta.Types[i]
		t.ClassID = uclass.ID(m.int32("class_id"))
		if version >= 16 {
			t.IsStripped = m.bool("is_stripped")
		}
		t.ScriptTypeIndex = m.int16("script_type_index")
		if t.ClassID == uclass.IDMonoBehaviour {
			t.ScriptID = m.hash128("script_id")
		}
		t.OldTypeHash = m.hash128("old_type_hash")
	}

	meta.Objects = make([]ObjectInfo, m.count("objects", 8+4+4+4))
	for i := range meta.Objects {
		info := &meta.Objects[i]
		m.align("objects")
		info.PathID = m.int64("path_id")
		info.ByteStart = m.uint32("byte_start")
		info.ByteSize = m.uint32("byte_size")
		info.TypeIndex = m.int32("type_index")
	}

	meta.Scripts = make([]ScriptIdentifier, m.count("scripts", 4+8))
	for i := range meta.Scripts {
		script := &meta.Scripts[i]
		script.FileIndex = m.int32("file_index")
		m.align("scripts")
		script.PathID = m.int64("path_id")
	}

	meta.NumExternals = m.int32("externals")
	if m.err == nil && meta.NumExternals != 0 {
		return nil, errors.Errorf("DecodeMetadata error: %d externals, only self-contained files are supported", meta.NumExternals)
	}
	if version >= 20 {
		meta.NumRefTypes = m.int32("ref_types")
		if m.err == nil && meta.NumRefTypes != 0 {
			return nil, errors.Errorf("DecodeMetadata error: %d ref types are not supported", meta.NumRefTypes)
		}
	}
	meta.UserInformation = m.cstring("user_information")

	if m.err != nil {
		return nil, m.err
	}
	return &meta, nil
}

// Decode reads a serialized file and rebuilds its objects into an arena. Path ids have to be
// contiguous, which holds for every file Encode writes.
func Decode(bs []byte) (*File, error) {
	header, err := DecodeHeader(bs)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}
	if int(header.FileSize) > len(bs) || int(header.DataOffset) > int(header.FileSize) {
		return nil, errors.Errorf(
			"Decode error: header claims %d bytes with data at %d, got %d bytes",
			header.FileSize, header.DataOffset, len(bs),
		)
	}
	metadataEnd := DefaultHeaderSize + int(header.MetadataSize)
	if metadataEnd > int(header.DataOffset) {
		return nil, errors.Errorf("Decode error: metadata ends at %d, past the data offset %d", metadataEnd, header.DataOffset)
	}

	order := header.ByteOrder()
	meta, err := DecodeMetadata(bs[DefaultHeaderSize:metadataEnd], header.Version, order)
	if err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}

	pathOffset := int64(0)
	if len(meta.Objects) > 0 {
		pathOffset = meta.Objects[0].PathID - uobject.FirstPathID
	}
	arena := uobject.NewArena(pathOffset)
	for i, info := range meta.Objects {
		if info.PathID != arena.PathIDOf(uobject.Handle(i)) {
			return nil, errors.Errorf("Decode error: object %d has path id %d, path ids must be contiguous", i, info.PathID)
		}
		if info.TypeIndex < 0 || int(info.TypeIndex) >= len(meta.Types) {
			return nil, errors.Errorf("Decode error: object %d has type index %d of %d", i, info.TypeIndex, len(meta.Types))
		}
		start := int(header.DataOffset) + int(info.ByteStart)
		end := start + int(info.ByteSize)
		if end > int(header.FileSize) {
			return nil, errors.Errorf("Decode error: object %d spans [%d, %d) past the file end %d", i, start, end, header.FileSize)
		}

		classID := meta.Types[info.TypeIndex].ClassID
		o, err := uobject.Decode(classID, bs[start:end], order)
		if err != nil {
			return nil, errors.Wrapf(err, "Decode error for object %d (%s)", i, classID)
		}
		if _, err := arena.Append(o); err != nil {
			return nil, errors.Wrap(err, "Decode error")
		}
	}
	if err := arena.RebindAll(); err != nil {
		return nil, errors.Wrap(err, "Decode error")
	}

	return &File{
		Header:   *header,
		Metadata: *meta,
		Arena:    arena,
	}, nil
}
