package uobject

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

func writePPtr(w *ubytes.Writer, p PPtr) {
	w.WriteInt32(p.FileID)
	w.WriteInt64(p.PathID)
}

func writeRef(w *ubytes.Writer, arena *Arena, r *Ref) error {
	pptr, err := arena.PPtrOf(r)
	if err != nil {
		return err
	}
	writePPtr(w, pptr)
	return nil
}

// fieldReader keeps the first error so decoders read like a field list
// instead of an if-err ladder. The field name of the failure is kept for the message.
type fieldReader struct {
	r     *ubytes.Reader
	class uclass.ID
	err   error
}

func (f *fieldReader) fail(field string, err error) {
	if f.err == nil && err != nil {
		f.err = errors.Wrapf(err, "decode %s error reading %q", f.class, field)
	}
}

func (f *fieldReader) uint8(field string) uint8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint8()
	f.fail(field, err)
	return v
}

func (f *fieldReader) bool(field string) bool {
	return f.uint8(field) != 0
}

func (f *fieldReader) uint16(field string) uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint16()
	f.fail(field, err)
	return v
}

func (f *fieldReader) int32(field string) int32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadInt32()
	f.fail(field, err)
	return v
}

func (f *fieldReader) uint32(field string) uint32 {
	return uint32(f.int32(field))
}

func (f *fieldReader) float32(field string) float32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadFloat32()
	f.fail(field, err)
	return v
}

func (f *fieldReader) string(field string) string {
	if f.err != nil {
		return ""
	}
	v, err := f.r.ReadAlignedString()
	f.fail(field, err)
	return v
}

func (f *fieldReader) bytes(field string, n int) []byte {
	if f.err != nil {
		return nil
	}
	v, err := f.r.ReadBytes(n)
	f.fail(field, err)
	return v
}

func (f *fieldReader) hash128(field string) uclass.Hash128 {
	hash := uclass.Hash128{}
	copy(hash[:], f.bytes(field, len(hash)))
	return hash
}

func (f *fieldReader) align(field string) {
	if f.err != nil {
		return
	}
	f.fail(field, f.r.Align(ubytes.DefaultAlignment))
}

func (f *fieldReader) ref(field string) Ref {
	fileID := f.int32(field)
	pathID := int64(0)
	if f.err == nil {
		v, err := f.r.ReadInt64()
		f.fail(field, err)
		pathID = v
	}
	return DecodedRef(PPtr{FileID: fileID, PathID: pathID})
}

// count reads an array length and rejects values the remaining bytes cannot possibly hold.
func (f *fieldReader) count(field string, minElementSize int) int {
	n := int(f.int32(field))
	if f.err != nil {
		return 0
	}
	if n < 0 || (minElementSize > 0 && n > f.r.Remaining()/minElementSize) {
		f.fail(field, errors.Errorf("implausible element count %d with %d bytes left", n, f.r.Remaining()))
		return 0
	}
	return n
}

func (f *fieldReader) rest(field string) []byte {
	return f.bytes(field, f.r.Remaining())
}

// done reports the first error, or trailing bytes the layout does not account for.
func (f *fieldReader) done() error {
	if f.err != nil {
		return f.err
	}
	if f.r.Remaining() != 0 {
		return errors.Errorf("decode %s error: %d trailing bytes", f.class, f.r.Remaining())
	}
	return nil
}

// Decode rebuilds an object from its serialized bytes. Classes without a dedicated layout
// become a Component (when the class is a component) or Raw.
func Decode(classID uclass.ID, data []byte, order binary.ByteOrder) (Object, error) {
	f := &fieldReader{
		r:     ubytes.NewReader(data, order),
		class: classID,
	}

	var object Object
	switch classID {
	case uclass.IDGameObject:
		object = decodeGameObject(f)
	case uclass.IDTransform:
		object = decodeTransform(f)
	case uclass.IDMonoBehaviour:
		object = decodeMonoBehaviour(f)
	case uclass.IDMonoScript:
		object = decodeMonoScript(f)
	case uclass.IDAssetBundle:
		object = decodeAssetBundle(f)
	default:
		if classID.IsComponent() {
			object = decodeComponent(f)
		} else {
			object = &Raw{Class: classID, Data: f.rest("data")}
		}
	}

	if err := f.done(); err != nil {
		return nil, err
	}
	return object, nil
}
