// Package uobject models the engine objects a prefab bundle carries and the weak references between them.
//
// Objects live in an append-only Arena. A Ref starts out pointing at an Object and gets bound to the
// object's stable Handle once the object is in the arena; a PPtr is the on-disk (file id, path id)
// form derived from that handle.
package uobject

import (
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

type (
	Handle int

	PPtr struct {
		FileID int32 `json:"file_id"`
		PathID int64 `json:"path_id"`
	}

	// Object is anything that can be placed in a serialized file.
	// Implementations are pointer types; the arena keys objects by identity.
	Object interface {
		ClassID() uclass.ID
		// OutgoingReferences exposes every reference field so the assembly pass can bind them.
		OutgoingReferences() []*Ref
		Serialize(w *ubytes.Writer, arena *Arena) error
	}

	// Named is implemented by objects that carry an m_Name.
	Named interface {
		Object
		ObjectName() string
	}

	// Attachable is implemented by components; attaching points their m_GameObject at the owner.
	Attachable interface {
		Object
		AttachTo(owner *GameObject)
	}

	Ref struct {
		target  Object
		handle  Handle
		bound   bool
		pptr    PPtr
		decoded bool
	}

	Arena struct {
		objects    []Object
		handles    map[Object]Handle
		pathOffset int64
		frozen     bool
	}

	Vector3 struct {
		X float32 `json:"x"`
		Y float32 `json:"y"`
		Z float32 `json:"z"`
	}
	Quaternion struct {
		X float32 `json:"x"`
		Y float32 `json:"y"`
		Z float32 `json:"z"`
		W float32 `json:"w"`
	}
)

const (
	// FirstPathID is the path id of the first arena object; 0 is the null reference and 1 is reserved.
	FirstPathID     = 2
	DefaultPPtrSize = 12
)
