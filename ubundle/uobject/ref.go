package uobject

import (
	"encoding/json"
)

// RefTo returns a reference to o that the assembly pass will bind or append.
func RefTo(o Object) Ref {
	return Ref{target: o}
}

// DecodedRef wraps a PPtr read from disk.
func DecodedRef(pptr PPtr) Ref {
	return Ref{pptr: pptr, decoded: true}
}

func (r *Ref) Target() Object {
	return r.target
}

func (r *Ref) IsNull() bool {
	if r.decoded {
		return r.pptr.IsNull()
	}
	return r.target == nil
}

func (r *Ref) IsBound() bool {
	return r.bound
}

func (r *Ref) Handle() (Handle, bool) {
	return r.handle, r.bound
}

// PPtr is the raw on-disk pointer of a decoded reference. It is the zero PPtr for authored references.
func (r *Ref) PPtr() PPtr {
	return r.pptr
}

// Set retargets the reference and drops any previous binding.
func (r *Ref) Set(o Object) {
	*r = Ref{target: o}
}

func (r *Ref) Clear() {
	*r = Ref{}
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.pptr)
}

func (p PPtr) IsNull() bool {
	return p.FileID == 0 && p.PathID == 0
}
