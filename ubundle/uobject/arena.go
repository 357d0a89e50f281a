package uobject

import (
	"fmt"

	"github.com/pkg/errors"
	"prefab-bundler/ds"
)

var (
	ErrArenaFrozen   = errors.New("uobject: arena is frozen")
	ErrNotInArena    = errors.New("uobject: object is not in the arena")
	ErrDanglingPPtr  = errors.New("uobject: pptr does not resolve to an arena object")
	ErrExternalPPtr  = errors.New("uobject: pptr points into another file")
	ErrUnboundTarget = errors.New("uobject: reference target was never appended")
)

// NewArena creates an empty arena whose first object gets path id FirstPathID + pathOffset.
func NewArena(pathOffset int64) *Arena {
	return &Arena{
		objects:    make([]Object, 0),
		handles:    map[Object]Handle{},
		pathOffset: pathOffset,
	}
}

func (a *Arena) Len() int {
	return len(a.objects)
}

func (a *Arena) PathOffset() int64 {
	return a.pathOffset
}

// Objects returns the objects in handle order.
func (a *Arena) Objects() []Object {
	return ds.ShallowCopy(a.objects)
}

func (a *Arena) Frozen() bool {
	return a.frozen
}

// Freeze forbids further appends, which is what keeps every PPtr created so far valid.
func (a *Arena) Freeze() {
	a.frozen = true
}

// Append places o at the end of the arena. Handles are never reused or shifted.
func (a *Arena) Append(o Object) (Handle, error) {
	if o == nil {
		return 0, errors.New("Append error: nil object")
	}
	if a.frozen {
		return 0, errors.Wrapf(ErrArenaFrozen, "Append error for %s", o.ClassID())
	}
	if h, ok := a.handles[o]; ok {
		return h, errors.Errorf("Append error: %s is already at handle %d", o.ClassID(), h)
	}
	h := Handle(len(a.objects))
	a.objects = append(a.objects, o)
	a.handles[o] = h
	return h, nil
}

func (a *Arena) HandleOf(o Object) (Handle, bool) {
	h, ok := a.handles[o]
	return h, ok
}

func (a *Arena) At(h Handle) (Object, error) {
	if int(h) < 0 || int(h) >= len(a.objects) {
		return nil, ds.ErrOutOfRange{Caller: "Arena.At", Index: int(h), Length: len(a.objects)}
	}
	return a.objects[h], nil
}

func (a *Arena) PathIDOf(h Handle) int64 {
	return int64(h) + FirstPathID + a.pathOffset
}

func (a *Arena) HandleOfPathID(pathID int64) Handle {
	return Handle(pathID - FirstPathID - a.pathOffset)
}

// CreatePPtr computes the reference to o from its position: index + 2 + path offset.
// Objects outside the arena get the null PPtr.
func (a *Arena) CreatePPtr(o Object) PPtr {
	h, ok := a.handles[o]
	if !ok {
		return PPtr{}
	}
	return PPtr{FileID: 0, PathID: a.PathIDOf(h)}
}

func (a *Arena) TryGet(p PPtr) (Object, bool) {
	if p.FileID != 0 || p.IsNull() {
		return nil, false
	}
	o, err := a.At(a.HandleOfPathID(p.PathID))
	if err != nil {
		return nil, false
	}
	return o, true
}

func (a *Arena) Get(p PPtr) (Object, error) {
	if p.FileID != 0 {
		return nil, errors.Wrapf(ErrExternalPPtr, "Get error for %s", ds.DumpJSON(p))
	}
	o, ok := a.TryGet(p)
	if !ok {
		return nil, errors.Wrapf(ErrDanglingPPtr, "Get error for %s", ds.DumpJSON(p))
	}
	return o, nil
}

// Bind attaches r to the handle of its target. The target must already be in the arena.
func (a *Arena) Bind(r *Ref) error {
	if r.decoded || r.IsNull() {
		return nil
	}
	h, ok := a.handles[r.target]
	if !ok {
		return errors.Wrapf(ErrNotInArena, "Bind error for %s", r.target.ClassID())
	}
	r.handle = h
	r.bound = true
	return nil
}

// Resolve follows r to its object, whichever form the reference is in.
func (a *Arena) Resolve(r *Ref) (Object, bool) {
	switch {
	case r.IsNull():
		return nil, false
	case r.decoded:
		return a.TryGet(r.pptr)
	case r.bound:
		o, err := a.At(r.handle)
		return o, err == nil
	default:
		_, ok := a.handles[r.target]
		return r.target, ok
	}
}

// PPtrOf turns r into its on-disk form. Authored references must be bound first.
func (a *Arena) PPtrOf(r *Ref) (PPtr, error) {
	switch {
	case r.IsNull():
		return PPtr{}, nil
	case r.decoded:
		return r.pptr, nil
	case r.bound:
		return PPtr{FileID: 0, PathID: a.PathIDOf(r.handle)}, nil
	default:
		return PPtr{}, errors.Wrap(ErrUnboundTarget, fmt.Sprintf("PPtrOf error for %s", r.target.ClassID()))
	}
}

// RebindAll turns every reference of every decoded object into a bound one, so a decoded arena
// can be walked with At instead of path id arithmetic.
func (a *Arena) RebindAll() error {
	for _, o := range a.objects {
		for _, r := range o.OutgoingReferences() {
			if !r.decoded || r.pptr.IsNull() || r.pptr.FileID != 0 {
				continue
			}
			target, err := a.Get(r.pptr)
			if err != nil {
				return errors.Wrapf(err, "RebindAll error for %s", o.ClassID())
			}
			r.target = target
			r.handle = a.handles[target]
			r.bound = true
		}
	}
	return nil
}
