package ugraph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/uobject"
)

var ErrFinalized = errors.New("ugraph: prefab is already finalized")

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateProcessing:
		return "processing"
	case StateStable:
		return "stable"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// NewPrefab seeds the arena with a GameObject and its Transform, wired to each other.
func NewPrefab(name string) *Prefab {
	root := uobject.NewGameObject(name)
	transform := uobject.NewTransform()
	root.AddComponent(transform)

	arena := uobject.NewArena(0)
	// a fresh arena takes both objects; Append can only fail on a frozen arena or a duplicate
	if _, err := arena.Append(root); err != nil {
		panic(ds.ErrUnreachableCode{Caller: "NewPrefab"})
	}
	if _, err := arena.Append(transform); err != nil {
		panic(ds.ErrUnreachableCode{Caller: "NewPrefab"})
	}

	return &Prefab{
		Name:      name,
		arena:     arena,
		root:      root,
		transform: transform,
		state:     StateInitial,
	}
}

func (p *Prefab) Root() *uobject.GameObject {
	return p.root
}

func (p *Prefab) Transform() *uobject.Transform {
	return p.transform
}

func (p *Prefab) Arena() *uobject.Arena {
	return p.arena
}

func (p *Prefab) State() State {
	return p.state
}

// Bundle is the manifest appended by Finalize, nil before that.
func (p *Prefab) Bundle() *uobject.AssetBundle {
	return p.bundle
}

// ContainerPath is the logical asset path the prefab is listed under.
func (p *Prefab) ContainerPath() string {
	return ContainerPathPrefix + strings.ToLower(p.Name) + ContainerPathSuffix
}

// AddComponent attaches c to the root GameObject. The object itself reaches the arena
// on the next reference pass.
func (p *Prefab) AddComponent(c uobject.Object) error {
	if p.state == StateFinalized {
		return errors.Wrapf(ErrFinalized, "AddComponent error for %s", c.ClassID())
	}
	p.root.AddComponent(c)
	p.state = StateProcessing
	return nil
}

// AppendUnresolved runs one reference pass over the objects present when the pass starts.
// Targets already in the arena are bound; the rest are appended and bound. Objects appended
// during this pass are scanned by the next one. It returns the number of appended objects.
func (p *Prefab) AppendUnresolved() (int, error) {
	if p.state == StateFinalized {
		return 0, errors.Wrap(ErrFinalized, "AppendUnresolved error")
	}
	objects := p.arena.Objects()
	inserted := 0
	for _, o := range objects {
		for _, r := range o.OutgoingReferences() {
			if r.IsNull() || r.IsBound() {
				continue
			}
			if _, ok := p.arena.HandleOf(r.Target()); !ok {
				if _, err := p.arena.Append(r.Target()); err != nil {
					return inserted, errors.Wrapf(err, "AppendUnresolved error appending a reference of %s", o.ClassID())
				}
				inserted++
			}
			if err := p.arena.Bind(r); err != nil {
				return inserted, errors.Wrap(err, "AppendUnresolved error")
			}
		}
	}

	if inserted == 0 {
		p.state = StateStable
	} else {
		p.state = StateProcessing
	}
	return inserted, nil
}

// Stabilize repeats reference passes until one appends nothing.
// The graph is finite and the arena append-only, so this terminates.
func (p *Prefab) Stabilize() error {
	for {
		inserted, err := p.AppendUnresolved()
		if err != nil {
			return errors.Wrap(err, "Stabilize error")
		}
		if inserted == 0 {
			return nil
		}
	}
}

// Finalize stabilizes the graph, then appends the AssetBundle manifest as the last object.
// Its preload table lists every other object in arena order and its single container entry
// covers that whole table. The arena is frozen afterwards.
func (p *Prefab) Finalize(bundleName string) (*uobject.AssetBundle, error) {
	if p.state == StateFinalized {
		return nil, errors.Wrap(ErrFinalized, "Finalize error")
	}
	if err := p.Stabilize(); err != nil {
		return nil, errors.Wrap(err, "Finalize error")
	}

	objects := p.arena.Objects()
	bundle := uobject.NewAssetBundle(bundleName)
	bundle.PreloadTable = lo.Map(
		objects,
		func(o uobject.Object, _ int) uobject.Ref {
			return uobject.RefTo(o)
		},
	)
	bundle.Container = []uobject.ContainerEntry{
		{
			Path: p.ContainerPath(),
			Info: uobject.AssetInfo{
				PreloadIndex: 0,
				PreloadSize:  int32(len(objects)),
				Asset:        uobject.RefTo(p.root),
			},
		},
	}

	if _, err := p.arena.Append(bundle); err != nil {
		return nil, errors.Wrap(err, "Finalize error appending the asset bundle")
	}
	for _, r := range bundle.OutgoingReferences() {
		if err := p.arena.Bind(r); err != nil {
			return nil, errors.Wrap(err, "Finalize error")
		}
	}
	if err := p.verifyPreloadTable(bundle); err != nil {
		return nil, err
	}

	p.arena.Freeze()
	p.bundle = bundle
	p.state = StateFinalized
	return bundle, nil
}

// verifyPreloadTable checks that preload entry i is the object at handle i.
func (p *Prefab) verifyPreloadTable(bundle *uobject.AssetBundle) error {
	expected := ds.MakeRange(0, len(bundle.PreloadTable), 1)
	actual := lo.Map(
		bundle.PreloadTable,
		func(r uobject.Ref, _ int) int {
			handle, ok := r.Handle()
			if !ok {
				return -1
			}
			return int(handle)
		},
	)
	for _, pair := range lo.Zip2(expected, actual) {
		if pair.A != pair.B {
			return errors.Errorf("verifyPreloadTable error: preload entry %d is bound to handle %d", pair.A, pair.B)
		}
	}
	return nil
}
