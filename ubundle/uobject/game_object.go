package uobject

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

type (
	GameObject struct {
		Components []ComponentPair `json:"components"`
		Layer      uint32          `json:"layer"`
		Name       string          `json:"name"`
		Tag        uint16          `json:"tag"`
		IsActive   bool            `json:"is_active"`
	}
	ComponentPair struct {
		Component Ref `json:"component"`
	}
)

func NewGameObject(name string) *GameObject {
	return &GameObject{
		Components: []ComponentPair{},
		Name:       name,
		IsActive:   true,
	}
}

func (g *GameObject) ClassID() uclass.ID {
	return uclass.IDGameObject
}

func (g *GameObject) ObjectName() string {
	return g.Name
}

// AddComponent lists c as a component and, when c can be attached, points it back at g.
func (g *GameObject) AddComponent(c Object) {
	g.Components = append(g.Components, ComponentPair{Component: RefTo(c)})
	if attachable, ok := c.(Attachable); ok {
		attachable.AttachTo(g)
	}
}

func (g *GameObject) OutgoingReferences() []*Ref {
	return lo.Map(
		lo.Range(len(g.Components)),
		func(i int, _ int) *Ref {
			return &g.Components[i].Component
		},
	)
}

func (g *GameObject) Serialize(w *ubytes.Writer, arena *Arena) error {
	w.WriteInt32(int32(len(g.Components)))
	for i := range g.Components {
		if err := writeRef(w, arena, &g.Components[i].Component); err != nil {
			return errors.Wrapf(err, "GameObject.Serialize error writing component %d of %q", i, g.Name)
		}
	}
	w.WriteUint32(g.Layer)
	w.WriteAlignedString(g.Name)
	w.WriteUint16(g.Tag)
	w.WriteBool(g.IsActive)
	return nil
}

func decodeGameObject(f *fieldReader) *GameObject {
	g := &GameObject{}
	n := f.count("m_Component", DefaultPPtrSize)
	g.Components = make([]ComponentPair, 0, n)
	for i := 0; i < n; i++ {
		g.Components = append(g.Components, ComponentPair{Component: f.ref("m_Component")})
	}
	g.Layer = f.uint32("m_Layer")
	g.Name = f.string("m_Name")
	g.Tag = f.uint16("m_Tag")
	g.IsActive = f.bool("m_IsActive")
	return g
}
