package uobject

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

type Transform struct {
	GameObject    Ref        `json:"game_object"`
	LocalRotation Quaternion `json:"local_rotation"`
	LocalPosition Vector3    `json:"local_position"`
	LocalScale    Vector3    `json:"local_scale"`
	Children      []Ref      `json:"children"`
	Father        Ref        `json:"father"`
}

// NewTransform returns an identity transform: no rotation, origin, unit scale.
func NewTransform() *Transform {
	return &Transform{
		LocalRotation: Quaternion{W: 1},
		LocalScale:    Vector3{X: 1, Y: 1, Z: 1},
		Children:      []Ref{},
	}
}

func (t *Transform) ClassID() uclass.ID {
	return uclass.IDTransform
}

func (t *Transform) AttachTo(owner *GameObject) {
	t.GameObject = RefTo(owner)
}

// AddChild parents child under t on both sides of the relation.
func (t *Transform) AddChild(child *Transform) {
	t.Children = append(t.Children, RefTo(child))
	child.Father = RefTo(t)
}

func (t *Transform) OutgoingReferences() []*Ref {
	refs := []*Ref{&t.GameObject}
	refs = append(
		refs,
		lo.Map(
			lo.Range(len(t.Children)),
			func(i int, _ int) *Ref {
				return &t.Children[i]
			},
		)...,
	)
	return append(refs, &t.Father)
}

func (t *Transform) Serialize(w *ubytes.Writer, arena *Arena) error {
	if err := writeRef(w, arena, &t.GameObject); err != nil {
		return errors.Wrap(err, "Transform.Serialize error writing m_GameObject")
	}
	w.WriteFloat32(t.LocalRotation.X)
	w.WriteFloat32(t.LocalRotation.Y)
	w.WriteFloat32(t.LocalRotation.Z)
	w.WriteFloat32(t.LocalRotation.W)
	writeVector3(w, t.LocalPosition)
	writeVector3(w, t.LocalScale)
	w.WriteInt32(int32(len(t.Children)))
	for i := range t.Children {
		if err := writeRef(w, arena, &t.Children[i]); err != nil {
			return errors.Wrapf(err, "Transform.Serialize error writing child %d", i)
		}
	}
	if err := writeRef(w, arena, &t.Father); err != nil {
		return errors.Wrap(err, "Transform.Serialize error writing m_Father")
	}
	return nil
}

func writeVector3(w *ubytes.Writer, v Vector3) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
}

func readVector3(f *fieldReader, field string) Vector3 {
	return Vector3{
		X: f.float32(field),
		Y: f.float32(field),
		Z: f.float32(field),
	}
}

func decodeTransform(f *fieldReader) *Transform {
	t := &Transform{}
	t.GameObject = f.ref("m_GameObject")
	t.LocalRotation = Quaternion{
		X: f.float32("m_LocalRotation"),
		Y: f.float32("m_LocalRotation"),
		Z: f.float32("m_LocalRotation"),
		W: f.float32("m_LocalRotation"),
	}
	t.LocalPosition = readVector3(f, "m_LocalPosition")
	t.LocalScale = readVector3(f, "m_LocalScale")
	n := f.count("m_Children", DefaultPPtrSize)
	t.Children = make([]Ref, 0, n)
	for i := 0; i < n; i++ {
		t.Children = append(t.Children, f.ref("m_Children"))
	}
	t.Father = f.ref("m_Father")
	return t
}
