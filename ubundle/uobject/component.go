package uobject

import (
	"github.com/pkg/errors"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

type (
	// Component is any component class whose fields after m_GameObject are carried as opaque bytes.
	Component struct {
		Class      uclass.ID `json:"class"`
		GameObject Ref       `json:"game_object"`
		Payload    []byte    `json:"payload"`
	}

	MonoBehaviour struct {
		GameObject Ref    `json:"game_object"`
		Enabled    bool   `json:"enabled"`
		Script     Ref    `json:"script"`
		Name       string `json:"name"`
		// Payload holds the script's own serialized fields.
		Payload []byte `json:"payload"`
	}
)

func NewComponent(class uclass.ID, payload []byte) *Component {
	return &Component{
		Class:   class,
		Payload: payload,
	}
}

func (c *Component) ClassID() uclass.ID {
	return c.Class
}

func (c *Component) AttachTo(owner *GameObject) {
	c.GameObject = RefTo(owner)
}

func (c *Component) OutgoingReferences() []*Ref {
	return []*Ref{&c.GameObject}
}

func (c *Component) Serialize(w *ubytes.Writer, arena *Arena) error {
	if err := writeRef(w, arena, &c.GameObject); err != nil {
		return errors.Wrapf(err, "Component.Serialize error writing m_GameObject of %s", c.Class)
	}
	w.WriteBytes(c.Payload)
	return nil
}

func decodeComponent(f *fieldReader) *Component {
	c := &Component{Class: f.class}
	c.GameObject = f.ref("m_GameObject")
	c.Payload = f.rest("payload")
	return c
}

func NewMonoBehaviour(script *MonoScript) *MonoBehaviour {
	mb := &MonoBehaviour{
		Enabled: true,
		Payload: []byte{},
	}
	if script != nil {
		mb.Script = RefTo(script)
	}
	return mb
}

func (m *MonoBehaviour) ClassID() uclass.ID {
	return uclass.IDMonoBehaviour
}

func (m *MonoBehaviour) ObjectName() string {
	return m.Name
}

func (m *MonoBehaviour) AttachTo(owner *GameObject) {
	m.GameObject = RefTo(owner)
}

func (m *MonoBehaviour) OutgoingReferences() []*Ref {
	return []*Ref{&m.GameObject, &m.Script}
}

func (m *MonoBehaviour) Serialize(w *ubytes.Writer, arena *Arena) error {
	if err := writeRef(w, arena, &m.GameObject); err != nil {
		return errors.Wrap(err, "MonoBehaviour.Serialize error writing m_GameObject")
	}
	w.WriteBool(m.Enabled)
	w.Align(ubytes.DefaultAlignment)
	if err := writeRef(w, arena, &m.Script); err != nil {
		return errors.Wrap(err, "MonoBehaviour.Serialize error writing m_Script")
	}
	w.WriteAlignedString(m.Name)
	w.WriteBytes(m.Payload)
	return nil
}

func decodeMonoBehaviour(f *fieldReader) *MonoBehaviour {
	m := &MonoBehaviour{}
	m.GameObject = f.ref("m_GameObject")
	m.Enabled = f.bool("m_Enabled")
	f.align("m_Enabled")
	m.Script = f.ref("m_Script")
	m.Name = f.string("m_Name")
	m.Payload = ds.ShallowCopy(f.rest("payload"))
	return m
}
