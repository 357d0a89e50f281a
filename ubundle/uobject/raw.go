package uobject

import (
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

// Raw keeps the bytes of a class this package has no layout for. It round-trips unchanged.
type Raw struct {
	Class uclass.ID `json:"class"`
	Data  []byte    `json:"data"`
}

func (r *Raw) ClassID() uclass.ID {
	return r.Class
}

func (r *Raw) OutgoingReferences() []*Ref {
	return []*Ref{}
}

func (r *Raw) Serialize(w *ubytes.Writer, _ *Arena) error {
	w.WriteBytes(r.Data)
	return nil
}
