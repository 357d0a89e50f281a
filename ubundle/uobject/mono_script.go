package uobject

import (
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

// MonoScript identifies the managed class a MonoBehaviour runs.
type MonoScript struct {
	Name           string         `json:"name"`
	ExecutionOrder int32          `json:"execution_order"`
	PropertiesHash uclass.Hash128 `json:"properties_hash"`
	ClassName      string         `json:"class_name"`
	Namespace      string         `json:"namespace"`
	AssemblyName   string         `json:"assembly_name"`
}

func NewMonoScript(namespace string, className string, assemblyName string) *MonoScript {
	return &MonoScript{
		Name:         className,
		ClassName:    className,
		Namespace:    namespace,
		AssemblyName: assemblyName,
	}
}

func (s *MonoScript) ClassID() uclass.ID {
	return uclass.IDMonoScript
}

func (s *MonoScript) ObjectName() string {
	return s.Name
}

// FullName is the namespace-qualified class name, the way scripts are looked up at load time.
func (s *MonoScript) FullName() string {
	if s.Namespace == "" {
		return s.ClassName
	}
	return s.Namespace + "." + s.ClassName
}

func (s *MonoScript) OutgoingReferences() []*Ref {
	return []*Ref{}
}

func (s *MonoScript) Serialize(w *ubytes.Writer, _ *Arena) error {
	w.WriteAlignedString(s.Name)
	w.WriteInt32(s.ExecutionOrder)
	w.WriteBytes(s.PropertiesHash[:])
	w.WriteAlignedString(s.ClassName)
	w.WriteAlignedString(s.Namespace)
	w.WriteAlignedString(s.AssemblyName)
	return nil
}

func decodeMonoScript(f *fieldReader) *MonoScript {
	s := &MonoScript{}
	s.Name = f.string("m_Name")
	s.ExecutionOrder = f.int32("m_ExecutionOrder")
	s.PropertiesHash = f.hash128("m_PropertiesHash")
	s.ClassName = f.string("m_ClassName")
	s.Namespace = f.string("m_Namespace")
	s.AssemblyName = f.string("m_AssemblyName")
	return s
}
