// Package uclass names the engine class IDs that appear in a serialized file.
package uclass

type (
	ID      int32
	Hash128 [16]byte
	Class   struct {
		ID          ID
		Name        string
		IsComponent bool
	}
)

const (
	IDGameObject    ID = 1
	IDComponent     ID = 2
	IDTransform     ID = 4
	IDMonoBehaviour ID = 114
	IDMonoScript    ID = 115
	IDAssetBundle   ID = 142
)
