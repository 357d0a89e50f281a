// Package ugraph assembles a prefab's object graph into a finalized arena.
//
// The prefab moves through four states. It starts Initial with its GameObject and Transform
// seeded, is Processing while reference passes keep appending objects, becomes Stable once a
// pass appends nothing, and is Finalized after the AssetBundle manifest has been appended.
package ugraph

import (
	"prefab-bundler/ubundle/uobject"
)

type (
	State int

	Prefab struct {
		Name      string
		arena     *uobject.Arena
		root      *uobject.GameObject
		transform *uobject.Transform
		bundle    *uobject.AssetBundle
		state     State
	}
)

const (
	StateInitial State = iota
	StateProcessing
	StateStable
	StateFinalized
)

const (
	ContainerPathPrefix = "assets/"
	ContainerPathSuffix = ".prefab"
)
